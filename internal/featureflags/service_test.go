package featureflags_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/featureflags"
)

func newTestService() *featureflags.Service {
	return featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func TestService_DefaultsWhenUnset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if !svc.ConcurrentVerificationEnabled(ctx) {
		t.Error("concurrent verification should default to enabled")
	}
	if !svc.StaleResponseGuardEnabled(ctx) {
		t.Error("stale response guard should default to enabled")
	}
}

func TestService_SetOverridesDefault(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, featureflags.FlagConcurrentVerification, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if svc.ConcurrentVerificationEnabled(ctx) {
		t.Error("expected flag override to disable concurrent verification")
	}
	if !svc.StaleResponseGuardEnabled(ctx) {
		t.Error("unrelated flag must keep its default")
	}

	if _, err := svc.Set(ctx, featureflags.FlagConcurrentVerification, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !svc.ConcurrentVerificationEnabled(ctx) {
		t.Error("expected flag re-enabled")
	}
}

func TestService_NonBoolValueFallsBack(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, featureflags.FlagStaleResponseGuard, "yes"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !svc.StaleResponseGuardEnabled(ctx) {
		t.Error("non-boolean value should fall back to the default")
	}
}

func TestService_All(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, featureflags.FlagConcurrentVerification, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	flags, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	flag, ok := flags[featureflags.FlagConcurrentVerification]
	if !ok {
		t.Fatal("expected stored flag listed")
	}
	if flag.Value != false {
		t.Errorf("unexpected value: %v", flag.Value)
	}
	if flag.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt stamped on write")
	}
}

func TestService_NilSafeAccessors(t *testing.T) {
	var svc *featureflags.Service

	if !svc.ConcurrentVerificationEnabled(context.Background()) {
		t.Error("nil service should return the default")
	}
	if !svc.StaleResponseGuardEnabled(context.Background()) {
		t.Error("nil service should return the default")
	}
}

func TestInMemoryRepository(t *testing.T) {
	repo := featureflags.NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetFlag(ctx, "missing"); !errors.Is(err, featureflags.ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound, got %v", err)
	}

	if err := repo.SetFlag(ctx, &featureflags.Flag{Key: "k", Value: true}); err != nil {
		t.Fatalf("SetFlag failed: %v", err)
	}

	flag, err := repo.GetFlag(ctx, "k")
	if err != nil {
		t.Fatalf("GetFlag failed: %v", err)
	}
	if !flag.BoolValue(false) {
		t.Error("expected stored boolean true")
	}

	if err := repo.DeleteFlag(ctx, "k"); err != nil {
		t.Fatalf("DeleteFlag failed: %v", err)
	}
	if err := repo.DeleteFlag(ctx, "k"); !errors.Is(err, featureflags.ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound on double delete, got %v", err)
	}
}

func TestFlag_BoolValue(t *testing.T) {
	var nilFlag *featureflags.Flag
	if !nilFlag.BoolValue(true) {
		t.Error("nil flag should return the default")
	}

	f := &featureflags.Flag{Key: "k", Value: 1}
	if f.BoolValue(false) {
		t.Error("non-boolean value should return the default")
	}

	f.Value = true
	if !f.BoolValue(false) {
		t.Error("boolean value should win over the default")
	}
}
