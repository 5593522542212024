package middleware

import (
	"net/http"
	"strings"

	"github.com/themuku/RailwayVision/internal/api/models"
)

// ContentTypeJSON defaults responses to application/json and rejects
// mutating requests whose declared body type is not JSON. Handlers may
// still override the response type (problem responses do).
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				problem := models.NewProblem(
					"https://railwayvision.dev/problems/unsupported-media-type",
					"Unsupported media type",
					http.StatusUnsupportedMediaType,
					GetRequestID(r.Context()),
				)
				problem.Detail = "request bodies must be application/json"
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}

		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}
