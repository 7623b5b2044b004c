package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	applog "github.com/jeswanthjohn/api-forge/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// HandlerFunc is an http handler that reports failure by returning an error
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts an error-returning handler so that every error it returns is
// written exactly once by WriteError.
func Handle(logger *zap.Logger, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, r, logger, err)
		}
	}
}

// WriteError translates err into a JSON error response. Classified errors keep
// their status, message and error list. Anything else, including Internal,
// answers 500 with a generic message and the detail only goes to the log.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		applog.WithRequest(logger, r).Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		RespondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Message: apperror.InternalMessage})
		return
	}

	if appErr.Status >= http.StatusInternalServerError {
		applog.WithRequest(logger, r).Error("Request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}

	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondWithJSON(w, status, ErrorResponse{Message: appErr.Message, Errors: appErr.Errors})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					applog.WithRequest(logger, r).Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					WriteError(w, r, logger, apperror.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
