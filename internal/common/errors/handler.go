// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler renders local failures as HTTP 500 responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Response is the body written for every local failure.
type Response struct {
	Error string `json:"error"`
}

// WriteHTTPError normalizes err, logs it and writes 500 {"error": message}.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, r *http.Request, err error) *StandardError {
	stdErr := Normalize(err)

	h.logger.Error("Request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"metadata":      stdErr.Metadata,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(Response{Error: stdErr.PublicMessage()})

	return stdErr
}
