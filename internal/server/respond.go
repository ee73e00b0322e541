package server

import (
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/observability"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes it as a JSON error body.
// Internal errors are logged and their message is not leaked.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	code := string(errors.GetCode(err))
	switch {
	case code != "":
	case status < http.StatusInternalServerError:
		code = string(errors.ErrCodeInvalidInput)
	default:
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = http.StatusText(status)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), code, err)
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge), stderrors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errors.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
