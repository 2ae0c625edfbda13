package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/logging"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, success bool, msg string) {
	writeJSON(w, status, messageResponse{Success: success, Message: msg})
}

// writeError maps service errors onto statuses. Internal details are logged,
// never returned.
func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(ctx, s.logger).Error(ctx, "request failed", "error", err)
	}
	writeMessage(w, status, false, msg)
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict, "email already taken"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func validationMessage(err error) string {
	prefix := common.ErrorValidation.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
