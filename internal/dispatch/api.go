// internal/dispatch/api.go
package dispatch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/common/logger"
)

const maxSubmissionBytes = 256 << 10

// API exposes the submission and status endpoints.
type API struct {
	dispatcher *Dispatcher
	logger     logger.Logger
}

func NewAPI(d *Dispatcher, log logger.Logger) *API {
	return &API{dispatcher: d, logger: log}
}

// Register mounts the endpoints on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/notifications", a.handleSubmit)
	mux.HandleFunc("GET /v1/notifications/{id}", a.handleStatus)
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBytes))
	if err != nil {
		a.writeError(w, commonerrors.NewValidationFailedError("unreadable request body"))
		return
	}

	req, err := ParseSubmission(body)
	if err != nil {
		a.writeError(w, err)
		return
	}

	res, err := a.dispatcher.Submit(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusAccepted, res)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	n, err := a.dispatcher.Status(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, n)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	var stdErr *commonerrors.StandardError
	if !errors.As(err, &stdErr) {
		a.logger.Error("internal error", map[string]interface{}{"error": err.Error()})
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case stdErr.Code == commonerrors.ErrCodeNotificationNotFound:
		status = http.StatusNotFound
	case stdErr.Code == commonerrors.ErrCodeQueueClosed:
		status = http.StatusServiceUnavailable
	case commonerrors.IsValidation(err):
		status = http.StatusBadRequest
	}

	a.writeJSON(w, status, stdErr)
}
