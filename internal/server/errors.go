package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskdog/taskdog/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the core's tagged error variants onto HTTP status
// codes, mirroring the teacher's encodeError dispatch.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notFound *errs.NotFoundError
	var validation *errs.ValidationError
	var notSchedulable *errs.NotSchedulableError
	var noSchedulable *errs.NoSchedulableTasksError
	var alreadyFinished *errs.AlreadyFinishedError
	var corrupted *errs.CorruptedDataError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &notSchedulable):
		status = http.StatusConflict
	case errors.As(err, &noSchedulable):
		status = http.StatusConflict
	case errors.As(err, &alreadyFinished):
		status = http.StatusConflict
	case errors.As(err, &corrupted):
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
