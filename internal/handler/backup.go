package handler

import (
	"net/http"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/logging"
)

type BackupHandler struct {
	runner *backup.Runner
	flag   *backup.Flag
}

func NewBackupHandler(runner *backup.Runner, flag *backup.Flag) *BackupHandler {
	return &BackupHandler{runner: runner, flag: flag}
}

// Run writes an on-demand snapshot regardless of the dirty flag, and clears
// the flag since the snapshot now reflects every change.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	info, err := h.runner.Snapshot(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("manual backup failed", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}
	h.flag.Consume()
	RespondSuccess(w, http.StatusCreated, info)
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	RespondSuccess(w, http.StatusOK, map[string]any{
		"dirty":         h.flag.Dirty(),
		"last_snapshot": h.runner.Last(),
	})
}
