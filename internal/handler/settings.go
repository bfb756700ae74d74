package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/myceliumfarm/mycelium/internal/logging"
)

type settingsService interface {
	MessageTemplates(ctx context.Context) (json.RawMessage, error)
	SaveMessageTemplates(ctx context.Context, templates json.RawMessage) error
	ResetMessageTemplates(ctx context.Context) (json.RawMessage, error)
}

type SettingsHandler struct {
	settings settingsService
}

func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) GetMessageTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.settings.MessageTemplates(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, templates)
}

func (h *SettingsHandler) SaveMessageTemplates(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if err := h.settings.SaveMessageTemplates(r.Context(), body); err != nil {
		logging.FromContext(r.Context()).Error("failed to save message templates", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func (h *SettingsHandler) ResetMessageTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.settings.ResetMessageTemplates(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, templates)
}
