package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

const messageTemplatesKey = "message_templates"

// defaultMessageTemplates are the stock SMS texts shipped with the app.
// Placeholders in braces are substituted by the sending UI.
var defaultMessageTemplates = json.RawMessage(`{
	"order_confirm": "[{company}] {customer}님, 주문이 접수되었습니다. 감사합니다.",
	"shipping": "[{company}] {customer}님, 상품이 발송되었습니다. 송장번호: {tracking}",
	"payment_thanks": "[{company}] {customer}님, 입금 확인되었습니다. 감사합니다.",
	"balance_notice": "[{company}] {customer}님, 미수 잔액은 {balance}원 입니다."
}`)

type settingsRepo interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}

type SettingsService struct {
	settings settingsRepo
	notifier changeNotifier
}

func NewSettingsService(settings settingsRepo, notifier changeNotifier) *SettingsService {
	return &SettingsService{settings: settings, notifier: notifier}
}

// MessageTemplates returns the saved templates, falling back to the defaults
// when none were saved yet.
func (s *SettingsService) MessageTemplates(ctx context.Context) (json.RawMessage, error) {
	value, err := s.settings.Get(ctx, messageTemplatesKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return defaultMessageTemplates, nil
		}
		return nil, fmt.Errorf("MessageTemplates: %w", err)
	}
	return value, nil
}

func (s *SettingsService) SaveMessageTemplates(ctx context.Context, templates json.RawMessage) error {
	if !json.Valid(templates) {
		return fmt.Errorf("SaveMessageTemplates: %w", domain.ErrInvalidRequest)
	}
	if err := s.settings.Set(ctx, messageTemplatesKey, templates); err != nil {
		return fmt.Errorf("SaveMessageTemplates: %w", err)
	}
	s.notifier.MarkDirty()
	return nil
}

// ResetMessageTemplates drops any saved templates and returns the defaults.
func (s *SettingsService) ResetMessageTemplates(ctx context.Context) (json.RawMessage, error) {
	if err := s.settings.Delete(ctx, messageTemplatesKey); err != nil {
		return nil, fmt.Errorf("ResetMessageTemplates: %w", err)
	}
	s.notifier.MarkDirty()
	return defaultMessageTemplates, nil
}
