package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/repository"
	"github.com/myceliumfarm/mycelium/internal/service"
	"github.com/myceliumfarm/mycelium/internal/testutil"
)

func TestMessageTemplates_DefaultsWhenUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSettingsService(repository.NewSettingsRepository(db), backup.NewFlag())

	templates, err := svc.MessageTemplates(context.Background())
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(templates, &parsed))
	assert.Contains(t, parsed, "payment_thanks")
	assert.Contains(t, parsed, "balance_notice")
}

func TestMessageTemplates_SaveAndReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSettingsService(repository.NewSettingsRepository(db), backup.NewFlag())
	ctx := context.Background()

	custom := json.RawMessage(`{"payment_thanks": "고맙습니다!"}`)
	require.NoError(t, svc.SaveMessageTemplates(ctx, custom))

	templates, err := svc.MessageTemplates(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(custom), string(templates))

	reset, err := svc.ResetMessageTemplates(ctx)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(reset, &parsed))
	assert.Contains(t, parsed, "order_confirm")

	after, err := svc.MessageTemplates(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(reset), string(after))
}

func TestSaveMessageTemplates_RejectsInvalidJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSettingsService(repository.NewSettingsRepository(db), backup.NewFlag())

	err := svc.SaveMessageTemplates(context.Background(), json.RawMessage(`{broken`))
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}
