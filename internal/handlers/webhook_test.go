// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytunes/skytunes-backend/internal/config"
	"github.com/skytunes/skytunes-backend/internal/middleware"
	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/store"
)

// emptyLedger matches nothing; enough to exercise the HTTP surface.
type emptyLedger struct{}

func (emptyLedger) FindSongByRecipient(context.Context, string) (*models.Song, error) {
	return nil, store.ErrNotFound
}
func (emptyLedger) FindSongByMint(context.Context, string) (*models.Song, error) {
	return nil, store.ErrNotFound
}
func (emptyLedger) CreateSong(context.Context, *models.Song) error { return nil }
func (emptyLedger) UpsertStreamLog(context.Context, *models.StreamLog) (bool, error) {
	return false, nil
}
func (emptyLedger) IncrementStreamCount(context.Context, string, int64) error { return nil }
func (emptyLedger) BumpLastStreamSlot(context.Context, string, int64) error   { return nil }
func (emptyLedger) UpsertPurchase(context.Context, *models.Purchase) (bool, error) {
	return false, nil
}
func (emptyLedger) HasPurchase(context.Context, string, string) (bool, error) { return false, nil }
func (emptyLedger) PlatformStats(context.Context) (*store.PlatformStats, error) {
	return &store.PlatformStats{}, nil
}

func webhookRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Indexer.WebhookSecret = secret

	handler := NewWebhookHandler(services.NewWebhookService(emptyLedger{}))

	r := gin.New()
	r.POST("/webhook/helius", middleware.WebhookAuth(cfg), handler.HandleWebhook)
	return r
}

func postWebhook(r *gin.Engine, authHeader, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/helius", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	r := webhookRouter("topsecret")

	assert.Equal(t, http.StatusUnauthorized, postWebhook(r, "wrong", `[]`).Code)
	assert.Equal(t, http.StatusUnauthorized, postWebhook(r, "", `[]`).Code)
}

func TestWebhookAcceptsMatchingSecret(t *testing.T) {
	r := webhookRouter("topsecret")

	w := postWebhook(r, "topsecret", `[{"signature": "s", "transfers": [{"to": "nobody", "lamports": 1}]}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Data    services.ProcessResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Transfers)
	assert.Equal(t, 1, resp.Data.Skipped)
}

func TestWebhookAcceptsAllWithoutConfiguredSecret(t *testing.T) {
	r := webhookRouter("")

	w := postWebhook(r, "", `[]`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookMalformedPayloadStillSucceeds(t *testing.T) {
	r := webhookRouter("topsecret")

	w := postWebhook(r, "topsecret", `{"this": ["is", "not", "a", "transfer"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.ProcessResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, services.ProcessResult{}, resp.Data)
}
