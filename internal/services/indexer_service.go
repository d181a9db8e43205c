// internal/services/indexer_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skytunes/skytunes-backend/internal/config"
)

// IndexerService keeps the Helius webhook subscription in sync with the
// recipient wallets we need transfer notifications for. It edits a
// pre-created webhook by ID, merging new addresses into the watched set.
type IndexerService struct {
	httpClient *http.Client
	config     *config.Config
}

type heliusWebhook struct {
	WebhookID        string   `json:"webhookID,omitempty"`
	WebhookURL       string   `json:"webhookURL"`
	TransactionTypes []string `json:"transactionTypes"`
	AccountAddresses []string `json:"accountAddresses"`
	WebhookType      string   `json:"webhookType,omitempty"`
	AuthHeader       string   `json:"authHeader,omitempty"`
}

func NewIndexerService(cfg *config.Config) *IndexerService {
	return &IndexerService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		config:     cfg,
	}
}

// RegisterAddresses adds the given wallets to the webhook's watched
// address list. Already-watched addresses are left alone. Without an API
// key or webhook ID this is a no-op so local development does not need a
// live Helius account.
func (s *IndexerService) RegisterAddresses(ctx context.Context, addresses ...string) error {
	if s.config.Indexer.APIKey == "" || s.config.Indexer.WebhookID == "" {
		logrus.Debug("Indexer API not configured, skipping address registration")
		return nil
	}

	current, err := s.getWebhook(ctx)
	if err != nil {
		return err
	}

	watched := make(map[string]bool, len(current.AccountAddresses))
	for _, addr := range current.AccountAddresses {
		watched[addr] = true
	}

	added := false
	for _, addr := range addresses {
		if addr == "" || watched[addr] {
			continue
		}
		current.AccountAddresses = append(current.AccountAddresses, addr)
		watched[addr] = true
		added = true
	}
	if !added {
		return nil
	}

	if s.config.Indexer.WebhookURL != "" {
		current.WebhookURL = s.config.Indexer.WebhookURL
	}
	if s.config.Indexer.WebhookSecret != "" {
		current.AuthHeader = s.config.Indexer.WebhookSecret
	}

	if err := s.updateWebhook(ctx, current); err != nil {
		return err
	}

	logrus.WithField("addresses", addresses).Info("Indexer webhook subscription updated")
	return nil
}

func (s *IndexerService) getWebhook(ctx context.Context) (*heliusWebhook, error) {
	url := fmt.Sprintf("%s/v0/webhooks/%s?api-key=%s",
		s.config.Indexer.APIBaseURL, s.config.Indexer.WebhookID, s.config.Indexer.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch webhook config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var webhook heliusWebhook
	if err := json.NewDecoder(resp.Body).Decode(&webhook); err != nil {
		return nil, fmt.Errorf("failed to decode webhook config: %w", err)
	}
	return &webhook, nil
}

func (s *IndexerService) updateWebhook(ctx context.Context, webhook *heliusWebhook) error {
	url := fmt.Sprintf("%s/v0/webhooks/%s?api-key=%s",
		s.config.Indexer.APIBaseURL, s.config.Indexer.WebhookID, s.config.Indexer.APIKey)

	payload := heliusWebhook{
		WebhookURL:       webhook.WebhookURL,
		TransactionTypes: webhook.TransactionTypes,
		AccountAddresses: webhook.AccountAddresses,
		AuthHeader:       webhook.AuthHeader,
	}
	if len(payload.TransactionTypes) == 0 {
		payload.TransactionTypes = []string{"TRANSFER"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update webhook config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
