package notifier

import (
	"context"
	"fmt"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/go-resty/resty/v2"
)

// Notifier delivers one-off operator alerts. The only consumer today is the
// first-activation alert for the Aid fallback path.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type webhookPayload struct {
	Content string `json:"content"`
}

type webhookNotifier struct {
	client     *resty.Client
	webhookURL string
	enabled    bool
}

func NewWebhookNotifier(cfg *config.Config) Notifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")

	return &webhookNotifier{
		client:     client,
		webhookURL: cfg.Notifier.WebhookURL,
		enabled:    cfg.Notifier.Enabled && cfg.Notifier.WebhookURL != "",
	}
}

func (n *webhookNotifier) Notify(ctx context.Context, message string) error {
	if !n.enabled {
		return nil
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Content: message}).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
