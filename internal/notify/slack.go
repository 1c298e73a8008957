// Package notify posts analysis verdicts to a Slack incoming webhook.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackConfig configures the webhook notification.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
}

// Notifier sends messages to a Slack incoming webhook.
type Notifier struct {
	config *SlackConfig
	client *http.Client
}

// New creates a Notifier. A nil or disabled config yields a notifier whose
// Send is a no-op.
func New(cfg *SlackConfig) *Notifier {
	return &Notifier{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled reports whether notifications will actually be sent.
func (n *Notifier) IsEnabled() bool {
	return n.config != nil && n.config.Enabled && n.config.WebhookURL != ""
}

type slackPayload struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// Send posts text to the webhook. Disabled notifiers return nil without
// doing anything.
func (n *Notifier) Send(text string) error {
	if !n.IsEnabled() {
		return nil
	}

	payload := slackPayload{
		Text:     text,
		Channel:  n.config.Channel,
		Username: n.config.Username,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling slack payload: %w", err)
	}

	resp, err := n.client.Post(n.config.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
