package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Notifier delivers publication events to a Discord webhook with
// at-least-once semantics: a bounded number of attempts, honoring any
// server-specified retry-after delay exactly, and a terminal
// NotificationEvent either way. Events are never silently dropped.
type Notifier interface {
	NotifyIssue(ctx context.Context, issue *model.PublishedIssue, analysis *model.BugAnalysis, summary string) *model.NotificationEvent
}

type webhookNotifier struct {
	httpClient *http.Client
	webhookURL string
	username   string
	maxRetries int
	retryDelay time.Duration
}

func NewWebhookNotifier(cfg *config.Config) (Notifier, error) {
	if cfg.Discord.WebhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL is required")
	}
	return &webhookNotifier{
		httpClient: &http.Client{Timeout: cfg.Discord.Timeout},
		webhookURL: cfg.Discord.WebhookURL,
		username:   cfg.Discord.Username,
		maxRetries: cfg.Discord.MaxRetries,
		retryDelay: cfg.Discord.RetryDelay,
	}, nil
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
}

type webhookPayload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

var severityColors = map[model.BugSeverity]int{
	model.SeverityCritical: 0xFF0000,
	model.SeverityHigh:     0xFF4500,
	model.SeverityMedium:   0xFFA500,
	model.SeverityLow:      0xFFFF00,
}

var severityEmojis = map[model.BugSeverity]string{
	model.SeverityCritical: "🚨",
	model.SeverityHigh:     "🔴",
	model.SeverityMedium:   "⚠️",
	model.SeverityLow:      "⚡",
}

func (n *webhookNotifier) NotifyIssue(ctx context.Context, issue *model.PublishedIssue, analysis *model.BugAnalysis, summary string) *model.NotificationEvent {
	event := &model.NotificationEvent{
		IssueNumber: issue.Number,
		IssueURL:    issue.HTMLURL,
		Severity:    analysis.Severity,
	}

	emoji := severityEmojis[analysis.Severity]
	color, ok := severityColors[analysis.Severity]
	if !ok {
		color = 0x808080
	}

	payload := webhookPayload{
		Username: n.username,
		Embeds: []embed{{
			Title:       fmt.Sprintf("%s New Bug Detected", emoji),
			Description: summary,
			Color:       color,
			Fields: []embedField{
				{Name: "Severity", Value: string(analysis.Severity), Inline: true},
				{Name: "Category", Value: string(analysis.Category), Inline: true},
				{Name: "GitHub Issue", Value: fmt.Sprintf("[#%d](%s)", issue.Number, issue.HTMLURL), Inline: true},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		event.Outcome = model.DeliveryFailed
		event.Error = fmt.Sprintf("failed to marshal webhook payload: %v", err)
		return event
	}

	var lastErr error
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		event.Attempts = attempt

		retryAfter, err := n.send(ctx, body)
		if err == nil {
			event.Outcome = model.DeliveryDelivered
			event.DeliveredAt = time.Now().UTC()
			log.Info().Int("issue", issue.Number).Int("attempts", attempt).Msg("Delivered Discord notification")
			return event
		}
		lastErr = err

		if attempt == n.maxRetries {
			break
		}

		// A rate-limited response dictates the exact wait before the
		// next attempt; anything else waits the fixed delay.
		delay := n.retryDelay
		if retryAfter > 0 {
			delay = retryAfter
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Discord delivery failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			event.Outcome = model.DeliveryFailed
			event.Error = fmt.Sprintf("context cancelled during retry wait: %v", ctx.Err())
			return event
		}
	}

	event.Outcome = model.DeliveryFailed
	event.Error = fmt.Sprintf("delivery failed after %d attempts: %v", event.Attempts, lastErr)
	log.Error().Int("issue", issue.Number).Int("attempts", event.Attempts).Err(lastErr).Msg("Discord notification exhausted retries")
	return event
}

// send performs one webhook POST. On 429 it returns the
// server-specified retry-after duration along with the error.
func (n *webhookNotifier) send(ctx context.Context, body []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return 0, nil
	}

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return parseRetryAfter(resp, respBody), fmt.Errorf("discord rate limited: status 429")
	}
	return 0, fmt.Errorf("discord webhook error: status code %d", resp.StatusCode)
}

// parseRetryAfter reads the retry-after value from the 429 response.
// Discord puts fractional seconds in the JSON body; the Retry-After
// header is the fallback.
func parseRetryAfter(resp *http.Response, body []byte) time.Duration {
	var rateLimited struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &rateLimited); err == nil && rateLimited.RetryAfter > 0 {
		return time.Duration(rateLimited.RetryAfter * float64(time.Second))
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return 0
}
