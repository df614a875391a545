package discord_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/discord"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func testConfig(webhookURL string) *config.Config {
	return &config.Config{
		Discord: config.DiscordConfig{
			WebhookURL: webhookURL,
			Username:   "Bug Finder",
			Timeout:    5 * time.Second,
			MaxRetries: 3,
			RetryDelay: 10 * time.Millisecond,
		},
	}
}

func sampleIssue() *model.PublishedIssue {
	return &model.PublishedIssue{
		Number:  77,
		HTMLURL: "https://github.com/acme/shop/issues/77",
	}
}

func sampleAnalysis() *model.BugAnalysis {
	return &model.BugAnalysis{
		Severity: model.SeverityCritical,
		Category: model.CategoryDatabase,
	}
}

func TestNotifyIssue_DeliversEmbed(t *testing.T) {
	var gotPayload struct {
		Username string `json:"username"`
		Embeds   []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Color       int    `json:"color"`
		} `json:"embeds"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier, err := discord.NewWebhookNotifier(testConfig(server.URL))
	require.NoError(t, err)

	event := notifier.NotifyIssue(context.Background(), sampleIssue(), sampleAnalysis(), "database connection refused")

	assert.Equal(t, model.DeliveryDelivered, event.Outcome)
	assert.Equal(t, 1, event.Attempts)
	assert.Equal(t, 77, event.IssueNumber)
	assert.False(t, event.DeliveredAt.IsZero())

	require.Len(t, gotPayload.Embeds, 1)
	assert.Equal(t, "Bug Finder", gotPayload.Username)
	assert.Equal(t, 0xFF0000, gotPayload.Embeds[0].Color, "critical issues use the red embed color")
	assert.Equal(t, "database connection refused", gotPayload.Embeds[0].Description)
}

func TestNotifyIssue_HonorsRetryAfterFromBody(t *testing.T) {
	var calls int32
	var secondCallAt time.Time
	var firstCallAt time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			firstCallAt = time.Now()
			w.Header().Set("Retry-After", "5") // body value must win over the header
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"retry_after": 0.05}`)
		default:
			secondCallAt = time.Now()
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	notifier, err := discord.NewWebhookNotifier(testConfig(server.URL))
	require.NoError(t, err)

	event := notifier.NotifyIssue(context.Background(), sampleIssue(), sampleAnalysis(), "boom")

	assert.Equal(t, model.DeliveryDelivered, event.Outcome)
	assert.Equal(t, 2, event.Attempts)

	waited := secondCallAt.Sub(firstCallAt)
	assert.GreaterOrEqual(t, waited, 50*time.Millisecond, "retry must wait the server-specified delay")
	assert.Less(t, waited, 2*time.Second, "retry must use the body retry_after, not the header")
}

func TestNotifyIssue_ExhaustsRetriesIntoFailedEvent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier, err := discord.NewWebhookNotifier(testConfig(server.URL))
	require.NoError(t, err)

	event := notifier.NotifyIssue(context.Background(), sampleIssue(), sampleAnalysis(), "boom")

	assert.Equal(t, model.DeliveryFailed, event.Outcome)
	assert.Equal(t, 3, event.Attempts, "attempt count must stop at the configured budget")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.NotEmpty(t, event.Error, "a failed delivery must still produce a terminal event")
}

func TestNotifyIssue_ContextCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"retry_after": 30}`)
	}))
	defer server.Close()

	notifier, err := discord.NewWebhookNotifier(testConfig(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	event := notifier.NotifyIssue(ctx, sampleIssue(), sampleAnalysis(), "boom")
	assert.Equal(t, model.DeliveryFailed, event.Outcome)
	assert.NotEmpty(t, event.Error)
}

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	cfg := testConfig("")
	_, err := discord.NewWebhookNotifier(cfg)
	assert.Error(t, err)
}
