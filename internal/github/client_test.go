package github_test

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
	"github.com/wrferreira1003/Bug-Finder/internal/github"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{
			Token:      "test-token",
			Owner:      "acme",
			Repository: "shop",
			APIBaseURL: baseURL,
			Timeout:    5 * time.Second,
			MaxRetries: 3,
		},
	}
}

func sampleDraft() *model.IssueDraft {
	return &model.IssueDraft{
		Title:  "[HIGH] database connection refused",
		Body:   "## Summary\n\nboom",
		Labels: []string{"bug", "high"},
		Status: model.StatusReviewed,
	}
}

func TestCreateIssue_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 77, "url": "https://api.github.com/repos/acme/shop/issues/77", "html_url": "https://github.com/acme/shop/issues/77"}`)
	}))
	defer server.Close()

	publisher, err := github.NewPublisher(testConfig(server.URL))
	require.NoError(t, err)

	issue, err := publisher.CreateIssue(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, 77, issue.Number)
	assert.Equal(t, "https://github.com/acme/shop/issues/77", issue.HTMLURL)

	assert.Equal(t, "/repos/acme/shop/issues", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "[HIGH] database connection refused", gotBody["title"])
}

func TestCreateIssue_RetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 5, "html_url": "https://github.com/acme/shop/issues/5"}`)
	}))
	defer server.Close()

	publisher, err := github.NewPublisher(testConfig(server.URL))
	require.NoError(t, err)

	issue, err := publisher.CreateIssue(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, 5, issue.Number)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCreateIssue_PermanentClientErrorDoesNotRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	}))
	defer server.Close()

	publisher, err := github.NewPublisher(testConfig(server.URL))
	require.NoError(t, err)

	_, err = publisher.CreateIssue(context.Background(), sampleDraft())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx responses must not be retried")
}

func TestCommentOnIssue(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	publisher, err := github.NewPublisher(testConfig(server.URL))
	require.NoError(t, err)

	err = publisher.CommentOnIssue(context.Background(), 42, "another occurrence detected")
	require.NoError(t, err)
	assert.Equal(t, "/repos/acme/shop/issues/42/comments", gotPath)
	assert.Equal(t, "another occurrence detected", gotBody["body"])
}

func TestNewPublisher_RequiresCredentials(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.GitHub.Token = ""

	_, err := github.NewPublisher(cfg)
	assert.Error(t, err)
}
