package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Publisher files issue drafts with the GitHub REST API. Transient
// failures (5xx, 429, network) are retried with exponential backoff up
// to the configured attempt budget; other client errors fail
// immediately.
type Publisher interface {
	CreateIssue(ctx context.Context, draft *model.IssueDraft) (*model.PublishedIssue, error)
	CommentOnIssue(ctx context.Context, issueNumber int, body string) error
}

type githubPublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	repository string
	maxRetries int
}

func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.GitHub.Token == "" || cfg.GitHub.Owner == "" || cfg.GitHub.Repository == "" {
		return nil, fmt.Errorf("github token, owner and repository are required")
	}
	return &githubPublisher{
		httpClient: &http.Client{Timeout: cfg.GitHub.Timeout},
		baseURL:    cfg.GitHub.APIBaseURL,
		token:      cfg.GitHub.Token,
		owner:      cfg.GitHub.Owner,
		repository: cfg.GitHub.Repository,
		maxRetries: cfg.GitHub.MaxRetries,
	}, nil
}

type createIssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

type issueResponse struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
}

func (p *githubPublisher) CreateIssue(ctx context.Context, draft *model.IssueDraft) (*model.PublishedIssue, error) {
	payload := createIssueRequest{
		Title:     draft.Title,
		Body:      draft.Body,
		Labels:    draft.Labels,
		Assignees: draft.Assignees,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", p.baseURL, p.owner, p.repository)

	var created issueResponse
	operation := func() error {
		respBody, status, err := p.post(ctx, url, bodyBytes)
		if err != nil {
			return err
		}
		if status == http.StatusCreated {
			if err := json.Unmarshal(respBody, &created); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode issue response: %w", err))
			}
			return nil
		}
		return statusError(status, respBody)
	}

	if err := backoff.Retry(operation, p.newBackoff()); err != nil {
		log.Error().Err(err).Str("title", draft.Title).Msg("Failed to create GitHub issue after retries")
		return nil, fmt.Errorf("github issue creation failed: %w", err)
	}

	log.Info().Int("number", created.Number).Str("url", created.HTMLURL).Msg("Created GitHub issue")
	return &model.PublishedIssue{
		Number:  created.Number,
		URL:     created.URL,
		HTMLURL: created.HTMLURL,
	}, nil
}

// CommentOnIssue appends a comment to an existing issue; used when a
// new occurrence matches an already filed bug.
func (p *githubPublisher) CommentOnIssue(ctx context.Context, issueNumber int, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("failed to marshal comment payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", p.baseURL, p.owner, p.repository, issueNumber)

	operation := func() error {
		respBody, status, err := p.post(ctx, url, payload)
		if err != nil {
			return err
		}
		if status == http.StatusCreated {
			return nil
		}
		return statusError(status, respBody)
	}

	if err := backoff.Retry(operation, p.newBackoff()); err != nil {
		log.Error().Err(err).Int("issue", issueNumber).Msg("Failed to comment on GitHub issue after retries")
		return fmt.Errorf("github comment failed: %w", err)
	}

	log.Debug().Int("issue", issueNumber).Msg("Commented on GitHub issue")
	return nil
}

func (p *githubPublisher) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Network errors are transient; let backoff retry them.
		return nil, 0, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// statusError classifies an unexpected status: 429 and 5xx are
// retriable, other 4xx are permanent.
func statusError(status int, body []byte) error {
	err := fmt.Errorf("github API error: status code %d: %s", status, truncate(string(body), 200))
	if status == http.StatusTooManyRequests || status >= 500 {
		return err
	}
	return backoff.Permanent(err)
}

func (p *githubPublisher) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 15 * time.Second
	return backoff.WithMaxRetries(b, uint64(p.maxRetries))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
