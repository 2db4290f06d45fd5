// Package twitter posts tweets through the Twitter v2 API using OAuth 1.0a
// user-context credentials.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/domain"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	defaultTimeout = 30 * time.Second

	// Responses are tiny; the limit only guards against a misbehaving endpoint.
	maxResponseBytes = 1 << 20
)

// Credentials holds the four OAuth 1.0a values the v2 tweet endpoint requires.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Publisher submits tweet text to POST /2/tweets. It implements tick.Publisher.
type Publisher struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// New creates a Publisher with a signing HTTP client built from creds.
func New(creds Credentials, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return &Publisher{
		client:  config.Client(oauth1.NoContext, token),
		baseURL: defaultBaseURL,
		timeout: timeout,
	}
}

// WithBaseURL points the publisher at a different API host. Used in tests.
func (p *Publisher) WithBaseURL(baseURL string) *Publisher {
	p.baseURL = baseURL
	return p
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// apiError is the v2 problem envelope (auth, validation, rate limiting).
type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// Publish posts text verbatim as a single tweet. Any failure comes back as an
// error; the caller decides that publish failures are never fatal.
func (p *Publisher) Publish(ctx context.Context, text string) (domain.PublishReceipt, error) {
	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("marshal: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxTimeout, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr apiError
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Title != "" {
			return domain.PublishReceipt{}, fmt.Errorf("status %d: %s: %s", resp.StatusCode, apiErr.Title, apiErr.Detail)
		}
		return domain.PublishReceipt{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var tweet tweetResponse
	if err := json.Unmarshal(payload, &tweet); err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.PublishReceipt{TweetID: tweet.Data.ID}, nil
}
