package highscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a remote leaderboard exposing /api/highscores
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the leaderboard at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Submit validates locally, then posts the submission
func (c *Client) Submit(ctx context.Context, s Submission) (*Entry, error) {
	if err := ValidateSubmission(s); err != nil {
		return nil, err
	}
	s.PlayerName = TruncateName(s.PlayerName)

	var entry Entry
	if err := c.apiCall(ctx, http.MethodPost, "/api/highscores", s, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Top fetches the best entries. levelID 0 lists every level.
func (c *Client) Top(ctx context.Context, levelID, limit int) ([]Entry, error) {
	q := url.Values{}
	if levelID > 0 {
		q.Set("level_id", strconv.Itoa(levelID))
	}
	q.Set("limit", strconv.Itoa(NormalizeLimit(limit)))

	var entries []Entry
	if err := c.apiCall(ctx, http.MethodGet, "/api/highscores?"+q.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) apiCall(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		msg, ok := errResp["error"]
		if !ok {
			msg = fmt.Sprintf("API error: %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusBadRequest {
			return fmt.Errorf("%w: %s", ErrInvalidSubmission, msg)
		}
		return fmt.Errorf("%s", msg)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
