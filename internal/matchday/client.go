// Package matchday drives a kickoff server from the terminal.
package matchday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/sequencer"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to a kickoff server.
type Client struct {
	http    *http.Client
	stream  *http.Client
	baseURL string
}

// NewClient creates a client for baseURL. timeout bounds ordinary requests;
// live streams are bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Health checks that the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Start begins a career with teamName.
func (c *Client) Start(ctx context.Context, teamName string) (repository.Session, error) {
	var sess repository.Session
	err := c.do(ctx, http.MethodPost, "/sessions", map[string]string{"team_name": teamName}, &sess)
	return sess, err
}

// Session fetches a career.
func (c *Client) Session(ctx context.Context, id string) (repository.Session, error) {
	var sess repository.Session
	err := c.do(ctx, http.MethodGet, sessionPath(id), nil, &sess)
	return sess, err
}

// Quit ends a career.
func (c *Client) Quit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id), nil, nil)
}

// SetView switches screens.
func (c *Client) SetView(ctx context.Context, id string, view game.View) (game.State, error) {
	return c.state(ctx, http.MethodPut, sessionPath(id, "view"), map[string]string{"view": string(view)})
}

// ChangeTactic sets the formation.
func (c *Client) ChangeTactic(ctx context.Context, id, tactic string) (game.State, error) {
	return c.state(ctx, http.MethodPut, sessionPath(id, "tactic"), map[string]string{"tactic": tactic})
}

// RefreshMarket lists a new batch of free agents.
func (c *Client) RefreshMarket(ctx context.Context, id string) (game.State, error) {
	return c.state(ctx, http.MethodPost, sessionPath(id, "market", "refresh"), nil)
}

// Buy signs a listed player.
func (c *Client) Buy(ctx context.Context, id, playerID string) (game.State, error) {
	return c.state(ctx, http.MethodPost, sessionPath(id, "market", playerID, "buy"), nil)
}

// Sell releases a squad player.
func (c *Client) Sell(ctx context.Context, id, playerID string) (game.State, error) {
	return c.state(ctx, http.MethodPost, sessionPath(id, "squad", playerID, "sell"), nil)
}

// Advance queues the next match and returns the job id.
func (c *Client) Advance(ctx context.Context, id string) (string, error) {
	var out struct {
		JobID string `json:"job_id"`
	}
	err := c.do(ctx, http.MethodPost, sessionPath(id, "advance"), nil, &out)
	return out.JobID, err
}

// Finish closes the played match.
func (c *Client) Finish(ctx context.Context, id string) (game.State, error) {
	return c.state(ctx, http.MethodPost, sessionPath(id, "match", "finish"), nil)
}

// Advice asks for a game plan.
func (c *Client) Advice(ctx context.Context, id string) (string, error) {
	var out struct {
		Advice string `json:"advice"`
	}
	err := c.do(ctx, http.MethodPost, sessionPath(id, "advice"), nil, &out)
	return out.Advice, err
}

// WaitLive polls until the queued match has been simulated. It returns
// ErrNotQueued when nothing is loading and no match is ready.
func (c *Client) WaitLive(ctx context.Context, id string, every time.Duration) (game.State, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		sess, err := c.Session(ctx, id)
		if err != nil {
			return game.State{}, err
		}
		if !sess.State.Loading {
			if sess.State.Match == nil {
				return sess.State, ErrNotQueued
			}
			return sess.State, nil
		}
		select {
		case <-ctx.Done():
			return game.State{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Watch follows the live stream, calling fn for every update until the
// server sends the end event.
func (c *Client) Watch(ctx context.Context, id string, fn func(sequencer.Update) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sessionPath(id, "match", "live"), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	return ReadEvents(resp.Body, func(ev Event) error {
		var u sequencer.Update
		if err := json.Unmarshal([]byte(ev.Data), &u); err != nil {
			return fmt.Errorf("%w: %w", ErrBadStream, err)
		}
		if err := fn(u); err != nil {
			return err
		}
		if u.Kind == sequencer.UpdateEnd {
			return errStreamDone
		}
		return nil
	})
}

func (c *Client) state(ctx context.Context, method, path string, body any) (game.State, error) {
	var st game.State
	err := c.do(ctx, method, path, body, &st)
	return st, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "http_error"
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func sessionPath(id string, parts ...string) string {
	var sb strings.Builder
	sb.WriteString("/sessions/")
	sb.WriteString(url.PathEscape(id))
	for _, p := range parts {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(p))
	}
	return sb.String()
}
