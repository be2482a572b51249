package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	apihandlers "github.com/cbodonnell/wordfall/pkg/api/handlers"
	authhandlers "github.com/cbodonnell/wordfall/pkg/auth/handlers"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/cbodonnell/wordfall/pkg/vocabulary"
)

const (
	DefaultServerURL = "http://localhost:8080"
	requestTimeout   = 5 * time.Second
	maxErrorBody     = 1024
)

// APIClient talks to the wordfall server. A nil *APIClient is an offline client.
type APIClient struct {
	baseURL *url.URL
	http    *http.Client

	lock     sync.RWMutex
	token    string
	username string
}

func NewAPIClient(serverURL string) (*APIClient, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	return &APIClient{
		baseURL: u,
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *APIClient) Username() string {
	if c == nil {
		return ""
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.username
}

func (c *APIClient) LoggedIn() bool {
	if c == nil {
		return false
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.token != ""
}

func (c *APIClient) Register(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/auth/register", username, password)
}

func (c *APIClient) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/auth/login", username, password)
}

func (c *APIClient) authenticate(ctx context.Context, path, username, password string) error {
	if c == nil {
		return ErrOffline
	}
	form := url.Values{"username": {username}, "password": {password}}
	var body authhandlers.LoginResponseBody
	if err := c.do(ctx, http.MethodPost, path, form, false, &body); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.token = body.Token
	c.username = body.Username
	return nil
}

// Logout ends the server session. The local token is dropped even if the request fails.
func (c *APIClient) Logout(ctx context.Context) error {
	if c == nil {
		return ErrOffline
	}
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true, nil)

	c.lock.Lock()
	c.token = ""
	c.username = ""
	c.lock.Unlock()
	return err
}

func (c *APIClient) Words(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, ErrOffline
	}
	var body apihandlers.WordsResponseBody
	if err := c.do(ctx, http.MethodGet, "/words", nil, false, &body); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(body.Words))
	for _, w := range body.Words {
		if vocabulary.Valid(w) {
			words = append(words, w)
		}
	}
	return words, nil
}

// Load implements vocabulary.Source with the server word list
func (c *APIClient) Load(ctx context.Context) ([]string, error) {
	return c.Words(ctx)
}

// SubmitScore implements workers.ScoreSink
func (c *APIClient) SubmitScore(ctx context.Context, score int) error {
	if c == nil {
		return ErrOffline
	}
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	form := url.Values{"score": {strconv.Itoa(score)}}
	return c.do(ctx, http.MethodPost, "/scores", form, true, nil)
}

func (c *APIClient) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if c == nil {
		return nil, ErrOffline
	}
	path := "/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var body apihandlers.LeaderboardResponseBody
	if err := c.do(ctx, http.MethodGet, path, nil, false, &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, form url.Values, authenticated bool, out interface{}) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("failed to parse path %s: %v", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if authenticated {
		c.lock.RLock()
		token := c.token
		c.lock.RUnlock()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
