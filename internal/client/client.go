// Package client is the Go SDK for the Upple service: it implements every
// capability interface in internal/remote over the JSON API and emits
// auth-state changes to local subscribers the way the hosted SDK does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	nextID    int
}

var _ remote.Backend = (*Client)(nil)

func New(baseURL string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      http.DefaultClient,
		listeners: make(map[int]func(*models.Session)),
	}
}

// APIError is a non-2xx response; Unwrap maps the stable wire code onto
// the shared sentinels so errors.Is works across the SDK boundary.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "NOT_FOUND":
		return remote.ErrNotFound
	case "UNAUTHORIZED", "INVALID_LOGIN":
		return remote.ErrUnauthorized
	case "FORBIDDEN":
		return remote.ErrForbidden
	case "DUPLICATE_VOTE":
		return remote.ErrDuplicateVote
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess := c.currentSession(); sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ------------------------------------------------------------------
// auth
// ------------------------------------------------------------------

func (c *Client) currentSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(sess *models.Session) {
	c.mu.Lock()
	c.session = sess
	fns := make([]func(*models.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	// Listeners run outside the lock; they may call back into the client.
	for _, fn := range fns {
		fn(sess)
	}
}

// SignUp registers the account and signs in, so a successful sign-up ends
// with an established session like the hosted flow.
func (c *Client) SignUp(ctx context.Context, email, password, username string) error {
	req := map[string]string{"email": email, "password": password, "username": username}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, nil); err != nil {
		return err
	}
	_, err := c.SignIn(ctx, email, password)
	return err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var sess models.Session
	req := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", req, &sess); err != nil {
		return nil, err
	}
	c.setSession(&sess)
	return &sess, nil
}

// SignOut ends the server session; the local session is cleared and the
// change broadcast even if the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
	c.setSession(nil)
	return err
}

// Session returns the locally held session, (nil, nil) when signed out.
func (c *Client) Session(ctx context.Context) (*models.Session, error) {
	return c.currentSession(), nil
}

// Restore validates a persisted token against the service and, when still
// valid, adopts it as the current session (cold-start restore).
func (c *Client) Restore(ctx context.Context, token string) (*models.Session, error) {
	c.mu.Lock()
	c.session = &models.Session{Token: token}
	c.mu.Unlock()

	var sess models.Session
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &sess); err != nil {
		c.setSession(nil)
		return nil, err
	}
	c.setSession(&sess)
	return &sess, nil
}

// OnAuthChange registers a listener for session transitions. The returned
// func removes it.
func (c *Client) OnAuthChange(fn func(*models.Session)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}
