package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
)

// Client implements API over the auth service's HTTP surface. The
// cookie jar carries the session cookie between calls, the same way a
// browser would.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("authflow: cookie jar: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}, nil
}

func (c *Client) Register(ctx context.Context, data FormData) error {
	body := map[string]string{
		"name":     data.Name,
		"email":    data.Email,
		"password": data.Password,
	}

	resp, err := c.postJSON(ctx, "/api/register", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("authflow: registration failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) SignIn(ctx context.Context, providerName string, creds *FormData) Result {
	if providerName != "credentials" {
		// Social sign-in hands the browser to the provider; the
		// result comes back through the callback redirect. From the
		// flow's point of view it either settles or errors.
		return c.socialSignIn(ctx, providerName)
	}

	if creds == nil {
		return Result{Err: errors.New("authflow: credential sign-in without credentials")}
	}

	body := map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}

	resp, err := c.postJSON(ctx, "/api/auth/login", body)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	var parsed struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{Err: fmt.Errorf("authflow: decode login response: %w", err)}
	}

	if !parsed.OK {
		return Result{Err: errors.New("invalid credentials")}
	}
	return Result{OK: true}
}

func (c *Client) socialSignIn(ctx context.Context, providerName string) Result {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/oauth/login/"+providerName,
		nil,
	)
	if err != nil {
		return Result{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	// The provider flow ends on the landing page once the callback
	// has issued the session.
	if resp.StatusCode >= http.StatusBadRequest {
		return Result{Err: fmt.Errorf("authflow: provider sign-in failed with status %d", resp.StatusCode)}
	}

	// A terminal 2xx alone proves nothing; the redirect chain can
	// land on a page without any callback having issued a cookie.
	// Only an established session counts as success.
	authenticated, err := c.SessionAuthenticated(ctx)
	if err != nil {
		return Result{Err: err}
	}
	if !authenticated {
		return Result{Err: errors.New("authflow: provider sign-in did not establish a session")}
	}
	return Result{OK: true}
}

func (c *Client) SessionAuthenticated(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/api/session",
		nil,
	)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var parsed struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}
	return parsed.Authenticated, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}
