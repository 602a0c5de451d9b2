package roomclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quacklabs/quack/pkg/protocol"
)

// Account is a registered identity plus its session token.
type Account struct {
	Profile      protocol.Profile
	SessionToken string
}

// RestClient wraps the server's REST endpoints for registration and room
// creation.
type RestClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRestClient creates a REST client for the given base URL, e.g.
// "http://localhost:8080".
func NewRestClient(baseURL string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetSessionToken sets the bearer session token for subsequent requests.
func (c *RestClient) SetSessionToken(token string) {
	c.token = token
}

// Register creates a user and captures the session cookie the server
// sets. The returned account's token is also installed on this client.
func (c *RestClient) Register(ctx context.Context, name string) (*Account, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("register", resp)
	}

	var out struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}

	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie {
			token = ck.Value
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("register: no session cookie in response")
	}

	c.token = token
	return &Account{
		Profile:      protocol.Profile{ID: out.UserID, Name: name},
		SessionToken: token,
	}, nil
}

// CreateRoom mints a fresh room and returns its id.
func (c *RestClient) CreateRoom(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/room", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("create room", resp)
	}

	var out struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create room response: %w", err)
	}
	return out.RoomID, nil
}

// UpdateName changes the display name. Pair with Client.Propagate so an
// in-room peer sees the change.
func (c *RestClient) UpdateName(ctx context.Context, name string) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshal update request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPatch, "/users", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("update user", resp)
	}
	return nil
}

// CurrentUser fetches the profile bound to the session token.
func (c *RestClient) CurrentUser(ctx context.Context) (*protocol.Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("current user", resp)
	}

	var out protocol.Profile
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &out, nil
}

func (c *RestClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func apiError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(raw))
}
