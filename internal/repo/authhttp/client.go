// Package authhttp is the client for the external authentication backend.
// The core only consumes issued tokens; credentials never live here.
package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maniyoussef/ticketflow/internal/domain/model"
	"github.com/maniyoussef/ticketflow/internal/infra/httpclient"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// grantPayload mirrors the backend's token grant wire shape. Roles keeps
// whatever claim shapes the backend sends; normalization happens in the
// roles service.
type grantPayload struct {
	AccessToken      string            `json:"access_token"`
	RefreshToken     string            `json:"refresh_token"`
	ExpiresInSeconds int64             `json:"expires_in"`
	ActorID          int64             `json:"actor_id"`
	DisplayName      string            `json:"display_name"`
	RoleClaims       []model.RoleClaim `json:"roles"`
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("auth backend url is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    trimmed,
		httpClient: httpclient.New(timeout),
	}, nil
}

func (c *Client) Login(ctx context.Context, credentials identitysvc.Credentials) (identitysvc.Grant, error) {
	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		return identitysvc.Grant{}, identitysvc.ErrInvalidInput
	}
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: credentials.Email, Password: credentials.Password}
	return c.grant(ctx, "/auth/login", payload)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (identitysvc.Grant, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return identitysvc.Grant{}, identitysvc.ErrInvalidInput
	}
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	return c.grant(ctx, "/auth/refresh", payload)
}

func (c *Client) grant(ctx context.Context, path string, requestBody any) (identitysvc.Grant, error) {
	body, err := json.Marshal(requestBody)
	if err != nil {
		return identitysvc.Grant{}, fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return identitysvc.Grant{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return identitysvc.Grant{}, fmt.Errorf("auth request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return identitysvc.Grant{}, identitysvc.ErrBackendUnauthorized
	case resp.StatusCode != http.StatusOK:
		return identitysvc.Grant{}, fmt.Errorf("auth request %s: status=%d", path, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identitysvc.Grant{}, fmt.Errorf("read auth response: %w", err)
	}

	var decoded grantPayload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return identitysvc.Grant{}, fmt.Errorf("decode auth response: %w", err)
	}
	if strings.TrimSpace(decoded.AccessToken) == "" {
		return identitysvc.Grant{}, identitysvc.ErrBackendUnauthorized
	}

	return identitysvc.Grant{
		AccessToken:      decoded.AccessToken,
		RefreshToken:     decoded.RefreshToken,
		ExpiresInSeconds: decoded.ExpiresInSeconds,
		ActorID:          decoded.ActorID,
		DisplayName:      decoded.DisplayName,
		RoleClaims:       decoded.RoleClaims,
	}, nil
}
