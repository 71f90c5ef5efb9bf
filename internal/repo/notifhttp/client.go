// Package notifhttp is the client for the notification backend. The
// backend has no delta or cursor support: every fetch is a full resend,
// which the reconciliation engine's additive merge tolerates.
package notifhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maniyoussef/ticketflow/internal/domain/model"
	"github.com/maniyoussef/ticketflow/internal/infra/httpclient"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("notification backend url is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    trimmed,
		httpClient: httpclient.New(timeout),
	}, nil
}

func (c *Client) FetchForActor(ctx context.Context, actorID int64) ([]model.Notification, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("invalid actor id")
	}

	url := c.baseURL + "/notifications?actor_id=" + strconv.FormatInt(actorID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build notifications request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch notifications: status=%d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read notifications response: %w", err)
	}

	var notifications []model.Notification
	if err := json.Unmarshal(raw, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications response: %w", err)
	}
	return notifications, nil
}
