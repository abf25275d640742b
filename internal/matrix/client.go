package matrix

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

	"sticker-processor/internal/domain"
)

// ErrTransport wraps any failure talking to the homeserver media endpoint.
var ErrTransport = errors.New("media upload transport failure")

type Config struct {
	HomeserverURL string
	AccessToken   string
}

// Client uploads media to a Matrix homeserver's content repository and
// returns the mxc URI the server assigned. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *Client) Upload(ctx context.Context, name string, data []byte, mimeType string) (domain.ContentURI, error) {
	endpoint := fmt.Sprintf("%s/_matrix/media/v3/upload?filename=%s",
		strings.TrimRight(c.cfg.HomeserverURL, "/"), url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: homeserver returned %d: %s", ErrTransport, resp.StatusCode, string(body))
	}

	var payload struct {
		ContentURI string `json:"content_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if payload.ContentURI == "" {
		return "", fmt.Errorf("%w: homeserver response lacks content_uri", ErrTransport)
	}

	return domain.ContentURI(payload.ContentURI), nil
}
