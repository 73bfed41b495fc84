package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Envelope is the wire shape of a composition on the storage server.
// Data carries the compressed payload as text.
type Envelope struct {
	ID   string `json:"Id"`
	Data string `json:"Data,omitempty"`
}

// CompositionsPath is the server route for compositions.
const CompositionsPath = "/api/compositions"

// HTTP is a [Store] backed by a blokdust storage server.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP returns a client for the server at baseURL. A nil client uses a
// client with the given timeout (30s if zero).
func NewHTTP(baseURL string, client *http.Client, timeout time.Duration) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid storage server url %q", baseURL)
	}
	if client == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}, nil
}

func (h *HTTP) Save(ctx context.Context, id string, payload []byte) (string, error) {
	if id != "" {
		if err := errs.ValidateCompositionID(id); err != nil {
			return "", err
		}
	}
	body, err := json.Marshal(Envelope{ID: id, Data: string(payload)})
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+CompositionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out Envelope
	if err := h.do(req, "", &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errs.New(errs.ErrCodeInternal, "storage server returned no id")
	}
	return out.ID, nil
}

func (h *HTTP) Load(ctx context.Context, id string) ([]byte, error) {
	if err := errs.ValidateCompositionID(id); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+CompositionsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var out Envelope
	if err := h.do(req, id, &out); err != nil {
		return nil, err
	}
	return []byte(out.Data), nil
}

func (h *HTTP) do(req *http.Request, id string, out *Envelope) error {
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return transport("http", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && id != "":
		return notFound("http", id)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return transport("http", fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.New(errs.ErrCodeInvalidInput, "storage server: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transport("http", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

var _ Store = (*HTTP)(nil)
