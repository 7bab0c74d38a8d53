// Package ctl is the client side of the worktrack CLI. It talks to a
// running daemon over HTTP and WebSocket.
package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"worktrack/internal/app"
	ledgerdto "worktrack/internal/modules/ledger/dto"
	signaldto "worktrack/internal/modules/signal/dto"
	trackingdto "worktrack/internal/modules/tracking/dto"
)

// APIError is a non-2xx daemon response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Status(ctx context.Context) (app.StatusResponse, error) {
	var out app.StatusResponse
	return out, c.do(ctx, http.MethodGet, "/api/status", nil, &out)
}

func (c *Client) Tracking(ctx context.Context) (trackingdto.StatusOutput, error) {
	var out trackingdto.StatusOutput
	return out, c.do(ctx, http.MethodGet, "/api/tracking", nil, &out)
}

func (c *Client) SendEvent(ctx context.Context, input trackingdto.EventInput) (trackingdto.StateOutput, error) {
	var out trackingdto.StateOutput
	return out, c.do(ctx, http.MethodPost, "/api/events", input, &out)
}

func (c *Client) ActiveSession(ctx context.Context) (ledgerdto.SessionOutput, error) {
	var out ledgerdto.SessionOutput
	return out, c.do(ctx, http.MethodGet, "/api/sessions/active", nil, &out)
}

// Sessions lists sessions started between from and to (YYYY-MM-DD, both
// optional, to inclusive).
func (c *Client) Sessions(ctx context.Context, from, to string, limit int) ([]ledgerdto.SessionOutput, error) {
	q := url.Values{}
	setIf(q, "from", from)
	setIf(q, "to", to)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []ledgerdto.SessionOutput
	return out, c.do(ctx, http.MethodGet, withQuery("/api/sessions", q), nil, &out)
}

func (c *Client) ExportNotes(ctx context.Context, from, to string) (ledgerdto.ExportNotesOutput, error) {
	q := url.Values{}
	setIf(q, "from", from)
	setIf(q, "to", to)
	var out ledgerdto.ExportNotesOutput
	return out, c.do(ctx, http.MethodPost, withQuery("/api/notes/export", q), nil, &out)
}

func (c *Client) BeaconSeen(ctx context.Context, beaconID string) error {
	return c.do(ctx, http.MethodPost, "/api/beacon/seen", map[string]string{"beacon_id": beaconID}, nil)
}

func (c *Client) BeaconExited(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/beacon/exited", nil, nil)
}

func (c *Client) Signals(ctx context.Context) ([]signaldto.SourceInfo, error) {
	var out []signaldto.SourceInfo
	return out, c.do(ctx, http.MethodGet, "/api/signals", nil, &out)
}

func (c *Client) SignalDoctor(ctx context.Context) ([]signaldto.DoctorResult, error) {
	var out []signaldto.DoctorResult
	return out, c.do(ctx, http.MethodGet, "/api/signals/doctor", nil, &out)
}

// Dial opens the daemon's event stream.
func (c *Client) Dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return conn, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
