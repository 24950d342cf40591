package sheetsync

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

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

var (
	ErrNotConfigured = errors.New("sheet sync is not configured")
	ErrInvalidConfig = errors.New("invalid sheet sync config")
)

// Config comes from the environment only and is never written anywhere.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// Validate accepts an empty config (sync disabled). Otherwise the URL must be an absolute
// http(s) URL and credentials must be given both or neither.
func (c Config) Validate() error {
	if !c.Enabled() {
		if c.Username != "" || c.Password != "" {
			return fmt.Errorf("%w: credentials set without SHEET_SYNC_URL", ErrInvalidConfig)
		}
		return nil
	}
	parsed, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%w: SHEET_SYNC_URL must be an absolute URL", ErrInvalidConfig)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: SHEET_SYNC_URL must use http or https", ErrInvalidConfig)
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("%w: SHEET_SYNC_USERNAME and SHEET_SYNC_PASSWORD must be set together", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Error kinds reported by SyncError.
const (
	KindAuth     = "auth"
	KindNotFound = "not_found"
	KindMethod   = "method"
	KindRejected = "rejected"
	KindRemote   = "remote"
	KindNetwork  = "network"
)

// SyncError describes a failed push. StatusCode is 0 for network failures.
type SyncError struct {
	StatusCode int
	Kind       string
	Hint       string
	Body       string
	Err        error
}

func (e *SyncError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("sheet sync failed (%s): %s: %v", e.Kind, e.Hint, e.Err)
	}
	return fmt.Sprintf("sheet sync failed with status %d (%s): %s", e.StatusCode, e.Kind, e.Hint)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func classify(status int, body string) *SyncError {
	e := &SyncError{StatusCode: status, Body: body}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
		e.Hint = "check SHEET_SYNC_USERNAME and SHEET_SYNC_PASSWORD"
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Hint = "check SHEET_SYNC_URL points at the sheet endpoint"
	case status == http.StatusMethodNotAllowed:
		e.Kind = KindMethod
		e.Hint = "the endpoint does not accept POST; check the deployment of the sheet API"
	case status >= 400 && status < 500:
		e.Kind = KindRejected
		e.Hint = "the sheet API rejected the rows"
	default:
		e.Kind = KindRemote
		e.Hint = "the sheet API failed; retry later"
	}
	return e
}

type pushRequest struct {
	Action   string            `json:"action"`
	KeyField string            `json:"key_field"`
	Rows     []domain.SheetRow `json:"rows"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}, nil
}

// Push upserts rows keyed by their Key field. The whole push succeeds or fails as one.
func (c *Client) Push(ctx context.Context, rows []domain.SheetRow) error {
	if rows == nil {
		rows = []domain.SheetRow{}
	}
	payload, err := json.Marshal(pushRequest{Action: "upsert", KeyField: "key", Rows: rows})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &SyncError{Kind: KindNetwork, Hint: "could not reach the sheet API", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// RowKey is the composite upsert key of a (date, customer) row.
func RowKey(day string, customerID string) string {
	return day + "|" + customerID
}
