// Package sync talks to the remote template store. It caches recent loads,
// shares concurrent loads of the same template, and retries transient
// server failures.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mithrel/folio/internal/cache"
	"github.com/mithrel/folio/internal/errs"
)

// Mode selects how updates treat concurrent edits.
type Mode string

const (
	// ModeLastWriteWins sends updates unconditionally.
	ModeLastWriteWins Mode = "lww"
	// ModeVersionMatch sends If-Match with the version the edit started
	// from; the store rejects the update with 409 when it has moved on.
	ModeVersionMatch Mode = "version"
)

const (
	DefaultMaxRetries       = 2
	DefaultExportMaxRetries = 1
	DefaultBaseDelay        = time.Second
	DefaultTimeout          = 30 * time.Second
	basePath                = "/editor-templates"
)

type Options struct {
	BaseURL string
	Token   string
	// User is sent as X-User-Id and becomes createdBy on new templates.
	User       string
	HTTPClient *http.Client
	Cache      cache.Cache
	// MaxRetries bounds extra attempts for save, load, delete and duplicate.
	MaxRetries *int
	// ExportMaxRetries bounds extra attempts for export.
	ExportMaxRetries *int
	BaseDelay        time.Duration
	// Sleep waits between attempts; it must return early with ctx's error
	// when ctx is done.
	Sleep          func(ctx context.Context, d time.Duration) error
	Mode           Mode
	RemoteValidate bool
	Errors         *errs.Registry
	Logger         *zap.SugaredLogger
	Now            func() time.Time
}

type Client struct {
	baseURL     string
	token       string
	user        string
	httpClient  *http.Client
	cache       cache.Cache
	maxRetries  int
	exportRetry int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	mode        Mode
	remoteCheck bool
	errors      *errs.Registry
	log         *zap.SugaredLogger
	now         func() time.Time
	flight      singleflight.Group

	// gens counts cache-replacing writes per id; a load only caches its
	// result when no write happened while it was in flight.
	genMu gosync.Mutex
	gens  map[string]uint64
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		user:        opts.User,
		httpClient:  opts.HTTPClient,
		cache:       opts.Cache,
		maxRetries:  DefaultMaxRetries,
		exportRetry: DefaultExportMaxRetries,
		baseDelay:   opts.BaseDelay,
		sleep:       opts.Sleep,
		mode:        opts.Mode,
		remoteCheck: opts.RemoteValidate,
		errors:      opts.Errors,
		log:         opts.Logger,
		now:         opts.Now,
		gens:        map[string]uint64{},
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.cache == nil {
		c.cache = cache.NewMemory(cache.DefaultTTL)
	}
	if opts.MaxRetries != nil {
		c.maxRetries = max(*opts.MaxRetries, 0)
	}
	if opts.ExportMaxRetries != nil {
		c.exportRetry = max(*opts.ExportMaxRetries, 0)
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.mode == "" {
		c.mode = ModeLastWriteWins
	}
	if c.errors == nil {
		c.errors = errs.NewRegistry()
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Errors returns the registry every surfaced failure is recorded in.
func (c *Client) Errors() *errs.Registry { return c.errors }

func (c *Client) Mode() Mode { return c.mode }

// envelope is the store's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) execRequest(ctx context.Context, method, url string, hdr http.Header, body []byte) ([]byte, int, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, 0, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.user != "" {
		req.Header.Set("X-User-Id", c.user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, nil
}

// call performs one request and decodes the envelope's data into out.
// Failures come back as *errs.Error.
func (c *Client) call(ctx context.Context, method, path string, hdr http.Header, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}
	respBody, status, err := c.execRequest(ctx, method, c.baseURL+path, hdr, body)
	if err != nil {
		return errs.Classify(err)
	}
	if status >= 400 {
		return errs.FromStatus(status, respBody)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &errs.Error{Kind: errs.KindServer, Status: status, Message: "malformed response", Err: err}
	}
	if !env.Success && env.Error != "" {
		return &errs.Error{Kind: errs.KindServer, Status: status, Message: env.Error}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &errs.Error{Kind: errs.KindServer, Status: status, Message: "malformed response", Err: err}
	}
	return nil
}

// fail classifies err, tags it with op, records it and logs it.
func (c *Client) fail(op string, err error) error {
	e := *errs.Classify(err)
	if e.Op == "" {
		e.Op = op
	}
	ent := c.errors.Record(&e)
	c.log.Warnw("store operation failed",
		"op", op,
		"kind", e.Kind,
		"status", e.Status,
		"error", e.Error(),
		"entry", ent.ID)
	return &e
}
