// Package worker is the HTTP client for the runtime that hosts dialog
// workers. Each dialog runs inside a named worker instantiated from a
// per-dialog-type template; the client creates workers, acquires
// invocation keys and delivers step events.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	coreconfig "github.com/m3rciful/shelfbot/core/config"
	"github.com/m3rciful/shelfbot/core/logger"
	"github.com/m3rciful/shelfbot/dialog"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
)

// Client talks to the worker runtime REST API.
type Client struct {
	baseURL string
	token   string
	stepFn  string
	http    *http.Client
}

// NewClient builds a runtime client from configuration. The timeout bounds
// every call including invoke-and-await, which blocks until the remote
// worker finishes the step.
func NewClient(cfg coreconfig.RuntimeConfig, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		stepFn:  cfg.StepFunction,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

// NewID returns a fresh worker name. Names are unique per dialog so a
// user can run many dialogs over time against the same template.
func NewID() string {
	return uuid.NewString()
}

type createRequest struct {
	Name string      `json:"name"`
	Env  [][2]string `json:"env"`
	Args []string    `json:"args"`
}

type createResponse struct {
	WorkerID struct {
		WorkerName string `json:"workerName"`
	} `json:"workerId"`
}

// Create instantiates a worker named workerID from the given template.
// The env pairs become the worker's environment.
func (c *Client) Create(ctx context.Context, template, workerID string, env [][2]string) error {
	start := time.Now()
	if env == nil {
		env = [][2]string{}
	}
	body := createRequest{Name: workerID, Env: env, Args: []string{}}

	var resp createResponse
	err := c.post(ctx, fmt.Sprintf("%s/templates/%s/workers", c.baseURL, url.PathEscape(template)), body, &resp)
	if err == nil && resp.WorkerID.WorkerName != workerID {
		err = fmt.Errorf("runtime returned worker %q, want %q", resp.WorkerID.WorkerName, workerID)
	}
	logCall(ctx, "worker.create", template, workerID, start, err)
	if err != nil {
		return &Error{Kind: KindCreate, Template: template, WorkerID: workerID, Err: err}
	}
	return nil
}

type keyResponse struct {
	Value string `json:"value"`
}

// InvocationKey obtains a one-shot idempotency key for the next invoke.
// The runtime deduplicates invocations sharing a key, so a redelivered
// update never applies a step twice.
func (c *Client) InvocationKey(ctx context.Context, template, workerID string) (string, error) {
	start := time.Now()
	var resp keyResponse
	err := c.post(ctx, c.workerURL(template, workerID)+"/key", nil, &resp)
	if err == nil && resp.Value == "" {
		err = fmt.Errorf("runtime returned empty invocation key")
	}
	logCall(ctx, "worker.key", template, workerID, start, err)
	if err != nil {
		return "", &Error{Kind: KindCredential, Template: template, WorkerID: workerID, Err: err}
	}
	return resp.Value, nil
}

type invokeRequest struct {
	Params []string `json:"params"`
}

type invokeResponse struct {
	Result []json.RawMessage `json:"result"`
}

// InvokeStep delivers one dialog event to the worker and waits for the
// resulting outcome. The event travels as a JSON string inside the
// invocation envelope; the outcome comes back the same way.
func (c *Client) InvokeStep(ctx context.Context, template, workerID, key string, ev dialog.Event) (dialog.Outcome, error) {
	start := time.Now()
	outcome, err := c.invokeStep(ctx, template, workerID, key, ev)
	logCall(ctx, "worker.invoke", template, workerID, start, err)
	if err != nil {
		return dialog.Outcome{}, &Error{Kind: KindInvoke, Template: template, WorkerID: workerID, Err: err}
	}
	return outcome, nil
}

func (c *Client) invokeStep(ctx context.Context, template, workerID, key string, ev dialog.Event) (dialog.Outcome, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return dialog.Outcome{}, fmt.Errorf("encode event: %w", err)
	}

	q := url.Values{}
	q.Set("invocation-key", key)
	q.Set("function", c.stepFn)
	target := c.workerURL(template, workerID) + "/invoke-and-await?" + q.Encode()

	var resp invokeResponse
	if err := c.post(ctx, target, invokeRequest{Params: []string{string(payload)}}, &resp); err != nil {
		return dialog.Outcome{}, err
	}
	if len(resp.Result) != 1 {
		return dialog.Outcome{}, fmt.Errorf("runtime returned %d results, want 1", len(resp.Result))
	}

	var outcome dialog.Outcome
	if err := json.Unmarshal(resp.Result[0], &outcome); err != nil {
		return dialog.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return outcome, nil
}

// Delete removes a finished or abandoned worker. Failures are reported
// but callers treat disposal as best-effort: a leaked worker costs the
// runtime nothing once its dialog reached a terminal state.
func (c *Client) Delete(ctx context.Context, template, workerID string) error {
	start := time.Now()
	err := c.do(ctx, http.MethodDelete, c.workerURL(template, workerID), nil, nil)
	logCall(ctx, "worker.delete", template, workerID, start, err)
	if err != nil {
		return &Error{Kind: KindDelete, Template: template, WorkerID: workerID, Err: err}
	}
	return nil
}

func (c *Client) workerURL(template, workerID string) string {
	return fmt.Sprintf("%s/templates/%s/workers/%s", c.baseURL, url.PathEscape(template), url.PathEscape(workerID))
}

func (c *Client) post(ctx context.Context, target string, body, out any) error {
	return c.do(ctx, http.MethodPost, target, body, out)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("runtime returned %d: %s", resp.StatusCode, logger.Sanitize(string(snippet)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func logCall(ctx context.Context, event, template, workerID string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("template", template),
		slog.String("worker_id", workerID),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.Sanitize(err.Error())))
		logger.Warn(ctx, "worker", event, attrs...)
		return
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "worker", event, attrs...)
	}
}
