// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP adapter for the dual-key encryption service.
//
// Every outgoing request goes through this client: it attaches the bearer
// credential, classifies every response into exactly one of
// Ok/AuthFailure/DomainError/TransportError, and funnels authorization
// failures through a single hook so session teardown happens in one place.
// Nothing here retries - every failure is terminal for that submission.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/monitor"
)

const (
	// DefaultTimeout bounds every non-file request.
	DefaultTimeout = 30 * time.Second

	// FileTimeout bounds multipart uploads and binary downloads.
	FileTimeout = 2 * time.Minute

	// MaxResponseSize caps response bodies. File artifacts are base64 or
	// raw binary, so the cap is generous but still bounded.
	MaxResponseSize = 64 * 1024 * 1024

	userAgent = "qvault/0.1.0"
)

// TokenSource supplies the current bearer credential. The session store
// satisfies this; the client never caches the token itself.
type TokenSource interface {
	Token() string
}

// Client talks to the encryption service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fileClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter

	// onAuthFailure runs once per response that carries an authorization
	// failure, from any endpoint. It is the one piece of global control
	// flow in the client.
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

// WithAuthFailureHook sets the hook fired on every authorization failure.
func WithAuthFailureHook(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// WithTimeout overrides the non-file request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithFileTimeout overrides the upload/download timeout.
func WithFileTimeout(d time.Duration) Option {
	return func(c *Client) { c.fileClient.Timeout = d }
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient creates a client for the service at baseURL. TLS verification is
// always on; the service is reached over HTTPS in any real deployment.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: DefaultTimeout},
		fileClient: &http.Client{Transport: transport, Timeout: FileTimeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL repoints the client, used by config hot reload.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login performs the credential exchange and returns the issued bearer
// token. The password goes over the wire and is then gone - it is never
// stored or logged anywhere in the client.
func (c *Client) Login(ctx context.Context, username string, role access.Role, password string) (string, error) {
	body := loginRequest{
		User:     loginUser{Username: username, Role: role},
		Password: password,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.do(c.httpClient, req)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	respBody, err := readBody(httpResp)
	if err != nil {
		return "", err
	}

	// A 401 on this exchange is a rejected credential, not an expired
	// session: no bearer token was presented. The teardown hook stays out
	// of it and the service detail surfaces on the form.
	if httpResp.StatusCode == http.StatusUnauthorized {
		detail := "Invalid login details"
		var envelope errorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Detail != "" {
			detail = envelope.Detail
		}
		return "", &APIError{Status: httpResp.StatusCode, Detail: detail}
	}
	if err := c.checkStatus(httpResp, respBody); err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrTransport, err)
	}
	if resp.AccessToken == "" {
		return "", &APIError{Status: http.StatusOK, Detail: "login response carried no access token"}
	}
	return resp.AccessToken, nil
}

// =============================================================================
// CRYPTO OPERATIONS
// =============================================================================

// EncryptText encrypts a text payload under dual control.
func (c *Client) EncryptText(ctx context.Context, req TextEncryptRequest) (*TextEncryptResult, error) {
	var resp TextEncryptResult
	if err := c.postJSON(ctx, "/encryption/encrypt", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DecryptText recovers plaintext from an encrypt result. All four fields
// must round-trip unmodified from the original encrypt response.
func (c *Client) DecryptText(ctx context.Context, req TextDecryptRequest) (string, error) {
	var resp textDecryptResponse
	if err := c.postJSON(ctx, "/encryption/decrypt", req, &resp); err != nil {
		return "", err
	}
	return resp.Data, nil
}

// EncryptFile uploads a file for encryption. The response carries the
// encrypted artifact base64-encoded plus the suggested filename.
func (c *Client) EncryptFile(ctx context.Context, filename string, content []byte, userKey, keyID string) (*FileEncryptResult, error) {
	fields := map[string]string{"user_key": userKey, "key_id": keyID}
	resp, err := c.postMultipart(ctx, "/encryption/encrypt-file", filename, content, fields)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp, body); err != nil {
		return nil, err
	}

	var result FileEncryptResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed encrypt-file response: %v", ErrTransport, err)
	}
	return &result, nil
}

// DecryptFile uploads an encrypted file and returns the decrypted bytes.
// The success path is a raw binary stream; failures on this endpoint arrive
// as binary-typed payloads containing JSON, so errors are probed as
// text-then-JSON before falling back to ErrDecryptionFailed.
func (c *Client) DecryptFile(ctx context.Context, filename string, content []byte, kyberCiphertext, userKey, keyID string) ([]byte, error) {
	fields := map[string]string{
		"kyber_ciphertext": kyberCiphertext,
		"user_key":         userKey,
		"key_id":           keyID,
	}
	resp, err := c.postMultipart(ctx, "/encryption/decrypt-file", filename, content, fields)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.authFailed()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeBinaryError(body)
	}
	return body, nil
}

// decodeBinaryError probes a binary-typed error payload: decode as text,
// attempt the JSON error envelope, fall back to the generic failure.
func decodeBinaryError(body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		return &APIError{Status: http.StatusBadRequest, Detail: envelope.Detail}
	}
	return ErrDecryptionFailed
}

// =============================================================================
// LEDGER AND TELEMETRY
// =============================================================================

// Ledger fetches the audit chain in served order.
func (c *Client) Ledger(ctx context.Context) ([]ledger.Block, error) {
	var resp ledgerResponse
	if err := c.getJSON(ctx, "/audit/ledger", &resp); err != nil {
		return nil, err
	}
	return resp.Chain, nil
}

// ValidateLedger asks the service for its own chain-integrity verdict.
// Local verification via ledger.VerifyChain complements this.
func (c *Client) ValidateLedger(ctx context.Context) (bool, error) {
	var resp validateResponse
	if err := c.getJSON(ctx, "/audit/validate", &resp); err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

// Alerts fetches the active anomaly alerts.
func (c *Client) Alerts(ctx context.Context) ([]monitor.Alert, error) {
	var resp alertsResponse
	if err := c.getJSON(ctx, "/monitor/alerts", &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// Stats fetches the aggregate event statistics.
func (c *Client) Stats(ctx context.Context) (*monitor.Stats, error) {
	var resp monitor.Stats
	if err := c.getJSON(ctx, "/monitor/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) postJSON(ctx context.Context, path string, reqBody, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(c.httpClient, req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return c.doJSON(c.httpClient, req, out)
}

func (c *Client) doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := c.do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return err
	}
	if err := c.checkStatus(resp, body); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrTransport, err)
	}
	return nil
}

func (c *Client) postMultipart(ctx context.Context, path, filename string, content []byte, fields map[string]string) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(c.fileClient, req)
}

// do sends one request with credential injection and request logging. The
// bearer header is cleared immediately after the round trip so it cannot
// leak through request dumps.
func (c *Client) do(client *http.Client, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	req.Header.Del("Authorization")

	if err != nil {
		log.Printf("api: %s %s failed after %v", req.Method, req.URL.Path, time.Since(start).Round(time.Millisecond))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	// Method, path, status, and duration only. Never headers or bodies.
	log.Printf("api: %s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// checkStatus classifies a non-2xx JSON response. 401 fires the
// auth-failure hook and maps to ErrUnauthorized; anything else becomes an
// APIError carrying the service detail when one was sent.
func (c *Client) checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.authFailed()
		return ErrUnauthorized
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		return &APIError{Status: resp.StatusCode, Detail: envelope.Detail}
	}
	return &APIError{Status: resp.StatusCode}
}

func (c *Client) authFailed() {
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

// readBody reads a response body under the size cap.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeded %d bytes", ErrTransport, MaxResponseSize)
	}
	return body, nil
}
