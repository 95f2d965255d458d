package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/insight-cli/internal/domain/apierrors"
	"github.com/bryanwahyu/insight-cli/internal/domain/files"
	"github.com/bryanwahyu/insight-cli/internal/domain/session"
)

// Client is the outbound HTTP adapter for the analysis API. It injects the
// bearer credential on every call made with a session present and classifies
// the authorization-failure case uniformly: a 401 on an authenticated call
// clears the session, fires the unauthorized hook and surfaces
// apierrors.ErrUnauthorized. Implements session.Authenticator and
// files.Gateway.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Store
	log      *zap.Logger

	onUnauthorized func()
}

func New(baseURL string, timeout time.Duration, sessions session.Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: newLoggingTransport(http.DefaultTransport, log),
		},
		sessions: sessions,
		log:      log,
	}
}

// OnUnauthorized registers the hook fired when any request reports an
// expired credential. Wired once at composition time; any request anywhere
// in the client can force a logout through it.
func (c *Client) OnUnauthorized(fn func()) { c.onUnauthorized = fn }

// do performs one call. A 401 on a call that carried a credential is session
// expiry: the stored session is dropped before the hook runs so that late
// loads observe the logged-out state. A 401 on an unauthenticated call (bad
// login) is left to the caller as a normal response.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	authed := false
	if sess, ok, _ := c.sessions.Load(); ok {
		req.Header.Set("Authorization", "Bearer "+sess.Credential)
		authed = true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && authed {
		resp.Body.Close()
		_ = c.sessions.Clear()
		c.log.Warn("session expired", zap.String("path", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, apierrors.ErrUnauthorized
	}
	return resp, nil
}

// apiError drains a non-2xx response into the caller-facing error, picking
// up the server's `detail` field when the body has one.
func apiError(resp *http.Response) error {
	defer resp.Body.Close()
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &apierrors.RequestError{Status: resp.StatusCode, Detail: body.Detail}
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Register implements session.Authenticator.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/register", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return apiError(resp)
	}
	return nil
}

// Login implements session.Authenticator. The token endpoint takes
// login-form-encoded fields and answers with the issued bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	resp, err := c.do(ctx, http.MethodPost, "/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return "", apiError(resp)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.AccessToken, nil
}

// Analyze implements files.Gateway. The request is multipart: the raw file
// bytes under "file" and the rendered instructions under "prompt".
func (c *Client) Analyze(ctx context.Context, filename string, content io.Reader, prompt string) (*files.UploadedFile, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/analyze", w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, apiError(resp)
	}
	var uploaded files.UploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, err
	}
	return &uploaded, nil
}

// History implements files.Gateway.
func (c *Client) History(ctx context.Context) ([]*files.UploadedFile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/history", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, apiError(resp)
	}
	var list []*files.UploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// Delete implements files.Gateway.
func (c *Client) Delete(ctx context.Context, id files.FileID) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/files/%d", id), "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return apiError(resp)
	}
	return nil
}

// Download implements files.Gateway. The caller closes the returned body.
func (c *Client) Download(ctx context.Context, id int64, format files.Format) (io.ReadCloser, string, error) {
	resp, err := c.do(ctx, http.MethodGet, files.DownloadPath(id, format), "", nil)
	if err != nil {
		return nil, "", err
	}
	if !ok(resp) {
		return nil, "", apiError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
