// Package api talks to the recall backend over HTTP. The backend owns
// the people directory, conversation history and recording pipeline;
// this client only fetches and uploads, it never caches across calls.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"recall/internal/logging"
)

// DefaultBaseURL is where the backend listens when nothing is configured.
const DefaultBaseURL = "http://localhost:3000"

// sessionHeader tags every request with the launch session, so backend
// logs can be correlated with the client's audit trail.
const sessionHeader = "X-Recall-Session"

// =============================================================================
// CLIENT
// =============================================================================

// Client is the HTTP client for the recall backend.
type Client struct {
	baseURL   string
	sessionID string

	// http serves the quick directory/history GETs. uploader serves
	// POST /api/process: processing a recording runs for minutes and is
	// not idempotent, so it gets no automatic retries and no client
	// timeout (the caller's context bounds it instead).
	http     *retryablehttp.Client
	uploader *retryablehttp.Client
}

// NewClient creates a backend client. Zero values fall back to
// DefaultBaseURL, a 30s timeout and 3 retries.
func NewClient(baseURL string, timeout time.Duration, retryMax int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retryMax < 0 {
		retryMax = 3
	}

	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout

	up := retryablehttp.NewClient()
	up.Logger = log.New(io.Discard, "", 0)
	up.RetryMax = 0
	up.HTTPClient.Timeout = 0

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: uuid.NewString(),
		http:      rc,
		uploader:  up,
	}
}

// SessionID returns the uuid sent as the session header on every
// request. It is fixed for the lifetime of the client.
func (c *Client) SessionID() string {
	return c.sessionID
}

// BaseURL returns the backend address this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues a GET against the backend and returns status and body.
// Transport errors are returned as-is; HTTP error statuses are not.
func (c *Client) get(ctx context.Context, path string) (int, string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(sessionHeader, c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, string(body), nil
}

// observe logs one backend call to the api category and audit trail.
func (c *Client) observe(endpoint string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		logging.APIError("%s failed after %v: %v", endpoint, elapsed, err)
		logging.Audit().APICall(endpoint, elapsed.Milliseconds(), false, err.Error())
		return
	}
	logging.API("%s completed in %v", endpoint, elapsed)
	logging.Audit().APICall(endpoint, elapsed.Milliseconds(), true, "")
}

// =============================================================================
// OPERATIONS
// =============================================================================

// People fetches the directory of enrolled people. An empty directory
// is a valid result, not an error.
func (c *Client) People(ctx context.Context) (people []Person, err error) {
	start := time.Now()
	defer func() { c.observe("GET /api/people", start, err) }()

	status, body, err := c.get(ctx, "/api/people")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, backendError("people", status, body)
	}

	for _, entry := range gjson.Parse(body).Array() {
		name := gjson.Get(entry.Raw, "name").String()
		if name == "" {
			continue
		}
		people = append(people, Person{
			Name:     name,
			ImageURL: gjson.Get(entry.Raw, "image_url").String(),
		})
	}

	return people, nil
}

// Conversation fetches the recorded history for one person. A 404
// means nobody has recorded them yet, which is an empty history rather
// than an error.
func (c *Client) Conversation(ctx context.Context, name string) (h History, err error) {
	start := time.Now()
	defer func() { c.observe("GET /api/conversation", start, err) }()

	h.Name = name
	status, body, err := c.get(ctx, "/api/conversation/"+url.PathEscape(name))
	if err != nil {
		return h, err
	}
	if status == http.StatusNotFound {
		return h, nil
	}
	if status != http.StatusOK {
		return h, backendError("conversation", status, body)
	}

	if resolved := gjson.Get(body, "name").String(); resolved != "" {
		h.Name = resolved
	}
	for _, session := range gjson.Get(body, "conversation").Array() {
		s := ConversationSession{
			Timestamp: gjson.Get(session.Raw, "timestamp").Int(),
		}
		for _, line := range gjson.Get(session.Raw, "conversation").Array() {
			s.Lines = append(s.Lines, ConversationLine{
				Speaker: gjson.Get(line.Raw, "speaker").String(),
				Text:    gjson.Get(line.Raw, "text").String(),
			})
		}
		h.Sessions = append(h.Sessions, s)
	}

	return h, nil
}

// Upload sends a recording to the backend for processing and waits for
// the verdict. The backend transcribes and face-matches the video, so
// callers should budget minutes, not seconds, in ctx.
func (c *Client) Upload(ctx context.Context, path string) (result UploadResult, err error) {
	start := time.Now()
	defer func() { c.observe("POST /api/process", start, err) }()

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	// retryablehttp needs a rewindable body, so the multipart payload
	// is buffered up front.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return result, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return result, fmt.Errorf("failed to read recording: %w", err)
	}
	if err := form.Close(); err != nil {
		return result, fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process", buf.Bytes())
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(sessionHeader, c.sessionID)

	resp, err := c.uploader.Do(req)
	if err != nil {
		return result, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result, backendError("process", resp.StatusCode, string(body))
	}

	result = UploadResult{
		GuessedName:  gjson.GetBytes(body, "guessed_name").String(),
		FaceStatus:   gjson.GetBytes(body, "face_status").String(),
		FaceName:     gjson.GetBytes(body, "face_name").String(),
		AutoEnrolled: gjson.GetBytes(body, "auto_enrolled").Bool(),
	}
	for _, line := range gjson.GetBytes(body, "conversation").Array() {
		result.Lines = append(result.Lines, ConversationLine{
			Speaker: gjson.Get(line.Raw, "speaker").String(),
			Text:    gjson.Get(line.Raw, "text").String(),
		})
	}

	return result, nil
}

// backendError turns a non-200 response into an error, surfacing the
// backend's JSON error field when it sent one.
func backendError(op string, status int, body string) error {
	if msg := gjson.Get(body, "error").String(); msg != "" {
		return fmt.Errorf("%s: backend returned status %d: %s", op, status, msg)
	}
	return fmt.Errorf("%s: backend returned status %d", op, status)
}
