// Package github is a minimal client for the repository contents API:
// read one file with its blob sha, and replace it if the sha still matches.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"academy/internal/codec"
	"academy/internal/httpx"
)

const (
	DefaultBaseURL = "https://api.github.com"
	acceptGitHub   = "application/vnd.github+json"
	apiVersion     = "2022-11-28"
)

var (
	ErrNotFound = errors.New("github: file not found")
	ErrConflict = errors.New("github: file changed since it was read")
)

// APIError is a non-2xx answer that is neither a 404 nor a conflict.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: status=%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: status=%d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// Target names one file in one repository.
type Target struct {
	Token  string
	Repo   string // "owner/name"
	Path   string
	Branch string // empty means the default branch
}

// Contents is a fetched file, already decoded to text.
type Contents struct {
	Content string
	SHA     string
	Size    int
}

// UpdateRequest replaces or creates a file. SHA must be the blob sha from
// the last read when the file exists, and empty when creating it.
type UpdateRequest struct {
	Message string
	Content string
	SHA     string
}

type UpdateResponse struct {
	ContentSHA string
	CommitSHA  string
	HTMLURL    string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     logrus.FieldLogger
}

func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type contentsResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
}

type blobResponse struct {
	SHA      string `json:"sha"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

type putBody struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type errorBody struct {
	Message string `json:"message"`
}

// GetContents reads a file. Files above the inline size limit come back
// with encoding "none" and are read through the git blobs API instead.
func (c *Client) GetContents(ctx context.Context, t Target) (*Contents, error) {
	u := c.contentsURL(t)
	if t.Branch != "" {
		u += "?ref=" + url.QueryEscape(t.Branch)
	}

	var out contentsResponse
	err := httpx.DoJSON(ctx, c.HTTP, c.builder(t, http.MethodGet, u, nil), &out, c.readRetry())
	if err != nil {
		return nil, c.classify(err, "get contents")
	}
	if out.Type != "" && out.Type != "file" {
		return nil, fmt.Errorf("github: %s is a %s, not a file", t.Path, out.Type)
	}

	raw, encoding := out.Content, out.Encoding
	if encoding == "none" || (raw == "" && out.Size > 0) {
		blob, err := c.getBlob(ctx, t, out.SHA)
		if err != nil {
			return nil, err
		}
		raw, encoding = blob.Content, blob.Encoding
	}

	text, err := decodeContent(raw, encoding)
	if err != nil {
		return nil, fmt.Errorf("github: decode %s: %w", t.Path, err)
	}
	return &Contents{Content: text, SHA: out.SHA, Size: out.Size}, nil
}

func (c *Client) getBlob(ctx context.Context, t Target, sha string) (*blobResponse, error) {
	u := fmt.Sprintf("%s/repos/%s/git/blobs/%s", c.BaseURL, t.Repo, url.PathEscape(sha))
	var out blobResponse
	if err := httpx.DoJSON(ctx, c.HTTP, c.builder(t, http.MethodGet, u, nil), &out, c.readRetry()); err != nil {
		return nil, c.classify(err, "get blob")
	}
	return &out, nil
}

// PutContents writes the file in a single request. A stale SHA is
// reported as ErrConflict and never retried.
func (c *Client) PutContents(ctx context.Context, t Target, req UpdateRequest) (*UpdateResponse, error) {
	b, err := json.Marshal(putBody{
		Message: req.Message,
		Content: codec.Encode(req.Content),
		SHA:     req.SHA,
		Branch:  t.Branch,
	})
	if err != nil {
		return nil, err
	}

	var out putResponse
	err = httpx.DoJSON(ctx, c.HTTP, c.builder(t, http.MethodPut, c.contentsURL(t), b), &out, httpx.SingleAttempt())
	if err != nil {
		return nil, c.classify(err, "put contents")
	}

	return &UpdateResponse{
		ContentSHA: out.Content.SHA,
		CommitSHA:  out.Commit.SHA,
		HTMLURL:    out.Content.HTMLURL,
	}, nil
}

func (c *Client) contentsURL(t Target) string {
	segs := strings.Split(strings.Trim(t.Path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.BaseURL, strings.Trim(t.Repo, "/"), strings.Join(segs, "/"))
}

func (c *Client) builder(t Target, method, u string, body []byte) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		r, err := httpx.JSONRequest(ctx, method, u, body)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", acceptGitHub)
		r.Header.Set("X-GitHub-Api-Version", apiVersion)
		r.Header.Set("Authorization", "Bearer "+t.Token)
		return r, nil
	}
}

func (c *Client) readRetry() httpx.RetryConfig {
	cfg := httpx.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.Logger = c.Log
	return cfg
}

// classify maps transport errors onto ErrNotFound, ErrConflict or *APIError.
func (c *Client) classify(err error, op string) error {
	var herr *httpx.HTTPError
	if !errors.As(err, &herr) {
		return fmt.Errorf("github: %s: %w", op, err)
	}

	msg := remoteMessage(herr.Body)
	switch {
	case herr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case herr.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case herr.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "sha"):
		// a file created by someone else since our 404 read
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return &APIError{StatusCode: herr.StatusCode, Message: msg, Err: herr}
}

func remoteMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return strings.TrimSpace(string(body))
}

func decodeContent(raw, encoding string) (string, error) {
	switch encoding {
	case "", "base64":
		return codec.Decode(raw)
	case "utf-8":
		return raw, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", encoding)
}
