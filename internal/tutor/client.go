// Package tutor is the course chat assistant backed by the Gemini
// generateContent API.
package tutor

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
	"github.com/sony/gobreaker"

	"academy/internal/httpx"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"
)

var (
	ErrNoAPIKey    = errors.New("tutor: no API key configured")
	ErrEmptyAnswer = errors.New("tutor: model returned no text")
)

// Request is one question about one lesson.
type Request struct {
	CourseTitle string
	Context     string // the lesson being studied
	Message     string
}

type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = "Korean"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tutor",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// an empty answer is the model's problem, not the connection's
			return err == nil || errors.Is(err, ErrEmptyAnswer)
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		log:     log,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Generate asks the model one question and returns its text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: SystemInstruction(c.cfg.Language, req.CourseTitle, req.Context)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: req.Message}}}},
	})
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))

	retry := httpx.DefaultRetryConfig()
	retry.MaxAttempts = 3
	retry.Logger = c.log

	var resp generateResponse
	err = httpx.DoJSON(ctx, c.http, func(ctx context.Context) (*http.Request, error) {
		return httpx.JSONRequest(ctx, http.MethodPost, u, body)
	}, &resp, retry)
	if err != nil {
		return "", fmt.Errorf("tutor: generate: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

// SystemInstruction frames the model as the tutor of one course.
func SystemInstruction(language, courseTitle, lesson string) string {
	return fmt.Sprintf(`You are an expert tutor on a premium online learning platform.
Write every answer in %s, politely and kindly.
Course the student is taking: %q.
Lesson the student is studying now: %q.
Explain complex ideas simply, give code examples when they are relevant, and encourage the student.
Keep answers short and use Markdown for readability.`, language, courseTitle, lesson)
}
