// Package report composes "report an issue" messages and hands them to the host
// bridge as an outbound deep link. Failed deliveries are returned, never retried.
package report

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

	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
)

var (
	ErrEmptyComment = errors.New("comment cannot be empty")
	ErrDisabled     = errors.New("issue reporting is not configured")
)

const maxCommentRunes = 2000

// SearchContext is the subject used when no drug is selected
const SearchContext = "поиск"

// Compose builds the message text for a comment about subject, a drug name or the
// search context.
func Compose(subject, comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", ErrEmptyComment
	}
	if r := []rune(comment); len(r) > maxCommentRunes {
		comment = string(r[:maxCommentRunes])
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = SearchContext
	}
	return fmt.Sprintf("Ошибка в справочнике (%s): %s", subject, comment), nil
}

// DeepLink returns base with the message in its text query parameter
func DeepLink(base, message string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set("text", message)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Message is what the host bridge receives
type Message struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Sender delivers a composed message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts messages as JSON to the host bridge endpoint
type HTTPSender struct {
	Endpoint string
	LinkBase string
	Client   *http.Client
}

func NewHTTPSender(endpoint, linkBase string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		Endpoint: endpoint,
		LinkBase: linkBase,
		Client:   &http.Client{Timeout: timeout},
	}
}

// NewMessage composes the message and its deep link
func (s *HTTPSender) NewMessage(subject, comment string) (Message, error) {
	text, err := Compose(subject, comment)
	if err != nil {
		return Message{}, err
	}
	link, err := DeepLink(s.LinkBase, text)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: "open_link", URL: link, Text: text}, nil
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if s.Endpoint == "" {
		return ErrDisabled
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.ReportTotals.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to deliver report: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ReportTotals.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to deliver report: bridge answered %d", resp.StatusCode)
	}

	metrics.ReportTotals.WithLabelValues("ok").Inc()
	logging.Info("Issue report delivered", "bytes", len(body))
	return nil
}
