package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// Supported webhook payload formats.
const (
	FormatSlack   = "slack"
	FormatDiscord = "discord"
)

// Transport delivers a message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError reports a failed delivery.
type TransportError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("webhook request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{e.Err, errs.ErrTransport}
}

// Webhook posts messages to a Slack or Discord incoming webhook.
type Webhook struct {
	URL     string
	Format  string
	Retries int
	Client  *http.Client

	// InitialInterval is the first retry delay; it doubles on each retry.
	InitialInterval time.Duration
}

// NewWebhook builds a webhook transport with a timeout-bound client.
func NewWebhook(url, format string, retries int, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = consts.DefaultTimeout
	}
	return &Webhook{
		URL:             url,
		Format:          format,
		Retries:         retries,
		Client:          &http.Client{Timeout: timeout},
		InitialInterval: 500 * time.Millisecond,
	}
}

// ValidFormat reports whether format names a supported payload format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatSlack, FormatDiscord:
		return true
	}
	return false
}

// Send posts msg. Network errors and 5xx responses are retried with
// exponential backoff; 4xx responses fail immediately.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	payload, err := w.payload(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	if w.InitialInterval > 0 {
		b.InitialInterval = w.InitialInterval
	}
	retries := w.Retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	return backoff.Retry(func() error {
		return w.post(ctx, payload)
	}, policy)
}

func (w *Webhook) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(&TransportError{Err: err})
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, consts.BodySnippetLimitBytes))

	if resp.StatusCode < 300 {
		return nil
	}

	terr := &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(body)))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return terr
	}
	return backoff.Permanent(terr)
}

func (w *Webhook) payload(msg Message) ([]byte, error) {
	if strings.ToLower(w.Format) != FormatDiscord {
		return json.Marshal(msg)
	}

	type embedFooter struct {
		Text string `json:"text"`
	}
	type embed struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Color       int          `json:"color"`
		Footer      *embedFooter `json:"footer,omitempty"`
		Timestamp   string       `json:"timestamp"`
	}

	embeds := make([]embed, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		e := embed{
			Title:       a.Title,
			Description: a.Text,
			Color:       hexColor(a.Color),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}
		if a.Footer != "" {
			e.Footer = &embedFooter{Text: a.Footer}
		}
		embeds = append(embeds, e)
	}
	return json.Marshal(map[string]interface{}{"embeds": embeds})
}

// hexColor converts "#RRGGBB" to the integer form Discord expects.
func hexColor(s string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
