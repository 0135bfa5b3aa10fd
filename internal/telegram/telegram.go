package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/scheduler"
)

const DefaultAPIURL = "https://api.telegram.org"

// Notifier posts scraping run summaries to a Telegram chat
type Notifier struct {
	logger   *logrus.Logger
	client   *http.Client
	apiURL   string
	botToken string
	chatID   string
	retries  uint64
	interval time.Duration
}

func NewNotifier(apiURL, botToken, chatID string, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Notifier{
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		retries:  3,
		interval: time.Second,
	}
}

// Enabled reports whether both the bot token and the chat id are set
func (n *Notifier) Enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// SendMessage sends an HTML message to the configured chat. Server errors
// are retried; client errors are not.
func (n *Notifier) SendMessage(ctx context.Context, message string) error {
	if !n.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(n.interval), n.retries), ctx)
	return backoff.Retry(func() error {
		return n.post(ctx, url, payload)
	}, b)
}

func (n *Notifier) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusNotFound:
		return backoff.Permanent(errors.New("invalid bot token"))
	case http.StatusBadRequest:
		return backoff.Permanent(fmt.Errorf("invalid chat ID or message format: %s", string(body)))
	case http.StatusForbidden:
		return backoff.Permanent(errors.New("bot was blocked by the user or chat"))
	default:
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}
}

// NotifyScrapeRun sends the summary of a finished scraping run
func (n *Notifier) NotifyScrapeRun(ctx context.Context, summary *scheduler.RunSummary) error {
	if err := n.SendMessage(ctx, FormatRunSummary(summary)); err != nil {
		n.logger.WithError(err).Error("Failed to send scraping summary")
		return err
	}
	return nil
}

// FormatRunSummary renders a run summary as a Telegram HTML message
func FormatRunSummary(s *scheduler.RunSummary) string {
	var b strings.Builder

	if s.Error != "" {
		b.WriteString("<b>Scraping run failed</b>\n\n")
		fmt.Fprintf(&b, "Error: %s\n", html.EscapeString(s.Error))
	} else if s.Failed > 0 {
		b.WriteString("<b>Scraping run finished with failures</b>\n\n")
	} else {
		b.WriteString("<b>Scraping run finished</b>\n\n")
	}

	fmt.Fprintf(&b, "Hotels: %d\n", s.Hotels)
	fmt.Fprintf(&b, "Runs: %d (%d ok, %d failed, %d skipped)\n", s.Runs, s.Succeeded, s.Failed, s.Skipped)
	fmt.Fprintf(&b, "Reviews scraped: %d\n", s.Reviews)
	fmt.Fprintf(&b, "Duration: %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))

	return b.String()
}
