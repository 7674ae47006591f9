package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	messageLimit   = 4096
)

const welcome = "Welcome to the Crypto Project Assistant!\n" +
	"Ask your questions about crypto projects, comparisons, or recommendations."

type Answerer interface {
	Answer(ctx context.Context, text string) string
}

type outgoing struct {
	chatID int64
	text   string
}

// Bot answers every private or group text message it receives through
// long polling. Replies go through a single rate-limited send queue.
type Bot struct {
	token    string
	baseURL  string
	answerer Answerer
	log      *slog.Logger

	client       *http.Client
	queue        chan outgoing
	minInterval  time.Duration
	lastSentTime time.Time
	pollTimeout  time.Duration
	offset       int64
}

type Option func(*Bot)

func WithBaseURL(base string) Option {
	return func(b *Bot) { b.baseURL = strings.TrimRight(base, "/") }
}

func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) { b.pollTimeout = d }
}

func WithMinInterval(d time.Duration) Option {
	return func(b *Bot) { b.minInterval = d }
}

func NewBot(token string, answerer Answerer, log *slog.Logger, opts ...Option) *Bot {
	b := &Bot{
		token:       token,
		baseURL:     DefaultBaseURL,
		answerer:    answerer,
		log:         log,
		queue:       make(chan outgoing, 100),
		minInterval: 1200 * time.Millisecond,
		pollTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.client = &http.Client{Timeout: b.pollTimeout + 15*time.Second}
	return b
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("telegram bot started")
	go b.worker(ctx)

	for {
		if err := b.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				b.log.Info("telegram bot stopped")
				return nil
			}
			b.log.Error("telegram poll failed", "error", err)
			if !sleep(ctx, 3*time.Second) {
				return nil
			}
		}
	}
}

func (b *Bot) pollOnce(ctx context.Context) error {
	updates, err := b.getUpdates(ctx)
	if err != nil {
		return err
	}

	for _, u := range updates {
		if u.UpdateID >= b.offset {
			b.offset = u.UpdateID + 1
		}
		if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
			continue
		}
		b.handleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) {
	reply := welcome
	if !strings.HasPrefix(text, "/start") {
		b.log.Debug("telegram question", "chat", chatID)
		reply = b.answerer.Answer(ctx, text)
	}

	for _, part := range splitMessage(reply, messageLimit) {
		select {
		case b.queue <- outgoing{chatID: chatID, text: part}:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) worker(ctx context.Context) {
	for {
		select {
		case msg := <-b.queue:
			b.sendWithRateLimit(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) sendWithRateLimit(ctx context.Context, msg outgoing) {
	if wait := time.Until(b.lastSentTime.Add(b.minInterval)); wait > 0 {
		if !sleep(ctx, wait) {
			return
		}
	}

	retryAfter, err := b.postMessage(ctx, msg)
	if err != nil && retryAfter > 0 {
		b.log.Warn("telegram rate limit hit", "retry_after", retryAfter)
		if !sleep(ctx, retryAfter) {
			return
		}
		_, err = b.postMessage(ctx, msg)
	}
	if err != nil {
		b.log.Error("telegram send failed", "chat", msg.chatID, "error", err)
		return
	}

	b.lastSentTime = time.Now()
	b.log.Debug("telegram reply sent", "chat", msg.chatID)
}

func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatInt(b.offset, 10))
	query.Set("timeout", strconv.Itoa(int(b.pollTimeout/time.Second)))
	query.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint("getUpdates")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed struct {
		telegramResponse
		Result []update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram error: %d %s", parsed.ErrorCode, parsed.Description)
	}
	return parsed.Result, nil
}

func (b *Bot) postMessage(ctx context.Context, msg outgoing) (time.Duration, error) {
	body, err := json.Marshal(map[string]any{
		"chat_id": msg.chatID,
		"text":    msg.text,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var parsed telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode == http.StatusTooManyRequests && parsed.Parameters.RetryAfter > 0 {
		return time.Duration(parsed.Parameters.RetryAfter) * time.Second, errors.New("rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("telegram error: %d %s", resp.StatusCode, parsed.Description)
	}
	return 0, nil
}

func (b *Bot) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// splitMessage cuts message into chunks of at most limit runes.
func splitMessage(message string, limit int) []string {
	runes := []rune(message)
	if len(runes) <= limit {
		return []string{message}
	}

	parts := []string{}
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
