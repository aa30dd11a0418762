// Package telegram implements the Telegram Bot API channel for craftbridge:
// a long-polling update pump, a command router, and paged photo delivery
// driven by inline keyboard callbacks.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // 10 MiB — prevent unbounded reads from API responses.
)

// Client is a thin HTTP wrapper around the Telegram Bot API. Regular calls
// use a bounded-timeout client; getUpdates uses a client without a timeout
// because the API intentionally holds the connection open for the whole
// long-poll window.
type Client struct {
	token    string
	baseURL  string
	http     *http.Client
	longPoll *http.Client
	debug    bool
	logger   *slog.Logger
}

// NewClient creates a new Telegram Bot API client. When debug is true,
// request and response bodies are logged at debug level.
func NewClient(token, baseURL string, debug bool, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		longPoll: &http.Client{},
		debug:    debug,
		logger:   logger,
	}
}

// do sends a JSON POST request to the given Bot API method and decodes the
// response. It handles 429 rate limiting with Retry-After (max 3 retries,
// exponential backoff).
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	return doWith[T](ctx, c, c.http, method, payload)
}

func doWith[T any](ctx context.Context, c *Client, hc *http.Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
		if c.debug {
			c.logger.Debug("api request", "method", method, "body", string(data))
		}
		body = bytes.NewReader(data)
	}

	backoff := initialBackoff

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := hc.Do(req)
		if err != nil {
			// Wrap without the raw error text in the message to avoid leaking
			// the token-bearing URL. The original error is available via Unwrap.
			return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
		}
		if c.debug {
			c.logger.Debug("api response", "method", method, "status", resp.StatusCode, "body", string(respBody))
		}

		// Handle rate limiting with retry.
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			var apiResp APIResponse[json.RawMessage]
			if err := json.Unmarshal(respBody, &apiResp); err == nil && apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				backoff = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2

			// Re-create body reader for retry.
			if payload != nil {
				data, _ := json.Marshal(payload)
				body = bytes.NewReader(data)
			}
			continue
		}

		return decodeEnvelope[T](method, respBody)
	}

	// Unreachable under normal flow, but satisfy the compiler.
	return nil, fmt.Errorf("telegram: %s: max retries exceeded", method)
}

// filePart is a binary attachment of a multipart request.
type filePart struct {
	field string
	name  string
	data  []byte
}

// doMultipart sends a multipart/form-data POST request. Used for methods
// that upload binary payloads (sendPhoto, editMessageMedia).
func doMultipart[T any](ctx context.Context, c *Client, method string, fields map[string]string, files []filePart) (*T, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range fields {
		if err := w.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}
	if c.debug {
		c.logger.Debug("api response", "method", method, "status", resp.StatusCode, "body", string(respBody))
	}

	return decodeEnvelope[T](method, respBody)
}

func decodeEnvelope[T any](method string, respBody []byte) (*T, error) {
	var apiResp APIResponse[T]
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		apiErr := &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return nil, apiErr
	}

	return &apiResp.Result, nil
}

// GetUpdatesRequest is the request body for the getUpdates method.
type GetUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Limit   int   `json:"limit,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// deleteWebhookRequest is the request body for the deleteWebhook method.
type deleteWebhookRequest struct {
	DropPendingUpdates bool `json:"drop_pending_updates,omitempty"`
}

// setMyCommandsRequest is the request body for the setMyCommands method.
type setMyCommandsRequest struct {
	Commands []BotCommand `json:"commands"`
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID              int64  `json:"chat_id"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode,omitempty"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
	ReplyToMessageID    int64  `json:"reply_to_message_id,omitempty"`
}

// SendPhotoRequest describes a sendPhoto multipart request. Photo carries
// the raw PNG bytes uploaded under the "photo" field.
type SendPhotoRequest struct {
	ChatID              int64
	Photo               []byte
	Caption             string
	DisableNotification bool
	ReplyToMessageID    int64
	ReplyMarkup         *InlineKeyboardMarkup
}

// EditMessageMediaRequest describes an editMessageMedia multipart request.
// Photo replaces the media of an existing message in place; the media JSON
// references the uploaded part via attach://media.
type EditMessageMediaRequest struct {
	ChatID      int64
	MessageID   int64
	Photo       []byte
	ReplyMarkup *InlineKeyboardMarkup
}

// AnswerCallbackQueryRequest is the request body for answerCallbackQuery.
type AnswerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
	URL             string `json:"url,omitempty"`
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// DeleteWebhook removes any webhook integration, optionally dropping
// pending updates. The bridge is exclusively a long-polling client, so a
// stale webhook must be cleared before the first getUpdates.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	_, err := do[bool](ctx, c, "deleteWebhook", deleteWebhookRequest{
		DropPendingUpdates: dropPendingUpdates,
	})
	return err
}

// SetMyCommands registers the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	_, err := do[bool](ctx, c, "setMyCommands", setMyCommandsRequest{Commands: commands})
	return err
}

// GetUpdates fetches incoming updates using long polling. The read timeout
// is unbounded; cancellation comes from ctx.
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	result, err := doWith[[]Update](ctx, c, c.longPoll, "getUpdates", req)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", req)
}

// SendPhoto uploads a photo to the specified chat.
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (*Message, error) {
	fields := map[string]string{
		"chat_id": strconv.FormatInt(req.ChatID, 10),
	}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if req.DisableNotification {
		fields["disable_notification"] = "true"
	}
	if req.ReplyToMessageID != 0 {
		fields["reply_to_message_id"] = strconv.FormatInt(req.ReplyToMessageID, 10)
	}
	if req.ReplyMarkup != nil {
		markup, err := json.Marshal(req.ReplyMarkup)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal reply markup: %w", err)
		}
		fields["reply_markup"] = string(markup)
	}
	files := []filePart{{field: "photo", name: "image.png", data: req.Photo}}
	return doMultipart[Message](ctx, c, "sendPhoto", fields, files)
}

// EditMessageMedia replaces the photo of an existing message in place.
func (c *Client) EditMessageMedia(ctx context.Context, req EditMessageMediaRequest) (*Message, error) {
	fields := map[string]string{
		"chat_id":    strconv.FormatInt(req.ChatID, 10),
		"message_id": strconv.FormatInt(req.MessageID, 10),
		"media":      `{"type":"photo","media":"attach://media"}`,
	}
	if req.ReplyMarkup != nil {
		markup, err := json.Marshal(req.ReplyMarkup)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal reply markup: %w", err)
		}
		fields["reply_markup"] = string(markup)
	}
	files := []filePart{{field: "media", name: "page.png", data: req.Photo}}
	return doMultipart[Message](ctx, c, "editMessageMedia", fields, files)
}

// AnswerCallbackQuery acknowledges a callback query so the client dismisses
// its loading indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	_, err := do[bool](ctx, c, "answerCallbackQuery", req)
	return err
}
