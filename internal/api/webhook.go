package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BotWebhook posts to a custom bot's incoming webhook. The hook URL carries
// its own secret token; when signature verification is enabled on the bot,
// Secret must be set as well.
type BotWebhook struct {
	URL    string
	Secret string

	client *Client
	now    func() time.Time
}

// BotMessage is a webhook payload. Content is used for text, post, image and
// share_chat messages; Card for interactive ones.
type BotMessage struct {
	MsgType string         `json:"msg_type"`
	Content map[string]any `json:"content,omitempty"`
	Card    map[string]any `json:"card,omitempty"`
}

// Validate checks the payload shape.
func (m BotMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.MsgType, validation.Required),
		validation.Field(&m.Content, validation.When(m.MsgType != MsgTypeInteractive, validation.Required)),
		validation.Field(&m.Card, validation.When(m.MsgType == MsgTypeInteractive, validation.Required)),
	)
}

// NewTextBotMessage builds a plain text webhook message.
func NewTextBotMessage(text string) BotMessage {
	return BotMessage{MsgType: MsgTypeText, Content: map[string]any{"text": text}}
}

type botRequest struct {
	Timestamp string `json:"timestamp,omitempty"`
	Sign      string `json:"sign,omitempty"`
	BotMessage
}

type botResponse struct {
	Code          int    `json:"code"`
	Msg           string `json:"msg"`
	StatusCode    int    `json:"StatusCode"`
	StatusMessage string `json:"StatusMessage"`
}

// Webhook returns a bot bound to hookURL that sends through c, reusing its
// transport and retry policy.
func (c *Client) Webhook(hookURL, secret string) *BotWebhook {
	return &BotWebhook{URL: hookURL, Secret: secret, client: c, now: time.Now}
}

// WebhookSign computes the signature for a webhook timestamp: the base64
// HMAC-SHA256 of an empty message keyed with "timestamp\nsecret".
func WebhookSign(timestamp int64, secret string) string {
	key := strconv.FormatInt(timestamp, 10) + "\n" + secret
	mac := hmac.New(sha256.New, []byte(key))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Send posts msg to the hook.
func (w *BotWebhook) Send(ctx context.Context, msg BotMessage) error {
	if w.URL == "" {
		return &ValidationError{Op: "webhook", Err: fmt.Errorf("hook URL is required")}
	}
	if err := msg.Validate(); err != nil {
		return &ValidationError{Op: "webhook", Err: err}
	}
	c := w.client
	if !c.skipURLValidation {
		if err := validateWebhookURL(w.URL); err != nil {
			return fmt.Errorf("URL validation failed: %w", err)
		}
	}

	payload := botRequest{BotMessage: msg}
	if w.Secret != "" {
		ts := w.now().Unix()
		payload.Timestamp = strconv.FormatInt(ts, 10)
		payload.Sign = WebhookSign(ts, w.Secret)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := c.executeRequest(ctx, outbound{
		method:      http.MethodPost,
		url:         w.URL,
		body:        body,
		contentType: "application/json; charset=utf-8",
	})
	if err != nil {
		return err
	}

	var br botResponse
	if err := json.Unmarshal(resp.body, &br); err != nil {
		return fmt.Errorf("unexpected webhook response format (JSON decode failed): %w", err)
	}
	switch {
	case br.Code != 0:
		return &APIError{StatusCode: resp.status, Code: br.Code, Msg: br.Msg, LogID: resp.logID()}
	case br.StatusCode != 0:
		return &APIError{StatusCode: resp.status, Code: br.StatusCode, Msg: br.StatusMessage, LogID: resp.logID()}
	}
	return nil
}
