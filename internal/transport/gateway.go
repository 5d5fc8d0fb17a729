package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewayClient talks to the chat gateway's bot API over HTTP JSON. Delivery
// is best-effort: there is no retry or backoff here.
type GatewayClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Messenger = &GatewayClient{}

func NewGatewayClient(baseURL, token string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID   int64    `json:"chat_id"`
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

type sendMessageResponse struct {
	MessageID int64 `json:"message_id"`
}

type editMessageRequest struct {
	ChatID    int64    `json:"chat_id"`
	MessageID int64    `json:"message_id"`
	Text      string   `json:"text,omitempty"`
	Keyboard  Keyboard `json:"keyboard"`
}

type answerCallbackRequest struct {
	CallbackID string `json:"callback_id"`
	Text       string `json:"text,omitempty"`
}

func (g *GatewayClient) SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error) {
	var resp sendMessageResponse
	err := g.post(ctx, "sendMessage", sendMessageRequest{
		ChatID:   chatID,
		Text:     text,
		Keyboard: keyboard,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

func (g *GatewayClient) EditMessage(ctx context.Context, chatID, messageID int64, text string, keyboard Keyboard) error {
	return g.post(ctx, "editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Keyboard:  keyboard,
	}, nil)
}

func (g *GatewayClient) EditKeyboard(ctx context.Context, chatID, messageID int64, keyboard Keyboard) error {
	return g.post(ctx, "editMessageKeyboard", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Keyboard:  keyboard,
	}, nil)
}

func (g *GatewayClient) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return g.post(ctx, "answerCallback", answerCallbackRequest{
		CallbackID: callbackID,
		Text:       text,
	}, nil)
}

func (g *GatewayClient) post(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", g.baseURL, g.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway %s error: status %d, body: %s", method, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal %s response: %w", method, err)
		}
	}
	return nil
}
