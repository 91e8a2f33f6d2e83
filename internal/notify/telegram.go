package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

var (
	errBotTokenRequired = errors.New("telegram bot token is required")
	errChatIDRequired   = errors.New("telegram chat id is required")
)

// TelegramProvider posts messages to the operations chat through the Bot API.
type TelegramProvider struct {
	baseURL string
	token   string
	chatID  string
	http    *http.Client
	logg    *logger.Logger
}

func NewTelegramProvider(cfg config.TelegramConfig, logg *logger.Logger) (*TelegramProvider, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errBotTokenRequired
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errChatIDRequired
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramProvider{
		baseURL: baseURL,
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		http:    &http.Client{Timeout: 10 * time.Second},
		logg:    logg,
	}, nil
}

type telegramSendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (p *TelegramProvider) Send(ctx context.Context, msg Message) error {
	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + msg.Body
	}
	if len(msg.MediaURLs) > 0 {
		text += "\n\n" + strings.Join(msg.MediaURLs, "\n")
	}

	body, err := json.Marshal(telegramSendMessage{
		ChatID:                p.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshaling telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", p.baseURL, p.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed telegramResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&parsed); err != nil {
		return fmt.Errorf("decoding telegram response: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram rejected message: %s", parsed.Description)
	}
	return nil
}
