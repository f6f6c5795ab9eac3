package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
)

var (
	// ErrInternal возвращается при ошибке инициализации клиента
	ErrInternal = errors.New("telegram client: internal error")

	// ErrSendFailed возвращается, когда Telegram не принял сообщение
	ErrSendFailed = errors.New("telegram client: failed to send message")

	// ErrInvalidRecipient возвращается для некорректного chat id
	ErrInvalidRecipient = errors.New("telegram client: invalid recipient")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client канал уведомлений поверх Telegram Bot API
// Ограничение частоты отправки - ответственность вызывающего кода
type Client struct {
	bot *bot.Bot
	log Logger
}

// NewClient создает клиента; пустой токен даёт клиента, который только логирует сообщения
func NewClient(token string, timeout time.Duration, log Logger) (*Client, error) {
	if token == "" {
		log.Warn("Telegram token is empty, notifications will only be logged")
		return &Client{log: log}, nil
	}

	b, err := bot.New(token,
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(timeout, &http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create bot: %v", ErrInternal, err)
	}

	return &Client{bot: b, log: log}, nil
}

// Send отправляет текстовое сообщение в чат получателя
func (c *Client) Send(ctx context.Context, recipientID int64, message string) error {
	if recipientID == 0 {
		return ErrInvalidRecipient
	}

	if c.bot == nil {
		c.log.Info("Telegram (dry run): chat=%d message=%q", recipientID, message)
		return nil
	}

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: recipientID,
		Text:   message,
	})
	if err != nil {
		return fmt.Errorf("%w: chat=%d: %v", ErrSendFailed, recipientID, err)
	}

	return nil
}
