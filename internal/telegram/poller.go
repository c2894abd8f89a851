package telegram

import (
	"context"

	"shiftbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Poller получает обновления long polling'ом и передает их в канал.
type Poller struct {
	client  *Client
	timeout int
	logger  logrus.FieldLogger
}

// NewPoller создает Poller. timeout в секундах.
func NewPoller(client *Client, timeout int, logger logrus.FieldLogger) *Poller {
	return &Poller{client: client, timeout: timeout, logger: logger}
}

// Run публикует события в out до отмены ctx, затем закрывает out.
func (p *Poller) Run(ctx context.Context, out chan<- domain.Update) error {
	defer close(out)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query", "chat_member"}

	updates := p.client.api.GetUpdatesChan(cfg)
	defer p.client.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			upd, ok := toUpdate(raw)
			if !ok {
				p.logger.WithField("update_id", raw.UpdateID).Debug("Skipping update")
				continue
			}
			select {
			case out <- upd:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
