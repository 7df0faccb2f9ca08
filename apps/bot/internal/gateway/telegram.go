package gateway

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const accessDeniedText = "Access denied."

// TelegramAPI is the subset of *tgbotapi.BotAPI the poller uses.
type TelegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramPoller struct {
	api     TelegramAPI
	bot     TextHandler
	allowed map[int64]bool
	timeout int
	log     zerolog.Logger
}

func NewTelegramPoller(api TelegramAPI, handler TextHandler, allowedUsers []int64, log zerolog.Logger) *TelegramPoller {
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &TelegramPoller{
		api:     api,
		bot:     handler,
		allowed: allowed,
		timeout: 30,
		log:     log.With().Str("component", "telegram").Logger(),
	}
}

func TelegramKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// Run long-polls until ctx is done.
func (p *TelegramPoller) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.log.Info().Msg("telegram poller stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			p.handle(ctx, update.Message)
		}
	}
}

func (p *TelegramPoller) handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if len(p.allowed) > 0 && (msg.From == nil || !p.allowed[msg.From.ID]) {
		p.send(chatID, accessDeniedText)
		return
	}
	key := TelegramKey(chatID)
	reply, err := p.bot.HandleText(ctx, key, msg.Text)
	if err != nil {
		p.log.Error().Err(err).Str("key", key).Msg("handle text failed")
	}
	if reply.Text != "" {
		p.send(chatID, reply.Text)
	}
}

func (p *TelegramPoller) send(chatID int64, text string) {
	if _, err := p.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		p.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}
