package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/rs/zerolog"

	"baccarat-lite/apps/bot/internal/bot"
)

const (
	DefaultLineAPIBase = "https://api.line.me"
	maxWebhookBody     = 1 << 20
)

// TextHandler is the part of the bot the transports need.
type TextHandler interface {
	HandleText(ctx context.Context, key, text string) (bot.Reply, error)
}

// lineKey 群組優先，其次聊天室，最後使用者
func lineKey(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.GroupSource:
		if s.GroupId != "" {
			return "line:group:" + s.GroupId
		}
	case webhook.RoomSource:
		if s.RoomId != "" {
			return "line:room:" + s.RoomId
		}
	case webhook.UserSource:
		if s.UserId != "" {
			return "line:" + s.UserId
		}
	}
	return ""
}

// LineClient sends reply messages through the messaging api.
type LineClient struct {
	api *messaging_api.MessagingApiAPI
}

func NewLineClient(base, token string, client *http.Client) (*LineClient, error) {
	if strings.TrimSpace(base) == "" {
		base = DefaultLineAPIBase
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	api, err := messaging_api.NewMessagingApiAPI(token,
		messaging_api.WithEndpoint(strings.TrimRight(base, "/")),
		messaging_api.WithHTTPClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &LineClient{api: api}, nil
}

func (c *LineClient) Reply(ctx context.Context, replyToken, text string) error {
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{messaging_api.TextMessage{Text: text}},
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

type LineHandler struct {
	secret string
	client *LineClient
	bot    TextHandler
	log    zerolog.Logger
}

func NewLineHandler(secret string, client *LineClient, handler TextHandler, log zerolog.Logger) *LineHandler {
	return &LineHandler{
		secret: secret,
		client: client,
		bot:    handler,
		log:    log.With().Str("component", "line").Logger(),
	}
}

// ServeHTTP handles POST /callback.
func (h *LineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	cb, err := webhook.ParseRequest(h.secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.log.Warn().Msg("rejected webhook with bad signature")
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, event := range cb.Events {
		ev, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		msg, ok := ev.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		key := lineKey(ev.Source)
		if key == "" || ev.ReplyToken == "" {
			continue
		}
		reply, err := h.bot.HandleText(r.Context(), key, msg.Text)
		if err != nil {
			h.log.Error().Err(err).Str("key", key).Msg("handle text failed")
		}
		if reply.Text == "" {
			continue
		}
		if err := h.client.Reply(r.Context(), ev.ReplyToken, reply.Text); err != nil {
			h.log.Error().Err(err).Str("key", key).Msg("send reply failed")
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
