package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"baccarat-lite/apps/bot/internal/archive"
	"baccarat-lite/apps/bot/internal/auth"
	"baccarat-lite/apps/bot/internal/bot"
	"baccarat-lite/outcome"
	"baccarat-lite/road"
)

type call struct {
	key, text string
}

type fakeBot struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeBot) HandleText(_ context.Context, key, text string) (bot.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{key, text})
	return bot.Reply{Text: "echo:" + text}, nil
}

func (f *fakeBot) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func TestRouter_HealthAndAnalyze(t *testing.T) {
	r := NewRouter(RouterConfig{Log: zerolog.Nop()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"run":"BPP"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		OK             bool                `json:"ok"`
		Recommendation road.Recommendation `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, road.VerdictBet, resp.Recommendation.Verdict)
	assert.Equal(t, outcome.Banker, resp.Recommendation.Outcome)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"tokens":["x"]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminRoutesNeedToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("tok"), bcrypt.MinCost)
	require.NoError(t, err)
	admin, err := auth.NewAdminAuth(string(hash))
	require.NoError(t, err)

	r := NewRouter(RouterConfig{
		Archive: archive.NewHTTPHandler(archive.NewMemoryService(), zerolog.Nop()),
		Admin:   admin,
		Log:     zerolog.Nop(),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shoes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/shoes", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func signLineBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type lineReply struct {
	ReplyToken string `json:"replyToken"`
	Messages   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"messages"`
}

func newLineClient(t *testing.T, base string, client *http.Client) *LineClient {
	t.Helper()
	c, err := NewLineClient(base, "token", client)
	require.NoError(t, err)
	return c
}

func TestLineHandler(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []lineReply
		authz   string
	)
	lineAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)
		var req lineReply
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		replies = append(replies, req)
		authz = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"sentMessages":[]}`)
	}))
	defer lineAPI.Close()

	fb := &fakeBot{}
	h := NewLineHandler("secret", newLineClient(t, lineAPI.URL, lineAPI.Client()), fb, zerolog.Nop())
	r := NewRouter(RouterConfig{Line: h, Log: zerolog.Nop()})

	body := `{"destination":"Ubot","events":[
		{"type":"message","mode":"active","timestamp":1,"replyToken":"r1","source":{"type":"user","userId":"U1"},"message":{"type":"text","id":"m1","text":"莊"}},
		{"type":"message","mode":"active","timestamp":2,"replyToken":"r2","source":{"type":"group","groupId":"G1","userId":"U2"},"message":{"type":"text","id":"m2","text":"84"}},
		{"type":"message","mode":"active","timestamp":3,"replyToken":"r3","source":{"type":"room","roomId":"R1","userId":"U3"},"message":{"type":"text","id":"m3","text":"路"}},
		{"type":"message","mode":"active","timestamp":4,"replyToken":"r4","source":{"type":"user","userId":"U1"},"message":{"type":"sticker","id":"m4","packageId":"1","stickerId":"1"}},
		{"type":"follow","mode":"active","timestamp":5,"replyToken":"r5","source":{"type":"user","userId":"U1"}}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", signLineBody("secret", body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []call{{"line:U1", "莊"}, {"line:group:G1", "84"}, {"line:room:R1", "路"}}, fb.Calls())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, replies, 3)
	assert.Equal(t, "r1", replies[0].ReplyToken)
	require.Len(t, replies[0].Messages, 1)
	assert.Equal(t, "text", replies[0].Messages[0].Type)
	assert.Equal(t, "echo:莊", replies[0].Messages[0].Text)
	assert.Equal(t, "Bearer token", authz)
}

func TestLineHandler_RejectsBadSignature(t *testing.T) {
	fb := &fakeBot{}
	h := NewLineHandler("secret", newLineClient(t, "http://127.0.0.1:1", nil), fb, zerolog.Nop())

	for name, sig := range map[string]string{
		"wrong secret": signLineBody("wrong", `{"events":[]}`),
		"missing":      "",
		"not base64":   "!!",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"events":[]}`))
			req.Header.Set("X-Line-Signature", sig)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, fb.Calls())
}

func TestLineHandler_RejectsMalformedBody(t *testing.T) {
	h := NewLineHandler("secret", newLineClient(t, "http://127.0.0.1:1", nil), &fakeBot{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"events":`))
	req.Header.Set("X-Line-Signature", signLineBody("secret", `{"events":`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLineClient_ReportsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"Invalid reply token"}`)
	}))
	defer srv.Close()

	err := newLineClient(t, srv.URL, srv.Client()).Reply(context.Background(), "r", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line reply")
	assert.Contains(t, err.Error(), "Invalid reply token")
}

func TestHub_PublishesToSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()
	srv := httptest.NewServer(NewRouter(RouterConfig{Hub: hub, Log: zerolog.Nop()}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?key=line:U1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("line:U1") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.PublishBoard("someone-else", bot.Board{Key: "someone-else", Snapshot: road.Snapshot{Roads: road.BuildRoads(nil, road.DerivedPerColumn)}})
	hub.PublishBoard("line:U1", bot.Board{
		Key:      "line:U1",
		Snapshot: road.Snapshot{Roads: road.BuildRoads([]outcome.Outcome{outcome.Banker}, road.DerivedPerColumn)},
		Ended:    true,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got bot.Board
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "line:U1", got.Key)
	assert.True(t, got.Ended)
	require.Len(t, got.Snapshot.Roads.BigRoad.Columns, 1)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("line:U1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RequiresKey(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	rec := httptest.NewRecorder()
	hub.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeTelegram struct {
	updates chan tgbotapi.Update
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeTelegram) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func tgMessage(chatID, fromID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: fromID},
		Text: text,
	}}
}

func TestTelegramPoller(t *testing.T) {
	api := &fakeTelegram{updates: make(chan tgbotapi.Update, 4)}
	fb := &fakeBot{}
	p := NewTelegramPoller(api, fb, []int64{7}, zerolog.Nop())

	api.updates <- tgMessage(100, 7, "莊閒閒")
	api.updates <- tgMessage(200, 8, "莊")
	api.updates <- tgbotapi.Update{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(api.Sent()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	sent := api.Sent()
	assert.Equal(t, int64(100), sent[0].ChatID)
	assert.Equal(t, "echo:莊閒閒", sent[0].Text)
	assert.Equal(t, int64(200), sent[1].ChatID)
	assert.Equal(t, accessDeniedText, sent[1].Text)
	assert.Equal(t, []call{{TelegramKey(100), "莊閒閒"}}, fb.Calls())
	assert.True(t, api.stopped)
}
