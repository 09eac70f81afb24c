package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kev1N916/trial-bot/database"
	"github.com/kev1N916/trial-bot/internal/bot"
	"github.com/kev1N916/trial-bot/internal/cards"
	"github.com/kev1N916/trial-bot/internal/dialog"
	"github.com/kev1N916/trial-bot/internal/models"
	"github.com/stretchr/testify/require"
)

type sentActivity struct {
	ref      models.ConversationReference
	activity models.Activity
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentActivity
	failFor map[string]bool
}

func (m *fakeMessenger) SendActivity(_ context.Context, ref models.ConversationReference, activity models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[ref.ConversationID] {
		return errors.New("connector unavailable")
	}
	m.sent = append(m.sent, sentActivity{ref: ref, activity: activity})
	return nil
}

type testServer struct {
	router        *gin.Engine
	messenger     *fakeMessenger
	conversations *database.MemoryConversationStore
}

func newTestServer(t *testing.T, opts ...dialog.Option) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router:        gin.New(),
		messenger:     &fakeMessenger{failFor: map[string]bool{}},
		conversations: database.NewMemoryConversationStore(),
	}
	RegisterRoutes(ts.router, &Handler{
		Engine:        dialog.NewEngine(opts...),
		Conversations: ts.conversations,
		Messenger:     ts.messenger,
	})
	return ts
}

func (ts *testServer) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func messageActivity(conversationID, text string, value any) models.Activity {
	a := models.Activity{
		Type:         models.ActivityTypeMessage,
		ID:           "act-1",
		ServiceURL:   "https://smba.example.com/emea/",
		ChannelID:    "msteams",
		From:         models.ChannelAccount{ID: "29:user", Name: "Dana"},
		Recipient:    models.ChannelAccount{ID: "28:bot", Name: "Sprint Bot"},
		Conversation: models.ConversationAccount{ID: conversationID},
		Text:         text,
	}
	if value != nil {
		a.Value, _ = json.Marshal(value)
	}
	return a
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMessagesHelpReplyThroughConnector(t *testing.T) {
	ts := newTestServer(t)

	w := ts.post(t, "/api/messages", messageActivity("conv-1", "hello there", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, ts.messenger.sent, 1)
	sent := ts.messenger.sent[0]
	require.Equal(t, dialog.HelpText, sent.activity.Text)
	require.Equal(t, "act-1", sent.activity.ReplyToID)
	require.Equal(t, "28:bot", sent.activity.From.ID)
	require.Equal(t, "29:user", sent.activity.Recipient.ID)
	require.Equal(t, "https://smba.example.com/emea/", sent.ref.ServiceURL)

	ref, err := ts.conversations.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Equal(t, "28:bot", ref.BotID)
	require.Equal(t, "Dana", ref.UserName)
}

func TestMessagesExpectRepliesReturnsCard(t *testing.T) {
	ts := newTestServer(t)

	activity := messageActivity("conv-1", " Configure ", nil)
	activity.DeliveryMode = models.DeliveryModeExpectReplies
	w := ts.post(t, "/api/messages", activity)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, ts.messenger.sent)

	var resp struct {
		Activities []struct {
			ID          string `json:"id"`
			Attachments []struct {
				ContentType string     `json:"contentType"`
				Content     cards.Card `json:"content"`
			} `json:"attachments"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Activities, 1)
	require.NotEmpty(t, resp.Activities[0].ID)
	require.Len(t, resp.Activities[0].Attachments, 1)
	require.Equal(t, cards.ContentType, resp.Activities[0].Attachments[0].ContentType)
	require.Equal(t, cards.TypeJiraInformation, resp.Activities[0].Attachments[0].Content.SubmitType())
}

func TestMessagesSubmission(t *testing.T) {
	ts := newTestServer(t)

	w := ts.post(t, "/api/messages", messageActivity("conv-1", "", map[string]string{
		"type":     "jiraInformation",
		"sprintId": "SPRINT-123",
		"boardId":  "BOARD-456",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.messenger.sent, 1)
	require.Contains(t, ts.messenger.sent[0].activity.Text, "SPRINT-123")
	require.Contains(t, ts.messenger.sent[0].activity.Text, "BOARD-456")
}

func TestMessagesReplyFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.messenger.failFor["conv-1"] = true

	w := ts.post(t, "/api/messages", messageActivity("conv-1", "help", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMessagesRejectsInvalidPayloads(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.post(t, "/api/messages", messageActivity("", "help", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationUpdateRegistersConversation(t *testing.T) {
	ts := newTestServer(t)

	activity := messageActivity("conv-2", "", nil)
	activity.Type = models.ActivityTypeConversationUpdate
	w := ts.post(t, "/api/messages", activity)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, ts.messenger.sent)

	_, err := ts.conversations.Get(context.Background(), "conv-2")
	require.NoError(t, err)
}

func TestCancelSurvivesLaterMessages(t *testing.T) {
	conversations := database.NewMemoryConversationStore()
	hooks := &bot.Hooks{Conversations: conversations}

	gin.SetMode(gin.TestMode)
	messenger := &fakeMessenger{failFor: map[string]bool{}}
	ts := &testServer{router: gin.New(), messenger: messenger, conversations: conversations}
	RegisterRoutes(ts.router, &Handler{
		Engine:        dialog.NewEngine(dialog.WithObserver(hooks)),
		Conversations: conversations,
		Messenger:     messenger,
	})

	ts.post(t, "/api/messages", messageActivity("conv-1", "cancel", nil))
	ts.post(t, "/api/messages", messageActivity("conv-1", "", map[string]string{"type": "cancelNotification", "choice": "yes"}))
	ts.post(t, "/api/messages", messageActivity("conv-1", "help", nil))

	ref, err := conversations.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	require.True(t, ref.Muted)

	w := ts.post(t, "/api/notify", models.NotifyRequest{ConversationID: "conv-1", Text: "sprint digest"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestNotifySingleConversation(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.conversations.Save(ctx, models.ConversationReference{ConversationID: "conv-1", ServiceURL: "https://svc"}))

	w := ts.post(t, "/api/notify", models.NotifyRequest{ConversationID: "conv-1", Text: "  Sprint review in 1 hour  "})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"sent":1,"failed":0}`, w.Body.String())
	require.Len(t, ts.messenger.sent, 1)
	require.Equal(t, "Sprint review in 1 hour", ts.messenger.sent[0].activity.Text)
	require.Empty(t, ts.messenger.sent[0].activity.ReplyToID)

	w = ts.post(t, "/api/notify", models.NotifyRequest{ConversationID: "conv-missing", Text: "hi"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.post(t, "/api/notify", models.NotifyRequest{ConversationID: "conv-1", Text: "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyBroadcast(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.conversations.Save(ctx, models.ConversationReference{ConversationID: "conv-1", ServiceURL: "https://svc"}))
	require.NoError(t, ts.conversations.Save(ctx, models.ConversationReference{ConversationID: "conv-2", ServiceURL: "https://svc"}))
	require.NoError(t, ts.conversations.Save(ctx, models.ConversationReference{ConversationID: "conv-3", ServiceURL: "https://svc", Muted: true}))
	require.NoError(t, ts.conversations.Save(ctx, models.ConversationReference{ConversationID: "conv-4", ServiceURL: "https://svc"}))
	ts.messenger.failFor["conv-4"] = true

	w := ts.post(t, "/api/notify", models.NotifyRequest{Text: "Sprint SPRINT-123 closed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"sent":2,"failed":1}`, w.Body.String())
	require.Len(t, ts.messenger.sent, 2)
	require.Equal(t, "conv-1", ts.messenger.sent[0].ref.ConversationID)
	require.Equal(t, "conv-2", ts.messenger.sent[1].ref.ConversationID)
}
