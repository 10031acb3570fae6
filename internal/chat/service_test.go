package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shebloom/shebloom/internal/logging"
	"github.com/shebloom/shebloom/internal/mood"
)

// fakeCompleter replays a canned gateway reply and records the last request.
type fakeCompleter struct {
	reply   CompletionResponse
	err     error
	lastReq CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return CompletionResponse{}, f.err
	}
	return f.reply, nil
}

func textReply(content string) CompletionResponse {
	var resp CompletionResponse
	resp.Choices = make([]struct {
		Message GatewayMessage `json:"message"`
	}, 1)
	resp.Choices[0].Message = GatewayMessage{Role: RoleAssistant, Content: content}
	return resp
}

func toolReply(content, name, arguments string) CompletionResponse {
	resp := textReply(content)
	call := ToolCall{ID: "call-1", Type: "function"}
	call.Function.Name = name
	call.Function.Arguments = arguments
	resp.Choices[0].Message.ToolCalls = []ToolCall{call}
	return resp
}

func newTestService(completer Completer) (*Service, *mood.Service, *MemoryRepository) {
	moods := mood.NewService(mood.NewMemoryRepository())
	repo := NewMemoryRepository()
	svc := NewService(repo, completer, moods, "google/gemini-2.5-flash", logging.Discard())
	return svc, moods, repo
}

func TestChatPlainReply(t *testing.T) {
	gw := &fakeCompleter{reply: textReply("Prova a iniziare con una routine breve la mattina.")}
	svc, _, _ := newTestService(gw)

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:   "user-1",
		Message:  "Come inizio una skincare routine?",
		Category: "beauty",
	})
	require.NoError(t, err)

	assert.Equal(t, "Prova a iniziare con una routine breve la mattina.", result.Response)
	assert.False(t, result.NeedsExpert)
	assert.NotEmpty(t, result.ConversationID)
	assert.Equal(t, "beauty", result.Category)

	// Category prompt goes first, user message last.
	require.NotEmpty(t, gw.lastReq.Messages)
	assert.Equal(t, RoleSystem, gw.lastReq.Messages[0].Role)
	assert.Contains(t, gw.lastReq.Messages[0].Content, "Beauty & Make up")
	last := gw.lastReq.Messages[len(gw.lastReq.Messages)-1]
	assert.Equal(t, RoleUser, last.Role)
	assert.Len(t, gw.lastReq.Tools, 3)
}

func TestChatSuggestExpert(t *testing.T) {
	gw := &fakeCompleter{reply: toolReply("", "suggest_expert",
		`{"reason":"serve supporto psicologico continuativo","urgency":"high"}`)}
	svc, _, _ := newTestService(gw)

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:   "user-1",
		Message:  "Non riesco più a dormire da settimane",
		Category: "relazioni",
	})
	require.NoError(t, err)

	assert.True(t, result.NeedsExpert)
	assert.Equal(t, "serve supporto psicologico continuativo", result.ExpertReason)
	assert.NotEmpty(t, result.Response)
}

func TestChatTrackMood(t *testing.T) {
	gw := &fakeCompleter{reply: toolReply("Mi fa piacere sentirlo!", "track_mood",
		`{"mood_level":4,"note":"giornata positiva"}`)}
	svc, moods, _ := newTestService(gw)

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:   "user-1",
		Message:  "Oggi mi sento davvero bene",
		Category: "relazioni",
	})
	require.NoError(t, err)
	assert.True(t, result.MoodTracked)

	recent, err := moods.Recent(context.Background(), "user-1", 7)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 4, recent[0].Level)
	assert.Equal(t, mood.SourceAssistant, recent[0].Source)
}

func TestChatScheduleFollowup(t *testing.T) {
	date := time.Now().UTC().Format("2006-01-02")
	gw := &fakeCompleter{reply: toolReply("In bocca al lupo per il colloquio!", "schedule_followup",
		`{"topic":"colloquio di lavoro","context":"colloquio importante","followup_date":"`+date+`"}`)}
	svc, _, _ := newTestService(gw)

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:   "user-1",
		Message:  "Domani ho un colloquio importante",
		Category: "stile",
	})
	require.NoError(t, err)
	assert.True(t, result.FollowupScheduled)

	followups, err := svc.Followups(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, followups, 1)
	assert.Equal(t, "colloquio di lavoro", followups[0].Topic)

	require.NoError(t, svc.CompleteFollowup(context.Background(), "user-1", followups[0].ID))
	followups, err = svc.Followups(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, followups)
}

func TestChatInvalidToolArgumentsIgnored(t *testing.T) {
	gw := &fakeCompleter{reply: toolReply("Capito.", "track_mood", `{"mood_level":`)}
	svc, moods, _ := newTestService(gw)

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:   "user-1",
		Message:  "ciao",
		Category: "relazioni",
	})
	require.NoError(t, err)
	assert.False(t, result.MoodTracked)

	recent, err := moods.Recent(context.Background(), "user-1", 7)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestChatPersistsConversation(t *testing.T) {
	gw := &fakeCompleter{reply: textReply("Certo, ti ascolto.")}
	svc, _, repo := newTestService(gw)
	ctx := context.Background()

	first, err := svc.Chat(ctx, ChatInput{UserID: "user-1", Message: "Ho bisogno di parlare", Category: "relazioni"})
	require.NoError(t, err)

	// Second turn reuses the conversation and feeds the stored history.
	_, err = svc.Chat(ctx, ChatInput{
		UserID:         "user-1",
		Message:        "Grazie per ieri",
		Category:       "relazioni",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)

	msgs, err := repo.Messages(ctx, first.ConversationID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	// The second request carried the first exchange as history.
	roles := make([]string, 0, len(gw.lastReq.Messages))
	for _, m := range gw.lastReq.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{RoleSystem, RoleUser, RoleAssistant, RoleUser}, roles)
}

func TestChatUnknownConversation(t *testing.T) {
	svc, _, _ := newTestService(&fakeCompleter{reply: textReply("ok")})

	_, err := svc.Chat(context.Background(), ChatInput{
		UserID:         "user-1",
		Message:        "ciao",
		ConversationID: "missing",
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestChatGatewayErrorsPassThrough(t *testing.T) {
	svc, _, _ := newTestService(&fakeCompleter{err: ErrRateLimited})

	_, err := svc.Chat(context.Background(), ChatInput{UserID: "user-1", Message: "ciao"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	svc, _, _ := newTestService(&fakeCompleter{reply: textReply("ok")})

	_, err := svc.Chat(context.Background(), ChatInput{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
