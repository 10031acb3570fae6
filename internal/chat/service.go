package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shebloom/shebloom/internal/metrics"
	"github.com/shebloom/shebloom/internal/mood"
)

// ErrEmptyMessage indicates a chat request without user text.
var ErrEmptyMessage = errors.New("message is required")

const (
	historyLimit = 20
	maxTokens    = 500
	temperature  = 0.7
	dateLayout   = "2006-01-02"
)

// Service proxies user messages to the model gateway, executes tool calls
// and persists the conversation.
type Service struct {
	repo      Repository
	completer Completer
	moods     *mood.Service
	model     string
	logger    *slog.Logger
}

// NewService constructs a chat service.
func NewService(repo Repository, completer Completer, moods *mood.Service, model string, logger *slog.Logger) *Service {
	return &Service{repo: repo, completer: completer, moods: moods, model: model, logger: logger}
}

// HistoryMessage is one prior turn supplied by the client.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput is one user turn.
type ChatInput struct {
	UserID         string
	Message        string
	Category       string
	History        []HistoryMessage
	ConversationID string
}

// ChatResult is the assistant's reply plus tool outcomes.
type ChatResult struct {
	Response          string
	NeedsExpert       bool
	ExpertReason      string
	MoodTracked       bool
	FollowupScheduled bool
	ConversationID    string
	Category          string
}

// Chat sends one user message to the model and applies any tool calls it
// requests.
func (s *Service) Chat(ctx context.Context, input ChatInput) (ChatResult, error) {
	if input.Message == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	conv, err := s.resolveConversation(ctx, input)
	if err != nil {
		return ChatResult{}, err
	}

	msgs := []GatewayMessage{{Role: RoleSystem, Content: systemPrompt(input.Category)}}
	msgs = append(msgs, s.history(ctx, conv.ID, input.History)...)
	msgs = append(msgs, GatewayMessage{Role: RoleUser, Content: input.Message})

	resp, err := s.completer.Complete(ctx, CompletionRequest{
		Model:       s.model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Tools:       assistantTools(),
		ToolChoice:  "auto",
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatResult{}, err
	}

	reply := resp.Choices[0].Message
	result := ChatResult{
		Response:       reply.Content,
		ConversationID: conv.ID,
		Category:       conv.Category,
	}
	for _, call := range reply.ToolCalls {
		s.applyToolCall(ctx, input.UserID, call, &result)
	}
	if result.Response == "" && result.NeedsExpert {
		result.Response = fallbackExpertReply
	}

	s.persistTurn(ctx, conv.ID, input.Message, result.Response)
	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *Service) resolveConversation(ctx context.Context, input ChatInput) (Conversation, error) {
	if input.ConversationID != "" {
		return s.repo.GetConversation(ctx, input.UserID, input.ConversationID)
	}
	now := time.Now().UTC()
	conv := Conversation{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Category:  input.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

// history prefers the client-supplied turns and falls back to the stored
// conversation when the client sent none.
func (s *Service) history(ctx context.Context, conversationID string, supplied []HistoryMessage) []GatewayMessage {
	if len(supplied) > 0 {
		if len(supplied) > historyLimit {
			supplied = supplied[len(supplied)-historyLimit:]
		}
		out := make([]GatewayMessage, 0, len(supplied))
		for _, m := range supplied {
			out = append(out, GatewayMessage{Role: m.Role, Content: m.Content})
		}
		return out
	}

	stored, err := s.repo.Messages(ctx, conversationID, historyLimit)
	if err != nil {
		s.logger.Warn("load conversation history", "conversation_id", conversationID, "error", err)
		return nil
	}
	out := make([]GatewayMessage, 0, len(stored))
	for _, m := range stored {
		out = append(out, GatewayMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Service) applyToolCall(ctx context.Context, userID string, call ToolCall, result *ChatResult) {
	switch call.Function.Name {
	case "suggest_expert":
		var args struct {
			Reason  string `json:"reason"`
			Urgency string `json:"urgency"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			s.logger.Warn("decode suggest_expert arguments", "error", err)
			return
		}
		result.NeedsExpert = true
		result.ExpertReason = args.Reason

	case "track_mood":
		var args struct {
			MoodLevel int    `json:"mood_level"`
			Note      string `json:"note"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			s.logger.Warn("decode track_mood arguments", "error", err)
			return
		}
		if _, err := s.moods.RecordFromAssistant(ctx, userID, args.MoodLevel, args.Note); err != nil {
			s.logger.Warn("record mood from assistant", "user_id", userID, "error", err)
			return
		}
		result.MoodTracked = true

	case "schedule_followup":
		var args struct {
			Topic        string `json:"topic"`
			Context      string `json:"context"`
			FollowupDate string `json:"followup_date"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			s.logger.Warn("decode schedule_followup arguments", "error", err)
			return
		}
		if _, err := time.Parse(dateLayout, args.FollowupDate); err != nil {
			s.logger.Warn("invalid followup date", "date", args.FollowupDate)
			return
		}
		f := Followup{
			ID:           uuid.NewString(),
			UserID:       userID,
			Topic:        args.Topic,
			Context:      args.Context,
			FollowupDate: args.FollowupDate,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.repo.CreateFollowup(ctx, f); err != nil {
			s.logger.Warn("create followup", "user_id", userID, "error", err)
			return
		}
		result.FollowupScheduled = true

	default:
		s.logger.Warn("unknown tool call", "name", call.Function.Name)
	}
}

// persistTurn stores both halves of the exchange. Best effort: the reply has
// already been produced, a storage failure only loses history.
func (s *Service) persistTurn(ctx context.Context, conversationID, userText, assistantText string) {
	now := time.Now().UTC()
	userMsg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        userText,
		CreatedAt:      now,
	}
	assistantMsg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        assistantText,
		CreatedAt:      now.Add(time.Millisecond),
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		s.logger.Warn("store user message", "conversation_id", conversationID, "error", err)
	}
	if err := s.repo.AppendMessage(ctx, assistantMsg); err != nil {
		s.logger.Warn("store assistant message", "conversation_id", conversationID, "error", err)
	}
	if err := s.repo.TouchConversation(ctx, conversationID, now); err != nil {
		s.logger.Warn("touch conversation", "conversation_id", conversationID, "error", err)
	}
}

// Followups lists the user's pending check-ins due today or earlier.
func (s *Service) Followups(ctx context.Context, userID string) ([]Followup, error) {
	today := time.Now().UTC().Format(dateLayout)
	return s.repo.DueFollowups(ctx, userID, today)
}

// CompleteFollowup marks a check-in handled.
func (s *Service) CompleteFollowup(ctx context.Context, userID, id string) error {
	if err := s.repo.CompleteFollowup(ctx, userID, id); err != nil {
		return fmt.Errorf("complete followup: %w", err)
	}
	return nil
}
