// Package usecase orchestrates the chat, search, and suggestion flows:
// guardrail, retrieval, context assembly, prompt construction, generation,
// and session memory updates.
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"portfolio-rag/internal/domain"
	"portfolio-rag/internal/guardrail"
	"portfolio-rag/internal/retrieval"
)

const (
	defaultMaxMessageLen = 1000

	// ApologyReply is returned as a normal reply when generation fails; the
	// chat surface never sees a raw error.
	ApologyReply = "I apologize, but I'm having trouble generating a response right now. " +
		"Please try again in a moment."
)

// ContextRetriever resolves a query against the vector index.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}

// LLMClient generates one completion for an ordered message sequence.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// SessionMemory owns per-session conversation history.
type SessionMemory interface {
	Append(sessionID, role, content string)
	History(sessionID string) []domain.ChatMessage
	Clear(sessionID string)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ChatService runs the retrieval-and-generation pipeline.
type ChatService struct {
	retriever     ContextRetriever
	llm           LLMClient
	memory        SessionMemory
	chatModel     string
	topKDefault   int
	maxMessageLen int
}

type ChatInput struct {
	SessionID string
	Message   string
}

type ChatOutput struct {
	Reply     string
	SessionID string
}

// NewChatService wires the pipeline. topKDefault <= 0 falls back to 5.
func NewChatService(r ContextRetriever, llm LLMClient, mem SessionMemory, chatModel string, topKDefault int) (*ChatService, error) {
	if r == nil {
		return nil, errors.New("usecase: retriever must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if mem == nil {
		return nil, errors.New("usecase: session memory must not be nil")
	}
	if strings.TrimSpace(chatModel) == "" {
		return nil, errors.New("usecase: chat model must not be empty")
	}
	if topKDefault <= 0 {
		topKDefault = 5
	}
	return &ChatService{
		retriever:     r,
		llm:           llm,
		memory:        mem,
		chatModel:     chatModel,
		topKDefault:   topKDefault,
		maxMessageLen: defaultMaxMessageLen,
	}, nil
}

// Chat answers one message. Out-of-scope messages get the fixed redirect
// without any remote call; generation failures get the fixed apology. Both
// count as successful turns and are recorded in session memory so follow-ups
// keep context.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = newSessionID()
	}

	if !guardrail.InScope(message) {
		s.recordTurn(sessionID, message, guardrail.RedirectMessage)
		return ChatOutput{Reply: guardrail.RedirectMessage, SessionID: sessionID}, nil
	}

	chunks, err := s.retriever.Retrieve(ctx, message, s.topKDefault)
	if err != nil {
		return ChatOutput{}, retrievalError(err)
	}
	contextString := retrieval.BuildContext(chunks)

	history := s.memory.History(sessionID)
	reply, err := s.llm.Chat(ctx, s.chatModel, buildChatMessages(history, contextString, message))
	if err != nil || strings.TrimSpace(reply) == "" {
		reply = ApologyReply
	}

	s.recordTurn(sessionID, message, reply)
	return ChatOutput{Reply: reply, SessionID: sessionID}, nil
}

// Search is the raw retrieval path used for debugging: no guardrail, no
// generation, structured errors surface to the caller.
func (s *ChatService) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(ErrorInvalidInput, "empty_query", nil)
	}

	chunks, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, retrievalError(err)
	}
	return chunks, nil
}

// ClearSession discards one session's history.
func (s *ChatService) ClearSession(sessionID string) {
	s.memory.Clear(sessionID)
}

func (s *ChatService) recordTurn(sessionID, message, reply string) {
	s.memory.Append(sessionID, domain.RoleUser, message)
	s.memory.Append(sessionID, domain.RoleAssistant, reply)
}

func retrievalError(err error) error {
	var embErr *retrieval.EmbeddingError
	if errors.As(err, &embErr) {
		return newError(ErrorUpstream, "embedding_error", err)
	}
	if status, ok := upstreamStatusCode(err); ok && status == 429 {
		return newError(ErrorRateLimited, "retrieval_rate_limited", err)
	}
	return newError(ErrorUpstream, "retrieval_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newSessionID = func() string {
	return uuid.NewString()
}
