package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-rag/internal/domain"
	"portfolio-rag/internal/guardrail"
	"portfolio-rag/internal/memory"
	"portfolio-rag/internal/retrieval"
)

type mockRetriever struct {
	chunks []domain.RetrievedChunk
	err    error
	calls  int
	query  string
	topK   int
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	m.calls++
	m.query = query
	m.topK = topK
	return m.chunks, m.err
}

type mockLLM struct {
	reply    string
	err      error
	calls    int
	captured []domain.ChatMessage
}

func (m *mockLLM) Chat(_ context.Context, _ string, msgs []domain.ChatMessage) (string, error) {
	m.calls++
	m.captured = msgs
	return m.reply, m.err
}

func accentureChunks() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{ID: "c1", Score: 0.9, Text: "Application Engineer at Accenture, 2019-2023."},
		{ID: "c2", Score: 0.8, Text: "Built internal tooling with Angular and .NET."},
	}
}

func newTestService(t *testing.T, r ContextRetriever, llm LLMClient) (*ChatService, *memory.Store) {
	t.Helper()
	mem := memory.NewStore(20)
	svc, err := NewChatService(r, llm, mem, "gpt-4o-mini", 5)
	require.NoError(t, err)
	return svc, mem
}

func expectUsecaseError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, code, ucErr.Code)
	require.Equal(t, reason, ucErr.Reason)
}

func TestNewChatService_ValidatesDependencies(t *testing.T) {
	mem := memory.NewStore(20)
	r := &mockRetriever{}
	llm := &mockLLM{}

	_, err := NewChatService(nil, llm, mem, "gpt-4o-mini", 5)
	require.Error(t, err)

	_, err = NewChatService(r, nil, mem, "gpt-4o-mini", 5)
	require.Error(t, err)

	_, err = NewChatService(r, llm, nil, "gpt-4o-mini", 5)
	require.Error(t, err)

	_, err = NewChatService(r, llm, mem, " ", 5)
	require.Error(t, err)
}

func TestChat_HappyPath(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	llm := &mockLLM{reply: "I spent four years at Accenture as an Application Engineer."}
	svc, mem := newTestService(t, r, llm)

	out, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "What did you do at Accenture?"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Reply)
	require.Equal(t, "s1", out.SessionID)
	require.Equal(t, 1, r.calls)
	require.Equal(t, 1, llm.calls)
	require.Equal(t, "What did you do at Accenture?", r.query)
	require.Equal(t, 5, r.topK)

	// both sides of the exchange recorded, in order
	history := mem.History("s1")
	require.Len(t, history, 2)
	require.Equal(t, domain.RoleUser, history[0].Role)
	require.Equal(t, domain.RoleAssistant, history[1].Role)
	require.Equal(t, out.Reply, history[1].Content)
}

func TestChat_PromptShape(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	llm := &mockLLM{reply: "Sure."}
	svc, mem := newTestService(t, r, llm)

	mem.Append("s1", domain.RoleUser, "earlier question")
	mem.Append("s1", domain.RoleAssistant, "earlier answer")

	_, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "What about your skills?"})
	require.NoError(t, err)

	msgs := llm.captured
	require.Len(t, msgs, 4)
	require.Equal(t, domain.RoleSystem, msgs[0].Role)
	require.Contains(t, msgs[0].Content, "ONLY use information from the PROVIDED RESUME CONTEXT")
	require.Equal(t, "earlier question", msgs[1].Content)
	require.Equal(t, "earlier answer", msgs[2].Content)

	last := msgs[3]
	require.Equal(t, domain.RoleUser, last.Role)
	require.Contains(t, last.Content, "[Context 1]")
	require.Contains(t, last.Content, "Accenture")
	require.Contains(t, last.Content, "USER QUESTION: What about your skills?")
}

func TestChat_OffTopicSkipsAllRemoteCalls(t *testing.T) {
	r := &mockRetriever{}
	llm := &mockLLM{}
	svc, mem := newTestService(t, r, llm)

	out, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "What's the capital of France?"})
	require.NoError(t, err)
	require.Equal(t, guardrail.RedirectMessage, out.Reply)
	require.Zero(t, r.calls, "off-topic must not retrieve")
	require.Zero(t, llm.calls, "off-topic must not generate")

	// the redirect exchange is still remembered for follow-up context
	require.Len(t, mem.History("s1"), 2)
}

func TestChat_GenerationFailureReturnsApology(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	llm := &mockLLM{err: errors.New("request timed out")}
	svc, mem := newTestService(t, r, llm)

	out, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your projects"})
	require.NoError(t, err, "generation failure must not surface as an error")
	require.Equal(t, ApologyReply, out.Reply)
	require.Equal(t, ApologyReply, mem.History("s1")[1].Content)
}

func TestChat_EmptyModelReplyReturnsApology(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	svc, _ := newTestService(t, r, &mockLLM{reply: "   "})

	out, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your projects"})
	require.NoError(t, err)
	require.Equal(t, ApologyReply, out.Reply)
}

func TestChat_RetrievalFailurePropagates(t *testing.T) {
	r := &mockRetriever{err: &retrieval.RetrievalError{Err: errors.New("index down")}}
	svc, mem := newTestService(t, r, &mockLLM{})

	_, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your projects"})
	expectUsecaseError(t, err, ErrorUpstream, "retrieval_error")
	require.Empty(t, mem.History("s1"), "failed turns are not recorded")
}

func TestChat_EmbeddingFailurePropagates(t *testing.T) {
	r := &mockRetriever{err: &retrieval.EmbeddingError{Err: errors.New("embed down")}}
	svc, _ := newTestService(t, r, &mockLLM{})

	_, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your projects"})
	expectUsecaseError(t, err, ErrorUpstream, "embedding_error")
}

func TestChat_EmptyContextStillGenerates(t *testing.T) {
	r := &mockRetriever{chunks: nil}
	llm := &mockLLM{reply: "I don't have that specific detail in my resume context."}
	svc, _ := newTestService(t, r, llm)

	_, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your education"})
	require.NoError(t, err)
	require.Contains(t, llm.captured[len(llm.captured)-1].Content, retrieval.NoContextSentinel)
}

func TestChat_ValidationErrors(t *testing.T) {
	svc, _ := newTestService(t, &mockRetriever{}, &mockLLM{})

	_, err := svc.Chat(context.Background(), ChatInput{Message: "  "})
	expectUsecaseError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Chat(context.Background(), ChatInput{Message: strings.Repeat("a", 1001)})
	expectUsecaseError(t, err, ErrorInvalidInput, "message_too_long")
}

func TestChat_MissingSessionIDGenerated(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	svc, _ := newTestService(t, r, &mockLLM{reply: "Sure."})

	out, err := svc.Chat(context.Background(), ChatInput{Message: "Tell me about your projects"})
	require.NoError(t, err)
	require.NotEmpty(t, out.SessionID)
}

func TestSearch_HappyPath(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	svc, _ := newTestService(t, r, &mockLLM{})

	chunks, err := svc.Search(context.Background(), "accenture", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, 2, r.topK)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc, _ := newTestService(t, &mockRetriever{}, &mockLLM{})
	_, err := svc.Search(context.Background(), " ", 5)
	expectUsecaseError(t, err, ErrorInvalidInput, "empty_query")
}

func TestSearch_RetrievalFailure(t *testing.T) {
	r := &mockRetriever{err: &retrieval.RetrievalError{Err: errors.New("index down")}}
	svc, _ := newTestService(t, r, &mockLLM{})

	_, err := svc.Search(context.Background(), "accenture", 5)
	expectUsecaseError(t, err, ErrorUpstream, "retrieval_error")
}

func TestClearSession(t *testing.T) {
	r := &mockRetriever{chunks: accentureChunks()}
	svc, mem := newTestService(t, r, &mockLLM{reply: "Sure."})

	_, err := svc.Chat(context.Background(), ChatInput{SessionID: "s1", Message: "Tell me about your projects"})
	require.NoError(t, err)
	require.NotEmpty(t, mem.History("s1"))

	svc.ClearSession("s1")
	require.Empty(t, mem.History("s1"))
}
