// Package handler exposes the chat pipeline over an API Gateway proxy
// integration: POST /chat, POST /search, POST /suggestions, GET /health.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"portfolio-rag/internal/domain"
	"portfolio-rag/internal/usecase"
)

// ChatPipeline is the slice of the usecase layer the handler consumes.
type ChatPipeline interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
	Suggest(ctx context.Context, in usecase.SuggestInput) []string
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Query   string                  `json:"query"`
	Matches []domain.RetrievedChunk `json:"matches"`
	Count   int                     `json:"count"`
}

type suggestionsRequest struct {
	LastUserMessage     string `json:"last_user_message"`
	ConversationSummary string `json:"conversation_summary"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type healthResponse struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	PineconeConfigured bool   `json:"pinecone_configured"`
	IndexHost          string `json:"index_host"`
	Namespace          string `json:"namespace"`
	EmbedModel         string `json:"embed_model"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// HealthInfo carries the non-sensitive configuration echoed by GET /health
// so operators can confirm what the deployment is wired against.
type HealthInfo struct {
	PineconeConfigured bool
	IndexHost          string
	Namespace          string
	EmbedModel         string
}

// Handler routes API Gateway proxy events to the chat pipeline.
type Handler struct {
	pipeline ChatPipeline
	health   HealthInfo
}

func NewHandler(pipeline ChatPipeline, health HealthInfo) (*Handler, error) {
	if pipeline == nil {
		return nil, errors.New("handler: pipeline must not be nil")
	}
	return &Handler{pipeline: pipeline, health: health}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch {
	case req.Path == "/health" && req.HTTPMethod == http.MethodGet:
		return jsonResponse(http.StatusOK, healthResponse{
			Status:             "healthy",
			Service:            "portfolio-rag",
			PineconeConfigured: h.health.PineconeConfigured,
			IndexHost:          h.health.IndexHost,
			Namespace:          h.health.Namespace,
			EmbedModel:         h.health.EmbedModel,
		}), nil
	case req.Path == "/chat" && req.HTTPMethod == http.MethodPost:
		return h.handleChat(ctx, req), nil
	case req.Path == "/search" && req.HTTPMethod == http.MethodPost:
		return h.handleSearch(ctx, req), nil
	case req.Path == "/suggestions" && req.HTTPMethod == http.MethodPost:
		return h.handleSuggestions(ctx, req), nil
	case req.Path == "/chat" || req.Path == "/search" || req.Path == "/suggestions" || req.Path == "/health":
		return errorResponseFor(http.StatusMethodNotAllowed, "Method Not Allowed", "unsupported method "+req.HTTPMethod), nil
	default:
		return errorResponseFor(http.StatusNotFound, "Not Found", "unknown path "+req.Path), nil
	}
}

func (h *Handler) handleChat(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var in chatRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return errorResponseFor(http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
	}

	out, err := h.pipeline.Chat(ctx, usecase.ChatInput{SessionID: in.SessionID, Message: in.Message})
	if err != nil {
		return usecaseErrorResponse(err, "Chat Error")
	}
	return jsonResponse(http.StatusOK, chatResponse{Reply: out.Reply, SessionID: out.SessionID})
}

func (h *Handler) handleSearch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var in searchRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return errorResponseFor(http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
	}

	chunks, err := h.pipeline.Search(ctx, in.Query, in.TopK)
	if err != nil {
		return usecaseErrorResponse(err, "Search Error")
	}
	return jsonResponse(http.StatusOK, searchResponse{Query: in.Query, Matches: chunks, Count: len(chunks)})
}

// handleSuggestions always answers 200: the suggestion flow degrades to its
// fixed fallback pair internally. A malformed body just means no hints.
func (h *Handler) handleSuggestions(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var in suggestionsRequest
	_ = json.Unmarshal([]byte(req.Body), &in)

	suggestions := h.pipeline.Suggest(ctx, usecase.SuggestInput{
		LastUserMessage:     in.LastUserMessage,
		ConversationSummary: in.ConversationSummary,
	})
	return jsonResponse(http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

func usecaseErrorResponse(err error, label string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return errorResponseFor(http.StatusInternalServerError, label, "unexpected error")
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return errorResponseFor(http.StatusBadRequest, label, ucErr.Reason)
	case usecase.ErrorRateLimited:
		return errorResponseFor(http.StatusTooManyRequests, label, ucErr.Reason)
	case usecase.ErrorUpstream:
		return errorResponseFor(http.StatusBadGateway, label, ucErr.Reason)
	default:
		return errorResponseFor(http.StatusInternalServerError, label, ucErr.Reason)
	}
}

func errorResponseFor(status int, label, detail string) events.APIGatewayProxyResponse {
	return jsonResponse(status, errorResponse{Error: label, Detail: detail})
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"Internal Error","detail":"failed to encode response"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(buf),
	}
}
