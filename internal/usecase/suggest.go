package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"portfolio-rag/internal/retrieval"
)

const (
	suggestionCount    = 2
	suggestionTopK     = 4
	maxSuggestionLen   = 120
	defaultSuggestionQ = "portfolio overview"
)

// fallbackSuggestions is returned whenever fewer than two usable questions
// survive parsing and validation.
var fallbackSuggestions = [suggestionCount]string{
	"Can you tell me about your background?",
	"What kind of experience do you have?",
}

var enumerationPrefix = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

type SuggestInput struct {
	LastUserMessage     string
	ConversationSummary string
}

// Suggest produces exactly two short follow-up questions. Every failure path
// terminates in the fixed fallback pair; this never returns an error.
func (s *ChatService) Suggest(ctx context.Context, in SuggestInput) []string {
	query := firstNonEmpty(in.LastUserMessage, in.ConversationSummary, defaultSuggestionQ)

	chunks, err := s.retriever.Retrieve(ctx, query, suggestionTopK)
	if err != nil {
		return FallbackSuggestions()
	}

	// BuildContext handles the empty-chunks case with its sentinel; the model
	// still produces generic questions from the prompt constraints.
	contextString := retrieval.BuildContext(chunks)

	raw, err := s.llm.Chat(ctx, s.chatModel, buildSuggestionMessages(contextString))
	if err != nil {
		return FallbackSuggestions()
	}

	return repairSuggestions(parseSuggestionArray(raw))
}

// FallbackSuggestions returns a fresh copy of the fixed fallback pair.
func FallbackSuggestions() []string {
	return []string{fallbackSuggestions[0], fallbackSuggestions[1]}
}

// parseSuggestionArray extracts the first JSON string array embedded in the
// raw model output. Decoding is attempted at each "[" so stray brackets in
// surrounding prose do not mask the real array. A nil return means no array
// parsed.
func parseSuggestionArray(raw string) []string {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		var items []string
		if err := json.NewDecoder(strings.NewReader(raw[i:])).Decode(&items); err == nil {
			return items
		}
	}
	return nil
}

// repairSuggestions normalizes candidates (strip enumeration markers, bound
// length, dedupe case-insensitively preserving order) and pads with the
// fallback pair until exactly two remain.
func repairSuggestions(candidates []string) []string {
	out := make([]string, 0, suggestionCount)
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		c = strings.TrimSpace(enumerationPrefix.ReplaceAllString(strings.TrimSpace(c), ""))
		if c == "" || len(c) > maxSuggestionLen {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == suggestionCount {
			return out
		}
	}

	for _, fb := range fallbackSuggestions {
		if len(out) == suggestionCount {
			break
		}
		if seen[strings.ToLower(fb)] {
			continue
		}
		out = append(out, fb)
	}
	for len(out) < suggestionCount {
		out = append(out, fallbackSuggestions[len(out)%suggestionCount])
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
