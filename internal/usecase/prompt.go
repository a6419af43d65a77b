package usecase

import (
	"fmt"
	"strings"

	"portfolio-rag/internal/domain"
)

// personaPrompt fixes the assistant's identity, tone, and the hard grounding
// rule: answer only from the supplied resume context, decline with
// alternatives otherwise, never fabricate.
const personaPrompt = `You are the portfolio assistant for Yazhini Elanchezhian, a friendly and professional AI that helps visitors learn about Yazhini's background, skills, and experience.

Your Role:
- Provide accurate information about Yazhini based ONLY on the resume context provided
- Be warm, conversational, and helpful
- Speak in first person as if you are representing Yazhini (use "I" and "my")

Strict Rules:
1. ONLY use information from the PROVIDED RESUME CONTEXT below
2. If the resume context doesn't contain the answer, explicitly say: "I don't have that specific detail in my resume context. Feel free to ask about my projects, skills, work experience, or education."
3. NEVER make up or hallucinate information
4. If asked about something not in the context, suggest what you CAN answer (e.g. "I can tell you about my work at Accenture, my technical skills, or my education")
5. Keep responses concise but informative (2-4 sentences typically)
6. For follow-up questions, use the conversation history to maintain context

Remember: accuracy over completeness. If you're not sure, say so.`

// suggestionPrompt asks the model for a machine-parseable array of exactly
// two follow-up questions; the parser tolerates deviations.
const suggestionPrompt = `You help visitors explore a professional portfolio. Based on the resume context below, write exactly 2 short follow-up questions a recruiter or HR visitor might ask next.

Constraints:
- Each question must be 5-10 words long
- Non-technical, HR-style phrasing
- No numbering, bullets, or other markers
- Never include sensitive personal data

Return ONLY a JSON array of 2 strings, nothing else. Example: ["What projects are you most proud of?", "What did you study at university?"]`

// buildChatMessages assembles the single ordered prompt for one chat turn:
// persona, prior turns oldest first, then one user entry embedding the
// context block and the literal question.
func buildChatMessages(history []domain.ChatMessage, contextString, question string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: personaPrompt})

	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, m)
	}

	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: buildGroundedQuestion(contextString, question),
	})
	return messages
}

func buildGroundedQuestion(contextString, question string) string {
	return fmt.Sprintf(
		"RESUME CONTEXT:\n%s\n\nUSER QUESTION: %s\n\nPlease answer based ONLY on the resume context above. If the context doesn't contain the information, say so clearly.",
		strings.TrimSpace(contextString),
		strings.TrimSpace(question),
	)
}

// buildSuggestionMessages assembles the prompt for the suggestion flow.
func buildSuggestionMessages(contextString string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: suggestionPrompt},
		{Role: domain.RoleUser, Content: "RESUME CONTEXT:\n" + strings.TrimSpace(contextString)},
	}
}
