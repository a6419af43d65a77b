// Package guardrail classifies incoming messages as in scope (about the
// portfolio owner's work and background) or out of scope, using fixed local
// lexicons only. No remote calls are made here so rejected messages cost
// nothing downstream.
package guardrail

import "strings"

// RedirectMessage is the reply returned verbatim for out-of-scope messages.
const RedirectMessage = "That's outside my scope, but I'd love to tell you about my work. " +
	"Ask me about my projects, skills, or experience."

// irrelevantTopics short-circuit rejection. Checked before relevant keywords:
// a message mentioning both "weather" and "project" is rejected.
var irrelevantTopics = []string{
	"weather", "news", "politics", "sports", "recipe", "math", "homework",
	"write code", "debug", "fix", "calculate", "solve", "equation",
	"story", "joke", "game", "movie", "music", "celebrity",
}

// relevantKeywords mark a message as being about the portfolio owner.
var relevantKeywords = []string{
	// name variations
	"yazhini", "elanchezhian",

	// professional topics
	"project", "projects", "geoassist", "scholarbot",
	"skill", "skills", "experience", "work", "job", "accenture",
	"education", "degree", "master", "bachelor", "university", "csusb", "sastra",

	// technologies
	"angular", "javascript", "python", "aws", "lambda", "docker",
	"langchain", "langgraph", "arcgis", "streamlit",
	"power bi", "power apps", "power automate",
	".net", "azure", "cosmos",

	// contact and location
	"contact", "email", "phone", "location", "redlands", "california",

	// general portfolio questions
	"portfolio", "about you", "tell me", "who are you", "background",
	"resume", "cv", "achievements", "accomplishments",
}

// greetings allow short conversational messages ("hi", "thanks") through
// without any relevant keyword.
var greetings = []string{"hi", "hello", "hey", "thanks", "thank", "ok", "okay"}

// InScope reports whether the message should reach the retrieval and
// generation pipeline. Precedence is irrelevant-first: an irrelevant topic
// rejects even when a relevant keyword is also present.
func InScope(message string) bool {
	if len(strings.TrimSpace(message)) < 3 {
		return false
	}

	lower := strings.ToLower(message)

	for _, topic := range irrelevantTopics {
		if strings.Contains(lower, topic) {
			return false
		}
	}

	for _, keyword := range relevantKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	// Greetings must match whole words so fragments like "ok" inside
	// "broke" do not let an unrelated message through.
	if words := strings.Fields(lower); len(words) <= 3 {
		for _, word := range words {
			word = strings.Trim(word, ".,!?")
			for _, greeting := range greetings {
				if word == greeting {
					return true
				}
			}
		}
	}

	return false
}
