package assistant

import "strings"

// fallbackResponse is the canned-reply generator used when the upstream
// model is unavailable. It keys on simple substrings; crisis takes priority.
func fallbackResponse(userMessage string, inCrisis bool) string {
	lowered := strings.ToLower(userMessage)

	if inCrisis {
		return "I notice you may be going through a very difficult time. Your feelings are valid, and I want you to know that you're not alone. Please consider reaching out to a professional for immediate support using our emergency help resources. They are trained to help you through this moment."
	}

	switch {
	case strings.Contains(lowered, "hello") || strings.Contains(lowered, "hi"):
		return "Hello! I'm Kiran. How can I support you today?"
	case strings.Contains(lowered, "sad") || strings.Contains(lowered, "depress"):
		return "I'm sorry to hear you're feeling down. It's important to acknowledge these feelings. Would you like to talk more about what's troubling you?"
	case strings.Contains(lowered, "stress") || strings.Contains(lowered, "anxiety") || strings.Contains(lowered, "anxious"):
		return "Dealing with stress and anxiety can be challenging. Consider taking a few deep breaths. Would you like to explore some coping strategies together?"
	case strings.Contains(lowered, "thank"):
		return "You're welcome! I'm here to support you whenever you need someone to talk to."
	case strings.Contains(lowered, "help") || strings.Contains(lowered, "support"):
		return "I'm here to support you. Please share what's on your mind, and we can work through it together."
	default:
		return "I'm here to listen and help. Can you tell me more about how you're feeling today?"
	}
}
