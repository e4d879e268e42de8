package chat

import chatmodel "github.com/Subhajitincareer/sahayata-kiran-india/internal/model/chat"

// Canned conversation text. Once a session is in a human-toned, high-stakes
// mode, replies come from these fixed pools instead of the remote responder
// so the tone stays predictable.

const defaultGreeting = "Hi there! I'm Kiran, your supportive chat assistant. How can I help you today?"

const counselorOfferMessage = "I notice you may be going through a difficult time. Would you like to connect with a professional counselor for immediate support?"

const connectingMessage = "Connecting you with a professional counselor..."

const counselorOpeningMessage = "Hello, I'm Counselor Priya, a professional with Sahayata Kiran. I've reviewed your conversation and I'm here to provide personalized support. How are you feeling right now?"

const responderFallbackMessage = "I'm having trouble connecting right now. Please try again in a moment or reach out via the emergency help button if you need immediate support."

var emergencyReplies = []string{
	"Thank you for sharing that. I understand this is difficult. What specific support do you need right now?",
	"I appreciate your courage in reaching out. Let's focus on what would help you feel safer right now.",
	"I hear you, and I want you to know that what you're feeling is valid. Let's work through this together, step by step.",
	"Your safety is our priority. Can you tell me more about what you're experiencing so I can provide the most helpful support?",
	"It's important that you reached out. Let's talk about some immediate strategies that might help you through this moment.",
}

var helplineReplies = []string{
	"Thank you for sharing that with me. Can you tell me more about when you first started feeling this way?",
	"I understand, and I'm here to help you work through these feelings. What coping strategies have you tried so far?",
	"That sounds really challenging. Let's explore some ways to address what you're going through.",
	"I appreciate you trusting me with this information. Have you spoken to anyone else about what you're experiencing?",
	"Your feelings are completely valid. Let's discuss some practical steps that might help you manage this situation.",
}

// followUpLine is the delayed second assistant message that opens staffed
// sessions with a more personal tone.
func followUpLine(mode chatmodel.Mode) string {
	if mode == chatmodel.ModeEmergency {
		return "I want you to know that we're here for you in this difficult moment. Please feel free to share what's going on, and I'll do my best to provide appropriate support."
	}
	return "Feel free to share what's on your mind. This is a safe space, and I'm here to listen and help."
}
