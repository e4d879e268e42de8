package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/config"
)

// Request mirrors the wire payload the chat clients send.
type Request struct {
	Message   string `json:"message"`
	Mood      string `json:"mood"`
	SessionID string `json:"sessionId"`
}

// Response is the responder reply. InCrisis reflects this service's own
// keyword scan, independent of the client-side classifier.
type Response struct {
	Response      string `json:"response"`
	InCrisis      bool   `json:"inCrisis"`
	UsingFallback bool   `json:"usingFallback,omitempty"`
}

// crisisKeywords is the responder's own, smaller scan list. It is a cruder
// check than the tiered classifier and deliberately kept separate from it.
var crisisKeywords = []string{
	"suicide", "kill myself", "end my life", "self harm",
	"want to die", "hurt myself", "no reason to live",
	"आत्महत्या", "खुद को मारना", "जीवन समाप्त", "मरना चाहता", "मरना चाहती",
}

func containsCrisisWord(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Service hosts the supportive-chat responder. When the upstream model is
// unavailable (not configured or erroring) it degrades to the canned
// fallback generator rather than failing the request.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the responder. A nil error with a fallback-only service
// is returned when no model credentials are configured.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return &Service{}, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile responder chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// ModelEnabled reports whether an upstream model is wired in.
func (s *Service) ModelEnabled() bool {
	return s != nil && s.chain != nil
}

// Chat produces a supportive reply. It never fails: upstream errors produce
// the canned fallback with UsingFallback set.
func (s *Service) Chat(ctx context.Context, req Request) Response {
	inCrisis := containsCrisisWord(req.Message)

	if !s.ModelEnabled() {
		return Response{
			Response:      fallbackResponse(req.Message, inCrisis),
			InCrisis:      inCrisis,
			UsingFallback: true,
		}
	}

	input := map[string]any{
		"system": buildSystemPrompt(req.Mood, inCrisis),
		"query":  req.Message,
	}

	msg, err := s.chain.Invoke(ctx, input)
	if err != nil || msg == nil || strings.TrimSpace(msg.Content) == "" {
		log.Printf("[assistant] upstream model failed for session=%s, using fallback: %v", req.SessionID, err)
		return Response{
			Response:      fallbackResponse(req.Message, inCrisis),
			InCrisis:      inCrisis,
			UsingFallback: true,
		}
	}

	log.Printf("[assistant] generated response for session=%s, length=%d", req.SessionID, len(msg.Content))
	return Response{Response: msg.Content, InCrisis: inCrisis}
}

func buildSystemPrompt(mood string, inCrisis bool) string {
	if mood == "" {
		mood = "neutral"
	}

	var b strings.Builder
	b.WriteString("You are Kiran, an empathetic mental health support assistant focused on helping students in India. ")
	b.WriteString(fmt.Sprintf("The user's current mood is: %s. ", mood))
	b.WriteString("Respond with understanding and care, but if you detect signs of crisis, recommend professional help. Keep responses concise and supportive.")

	if inCrisis {
		b.WriteString("\nIMPORTANT: The user has expressed content that may indicate they are in crisis. ")
		b.WriteString("Respond with extra compassion, validate their feelings, and strongly encourage them to seek immediate help. ")
		b.WriteString("Remind them of the emergency resources available through the \"Emergency Help\" button. ")
		b.WriteString("Do not minimize their feelings or suggest that things will simply get better.")
	}

	return b.String()
}
