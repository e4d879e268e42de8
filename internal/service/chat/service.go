package chat

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
	chatmodel "github.com/Subhajitincareer/sahayata-kiran-india/internal/model/chat"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/notify"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/service/responder"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrInvalidMode     = errors.New("invalid session mode")
	ErrResponsePending = errors.New("a response is already pending for this session")
	ErrAgentConnected  = errors.New("an agent is already connected")
)

// Responder is the remote supportive-chat collaborator.
type Responder interface {
	Respond(ctx context.Context, req responder.Request) (responder.Response, error)
}

// Options wires the session service's collaborators. Rand and the delays are
// injectable so tests can pin scripted replies and run without timers.
type Options struct {
	Classifier crisis.Classifier
	Responder  Responder
	Notifier   notify.Notifier
	Rand       *rand.Rand
	// AgentConnectDelay simulates the wait before a counselor joins.
	AgentConnectDelay time.Duration
	// FollowUpDelay spaces the second opening message in staffed modes.
	FollowUpDelay time.Duration
}

// session is the internal mutable state behind a chatmodel.Session.
// Transcripts live here, in process memory only, until the session ends.
type session struct {
	data       chatmodel.Session
	transcript []chatmodel.Message
	// crisisMode latches once a high detection or a responder crisis
	// verdict lands. It never clears within the session.
	crisisMode bool
	// pending guards the single outstanding responder call per session.
	pending     bool
	watchers    map[int]chan chatmodel.Message
	nextWatcher int
}

// Service owns every live chat session and drives the crisis pipeline on
// each inbound message.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	classifier crisis.Classifier
	responder  Responder
	notifier   notify.Notifier
	rng        *rand.Rand

	agentConnectDelay time.Duration
	followUpDelay     time.Duration
}

// NewService builds the in-memory session service.
func NewService(opts Options) *Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		sessions:          make(map[string]*session),
		classifier:        opts.Classifier,
		responder:         opts.Responder,
		notifier:          notifier,
		rng:               rng,
		agentConnectDelay: opts.AgentConnectDelay,
		followUpDelay:     opts.FollowUpDelay,
	}
}

// CreateParams describes how a session is entered. Mood comes from the
// optional mood-selection pre-step and may be empty.
type CreateParams struct {
	Mode chatmodel.Mode
	Mood string
}

// CreateSession mints an anonymous session and seeds its opening messages.
// Helpline and emergency entries start already professionally staffed and
// queue a delayed follow-up from the responder.
func (s *Service) CreateSession(_ context.Context, params CreateParams) (chatmodel.Session, []chatmodel.Message, error) {
	mode := params.Mode
	if mode == "" {
		mode = chatmodel.ModeStandard
	}
	switch mode {
	case chatmodel.ModeStandard, chatmodel.ModeHelpline, chatmodel.ModeEmergency:
	default:
		return chatmodel.Session{}, nil, ErrInvalidMode
	}

	sess := &session{
		data: chatmodel.Session{
			ID:             uuid.NewString(),
			Mode:           mode,
			Mood:           params.Mood,
			CrisisLevel:    crisis.LevelNone,
			AgentConnected: mode != chatmodel.ModeStandard,
			CreatedAt:      time.Now().UTC(),
		},
		watchers: make(map[int]chan chatmodel.Message),
	}

	s.mu.Lock()
	s.sessions[sess.data.ID] = sess
	s.append(sess, chatmodel.RoleAssistant, defaultGreeting)
	snapshot := sess.data
	messages := copyMessages(sess.transcript)
	s.mu.Unlock()

	if mode != chatmodel.ModeStandard {
		id := sess.data.ID
		s.schedule(s.followUpDelay, func() {
			s.appendIfAlive(id, chatmodel.RoleAssistant, followUpLine(mode))
		})
	}

	log.Printf("[chat] session created id=%s mode=%s", snapshot.ID, snapshot.Mode)
	return snapshot, messages, nil
}

// GetSession returns a snapshot of the session state.
func (s *Service) GetSession(_ context.Context, sessionID string) (chatmodel.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return chatmodel.Session{}, ErrSessionNotFound
	}
	return sess.data, nil
}

// Transcript returns a copy of the session's messages in append order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chatmodel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyMessages(sess.transcript), nil
}

// SendResult reports everything one inbound message produced: the appended
// messages, the detection outcome, the recommended actions (the UI uses
// ShowEmergencyHelp to open the emergency panel), and the session snapshot.
type SendResult struct {
	Messages  []chatmodel.Message `json:"messages"`
	Detection crisis.Result       `json:"detection"`
	Actions   crisis.Actions      `json:"actions"`
	Session   chatmodel.Session   `json:"session"`
}

// SendMessage runs the crisis pipeline on one user message and produces the
// session's response.
//
// A high detection in an unstaffed standard session appends the counselor
// offer and stops: escalation waits for explicit confirmation. Staffed or
// crisis-latched sessions answer from the scripted pools. Everything else
// goes to the remote responder, degrading to a canned apology on failure.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (SendResult, error) {
	if text == "" {
		return SendResult{}, ErrEmptyMessage
	}

	detection := s.classifier.Classify(text)
	actions := crisis.ActionsFor(detection.Level)

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SendResult{}, ErrSessionNotFound
	}
	if sess.pending {
		s.mu.Unlock()
		return SendResult{}, ErrResponsePending
	}

	start := len(sess.transcript)
	s.append(sess, chatmodel.RoleUser, text)

	// Crisis state only ever moves upward within a session.
	if detection.Level == crisis.LevelHigh {
		sess.crisisMode = true
	}
	sess.data.CrisisLevel = sess.data.CrisisLevel.Max(detection.Level)

	mode := sess.data.Mode
	scripted := sess.crisisMode ||
		mode == chatmodel.ModeEmergency ||
		mode == chatmodel.ModeHelpline ||
		detection.Level == crisis.LevelHigh

	if scripted {
		if detection.Level == crisis.LevelHigh && !sess.data.AgentConnected && mode == chatmodel.ModeStandard {
			// Offer the hand-off and wait for explicit confirmation
			// before escalating further. No responder call.
			s.append(sess, chatmodel.RoleSystem, counselorOfferMessage)
		} else {
			pool := helplineReplies
			if mode == chatmodel.ModeEmergency || sess.crisisMode {
				pool = emergencyReplies
			}
			s.append(sess, chatmodel.RoleAssistant, pool[s.rng.Intn(len(pool))])
		}
		result := SendResult{
			Messages:  copyMessages(sess.transcript[start:]),
			Detection: detection,
			Actions:   actions,
			Session:   sess.data,
		}
		s.mu.Unlock()
		s.maybeNotifyCounselor(ctx, sessionID, detection, actions)
		return result, nil
	}

	// Remote responder path. Only one call may be outstanding per session.
	sess.pending = true
	req := responder.Request{Message: text, Mood: sess.data.Mood, SessionID: sessionID}
	s.mu.Unlock()

	s.maybeNotifyCounselor(ctx, sessionID, detection, actions)

	resp, err := s.responder.Respond(ctx, req)

	s.mu.Lock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		// Session was torn down mid-flight; the reply has nowhere to go.
		s.mu.Unlock()
		return SendResult{}, ErrSessionNotFound
	}
	sess.pending = false

	if err != nil {
		log.Printf("[chat] responder failed for session=%s: %v", sessionID, err)
		// Degrade to the canned apology; the crisis level stays at the
		// classifier-derived value.
		s.append(sess, chatmodel.RoleAssistant, responderFallbackMessage)
	} else {
		s.append(sess, chatmodel.RoleAssistant, resp.Response)
		if resp.InCrisis {
			// The responder's independent verdict is OR-ed into local
			// state, not treated as authoritative for the level.
			sess.crisisMode = true
		}
	}

	result := SendResult{
		Messages:  copyMessages(sess.transcript[start:]),
		Detection: detection,
		Actions:   actions,
		Session:   sess.data,
	}
	s.mu.Unlock()
	return result, nil
}

// ConnectAgent performs the explicit user-confirmed hand-off to a counselor.
// The connecting notice lands immediately; the counselor's opening message
// follows after the configured delay.
func (s *Service) ConnectAgent(_ context.Context, sessionID string) ([]chatmodel.Message, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.data.AgentConnected {
		s.mu.Unlock()
		return nil, ErrAgentConnected
	}

	start := len(sess.transcript)
	s.append(sess, chatmodel.RoleSystem, connectingMessage)
	s.mu.Unlock()

	s.schedule(s.agentConnectDelay, func() {
		s.mu.Lock()
		sess, ok := s.sessions[sessionID]
		if ok {
			s.append(sess, chatmodel.RoleAssistant, counselorOpeningMessage)
			sess.data.AgentConnected = true
		}
		s.mu.Unlock()
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok = s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyMessages(sess.transcript[start:]), nil
}

// EndSession drops the session. The transcript is gone for good: nothing in
// this design persists it.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	for _, ch := range sess.watchers {
		close(ch)
	}
	delete(s.sessions, sessionID)
	log.Printf("[chat] session ended id=%s (transcript discarded)", sessionID)
	return nil
}

// Watch subscribes to messages appended to the session after the call,
// including delayed counselor and follow-up messages. The returned cancel
// function releases the subscription; the channel closes when the session
// ends.
func (s *Service) Watch(sessionID string) (<-chan chatmodel.Message, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan chatmodel.Message, 16)
	key := sess.nextWatcher
	sess.nextWatcher++
	sess.watchers[key] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sess, ok := s.sessions[sessionID]; ok {
			if _, live := sess.watchers[key]; live {
				delete(sess.watchers, key)
				close(ch)
			}
		}
	}
	return ch, cancel, nil
}

// append adds a message and fans it out to watchers. Callers hold s.mu.
func (s *Service) append(sess *session, role chatmodel.Role, content string) chatmodel.Message {
	msg := chatmodel.Message{
		ID:        uuid.NewString(),
		SessionID: sess.data.ID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	sess.transcript = append(sess.transcript, msg)
	for _, ch := range sess.watchers {
		select {
		case ch <- msg:
		default:
			// Slow watcher; drop rather than stall the session.
		}
	}
	return msg
}

// appendIfAlive appends only when the session still exists. Used by delayed
// timers, which are harmless after teardown.
func (s *Service) appendIfAlive(sessionID string, role chatmodel.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		s.append(sess, role, content)
	}
}

// schedule runs fn after d, or inline when no delay is configured.
func (s *Service) schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}

func (s *Service) maybeNotifyCounselor(ctx context.Context, sessionID string, detection crisis.Result, actions crisis.Actions) {
	if !actions.NotifyCounselor {
		return
	}
	alert := notify.Alert{
		Source:    "chat",
		SessionID: sessionID,
		Level:     detection.Level,
		Keywords:  detection.Keywords,
		At:        time.Now().UTC(),
	}
	if err := s.notifier.NotifyCrisis(ctx, alert); err != nil {
		log.Printf("[chat] counselor notification failed for session=%s: %v", sessionID, err)
	}
}

func copyMessages(messages []chatmodel.Message) []chatmodel.Message {
	copied := make([]chatmodel.Message, len(messages))
	copy(copied, messages)
	return copied
}
