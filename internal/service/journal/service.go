package journal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/i18n"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/notify"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/store/mood"
)

// ErrEntryNotFound aliases the store error for handler convenience.
var ErrEntryNotFound = mood.ErrEntryNotFound

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrMoodRequired   = errors.New("mood is required")
)

// Options wires the journal service. The two callbacks replace any global
// lookup of UI affordances: the owner of the supportive banner and of the
// emergency panel registers them here.
type Options struct {
	Classifier crisis.Classifier
	Composer   *i18n.Composer
	Store      *mood.Store
	Notifier   notify.Notifier
	// Debounce delays draft evaluation after each text change.
	Debounce time.Duration
	// PanelDelay spaces the emergency-panel request after a high detection.
	PanelDelay time.Duration
	// OnSupportiveNotice receives the composed supportive message for
	// moderate and high draft detections.
	OnSupportiveNotice func(userID string, level crisis.Level, message string)
	// OnRequestEmergencyPanel asks the panel owner to open the emergency
	// surface for the user.
	OnRequestEmergencyPanel func(userID string)
}

// Service runs the crisis pipeline over journal drafts and owns the per-day
// mood entry save path.
type Service struct {
	classifier crisis.Classifier
	composer   *i18n.Composer
	store      *mood.Store
	notifier   notify.Notifier

	debounce   time.Duration
	panelDelay time.Duration

	onNotice func(userID string, level crisis.Level, message string)
	onPanel  func(userID string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewService builds the journal service.
func NewService(opts Options) *Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Service{
		classifier: opts.Classifier,
		composer:   opts.Composer,
		store:      opts.Store,
		notifier:   notifier,
		debounce:   opts.Debounce,
		panelDelay: opts.PanelDelay,
		onNotice:   opts.OnSupportiveNotice,
		onPanel:    opts.OnRequestEmergencyPanel,
		timers:     make(map[string]*time.Timer),
	}
}

// UpdateDraft (re)starts the debounce timer for a user's draft. When the
// timer fires the draft is classified and the supportive/panel callbacks
// run. A newer draft cancels the pending evaluation.
func (s *Service) UpdateDraft(userID, text string, lang i18n.Language) {
	s.mu.Lock()
	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
		delete(s.timers, userID)
	}

	if s.debounce <= 0 {
		s.mu.Unlock()
		s.evaluateDraft(userID, text, lang)
		return
	}

	s.timers[userID] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, userID)
		s.mu.Unlock()
		s.evaluateDraft(userID, text, lang)
	})
	s.mu.Unlock()
}

// CheckDraft classifies a draft immediately and composes the supportive
// message, without side effects. Thin clients poll this endpoint instead of
// registering callbacks.
func (s *Service) CheckDraft(text string, lang i18n.Language) (crisis.Result, crisis.Actions, string) {
	detection := s.classifier.Classify(text)
	actions := crisis.ActionsFor(detection.Level)
	message := ""
	if actions.ShowSupportiveMessage {
		message = s.composer.Supportive(detection.Level, lang)
	}
	return detection, actions, message
}

func (s *Service) evaluateDraft(userID, text string, lang i18n.Language) {
	if strings.TrimSpace(text) == "" {
		return
	}

	detection := s.classifier.Classify(text)
	if detection.Level != crisis.LevelModerate && detection.Level != crisis.LevelHigh {
		return
	}

	if s.onNotice != nil {
		if message := s.composer.Supportive(detection.Level, lang); message != "" {
			s.onNotice(userID, detection.Level, message)
		}
	}

	if detection.Level == crisis.LevelHigh && s.onPanel != nil {
		if s.panelDelay <= 0 {
			s.onPanel(userID)
		} else {
			time.AfterFunc(s.panelDelay, func() { s.onPanel(userID) })
		}
	}
}

// SaveParams carries one journal save.
type SaveParams struct {
	UserID  string
	Date    string // "YYYY-MM-DD"; defaults to today
	Mood    string
	Journal string
}

// Save classifies the journal text and writes the day's entry, replacing
// any earlier entry for the same user and day. High detections also notify
// the counselor queue.
func (s *Service) Save(ctx context.Context, params SaveParams) (*mood.Entry, error) {
	if params.UserID == "" {
		return nil, ErrUserIDRequired
	}
	if params.Mood == "" {
		return nil, ErrMoodRequired
	}
	date := params.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	detection := s.classifier.Classify(params.Journal)

	entry, err := s.store.Upsert(ctx, &mood.Entry{
		UserID:      params.UserID,
		Date:        date,
		Mood:        params.Mood,
		Journal:     strings.TrimSpace(params.Journal),
		CrisisLevel: detection.Level,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("save mood entry: %w", err)
	}

	if crisis.ActionsFor(detection.Level).NotifyCounselor {
		alert := notify.Alert{
			Source:   "journal",
			UserID:   params.UserID,
			Level:    detection.Level,
			Keywords: detection.Keywords,
			At:       time.Now().UTC(),
		}
		if err := s.notifier.NotifyCrisis(ctx, alert); err != nil {
			log.Printf("[journal] counselor notification failed for user=%s: %v", params.UserID, err)
		}
	}

	return entry, nil
}

// Today returns the user's entry for the current calendar day.
func (s *Service) Today(ctx context.Context, userID string) (*mood.Entry, error) {
	return s.store.Get(ctx, userID, time.Now().UTC().Format("2006-01-02"))
}

// CrisisEntries lists recent moderate/high entries for the alert monitor.
func (s *Service) CrisisEntries(ctx context.Context, limit int) ([]mood.Entry, error) {
	return s.store.ListCrisisEntries(ctx, limit)
}
