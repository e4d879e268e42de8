package notify

import (
	"context"
	"log"
	"time"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
)

// Alert is the payload delivered to the counselor team when a detection
// recommends notifying a counselor. Either SessionID (chat) or UserID
// (journal) is set, never both.
type Alert struct {
	Source    string       `json:"source"`
	SessionID string       `json:"sessionId,omitempty"`
	UserID    string       `json:"userId,omitempty"`
	Level     crisis.Level `json:"level"`
	Keywords  []string     `json:"keywords"`
	At        time.Time    `json:"at"`
}

// Notifier delivers crisis alerts to whoever staffs the counselor queue.
type Notifier interface {
	NotifyCrisis(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the process log. It stands in when no broker
// is configured so the escalation path never blocks on infrastructure.
type LogNotifier struct{}

// NotifyCrisis logs the alert.
func (LogNotifier) NotifyCrisis(_ context.Context, alert Alert) error {
	log.Printf("[notify] crisis alert source=%s session=%s user=%s level=%s keywords=%v",
		alert.Source, alert.SessionID, alert.UserID, alert.Level, alert.Keywords)
	return nil
}
