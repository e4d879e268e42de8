package chat

import (
	"time"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
)

// Mode is the support tier a session runs in.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeHelpline  Mode = "helpline"
	ModeEmergency Mode = "emergency"
)

// Session captures a transient anonymous conversation. The ID is freshly
// minted at session start and carries no link to any account identity.
type Session struct {
	ID             string       `json:"id"`
	Mode           Mode         `json:"mode"`
	Mood           string       `json:"mood"`
	CrisisLevel    crisis.Level `json:"crisisLevel"`
	AgentConnected bool         `json:"agentConnected"`
	CreatedAt      time.Time    `json:"createdAt"`
}
