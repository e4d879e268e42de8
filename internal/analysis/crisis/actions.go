package crisis

// Actions lists the side effects recommended for a detection level. Kept
// apart from the classifier so response policy can change without touching
// detection.
type Actions struct {
	ShowEmergencyHelp     bool `json:"showEmergencyHelp"`
	NotifyCounselor       bool `json:"notifyCounselor"`
	SuggestResources      bool `json:"suggestResources"`
	ShowSupportiveMessage bool `json:"showSupportiveMessage"`
}

// ActionsFor maps a detection level to its fixed action set.
func ActionsFor(level Level) Actions {
	switch level {
	case LevelHigh:
		return Actions{
			ShowEmergencyHelp:     true,
			NotifyCounselor:       true,
			SuggestResources:      true,
			ShowSupportiveMessage: true,
		}
	case LevelModerate:
		return Actions{
			ShowEmergencyHelp:     true,
			SuggestResources:      true,
			ShowSupportiveMessage: true,
		}
	case LevelLow:
		return Actions{
			SuggestResources:      true,
			ShowSupportiveMessage: true,
		}
	default:
		return Actions{}
	}
}
