package i18n

import (
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
)

// Language tags a supportive-message locale.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
)

// Tables maps (language, level) to localized supportive text.
type Tables map[Language]map[crisis.Level]string

// DefaultTables returns the built-in English and Hindi supportive messages.
func DefaultTables() Tables {
	return Tables{
		English: {
			crisis.LevelHigh:     "You're not alone. Help is available right now. Please reach out to our emergency services.",
			crisis.LevelModerate: "Support is available for you. Please consider talking to someone.",
			crisis.LevelLow:      "We notice you're going through a difficult time. Help is available.",
		},
		Hindi: {
			crisis.LevelHigh:     "आप अकेले नहीं हैं। तुरंत सहायता उपलब्ध है। कृपया हमारी आपातकालीन सेवाओं से संपर्क करें।",
			crisis.LevelModerate: "आपके लिए सहायता उपलब्ध है। कृपया किसी से बात करने पर विचार करें।",
			crisis.LevelLow:      "हम देख रहे हैं कि आप मुश्किल समय से गुजर रहे हैं। सहायता उपलब्ध है।",
		},
	}
}

// Composer produces localized supportive messages for detection levels.
type Composer struct {
	tables   Tables
	fallback Language
}

// NewComposer builds a composer over the supplied tables. Lookups for
// languages without a table fall back to the given default.
func NewComposer(tables Tables, fallback Language) *Composer {
	return &Composer{tables: tables, fallback: fallback}
}

// Supportive returns the supportive message for a level in the requested
// language, or the empty string for level none.
func (c *Composer) Supportive(level crisis.Level, lang Language) string {
	table, ok := c.tables[lang]
	if !ok {
		table = c.tables[c.fallback]
	}
	return table[level]
}
