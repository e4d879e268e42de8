package crisis

// Level is the severity bucket assigned to a block of text.
type Level string

const (
	LevelNone     Level = "none"
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

var severityRank = map[Level]int{
	LevelNone:     0,
	LevelLow:      1,
	LevelModerate: 2,
	LevelHigh:     3,
}

// Severity returns the ordinal rank of the level (none < low < moderate < high).
func (l Level) Severity() int {
	return severityRank[l]
}

// Max returns the more severe of the two levels.
func (l Level) Max(other Level) Level {
	if other.Severity() > l.Severity() {
		return other
	}
	return l
}

// Corpus holds the tiered phrase lists the classifier scans. Phrases for all
// supported languages live in the same tier; detection never branches on the
// UI locale.
type Corpus struct {
	High     []string
	Moderate []string
	Low      []string
}

// DefaultCorpus returns the built-in English and Hindi phrase lists.
func DefaultCorpus() Corpus {
	return Corpus{
		High: []string{
			// Suicidal ideation
			"suicide", "kill myself", "end my life", "want to die", "better off dead",
			"no reason to live", "can't go on", "goodbye forever", "final note",
			// Hindi variants
			"आत्महत्या", "खुद को मारना", "जीवन समाप्त", "मरना चाहता", "मरना चाहती",
		},
		Moderate: []string{
			// Self-harm
			"cut myself", "hurt myself", "self harm", "harming myself", "cutting", "burn myself",
			"hurting myself", "inflict pain", "punish myself",
			// Severe depression
			"worthless", "hopeless", "can't take it anymore", "pointless", "nothing matters",
			// Hindi variants
			"खुद को काटना", "खुद को चोट", "बेकार", "निराशा", "कुछ मायने नहीं रखता",
		},
		Low: []string{
			// Concerning but less immediate
			"so sad", "depressed", "anxiety", "no one cares", "lonely", "trapped", "exhausted",
			"overwhelmed", "can't cope", "stressed", "failing", "giving up",
			// Hindi variants
			"उदास", "अकेला", "चिंता", "तनाव", "असफल",
		},
	}
}
