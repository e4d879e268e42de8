package i18n

import (
	"testing"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
)

func TestSupportiveMessagePerLanguage(t *testing.T) {
	c := NewComposer(DefaultTables(), English)

	en := c.Supportive(crisis.LevelHigh, English)
	hi := c.Supportive(crisis.LevelHigh, Hindi)
	if en == "" || hi == "" {
		t.Fatal("expected messages for both locales")
	}
	if en == hi {
		t.Fatal("expected distinct localized messages")
	}
}

func TestSupportiveMessageUnknownLanguageFallsBack(t *testing.T) {
	c := NewComposer(DefaultTables(), English)

	got := c.Supportive(crisis.LevelModerate, Language("tamil"))
	want := c.Supportive(crisis.LevelModerate, English)
	if got != want {
		t.Fatalf("expected fallback to default locale, got %q", got)
	}
}

func TestSupportiveMessageNoneIsEmpty(t *testing.T) {
	c := NewComposer(DefaultTables(), English)

	for _, lang := range []Language{English, Hindi} {
		if msg := c.Supportive(crisis.LevelNone, lang); msg != "" {
			t.Fatalf("expected empty message for none, got %q", msg)
		}
	}
}
