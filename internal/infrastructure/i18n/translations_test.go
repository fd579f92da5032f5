package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_RendersTemplates(t *testing.T) {
	tr := NewTranslator("en")

	got := tr.T("", "dm.reminder", map[string]any{"Name": "Quiz", "Minutes": 10})
	assert.Equal(t, "Hello! **Quiz** begins in **10 minutes**!", got)

	got = tr.T("fr", "dm.cancelled", map[string]any{"Name": "Quiz"})
	assert.Equal(t, "**Quiz** a été annulé !", got)
}

func TestTranslator_Fallbacks(t *testing.T) {
	tr := NewTranslator("fr")
	assert.Equal(t, "fr", tr.DefaultLocale())

	// Unknown locale falls back to the default language.
	assert.Equal(t, "Lieu", tr.T("de", "embed.location", nil))
	// Unknown key comes back verbatim.
	assert.Equal(t, "no.such.key", tr.T("en", "no.such.key", nil))
	assert.Empty(t, tr.T("en", "", nil))

	assert.Equal(t, "en", NewTranslator("not a locale!").DefaultLocale())
}

// Every error code the handlers can surface has a message in every catalog.
func TestTranslator_CatalogsCoverErrorCodes(t *testing.T) {
	tr := NewTranslator("en")
	codes := []string{
		"unauthorized", "forbidden", "draft_not_found", "event_not_found",
		"datetime_in_past", "invalid_datetime", "missing_argument", "generic",
	}
	for _, locale := range []string{"en", "fr"} {
		for _, code := range codes {
			key := "errors." + code
			msg := tr.T(locale, key, nil)
			require.NotEqual(t, key, msg, "%s missing in %s", key, locale)
		}
	}
}
