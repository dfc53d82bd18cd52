package projection

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sequent.dev/internal/services/sequencing/domain"
)

// ConfirmedNames returns the display names of confirmed participants sorted
// with locale-aware collation. The list is quoted in drafts as social proof,
// so ordering must be stable across runs and readable in the operator's
// locale. Unparseable locales fall back to English.
func ConfirmedNames(roster []domain.Participant, locale string) []string {
	names := make([]string, 0)
	for _, participant := range roster {
		if participant.Status == domain.StatusConfirmed {
			names = append(names, participant.Name)
		}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	collate.New(tag).SortStrings(names)
	return names
}
