package intent

import "strings"

// SubIntent refines the remaining-allowance category into the specific
// question the caller asked.
type SubIntent int

const (
	SubBilinmiyor SubIntent = iota
	SubSonAy
	SubSonIkiAy
	SubSonUcAy
	SubSMS
	SubDakika
	SubInternet
	SubTumHaklar
)

// SubMatcher picks the remaining-allowance sub-intent for an utterance. It
// is an interface so the substring strategy can be swapped without touching
// the dialogue flow.
type SubMatcher interface {
	Match(utterance string) SubIntent
}

// KeywordMatcher is the shipped strategy: first-match substring rules,
// checked in a fixed order.
type KeywordMatcher struct{}

func (KeywordMatcher) Match(utterance string) SubIntent {
	u := strings.ToLower(utterance)
	switch {
	case strings.Contains(u, "son ay"):
		return SubSonAy
	case strings.Contains(u, "son 2 ay") || strings.Contains(u, "2 ay"):
		return SubSonIkiAy
	case strings.Contains(u, "son 3 ay") || strings.Contains(u, "3 ay"):
		return SubSonUcAy
	case strings.Contains(u, "sms"):
		return SubSMS
	case strings.Contains(u, "dakika"):
		return SubDakika
	case strings.Contains(u, "internet"):
		return SubInternet
	case strings.Contains(u, "tüm hak") || strings.Contains(u, "hepsi") || strings.Contains(u, "kalan hak"):
		return SubTumHaklar
	default:
		return SubBilinmiyor
	}
}
