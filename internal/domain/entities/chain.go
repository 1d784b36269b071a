package entities

import "strings"

// chainAliases maps lowercase Hebrew and Latin name fragments to canonical
// chain identifiers. Ordered longest-first at lookup so "super-pharm" does
// not lose to "pharm".
var chainAliases = map[string]string{
	"שופרסל":          "Shufersal",
	"shufersal":       "Shufersal",
	"רמי לוי":         "Rami Levy",
	"rami levy":       "Rami Levy",
	"יוחננוף":         "Yohananof",
	"yohananof":       "Yohananof",
	"ויקטורי":         "Victory",
	"victory":         "Victory",
	"טיב טעם":         "Tiv Taam",
	"tiv taam":        "Tiv Taam",
	"יינות ביתן":      "Yenot Bitan",
	"יינות-ביתן":      "Yenot Bitan",
	"yenot bitan":     "Yenot Bitan",
	"אושר עד":         "Osher Ad",
	"osher ad":        "Osher Ad",
	"חצי חינם":        "Hetzi Hinam",
	"hetzi hinam":     "Hetzi Hinam",
	"קרפור":           "Carrefour",
	"carrefour":       "Carrefour",
	"מחסני השוק":      "Mahsanei Hashuk",
	"mahsanei hashuk": "Mahsanei Hashuk",
	"סופר-פארם":       "Super-Pharm",
	"סופר פארם":       "Super-Pharm",
	"super-pharm":     "Super-Pharm",
	"super pharm":     "Super-Pharm",
	"מגה":             "Mega",
	"mega":            "Mega",
}

// KnownChains lists the canonical chain identifiers the store locator keeps.
var KnownChains = []string{
	"Shufersal", "Rami Levy", "Yohananof", "Victory", "Tiv Taam",
	"Yenot Bitan", "Osher Ad", "Hetzi Hinam", "Carrefour",
	"Mahsanei Hashuk", "Super-Pharm", "Mega",
}

// NormalizeChain maps a raw store name to a canonical chain identifier.
// Unrecognized names are returned unchanged so small independent shops keep
// their display name as their chain.
func NormalizeChain(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return name
	}
	best := ""
	for alias := range chainAliases {
		if strings.Contains(lower, alias) && len(alias) > len(best) {
			best = alias
		}
	}
	if best != "" {
		return chainAliases[best]
	}
	return strings.TrimSpace(name)
}

// MatchesChain reports whether a merchant or domain string refers to the
// given canonical chain.
func MatchesChain(text, chainID string) bool {
	if text == "" || chainID == "" {
		return false
	}
	lower := strings.ToLower(text)
	chainLower := strings.ToLower(chainID)
	if strings.Contains(lower, chainLower) {
		return true
	}
	for alias, canonical := range chainAliases {
		if canonical == chainID && strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}

// IsKnownChain reports whether the identifier is one of the recognized chains.
func IsKnownChain(chainID string) bool {
	for _, c := range KnownChains {
		if c == chainID {
			return true
		}
	}
	return false
}
