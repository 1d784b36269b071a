package services

import (
	"strings"
)

// maxVariants caps the expansion of one item into search variants.
const maxVariants = 6

// brandAlias pairs a recognizable brand form with its translated or
// canonical counterpart. Checked in order; both directions are listed
// explicitly so lookup stays a plain substring scan.
type brandAlias struct {
	match string
	add   string
}

var brandAliases = []brandAlias{
	{"קוקה קולה", "coca cola"},
	{"coca cola", "קוקה קולה"},
	{"קולה זירו", "coca cola zero"},
	{"במבה", "במבה אסם"},
	{"תלמה", "קורנפלקס תלמה"},
	{"עלית", "שוקולד עלית"},
	{"יופלה", "yoplait"},
	{"מילקי", "מילקי שטראוס"},
	{"נוטלה", "nutella"},
	{"nutella", "נוטלה"},
	{"ברילה", "barilla"},
	{"barilla", "ברילה"},
	{"היינץ", "heinz"},
	{"heinz", "היינץ"},
	{"תנובה", "tnuva"},
	{"אוסם", "osem"},
	{"osem", "אוסם"},
}

// categoryDefault carries a standard size suffix for a known product family.
// Applied only when the item text has no unit token of its own.
type categoryDefault struct {
	keywords []string
	suffix   string
}

var categoryDefaults = []categoryDefault{
	{[]string{"קולה", "cola", "סודה", "ספרייט", "sprite", "פאנטה", "fanta"}, "1.5 ליטר"},
	{[]string{"פסטה", "ספגטי", "pasta", "spaghetti", "פתיתים"}, "500 גרם"},
	{[]string{"חלב", "milk"}, "1 ליטר"},
	{[]string{"אורז", "rice"}, "1 קילו"},
	{[]string{"שמן זית", "olive oil"}, "750 מל"},
	{[]string{"קפה", "coffee"}, "200 גרם"},
}

// VariantService expands one free-text item into search variants. Expansion
// is pure: no network state, deterministic output, original string first.
type VariantService struct{}

// NewVariantService creates a new variant expander.
func NewVariantService() *VariantService {
	return &VariantService{}
}

// Expand returns 1 to 6 distinct search variants for the item, in a stable
// order with the original first.
func (s *VariantService) Expand(item string) []string {
	original := strings.TrimSpace(item)
	if original == "" {
		return nil
	}

	variants := []string{original}
	seen := map[string]bool{strings.ToLower(original): true}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || len(variants) >= maxVariants {
			return
		}
		if !seen[strings.ToLower(v)] {
			variants = append(variants, v)
			seen[strings.ToLower(v)] = true
		}
	}

	lower := strings.ToLower(original)

	// Known family without a unit suffix: append the standard size.
	if !hasUnitToken(lower) {
		for _, cat := range categoryDefaults {
			if containsAny(lower, cat.keywords) {
				add(original + " " + cat.suffix)
				break
			}
		}
	}

	// Brand alias completions: add the translated/canonical form.
	for _, alias := range brandAliases {
		if strings.Contains(lower, alias.match) && !strings.Contains(lower, strings.ToLower(alias.add)) {
			add(strings.Replace(original, originalCase(original, alias.match), alias.add, 1))
			add(original + " " + alias.add)
		}
	}

	return variants
}

// hasUnitToken reports whether the text already specifies a size or pack.
func hasUnitToken(lower string) bool {
	tokens := []string{
		"ליטר", "מ\"ל", "מל", "גרם", "ג'", "קילו", "ק\"ג", "יח'",
		"liter", "litre", "ml", "gram", "kg", "pack",
	}
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// originalCase finds the substring of original that matches the lowercase
// needle, preserving the user's casing for replacement.
func originalCase(original, needle string) string {
	idx := strings.Index(strings.ToLower(original), needle)
	if idx < 0 {
		return needle
	}
	return original[idx : idx+len(needle)]
}
