package openai

import (
	"fmt"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

const consolidationSystemPrompt = `You are a grocery price analyst for an Israeli supermarket comparison service. You are given a shopping item, a supermarket chain, and a numbered list of observed offers. Pick the single offer that best matches the item at that chain. Return ONLY valid JSON with this schema:
{
  "index": number (the number of the chosen offer, or -1 if none fits),
  "confidence": number (0-99, how confident you are in the match)
}
Rules:
- You may ONLY pick from the numbered list. Never invent an offer or a price.
- Prefer offers from the requested chain, with a price, matching brand and package size.
- If no offer plausibly matches the item, return index -1.`

// buildConsolidationUserPrompt renders the candidate pool as a numbered list.
// Prices are printed exactly as observed so the model cannot round them.
func buildConsolidationUserPrompt(item, chainID string, pool []entities.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s\n", item)
	if chainID != "" {
		fmt.Fprintf(&b, "Chain: %s\n", chainID)
	}
	b.WriteString("Offers:\n")
	for i, c := range pool {
		price := "no price"
		if c.Price != nil {
			price = fmt.Sprintf("%.2f %s", *c.Price, c.Currency)
		}
		fmt.Fprintf(&b, "%d. %s | %s | merchant=%s | domain=%s | source=%s\n",
			i, c.Title, price, c.Merchant, c.Domain, c.Source)
	}
	return b.String()
}

// Choice is the model's answer for one item: an index into the offer list
// it was shown, or -1 when nothing fits.
type Choice struct {
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`
}
