package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand_OriginalFirst(t *testing.T) {
	svc := NewVariantService()

	variants := svc.Expand("קוקה קולה")

	assert.NotEmpty(t, variants)
	assert.Equal(t, "קוקה קולה", variants[0])
}

func TestExpand_CategoryDefaultSize(t *testing.T) {
	svc := NewVariantService()

	variants := svc.Expand("קוקה קולה")

	found := false
	for _, v := range variants {
		if strings.Contains(v, "1.5 ליטר") {
			found = true
		}
	}
	assert.True(t, found, "cola without a size should gain the standard bottle size")
}

func TestExpand_NoDefaultWhenSizePresent(t *testing.T) {
	svc := NewVariantService()

	variants := svc.Expand("קוקה קולה 330 מל")

	for _, v := range variants {
		assert.NotContains(t, v, "1.5 ליטר")
	}
}

func TestExpand_BrandAliasBothDirections(t *testing.T) {
	svc := NewVariantService()

	hebrew := svc.Expand("נוטלה")
	latin := svc.Expand("nutella 400g")

	assert.True(t, containsVariant(hebrew, "nutella"), "Hebrew brand should gain the Latin form")
	assert.True(t, containsVariant(latin, "נוטלה"), "Latin brand should gain the Hebrew form")
}

func TestExpand_Deduplicates(t *testing.T) {
	svc := NewVariantService()

	variants := svc.Expand("חלב תנובה 1 ליטר")

	seen := map[string]bool{}
	for _, v := range variants {
		lower := strings.ToLower(v)
		assert.False(t, seen[lower], "variant %q appears twice", v)
		seen[lower] = true
	}
	assert.LessOrEqual(t, len(variants), 6)
}

func TestExpand_EmptyItem(t *testing.T) {
	svc := NewVariantService()

	assert.Nil(t, svc.Expand(""))
	assert.Nil(t, svc.Expand("   "))
}

func containsVariant(variants []string, needle string) bool {
	for _, v := range variants {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
