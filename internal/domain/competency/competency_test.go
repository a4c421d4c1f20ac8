package competency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxonomy(t *testing.T) {
	tax := Default()
	require.Len(t, tax.Categories, 3)
	assert.Len(t, tax.Names(), 72)

	d, ok := tax.Definition("Professional scepticism")
	require.True(t, ok)
	assert.Equal(t, "Maintaining questioning mindset in professional work", d)

	d, ok = tax.Definition("  tax planning ")
	require.True(t, ok)
	assert.Equal(t, "Optimizing tax strategies within regulatory bounds", d)

	_, ok = tax.Definition("Underwater basket weaving")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	got := Default().Filter([]string{"analytical thinking", "Made up", "Analytical thinking", "Leadership skills"})
	assert.Equal(t, []string{"Analytical thinking", "Leadership skills"}, got)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  - name: A
    groups:
      - name: G
        competencies:
          - name: X
            definition: one
          - name: X
            definition: two
`))
	assert.Error(t, err)
}
