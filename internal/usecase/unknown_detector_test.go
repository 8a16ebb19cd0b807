package usecase

import (
	"testing"

	"github.com/JAChelton/ai-inventory-tracker/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogNames(t *testing.T) []string {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c.Names()
}

func TestUnknownItemDetector_Detect(t *testing.T) {
	d := NewUnknownItemDetector()
	known := catalogNames(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"descriptor and category noun", "antique piano and 2 dining chairs", []string{"antique piano"}},
		{"catalog phrase dropped", "a dining table", nil},
		{"pool table is not a catalog table", "pool table", []string{"pool table"}},
		{"matcher order then text order", "stereo system and a new desk", []string{"new desk", "stereo system"}},
		{"three word form preferred", "old upright piano", []string{"old upright piano", "old upright"}},
		{"exact duplicates dropped", "fish tank, fish tank", []string{"fish tank"}},
		{"punctuation breaks a phrase", "piano, guitar", nil},
		{"short word before unit suffix", "tv stand", nil},
		{"original casing kept", "Vintage Guitar", []string{"Vintage Guitar"}},
		{"nothing to find", "some boxes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text, known)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownItemDetector_WorkingSetNames(t *testing.T) {
	d := NewUnknownItemDetector()

	got := d.Detect("antique piano", []string{"Antique Piano"})
	assert.Empty(t, got)

	got = d.Detect("antique piano", []string{"Piano"})
	assert.Empty(t, got, "known name inside the candidate")

	got = d.Detect("garden shed", []string{"A Big Garden Shed"})
	assert.Empty(t, got, "candidate inside a known name")
}

func TestUnknownItemDetector_CustomMatchers(t *testing.T) {
	boxes := PhraseMatcher{
		Name: "boxes",
		Match: func(toks []token, text string, i int) (int, bool) {
			return i, toks[i].text == "boxes"
		},
	}
	d := NewUnknownItemDetector(boxes)

	assert.Equal(t, []string{"boxes"}, d.Detect("ten boxes and an exercise bike", nil))
}

func TestIsKnownPhrase(t *testing.T) {
	known := []string{"Dining Chair", "", "TV Stand"}

	assert.True(t, IsKnownPhrase("dining chair", known))
	assert.True(t, IsKnownPhrase("chair", known))
	assert.True(t, IsKnownPhrase("old tv stand", known))
	assert.False(t, IsKnownPhrase("treadmill", known))
	assert.False(t, IsKnownPhrase("   ", known))
}

func TestScanTokens(t *testing.T) {
	toks := scanTokens("an old_chair, 2x")
	require.Len(t, toks, 3)
	assert.Equal(t, "an", toks[0].text)
	assert.Equal(t, "old_chair", toks[1].text)
	assert.Equal(t, 3, toks[1].start)
	assert.Equal(t, 12, toks[1].end)
	assert.Equal(t, "2x", toks[2].text)
}
