package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mta452/SheenFigure/internal/fonttest"
)

// identityFont maps codepoint N to glyph N and gives every glyph a
// fixed advance, unless overridden — enough for scenarios that only
// care about GSUB/GPOS effects, not cmap/hmtx fidelity.
func identityFont(gsubData, gposData []byte) *Font {
	font, err := NewFont(nil, gsubData, gposData,
		func(cp rune) uint16 { return uint16(cp) },
		func(_ Layout, _ uint16) int32 { return 10 },
	)
	if err != nil {
		panic(err)
	}
	return font
}

func TestShapeSingleSubstDelta(t *testing.T) {
	lookup := fonttest.Lookup(1, 0, fonttest.SingleSubstFmt1(fonttest.Coverage1(10), 5))
	gsubData := fonttest.GSUBTable(fonttest.LookupList(lookup))
	font := identityFont(gsubData, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGSUB, CoveredRange: Range{Start: 0, End: 1}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{10}, LayoutHorizontal)
	assert.Equal(t, uint16(15), album.GetGlyph(0))
	assert.Equal(t, int32(10), album.GetAdvance(0), "advance fill-in runs after GSUB, on whatever glyph survived")
}

func TestShapeLigatureCollapsesTwoGlyphsIntoOne(t *testing.T) {
	lookup := fonttest.Lookup(4, 0, fonttest.LigatureSubst(fonttest.Coverage1(10), [][]fonttest.Ligature{
		{{LigatureGlyph: 50, Components: []uint16{11}}},
	}))
	gsubData := fonttest.GSUBTable(fonttest.LookupList(lookup))
	font := identityFont(gsubData, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGSUB, CoveredRange: Range{Start: 0, End: 2}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{10, 11}, LayoutHorizontal)
	assert.Equal(t, 2, album.GlyphCount(), "the consumed component stays as a Placeholder slot, never removed")
	assert.Equal(t, uint16(50), album.GetGlyph(0))
	assert.Equal(t, TraitPlaceholder, album.GetTraits(1)&TraitPlaceholder)

	m := album.CharacterToGlyphMap()
	assert.Equal(t, Range{Start: 0, End: 2}, m[0], "text index 0 traces to both the ligature slot and the placeholder it absorbed")
	assert.Equal(t, Range{Start: 0, End: 1}, m[1])
}

func TestShapeMultipleSubstExpandsOneGlyphIntoThree(t *testing.T) {
	lookup := fonttest.Lookup(2, 0, fonttest.MultipleSubst(fonttest.Coverage1(10), []uint16{20, 21, 22}))
	gsubData := fonttest.GSUBTable(fonttest.LookupList(lookup))
	font := identityFont(gsubData, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGSUB, CoveredRange: Range{Start: 0, End: 1}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{10}, LayoutHorizontal)
	assert.Equal(t, 3, album.GlyphCount())
	assert.Equal(t, []uint16{20, 21, 22}, album.GlyphIDs())
}

func TestShapeGPOSSinglePosAddsAdvance(t *testing.T) {
	value := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 300, 0)
	lookup := fonttest.Lookup(1, 0, fonttest.SinglePosFmt1(fonttest.Coverage1(7), fonttest.VFXAdvance, value))
	gposData := fonttest.GPOSTable(fonttest.LookupList(lookup))
	font := identityFont(nil, gposData)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGPOS, CoveredRange: Range{Start: 0, End: 1}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{7}, LayoutHorizontal)
	assert.Equal(t, int32(10+300), album.GetAdvance(0), "GPOS adds to the default advance fillDefaultAdvances already set")
}

func TestShapeFeatureUnitCoveredRangeExcludesGlyphsOutsideRange(t *testing.T) {
	// Coverage includes both glyph 10 and glyph 11, but the feature
	// unit's CoveredRange only spans text index 0 — tagFeatureMasks
	// must confine the substitution to that one glyph even though both
	// are otherwise eligible.
	lookup := fonttest.Lookup(1, 0, fonttest.SingleSubstFmt1(fonttest.Coverage1(10, 11), 1))
	gsubData := fonttest.GSUBTable(fonttest.LookupList(lookup))
	font := identityFont(gsubData, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGSUB, RequiredTraits: TraitNone, CoveredRange: Range{Start: 0, End: 1}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{10, 11}, LayoutHorizontal)
	assert.Equal(t, uint16(11), album.GetGlyph(0), "covered range includes only text index 0")
	assert.Equal(t, uint16(11), album.GetGlyph(1), "text index 1 is outside the feature unit's range, left untouched")
}

func TestShapeRTLPatternMirrorsFinalGlyphOrder(t *testing.T) {
	font := identityFont(nil, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGPOS, CoveredRange: Range{Start: 0, End: 3}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err) // font carries no GPOS table, so this unit never actually applies
	pattern.SetDirection(DirectionRTL)

	album := Shape(font, pattern, []rune{10, 11, 12}, LayoutHorizontal)
	assert.Equal(t, []uint16{12, 11, 10}, album.GlyphIDs(), "an RTL pattern mirrors the album into visual order at wrap-up")
	for i := 0; i < album.GlyphCount(); i++ {
		assert.NotZero(t, album.GetTraits(i)&TraitRightToLeft, "every glyph in an RTL run is marked TraitRightToLeft")
	}
}

func TestShapeLTRPatternLeavesGlyphOrderUntouched(t *testing.T) {
	font := identityFont(nil, nil)

	pattern, err := NewPattern([]FeatureUnit{
		{Table: TableGPOS, CoveredRange: Range{Start: 0, End: 3}, LookupIndexes: []int{0}},
	})
	assert.NoError(t, err)

	album := Shape(font, pattern, []rune{10, 11, 12}, LayoutHorizontal)
	assert.Equal(t, []uint16{10, 11, 12}, album.GlyphIDs(), "DirectionLTR is Pattern's zero value: no reorder runs")
	assert.Equal(t, Traits(0), album.GetTraits(0)&TraitRightToLeft)
}
