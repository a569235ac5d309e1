package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mta452/SheenFigure/internal/fonttest"
)

func newTestProcessor(a *Album) *Processor {
	font := &Font{}
	p := &Processor{font: font, album: a}
	p.locator = NewLocator(a, nil)
	p.locator.Reset(0, a.GlyphCount())
	return p
}

func TestApplySingleSubstFormat1Delta(t *testing.T) {
	data := fonttest.SingleSubstFmt1(fonttest.Coverage1(10), 5)
	a := newTestAlbum(10)
	p := newTestProcessor(a)

	ok := applySingleSubst(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(15), a.GetGlyph(0))
}

func TestApplySingleSubstFormat2Explicit(t *testing.T) {
	data := fonttest.SingleSubstFmt2(fonttest.Coverage1(10, 20), 100, 200)
	a := newTestAlbum(20)
	p := newTestProcessor(a)

	ok := applySingleSubst(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(200), a.GetGlyph(0))
}

func TestApplySingleSubstNotCovered(t *testing.T) {
	data := fonttest.SingleSubstFmt1(fonttest.Coverage1(10), 5)
	a := newTestAlbum(99)
	p := newTestProcessor(a)

	ok := applySingleSubst(p, newView(data), 0)
	assert.False(t, ok)
	assert.Equal(t, uint16(99), a.GetGlyph(0), "an uncovered glyph must be left untouched")
}

func TestApplyMultipleSubstExpandsSequence(t *testing.T) {
	data := fonttest.MultipleSubst(fonttest.Coverage1(10), []uint16{30, 31, 32})
	a := newTestAlbum(10, 999)
	p := newTestProcessor(a)
	p.locator.MoveNext() // positions stateIndex past index 0, as applyGSUBLookup would

	ok := applyMultipleSubst(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, 4, a.GlyphCount())
	assert.Equal(t, []uint16{30, 31, 32, 999}, a.GlyphIDs())
	assert.Equal(t, TraitSequence, a.GetTraits(1)&TraitSequence)
	assert.Equal(t, p.locator.limitIndex, 4, "ReserveGlyphs must extend the locator's range by the inserted count")
}

func TestApplyLigatureSubstMergesComponents(t *testing.T) {
	// f + i -> fi ligature, glyph ids 10, 11 -> 50
	data := fonttest.LigatureSubst(fonttest.Coverage1(10), [][]fonttest.Ligature{
		{{LigatureGlyph: 50, Components: []uint16{11}}},
	})
	a := newTestAlbum(10, 11)
	p := newTestProcessor(a)

	ok := applyLigatureSubst(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(50), a.GetGlyph(0))
	assert.Equal(t, TraitComposite, a.GetTraits(0)&TraitComposite)
	assert.Equal(t, TraitPlaceholder, a.GetTraits(1)&TraitPlaceholder)
	assert.Equal(t, []int{0, 1}, a.GetCompositeAssociations(0))
}

func TestApplyLigatureSubstFailsOnPartialMatch(t *testing.T) {
	data := fonttest.LigatureSubst(fonttest.Coverage1(10), [][]fonttest.Ligature{
		{{LigatureGlyph: 50, Components: []uint16{11, 12}}},
	})
	a := newTestAlbum(10, 11) // missing the second component (12)
	p := newTestProcessor(a)

	ok := applyLigatureSubst(p, newView(data), 0)
	assert.False(t, ok)
	assert.Equal(t, uint16(10), a.GetGlyph(0), "a failed ligature match must not mutate the album")
}

func TestApplyGSUBSubtableAlternateIsNoOp(t *testing.T) {
	a := newTestAlbum(1)
	p := newTestProcessor(a)
	ok := applyGSUBSubtable(p, 3, view{}, 0)
	assert.False(t, ok)
}
