package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func albumWithTraits(traits ...Traits) *Album {
	a := NewAlbum()
	a.SetTextRange(Range{Start: 0, End: len(traits)})
	for i, tr := range traits {
		a.append(uint16(i+1), tr, i)
	}
	return a
}

func TestLocatorMoveNextSkipsIgnored(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitMark, TraitBase, TraitMark)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.SetLookupFlag(LookupFlagIgnoreMarks)

	var seen []int
	for loc.MoveNext() {
		seen = append(seen, loc.Index())
	}
	assert.Equal(t, []int{0, 2}, seen)
}

func TestLocatorMovePreviousMirrorsMoveNext(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitBase, TraitBase)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.JumpTo(3)

	var seen []int
	for loc.MovePrevious() {
		seen = append(seen, loc.Index())
	}
	assert.Equal(t, []int{2, 1, 0}, seen)
}

func TestLocatorSkip(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitBase, TraitBase)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())

	assert.True(t, loc.Skip(2))
	assert.Equal(t, 1, loc.Index())

	assert.False(t, loc.Skip(5), "skipping past the end must fail")
}

func TestLocatorGetAfterGetBeforeDoNotMutateCursor(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitMark, TraitBase)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.SetLookupFlag(LookupFlagIgnoreMarks)
	loc.MoveNext()
	assert.Equal(t, 0, loc.Index())

	after := loc.GetAfter(0)
	assert.Equal(t, 2, after, "ignored mark at index 1 is skipped")
	assert.Equal(t, 0, loc.Index(), "peeking forward must not move the cursor")

	before := loc.GetBefore(2)
	assert.Equal(t, 0, before)
}

func TestLocatorGetPrecedingBaseIndexSkipsMarksAndSequences(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitSequence, TraitMark)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.JumpTo(2)
	loc.MoveNext() // lands on index 2 (the mark)

	base := loc.GetPrecedingBaseIndex()
	assert.Equal(t, 0, base)
}

func TestLocatorGetPrecedingLigatureIndexReportsComponent(t *testing.T) {
	// ligature at 0, two placeholder components at 1 and 2, mark at 3
	a := albumWithTraits(TraitLigature, TraitPlaceholder, TraitPlaceholder, TraitMark)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.JumpTo(3)
	loc.MoveNext()

	var component int
	ligIndex := loc.GetPrecedingLigatureIndex(&component)
	assert.Equal(t, 0, ligIndex)
	assert.Equal(t, 2, component)
}

func TestLocatorGetPrecedingMarkIndexRejectsPlaceholder(t *testing.T) {
	a := albumWithTraits(TraitMark, TraitPlaceholder, TraitMark)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.JumpTo(2)
	loc.MoveNext()

	markIndex := loc.GetPrecedingMarkIndex()
	assert.Equal(t, invalidIndex, markIndex, "the nearest preceding glyph is a placeholder, so no mark qualifies")
}

func TestLocatorReserveGlyphsExtendsLimit(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitBase)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())
	loc.JumpTo(1)

	loc.ReserveGlyphs(2)
	assert.Equal(t, 4, a.GlyphCount())
	assert.Equal(t, 4, loc.limitIndex)
}

func TestLocatorAssertFreshPanicsOnStaleVersion(t *testing.T) {
	a := albumWithTraits(TraitBase, TraitBase)
	loc := NewLocator(a, nil)
	loc.Reset(0, a.GlyphCount())

	a.ReserveGlyphs(0, 1) // mutates the album through a different path

	assert.Panics(t, func() { loc.MoveNext() })
}
