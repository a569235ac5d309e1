package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mta452/SheenFigure/internal/fonttest"
)

func TestAssessInputGlyphsIncludeFirst(t *testing.T) {
	a := newTestAlbum(10, 20, 30)
	p := newTestProcessor(a)
	p.locator.MoveNext() // index 0

	end, ok := assessInputGlyphs(p, []uint16{10, 20}, true, assessByEquality)
	assert.True(t, ok)
	assert.Equal(t, 1, end)
}

func TestAssessBacktrackAndLookahead(t *testing.T) {
	a := newTestAlbum(1, 2, 3, 4, 5)
	p := newTestProcessor(a)
	p.locator.JumpTo(2)
	p.locator.MoveNext() // index 2, glyph 3

	assert.True(t, assessBacktrackGlyphs(p, []uint16{2, 1}, assessByEquality))
	assert.True(t, assessLookaheadGlyphs(p, []uint16{4, 5}, 2, assessByEquality))
	assert.False(t, assessBacktrackGlyphs(p, []uint16{99}, assessByEquality))
}

// TestChainContextFormat3RecursesIntoNestedLookup builds a two-lookup
// GSUB table: lookup 0 is a chained-context rule matching glyph 10
// followed by glyph 20, invoking lookup 1 at the matched (first)
// position; lookup 1 is a single substitution that turns 10 into 99.
func TestChainContextFormat3RecursesIntoNestedLookup(t *testing.T) {
	innerLookup := fonttest.Lookup(1, 0, fonttest.SingleSubstFmt1(fonttest.Coverage1(10), 89))

	chainSub := fonttest.ChainContextFmt3(
		nil,
		[][]byte{fonttest.Coverage1(10), fonttest.Coverage1(20)},
		nil,
		[]fonttest.LookupRecord{{SequenceIndex: 0, LookupListIndex: 1}},
	)
	outerLookup := fonttest.Lookup(6, 0, chainSub)

	lookupList := fonttest.LookupList(outerLookup, innerLookup)
	gsubData := fonttest.GSUBTable(lookupList)

	gsub, err := parseGSUB(gsubData)
	assert.NoError(t, err)

	a := newTestAlbum(10, 20)
	font := &Font{gsub: gsub}
	p := &Processor{font: font, album: a}
	p.locator = NewLocator(a, nil)
	p.locator.Reset(0, a.GlyphCount())

	applied := applyGSUBLookup(p, 0)
	assert.True(t, applied)
	assert.Equal(t, uint16(99), a.GetGlyph(0), "10 + delta 89 == 99")
	assert.Equal(t, uint16(20), a.GetGlyph(1), "the second input glyph is only matched, never substituted")
}

// TestChainContextFormat3NestedLookupChain exercises three levels of
// nesting: the outer chain-context rule invokes a lookup that is
// itself another chain-context rule invoking a final single
// substitution, confirming the locator's saved/restored state survives
// more than one level of recursion.
func TestChainContextFormat3NestedLookupChain(t *testing.T) {
	finalLookup := fonttest.Lookup(1, 0, fonttest.SingleSubstFmt1(fonttest.Coverage1(10), 1))

	middleChainSub := fonttest.ChainContextFmt3(
		nil, [][]byte{fonttest.Coverage1(10)}, nil,
		[]fonttest.LookupRecord{{SequenceIndex: 0, LookupListIndex: 2}},
	)
	middleLookup := fonttest.Lookup(6, 0, middleChainSub)

	outerChainSub := fonttest.ChainContextFmt3(
		nil,
		[][]byte{fonttest.Coverage1(10), fonttest.Coverage1(20)},
		nil,
		[]fonttest.LookupRecord{{SequenceIndex: 0, LookupListIndex: 1}},
	)
	outerLookup := fonttest.Lookup(6, 0, outerChainSub)

	lookupList := fonttest.LookupList(outerLookup, middleLookup, finalLookup)
	gsubData := fonttest.GSUBTable(lookupList)

	gsub, err := parseGSUB(gsubData)
	assert.NoError(t, err)

	a := newTestAlbum(10, 20)
	font := &Font{gsub: gsub}
	p := &Processor{font: font, album: a}
	p.locator = NewLocator(a, nil)
	p.locator.Reset(0, a.GlyphCount())

	applied := applyGSUBLookup(p, 0)
	assert.True(t, applied)
	assert.Equal(t, uint16(11), a.GetGlyph(0))
}
