package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mta452/SheenFigure/internal/fonttest"
)

func TestApplySinglePosFormat1UniformValue(t *testing.T) {
	value := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 250, 0)
	data := fonttest.SinglePosFmt1(fonttest.Coverage1(10), fonttest.VFXAdvance, value)

	a := newTestAlbum(10)
	p := newTestProcessor(a)

	ok := applySinglePos(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, int32(250), a.GetAdvance(0))
}

func TestApplySinglePosNotCovered(t *testing.T) {
	value := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 250, 0)
	data := fonttest.SinglePosFmt1(fonttest.Coverage1(10), fonttest.VFXAdvance, value)

	a := newTestAlbum(99)
	p := newTestProcessor(a)

	ok := applySinglePos(p, newView(data), 0)
	assert.False(t, ok)
	assert.Equal(t, int32(0), a.GetAdvance(0))
}

func TestApplyPairPosFormat1AdjustsBothGlyphsAndAdvancesLocator(t *testing.T) {
	v1 := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 50, 0)
	v2 := fonttest.ValueRecord(fonttest.VFXPlacement, -20, 0, 0, 0)
	data := fonttest.PairPosFmt1(fonttest.Coverage1(10), fonttest.VFXAdvance, fonttest.VFXPlacement,
		[][]fonttest.PairSet{{{SecondGlyph: 20, Value1: v1, Value2: v2}}})

	a := newTestAlbum(10, 20)
	p := newTestProcessor(a)
	p.locator.MoveNext() // index 0

	ok := applyPairPos(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, int32(50), a.GetAdvance(0))
	assert.Equal(t, int32(-20), a.GetPosition(1).X)
	assert.Equal(t, 1, p.locator.stateIndex, "a matched pair jumps the locator's cursor to the second glyph")
}

func TestApplyPairPosFormat2ClassMatrix(t *testing.T) {
	classDef1 := fonttest.ClassDef1(10, 1)
	classDef2 := fonttest.ClassDef1(20, 1)
	zero := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 0, 0) // same byte width as v1, value 0
	v1 := fonttest.ValueRecord(fonttest.VFXAdvance, 0, 0, 75, 0)
	noValue2 := fonttest.ValueRecord(0, 0, 0, 0, 0) // valueFormat2 is 0, so every cell's value2 is empty
	cells := [][2][]byte{
		{zero, noValue2}, // class0 x class0
		{zero, noValue2}, // class0 x class1
		{zero, noValue2}, // class1 x class0
		{v1, noValue2},   // class1 x class1
	}
	data := fonttest.PairPosFmt2(fonttest.Coverage1(10), classDef1, classDef2,
		fonttest.VFXAdvance, 0, 2, 2, cells)

	a := newTestAlbum(10, 20)
	p := newTestProcessor(a)
	p.locator.MoveNext()

	ok := applyPairPos(p, newView(data), 0)
	assert.True(t, ok)
	assert.Equal(t, int32(75), a.GetAdvance(0))
}

func TestApplyCursivePosLinksToPreviousExit(t *testing.T) {
	cov := fonttest.Coverage1(10, 11)
	exit0 := fonttest.Anchor(100, 30)
	entry1 := fonttest.Anchor(0, 10)

	buf := make([]byte, 6+2*4)
	fonttest.PutU16(buf, 0, 1)
	fonttest.PutU16(buf, 4, 2)
	var off uint16
	var full []byte
	full = append(full, buf...)
	full, off = appendForTest(full, nil) // glyph 0 (glyph 10) has no entry anchor
	fonttest.PutU16(full, 6, off)
	full, off = appendForTest(full, exit0) // glyph 0 exit anchor
	fonttest.PutU16(full, 8, off)
	full, off = appendForTest(full, entry1) // glyph 1 (glyph 11) entry anchor
	fonttest.PutU16(full, 10, off)
	full, off = appendForTest(full, nil) // glyph 1 has no exit anchor
	fonttest.PutU16(full, 12, off)
	full, off = appendForTest(full, cov)
	fonttest.PutU16(full, 2, off)

	a := newTestAlbum(10, 11)
	p := newTestProcessor(a)

	ok := applyCursivePos(p, newView(full), 1)
	assert.True(t, ok)
	assert.Equal(t, int32(20), a.GetPosition(1).Y, "exit.y (30) - entry.y (10) == 20")
	assert.Equal(t, TraitCursive, a.GetTraits(1)&TraitCursive)
}

func TestApplyMarkBasePosAttachesMarkToBase(t *testing.T) {
	markCov := fonttest.Coverage1(30)
	baseCov := fonttest.Coverage1(10)
	marks := []fonttest.MarkRecord{{Class: 0, Anchor: fonttest.Anchor(5, 5)}}
	baseAnchors := [][]([]byte){{fonttest.Anchor(50, 80)}}
	data := fonttest.MarkBasePos(markCov, baseCov, marks, 1, baseAnchors)

	a := newTestAlbum(10, 30)
	a.ReplaceBasicTraits(0, TraitBase)
	a.ReplaceBasicTraits(1, TraitMark)
	p := newTestProcessor(a)
	p.locator.JumpTo(1)
	p.locator.MoveNext() // positions Index() at the mark, as GetPrecedingBaseIndex requires

	ok := applyMarkBasePos(p, newView(data), 1)
	assert.True(t, ok)
	pos := a.GetPosition(1)
	assert.Equal(t, int32(45), pos.X) // 50 - 5
	assert.Equal(t, int32(75), pos.Y) // 80 - 5
	assert.Equal(t, TraitAttached, a.GetTraits(1)&TraitAttached)
}

func TestApplyMarkBasePosNoBaseFails(t *testing.T) {
	markCov := fonttest.Coverage1(30)
	baseCov := fonttest.Coverage1(10)
	marks := []fonttest.MarkRecord{{Class: 0, Anchor: fonttest.Anchor(5, 5)}}
	baseAnchors := [][]([]byte){{fonttest.Anchor(50, 80)}}
	data := fonttest.MarkBasePos(markCov, baseCov, marks, 1, baseAnchors)

	a := newTestAlbum(30) // no preceding base glyph at all
	a.ReplaceBasicTraits(0, TraitMark)
	p := newTestProcessor(a)
	p.locator.MoveNext()

	ok := applyMarkBasePos(p, newView(data), 0)
	assert.False(t, ok)
}

// appendForTest appends data (nil meaning "no table, offset 0") to buf
// and returns the new buffer plus the offset written, mirroring
// fonttest's internal appendTable helper for ad hoc anchor tables this
// test builds by hand (cursive attachment has no dedicated fonttest
// builder).
func appendForTest(buf []byte, data []byte) ([]byte, uint16) {
	if data == nil {
		return buf, 0
	}
	offset := uint16(len(buf))
	return append(buf, data...), offset
}
