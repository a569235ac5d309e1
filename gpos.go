package shape

// GPOS wraps a parsed OpenType GPOS table: the same lookup-list shape
// GSUB uses, with nine positioning lookup types instead of GSUB's
// eight substitution ones.
type GPOS struct {
	v       view
	lookups []rawLookup
}

func parseGPOS(data []byte) (*GPOS, error) {
	v := newView(data)
	if v.len() < 10 {
		return nil, ErrInvalidFont
	}
	lookupListOffset, ok := v.u16(8)
	if !ok {
		return nil, ErrInvalidFont
	}
	return &GPOS{v: v, lookups: parseLookupList(v, int(lookupListOffset))}, nil
}

// NumLookups reports how many lookups this GPOS table carries.
func (g *GPOS) NumLookups() int {
	if g == nil {
		return 0
	}
	return len(g.lookups)
}

func (g *GPOS) lookup(index int) (rawLookup, bool) {
	if g == nil || index < 0 || index >= len(g.lookups) {
		return rawLookup{}, false
	}
	return g.lookups[index], true
}

// applyGPOSLookup is GPOS's counterpart to applyGSUBLookup: drives
// Locator filtering across the whole configured range, applying the
// lookup's subtables at every accepted slot. GPOS has no right-to-left
// lookup type analogous to GSUB 8, so it always walks forward.
func applyGPOSLookup(p *Processor, lookupIndex int) bool {
	rl, ok := p.font.gpos.lookup(lookupIndex)
	if !ok {
		return false
	}

	loc := p.locator
	loc.SetLookupFlag(rl.flag)
	if rl.flag&LookupFlagUseMarkFilteringSet != 0 {
		loc.SetMarkFilteringSet(p.font.gdef, rl.markFilteringSet)
	}

	applied := false
	for loc.MoveNext() {
		if applyGPOSSubtables(p, rl, loc.Index()) {
			applied = true
		}
	}
	return applied
}

// applyGPOSLookupAt is the single-position counterpart used when a
// context or chained-context rule recurses into a nested GPOS lookup
// (context.go), mirroring applyGSUBLookupAt.
func applyGPOSLookupAt(p *Processor, lookupIndex int) bool {
	rl, ok := p.font.gpos.lookup(lookupIndex)
	if !ok {
		return false
	}

	loc := p.locator
	loc.SetLookupFlag(rl.flag)
	if rl.flag&LookupFlagUseMarkFilteringSet != 0 {
		loc.SetMarkFilteringSet(p.font.gdef, rl.markFilteringSet)
	}

	index := loc.Index()
	if index == invalidIndex {
		return false
	}
	return applyGPOSSubtables(p, rl, index)
}

func applyGPOSSubtables(p *Processor, rl rawLookup, index int) bool {
	for _, sub := range rl.subtables {
		if applyGPOSSubtable(p, rl.lookupType, sub, index) {
			return true
		}
	}
	return false
}

func applyGPOSSubtable(p *Processor, lookupType uint16, sub view, index int) bool {
	switch lookupType {
	case 1:
		return applySinglePos(p, sub, index)
	case 2:
		return applyPairPos(p, sub, index)
	case 3:
		return applyCursivePos(p, sub, index)
	case 4:
		return applyMarkBasePos(p, sub, index)
	case 5:
		return applyMarkLigPos(p, sub, index)
	case 6:
		return applyMarkMarkPos(p, sub, index)
	case 7:
		return applyContextSubtable(p, sub, index, applyGPOSLookupAt)
	case 8:
		return applyChainContextSubtable(p, sub, index, applyGPOSLookupAt)
	case 9:
		return applyExtensionSubtable(p, sub, index, applyGPOSSubtable)
	default:
		p.font.logDebug("unsupported GPOS lookup type", "type", lookupType)
		return false
	}
}

// --- ValueRecord ---

// ValueRecord is an OpenType ValueRecord's four adjustment fields.
// Device tables are parsed past (this core targets static, non-variable
// fonts — spec.md §1 names variation handling a collaborator concern)
// but their offsets are still consumed so the cursor lands correctly on
// whatever data follows.
type ValueRecord struct {
	XPlacement, YPlacement int16
	XAdvance, YAdvance     int16
}

const (
	valueFormatXPlacement = 0x0001
	valueFormatYPlacement = 0x0002
	valueFormatXAdvance   = 0x0004
	valueFormatYAdvance   = 0x0008
	valueFormatXPlaDevice = 0x0010
	valueFormatYPlaDevice = 0x0020
	valueFormatXAdvDevice = 0x0040
	valueFormatYAdvDevice = 0x0080
)

// valueRecordSize reports how many bytes a ValueRecord with the given
// format occupies.
func valueRecordSize(format uint16) int {
	n := 0
	for f := format; f != 0; f >>= 1 {
		if f&1 != 0 {
			n++
		}
	}
	return n * 2
}

// parseValueRecord reads a ValueRecord at offset within v, returning
// the record, the number of bytes consumed, and whether every declared
// field could be read.
func parseValueRecord(v view, offset int, format uint16) (ValueRecord, int, bool) {
	var vr ValueRecord
	off := offset

	read := func(bit uint16) (int16, bool) {
		if format&bit == 0 {
			return 0, true
		}
		val, ok := v.i16(off)
		off += 2
		return val, ok
	}

	var ok bool
	if vr.XPlacement, ok = read(valueFormatXPlacement); !ok {
		return ValueRecord{}, 0, false
	}
	if vr.YPlacement, ok = read(valueFormatYPlacement); !ok {
		return ValueRecord{}, 0, false
	}
	if vr.XAdvance, ok = read(valueFormatXAdvance); !ok {
		return ValueRecord{}, 0, false
	}
	if vr.YAdvance, ok = read(valueFormatYAdvance); !ok {
		return ValueRecord{}, 0, false
	}

	for _, bit := range [4]uint16{valueFormatXPlaDevice, valueFormatYPlaDevice, valueFormatXAdvDevice, valueFormatYAdvDevice} {
		if format&bit != 0 {
			off += 2
		}
	}

	return vr, off - offset, true
}

// applyValueRecord folds vr into index's position and advance. XAdvance
// feeds the advance accumulator in horizontal layout, YAdvance in
// vertical — Album carries one advance axis per glyph, chosen by the
// layout direction the whole run was shaped in.
func applyValueRecord(p *Processor, index int, vr ValueRecord) {
	p.album.AddPosition(index, int32(vr.XPlacement), int32(vr.YPlacement))
	if p.layout == LayoutVertical {
		p.album.AddAdvance(index, int32(vr.YAdvance))
	} else {
		p.album.AddAdvance(index, int32(vr.XAdvance))
	}
}

// --- Lookup type 1: Single adjustment ---

func applySinglePos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok {
		return false
	}
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	valueFormat, ok := sub.u16(4)
	if !ok {
		return false
	}

	glyph := p.album.GetGlyph(index)
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound {
		return false
	}

	switch format {
	case 1:
		vr, _, ok := parseValueRecord(sub, 6, valueFormat)
		if !ok {
			return false
		}
		applyValueRecord(p, index, vr)
		return true

	case 2:
		size := valueRecordSize(valueFormat)
		vr, _, ok := parseValueRecord(sub, 8+covIndex*size, valueFormat)
		if !ok {
			return false
		}
		applyValueRecord(p, index, vr)
		return true

	default:
		return false
	}
}

// --- Lookup type 2: Pair adjustment ---

func applyPairPos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok {
		return false
	}

	next := p.locator.GetAfter(index)
	if next == invalidIndex {
		return false
	}

	glyph := p.album.GetGlyph(index)
	nextGlyph := p.album.GetGlyph(next)

	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound {
		return false
	}

	valueFormat1, ok := sub.u16(4)
	if !ok {
		return false
	}
	valueFormat2, ok := sub.u16(6)
	if !ok {
		return false
	}
	size1 := valueRecordSize(valueFormat1)
	size2 := valueRecordSize(valueFormat2)

	switch format {
	case 1:
		pairSetCount, ok := sub.u16(8)
		if !ok || covIndex >= int(pairSetCount) {
			return false
		}
		pairSetOffset, ok := sub.u16(10 + covIndex*2)
		if !ok {
			return false
		}
		pairSet := sub.sub(int(pairSetOffset))
		pairCount, ok := pairSet.u16(0)
		if !ok {
			return false
		}
		off := 2
		recordSize := 2 + size1 + size2
		for i := 0; i < int(pairCount); i++ {
			secondGlyph, ok := pairSet.u16(off)
			if !ok {
				return false
			}
			if secondGlyph == nextGlyph {
				vr1, n1, ok := parseValueRecord(pairSet, off+2, valueFormat1)
				if !ok {
					return false
				}
				vr2, _, ok := parseValueRecord(pairSet, off+2+n1, valueFormat2)
				if !ok {
					return false
				}
				applyValueRecord(p, index, vr1)
				applyValueRecord(p, next, vr2)
				p.locator.JumpTo(next)
				return true
			}
			off += recordSize
		}
		return false

	case 2:
		classDef1Offset, ok := sub.u16(8)
		if !ok {
			return false
		}
		classDef2Offset, ok := sub.u16(10)
		if !ok {
			return false
		}
		class1Count, ok := sub.u16(12)
		if !ok {
			return false
		}
		class2Count, ok := sub.u16(14)
		if !ok {
			return false
		}

		cd1 := parseClassDefAt(sub, int(classDef1Offset))
		cd2 := parseClassDefAt(sub, int(classDef2Offset))
		class1 := cd1.class(glyph)
		class2 := cd2.class(nextGlyph)
		if class1 < 0 || class1 >= int(class1Count) || class2 < 0 || class2 >= int(class2Count) {
			return false
		}

		recordSize := size1 + size2
		base := 16 + (class1*int(class2Count)+class2)*recordSize
		vr1, n1, ok := parseValueRecord(sub, base, valueFormat1)
		if !ok {
			return false
		}
		vr2, _, ok := parseValueRecord(sub, base+n1, valueFormat2)
		if !ok {
			return false
		}
		applyValueRecord(p, index, vr1)
		applyValueRecord(p, next, vr2)
		p.locator.JumpTo(next)
		return true

	default:
		return false
	}
}

// --- Anchor ---

// anchor is an OpenType Anchor table's (x, y) in font design units.
// Format 2 (contour point) and format 3 (device tables) carry extra
// data this core never consults — outline/hinting data is a
// rasterizer's concern, not the shaping core's (spec.md §1).
type anchor struct {
	x, y int32
	ok   bool
}

func parseAnchorAt(base view, offset int) anchor {
	v := base.sub(offset)
	_, ok := v.u16(0)
	if !ok {
		return anchor{}
	}
	x, ok1 := v.i16(2)
	y, ok2 := v.i16(4)
	if !ok1 || !ok2 {
		return anchor{}
	}
	return anchor{x: int32(x), y: int32(y), ok: true}
}

// --- Lookup type 3: Cursive attachment ---

func applyCursivePos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	count, ok := sub.u16(4)
	if !ok {
		return false
	}

	glyph := p.album.GetGlyph(index)
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound || covIndex >= int(count) {
		return false
	}

	entryOffset, ok := sub.u16(6 + covIndex*4)
	if !ok {
		return false
	}
	if entryOffset == 0 {
		return false
	}
	entry := parseAnchorAt(sub, int(entryOffset))
	if !entry.ok {
		return false
	}

	// The connection is made to the previous glyph's exit anchor: find
	// it, align this glyph's entry to it, and record the back-link so
	// later position propagation (resolveAttachments) folds the whole
	// chain together.
	prevIndex := p.locator.GetBefore(index)
	if prevIndex == invalidIndex {
		return false
	}
	prevGlyph := p.album.GetGlyph(prevIndex)
	prevCovIndex := cov.index(prevGlyph)
	if prevCovIndex == notFound || prevCovIndex >= int(count) {
		return false
	}
	exitOffset, ok := sub.u16(6 + prevCovIndex*4 + 2)
	if !ok || exitOffset == 0 {
		return false
	}
	exit := parseAnchorAt(sub, int(exitOffset))
	if !exit.ok {
		return false
	}

	pos := p.album.GetPosition(index)
	pos.Y = exit.y - entry.y
	p.album.SetPosition(index, pos)
	p.album.SetCursiveOffset(index, int32(prevIndex-index))
	p.album.InsertTraits(index, TraitCursive)
	return true
}

// --- Lookup type 4: Mark-to-Base attachment ---

func applyMarkBasePos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}
	markCoverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	baseCoverageOffset, ok := sub.u16(4)
	if !ok {
		return false
	}
	classCount, ok := sub.u16(6)
	if !ok {
		return false
	}
	markArrayOffset, ok := sub.u16(8)
	if !ok {
		return false
	}
	baseArrayOffset, ok := sub.u16(10)
	if !ok {
		return false
	}

	markGlyph := p.album.GetGlyph(index)
	markCov := parseCoverageAt(sub, int(markCoverageOffset))
	markIndex := markCov.index(markGlyph)
	if markIndex == notFound {
		return false
	}

	baseIndex := p.locator.GetPrecedingBaseIndex()
	if baseIndex == invalidIndex {
		return false
	}
	baseCov := parseCoverageAt(sub, int(baseCoverageOffset))
	baseCovIndex := baseCov.index(p.album.GetGlyph(baseIndex))
	if baseCovIndex == notFound {
		return false
	}

	markClass, markAnchor, ok := markArrayEntry(sub, int(markArrayOffset), markIndex)
	if !ok {
		return false
	}
	baseAnchor, ok := baseArrayEntry(sub, int(baseArrayOffset), baseCovIndex, markClass, int(classCount))
	if !ok {
		return false
	}

	attachMarkToBase(p, index, baseIndex, markAnchor, baseAnchor)
	return true
}

// markArrayEntry reads a MarkArray's class and anchor for coverage
// index markIndex.
func markArrayEntry(base view, offset int, markIndex int) (int, anchor, bool) {
	v := base.sub(offset)
	count, ok := v.u16(0)
	if !ok || markIndex >= int(count) {
		return 0, anchor{}, false
	}
	recOff := 2 + markIndex*4
	class, ok := v.u16(recOff)
	if !ok {
		return 0, anchor{}, false
	}
	anchorOffset, ok := v.u16(recOff + 2)
	if !ok {
		return 0, anchor{}, false
	}
	a := parseAnchorAt(v, int(anchorOffset))
	if !a.ok {
		return 0, anchor{}, false
	}
	return int(class), a, true
}

// baseArrayEntry reads a BaseArray row (baseIndex) / column (markClass)
// anchor, out of classCount columns per row.
func baseArrayEntry(base view, offset int, baseIndex, markClass, classCount int) (anchor, bool) {
	v := base.sub(offset)
	rows, ok := v.u16(0)
	if !ok || baseIndex >= int(rows) || markClass >= classCount {
		return anchor{}, false
	}
	cellOffset := 2 + (baseIndex*classCount+markClass)*2
	anchorOffset, ok := v.u16(cellOffset)
	if !ok || anchorOffset == 0 {
		return anchor{}, false
	}
	a := parseAnchorAt(v, int(anchorOffset))
	if !a.ok {
		return anchor{}, false
	}
	return a, true
}

// attachMarkToBase aligns markAnchor on the mark glyph to baseAnchor on
// the base glyph, and records the back-link resolveAttachments needs
// to propagate the base's own (possibly still-unresolved) position
// into the mark's.
func attachMarkToBase(p *Processor, markIndex, baseIndex int, markAnchor, baseAnchor anchor) {
	pos := p.album.GetPosition(markIndex)
	pos.X = baseAnchor.x - markAnchor.x
	pos.Y = baseAnchor.y - markAnchor.y
	p.album.SetPosition(markIndex, pos)
	p.album.SetAttachmentOffset(markIndex, int32(baseIndex-markIndex))
	p.album.InsertTraits(markIndex, TraitAttached)
}

// --- Lookup type 5: Mark-to-Ligature attachment ---

func applyMarkLigPos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}
	markCoverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	ligCoverageOffset, ok := sub.u16(4)
	if !ok {
		return false
	}
	classCount, ok := sub.u16(6)
	if !ok {
		return false
	}
	markArrayOffset, ok := sub.u16(8)
	if !ok {
		return false
	}
	ligArrayOffset, ok := sub.u16(10)
	if !ok {
		return false
	}

	markGlyph := p.album.GetGlyph(index)
	markCov := parseCoverageAt(sub, int(markCoverageOffset))
	markIndex := markCov.index(markGlyph)
	if markIndex == notFound {
		return false
	}

	var component int
	ligIndex := p.locator.GetPrecedingLigatureIndex(&component)
	if ligIndex == invalidIndex {
		return false
	}
	ligCov := parseCoverageAt(sub, int(ligCoverageOffset))
	ligCovIndex := ligCov.index(p.album.GetGlyph(ligIndex))
	if ligCovIndex == notFound {
		return false
	}

	markClass, markAnchor, ok := markArrayEntry(sub, int(markArrayOffset), markIndex)
	if !ok {
		return false
	}
	ligAnchor, ok := ligatureArrayEntry(sub, int(ligArrayOffset), ligCovIndex, component, markClass, int(classCount))
	if !ok {
		return false
	}

	attachMarkToBase(p, index, ligIndex, markAnchor, ligAnchor)
	return true
}

// ligatureArrayEntry reads a LigatureArray's per-component anchor
// matrix: LigatureArray -> LigatureAttach[ligCovIndex] ->
// anchors[component][markClass].
func ligatureArrayEntry(base view, offset, ligCovIndex, component, markClass, classCount int) (anchor, bool) {
	v := base.sub(offset)
	ligCount, ok := v.u16(0)
	if !ok || ligCovIndex >= int(ligCount) {
		return anchor{}, false
	}
	attachOffset, ok := v.u16(2 + ligCovIndex*2)
	if !ok {
		return anchor{}, false
	}
	attach := v.sub(int(attachOffset))
	componentCount, ok := attach.u16(0)
	if !ok || component >= int(componentCount) || markClass >= classCount {
		return anchor{}, false
	}
	cellOffset := 2 + (component*classCount+markClass)*2
	anchorOffset, ok := attach.u16(cellOffset)
	if !ok || anchorOffset == 0 {
		return anchor{}, false
	}
	a := parseAnchorAt(attach, int(anchorOffset))
	if !a.ok {
		return anchor{}, false
	}
	return a, true
}

// --- Lookup type 6: Mark-to-Mark attachment ---

func applyMarkMarkPos(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}
	mark1CoverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	mark2CoverageOffset, ok := sub.u16(4)
	if !ok {
		return false
	}
	classCount, ok := sub.u16(6)
	if !ok {
		return false
	}
	mark1ArrayOffset, ok := sub.u16(8)
	if !ok {
		return false
	}
	mark2ArrayOffset, ok := sub.u16(10)
	if !ok {
		return false
	}

	mark1Glyph := p.album.GetGlyph(index)
	mark1Cov := parseCoverageAt(sub, int(mark1CoverageOffset))
	mark1Index := mark1Cov.index(mark1Glyph)
	if mark1Index == notFound {
		return false
	}

	mark2Index := p.locator.GetPrecedingMarkIndex()
	if mark2Index == invalidIndex {
		return false
	}
	mark2Cov := parseCoverageAt(sub, int(mark2CoverageOffset))
	mark2CovIndex := mark2Cov.index(p.album.GetGlyph(mark2Index))
	if mark2CovIndex == notFound {
		return false
	}

	markClass, mark1Anchor, ok := markArrayEntry(sub, int(mark1ArrayOffset), mark1Index)
	if !ok {
		return false
	}
	mark2Anchor, ok := baseArrayEntry(sub, int(mark2ArrayOffset), mark2CovIndex, markClass, int(classCount))
	if !ok {
		return false
	}

	attachMarkToBase(p, index, mark2Index, mark1Anchor, mark2Anchor)
	return true
}
