package shape

// Shared matcher for GSUB lookup type 5/6 and GPOS lookup type 7/8:
// Context and Chained Context substitution/positioning. Both tables
// describe the same three rule shapes (glyph sequence, glyph class,
// coverage array) over the same three glyph zones (backtrack, input,
// lookahead); only the presence of the backtrack/lookahead zones tells
// them apart. One set of assessors and one recursion routine serves
// all four lookup types.
//
// Grounded on original_source/Source/SFGlyphManipulation.c. The C
// source dispatches assessment through a single SFGlyphAssessment
// function-pointer-plus-void* (SFGlyphAgent); Go closures make that
// indirection unnecessary.

// glyphAssessor reports whether glyphID satisfies a rule's recorded
// value at one matched position — equality against a glyph id, class
// membership, or coverage-table membership, depending on the table
// format.
type glyphAssessor func(glyphID, recordValue uint16) bool

func assessByEquality(glyphID, recordValue uint16) bool {
	return glyphID == recordValue
}

func assessByClass(cd classDef) glyphAssessor {
	return func(glyphID, recordValue uint16) bool {
		return uint16(cd.class(glyphID)) == recordValue
	}
}

// assessByCoverage treats recordValue as an offset to a Coverage table
// within container (used by format 3, where each position carries its
// own inline coverage table instead of sharing one class definition).
func assessByCoverage(container view) glyphAssessor {
	return func(glyphID, recordValue uint16) bool {
		cov := parseCoverageAt(container, int(recordValue))
		return cov.index(glyphID) != notFound
	}
}

// lookupRecord is a SequenceLookupRecord: apply the lookup at
// lookupListIndex to the input glyph at sequenceIndex glyphs into the
// matched context.
type lookupRecord struct {
	sequenceIndex   uint16
	lookupListIndex uint16
}

func parseLookupRecords(v view, offset, count int) []lookupRecord {
	recs := make([]lookupRecord, 0, count)
	for i := 0; i < count; i++ {
		seqIndex, ok := v.u16(offset + i*4)
		if !ok {
			break
		}
		llIndex, ok := v.u16(offset + i*4 + 2)
		if !ok {
			break
		}
		recs = append(recs, lookupRecord{sequenceIndex: seqIndex, lookupListIndex: llIndex})
	}
	return recs
}

func readU16Array(v view, offset, count int) ([]uint16, bool) {
	out := make([]uint16, 0, count)
	for i := 0; i < count; i++ {
		val, ok := v.u16(offset + i*2)
		if !ok {
			return nil, false
		}
		out = append(out, val)
	}
	return out, true
}

// assessBacktrackGlyphs walks backward from the locator's current
// index, one GetBefore per value, in backtrack (reverse) order.
func assessBacktrackGlyphs(p *Processor, values []uint16, assess glyphAssessor) bool {
	idx := p.locator.Index()
	for _, v := range values {
		idx = p.locator.GetBefore(idx)
		if idx == invalidIndex {
			return false
		}
		if !assess(p.album.GetGlyph(idx), v) {
			return false
		}
	}
	return true
}

// assessInputGlyphs matches the input sequence starting at the
// locator's current index. includeFirst also asserts the first value
// against the current glyph itself (format 3, where the first position
// carries its own coverage table rather than being pre-matched by the
// subtable's leading coverage check). It returns the index of the
// last matched input glyph — inclusive, per contextEnd's meaning
// throughout this file.
func assessInputGlyphs(p *Processor, values []uint16, includeFirst bool, assess glyphAssessor) (int, bool) {
	idx := p.locator.Index()
	start := 0
	if includeFirst {
		if len(values) == 0 || !assess(p.album.GetGlyph(idx), values[0]) {
			return 0, false
		}
		start = 1
	}
	for i := start; i < len(values); i++ {
		idx = p.locator.GetAfter(idx)
		if idx == invalidIndex {
			return 0, false
		}
		if !assess(p.album.GetGlyph(idx), values[i]) {
			return 0, false
		}
	}
	return idx, true
}

// assessLookaheadGlyphs walks forward from contextEnd, one GetAfter
// per value.
func assessLookaheadGlyphs(p *Processor, values []uint16, contextEnd int, assess glyphAssessor) bool {
	idx := contextEnd
	for _, v := range values {
		idx = p.locator.GetAfter(idx)
		if idx == invalidIndex {
			return false
		}
		if !assess(p.album.GetGlyph(idx), v) {
			return false
		}
	}
	return true
}

// applyContextLookups is the recursive heart shared by every context
// lookup format: it bounds the processor's one Locator to the matched
// context range, applies each lookup record's nested lookup at its
// recorded sequence position, then restores the locator's outer state
// — carrying forward only the cursor position and album version a
// nested application may have advanced, exactly as
// Locator.TakeState documents. recurse applies the nested lookup's
// subtables once, at the locator's current position — not a sweep
// over the whole context range — matching how a single contextual
// rule only ever touches the one glyph its sequence index names.
func applyContextLookups(p *Processor, records []lookupRecord, contextStart, contextEnd int, recurse func(*Processor, int) bool) bool {
	loc := p.locator
	saved := *loc

	loc.Reset(contextStart, contextEnd-contextStart+1)

	for _, rec := range records {
		loc.JumpTo(contextStart)
		if loc.MoveNext() {
			if loc.Skip(int(rec.sequenceIndex)) {
				recurse(p, int(rec.lookupListIndex))
			}
		}
	}

	saved.stateIndex = loc.stateIndex
	saved.version = loc.version
	*loc = saved

	return true
}

// --- Context (GSUB type 5 / GPOS type 7) ---

func applyContextSubtable(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	format, ok := sub.u16(0)
	if !ok {
		return false
	}
	switch format {
	case 1:
		return applyContextFormat1(p, sub, index, recurse)
	case 2:
		return applyContextFormat2(p, sub, index, recurse)
	case 3:
		return applyContextFormat3(p, sub, index, recurse)
	default:
		return false
	}
}

func applyContextFormat1(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	ruleSetCount, ok := sub.u16(4)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(p.album.GetGlyph(index))
	if covIndex == notFound || covIndex >= int(ruleSetCount) {
		return false
	}
	ruleSetOffset, ok := sub.u16(6 + covIndex*2)
	if !ok {
		return false
	}
	return applySequenceRuleSet(p, sub.sub(int(ruleSetOffset)), index, assessByEquality, recurse)
}

func applyContextFormat2(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	classDefOffset, ok := sub.u16(4)
	if !ok {
		return false
	}
	ruleSetCount, ok := sub.u16(6)
	if !ok {
		return false
	}

	glyph := p.album.GetGlyph(index)
	cov := parseCoverageAt(sub, int(coverageOffset))
	if cov.index(glyph) == notFound {
		return false
	}

	cd := parseClassDefAt(sub, int(classDefOffset))
	class := cd.class(glyph)
	if class < 0 || class >= int(ruleSetCount) {
		return false
	}
	ruleSetOffset, ok := sub.u16(8 + class*2)
	if !ok {
		return false
	}
	return applySequenceRuleSet(p, sub.sub(int(ruleSetOffset)), index, assessByClass(cd), recurse)
}

func applyContextFormat3(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	glyphCount, ok := sub.u16(2)
	if !ok || glyphCount == 0 {
		return false
	}
	lookupCount, ok := sub.u16(4)
	if !ok {
		return false
	}
	values, ok := readU16Array(sub, 6, int(glyphCount))
	if !ok {
		return false
	}

	contextStart := index
	contextEnd, ok := assessInputGlyphs(p, values, true, assessByCoverage(sub))
	if !ok {
		return false
	}

	records := parseLookupRecords(sub, 6+int(glyphCount)*2, int(lookupCount))
	return applyContextLookups(p, records, contextStart, contextEnd, recurse)
}

// applySequenceRuleSet/applySequenceRule back both Context formats 1
// and 2 — the two share an identical SequenceRuleSet/SequenceRule
// binary layout, differing only in whether assess compares glyph ids
// or glyph classes.
func applySequenceRuleSet(p *Processor, ruleSet view, index int, assess glyphAssessor, recurse func(*Processor, int) bool) bool {
	count, ok := ruleSet.u16(0)
	if !ok {
		return false
	}
	for i := 0; i < int(count); i++ {
		off, ok := ruleSet.u16(2 + i*2)
		if !ok || off == 0 {
			continue
		}
		if applySequenceRule(p, ruleSet.sub(int(off)), index, assess, recurse) {
			return true
		}
	}
	return false
}

func applySequenceRule(p *Processor, rule view, index int, assess glyphAssessor, recurse func(*Processor, int) bool) bool {
	glyphCount, ok := rule.u16(0)
	if !ok || glyphCount == 0 {
		return false
	}
	lookupCount, ok := rule.u16(2)
	if !ok {
		return false
	}
	values, ok := readU16Array(rule, 4, int(glyphCount)-1)
	if !ok {
		return false
	}

	contextStart := index
	contextEnd, ok := assessInputGlyphs(p, values, false, assess)
	if !ok {
		return false
	}

	records := parseLookupRecords(rule, 4+(int(glyphCount)-1)*2, int(lookupCount))
	return applyContextLookups(p, records, contextStart, contextEnd, recurse)
}

// --- Chained Context (GSUB type 6 / GPOS type 8) ---

func applyChainContextSubtable(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	format, ok := sub.u16(0)
	if !ok {
		return false
	}
	switch format {
	case 1:
		return applyChainContextFormat1(p, sub, index, recurse)
	case 2:
		return applyChainContextFormat2(p, sub, index, recurse)
	case 3:
		return applyChainContextFormat3(p, sub, index, recurse)
	default:
		return false
	}
}

func applyChainContextFormat1(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	ruleSetCount, ok := sub.u16(4)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(p.album.GetGlyph(index))
	if covIndex == notFound || covIndex >= int(ruleSetCount) {
		return false
	}
	ruleSetOffset, ok := sub.u16(6 + covIndex*2)
	if !ok {
		return false
	}
	return applyChainSequenceRuleSet(p, sub.sub(int(ruleSetOffset)), index,
		assessByEquality, assessByEquality, assessByEquality, recurse)
}

func applyChainContextFormat2(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	backtrackClassDefOffset, ok := sub.u16(4)
	if !ok {
		return false
	}
	inputClassDefOffset, ok := sub.u16(6)
	if !ok {
		return false
	}
	lookaheadClassDefOffset, ok := sub.u16(8)
	if !ok {
		return false
	}
	ruleSetCount, ok := sub.u16(10)
	if !ok {
		return false
	}

	glyph := p.album.GetGlyph(index)
	cov := parseCoverageAt(sub, int(coverageOffset))
	if cov.index(glyph) == notFound {
		return false
	}

	inputClassDef := parseClassDefAt(sub, int(inputClassDefOffset))
	class := inputClassDef.class(glyph)
	if class < 0 || class >= int(ruleSetCount) {
		return false
	}
	ruleSetOffset, ok := sub.u16(12 + class*2)
	if !ok {
		return false
	}

	backtrackClassDef := parseClassDefAt(sub, int(backtrackClassDefOffset))
	lookaheadClassDef := parseClassDefAt(sub, int(lookaheadClassDefOffset))

	return applyChainSequenceRuleSet(p, sub.sub(int(ruleSetOffset)), index,
		assessByClass(backtrackClassDef), assessByClass(inputClassDef), assessByClass(lookaheadClassDef), recurse)
}

func applyChainContextFormat3(p *Processor, sub view, index int, recurse func(*Processor, int) bool) bool {
	backtrackCount, ok := sub.u16(2)
	if !ok {
		return false
	}
	backValues, ok := readU16Array(sub, 4, int(backtrackCount))
	if !ok {
		return false
	}
	off := 4 + int(backtrackCount)*2

	inputCount, ok := sub.u16(off)
	if !ok || inputCount == 0 {
		return false
	}
	off += 2
	inputValues, ok := readU16Array(sub, off, int(inputCount))
	if !ok {
		return false
	}
	off += int(inputCount) * 2

	lookaheadCount, ok := sub.u16(off)
	if !ok {
		return false
	}
	off += 2
	lookaheadValues, ok := readU16Array(sub, off, int(lookaheadCount))
	if !ok {
		return false
	}
	off += int(lookaheadCount) * 2

	lookupCount, ok := sub.u16(off)
	if !ok {
		return false
	}
	off += 2

	contextStart := index
	contextEnd, ok := assessInputGlyphs(p, inputValues, true, assessByCoverage(sub))
	if !ok {
		return false
	}
	if !assessBacktrackGlyphs(p, backValues, assessByCoverage(sub)) {
		return false
	}
	if !assessLookaheadGlyphs(p, lookaheadValues, contextEnd, assessByCoverage(sub)) {
		return false
	}

	records := parseLookupRecords(sub, off, int(lookupCount))
	return applyContextLookups(p, records, contextStart, contextEnd, recurse)
}

// applyChainSequenceRuleSet/applyChainSequenceRule back Chained
// Context formats 1 and 2.
func applyChainSequenceRuleSet(p *Processor, ruleSet view, index int, assessBack, assessIn, assessAhead glyphAssessor, recurse func(*Processor, int) bool) bool {
	count, ok := ruleSet.u16(0)
	if !ok {
		return false
	}
	for i := 0; i < int(count); i++ {
		off, ok := ruleSet.u16(2 + i*2)
		if !ok || off == 0 {
			continue
		}
		if applyChainSequenceRule(p, ruleSet.sub(int(off)), index, assessBack, assessIn, assessAhead, recurse) {
			return true
		}
	}
	return false
}

func applyChainSequenceRule(p *Processor, rule view, index int, assessBack, assessIn, assessAhead glyphAssessor, recurse func(*Processor, int) bool) bool {
	backtrackCount, ok := rule.u16(0)
	if !ok {
		return false
	}
	backValues, ok := readU16Array(rule, 2, int(backtrackCount))
	if !ok {
		return false
	}
	off := 2 + int(backtrackCount)*2

	inputCount, ok := rule.u16(off)
	if !ok || inputCount == 0 {
		return false
	}
	off += 2
	inputValues, ok := readU16Array(rule, off, int(inputCount)-1)
	if !ok {
		return false
	}
	off += (int(inputCount) - 1) * 2

	lookaheadCount, ok := rule.u16(off)
	if !ok {
		return false
	}
	off += 2
	lookaheadValues, ok := readU16Array(rule, off, int(lookaheadCount))
	if !ok {
		return false
	}
	off += int(lookaheadCount) * 2

	lookupCount, ok := rule.u16(off)
	if !ok {
		return false
	}
	off += 2

	contextStart := index
	contextEnd, ok := assessInputGlyphs(p, inputValues, false, assessIn)
	if !ok {
		return false
	}
	if !assessBacktrackGlyphs(p, backValues, assessBack) {
		return false
	}
	if !assessLookaheadGlyphs(p, lookaheadValues, contextEnd, assessAhead) {
		return false
	}

	records := parseLookupRecords(rule, off, int(lookupCount))
	return applyContextLookups(p, records, contextStart, contextEnd, recurse)
}
