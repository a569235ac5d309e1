package shape

// GSUB wraps a parsed OpenType GSUB table: just enough to look up
// lookups by index and dispatch into them. Script/feature list parsing
// is the feature-tag compiler's job (spec.md §1, out of scope here);
// a Pattern arrives with lookup indices already resolved.
type GSUB struct {
	v       view
	lookups []rawLookup
}

func parseGSUB(data []byte) (*GSUB, error) {
	v := newView(data)
	if v.len() < 10 {
		return nil, ErrInvalidFont
	}
	lookupListOffset, ok := v.u16(8)
	if !ok {
		return nil, ErrInvalidFont
	}
	return &GSUB{v: v, lookups: parseLookupList(v, int(lookupListOffset))}, nil
}

// NumLookups reports how many lookups this GSUB table carries.
func (g *GSUB) NumLookups() int {
	if g == nil {
		return 0
	}
	return len(g.lookups)
}

func (g *GSUB) lookup(index int) (rawLookup, bool) {
	if g == nil || index < 0 || index >= len(g.lookups) {
		return rawLookup{}, false
	}
	return g.lookups[index], true
}

// applyGSUBLookup drives Locator filtering for one lookup application
// over the processor's album and dispatches each accepted glyph to the
// lookup's subtables in order, per spec.md §4.7 stage 3: "a single
// successful subtable application terminates further subtables for
// that slot." Lookup type 8 (reverse chaining) is driven right-to-left
// from here: the locator is first moved to limitIndex, then swept
// backward with MovePrevious.
func applyGSUBLookup(p *Processor, lookupIndex int) bool {
	rl, ok := p.font.gsub.lookup(lookupIndex)
	if !ok {
		return false
	}

	loc := p.locator
	loc.SetLookupFlag(rl.flag)
	if rl.flag&LookupFlagUseMarkFilteringSet != 0 {
		loc.SetMarkFilteringSet(p.font.gdef, rl.markFilteringSet)
	}

	applied := false
	if rl.lookupType == 8 {
		loc.JumpTo(loc.limitIndex)
		for loc.MovePrevious() {
			if applyGSUBSubtables(p, rl, loc.Index()) {
				applied = true
			}
		}
		return applied
	}

	for loc.MoveNext() {
		if applyGSUBSubtables(p, rl, loc.Index()) {
			applied = true
		}
	}
	return applied
}

// applyGSUBLookupAt applies lookupIndex's subtables once, at the
// locator's current position — the nested-lookup half of a context or
// chained-context rule match (context.go's applyContextLookups). It
// does not sweep the range the way applyGSUBLookup does: a rule's
// lookup record only ever targets the one glyph its sequence index
// named, never the glyphs after it.
func applyGSUBLookupAt(p *Processor, lookupIndex int) bool {
	rl, ok := p.font.gsub.lookup(lookupIndex)
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
	return applyGSUBSubtables(p, rl, index)
}

func applyGSUBSubtables(p *Processor, rl rawLookup, index int) bool {
	for _, sub := range rl.subtables {
		if applyGSUBSubtable(p, rl.lookupType, sub, index) {
			return true
		}
	}
	return false
}

func applyGSUBSubtable(p *Processor, lookupType uint16, sub view, index int) bool {
	switch lookupType {
	case 1:
		return applySingleSubst(p, sub, index)
	case 2:
		return applyMultipleSubst(p, sub, index)
	case 3:
		// Alternate substitution: documented no-op (spec.md §9 Open
		// Question — "source chooses nothing").
		return false
	case 4:
		return applyLigatureSubst(p, sub, index)
	case 5:
		return applyContextSubtable(p, sub, index, applyGSUBLookupAt)
	case 6:
		return applyChainContextSubtable(p, sub, index, applyGSUBLookupAt)
	case 7:
		return applyExtensionSubtable(p, sub, index, applyGSUBSubtable)
	case 8:
		return applyReverseChainSubst(p, sub, index)
	default:
		p.font.logDebug("unsupported GSUB lookup type", "type", lookupType)
		return false
	}
}

// applyExtensionSubtable redirects to the inner subtable using the
// lookup type carried in the extension header, recursing into the
// dispatcher it was called from (GSUB or GPOS).
func applyExtensionSubtable(p *Processor, sub view, index int, dispatch func(*Processor, uint16, view, int) bool) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}
	innerType, ok := sub.u16(2)
	if !ok {
		return false
	}
	innerOffset, ok := sub.u32(4)
	if !ok {
		return false
	}
	return dispatch(p, innerType, sub.sub(int(innerOffset)), index)
}

// --- Lookup type 1: Single substitution ---

func applySingleSubst(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok {
		return false
	}

	glyph := p.album.GetGlyph(index)

	switch format {
	case 1:
		coverageOffset, ok := sub.u16(2)
		if !ok {
			return false
		}
		cov := parseCoverageAt(sub, int(coverageOffset))
		if cov.index(glyph) == notFound {
			return false
		}
		delta, ok := sub.i16(4)
		if !ok {
			return false
		}
		replacement := uint16(int32(glyph) + int32(delta))
		p.album.SetGlyph(index, replacement)
		p.setGlyphTraits(index, replacement)
		return true

	case 2:
		coverageOffset, ok := sub.u16(2)
		if !ok {
			return false
		}
		cov := parseCoverageAt(sub, int(coverageOffset))
		covIndex := cov.index(glyph)
		if covIndex == notFound {
			return false
		}
		count, ok := sub.u16(4)
		if !ok || covIndex >= int(count) {
			return false
		}
		replacement, ok := sub.u16(6 + covIndex*2)
		if !ok {
			return false
		}
		p.album.SetGlyph(index, replacement)
		p.setGlyphTraits(index, replacement)
		return true

	default:
		return false
	}
}

// --- Lookup type 2: Multiple substitution ---

func applyMultipleSubst(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}

	glyph := p.album.GetGlyph(index)
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound {
		return false
	}
	seqCount, ok := sub.u16(4)
	if !ok || covIndex >= int(seqCount) {
		return false
	}
	seqOffset, ok := sub.u16(6 + covIndex*2)
	if !ok {
		return false
	}
	return applySequenceTable(p, sub.sub(int(seqOffset)), index)
}

func applySequenceTable(p *Processor, seq view, index int) bool {
	glyphCount, ok := seq.u16(0)
	if !ok {
		return false
	}

	// Latest OpenType standard prohibits removal of a glyph via an
	// empty sequence.
	if glyphCount == 0 {
		return false
	}

	first, ok := seq.u16(2)
	if !ok {
		return false
	}
	p.album.SetGlyph(index, first)
	p.setGlyphTraits(index, first)

	if glyphCount == 1 {
		return true
	}

	association := p.album.GetSingleAssociation(index)

	p.locator.ReserveGlyphs(int(glyphCount) - 1)

	for sub := 1; sub < int(glyphCount); sub++ {
		newIndex := index + sub
		substitute, ok := seq.u16(2 + sub*2)
		if !ok {
			substitute = 0
		}
		p.album.SetGlyph(newIndex, substitute)
		p.setGlyphTraits(newIndex, substitute)
		p.album.SetSingleAssociation(newIndex, association)
		p.album.InsertTraits(newIndex, TraitSequence)
	}

	p.locator.JumpTo(index + int(glyphCount))
	return true
}

// --- Lookup type 4: Ligature substitution ---

func applyLigatureSubst(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}

	glyph := p.album.GetGlyph(index)
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound {
		return false
	}
	setCount, ok := sub.u16(4)
	if !ok || covIndex >= int(setCount) {
		return false
	}
	setOffset, ok := sub.u16(6 + covIndex*2)
	if !ok {
		return false
	}
	return applyLigatureSetTable(p, sub.sub(int(setOffset)), index)
}

func applyLigatureSetTable(p *Processor, ligSet view, index int) bool {
	ligCount, ok := ligSet.u16(0)
	if !ok {
		return false
	}

	// Ligatures are matched in listed (preference) order; the first
	// full match wins.
	for li := 0; li < int(ligCount); li++ {
		ligOffset, ok := ligSet.u16(2 + li*2)
		if !ok {
			continue
		}
		lig := ligSet.sub(int(ligOffset))
		if applyLigature(p, lig, index) {
			return true
		}
	}
	return false
}

func applyLigature(p *Processor, lig view, index int) bool {
	ligGlyph, ok := lig.u16(0)
	if !ok {
		return false
	}
	compCount, ok := lig.u16(2)
	if !ok {
		return false
	}

	// Match all components from the second one forward against
	// consecutive non-ignored glyphs, walked with GetAfter (which
	// consumes ignored glyphs) rather than MoveNext.
	prevIndex := index
	for ci := 1; ci < int(compCount); ci++ {
		nextIndex := p.locator.GetAfter(prevIndex)
		if nextIndex == invalidIndex {
			return false
		}
		component, ok := lig.u16(4 + (ci-1)*2)
		if !ok {
			return false
		}
		if component != p.album.GetGlyph(nextIndex) {
			return false
		}
		prevIndex = nextIndex
	}

	p.album.SetGlyph(index, ligGlyph)
	p.setGlyphTraits(index, ligGlyph)
	p.album.InsertTraits(index, TraitComposite)

	firstAssociation := p.album.GetSingleAssociation(index)
	composite := p.album.MakeCompositeAssociations(index, int(compCount))
	composite[0] = firstAssociation

	prevIndex = index
	for ci := 1; ci < int(compCount); ci++ {
		nextIndex := p.locator.GetAfter(prevIndex)
		composite[ci] = p.album.GetSingleAssociation(nextIndex)

		p.album.SetGlyph(nextIndex, 0)
		p.album.SetTraits(nextIndex, TraitPlaceholder)
		p.album.SetSingleAssociation(nextIndex, firstAssociation)

		prevIndex = nextIndex
	}

	return true
}

// --- Lookup type 8: Reverse chaining contextual single substitution ---

func applyReverseChainSubst(p *Processor, sub view, index int) bool {
	format, ok := sub.u16(0)
	if !ok || format != 1 {
		return false
	}

	glyph := p.album.GetGlyph(index)
	coverageOffset, ok := sub.u16(2)
	if !ok {
		return false
	}
	cov := parseCoverageAt(sub, int(coverageOffset))
	covIndex := cov.index(glyph)
	if covIndex == notFound {
		return false
	}

	backtrackCount, ok := sub.u16(4)
	if !ok {
		return false
	}
	off := 6
	backIndex := index
	for i := 0; i < int(backtrackCount); i++ {
		backCovOffset, ok := sub.u16(off)
		if !ok {
			return false
		}
		off += 2
		backIndex = p.locator.GetBefore(backIndex)
		if backIndex == invalidIndex {
			return false
		}
		backCov := parseCoverageAt(sub, int(backCovOffset))
		if backCov.index(p.album.GetGlyph(backIndex)) == notFound {
			return false
		}
	}

	lookaheadCount, ok := sub.u16(off)
	if !ok {
		return false
	}
	off += 2
	aheadIndex := index
	for i := 0; i < int(lookaheadCount); i++ {
		aheadCovOffset, ok := sub.u16(off)
		if !ok {
			return false
		}
		off += 2
		aheadIndex = p.locator.GetAfter(aheadIndex)
		if aheadIndex == invalidIndex {
			return false
		}
		aheadCov := parseCoverageAt(sub, int(aheadCovOffset))
		if aheadCov.index(p.album.GetGlyph(aheadIndex)) == notFound {
			return false
		}
	}

	substituteCount, ok := sub.u16(off)
	if !ok {
		return false
	}
	off += 2
	if covIndex >= int(substituteCount) {
		return false
	}
	replacement, ok := sub.u16(off + covIndex*2)
	if !ok {
		return false
	}

	p.album.SetGlyph(index, replacement)
	p.setGlyphTraits(index, replacement)
	return true
}
