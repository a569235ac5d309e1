package shape

// LookupFlag mirrors the OpenType lookup flag bit layout: the low byte
// holds the Ignore*/UseMarkFilteringSet/RightToLeft bits, the high
// byte holds the mark-attachment class to filter on.
type LookupFlag uint16

const (
	LookupFlagRightToLeft        LookupFlag = 0x0001
	LookupFlagIgnoreBaseGlyphs   LookupFlag = 0x0002
	LookupFlagIgnoreLigatures    LookupFlag = 0x0004
	LookupFlagIgnoreMarks        LookupFlag = 0x0008
	LookupFlagUseMarkFilteringSet LookupFlag = 0x0010
)

// markAttachType extracts the upper-byte mark-attachment class.
func (f LookupFlag) markAttachType() uint8 { return uint8(f >> 8) }

// invalidIndex is the sentinel Locator.index takes when no glyph is
// currently accepted (the Fresh and Exhausted states).
const invalidIndex = -1

// ignoreMask packs the two ignore-bit domains a Locator filters on: one
// in the feature-mask domain (set via SetFeatureMask), one in the
// traits domain (set via SetLookupFlag). Kept as two explicit fields
// rather than one packed 32-bit word — Go has no convenient anonymous
// union, and splitting them costs nothing since they are always tested
// against their own domain's value.
type ignoreMask struct {
	feature uint16
	traits  Traits
}

// Locator is a filtering cursor over an Album: the only legal way the
// engine walks the glyph stream. It never mutates the album itself
// (aside from delegating ReserveGlyphs calls); it only decides which
// slots are visible to a given lookup application.
//
// Grounded directly on original_source/Source/SFLocator.c.
type Locator struct {
	album *Album

	startIndex int
	limitIndex int
	stateIndex int
	index      int

	lookupFlag LookupFlag
	ignore     ignoreMask

	markAttachClassDef    *classDef
	markFilteringCoverage *coverage

	version int
}

// NewLocator creates a Locator over album, consulting gdef (which may
// be nil) for the mark-attachment class definition and mark glyph
// sets used by SetMarkFilteringSet.
func NewLocator(album *Album, gdef *GDEF) *Locator {
	l := &Locator{
		album:   album,
		index:   invalidIndex,
		version: invalidIndex,
	}
	if gdef != nil && gdef.hasMarkAttachClassDef() {
		cd := gdef.markAttachClassDef
		l.markAttachClassDef = &cd
	}
	return l
}

// Reset positions the locator over the half-open glyph range
// [index, index+count) and clears its accepted index, the Go
// equivalent of SFLocatorReset.
func (l *Locator) Reset(index, count int) {
	if index < 0 || index > l.album.GlyphCount() || index+count < index {
		abort("Locator.Reset: invalid range")
	}
	l.version = l.album.Version()
	l.startIndex = index
	l.limitIndex = index + count
	l.stateIndex = index
	l.index = invalidIndex
}

func (l *Locator) assertFresh() {
	if l.version != l.album.Version() {
		abort("Locator used against a mutated album without ReserveGlyphs")
	}
}

// SetFeatureMask sets the feature-mask half of the ignore mask: a
// glyph whose feature mask has none of the bits in mask set is
// ignored by this lookup's application. mask is the requesting
// feature unit's own mask, not yet inverted; see the Open Question
// note in DESIGN.md for why this package tests bit-absence directly
// rather than routing through Album.GetAntiFeatureMask's complement.
func (l *Locator) SetFeatureMask(mask uint16) {
	l.ignore.feature = mask
}

// SetLookupFlag records the OpenType lookup flag and derives the
// traits half of the ignore mask from its Ignore* bits. Placeholder
// slots are always ignored, regardless of flag — per spec.md §4.3.
func (l *Locator) SetLookupFlag(flag LookupFlag) {
	var ignore Traits
	if flag&LookupFlagIgnoreBaseGlyphs != 0 {
		ignore |= TraitBase
	}
	if flag&LookupFlagIgnoreLigatures != 0 {
		ignore |= TraitLigature
	}
	if flag&LookupFlagIgnoreMarks != 0 {
		ignore |= TraitMark
	}
	ignore |= TraitPlaceholder

	l.lookupFlag = flag
	l.ignore.traits = ignore
}

// SetMarkFilteringSet selects the mark-glyph-set coverage table used
// when LookupFlagUseMarkFilteringSet is set. An out-of-range or
// missing set clears the filter (no marks are filtered by set).
func (l *Locator) SetMarkFilteringSet(gdef *GDEF, markFilteringSet int) {
	l.markFilteringCoverage = nil
	if gdef == nil {
		return
	}
	if cov, ok := gdef.markGlyphSet(markFilteringSet); ok {
		l.markFilteringCoverage = &cov
	}
}

// isIgnored implements spec.md §4.3's ignore predicate.
func (l *Locator) isIgnored(index int) bool {
	glyphTraits := l.album.GetTraits(index)
	glyphMask := l.album.GetFeatureMask(index)

	// A glyph is ineligible for the active feature unit when its mask
	// fails to intersect the unit's mask (Album.GetAntiFeatureMask is
	// not consulted).
	if l.ignore.feature != 0 && glyphMask&l.ignore.feature == 0 {
		return true
	}

	if l.ignore.traits&glyphTraits != 0 {
		return true
	}

	if glyphTraits&TraitMark != 0 {
		if l.lookupFlag&LookupFlagUseMarkFilteringSet != 0 {
			if l.markFilteringCoverage != nil {
				glyph := l.album.GetGlyph(index)
				if l.markFilteringCoverage.index(glyph) == notFound {
					return true
				}
			}
		}
		if attachType := l.lookupFlag.markAttachType(); attachType != 0 && l.markAttachClassDef != nil {
			glyph := l.album.GetGlyph(index)
			if uint8(l.markAttachClassDef.class(glyph)) != attachType {
				return true
			}
		}
	}

	return false
}

// MoveNext advances to the first non-ignored slot in
// [stateIndex, limitIndex), sets Index, and reports success.
func (l *Locator) MoveNext() bool {
	l.assertFresh()
	for l.stateIndex < l.limitIndex {
		index := l.stateIndex
		l.stateIndex++
		if !l.isIgnored(index) {
			l.index = index
			return true
		}
	}
	l.index = invalidIndex
	return false
}

// MovePrevious is MoveNext's mirror, searching (startIndex, stateIndex]
// backwards.
func (l *Locator) MovePrevious() bool {
	l.assertFresh()
	for l.stateIndex > l.startIndex {
		l.stateIndex--
		index := l.stateIndex
		if !l.isIgnored(index) {
			l.index = index
			return true
		}
	}
	l.index = invalidIndex
	return false
}

// Skip calls MoveNext n times, short-circuiting (and reporting false)
// the moment any call fails.
func (l *Locator) Skip(n int) bool {
	for ; n > 0; n-- {
		if !l.MoveNext() {
			return false
		}
	}
	return true
}

// JumpTo sets the locator's internal cursor directly. It is legal to
// jump to startIndex (so a subsequent MovePrevious immediately fails)
// or to limitIndex (so a subsequent MoveNext immediately fails).
func (l *Locator) JumpTo(index int) {
	l.assertFresh()
	if index < l.startIndex || index > l.limitIndex {
		abort("Locator.JumpTo: index out of range")
	}
	l.stateIndex = index
}

// Index returns the last index accepted by MoveNext/MovePrevious, or
// invalidIndex if the locator is Fresh or Exhausted.
func (l *Locator) Index() int { return l.index }

// GetAfter peeks forward from index without mutating the locator's
// cursor, returning the first non-ignored slot strictly after index,
// or invalidIndex.
func (l *Locator) GetAfter(index int) int {
	l.assertFresh()
	for i := index + 1; i < l.limitIndex; i++ {
		if !l.isIgnored(i) {
			return i
		}
	}
	return invalidIndex
}

// GetBefore peeks backward from index without mutating the locator's
// cursor, returning the first non-ignored slot strictly before index,
// or invalidIndex.
func (l *Locator) GetBefore(index int) int {
	l.assertFresh()
	for i := index - 1; i >= l.startIndex; i-- {
		if !l.isIgnored(i) {
			return i
		}
	}
	return invalidIndex
}

// ReserveGlyphs delegates to the Album and extends limitIndex by
// count, keeping this locator's notion of the glyph stream's end in
// sync with the insertion it just caused.
func (l *Locator) ReserveGlyphs(count int) {
	l.assertFresh()
	l.album.ReserveGlyphs(l.stateIndex, count)
	l.version = l.album.Version()
	l.limitIndex += count
}

// GetPrecedingBaseIndex searches backward from Index for the nearest
// base glyph, temporarily widening the ignore set to
// {Placeholder, Mark, Sequence} — a multiple-substitution sequence is
// ignored too, so a mark aligns with the first glyph of its base
// rather than a later component.
func (l *Locator) GetPrecedingBaseIndex() int {
	saved := l.ignore.traits
	l.ignore.traits = TraitPlaceholder | TraitMark | TraitSequence
	baseIndex := l.GetBefore(l.index)
	l.ignore.traits = saved
	return baseIndex
}

// GetPrecedingLigatureIndex searches backward from Index for the
// nearest ligature glyph, widening the ignore set to
// {Placeholder, Mark}, and reports (in *component) how many
// Placeholder slots lie between the ligature and Index — that count is
// the 0-based component index the mark should attach to.
func (l *Locator) GetPrecedingLigatureIndex(component *int) int {
	*component = 0

	saved := l.ignore.traits
	l.ignore.traits = TraitPlaceholder | TraitMark
	ligIndex := l.GetBefore(l.index)
	l.ignore.traits = saved

	if ligIndex != invalidIndex {
		for next := ligIndex + 1; next < l.index; next++ {
			if l.album.GetTraits(next)&TraitPlaceholder != 0 {
				*component++
			}
		}
	}

	return ligIndex
}

// GetPrecedingMarkIndex searches backward from Index for the nearest
// mark, with no trait ignored at all (so it can tell whether it landed
// on a Placeholder, which disqualifies the result — the mark must
// belong to the same ligature component, not some other one).
func (l *Locator) GetPrecedingMarkIndex() int {
	saved := l.ignore.traits
	l.ignore.traits = TraitNone
	markIndex := l.GetBefore(l.index)
	l.ignore.traits = saved

	if markIndex != invalidIndex && l.album.GetTraits(markIndex)&TraitPlaceholder != 0 {
		return invalidIndex
	}
	return markIndex
}

// TakeState adopts sibling's cursor position and version, used to
// resynchronize an outer Locator after a recursive context-lookup
// application may have grown the album through a different, inner
// Locator (see context.go's applyContextLookups).
func (l *Locator) TakeState(sibling *Locator) {
	if l.album != sibling.album {
		abort("Locator.TakeState: locators belong to different albums")
	}
	l.stateIndex = sibling.stateIndex
	l.version = sibling.version
}

// TraitNone is the empty Traits value, used for readability at call
// sites like GetPrecedingMarkIndex that clear the ignore set entirely.
const TraitNone Traits = 0
