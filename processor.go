package shape

// Processor bundles the three pieces every subtable applier in this
// package closes over: the font resources, the album being mutated,
// and the one Locator shared across the whole shaping run (context
// lookups reset and restore it in place rather than allocating a new
// one per nesting level — see context.go's applyContextLookups).
type Processor struct {
	font    *Font
	album   *Album
	locator *Locator
	layout  Layout
}

// setGlyphTraits looks up glyph's GDEF class and replaces index's basic
// trait with it — called after every substitution that changes a
// slot's glyph id, so a glyph's Base/Ligature/Mark classification
// always reflects what it currently holds rather than what discovery
// first saw there.
func (p *Processor) setGlyphTraits(index int, glyph uint16) {
	class := p.font.gdef.GlyphClass(glyph)
	p.album.ReplaceBasicTraits(index, basicTraitsForGDEFClass(class))
}

// Shape runs the six-stage pipeline over codepoints and returns the
// resulting Album: glyph discovery, GSUB feature-mask tagging and
// application, default-advance fill-in, GPOS feature-mask tagging and
// application, attachment-chain resolution, and — for an RTL pattern —
// a final visual-order mirror. Grounded on the teacher's shaper.go
// pipeline shape, generalized from its per-script shaper hooks down to
// this package's script-agnostic stages.
func Shape(font *Font, pattern *Pattern, codepoints []rune, layout Layout) *Album {
	album := NewAlbum()
	discoverGlyphs(font, album, codepoints)

	p := &Processor{font: font, album: album, layout: layout}
	p.locator = NewLocator(album, font.gdef)

	tagFeatureMasks(album, pattern.gsubUnits, nil)
	runGSUBPhase(p, pattern)

	fillDefaultAdvances(font, album, layout)

	charMap := album.CharacterToGlyphMap()
	tagFeatureMasks(album, pattern.gposUnits, charMap)
	runGPOSPhase(p, pattern)

	resolveAttachments(album)

	if pattern.Direction == DirectionRTL {
		reorderForRightToLeft(album)
	}

	return album
}

// reorderForRightToLeft marks every glyph discovered for this run as
// belonging to a right-to-left stream, then mirrors the album end for
// end so the returned glyph order is the visual order a renderer draws
// left to right (spec.md §4.7 stage 6: "apply right-to-left reordering
// of positions if the artist's direction is RTL").
func reorderForRightToLeft(album *Album) {
	for i := 0; i < album.GlyphCount(); i++ {
		album.InsertTraits(i, TraitRightToLeft)
	}
	album.Reverse()
}

func discoverGlyphs(font *Font, album *Album, codepoints []rune) {
	album.SetTextRange(Range{Start: 0, End: len(codepoints)})
	for i, cp := range codepoints {
		glyph := font.GlyphForCodepoint(cp)
		basic := basicTraitsForGDEFClass(font.gdef.GlyphClass(glyph))
		album.append(glyph, basic, i)
	}
}

func runGSUBPhase(p *Processor, pattern *Pattern) {
	if p.font.gsub == nil {
		return
	}
	for _, u := range pattern.gsubUnits {
		p.locator.SetFeatureMask(u.mask)
		for _, li := range u.lookupIndexes {
			p.locator.Reset(0, p.album.GlyphCount())
			applyGSUBLookup(p, li)
		}
	}
}

func runGPOSPhase(p *Processor, pattern *Pattern) {
	if p.font.gpos == nil {
		return
	}
	for _, u := range pattern.gposUnits {
		p.locator.SetFeatureMask(u.mask)
		for _, li := range u.lookupIndexes {
			p.locator.Reset(0, p.album.GlyphCount())
			applyGPOSLookup(p, li)
		}
	}
}

func fillDefaultAdvances(font *Font, album *Album, layout Layout) {
	for i := 0; i < album.GlyphCount(); i++ {
		album.SetAdvance(i, font.AdvanceForGlyph(layout, album.GetGlyph(i)))
	}
}

// tagFeatureMasks ORs each unit's mask bit onto every glyph in its
// covered range that carries all of its required traits. units'
// CoveredRange is always expressed in input-text indices (spec.md
// §3); charMap translates that into the corresponding glyph-stream
// range. A nil charMap means "glyph discovery just ran" — text and
// glyph indices still coincide 1:1, so the range applies directly.
func tagFeatureMasks(album *Album, units []compiledFeatureUnit, charMap []Range) {
	for _, u := range units {
		glyphStart, glyphEnd := textRangeToGlyphRange(charMap, u.coveredRange, album.GlyphCount())
		for i := glyphStart; i < glyphEnd; i++ {
			if album.GetTraits(i)&u.requiredTraits == u.requiredTraits {
				album.OrFeatureMask(i, u.mask)
			}
		}
	}
}

func textRangeToGlyphRange(charMap []Range, textRange Range, glyphCount int) (int, int) {
	if charMap == nil {
		start, end := textRange.Start, textRange.End
		if start < 0 {
			start = 0
		}
		if end > glyphCount {
			end = glyphCount
		}
		if end < start {
			end = start
		}
		return start, end
	}

	start, end := glyphCount, 0
	found := false
	for ti := textRange.Start; ti < textRange.End; ti++ {
		if ti < 0 || ti >= len(charMap) {
			continue
		}
		r := charMap[ti]
		if r.Start == -1 {
			continue
		}
		found = true
		if r.Start < start {
			start = r.Start
		}
		if r.End > end {
			end = r.End
		}
	}
	if !found {
		return 0, 0
	}
	return start, end
}

// resolveAttachments walks every glyph's cursive and mark-attachment
// back-links transitively, folding the resolved base's position into
// the dependent glyph's own position. A glyph attached to a glyph that
// is itself attached (a mark on a mark, or a chain of cursive
// connections) is resolved through the whole chain before its own
// position is finalized. Grounded on the teacher's
// PropagateAttachmentOffsets/propagateAttachmentOffsetsRecursive in
// ot/gpos.go, generalized to the spec's two separate back-link fields.
func resolveAttachments(album *Album) {
	resolved := make([]bool, album.GlyphCount())
	var resolve func(index int) Position
	resolve = func(index int) Position {
		if resolved[index] {
			return album.GetPosition(index)
		}
		// Marked before recursing: a malformed font could describe a
		// cyclic attachment chain, and re-entering it must terminate
		// rather than recurse forever.
		resolved[index] = true

		if off := album.GetCursiveOffset(index); off != 0 {
			base := index + int(off)
			if base >= 0 && base < album.GlyphCount() && base != index {
				basePos := resolve(base)
				pos := album.GetPosition(index)
				pos.Y += basePos.Y
				album.SetPosition(index, pos)
			}
		}

		if off := album.GetAttachmentOffset(index); off != 0 {
			base := index + int(off)
			if base >= 0 && base < album.GlyphCount() && base != index {
				basePos := resolve(base)
				pos := album.GetPosition(index)
				pos.X += basePos.X
				pos.Y += basePos.Y
				album.SetPosition(index, pos)
			}
		}

		return album.GetPosition(index)
	}

	for i := 0; i < album.GlyphCount(); i++ {
		resolve(i)
	}
}
