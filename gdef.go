package shape

// GDEF wraps the subset of an OpenType GDEF table this engine consults:
// the glyph class definition (Base/Ligature/Mark/Component) and the
// mark-attachment class definition and mark-glyph-set coverage tables
// used by lookup-flag filtering. Anything else in GDEF (ligature caret
// lists, the variation store) is outside this core's scope.
type GDEF struct {
	v view

	glyphClassDef      classDef
	hasGlyphClassDef   bool
	markAttachClassDef classDef
	hasMarkAttach      bool
	markGlyphSetsDef   view
	hasMarkGlyphSets   bool
}

// NewGDEF parses a GDEF table span. An empty span is treated as an
// absent table, not an error — per spec.md §6, "may be empty (treated
// as absent)".
func NewGDEF(data []byte) *GDEF {
	if len(data) == 0 {
		return nil
	}
	v := newView(data)
	g := &GDEF{v: v}

	_, ok := v.u16(0)
	if !ok {
		return g
	}
	minor, _ := v.u16(2)

	if off, ok := v.u16(4); ok && off != 0 {
		g.glyphClassDef = parseClassDefAt(v, int(off))
		g.hasGlyphClassDef = true
	}
	if off, ok := v.u16(8); ok && off != 0 {
		g.markAttachClassDef = parseClassDefAt(v, int(off))
		g.hasMarkAttach = true
	}

	// MarkGlyphSetsDef only exists in GDEF version >= 1.2.
	major, okMaj := v.u16(0)
	if okMaj && major == 1 {
		if minor >= 2 {
			if off, ok := v.u16(10); ok && off != 0 {
				g.markGlyphSetsDef = v.sub(int(off))
				g.hasMarkGlyphSets = true
			}
		}
	}

	return g
}

func (g *GDEF) hasMarkAttachClassDef() bool {
	return g != nil && g.hasMarkAttach
}

// GlyphClass returns the GDEF glyph class for glyph: 0 none, 1 Base,
// 2 Ligature, 3 Mark, 4 Component. Returns 0 when no class definition
// is present.
func (g *GDEF) GlyphClass(glyph uint16) int {
	if g == nil || !g.hasGlyphClassDef {
		return 0
	}
	return g.glyphClassDef.class(glyph)
}

// markGlyphSet returns the mark-filtering coverage table for
// markFilteringSet, the Go equivalent of
// SFLocatorSetMarkFilteringSet's markGlyphSetsDef lookup (format 1
// only — no other format is defined by OpenType).
func (g *GDEF) markGlyphSet(markFilteringSet int) (coverage, bool) {
	if g == nil || !g.hasMarkGlyphSets || markFilteringSet < 0 {
		return coverage{}, false
	}
	v := g.markGlyphSetsDef
	format, ok := v.u16(0)
	if !ok || format != 1 {
		return coverage{}, false
	}
	count, ok := v.u16(2)
	if !ok || markFilteringSet >= int(count) {
		return coverage{}, false
	}
	off, ok := v.u32(4 + markFilteringSet*4)
	if !ok {
		return coverage{}, false
	}
	return parseCoverageAt(v, int(off)), true
}

// GDEF glyph class constants, matching the OpenType GlyphClassDef
// table's class ids.
const (
	GDEFClassBase      = 1
	GDEFClassLigature  = 2
	GDEFClassMark      = 3
	GDEFClassComponent = 4
)

// basicTraitsForGDEFClass maps a GDEF glyph class to the Album basic
// trait it corresponds to at glyph-discovery time (spec.md §4.7 stage
// 1). Component (4) and unclassified (0) glyphs carry no basic trait.
func basicTraitsForGDEFClass(class int) Traits {
	switch class {
	case GDEFClassBase:
		return TraitBase
	case GDEFClassLigature:
		return TraitLigature
	case GDEFClassMark:
		return TraitMark
	default:
		return TraitNone
	}
}
