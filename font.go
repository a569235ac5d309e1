package shape

import "log/slog"

// Layout selects horizontal or vertical metrics for AdvanceForGlyph.
type Layout int

const (
	LayoutHorizontal Layout = iota
	LayoutVertical
)

// Font is the immutable set of font resources the shaping core reads
// from: indexed views onto GDEF/GSUB/GPOS, plus the two callbacks only
// the caller can answer (codepoint-to-glyph mapping and glyph advance
// widths). Font parsing beyond indexed table access — cmap format
// dispatch, outline decoding, table directory discovery — is a
// collaborator's job, not this package's; Font only ever receives
// already-sliced table spans.
type Font struct {
	gdefData []byte
	gsubData []byte
	gposData []byte

	gdef *GDEF
	gsub *GSUB
	gpos *GPOS

	// GlyphForCodepoint maps a Unicode codepoint to a glyph id, or 0
	// if the font does not contain it.
	GlyphForCodepoint func(cp rune) uint16

	// AdvanceForGlyph returns a glyph's advance width in font units
	// for the given layout direction.
	AdvanceForGlyph func(layout Layout, glyph uint16) int32

	// Logger receives Debug-level diagnostics about skipped malformed
	// or unsupported subtables. A nil Logger means silence — the
	// engine never requires one to function.
	Logger *slog.Logger
}

// NewFont builds a Font from raw GDEF/GSUB/GPOS table spans (any of
// which may be nil or empty, meaning absent) and the two required
// callbacks.
func NewFont(gdefData, gsubData, gposData []byte, glyphForCodepoint func(rune) uint16, advanceForGlyph func(Layout, uint16) int32) (*Font, error) {
	if glyphForCodepoint == nil || advanceForGlyph == nil {
		return nil, ErrInvalidFont
	}

	f := &Font{
		gdefData:          gdefData,
		gsubData:          gsubData,
		gposData:          gposData,
		GlyphForCodepoint: glyphForCodepoint,
		AdvanceForGlyph:   advanceForGlyph,
	}

	f.gdef = NewGDEF(gdefData)
	if len(gsubData) > 0 {
		g, err := parseGSUB(gsubData)
		if err != nil {
			return nil, err
		}
		f.gsub = g
	}
	if len(gposData) > 0 {
		g, err := parseGPOS(gposData)
		if err != nil {
			return nil, err
		}
		f.gpos = g
	}

	return f, nil
}

// logDebug emits a Debug-level diagnostic if a Logger is attached.
// Malformed-table and unsupported-format conditions are expected,
// silent-skip outcomes (spec.md §7) — never logged above Debug.
func (f *Font) logDebug(msg string, args ...any) {
	if f == nil || f.Logger == nil {
		return
	}
	f.Logger.Debug(msg, args...)
}
