package shape

import "errors"

// Construction-time errors. Nothing past construction (Font, Pattern)
// ever returns an error: once a shaping request is accepted, it runs
// to completion. Malformed subtables and unsupported formats are not
// errors at all — they make the owning lookup report "did not apply"
// (see view.go, gsub.go, gpos.go).
var (
	// ErrInvalidFont is returned by NewFont when a required table span
	// cannot possibly be valid (e.g. non-empty but shorter than any
	// legal OpenType table header).
	ErrInvalidFont = errors.New("shape: invalid font table data")

	// ErrEmptyPattern is returned by NewPattern when no feature units
	// are supplied — a Pattern with nothing to apply is a caller bug,
	// not a shaping outcome.
	ErrEmptyPattern = errors.New("shape: pattern has no feature units")

	// ErrBadFeatureUnit is returned by NewPattern when a feature unit's
	// lookup indices are not consistent with its declared table.
	ErrBadFeatureUnit = errors.New("shape: feature unit has invalid lookup indices")
)

// maxGlyphCount bounds Album growth. OpenType shaping is driven by
// glyphCount x lookupCount in the worst case; a caller feeding in an
// unbounded run (or a malicious font causing runaway ligature/multiple
// substitution growth) must be stopped rather than left to exhaust
// memory silently.
const maxGlyphCount = 1 << 20

// abort panics with a diagnostic. Used exclusively for contract
// violations — Locator/Album version mismatches, double-use of a
// stale cursor, resource exhaustion — never for malformed font data,
// which is always recoverable (see view.go).
func abort(msg string) {
	panic("shape: " + msg)
}
