package shape

// maxFeatureUnits bounds the number of feature units a single Pattern
// can carry — each gets its own bit in a glyph's uint16 feature mask
// (Album.featureMask), so 16 is a hard ceiling, not a tuning knob.
const maxFeatureUnits = 16

// TableKind names which of the two lookup tables a FeatureUnit's
// LookupIndexes are drawn from.
type TableKind int

const (
	TableGSUB TableKind = iota
	TableGPOS
)

// FeatureUnit is one feature's contribution to a shaping Pattern: the
// text range it covers, the glyph traits a glyph must carry to be
// eligible for it, and the ordered lookup indices it runs. This is the
// pre-resolved shape a feature-tag-to-pattern compiler (spec.md §1's
// "external collaborator") would hand to NewPattern — this package
// never itself interprets a feature tag.
type FeatureUnit struct {
	Table          TableKind
	CoveredRange   Range
	RequiredTraits Traits
	LookupIndexes  []int
}

// compiledFeatureUnit is a FeatureUnit after NewPattern has sorted its
// lookup indices and assigned it a feature-mask bit.
type compiledFeatureUnit struct {
	coveredRange   Range
	requiredTraits Traits
	lookupIndexes  []int
	mask           uint16
}

// Direction is the artist's text direction for a Pattern: which way
// GSUB lookup type 8's reverse-chaining subtables sweep (always
// right-to-left regardless of Direction — see applyGSUBLookup) and,
// at Shape's wrap-up stage, whether the finished Album is mirrored
// into visual order.
type Direction int

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

// Pattern is an immutable, compiled shaping plan: the feature units
// that run during the GSUB phase, in order, followed by those that run
// during the GPOS phase. Construction does all the sorting and
// validation; applying a Pattern never fails.
//
// Grounded on original_source/Source/SFScheme.c's output shape (feature
// units split into a GSUB prefix and a GPOS suffix with fixed lookup
// order) — not on SFScheme.c's feature-tag resolution logic itself,
// which stays out of scope (see SPEC_FULL.md §4.7).
type Pattern struct {
	gsubUnits []compiledFeatureUnit
	gposUnits []compiledFeatureUnit

	// Direction defaults to DirectionLTR. Kept as a plain field set
	// after NewPattern, not a constructor argument — a caller typically
	// only knows the run's direction once a higher-level bidi pass (out
	// of scope here, see SPEC_FULL.md §1) has resolved it, which can
	// happen well after the lookup set itself is compiled.
	Direction Direction
}

// SetDirection records the artist's direction for this Pattern.
func (p *Pattern) SetDirection(d Direction) {
	p.Direction = d
}

// NewPattern compiles units into a Pattern. Each unit's LookupIndexes
// is copied and sorted ascending; units are assigned feature-mask bits
// in the order given, GSUB units and GPOS units counted separately
// against maxFeatureUnits since the two tables tag glyphs with
// independent mask spaces via separate Locator.SetFeatureMask calls
// during their own phase.
func NewPattern(units []FeatureUnit) (*Pattern, error) {
	if len(units) == 0 {
		return nil, ErrEmptyPattern
	}

	p := &Pattern{}
	var gsubBit, gposBit uint

	for _, u := range units {
		if len(u.LookupIndexes) == 0 {
			return nil, ErrBadFeatureUnit
		}
		indexes := append([]int(nil), u.LookupIndexes...)
		sortInts(indexes)
		for _, li := range indexes {
			if li < 0 {
				return nil, ErrBadFeatureUnit
			}
		}

		switch u.Table {
		case TableGSUB:
			if gsubBit >= maxFeatureUnits {
				return nil, ErrBadFeatureUnit
			}
			p.gsubUnits = append(p.gsubUnits, compiledFeatureUnit{
				coveredRange:   u.CoveredRange,
				requiredTraits: u.RequiredTraits,
				lookupIndexes:  indexes,
				mask:           1 << gsubBit,
			})
			gsubBit++
		case TableGPOS:
			if gposBit >= maxFeatureUnits {
				return nil, ErrBadFeatureUnit
			}
			p.gposUnits = append(p.gposUnits, compiledFeatureUnit{
				coveredRange:   u.CoveredRange,
				requiredTraits: u.RequiredTraits,
				lookupIndexes:  indexes,
				mask:           1 << gposBit,
			})
			gposBit++
		default:
			return nil, ErrBadFeatureUnit
		}
	}

	return p, nil
}

// sortInts is a small insertion sort: feature units rarely carry more
// than a handful of lookup indices, so sort.Ints's overhead isn't worth
// pulling in a second import for this one call site.
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
