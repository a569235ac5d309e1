package shape

// notFound is returned by coverage and class-definition lookups when a
// glyph is not present. It doubles as the "invalid index" sentinel the
// spec calls SFInvalidIndex.
const notFound = -1

// coverage wraps a parsed OpenType Coverage table (format 1: sorted
// glyph list; format 2: sorted (start, end, startCoverageIndex)
// ranges). Grounded on the teacher's Coverage/ParseCoverage in
// ot/gsub.go, generalized to return -1 instead of a NotCovered sentinel
// constant so it composes with the rest of this package's int-index
// conventions.
type coverage struct {
	v      view
	format uint16
}

func parseCoverageAt(base view, offset int) coverage {
	v := base.sub(offset)
	format, ok := v.u16(0)
	if !ok {
		return coverage{}
	}
	return coverage{v: v, format: format}
}

// index returns the covered index of glyph, or notFound. Both formats
// are sorted, so a binary search resolves each in O(log n).
func (c coverage) index(glyph uint16) int {
	switch c.format {
	case 1:
		return c.indexFormat1(glyph)
	case 2:
		return c.indexFormat2(glyph)
	default:
		return notFound
	}
}

func (c coverage) indexFormat1(glyph uint16) int {
	count, ok := c.v.u16(2)
	if !ok {
		return notFound
	}
	lo, hi := 0, int(count)
	for lo < hi {
		mid := (lo + hi) / 2
		g, ok := c.v.u16(4 + mid*2)
		if !ok {
			return notFound
		}
		switch {
		case glyph < g:
			hi = mid
		case glyph > g:
			lo = mid + 1
		default:
			return mid
		}
	}
	return notFound
}

func (c coverage) indexFormat2(glyph uint16) int {
	count, ok := c.v.u16(2)
	if !ok {
		return notFound
	}
	lo, hi := 0, int(count)
	for lo < hi {
		mid := (lo + hi) / 2
		base := 4 + mid*6
		start, ok1 := c.v.u16(base)
		end, ok2 := c.v.u16(base + 2)
		startIndex, ok3 := c.v.u16(base + 4)
		if !ok1 || !ok2 || !ok3 {
			return notFound
		}
		switch {
		case glyph < start:
			hi = mid
		case glyph > end:
			lo = mid + 1
		default:
			// Ties in ranges resolved by containing range.
			return int(startIndex) + int(glyph-start)
		}
	}
	return notFound
}

// glyphs enumerates every glyph covered, in coverage-index order. Used
// by callers that need the reverse mapping (index -> glyph), e.g. when
// diagnosing a subtable; not on the engine's hot path.
func (c coverage) glyphs() []uint16 {
	switch c.format {
	case 1:
		count, ok := c.v.u16(2)
		if !ok {
			return nil
		}
		out := make([]uint16, 0, count)
		for i := 0; i < int(count); i++ {
			g, ok := c.v.u16(4 + i*2)
			if !ok {
				break
			}
			out = append(out, g)
		}
		return out
	case 2:
		count, ok := c.v.u16(2)
		if !ok {
			return nil
		}
		var out []uint16
		for i := 0; i < int(count); i++ {
			base := 4 + i*6
			start, ok1 := c.v.u16(base)
			end, ok2 := c.v.u16(base + 2)
			if !ok1 || !ok2 {
				break
			}
			for g := start; g <= end; g++ {
				out = append(out, g)
				if g == 0xFFFF {
					break
				}
			}
		}
		return out
	default:
		return nil
	}
}

// classDef wraps a parsed OpenType ClassDefinition table (format 1:
// dense array keyed on glyphID-startGlyph; format 2: range records).
// Grounded on the teacher's ClassDef/ParseClassDef/GetClass in
// ot/gpos.go.
type classDef struct {
	v      view
	format uint16
}

func parseClassDefAt(base view, offset int) classDef {
	v := base.sub(offset)
	format, ok := v.u16(0)
	if !ok {
		return classDef{}
	}
	return classDef{v: v, format: format}
}

// class returns the class id of glyph, defaulting to 0 when the glyph
// is outside the table's range or the table itself is malformed.
func (c classDef) class(glyph uint16) int {
	switch c.format {
	case 1:
		return c.classFormat1(glyph)
	case 2:
		return c.classFormat2(glyph)
	default:
		return 0
	}
}

func (c classDef) classFormat1(glyph uint16) int {
	startGlyph, ok := c.v.u16(2)
	if !ok {
		return 0
	}
	count, ok := c.v.u16(4)
	if !ok {
		return 0
	}
	if glyph < startGlyph || int(glyph-startGlyph) >= int(count) {
		return 0
	}
	cls, ok := c.v.u16(6 + int(glyph-startGlyph)*2)
	if !ok {
		return 0
	}
	return int(cls)
}

func (c classDef) classFormat2(glyph uint16) int {
	count, ok := c.v.u16(2)
	if !ok {
		return 0
	}
	lo, hi := 0, int(count)
	for lo < hi {
		mid := (lo + hi) / 2
		base := 4 + mid*6
		start, ok1 := c.v.u16(base)
		end, ok2 := c.v.u16(base + 2)
		cls, ok3 := c.v.u16(base + 4)
		if !ok1 || !ok2 || !ok3 {
			return 0
		}
		switch {
		case glyph < start:
			hi = mid
		case glyph > end:
			lo = mid + 1
		default:
			return int(cls)
		}
	}
	return 0
}
