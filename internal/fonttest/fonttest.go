// Package fonttest assembles synthetic OpenType GSUB/GPOS byte tables
// for use in this module's tests. Every builder returns a self-contained
// []byte with all offsets already resolved, so a test can hand the
// result straight to the shape package's parsers without touching a
// real font file.
//
// Grounded on the teacher's harfbuzz-tests/runner_test.go (concrete
// byte buffers built and fed straight into the engine) and on the
// inline putU16/coverageFmt1/classDefFmt1 helpers visible across the
// pack's other OpenType test files.
package fonttest

import "encoding/binary"

// PutU16 writes v as big-endian at offset in b.
func PutU16(b []byte, offset int, v uint16) {
	binary.BigEndian.PutUint16(b[offset:offset+2], v)
}

// PutI16 writes v as big-endian at offset in b.
func PutI16(b []byte, offset int, v int16) {
	PutU16(b, offset, uint16(v))
}

// Coverage1 builds a format-1 Coverage table: a sorted glyph list.
func Coverage1(glyphs ...uint16) []byte {
	out := make([]byte, 4+len(glyphs)*2)
	PutU16(out, 0, 1)
	PutU16(out, 2, uint16(len(glyphs)))
	for i, g := range glyphs {
		PutU16(out, 4+i*2, g)
	}
	return out
}

// CoverageRange is one (Start, End, StartCoverageIndex) record of a
// format-2 Coverage table.
type CoverageRange struct {
	Start, End, StartCoverageIndex uint16
}

// Coverage2 builds a format-2 Coverage table from a set of glyph ranges.
func Coverage2(ranges ...CoverageRange) []byte {
	out := make([]byte, 4+len(ranges)*6)
	PutU16(out, 0, 2)
	PutU16(out, 2, uint16(len(ranges)))
	for i, r := range ranges {
		base := 4 + i*6
		PutU16(out, base, r.Start)
		PutU16(out, base+2, r.End)
		PutU16(out, base+4, r.StartCoverageIndex)
	}
	return out
}

// ClassDef1 builds a format-1 ClassDefinition table: a dense array of
// class values starting at startGlyph.
func ClassDef1(startGlyph uint16, classes ...uint16) []byte {
	out := make([]byte, 6+len(classes)*2)
	PutU16(out, 0, 1)
	PutU16(out, 2, startGlyph)
	PutU16(out, 4, uint16(len(classes)))
	for i, c := range classes {
		PutU16(out, 6+i*2, c)
	}
	return out
}

// ClassRange is one (Start, End, Class) record of a format-2
// ClassDefinition table.
type ClassRange struct {
	Start, End, Class uint16
}

// ClassDef2 builds a format-2 ClassDefinition table from a set of glyph
// ranges.
func ClassDef2(ranges ...ClassRange) []byte {
	out := make([]byte, 4+len(ranges)*6)
	PutU16(out, 0, 2)
	PutU16(out, 2, uint16(len(ranges)))
	for i, r := range ranges {
		base := 4 + i*6
		PutU16(out, base, r.Start)
		PutU16(out, base+2, r.End)
		PutU16(out, base+4, r.Class)
	}
	return out
}

// appendTable appends a subtable to buf and returns the offset it was
// written at, growing buf as needed — the shared layout helper every
// builder below uses to place variable-length children after their
// table's fixed header.
func appendTable(buf []byte, data []byte) ([]byte, uint16) {
	offset := uint16(len(buf))
	return append(buf, data...), offset
}

// Lookup builds one Lookup table: type, flag, and a set of subtables
// laid out after the fixed-size header, each offset relative to the
// Lookup table's own start.
func Lookup(lookupType uint16, flag uint16, subtables ...[]byte) []byte {
	headerLen := 6 + len(subtables)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, lookupType)
	PutU16(buf, 2, flag)
	PutU16(buf, 4, uint16(len(subtables)))

	for i, sub := range subtables {
		var offset uint16
		buf, offset = appendTable(buf, sub)
		PutU16(buf, 6+i*2, offset)
	}
	return buf
}

// LookupList builds a LookupList table: a count, an offset array, and
// each Lookup's bytes laid out after it.
func LookupList(lookups ...[]byte) []byte {
	headerLen := 2 + len(lookups)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, uint16(len(lookups)))

	for i, lk := range lookups {
		var offset uint16
		buf, offset = appendTable(buf, lk)
		PutU16(buf, 2+i*2, offset)
	}
	return buf
}

// emptyList is the smallest legal ScriptList/FeatureList table (zero
// entries), used for both lists — this package never
// exercises feature-tag resolution (spec.md §1 names it a
// collaborator's job), so every synthetic GSUB/GPOS table carries
// empty ones and points straight at its LookupList.
var emptyList = []byte{0, 0}

// GSUBTable builds a complete top-level GSUB table: version 1.0,
// empty ScriptList and FeatureList, and lookupList as its LookupList.
func GSUBTable(lookupList []byte) []byte {
	return topLevelTable(lookupList)
}

// GPOSTable builds a complete top-level GPOS table, identical in shape
// to GSUBTable — GSUB and GPOS share the same header layout.
func GPOSTable(lookupList []byte) []byte {
	return topLevelTable(lookupList)
}

func topLevelTable(lookupList []byte) []byte {
	buf := make([]byte, 10)
	PutU16(buf, 0, 1) // majorVersion
	PutU16(buf, 2, 0) // minorVersion

	var off uint16
	buf, off = appendTable(buf, emptyList)
	PutU16(buf, 4, off) // scriptListOffset

	buf, off = appendTable(buf, emptyList)
	PutU16(buf, 6, off) // featureListOffset

	buf, off = appendTable(buf, lookupList)
	PutU16(buf, 8, off) // lookupListOffset

	return buf
}

// --- GSUB subtables ---

// SingleSubstFmt1 builds a GSUB lookup type 1, format 1 subtable: every
// covered glyph is shifted by deltaGlyphID.
func SingleSubstFmt1(coverage []byte, deltaGlyphID int16) []byte {
	buf := make([]byte, 6)
	PutU16(buf, 0, 1)
	PutI16(buf, 4, deltaGlyphID)
	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// SingleSubstFmt2 builds a GSUB lookup type 1, format 2 subtable: one
// explicit substitute per covered glyph, in coverage order.
func SingleSubstFmt2(coverage []byte, substitutes ...uint16) []byte {
	buf := make([]byte, 6+len(substitutes)*2)
	PutU16(buf, 0, 2)
	PutU16(buf, 4, uint16(len(substitutes)))
	for i, s := range substitutes {
		PutU16(buf, 6+i*2, s)
	}
	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// MultipleSubst builds a GSUB lookup type 2 subtable (format 1): each
// covered glyph expands to its corresponding sequence.
func MultipleSubst(coverage []byte, sequences ...[]uint16) []byte {
	headerLen := 6 + len(sequences)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 1)
	PutU16(buf, 4, uint16(len(sequences)))

	for i, seq := range sequences {
		seqBuf := make([]byte, 2+len(seq)*2)
		PutU16(seqBuf, 0, uint16(len(seq)))
		for j, g := range seq {
			PutU16(seqBuf, 2+j*2, g)
		}
		var off uint16
		buf, off = appendTable(buf, seqBuf)
		PutU16(buf, 6+i*2, off)
	}

	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// Ligature is one (ligatureGlyph, components-after-the-first) entry in
// a LigatureSet.
type Ligature struct {
	LigatureGlyph uint16
	Components    []uint16 // glyphs 2..n of the input sequence
}

// LigatureSubst builds a GSUB lookup type 4 subtable (format 1): each
// covered first-component glyph owns a LigatureSet of candidate
// ligatures, tried in order.
func LigatureSubst(coverage []byte, ligatureSets [][]Ligature) []byte {
	headerLen := 6 + len(ligatureSets)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 1)
	PutU16(buf, 4, uint16(len(ligatureSets)))

	for i, set := range ligatureSets {
		setHeaderLen := 2 + len(set)*2
		setBuf := make([]byte, setHeaderLen)
		PutU16(setBuf, 0, uint16(len(set)))
		for j, lig := range set {
			ligBuf := make([]byte, 4+len(lig.Components)*2)
			PutU16(ligBuf, 0, lig.LigatureGlyph)
			PutU16(ligBuf, 2, uint16(len(lig.Components)+1))
			for k, c := range lig.Components {
				PutU16(ligBuf, 4+k*2, c)
			}
			var off uint16
			setBuf, off = appendTable(setBuf, ligBuf)
			PutU16(setBuf, 2+j*2, off)
		}
		var off uint16
		buf, off = appendTable(buf, setBuf)
		PutU16(buf, 6+i*2, off)
	}

	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// LookupRecord is one (sequenceIndex, lookupListIndex) pair used by
// context and chained-context rules.
type LookupRecord struct {
	SequenceIndex    uint16
	LookupListIndex  uint16
}

func putLookupRecords(buf []byte, offset int, records []LookupRecord) {
	for i, r := range records {
		PutU16(buf, offset+i*4, r.SequenceIndex)
		PutU16(buf, offset+i*4+2, r.LookupListIndex)
	}
}

// ChainContextFmt3 builds a GSUB/GPOS lookup type 6/8, format 3
// subtable: three explicit coverage arrays (backtrack, input,
// lookahead) plus the lookup records applied at the matched position.
func ChainContextFmt3(backtrack, input, lookahead [][]byte, records []LookupRecord) []byte {
	headerLen := 2 + 2 + len(backtrack)*2 + 2 + len(input)*2 + 2 + len(lookahead)*2 + 2 + len(records)*4
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 3)
	off := 2
	PutU16(buf, off, uint16(len(backtrack)))
	off += 2
	backtrackOffsetsAt := off
	off += len(backtrack) * 2

	PutU16(buf, off, uint16(len(input)))
	off += 2
	inputOffsetsAt := off
	off += len(input) * 2

	PutU16(buf, off, uint16(len(lookahead)))
	off += 2
	lookaheadOffsetsAt := off
	off += len(lookahead) * 2

	PutU16(buf, off, uint16(len(records)))
	recordsAt := off + 2

	putLookupRecords(buf, recordsAt, records)

	for i, cov := range backtrack {
		var o uint16
		buf, o = appendTable(buf, cov)
		PutU16(buf, backtrackOffsetsAt+i*2, o)
	}
	for i, cov := range input {
		var o uint16
		buf, o = appendTable(buf, cov)
		PutU16(buf, inputOffsetsAt+i*2, o)
	}
	for i, cov := range lookahead {
		var o uint16
		buf, o = appendTable(buf, cov)
		PutU16(buf, lookaheadOffsetsAt+i*2, o)
	}

	return buf
}

// ContextFmt3 builds a GSUB/GPOS lookup type 5/7, format 3 subtable: an
// explicit coverage array for the input sequence plus the lookup
// records applied at the matched position.
func ContextFmt3(input [][]byte, records []LookupRecord) []byte {
	headerLen := 6 + len(input)*2 + len(records)*4
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 3)
	PutU16(buf, 2, uint16(len(input)))
	PutU16(buf, 4, uint16(len(records)))

	inputOffsetsAt := 6
	recordsAt := 6 + len(input)*2
	putLookupRecords(buf, recordsAt, records)

	for i, cov := range input {
		var o uint16
		buf, o = appendTable(buf, cov)
		PutU16(buf, inputOffsetsAt+i*2, o)
	}
	return buf
}

// ReverseChainSingleSubst builds a GSUB lookup type 8, format 1
// subtable: input coverage, explicit backtrack and lookahead coverage
// arrays (each read in the order the engine walks them, backtrack
// nearest-first), and a flat substitute-glyph-id array indexed by the
// input glyph's coverage position.
func ReverseChainSingleSubst(coverage []byte, backtrack, lookahead [][]byte, substitutes []uint16) []byte {
	headerLen := 2 + 2 + 2 + len(backtrack)*2 + 2 + len(lookahead)*2 + 2 + len(substitutes)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 1)

	coverageAt := 2
	off := 4
	PutU16(buf, off, uint16(len(backtrack)))
	backtrackOffsetsAt := off + 2
	off = backtrackOffsetsAt + len(backtrack)*2

	PutU16(buf, off, uint16(len(lookahead)))
	lookaheadOffsetsAt := off + 2
	off = lookaheadOffsetsAt + len(lookahead)*2

	PutU16(buf, off, uint16(len(substitutes)))
	substitutesAt := off + 2
	for i, s := range substitutes {
		PutU16(buf, substitutesAt+i*2, s)
	}

	var o uint16
	buf, o = appendTable(buf, coverage)
	PutU16(buf, coverageAt, o)

	for i, cov := range backtrack {
		buf, o = appendTable(buf, cov)
		PutU16(buf, backtrackOffsetsAt+i*2, o)
	}
	for i, cov := range lookahead {
		buf, o = appendTable(buf, cov)
		PutU16(buf, lookaheadOffsetsAt+i*2, o)
	}

	return buf
}

// --- GPOS subtables ---

// ValueFormat bits, mirroring shape.valueFormat*.
const (
	VFXPlacement = 0x0001
	VFYPlacement = 0x0002
	VFXAdvance   = 0x0004
	VFYAdvance   = 0x0008
)

// ValueRecord builds a ValueRecord's bytes for exactly the fields named
// in format, in OpenType field order (device-table fields unsupported,
// matching shape.parseValueRecord).
func ValueRecord(format uint16, xPlacement, yPlacement, xAdvance, yAdvance int16) []byte {
	var buf []byte
	put := func(bit uint16, v int16) {
		if format&bit != 0 {
			b := make([]byte, 2)
			PutI16(b, 0, v)
			buf = append(buf, b...)
		}
	}
	put(VFXPlacement, xPlacement)
	put(VFYPlacement, yPlacement)
	put(VFXAdvance, xAdvance)
	put(VFYAdvance, yAdvance)
	return buf
}

// SinglePosFmt1 builds a GPOS lookup type 1, format 1 subtable: one
// ValueRecord applied to every covered glyph.
func SinglePosFmt1(coverage []byte, valueFormat uint16, value []byte) []byte {
	buf := make([]byte, 6)
	PutU16(buf, 0, 1)
	PutU16(buf, 4, valueFormat)
	buf = append(buf, value...)
	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// PairSet is one covered first-glyph's candidate second glyphs for a
// GPOS lookup type 2, format 1 subtable.
type PairSet struct {
	SecondGlyph uint16
	Value1      []byte
	Value2      []byte
}

// PairPosFmt1 builds a GPOS lookup type 2, format 1 subtable: explicit
// per-pair ValueRecords, grouped by first glyph in coverage order.
func PairPosFmt1(coverage []byte, valueFormat1, valueFormat2 uint16, pairSets [][]PairSet) []byte {
	headerLen := 10 + len(pairSets)*2
	buf := make([]byte, headerLen)
	PutU16(buf, 0, 1)
	PutU16(buf, 4, valueFormat1)
	PutU16(buf, 6, valueFormat2)
	PutU16(buf, 8, uint16(len(pairSets)))

	for i, set := range pairSets {
		setBuf := make([]byte, 2)
		PutU16(setBuf, 0, uint16(len(set)))
		for _, ps := range set {
			rec := make([]byte, 2)
			PutU16(rec, 0, ps.SecondGlyph)
			rec = append(rec, ps.Value1...)
			rec = append(rec, ps.Value2...)
			setBuf = append(setBuf, rec...)
		}
		var off uint16
		buf, off = appendTable(buf, setBuf)
		PutU16(buf, 10+i*2, off)
	}

	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	return buf
}

// PairPosFmt2 builds a GPOS lookup type 2, format 2 subtable: a
// class1 x class2 matrix of ValueRecord pairs.
func PairPosFmt2(coverage, classDef1, classDef2 []byte, valueFormat1, valueFormat2 uint16, class1Count, class2Count int, cells [][2][]byte) []byte {
	buf := make([]byte, 16)
	PutU16(buf, 0, 2)
	PutU16(buf, 12, uint16(class1Count))
	PutU16(buf, 14, uint16(class2Count))

	for _, cell := range cells {
		buf = append(buf, cell[0]...)
		buf = append(buf, cell[1]...)
	}

	var off uint16
	buf, off = appendTable(buf, coverage)
	PutU16(buf, 2, off)
	buf, off = appendTable(buf, classDef1)
	PutU16(buf, 8, off)
	buf, off = appendTable(buf, classDef2)
	PutU16(buf, 10, off)
	PutU16(buf, 4, valueFormat1)
	PutU16(buf, 6, valueFormat2)
	return buf
}

// Anchor builds a format-1 Anchor table (plain x, y coordinates).
func Anchor(x, y int16) []byte {
	buf := make([]byte, 6)
	PutU16(buf, 0, 1)
	PutI16(buf, 2, x)
	PutI16(buf, 4, y)
	return buf
}

// MarkRecord is one mark's (class, anchor) pair in a MarkArray.
type MarkRecord struct {
	Class  uint16
	Anchor []byte
}

func markArray(records []MarkRecord) []byte {
	headerLen := 2 + len(records)*4
	buf := make([]byte, headerLen)
	PutU16(buf, 0, uint16(len(records)))
	for i, r := range records {
		PutU16(buf, 2+i*4, r.Class)
		var off uint16
		buf, off = appendTable(buf, r.Anchor)
		PutU16(buf, 2+i*4+2, off)
	}
	return buf
}

// MarkBasePos builds a GPOS lookup type 4 subtable: markCoverage,
// baseCoverage, a MarkArray, and a BaseArray of anchors indexed
// [baseCoverageIndex][markClass].
func MarkBasePos(markCoverage, baseCoverage []byte, marks []MarkRecord, classCount int, baseAnchors [][]([]byte)) []byte {
	buf := make([]byte, 12)
	PutU16(buf, 0, 1)
	PutU16(buf, 6, uint16(classCount))

	baseHeaderLen := 2 + len(baseAnchors)*classCount*2
	baseBuf := make([]byte, baseHeaderLen)
	PutU16(baseBuf, 0, uint16(len(baseAnchors)))
	for i, row := range baseAnchors {
		for j, a := range row {
			cellOffset := 2 + (i*classCount+j)*2
			if a == nil {
				continue
			}
			var off uint16
			baseBuf, off = appendTable(baseBuf, a)
			PutU16(baseBuf, cellOffset, off)
		}
	}

	var off uint16
	buf, off = appendTable(buf, markCoverage)
	PutU16(buf, 2, off)
	buf, off = appendTable(buf, baseCoverage)
	PutU16(buf, 4, off)
	buf, off = appendTable(buf, markArray(marks))
	PutU16(buf, 8, off)
	buf, off = appendTable(buf, baseBuf)
	PutU16(buf, 10, off)
	return buf
}
