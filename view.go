package shape

import "encoding/binary"

// view is a bounds-checked, big-endian reader over a slice of an
// OpenType table. All offsets are relative to the view's own base,
// matching the OpenType convention that subtable offsets are relative
// to the start of their containing table.
type view struct {
	data []byte
}

func newView(data []byte) view {
	return view{data: data}
}

// sub forms a subview at offset, the Go equivalent of the spec's
// "(base, offset) pair into the font byte buffer with explicit subview
// formation". An offset that walks outside the buffer yields an empty
// view rather than panicking — every reader on an empty view reports
// failure, so a malformed offset degrades to "subtable did not apply"
// without special-casing at each call site.
func (v view) sub(offset int) view {
	if offset < 0 || offset > len(v.data) {
		return view{}
	}
	return view{data: v.data[offset:]}
}

func (v view) len() int {
	return len(v.data)
}

func (v view) u8(offset int) (uint8, bool) {
	if offset < 0 || offset+1 > len(v.data) {
		return 0, false
	}
	return v.data[offset], true
}

func (v view) u16(offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(v.data) {
		return 0, false
	}
	return binary.BigEndian.Uint16(v.data[offset:]), true
}

func (v view) i16(offset int) (int16, bool) {
	u, ok := v.u16(offset)
	return int16(u), ok
}

func (v view) u32(offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(v.data) {
		return 0, false
	}
	return binary.BigEndian.Uint32(v.data[offset:]), true
}

// u16Or0 reads a u16 and treats a missing value as 0 — used for the
// many "defaults to 0 when absent" table fields in OpenType (e.g. a
// class default is 0, a missing count is 0 glyphs covered).
func (v view) u16Or0(offset int) uint16 {
	u, _ := v.u16(offset)
	return u
}

func (v view) u8Or0(offset int) uint8 {
	u, _ := v.u8(offset)
	return u
}
