package shape

// rawLookup is the table-agnostic shape of an OpenType Lookup record:
// a type tag, the OpenType lookup flag, an optional mark-filtering-set
// index, and the byte spans of its subtables. GSUB and GPOS share this
// exact record layout; only subtable *interpretation* differs between
// the two tables, which is why lookup-list parsing lives here once
// instead of being duplicated in gsub.go and gpos.go.
type rawLookup struct {
	lookupType       uint16
	flag             LookupFlag
	markFilteringSet int // -1 if LookupFlagUseMarkFilteringSet is not set
	subtables        []view
}

// parseLookupList reads the LookupList at offset within table (a GSUB
// or GPOS table view) and returns each Lookup's raw fields. A
// malformed list yields as many well-formed entries as could be read,
// matching the engine-wide "skip, don't fail" policy for bad table
// data (spec.md §4.1, §7).
func parseLookupList(table view, offset int) []rawLookup {
	lv := table.sub(offset)
	count, ok := lv.u16(0)
	if !ok {
		return nil
	}

	lookups := make([]rawLookup, 0, count)
	for i := 0; i < int(count); i++ {
		lookupOffset, ok := lv.u16(2 + i*2)
		if !ok {
			break
		}
		lookupView := lv.sub(int(lookupOffset))
		rl, ok := parseRawLookup(lookupView)
		if !ok {
			lookups = append(lookups, rawLookup{})
			continue
		}
		lookups = append(lookups, rl)
	}
	return lookups
}

func parseRawLookup(v view) (rawLookup, bool) {
	lookupType, ok := v.u16(0)
	if !ok {
		return rawLookup{}, false
	}
	flagBits, ok := v.u16(2)
	if !ok {
		return rawLookup{}, false
	}
	subtableCount, ok := v.u16(4)
	if !ok {
		return rawLookup{}, false
	}

	flag := LookupFlag(flagBits)
	rl := rawLookup{lookupType: lookupType, flag: flag, markFilteringSet: -1}

	for i := 0; i < int(subtableCount); i++ {
		subOffset, ok := v.u16(6 + i*2)
		if !ok {
			break
		}
		rl.subtables = append(rl.subtables, v.sub(int(subOffset)))
	}

	if flag&LookupFlagUseMarkFilteringSet != 0 {
		if mfs, ok := v.u16(6 + int(subtableCount)*2); ok {
			rl.markFilteringSet = int(mfs)
		}
	}

	return rl, true
}
