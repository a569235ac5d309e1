package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPatternRejectsEmptyUnits(t *testing.T) {
	_, err := NewPattern(nil)
	assert.ErrorIs(t, err, ErrEmptyPattern)
}

func TestNewPatternRejectsUnitWithNoLookups(t *testing.T) {
	_, err := NewPattern([]FeatureUnit{{Table: TableGSUB}})
	assert.ErrorIs(t, err, ErrBadFeatureUnit)
}

func TestNewPatternRejectsNegativeLookupIndex(t *testing.T) {
	_, err := NewPattern([]FeatureUnit{{Table: TableGSUB, LookupIndexes: []int{-1}}})
	assert.ErrorIs(t, err, ErrBadFeatureUnit)
}

func TestNewPatternSortsLookupIndexesAndAssignsMasks(t *testing.T) {
	pat, err := NewPattern([]FeatureUnit{
		{Table: TableGSUB, LookupIndexes: []int{3, 1, 2}},
		{Table: TableGPOS, LookupIndexes: []int{0}},
		{Table: TableGSUB, LookupIndexes: []int{5}},
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, pat.gsubUnits[0].lookupIndexes)
	assert.Equal(t, uint16(1), pat.gsubUnits[0].mask)
	assert.Equal(t, uint16(2), pat.gsubUnits[1].mask, "the second GSUB unit gets the next GSUB bit, not the GPOS one")
	assert.Equal(t, uint16(1), pat.gposUnits[0].mask, "GSUB and GPOS mask spaces are independent")
}

func TestNewPatternRejectsTooManyUnitsPerTable(t *testing.T) {
	units := make([]FeatureUnit, 0, maxFeatureUnits+1)
	for i := 0; i <= maxFeatureUnits; i++ {
		units = append(units, FeatureUnit{Table: TableGSUB, LookupIndexes: []int{i}})
	}
	_, err := NewPattern(units)
	assert.ErrorIs(t, err, ErrBadFeatureUnit)
}

func TestNewPatternRejectsUnknownTableKind(t *testing.T) {
	_, err := NewPattern([]FeatureUnit{{Table: TableKind(99), LookupIndexes: []int{0}}})
	assert.ErrorIs(t, err, ErrBadFeatureUnit)
}
