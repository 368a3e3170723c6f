package models

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTime(t *testing.T) {
	parsed := DrawRecord{Date: "2023-05-10"}.DateTime()
	require.NotNil(t, parsed)
	assert.Equal(t, 2023, parsed.Year())
	assert.Equal(t, 10, parsed.Day())

	assert.Nil(t, DrawRecord{Date: "May 10, 2023"}.DateTime())
	assert.Nil(t, DrawRecord{}.DateTime())
}

func TestSortDraws(t *testing.T) {
	records := []DrawRecord{
		{Number: 4, Date: "2023-02-15"},
		{Number: 9, Date: "2023-06-01"},
		{Number: 6, Date: "2023-02-15"},
		{Number: 1, Date: "2023-01-10"},
	}

	SortDraws(records)

	numbers := make([]int, len(records))
	for i, r := range records {
		numbers[i] = r.Number
	}
	assert.Equal(t, []int{9, 6, 4, 1}, numbers)
}

func TestSortDrawsOrdering(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genRecord := gopter.CombineGens(
		gen.IntRange(1, 500),
		gen.IntRange(0, 3650),
	).Map(func(values []interface{}) DrawRecord {
		day := values[1].(int)
		return DrawRecord{
			Number: values[0].(int),
			Date:   dateFromOffset(day),
		}
	})

	properties.Property("sorted output is date descending with number breaking ties", prop.ForAll(
		func(records []DrawRecord) bool {
			SortDraws(records)
			for i := 1; i < len(records); i++ {
				previous, current := records[i-1], records[i]
				if previous.Date < current.Date {
					return false
				}
				if previous.Date == current.Date && previous.Number < current.Number {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord),
	))

	properties.TestingRun(t)
}

func dateFromOffset(days int) string {
	base := DrawRecord{Date: "2015-01-01"}.DateTime()
	return base.AddDate(0, 0, days).Format("2006-01-02")
}
