// Package daterange holds the stay-range rules shared by room availability
// and booking conflict checks.
package daterange

import (
	"time"

	"github.com/Masterminds/squirrel"
)

// Range is a stay from CheckIn to CheckOut, both calendar dates.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both ends to UTC midnight.
func New(checkIn, checkOut time.Time) Range {
	return Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// Day drops the clock part of t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether check-out is strictly after check-in.
func (r Range) Valid() bool {
	return r.CheckOut.After(r.CheckIn)
}

// Nights is the number of nights in the stay.
func (r Range) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps uses inclusive bounds: a stay ending on the day another starts conflicts with it.
func (r Range) Overlaps(other Range) bool {
	return !r.CheckIn.After(other.CheckOut) && !r.CheckOut.Before(other.CheckIn)
}

// OverlapCond is the SQL form of Overlaps for rows whose stay is stored in
// checkInCol/checkOutCol.
func OverlapCond(checkInCol, checkOutCol string, r Range) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.LtOrEq{checkInCol: r.CheckOut},
		squirrel.GtOrEq{checkOutCol: r.CheckIn},
	}
}
