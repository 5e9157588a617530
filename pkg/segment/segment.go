// Package segment maps tube digit values to seven-segment line patterns.
package segment

import "strconv"

// Digit is the value shown by one tube: 0-9 or Blank.
type Digit uint8

// Blank renders as a dash so "no time" never looks like a zero.
const Blank Digit = 10

// Segment indexes into a Pattern, A through G.
type Segment uint8

const (
	SegA Segment = iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG

	Count = 7
)

// Pattern is the on/off state of segments A..G.
type Pattern [Count]bool

// table is ordered [A,B,C,D,E,F,G]; index 10 is the dash.
var table = [11]Pattern{
	{true, true, true, true, true, true, false},      // 0
	{false, true, true, false, false, false, false},  // 1
	{true, true, false, true, true, false, true},     // 2
	{true, true, true, true, false, false, true},     // 3
	{false, true, true, false, false, true, true},    // 4
	{true, false, true, true, false, true, true},     // 5
	{true, false, true, true, true, true, true},      // 6
	{true, true, true, false, false, false, false},   // 7
	{true, true, true, true, true, true, true},       // 8
	{true, true, true, true, false, true, true},      // 9
	{false, false, false, false, false, false, true}, // dash
}

// Lookup returns the segment pattern for d.
// Blank and any out-of-range value yield the dash pattern.
func Lookup(d Digit) Pattern {
	if d > Blank {
		d = Blank
	}
	return table[d]
}

// Valid reports whether d is 0-9 or Blank.
func (d Digit) Valid() bool {
	return d <= Blank
}

func (d Digit) String() string {
	if d >= Blank {
		return "-"
	}
	return strconv.Itoa(int(d))
}

// Split returns the tens and ones digits of n (0-99).
// Values outside that range come back as two Blanks.
func Split(n int) (tens, ones Digit) {
	if n < 0 || n > 99 {
		return Blank, Blank
	}
	return Digit(n / 10), Digit(n % 10)
}
