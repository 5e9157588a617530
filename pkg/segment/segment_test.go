package segment

import "testing"

func TestLookupDigits(t *testing.T) {
	tests := []struct {
		digit Digit
		want  string // A..G
	}{
		{0, "1111110"},
		{1, "0110000"},
		{2, "1101101"},
		{3, "1111001"},
		{4, "0110011"},
		{5, "1011011"},
		{6, "1011111"},
		{7, "1110000"},
		{8, "1111111"},
		{9, "1111011"},
		{Blank, "0000001"},
	}

	for _, tt := range tests {
		got := patternString(Lookup(tt.digit))
		if got != tt.want {
			t.Errorf("Lookup(%v) = %s, want %s", tt.digit, got, tt.want)
		}
	}
}

func TestLookupOutOfRangeIsDash(t *testing.T) {
	dash := Lookup(Blank)
	for _, d := range []Digit{11, 12, 42, 200, 255} {
		if got := Lookup(d); got != dash {
			t.Errorf("Lookup(%d) = %s, want dash %s", d, patternString(got), patternString(dash))
		}
	}
}

func TestDashIsNotAllOff(t *testing.T) {
	if Lookup(Blank) == (Pattern{}) {
		t.Fatal("blank pattern must not be all segments off")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n          int
		tens, ones Digit
	}{
		{0, 0, 0},
		{7, 0, 7},
		{14, 1, 4},
		{59, 5, 9},
		{99, 9, 9},
		{-1, Blank, Blank},
		{100, Blank, Blank},
	}
	for _, tt := range tests {
		tens, ones := Split(tt.n)
		if tens != tt.tens || ones != tt.ones {
			t.Errorf("Split(%d) = (%v,%v), want (%v,%v)", tt.n, tens, ones, tt.tens, tt.ones)
		}
	}
}

func TestDigitString(t *testing.T) {
	if Digit(3).String() != "3" {
		t.Errorf("Digit(3).String() = %q", Digit(3).String())
	}
	if Blank.String() != "-" {
		t.Errorf("Blank.String() = %q", Blank.String())
	}
	if !Blank.Valid() || Digit(11).Valid() {
		t.Error("Valid() range wrong")
	}
}

func patternString(p Pattern) string {
	b := make([]byte, len(p))
	for i, on := range p {
		if on {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}
