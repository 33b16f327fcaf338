package salary

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		unit Unit
		want Range
		ok   bool
	}{
		{"annual range", "$50,000 - $70,000", UnitUnknown, Range{50000, 70000}, true},
		{"hourly single", "$20/hr", UnitUnknown, Range{41600, 41600}, true},
		{"below floor", "$5", UnitUnknown, Range{}, false},
		{"k shorthand range", "80k-100k", UnitUnknown, Range{80000, 100000}, true},
		{"hourly range", "$20 - $25 per hour", UnitUnknown, Range{41600, 52000}, true},
		{"hourly via hint", "20-25", UnitHourly, Range{41600, 52000}, true},
		{"single annual", "$95,000/yr", UnitUnknown, Range{95000, 95000}, true},
		{"out of range high", "$2,000,000", UnitUnknown, Range{}, false},
		{"mixed in and out of range", "$900 signing bonus, $60,000 base", UnitUnknown, Range{60000, 60000}, true},
		{"retirement plan ignored", "benefits include 401k matching", UnitUnknown, Range{}, false},
		{"retirement plan beside salary", "401(k), $55,000 - $65,000", UnitUnknown, Range{55000, 65000}, true},
		{"no numbers", "competitive salary", UnitUnknown, Range{}, false},
		{"empty", "", UnitUnknown, Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text, tt.unit)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseOrdersBounds(t *testing.T) {
	// Max listed first must still come back as (min, max).
	got, ok := Parse("$70,000 to $50,000", UnitUnknown)
	if !ok {
		t.Fatal("expected a range")
	}
	if got.Min != 50000 || got.Max != 70000 {
		t.Errorf("got %+v, want {50000 70000}", got)
	}
}

func TestFromBounds(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name string
		min  *int
		max  *int
		unit Unit
		want Range
		ok   bool
	}{
		{"both present", intp(50000), intp(70000), UnitAnnual, Range{50000, 70000}, true},
		{"min only", intp(60000), nil, UnitAnnual, Range{60000, 60000}, true},
		{"zero treated as absent", intp(0), intp(0), UnitAnnual, Range{}, false},
		{"both nil", nil, nil, UnitAnnual, Range{}, false},
		{"hourly converted", intp(20), intp(25), UnitHourly, Range{41600, 52000}, true},
		{"implausible dropped", intp(12), intp(80000), UnitAnnual, Range{80000, 80000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromBounds(tt.min, tt.max, tt.unit)
			if ok != tt.ok {
				t.Fatalf("FromBounds ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("FromBounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}
