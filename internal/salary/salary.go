// Package salary turns free-text or structured salary hints into a bounded
// annual USD range. Every source funnels through the same conversion and
// sanity policy here, whatever its extraction front-end looks like.
package salary

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit hints how extracted numbers should be interpreted when the text
// itself does not say.
type Unit int

const (
	UnitUnknown Unit = iota
	UnitHourly
	UnitAnnual
)

// Annual salaries outside this window are treated as extraction noise
// (years, zip codes, headcounts) and discarded.
const (
	MinAnnual = 10_000
	MaxAnnual = 500_000
)

// Full-time assumption used to annualize hourly figures.
const hoursPerYear = 40 * 52

// Range is an annualized salary span. Min == Max when only one figure was
// stated.
type Range struct {
	Min int
	Max int
}

// numberPattern matches comma-grouped integers, plain decimals, and "k"
// shorthand ("80k"). The k must follow the digits immediately.
var numberPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)(k|K)?`)

// retirementPattern strips 401(k) mentions, which would otherwise tokenize
// as a plausible $401,000 salary.
var retirementPattern = regexp.MustCompile(`401\s?\(?k\)?`)

var hourlyMarkers = []string{"/hr", "/hour", "per hour", "hourly", "an hour"}

// Parse extracts salary figures from free text and normalizes them into an
// annual range. Returns ok=false when no in-window figure survives.
func Parse(text string, unit Unit) (Range, bool) {
	if text == "" {
		return Range{}, false
	}

	lower := strings.ToLower(text)
	lower = retirementPattern.ReplaceAllString(lower, "")

	hourly := unit == UnitHourly
	if unit == UnitUnknown {
		for _, marker := range hourlyMarkers {
			if strings.Contains(lower, marker) {
				hourly = true
				break
			}
		}
	}

	var values []int
	for _, m := range numberPattern.FindAllStringSubmatch(lower, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		if hourly {
			v *= hoursPerYear
		}
		annual := int(v)
		if annual < MinAnnual || annual > MaxAnnual {
			continue
		}
		values = append(values, annual)
	}

	return fromValues(values)
}

// FromBounds runs structured numeric hints (sources that expose salary_min /
// salary_max fields) through the same unit conversion and sanity window.
func FromBounds(min, max *int, unit Unit) (Range, bool) {
	var values []int
	for _, p := range []*int{min, max} {
		if p == nil || *p == 0 {
			continue
		}
		v := *p
		if unit == UnitHourly {
			v *= hoursPerYear
		}
		if v < MinAnnual || v > MaxAnnual {
			continue
		}
		values = append(values, v)
	}
	return fromValues(values)
}

func fromValues(values []int) (Range, bool) {
	switch len(values) {
	case 0:
		return Range{}, false
	case 1:
		return Range{Min: values[0], Max: values[0]}, true
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Range{Min: lo, Max: hi}, true
}
