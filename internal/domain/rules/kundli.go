package rules

import (
	"fmt"
	"time"
)

const (
	KundliVerdictHigh     = "High Compatibility"
	KundliVerdictModerate = "Moderate Compatibility"
	KundliVerdictLow      = "Low Compatibility"
)

type KundliBreakdown struct {
	Varna  int `json:"varna"`
	Vashya int `json:"vashya"`
	Tara   int `json:"tara"`
}

type KundliMatch struct {
	GunaScore int             `json:"gunaScore"`
	Manglik   bool            `json:"manglik"`
	Verdict   string          `json:"verdict"`
	Summary   string          `json:"summary"`
	Breakdown KundliBreakdown `json:"gunaBreakdown"`
	SignA     string          `json:"signA"`
	SignB     string          `json:"signB"`
}

// MatchKundli is a simulated compatibility report: the same two birth dates
// always produce the same result. It is not an astrological computation.
func MatchKundli(dobA, dobB time.Time) KundliMatch {
	seed := floorMod(dobA.UnixMilli()+dobB.UnixMilli(), 100)
	score := 40 + int(seed%61)
	manglik := seed%7 == 0

	verdict := KundliVerdictModerate
	switch {
	case score > 80:
		verdict = KundliVerdictHigh
	case score < 55:
		verdict = KundliVerdictLow
	}

	return KundliMatch{
		GunaScore: score,
		Manglik:   manglik,
		Verdict:   verdict,
		Summary:   fmt.Sprintf("Simulated Guna score %d. Manglik: %t", score, manglik),
		Breakdown: KundliBreakdown{
			Varna:  int(seed % 8),
			Vashya: int((seed / 8) % 8),
			Tara:   int((seed + 3) % 8),
		},
		SignA: RashiFromBirthdate(dobA),
		SignB: RashiFromBirthdate(dobB),
	}
}

// ParseBirthDate accepts YYYY-MM-DD or RFC 3339.
func ParseBirthDate(raw string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse birth date %q: %w", raw, err)
	}
	return d.UTC(), nil
}

func floorMod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
