package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Binary outcome values. NEGATIVA is listed first in synthesized option
// sets and therefore acts as the capture default.
const (
	OutcomeNegative = "NEGATIVA"
	OutcomePositive = "POSITIVA"
)

// Synthesize derives the reference range for a sub-test from its cutoff,
// unit and result kind. It is pure: identical inputs always produce
// identical output, degenerate input produces a degenerate range rather
// than an error.
//
// For binary sub-tests the displayed text and ClassifyBinary follow a
// single convention: a reading strictly above the cutoff is positive, a
// reading at or below it is negative.
func Synthesize(cutoff, unit string, kind ResultKind) ReferenceRange {
	cutoff = strings.TrimSpace(cutoff)
	value, err := strconv.ParseFloat(cutoff, 64)
	if cutoff == "" || err != nil {
		return ReferenceRange{Text: "", Options: []RangeOption{}}
	}

	switch kind {
	case KindBinary:
		return ReferenceRange{
			Text: fmt.Sprintf("NEG: ≤%s %s\nPOS: >%s %s", cutoff, unit, cutoff, unit),
			Options: []RangeOption{
				{Value: OutcomeNegative, Label: OutcomeNegative, IsNormal: true},
				{Value: OutcomePositive, Label: OutcomePositive, IsNormal: false},
			},
		}
	case KindNumeric:
		min := 0.0
		max := value * 2
		return ReferenceRange{
			Text:    fmt.Sprintf("Valor de referencia: %s %s", cutoff, unit),
			Min:     &min,
			Max:     &max,
			Options: []RangeOption{},
		}
	default:
		return ReferenceRange{
			Text:    fmt.Sprintf("Valor de corte: %s %s", cutoff, unit),
			Options: []RangeOption{},
		}
	}
}

// ClassifyBinary maps a numeric reading onto the binary outcome domain
// using the same boundary rule as the synthesized range text: strictly
// above cutoff is positive, at or below is negative.
func ClassifyBinary(reading, cutoff float64) string {
	if reading > cutoff {
		return OutcomePositive
	}
	return OutcomeNegative
}
