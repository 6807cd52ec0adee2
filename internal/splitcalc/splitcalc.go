// Package splitcalc turns an expense total into per-participant owed
// amounts. It is purely computational: no persistence, no side effects.
// All amounts are integer cents so column sums reconcile exactly.
package splitcalc

import (
	"fmt"
	"math"

	"github.com/frahmantamala/finance-tracker/internal"
)

type Method string

const (
	MethodEqual      Method = "EQUAL"
	MethodExact      Method = "EXACT"
	MethodPercentage Method = "PERCENTAGE"
	MethodShares     Method = "SHARES"
)

func (m Method) Valid() bool {
	switch m {
	case MethodEqual, MethodExact, MethodPercentage, MethodShares:
		return true
	}
	return false
}

// Override carries the caller-supplied per-participant input for the
// non-equal methods. Only the field matching the method is consulted.
type Override struct {
	ParticipantID int64   `json:"participant_id"`
	AmountCents   int64   `json:"amount_cents,omitempty"`
	Percentage    float64 `json:"percentage,omitempty"`
	Shares        int64   `json:"shares,omitempty"`
}

// Share is one participant's computed slice of the total. Percentage is
// populated only for the PERCENTAGE method.
type Share struct {
	ParticipantID int64
	AmountCents   int64
	Percentage    float64
}

// percentEpsilon is how far the percentage column may drift from 100 before
// the input is rejected.
const percentEpsilon = 0.01

// Compute splits totalCents across participants using the given method.
// The returned shares always sum to totalCents exactly; if no exact
// assignment with every share positive exists, a validation error is
// returned instead.
func Compute(totalCents int64, method Method, participants []int64, overrides []Override) ([]Share, error) {
	if totalCents <= 0 {
		return nil, internal.NewValidationError("total amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if len(participants) == 0 {
		return nil, internal.NewValidationError("at least one participant is required", internal.ErrCodeEmptyParticipants)
	}
	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p]; dup {
			return nil, internal.NewValidationError(
				fmt.Sprintf("participant %d listed more than once", p),
				internal.ErrCodeValidationFailed)
		}
		seen[p] = struct{}{}
	}

	switch method {
	case MethodEqual:
		return computeEqual(totalCents, participants)
	case MethodExact:
		return computeExact(totalCents, participants, overrides)
	case MethodPercentage:
		return computePercentage(totalCents, participants, overrides)
	case MethodShares:
		return computeShares(totalCents, participants, overrides)
	default:
		return nil, internal.NewValidationError(
			fmt.Sprintf("unknown split method %q", method),
			internal.ErrCodeInvalidSplitMethod)
	}
}

// computeEqual divides the total evenly. The division remainder, always
// smaller than one cent per head, is assigned to the first participant in
// iteration order so the shares sum to the total exactly.
func computeEqual(totalCents int64, participants []int64) ([]Share, error) {
	n := int64(len(participants))
	base := totalCents / n
	remainder := totalCents - base*n

	shares := make([]Share, len(participants))
	for i, p := range participants {
		amount := base
		if i == 0 {
			amount += remainder
		}
		shares[i] = Share{ParticipantID: p, AmountCents: amount}
	}
	return validatePositive(shares)
}

func computeExact(totalCents int64, participants []int64, overrides []Override) ([]Share, error) {
	byParticipant, err := indexOverrides(participants, overrides)
	if err != nil {
		return nil, err
	}

	var sum int64
	shares := make([]Share, len(participants))
	for i, p := range participants {
		ov := byParticipant[p]
		if ov.AmountCents <= 0 {
			return nil, internal.NewValidationError(
				fmt.Sprintf("exact amount for participant %d must be positive", p),
				internal.ErrCodeInvalidAmount)
		}
		sum += ov.AmountCents
		shares[i] = Share{ParticipantID: p, AmountCents: ov.AmountCents}
	}
	// no silent correction: the caller's figures must reconcile
	if sum != totalCents {
		return nil, internal.NewValidationError(
			fmt.Sprintf("exact amounts sum to %d, expense total is %d", sum, totalCents),
			internal.ErrCodeSplitSumMismatch)
	}
	return shares, nil
}

// computePercentage rounds each participant's slice to whole cents, then
// assigns the rounding remainder to the last participant in iteration order
// so the column reconciles with the total.
func computePercentage(totalCents int64, participants []int64, overrides []Override) ([]Share, error) {
	byParticipant, err := indexOverrides(participants, overrides)
	if err != nil {
		return nil, err
	}

	var pctSum float64
	for _, p := range participants {
		ov := byParticipant[p]
		if ov.Percentage <= 0 {
			return nil, internal.NewValidationError(
				fmt.Sprintf("percentage for participant %d must be positive", p),
				internal.ErrCodeInvalidPercentage)
		}
		pctSum += ov.Percentage
	}
	// rounded to cents of a percent first: float accumulation of values
	// like 3x33.33 drifts past the epsilon even when the column is exactly
	// at the allowed boundary
	pctSum = math.Round(pctSum*100) / 100
	if math.Abs(pctSum-100) > percentEpsilon {
		return nil, internal.NewValidationError(
			fmt.Sprintf("percentages sum to %.2f, must sum to 100", pctSum),
			internal.ErrCodeInvalidPercentage)
	}

	var assigned int64
	shares := make([]Share, len(participants))
	for i, p := range participants {
		ov := byParticipant[p]
		amount := int64(math.Round(float64(totalCents) * ov.Percentage / 100))
		assigned += amount
		shares[i] = Share{ParticipantID: p, AmountCents: amount, Percentage: ov.Percentage}
	}
	shares[len(shares)-1].AmountCents += totalCents - assigned
	return validatePositive(shares)
}

// computeShares allocates proportionally to integer share counts, floor
// division per participant with the leftover cents going to the last
// participant in iteration order.
func computeShares(totalCents int64, participants []int64, overrides []Override) ([]Share, error) {
	byParticipant, err := indexOverrides(participants, overrides)
	if err != nil {
		return nil, err
	}

	var totalShares int64
	for _, p := range participants {
		ov := byParticipant[p]
		if ov.Shares <= 0 {
			return nil, internal.NewValidationError(
				fmt.Sprintf("share count for participant %d must be positive", p),
				internal.ErrCodeInvalidShares)
		}
		totalShares += ov.Shares
	}

	var assigned int64
	shares := make([]Share, len(participants))
	for i, p := range participants {
		ov := byParticipant[p]
		amount := totalCents * ov.Shares / totalShares
		assigned += amount
		shares[i] = Share{ParticipantID: p, AmountCents: amount}
	}
	shares[len(shares)-1].AmountCents += totalCents - assigned
	return validatePositive(shares)
}

func indexOverrides(participants []int64, overrides []Override) (map[int64]Override, error) {
	byParticipant := make(map[int64]Override, len(overrides))
	for _, ov := range overrides {
		if _, dup := byParticipant[ov.ParticipantID]; dup {
			return nil, internal.NewValidationError(
				fmt.Sprintf("duplicate override for participant %d", ov.ParticipantID),
				internal.ErrCodeValidationFailed)
		}
		byParticipant[ov.ParticipantID] = ov
	}
	for _, p := range participants {
		if _, ok := byParticipant[p]; !ok {
			return nil, internal.NewValidationError(
				fmt.Sprintf("missing override for participant %d", p),
				internal.ErrCodeValidationFailed)
		}
	}
	return byParticipant, nil
}

func validatePositive(shares []Share) ([]Share, error) {
	for _, s := range shares {
		if s.AmountCents <= 0 {
			return nil, internal.NewValidationError(
				fmt.Sprintf("computed amount for participant %d is not positive", s.ParticipantID),
				internal.ErrCodeInvalidAmount)
		}
	}
	return shares, nil
}
