package srs

import (
	"fmt"
	"math"

	"github.com/phrazzld/drillsched/internal/domain"
)

// Result is the scheduling triple produced by one practice outcome.
type Result struct {
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
}

// ComputeNext runs one SM-2 step with the default parameters.
// See Params.ComputeNext.
func ComputeNext(quality domain.Quality, easeFactor float64, intervalDays, repetitions int) (Result, error) {
	return NewDefaultParams().ComputeNext(quality, easeFactor, intervalDays, repetitions)
}

// ComputeNext determines the next interval, ease factor and repetition count
// from a recall quality and the current scheduling state.
//
// Inputs are validated, never clamped: a quality outside 0..5 yields
// ErrInvalidQuality, and an ease below domain.MinEaseFactor, an interval below
// one day or a negative repetition count yields ErrInvalidState. The
// configured MinEaseFactor only floors the produced ease, so raising it does
// not strand rows stored under a lower floor.
//
// Algorithm behavior:
//   - Lapse (quality below LapseThreshold): the streak resets to 0, the
//     interval to 1 day, and the ease drops by LapsePenalty down to the floor.
//   - Success: the ease moves by 0.1 - (5-q)*(0.08 + (5-q)*0.02), which is
//     -0.14 for q=3, 0 for q=4 and +0.1 for q=5, floored at MinEaseFactor.
//     The streak grows by one.
//   - Success interval: FirstInterval when there was no prior streak,
//     SecondInterval after one success, otherwise the previous interval
//     multiplied by the new ease and rounded half away from zero.
func (p *Params) ComputeNext(
	quality domain.Quality,
	easeFactor float64,
	intervalDays int,
	repetitions int,
) (Result, error) {
	if err := quality.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.validateState(easeFactor, intervalDays, repetitions); err != nil {
		return Result{}, err
	}

	if quality < p.LapseThreshold {
		return Result{
			IntervalDays: 1,
			EaseFactor:   math.Max(easeFactor-p.LapsePenalty, p.MinEaseFactor),
			Repetitions:  0,
		}, nil
	}

	newEase := calculateNewEaseFactor(easeFactor, quality, p)

	return Result{
		IntervalDays: calculateNewInterval(intervalDays, repetitions, newEase, p),
		EaseFactor:   newEase,
		Repetitions:  repetitions + 1,
	}, nil
}

func (p *Params) validateState(easeFactor float64, intervalDays, repetitions int) error {
	switch {
	case math.IsNaN(easeFactor) || easeFactor < domain.MinEaseFactor:
		return fmt.Errorf("%w: ease factor %.4f is below %.2f", ErrInvalidState, easeFactor, domain.MinEaseFactor)
	case intervalDays < 1:
		return fmt.Errorf("%w: interval %d is below 1 day", ErrInvalidState, intervalDays)
	case repetitions < 0:
		return fmt.Errorf("%w: repetitions %d is negative", ErrInvalidState, repetitions)
	}
	return nil
}

// calculateNewEaseFactor applies the SM-2 ease adjustment for a successful recall.
func calculateNewEaseFactor(currentEF float64, quality domain.Quality, params *Params) float64 {
	miss := float64(domain.MaxQuality - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))
	return math.Max(newEF, params.MinEaseFactor)
}

// calculateNewInterval returns the interval in days after a successful recall.
// priorRepetitions is the streak length before this success.
func calculateNewInterval(currentInterval, priorRepetitions int, newEaseFactor float64, params *Params) int {
	switch priorRepetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	}

	next := int(math.Round(float64(currentInterval) * newEaseFactor))
	if next < 1 {
		next = 1
	}
	return next
}
