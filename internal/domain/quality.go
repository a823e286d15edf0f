package domain

import "fmt"

// Quality is the self-reported recall quality of a practice session on the
// SM-2 scale. Values below QualityPass count as a lapse.
type Quality int

// Recall quality grades.
const (
	QualityBlackout Quality = iota // complete failure to recall
	QualityWrong                   // wrong, but recognized once shown
	QualityHard                    // wrong, but felt easy once shown
	QualityPass                    // correct with serious difficulty
	QualityGood                    // correct after hesitation
	QualityPerfect                 // perfect recall

	// MinQuality and MaxQuality bound the accepted range.
	MinQuality = QualityBlackout
	MaxQuality = QualityPerfect
)

// Validate reports ErrInvalidQuality when q is outside MinQuality..MaxQuality.
func (q Quality) Validate() error {
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, int(q))
	}
	return nil
}
