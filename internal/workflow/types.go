package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/internal/scoring"
)

// Range is an inclusive span of box ids.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate rejects ranges whose start exceeds their end.
func (r Range) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d greater than end %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Result is one classified record in an artifact.
type Result struct {
	BoxID   int          `json:"box-id"`
	CurioID string       `json:"curio-id"`
	Type    string       `json:"curio-type"`
	Score   float64      `json:"curio-score"`
	Reason  string       `json:"score-reason"`
	Outcome scoring.Kind `json:"outcome,omitempty"`
}

func newResult(box int, id string, o scoring.Outcome) Result {
	return Result{
		BoxID:   box,
		CurioID: id,
		Type:    o.Type,
		Score:   o.Score,
		Reason:  o.Reason,
		Outcome: o.Kind,
	}
}

// Publishable reports whether r should be written back to the store. Rows
// without a curio-id, with an empty or "Error" curio-type, or tagged as
// failed are held back; the type check applies to tagged rows too, so a
// reviewer can keep a row out by editing its type.
func (r Result) Publishable() bool {
	return r.CurioID != "" && scoring.Publishable(r.Outcome, r.Type)
}

// Update projects r onto the classification triple.
func (r Result) Update() curios.Update {
	return curios.Update{
		ID:     r.CurioID,
		Type:   r.Type,
		Score:  r.Score,
		Reason: r.Reason,
	}
}

// Failure is a record that could not be fetched.
type Failure struct {
	CurioID string `json:"curio-id"`
	Error   string `json:"error"`
}

// Artifact is the batch file written at the end of every run.
type Artifact struct {
	Range   Range     `json:"range"`
	Results []Result  `json:"results"`
	Failed  []Failure `json:"failed"`
}

// Summary tallies a run.
type Summary struct {
	RunID    uuid.UUID     `json:"run_id"`
	Range    Range         `json:"range"`
	Path     string        `json:"path"`
	Boxes    int           `json:"boxes"`
	Results  int           `json:"results"`
	Scored   int           `json:"scored"`
	Skipped  int           `json:"skipped"`
	Errors   int           `json:"errors"`
	Failed   int           `json:"failed"`
	Usage    scoring.Usage `json:"usage"`
	Duration time.Duration `json:"duration"`
	Aborted  bool          `json:"aborted"`
}

func (s *Summary) count(o scoring.Outcome) {
	s.Results++
	switch o.Kind {
	case scoring.Scored:
		s.Scored++
	case scoring.Skipped:
		s.Skipped++
	case scoring.Failed:
		s.Errors++
	}
}

// PublishReport is the outcome of a publish call.
type PublishReport struct {
	Status  string `json:"status"`
	Updated int    `json:"updated"`
}

// StatusComplete is the only status Publish reports; failures return an error.
const StatusComplete = "complete"
