package scoring

import "github.com/JaimeStill/curioscore/internal/curios"

// Kind tags how a classification attempt ended.
type Kind string

const (
	// Scored means the model returned a classification.
	Scored Kind = "scored"
	// Skipped means the record had no usable description and no call was made.
	Skipped Kind = "skipped"
	// Failed means the call or its output was unusable.
	Failed Kind = "failed"
)

// Reasons recorded for outcomes the model did not produce.
const (
	ReasonNoOverview = "No detail-overview available to score."
	ReasonNoChoices  = "No choices returned"
	ReasonFailure    = "LLM Failure"
)

// Outcome is the classification result for one record. It renders to the
// curio-type, curio-score and score-reason triple; Kind is carried so
// consumers do not have to infer failure from the type string.
type Outcome struct {
	Kind   Kind    `json:"-"`
	Type   string  `json:"curio-type"`
	Score  float64 `json:"curio-score"`
	Reason string  `json:"score-reason"`
}

// Publishable reports whether the outcome should be written back to the store.
func (o Outcome) Publishable() bool {
	return Publishable(o.Kind, o.Type)
}

// Publishable reports whether a classification with the given tag and
// curio-type may be written back. An empty or "Error" type is never
// written, whatever the tag says; an empty tag marks an untagged artifact
// row and defers to the type alone.
func Publishable(kind Kind, curioType string) bool {
	if curioType == "" || curioType == string(curios.CategoryError) {
		return false
	}
	return kind != Failed
}

func skipped() Outcome {
	return Outcome{
		Kind:   Skipped,
		Type:   string(curios.CategoryUnknown),
		Score:  0.0,
		Reason: ReasonNoOverview,
	}
}

func failed(reason string) Outcome {
	return Outcome{
		Kind:   Failed,
		Type:   string(curios.CategoryError),
		Score:  0.0,
		Reason: reason,
	}
}
