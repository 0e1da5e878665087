// Package scoring classifies curio records through a chat-completions
// model with a strict structured-output contract.
package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/pkg/formatting"
	"github.com/JaimeStill/curioscore/pkg/openrouter"
)

// Completer sends a chat-completions request.
type Completer interface {
	Complete(ctx context.Context, req openrouter.Request) (*openrouter.Response, error)
}

// Usage is the token and cost accounting for one or more completions.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.Cost += other.Cost
}

func usageOf(resp *openrouter.Response) Usage {
	var u Usage
	if resp.Usage != nil {
		u.PromptTokens = resp.Usage.PromptTokens
		u.CompletionTokens = resp.Usage.CompletionTokens
		u.TotalTokens = resp.Usage.TotalTokens
		u.Cost = resp.Usage.Cost
	}
	if resp.TotalCost != nil {
		u.Cost = *resp.TotalCost
	}
	return u
}

// Options tunes classifier output checking.
type Options struct {
	// Lenient accepts any curio-type string and any score the model
	// returns. By default the type must be one of the eight categories and
	// the score must lie in [0, 10]. Lenient results with an empty type or
	// an out-of-range score are still kept out of the store at publish time.
	Lenient bool
}

// Classifier turns a curio record into an Outcome.
type Classifier struct {
	llm    Completer
	opts   Options
	logger *slog.Logger
}

// New creates a Classifier over llm.
func New(llm Completer, opts Options, logger *slog.Logger) *Classifier {
	return &Classifier{
		llm:    llm,
		opts:   opts,
		logger: logger.With("system", "scoring"),
	}
}

type verdict struct {
	Type   string   `json:"curio-type"`
	Score  *float64 `json:"curio-score"`
	Reason string   `json:"score-reason"`
}

// Classify scores c. It never fails: records without a usable description
// are Skipped without a model call, and every transport, gateway or output
// problem becomes a Failed outcome.
func (cl *Classifier) Classify(ctx context.Context, c *curios.Curio) (Outcome, Usage) {
	if !c.HasOverview() {
		return skipped(), Usage{}
	}

	msg, err := NewInstruction(c).Message()
	if err != nil {
		cl.logger.Warn("encode instruction failed", "curio_id", c.ID, "error", err)
		return failed(ReasonFailure), Usage{}
	}

	resp, err := cl.llm.Complete(ctx, openrouter.Request{
		Messages:       []openrouter.Message{{Role: "user", Content: msg}},
		ResponseFormat: ResponseFormat(),
	})
	if err != nil {
		cl.logger.Warn("completion failed", "curio_id", c.ID, "error", err)
		return failed(ReasonFailure), Usage{}
	}

	if len(resp.Choices) == 0 {
		cl.logger.Warn("completion returned no choices", "curio_id", c.ID)
		return failed(ReasonNoChoices), Usage{}
	}

	usage := usageOf(resp)

	v, err := formatting.Parse[verdict](resp.Content())
	if err != nil {
		cl.logger.Warn("parse completion failed", "curio_id", c.ID, "error", err)
		return failed(ReasonFailure), usage
	}

	out := Outcome{Kind: Scored, Type: v.Type, Reason: v.Reason}
	if v.Score != nil {
		out.Score = *v.Score
	}

	if !cl.opts.Lenient {
		if reason := violation(v); reason != "" {
			cl.logger.Warn("completion rejected", "curio_id", c.ID, "reason", reason)
			return failed(reason), usage
		}
	}

	return out, usage
}

// violation names the first way v breaks the output contract, or "".
func violation(v verdict) string {
	if !curios.Category(v.Type).Valid() {
		return fmt.Sprintf("Invalid curio-type %q", v.Type)
	}
	if v.Score == nil {
		return "Missing curio-score"
	}
	if !curios.ScoreInRange(*v.Score) {
		return fmt.Sprintf("curio-score %v outside 0.0-10.0", *v.Score)
	}
	return ""
}
