package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/pkg/openrouter"
)

const (
	task = "Evaluate this London location for inclusion in a curated 'Hidden London' walking tour."

	persona = "You are a cynical yet passionate London Blue Badge Guide creating a walking tour for discerning explorers. " +
		"You ignore the obvious (Big Ben) and the boring (generic shops/galleries). " +
		"You value street-level accessibility, bizarre backstories, and visual oddities. " +
		"You punish places that are just 'nice buildings' or require an entry ticket."

	scoreRubric = "curio-score: Grade strictly from 0.0 to 10.0 using this rubric:\n" +
		"- PENALIZE (-2 points): Museums, Art Galleries, Shops, Private Offices, or anything requiring payment/entry to see.\n" +
		"- 0.0-3.9 (Skip): Standard street furniture, generic blue plaques for obscure people, modern commercial blocks, or local amenities with no story.\n" +
		"- 4.0-5.9 (Filler): A decent local landmark (e.g., a standard Victorian pub, a local war memorial). Nice if you're passing, but don't divert.\n" +
		"- 6.0-7.9 (Stop): A solid tour stop. Has a visual hook (e.g., a ghost sign, a weird bollard, a specific battle site) and a bite-sized story.\n" +
		"- 8.0-10.0 (Highlight): 'Rare Air'. The kind of weird history that makes people stop and take a photo. Truly unique, highly visible, and tells a quintessential London story."

	reasonRequirement = "score-reason: A punchy, critical sentence justifying the score. Be honest if it's boring."

	// SchemaName identifies the structured-output contract.
	SchemaName = "curio_scoring"
)

// Instruction is the object sent, JSON-encoded, as the single user message.
type Instruction struct {
	Task         string   `json:"task"`
	Context      string   `json:"context"`
	Persona      string   `json:"persona"`
	Requirements []string `json:"requirements"`
}

// NewInstruction builds the evaluation instruction for c.
func NewInstruction(c *curios.Curio) Instruction {
	return Instruction{
		Task: task,
		Context: fmt.Sprintf(
			"Name: %s\nInscription: %s\nDescription: %s",
			c.DisplayName(), c.InscriptionText(), c.OverviewText(),
		),
		Persona: persona,
		Requirements: []string{
			typeRequirement(),
			scoreRubric,
			reasonRequirement,
		},
	}
}

// Message renders the instruction as JSON text.
func (i Instruction) Message() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func typeRequirement() string {
	quoted := make([]string, len(curios.Categories))
	for i, c := range curios.Categories {
		quoted[i] = "'" + string(c) + "'"
	}
	return "curio-type: Choose ONE from this strict list: " + strings.Join(quoted, ", ") + "."
}

// ResponseFormat returns the strict JSON schema every completion must satisfy.
func ResponseFormat() *openrouter.ResponseFormat {
	return &openrouter.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &openrouter.JSONSchema{
			Name:   SchemaName,
			Strict: true,
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					curios.ColumnType:   map[string]any{"type": "string"},
					curios.ColumnScore:  map[string]any{"type": "number"},
					curios.ColumnReason: map[string]any{"type": "string"},
				},
				"required":             []string{curios.ColumnType, curios.ColumnScore, curios.ColumnReason},
				"additionalProperties": false,
			},
		},
	}
}
