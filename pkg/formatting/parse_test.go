package formatting_test

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/JaimeStill/curioscore/pkg/formatting"
)

type scored struct {
	Type  string  `json:"curio-type"`
	Score float64 `json:"curio-score"`
}

func TestParse(t *testing.T) {
	t.Run("direct JSON", func(t *testing.T) {
		got, err := formatting.Parse[scored](`{"curio-type":"Public Art","curio-score":6.5}`)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Type != "Public Art" || got.Score != 6.5 {
			t.Errorf("Parse = %+v, want {Type:Public Art Score:6.5}", got)
		}
	})

	t.Run("direct JSON with whitespace", func(t *testing.T) {
		got, err := formatting.Parse[scored]("  {\"curio-type\":\"Green Space\",\"curio-score\":1}\n")
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Type != "Green Space" {
			t.Errorf("Type = %q, want Green Space", got.Type)
		}
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		input := "```json\n{\"curio-type\":\"Infrastructure\",\"curio-score\":3.2}\n```"
		got, err := formatting.Parse[scored](input)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Type != "Infrastructure" || got.Score != 3.2 {
			t.Errorf("Parse = %+v, want {Type:Infrastructure Score:3.2}", got)
		}
	})

	t.Run("markdown fenced with surrounding text", func(t *testing.T) {
		input := "Here you go:\n```\n{\"curio-type\":\"Historic Site\",\"curio-score\":8}\n```\nEnjoy."
		got, err := formatting.Parse[scored](input)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Type != "Historic Site" || got.Score != 8 {
			t.Errorf("Parse = %+v, want {Type:Historic Site Score:8}", got)
		}
	})

	t.Run("invalid content returns ErrParseFailed", func(t *testing.T) {
		_, err := formatting.Parse[scored]("not json at all")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("empty string returns ErrParseFailed", func(t *testing.T) {
		_, err := formatting.Parse[scored]("")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("long content is abbreviated in the error", func(t *testing.T) {
		_, err := formatting.Parse[scored](strings.Repeat("x", 2000))
		if err == nil {
			t.Fatal("expected error")
		}
		if len(err.Error()) > 600 {
			t.Errorf("error length = %d, want abbreviated message", len(err.Error()))
		}
	})
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exact limit", "abcdef", 6, "abcdef"},
		{"truncated", "abcdefghij", 6, "abc..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"cut inside rune", "héllo wörld", 5, "h..."},
		{"cut after rune", "héllo wörld", 6, "hé..."},
		{"tiny limit inside rune", "éa", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.Abbreviate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("Abbreviate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Abbreviate(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
			}
		})
	}
}
