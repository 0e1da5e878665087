package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArtifactName returns the artifact file name for r.
func ArtifactName(r Range) string {
	return fmt.Sprintf("curio-classification-box-%d-%d.json", r.Start, r.End)
}

// Encode renders a as indented JSON. Empty result and failure lists are
// written as [] rather than null.
func (a *Artifact) Encode() ([]byte, error) {
	out := *a
	if out.Results == nil {
		out.Results = []Result{}
	}
	if out.Failed == nil {
		out.Failed = []Failure{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteArtifact writes a into dir under its range-derived name, creating
// dir when needed, and returns the file path.
func WriteArtifact(dir string, a *Artifact) (string, error) {
	data, err := a.Encode()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, ArtifactName(a.Range))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// DecodeArtifact parses an artifact from r.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}

// ReadArtifact parses the artifact file at path.
func ReadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeArtifact(f)
}
