package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Molecule string             `json:"molecule"`
	Scores   map[string]float64 `json:"scores"`
	Sizes    map[int]int        `json:"sizes"`
}

func TestWriterRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	w := NewWriter(dir, "biomass")

	in := sample{
		Molecule: "hmf",
		Scores:   map[string]float64{"hmf": 0.5, "glucose": 0.25},
		Sizes:    map[int]int{3: 1, 2: 2},
	}
	path, err := w.Write("important", in)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if want := filepath.Join(dir, "biomass_important.json"); path != want {
		t.Errorf("Expected path %s, got %s", want, path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer file.Close()

	var out sample
	if err := Decode(file, &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeUsesFieldTags(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample{Molecule: "furfural"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(buf.String(), `"molecule": "furfural"`) {
		t.Errorf("Expected indented tagged field, got %s", buf.String())
	}
}

func TestPathWithoutPrefix(t *testing.T) {
	w := NewWriter("out", "")
	if got := w.Path("degree"); got != filepath.Join("out", "degree.json") {
		t.Errorf("unexpected path %s", got)
	}
}
