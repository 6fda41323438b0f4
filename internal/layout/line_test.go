package layout

import (
	"strings"
	"testing"
)

func TestReconstruct_WideGapScenario(t *testing.T) {
	frags := []Fragment{
		{X: 0, Y: 100, Text: "Hello", Width: 40},
		{X: 200, Y: 100, Text: "World", Width: 40},
	}
	got := NewReconstructor().Reconstruct(frags)
	want := "Hello    World\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReconstruct_TouchingFragmentsConcatenate(t *testing.T) {
	frags := []Fragment{
		{X: 10, Y: 50, Text: "Hel", Width: 18},
		{X: 28.4, Y: 50, Text: "lo", Width: 10},
	}
	got := NewReconstructor().Reconstruct(frags)
	if got != "Hello\n\n" {
		t.Errorf("expected concatenation, got %q", got)
	}
}

func TestReconstruct_ModerateGapSingleSpace(t *testing.T) {
	frags := []Fragment{
		{X: 10, Y: 50, Text: "quick", Width: 30},
		{X: 44, Y: 50, Text: "brown", Width: 32},
		{X: 90, Y: 50, Text: "fox", Width: 18},
	}
	got := NewReconstructor().Reconstruct(frags)
	if got != "quick brown fox\n\n" {
		t.Errorf("expected single spaces, got %q", got)
	}
}

func TestReconstruct_LinesTopToBottom(t *testing.T) {
	frags := []Fragment{
		{X: 0, Y: 600, Text: "middle", Width: 40},
		{X: 0, Y: 100, Text: "bottom", Width: 40},
		{X: 0, Y: 700, Text: "top", Width: 20},
	}
	got := NewReconstructor().Reconstruct(frags)
	want := "top\nmiddle\nbottom\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReconstruct_UnsortedFragmentsWithinLine(t *testing.T) {
	frags := []Fragment{
		{X: 60, Y: 300.2, Text: "B", Width: 8},
		{X: 10, Y: 299.8, Text: "A", Width: 8},
		{X: 200, Y: 300, Text: "C", Width: 8},
	}
	got := NewReconstructor().Reconstruct(frags)
	want := "A    B    C\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReconstruct_EqualXKeepsInputOrder(t *testing.T) {
	frags := []Fragment{
		{X: 5, Y: 10, Text: "first"},
		{X: 5, Y: 10, Text: "second"},
		{X: 5, Y: 10, Text: "third"},
	}
	lines := NewReconstructor().Lines(frags)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var texts []string
	for _, f := range lines[0].Fragments {
		texts = append(texts, f.Text)
	}
	if strings.Join(texts, ",") != "first,second,third" {
		t.Errorf("expected encounter order, got %v", texts)
	}
}

func TestReconstruct_Tolerance(t *testing.T) {
	frags := []Fragment{
		{X: 0, Y: 100, Text: "a", Width: 5},
		{X: 30, Y: 103, Text: "b", Width: 5},
	}
	if got := len(NewReconstructor().Lines(frags)); got != 2 {
		t.Errorf("default tolerance: expected 2 lines, got %d", got)
	}

	cfg := DefaultConfig()
	cfg.YTolerance = 8
	if got := len(NewReconstructorWithConfig(cfg).Lines(frags)); got != 1 {
		t.Errorf("tolerance 8: expected 1 line, got %d", got)
	}
}

func TestReconstruct_Empty(t *testing.T) {
	r := NewReconstructor()
	if got := r.Reconstruct(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := r.Reconstruct([]Fragment{{X: 1, Y: 1, Text: ""}}); got != "" {
		t.Errorf("expected empty output for empty fragments, got %q", got)
	}
}

func TestReconstruct_CustomIndentRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndentRun = "\t"
	frags := []Fragment{
		{X: 0, Y: 10, Text: "Name", Width: 30},
		{X: 150, Y: 10, Text: "Qty", Width: 20},
	}
	got := NewReconstructorWithConfig(cfg).Reconstruct(frags)
	if got != "Name\tQty\n\n" {
		t.Errorf("expected tab separator, got %q", got)
	}
}
