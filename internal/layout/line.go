// Package layout rebuilds reading order and horizontal spacing from
// positioned text fragments of a PDF text layer.
package layout

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one positioned run of text in page coordinates. Y is the
// baseline and grows upward (PDF convention); X is the left edge.
type Fragment struct {
	X     float64
	Y     float64
	Text  string
	Width float64
}

// Line is a set of fragments sharing a rounded baseline, sorted left to right.
type Line struct {
	Key       int64
	Fragments []Fragment
}

// Config holds the grouping and spacing parameters.
type Config struct {
	// YTolerance is the bucket size for baselines. Fragments whose Y rounds to
	// the same multiple of YTolerance share a line (default: 1 unit).
	YTolerance float64

	// SmallGap is the largest edge gap rendered as plain concatenation.
	SmallGap float64

	// WideGapFactor times the preceding fragment's width is the largest gap
	// rendered as a single space; MinWideGap is a floor on that limit.
	WideGapFactor float64
	MinWideGap    float64

	// IndentRun replaces gaps wider than the single-space limit.
	IndentRun string
}

// DefaultConfig returns the standard reconstruction settings.
func DefaultConfig() Config {
	return Config{
		YTolerance:    1.0,
		SmallGap:      1.0,
		WideGapFactor: 1.0,
		MinWideGap:    20.0,
		IndentRun:     "    ",
	}
}

// Reconstructor turns fragments into layout-preserving plain text.
type Reconstructor struct {
	config Config
}

// NewReconstructor creates a reconstructor with default configuration
func NewReconstructor() *Reconstructor {
	return &Reconstructor{config: DefaultConfig()}
}

// NewReconstructorWithConfig creates a reconstructor with custom configuration
func NewReconstructorWithConfig(config Config) *Reconstructor {
	if config.YTolerance <= 0 {
		config.YTolerance = 1.0
	}
	return &Reconstructor{config: config}
}

// Reconstruct renders one page: lines top to bottom, each terminated by a
// newline, followed by a blank separator line. No fragments yields "".
func (r *Reconstructor) Reconstruct(fragments []Fragment) string {
	lines := r.Lines(fragments)
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(r.renderLine(line))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Lines groups fragments by rounded baseline. Lines come back top to bottom;
// fragments with equal X keep their input order.
func (r *Reconstructor) Lines(fragments []Fragment) []Line {
	buckets := make(map[int64][]Fragment)
	for _, f := range fragments {
		if f.Text == "" {
			continue
		}
		key := int64(math.Round(f.Y / r.config.YTolerance))
		buckets[key] = append(buckets[key], f)
	}

	lines := make([]Line, 0, len(buckets))
	for key, frags := range buckets {
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })
		lines = append(lines, Line{Key: key, Fragments: frags})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key > lines[j].Key })
	return lines
}

func (r *Reconstructor) renderLine(line Line) string {
	var sb strings.Builder
	for i, f := range line.Fragments {
		if i > 0 {
			sb.WriteString(r.separator(line.Fragments[i-1], f))
		}
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// separator chooses the whitespace between two neighbouring fragments from
// the distance between prev's right edge and next's left edge.
func (r *Reconstructor) separator(prev, next Fragment) string {
	gap := next.X - (prev.X + prev.Width)
	if gap <= r.config.SmallGap {
		return ""
	}
	wide := math.Max(r.config.MinWideGap, r.config.WideGapFactor*prev.Width)
	if gap <= wide {
		return " "
	}
	return r.config.IndentRun
}
