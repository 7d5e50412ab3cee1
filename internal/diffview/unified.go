package diffview

import "fmt"

// UnifiedRowKind distinguishes hunk boundary markers from content rows.
type UnifiedRowKind int

const (
	RowHunkHeader UnifiedRowKind = iota
	RowLine
)

// HunkHeader carries the range numbers of one hunk for display.
type HunkHeader struct {
	OldStart int `json:"oldStart"`
	OldLines int `json:"oldLines"`
	NewStart int `json:"newStart"`
	NewLines int `json:"newLines"`
}

// String renders the header in conventional unified-diff form.
func (h HunkHeader) String() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// UnifiedRow is one entry of the interleaved view: either a hunk header
// or a parsed line, selected by Kind.
type UnifiedRow struct {
	Kind   UnifiedRowKind `json:"kind"`
	Header HunkHeader     `json:"header,omitempty"`
	Line   ParsedLine     `json:"line,omitempty"`
}

// BuildUnified flattens the hunks into a single ordered row sequence: one
// header row per hunk followed by its parsed lines in original order. The
// result length is len(hunks) plus the total parsed line count.
func BuildUnified(hunks []DiffHunk) []UnifiedRow {
	rows := make([]UnifiedRow, 0, len(hunks))
	for _, hunk := range hunks {
		rows = append(rows, UnifiedRow{
			Kind: RowHunkHeader,
			Header: HunkHeader{
				OldStart: hunk.OldStart,
				OldLines: hunk.OldLines,
				NewStart: hunk.NewStart,
				NewLines: hunk.NewLines,
			},
		})
		for _, line := range ParseHunk(hunk) {
			rows = append(rows, UnifiedRow{Kind: RowLine, Line: line})
		}
	}
	return rows
}
