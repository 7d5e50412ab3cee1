package diffview

import "fmt"

// CellKind classifies one cell of the side-by-side view.
type CellKind int

const (
	CellBlank CellKind = iota
	CellHeader
	CellLine
)

// SplitCell is one cell of a column: a blank placeholder, a hunk header,
// or a parsed line.
type SplitCell struct {
	Kind   CellKind   `json:"kind"`
	Header string     `json:"header,omitempty"`
	Line   ParsedLine `json:"line,omitempty"`
}

// SplitView holds the two parallel column sequences of the side-by-side
// presentation. Left is the old revision, Right the new one. Both columns
// always have equal length; blank cells pad the side without a line.
type SplitView struct {
	Left  []SplitCell `json:"left"`
	Right []SplitCell `json:"right"`
}

// BuildSplit pairs each hunk's lines into two equal-length columns.
//
// Pairing is greedy with a one-line lookahead: when a run of deletions is
// followed by an addition, the first deletion shares a row with that first
// addition; the remaining deletions and additions of a longer replacement
// block get a blank cell on the other side. A three-line replacement
// therefore pairs only its first line.
func BuildSplit(hunks []DiffHunk) SplitView {
	view := SplitView{
		Left:  make([]SplitCell, 0, len(hunks)),
		Right: make([]SplitCell, 0, len(hunks)),
	}
	for _, hunk := range hunks {
		view.Left = append(view.Left, SplitCell{
			Kind:   CellHeader,
			Header: fmt.Sprintf("@@ -%d,%d @@", hunk.OldStart, hunk.OldLines),
		})
		view.Right = append(view.Right, SplitCell{
			Kind:   CellHeader,
			Header: fmt.Sprintf("@@ +%d,%d @@", hunk.NewStart, hunk.NewLines),
		})

		lines := ParseHunk(hunk)
		for i := 0; i < len(lines); {
			line := lines[i]
			switch line.Kind {
			case LineContext:
				view.Left = append(view.Left, SplitCell{Kind: CellLine, Line: line})
				view.Right = append(view.Right, SplitCell{Kind: CellLine, Line: line})
				i++
			case LineDeletion:
				runEnd := i
				for runEnd+1 < len(lines) && lines[runEnd+1].Kind == LineDeletion {
					runEnd++
				}
				if runEnd+1 < len(lines) && lines[runEnd+1].Kind == LineAddition {
					view.Left = append(view.Left, SplitCell{Kind: CellLine, Line: line})
					view.Right = append(view.Right, SplitCell{Kind: CellLine, Line: lines[runEnd+1]})
					for j := i + 1; j <= runEnd; j++ {
						view.Left = append(view.Left, SplitCell{Kind: CellLine, Line: lines[j]})
						view.Right = append(view.Right, SplitCell{Kind: CellBlank})
					}
					i = runEnd + 2
					continue
				}
				for j := i; j <= runEnd; j++ {
					view.Left = append(view.Left, SplitCell{Kind: CellLine, Line: lines[j]})
					view.Right = append(view.Right, SplitCell{Kind: CellBlank})
				}
				i = runEnd + 1
			case LineAddition:
				view.Left = append(view.Left, SplitCell{Kind: CellBlank})
				view.Right = append(view.Right, SplitCell{Kind: CellLine, Line: line})
				i++
			default:
				i++
			}
		}
	}
	return view
}
