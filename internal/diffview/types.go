// Package diffview builds renderer-agnostic view models from revision diffs.
//
// The package is a pure transformation layer: it consumes a DiffResult
// computed elsewhere (see internal/gitrepo) and produces line-classified
// view models for a unified or a side-by-side presentation. It performs no
// I/O, holds no state, and is safe for concurrent use.
package diffview

// LineKind classifies a single diff line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAddition
	LineDeletion
)

// String returns a stable name for the kind, usable as a renderer key.
func (k LineKind) String() string {
	switch k {
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	default:
		return "context"
	}
}

// ParsedLine is one classified, numbered line of a hunk. OldNumber is set
// for context and deletion lines, NewNumber for context and addition lines;
// zero means the side has no number.
type ParsedLine struct {
	Kind      LineKind `json:"kind"`
	Content   string   `json:"content"`
	OldNumber int      `json:"oldNumber,omitempty"`
	NewNumber int      `json:"newNumber,omitempty"`
}

// DiffHunk is one contiguous change region between two revisions. Content
// holds newline-separated lines, each prefixed with ' ', '-' or '+'.
// Hunks arrive ordered by position; this package does not re-sort them.
type DiffHunk struct {
	OldStart int    `json:"oldStart"`
	OldLines int    `json:"oldLines"`
	NewStart int    `json:"newStart"`
	NewLines int    `json:"newLines"`
	Content  string `json:"content"`
}

// DiffResult is the externally computed diff payload between two revisions.
// It is consumed read-only; Additions and Deletions are supplied by the
// diff computation and are not recomputed here.
type DiffResult struct {
	FromSHA   string     `json:"fromSha"`
	ToSHA     string     `json:"toSha"`
	Hunks     []DiffHunk `json:"hunks"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	IsBinary  bool       `json:"isBinary"`
}
