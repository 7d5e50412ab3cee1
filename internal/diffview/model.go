package diffview

import "encoding/json"

// ViewModelKind selects which variant of the view model applies.
type ViewModelKind int

const (
	// ViewBinary marks a binary diff; no line data is present.
	ViewBinary ViewModelKind = iota
	// ViewEmpty marks a diff with no hunks; the revisions are identical.
	ViewEmpty
	// ViewLines carries the unified rows and the split columns.
	ViewLines
)

// String returns a stable name for the variant, used in API responses.
func (k ViewModelKind) String() string {
	switch k {
	case ViewBinary:
		return "binary"
	case ViewEmpty:
		return "empty"
	default:
		return "lines"
	}
}

// MarshalJSON encodes the variant by name.
func (k ViewModelKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ViewModel is the renderer-agnostic result of building a diff view.
// Unified and Split are populated only for the ViewLines variant, so the
// binary and empty outcomes cannot carry line data.
type ViewModel struct {
	Kind      ViewModelKind `json:"kind"`
	FromSHA   string        `json:"fromSha"`
	ToSHA     string        `json:"toSha"`
	Additions int           `json:"additions"`
	Deletions int           `json:"deletions"`
	Unified   []UnifiedRow  `json:"unified,omitempty"`
	Split     *SplitView    `json:"split,omitempty"`
}

// Build derives the view model for a diff result. Binary diffs short-circuit
// before any hunk is parsed, even if hunk data happens to be present; an
// empty hunk list yields the empty variant. Build is a pure function of its
// input and never panics for a structurally valid result.
func Build(result DiffResult) ViewModel {
	if result.IsBinary {
		return ViewModel{
			Kind:    ViewBinary,
			FromSHA: result.FromSHA,
			ToSHA:   result.ToSHA,
		}
	}
	if len(result.Hunks) == 0 {
		return ViewModel{
			Kind:    ViewEmpty,
			FromSHA: result.FromSHA,
			ToSHA:   result.ToSHA,
		}
	}
	split := BuildSplit(result.Hunks)
	return ViewModel{
		Kind:      ViewLines,
		FromSHA:   result.FromSHA,
		ToSHA:     result.ToSHA,
		Additions: result.Additions,
		Deletions: result.Deletions,
		Unified:   BuildUnified(result.Hunks),
		Split:     &split,
	}
}
