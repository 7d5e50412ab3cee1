package diffview

import "testing"

func TestBuildSplitPairsSingleReplacement(t *testing.T) {
	hunks := []DiffHunk{{
		OldStart: 10,
		OldLines: 2,
		NewStart: 10,
		NewLines: 2,
		Content:  " keep\n-remove me\n+add me instead",
	}}

	view := BuildSplit(hunks)
	if len(view.Left) != len(view.Right) {
		t.Fatalf("column lengths differ: %d vs %d", len(view.Left), len(view.Right))
	}
	if len(view.Left) != 3 {
		t.Fatalf("got %d rows, want 3 (header, context, replacement)", len(view.Left))
	}

	if view.Left[0].Kind != CellHeader || view.Left[0].Header != "@@ -10,2 @@" {
		t.Fatalf("left header = %+v", view.Left[0])
	}
	if view.Right[0].Kind != CellHeader || view.Right[0].Header != "@@ +10,2 @@" {
		t.Fatalf("right header = %+v", view.Right[0])
	}
	if view.Left[1].Line.Content != "keep" || view.Right[1].Line.Content != "keep" {
		t.Fatalf("context row = %+v | %+v", view.Left[1], view.Right[1])
	}
	if view.Left[2].Line.Content != "remove me" || view.Right[2].Line.Content != "add me instead" {
		t.Fatalf("replacement row = %+v | %+v", view.Left[2], view.Right[2])
	}
}

func TestBuildSplitUnbalancedReplacementUsesOneLineLookahead(t *testing.T) {
	hunks := []DiffHunk{{
		OldStart: 1,
		OldLines: 3,
		NewStart: 1,
		NewLines: 3,
		Content:  "-a\n-b\n-c\n+x\n+y\n+z",
	}}

	view := BuildSplit(hunks)
	if len(view.Left) != len(view.Right) {
		t.Fatalf("column lengths differ: %d vs %d", len(view.Left), len(view.Right))
	}
	// header + 5 line rows: only the first deletion pairs with the first
	// addition, the rest pad with blanks
	if len(view.Left) != 6 {
		t.Fatalf("got %d rows, want 6", len(view.Left))
	}

	type row struct{ left, right string }
	got := make([]row, 0, 5)
	for i := 1; i < len(view.Left); i++ {
		var r row
		if view.Left[i].Kind == CellLine {
			r.left = view.Left[i].Line.Content
		}
		if view.Right[i].Kind == CellLine {
			r.right = view.Right[i].Line.Content
		}
		got = append(got, r)
	}

	want := []row{
		{left: "a", right: "x"},
		{left: "b"},
		{left: "c"},
		{right: "y"},
		{right: "z"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildSplitLongDeletionRunPairsFirstLineOnly(t *testing.T) {
	hunks := []DiffHunk{{
		OldStart: 1,
		OldLines: 2,
		NewStart: 1,
		NewLines: 1,
		Content:  "-a\n-b\n+x",
	}}

	view := BuildSplit(hunks)
	// header, paired (a|x), trailing deletion (b|blank)
	if len(view.Left) != 3 || len(view.Right) != 3 {
		t.Fatalf("got %d/%d rows, want 3/3", len(view.Left), len(view.Right))
	}
	if view.Left[1].Line.Content != "a" || view.Right[1].Line.Content != "x" {
		t.Fatalf("paired row = %+v | %+v", view.Left[1], view.Right[1])
	}
	if view.Left[2].Line.Content != "b" || view.Right[2].Kind != CellBlank {
		t.Fatalf("trailing deletion row = %+v | %+v", view.Left[2], view.Right[2])
	}
}

func TestBuildSplitColumnsAlwaysEqualLength(t *testing.T) {
	cases := [][]DiffHunk{
		nil,
		{{OldStart: 1, NewStart: 1, Content: "+only added\n+another"}},
		{{OldStart: 1, NewStart: 1, Content: "-only removed"}},
		{{OldStart: 1, NewStart: 1, Content: " ctx\n-d1\n+a1\n+a2\n-d2\n ctx2"}},
		{
			{OldStart: 1, NewStart: 1, Content: "garbage\nmore garbage"},
			{OldStart: 9, NewStart: 9, Content: "-z\n+q\n trailing"},
		},
	}
	for i, hunks := range cases {
		view := BuildSplit(hunks)
		if len(view.Left) != len(view.Right) {
			t.Fatalf("case %d: column lengths differ: %d vs %d", i, len(view.Left), len(view.Right))
		}
	}
}

func TestBuildSplitAdditionAfterConsumedDeletionStandsAlone(t *testing.T) {
	hunks := []DiffHunk{{
		OldStart: 1,
		NewStart: 1,
		Content:  "-d\n+a1\n+a2",
	}}

	view := BuildSplit(hunks)
	// header, paired (d|a1), lone addition (blank|a2)
	if len(view.Left) != 3 {
		t.Fatalf("got %d rows, want 3", len(view.Left))
	}
	if view.Left[1].Line.Content != "d" || view.Right[1].Line.Content != "a1" {
		t.Fatalf("paired row = %+v | %+v", view.Left[1], view.Right[1])
	}
	if view.Left[2].Kind != CellBlank || view.Right[2].Line.Content != "a2" {
		t.Fatalf("lone addition row = %+v | %+v", view.Left[2], view.Right[2])
	}
}
