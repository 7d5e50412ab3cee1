package gitrepo

import (
	"strings"
	"testing"

	"inkwell/api/internal/diffview"
)

func seedPage(t *testing.T, svc *Service, pageID, body string) string {
	t.Helper()
	if err := svc.EnsurePageRepo(pageID, body, "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() error = %v", err)
	}
	history, err := svc.History(pageID, "main", 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	return history[0].Hash
}

func TestDiffBetweenRevisions(t *testing.T) {
	svc := New(t.TempDir())

	first := seedPage(t, svc, "page-1", "alpha\nbeta\ngamma\n")
	commit, err := svc.CommitBody("page-1", "main", "alpha\nBETA\ngamma\n", "Avery", "Shout beta")
	if err != nil {
		t.Fatalf("CommitBody() error = %v", err)
	}

	result, err := svc.Diff("page-1", first, commit.Hash)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if result.IsBinary {
		t.Fatal("text diff flagged binary")
	}
	if result.FromSHA != first || result.ToSHA != commit.Hash {
		t.Fatalf("revision labels = %q..%q, want %q..%q", result.FromSHA, result.ToSHA, first, commit.Hash)
	}
	if len(result.Hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(result.Hunks))
	}
	if result.Additions != 1 || result.Deletions != 1 {
		t.Fatalf("counts = +%d/-%d, want +1/-1", result.Additions, result.Deletions)
	}

	lines := diffview.ParseHunk(result.Hunks[0])
	var sawDeletion, sawAddition bool
	for _, line := range lines {
		if line.Kind == diffview.LineDeletion && line.Content == "beta" {
			sawDeletion = true
		}
		if line.Kind == diffview.LineAddition && line.Content == "BETA" {
			sawAddition = true
		}
	}
	if !sawDeletion || !sawAddition {
		t.Fatalf("expected beta replacement in parsed lines: %+v", lines)
	}
}

func TestDiffIdenticalRevisionsIsEmpty(t *testing.T) {
	svc := New(t.TempDir())

	first := seedPage(t, svc, "page-1", "same\n")
	result, err := svc.Diff("page-1", first, first)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(result.Hunks) != 0 || result.IsBinary {
		t.Fatalf("expected empty diff, got %+v", result)
	}

	model := diffview.Build(result)
	if model.Kind != diffview.ViewEmpty {
		t.Fatalf("view model kind = %v, want ViewEmpty", model.Kind)
	}
}

func TestDiffBinaryContentShortCircuits(t *testing.T) {
	svc := New(t.TempDir())

	first := seedPage(t, svc, "page-1", "plain text\n")
	commit, err := svc.CommitBody("page-1", "main", "\x00\x01binary payload\x00\n", "Avery", "Attach binary")
	if err != nil {
		t.Fatalf("CommitBody() error = %v", err)
	}

	result, err := svc.Diff("page-1", first, commit.Hash)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if !result.IsBinary {
		t.Fatal("expected binary diff")
	}
	if len(result.Hunks) != 0 {
		t.Fatalf("binary diff carries hunks: %+v", result.Hunks)
	}

	model := diffview.Build(result)
	if model.Kind != diffview.ViewBinary {
		t.Fatalf("view model kind = %v, want ViewBinary", model.Kind)
	}
}

func TestParseHunksReadsHeaderRanges(t *testing.T) {
	unified := strings.Join([]string{
		"diff --git a/page.md b/page.md",
		"index 0000000..1111111 100644",
		"--- a/page.md",
		"+++ b/page.md",
		"@@ -10,2 +10,2 @@",
		" keep",
		"-remove me",
		"+add me instead",
		"\\ No newline at end of file",
	}, "\n")

	hunks, additions, deletions := parseHunks(unified)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	hunk := hunks[0]
	if hunk.OldStart != 10 || hunk.OldLines != 2 || hunk.NewStart != 10 || hunk.NewLines != 2 {
		t.Fatalf("unexpected ranges: %+v", hunk)
	}
	if additions != 1 || deletions != 1 {
		t.Fatalf("counts = +%d/-%d, want +1/-1", additions, deletions)
	}
	if strings.Contains(hunk.Content, "No newline") {
		t.Fatalf("marker line leaked into content: %q", hunk.Content)
	}
	if strings.Contains(hunk.Content, "page.md") {
		t.Fatalf("file header leaked into content: %q", hunk.Content)
	}
}

func TestParseHunksOmittedCountDefaultsToOne(t *testing.T) {
	hunks, _, _ := parseHunks("@@ -5 +6 @@\n-old\n+new")
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	if hunks[0].OldStart != 5 || hunks[0].OldLines != 1 || hunks[0].NewStart != 6 || hunks[0].NewLines != 1 {
		t.Fatalf("unexpected ranges: %+v", hunks[0])
	}
}
