package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestPageRepoLifecycle(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	body := "# Welcome\n\nFirst paragraph.\n"
	if err := svc.EnsurePageRepo("page-1", body, "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "page-1")); err != nil {
		t.Fatalf("repo directory missing: %v", err)
	}

	// second call is a no-op
	if err := svc.EnsurePageRepo("page-1", "other", "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() second call error = %v", err)
	}

	if err := svc.EnsureBranch("page-1", "draft", "main"); err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}

	commit, err := svc.CommitBody("page-1", "draft", "# Welcome\n\nSecond paragraph.\n", "Avery", "Update intro")
	if err != nil {
		t.Fatalf("CommitBody() error = %v", err)
	}
	if commit.Hash == "" {
		t.Fatal("expected commit hash")
	}

	history, err := svc.History("page-1", "draft", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}

	changed, err := svc.BodyAt("page-1", commit.Hash)
	if err != nil {
		t.Fatalf("BodyAt() error = %v", err)
	}
	if !strings.Contains(changed, "Second paragraph.") {
		t.Fatalf("unexpected body: %q", changed)
	}

	head, headCommit, err := svc.HeadBody("page-1", "main")
	if err != nil {
		t.Fatalf("HeadBody() error = %v", err)
	}
	if !strings.Contains(head, "First paragraph.") {
		t.Fatalf("main should still hold the initial body, got %q", head)
	}
	if headCommit.Hash == commit.Hash {
		t.Fatal("main head should differ from draft head")
	}
}

func TestPublishDraftCopiesContentToMain(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	if err := svc.EnsurePageRepo("page-1", "original\n", "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() error = %v", err)
	}
	if err := svc.EnsureBranch("page-1", "draft", "main"); err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}
	if _, err := svc.CommitBody("page-1", "draft", "revised\n", "Avery", "Revise"); err != nil {
		t.Fatalf("CommitBody() error = %v", err)
	}

	published, err := svc.PublishDraft("page-1", "Morgan", "Publish revision")
	if err != nil {
		t.Fatalf("PublishDraft() error = %v", err)
	}
	if !strings.Contains(published.Message, "publish: source=draft target=main") {
		t.Fatalf("unexpected publish message: %q", published.Message)
	}

	head, _, err := svc.HeadBody("page-1", "main")
	if err != nil {
		t.Fatalf("HeadBody() error = %v", err)
	}
	if head != "revised\n" {
		t.Fatalf("main body = %q, want %q", head, "revised\n")
	}
}

func TestChecksumIsStablePerRevision(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	if err := svc.EnsurePageRepo("page-1", "content\n", "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() error = %v", err)
	}
	history, err := svc.History("page-1", "main", 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	first, err := svc.Checksum("page-1", history[0].Hash)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	second, err := svc.Checksum("page-1", history[0].Hash)
	if err != nil {
		t.Fatalf("Checksum() second call error = %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("checksum not stable: %q vs %q", first, second)
	}
}

func TestConcurrentCommitBodySameBranch(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	if err := svc.EnsurePageRepo("page-1", "base\n", "Avery"); err != nil {
		t.Fatalf("EnsurePageRepo() error = %v", err)
	}
	if err := svc.EnsureBranch("page-1", "draft", "main"); err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}

	const writers = 12
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			body := fmt.Sprintf("revision %02d\n", idx)
			if _, err := svc.CommitBody("page-1", "draft", body, "Avery", fmt.Sprintf("Commit %02d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("CommitBody() concurrent error = %v", err)
		}
	}

	history, err := svc.History("page-1", "draft", 100)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) < writers+1 {
		t.Fatalf("expected at least %d commits in history, got %d", writers+1, len(history))
	}
}
