package gitrepo

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"inkwell/api/internal/diffview"

	git "github.com/go-git/go-git/v5"
)

// Diff computes the line diff between two revisions of a page and returns
// it as a diffview.DiffResult. Binary content short-circuits without hunks.
func (s *Service) Diff(pageID, fromHash, toHash string) (diffview.DiffResult, error) {
	lock := s.pageLock(pageID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(pageID))
	if err != nil {
		return diffview.DiffResult{}, fmt.Errorf("open repo: %w", err)
	}

	fromResolved, err := resolveHash(repo, fromHash)
	if err != nil {
		return diffview.DiffResult{}, err
	}
	toResolved, err := resolveHash(repo, toHash)
	if err != nil {
		return diffview.DiffResult{}, err
	}

	fromCommit, err := repo.CommitObject(fromResolved)
	if err != nil {
		return diffview.DiffResult{}, fmt.Errorf("read commit %s: %w", fromHash, err)
	}
	toCommit, err := repo.CommitObject(toResolved)
	if err != nil {
		return diffview.DiffResult{}, fmt.Errorf("read commit %s: %w", toHash, err)
	}

	patch, err := fromCommit.Patch(toCommit)
	if err != nil {
		return diffview.DiffResult{}, fmt.Errorf("compute patch: %w", err)
	}

	result := diffview.DiffResult{
		FromSHA: fromCommit.Hash.String()[:7],
		ToSHA:   toCommit.Hash.String()[:7],
	}

	for _, filePatch := range patch.FilePatches() {
		if filePatch.IsBinary() {
			result.IsBinary = true
			return result, nil
		}
	}

	result.Hunks, result.Additions, result.Deletions = parseHunks(patch.String())
	return result, nil
}

// parseHunks extracts the hunks of a rendered unified diff. File headers and
// any other metadata lines outside hunk content are skipped.
func parseHunks(unified string) ([]diffview.DiffHunk, int, int) {
	hunks := make([]diffview.DiffHunk, 0, 4)
	additions, deletions := 0, 0

	var current *diffview.DiffHunk
	var content strings.Builder
	flush := func() {
		if current == nil {
			return
		}
		current.Content = content.String()
		hunks = append(hunks, *current)
		current = nil
		content.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(unified))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "diff --git ") {
			// next file's headers follow; stop collecting until its first hunk
			flush()
			continue
		}
		if strings.HasPrefix(line, "@@") {
			flush()
			hunk, ok := parseHunkHeader(line)
			if !ok {
				continue
			}
			current = &hunk
			continue
		}
		if current == nil || line == "" {
			continue
		}
		switch line[0] {
		case '+':
			additions++
		case '-':
			deletions++
		case ' ':
		default:
			// "\ No newline at end of file" and any file headers
			continue
		}
		if content.Len() > 0 {
			content.WriteByte('\n')
		}
		content.WriteString(line)
	}
	flush()
	return hunks, additions, deletions
}

// parseHunkHeader reads "@@ -a,b +c,d @@"; a count of 1 may be omitted.
func parseHunkHeader(line string) (diffview.DiffHunk, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return diffview.DiffHunk{}, false
	}
	oldStart, oldLines, ok := parseRange(strings.TrimPrefix(fields[1], "-"))
	if !ok {
		return diffview.DiffHunk{}, false
	}
	newStart, newLines, ok := parseRange(strings.TrimPrefix(fields[2], "+"))
	if !ok {
		return diffview.DiffHunk{}, false
	}
	return diffview.DiffHunk{
		OldStart: oldStart,
		OldLines: oldLines,
		NewStart: newStart,
		NewLines: newLines,
	}, true
}

func parseRange(spec string) (start, count int, ok bool) {
	startStr, countStr := spec, "1"
	if comma := strings.IndexByte(spec, ','); comma >= 0 {
		startStr, countStr = spec[:comma], spec[comma+1:]
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, false
	}
	count, err = strconv.Atoi(countStr)
	if err != nil {
		return 0, 0, false
	}
	return start, count, true
}
