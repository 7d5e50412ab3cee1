package app

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"inkwell/api/internal/config"
	"inkwell/api/internal/gitrepo"
	"inkwell/api/internal/store"
)

type fakeStore struct {
	getUserByIDFn        func(context.Context, string) (store.User, error)
	getPageFn            func(context.Context, string) (store.Page, error)
	updatePageFn         func(context.Context, string, string, string, string) error
	getApprovalFn        func(context.Context, string) (store.Approval, error)
	getPendingApprovalFn func(context.Context, string) (*store.Approval, error)
	listApprovalsFn      func(context.Context, string) ([]store.Approval, error)
	insertApprovalFn     func(context.Context, store.Approval) error
	decideApprovalFn     func(context.Context, string, string, string, string) error
	insertSignatureFn    func(context.Context, store.Signature) error
	listSignaturesFn     func(context.Context, string) ([]store.Signature, error)
	insertAuditEventFn   func(context.Context, store.AuditEvent) error
	insertPageFn         func(context.Context, store.Page) error
	getSpaceFn           func(context.Context, string) (store.Space, error)
	listPagesFn          func(context.Context, string) ([]store.Page, error)
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, id)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) ListUsersByRole(context.Context, string) ([]store.User, error) {
	return nil, nil
}
func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error { return nil }
func (f *fakeStore) IsAccessTokenRevoked(context.Context, string) (bool, error) { return false, nil }

func (f *fakeStore) InsertWorkspace(context.Context, store.Workspace) error { return nil }
func (f *fakeStore) ListWorkspaces(context.Context) ([]store.Workspace, error) {
	return nil, nil
}
func (f *fakeStore) GetWorkspace(context.Context, string) (store.Workspace, error) {
	return store.Workspace{ID: "ws_default"}, nil
}
func (f *fakeStore) UpdateWorkspace(context.Context, string, string, string) error { return nil }
func (f *fakeStore) DeleteWorkspace(context.Context, string) error                 { return nil }

func (f *fakeStore) InsertSpace(context.Context, store.Space) error { return nil }
func (f *fakeStore) ListSpaces(context.Context, string) ([]store.Space, error) {
	return nil, nil
}
func (f *fakeStore) GetSpace(ctx context.Context, id string) (store.Space, error) {
	if f.getSpaceFn != nil {
		return f.getSpaceFn(ctx, id)
	}
	return store.Space{ID: id, WorkspaceID: "ws_default", Name: "General"}, nil
}
func (f *fakeStore) UpdateSpace(context.Context, string, string, string, string) error { return nil }
func (f *fakeStore) DeleteSpace(context.Context, string) error                         { return nil }

func (f *fakeStore) InsertPage(ctx context.Context, page store.Page) error {
	if f.insertPageFn != nil {
		return f.insertPageFn(ctx, page)
	}
	return nil
}
func (f *fakeStore) ListPages(ctx context.Context, spaceID string) ([]store.Page, error) {
	if f.listPagesFn != nil {
		return f.listPagesFn(ctx, spaceID)
	}
	return nil, nil
}
func (f *fakeStore) GetPage(ctx context.Context, id string) (store.Page, error) {
	if f.getPageFn != nil {
		return f.getPageFn(ctx, id)
	}
	return store.Page{}, sql.ErrNoRows
}
func (f *fakeStore) UpdatePage(ctx context.Context, id, title, status, updatedBy string) error {
	if f.updatePageFn != nil {
		return f.updatePageFn(ctx, id, title, status, updatedBy)
	}
	return nil
}
func (f *fakeStore) DeletePage(context.Context, string) error { return nil }

func (f *fakeStore) InsertApproval(ctx context.Context, approval store.Approval) error {
	if f.insertApprovalFn != nil {
		return f.insertApprovalFn(ctx, approval)
	}
	return nil
}
func (f *fakeStore) GetApproval(ctx context.Context, id string) (store.Approval, error) {
	if f.getApprovalFn != nil {
		return f.getApprovalFn(ctx, id)
	}
	return store.Approval{}, sql.ErrNoRows
}
func (f *fakeStore) ListApprovals(ctx context.Context, pageID string) ([]store.Approval, error) {
	if f.listApprovalsFn != nil {
		return f.listApprovalsFn(ctx, pageID)
	}
	return nil, nil
}
func (f *fakeStore) GetPendingApproval(ctx context.Context, pageID string) (*store.Approval, error) {
	if f.getPendingApprovalFn != nil {
		return f.getPendingApprovalFn(ctx, pageID)
	}
	return nil, nil
}
func (f *fakeStore) DecideApproval(ctx context.Context, id, status, decidedBy, note string) error {
	if f.decideApprovalFn != nil {
		return f.decideApprovalFn(ctx, id, status, decidedBy, note)
	}
	return nil
}

func (f *fakeStore) InsertSignature(ctx context.Context, signature store.Signature) error {
	if f.insertSignatureFn != nil {
		return f.insertSignatureFn(ctx, signature)
	}
	return nil
}
func (f *fakeStore) ListSignatures(ctx context.Context, pageID string) ([]store.Signature, error) {
	if f.listSignaturesFn != nil {
		return f.listSignaturesFn(ctx, pageID)
	}
	return nil, nil
}

func (f *fakeStore) InsertAuditEvent(ctx context.Context, event store.AuditEvent) error {
	if f.insertAuditEventFn != nil {
		return f.insertAuditEventFn(ctx, event)
	}
	return nil
}
func (f *fakeStore) ListAuditEvents(context.Context, string, string, string, int) ([]store.AuditEvent, error) {
	return nil, nil
}

func (f *fakeStore) InsertAttachment(context.Context, store.Attachment) error { return nil }
func (f *fakeStore) ListAttachments(context.Context, string) ([]store.Attachment, error) {
	return nil, nil
}
func (f *fakeStore) GetAttachment(context.Context, string) (store.Attachment, error) {
	return store.Attachment{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteAttachment(context.Context, string) error { return nil }
func (f *fakeStore) Ping(context.Context) error                     { return nil }

type fakeSessions struct {
	sessions map[string]store.User
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]store.User)}
}

func (f *fakeSessions) SaveRefreshSession(_ context.Context, tokenHash string, user store.User, _ time.Time) error {
	f.sessions[tokenHash] = user
	return nil
}

func (f *fakeSessions) LookupRefreshSession(_ context.Context, tokenHash string) (store.User, error) {
	user, ok := f.sessions[tokenHash]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeSessions) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		TokenSecret: "test-secret",
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  24 * time.Hour,
	}
}

func newTestService(t *testing.T, fs *fakeStore) (*Service, *gitrepo.Service) {
	t.Helper()
	git := gitrepo.New(t.TempDir())
	svc := &Service{
		cfg:      testConfig(),
		store:    fs,
		git:      git,
		sessions: newFakeSessions(),
	}
	return svc, git
}

func editorSession() Session {
	return Session{UserID: "user_editor", UserName: "Edie Editor", Role: "editor"}
}

func approverSession() Session {
	return Session{UserID: "user_approver", UserName: "Ana Approver", Role: "approver"}
}

func seedPageRepo(t *testing.T, git *gitrepo.Service, pageID, body string) store.CommitInfo {
	t.Helper()
	if err := git.EnsurePageRepo(pageID, body, "Edie Editor"); err != nil {
		t.Fatalf("EnsurePageRepo: %v", err)
	}
	if err := git.EnsureBranch(pageID, "draft", "main"); err != nil {
		t.Fatalf("EnsureBranch: %v", err)
	}
	_, head, err := git.HeadBody(pageID, "draft")
	if err != nil {
		t.Fatalf("HeadBody: %v", err)
	}
	return head
}

func TestSessionLifecycle(t *testing.T) {
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, id string) (store.User, error) {
			return store.User{ID: id, DisplayName: "Edie Editor", Email: "edie@example.com", Role: "editor"}, nil
		},
	}
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user_editor")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Token == "" || session.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if session.Role != "editor" {
		t.Fatalf("role = %q, want editor", session.Role)
	}

	parsed, err := svc.SessionFromToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserID != "user_editor" || parsed.UserName != "Edie Editor" {
		t.Fatalf("unexpected session identity: %+v", parsed)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, id string) (store.User, error) {
			return store.User{ID: id, DisplayName: "Edie Editor", Role: "editor"}, nil
		},
	}
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, "user_editor")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, first.RefreshToken); err == nil {
		t.Fatal("expected used refresh token to be rejected")
	}
}

func TestRequestApprovalConflictsWhenPending(t *testing.T) {
	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook", Status: "draft"}, nil
		},
		getPendingApprovalFn: func(context.Context, string) (*store.Approval, error) {
			return &store.Approval{ID: "apr_existing", Status: "pending"}, nil
		},
	}
	svc, git := newTestService(t, fs)
	seedPageRepo(t, git, "page_1", "hello\n")

	_, err := svc.RequestApproval(context.Background(), "page_1", "", editorSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Code != "APPROVAL_PENDING" || domainErr.Status != 409 {
		t.Fatalf("unexpected error: %+v", domainErr)
	}
}

func TestRequestApprovalPinsDraftHead(t *testing.T) {
	var inserted store.Approval
	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook", Status: "draft"}, nil
		},
		insertApprovalFn: func(_ context.Context, approval store.Approval) error {
			inserted = approval
			return nil
		},
	}
	svc, git := newTestService(t, fs)
	head := seedPageRepo(t, git, "page_1", "hello\n")

	approval, err := svc.RequestApproval(context.Background(), "page_1", "please review", editorSession())
	if err != nil {
		t.Fatalf("RequestApproval: %v", err)
	}
	if approval.Revision != head.Hash {
		t.Fatalf("revision = %q, want draft head %q", approval.Revision, head.Hash)
	}
	if inserted.Status != "pending" || inserted.RequestedBy != "user_editor" {
		t.Fatalf("unexpected inserted approval: %+v", inserted)
	}
}

func TestDecideApprovalRecordsSignature(t *testing.T) {
	const body = "# Runbook\n\nstep one\n"
	var signature store.Signature
	var decidedStatus string

	svc, git := newTestService(t, nil)
	head := seedPageRepo(t, git, "page_1", body)

	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook", Status: "in_review"}, nil
		},
		getApprovalFn: func(_ context.Context, id string) (store.Approval, error) {
			return store.Approval{
				ID:          id,
				PageID:      "page_1",
				Revision:    head.Hash,
				Status:      "pending",
				RequestedBy: "user_editor",
			}, nil
		},
		insertSignatureFn: func(_ context.Context, sig store.Signature) error {
			signature = sig
			return nil
		},
		decideApprovalFn: func(_ context.Context, _, status, _, _ string) error {
			decidedStatus = status
			return nil
		},
	}
	svc.store = fs

	if _, err := svc.DecideApproval(context.Background(), "apr_1", true, "looks good", approverSession()); err != nil {
		t.Fatalf("DecideApproval: %v", err)
	}

	if decidedStatus != "approved" {
		t.Fatalf("decided status = %q, want approved", decidedStatus)
	}
	if signature.SignerID != "user_approver" || signature.PageID != "page_1" {
		t.Fatalf("unexpected signature: %+v", signature)
	}
	if signature.ID == "" {
		t.Fatal("signature id missing")
	}

	sum := sha256.Sum256([]byte(body))
	if signature.Checksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum = %q, want sha256 of body", signature.Checksum)
	}
}

func TestDecideApprovalRejectsSelfApproval(t *testing.T) {
	svc, git := newTestService(t, nil)
	head := seedPageRepo(t, git, "page_1", "hello\n")

	fs := &fakeStore{
		getApprovalFn: func(_ context.Context, id string) (store.Approval, error) {
			return store.Approval{
				ID:          id,
				PageID:      "page_1",
				Revision:    head.Hash,
				Status:      "pending",
				RequestedBy: "user_editor",
			}, nil
		},
	}
	svc.store = fs

	_, err := svc.DecideApproval(context.Background(), "apr_1", true, "", editorSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SELF_APPROVAL" {
		t.Fatalf("expected SELF_APPROVAL error, got %v", err)
	}
}

func TestDecideApprovalAlreadyDecided(t *testing.T) {
	svc, _ := newTestService(t, nil)
	fs := &fakeStore{
		getApprovalFn: func(_ context.Context, id string) (store.Approval, error) {
			return store.Approval{ID: id, PageID: "page_1", Status: "approved"}, nil
		},
	}
	svc.store = fs

	_, err := svc.DecideApproval(context.Background(), "apr_1", false, "", approverSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "ALREADY_DECIDED" {
		t.Fatalf("expected ALREADY_DECIDED error, got %v", err)
	}
}

func TestPublishRequiresApprovedHead(t *testing.T) {
	svc, git := newTestService(t, nil)
	seedPageRepo(t, git, "page_1", "v1\n")

	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook", Status: "draft"}, nil
		},
		listApprovalsFn: func(context.Context, string) ([]store.Approval, error) {
			return nil, nil
		},
	}
	svc.store = fs

	_, err := svc.PublishPage(context.Background(), "page_1", editorSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_APPROVED" {
		t.Fatalf("expected NOT_APPROVED error, got %v", err)
	}
}

func TestPublishFastForwardsMain(t *testing.T) {
	svc, git := newTestService(t, nil)
	seedPageRepo(t, git, "page_1", "v1\n")

	commit, err := git.CommitBody("page_1", "draft", "v2\n", "Edie Editor", "Revise")
	if err != nil {
		t.Fatalf("CommitBody: %v", err)
	}

	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook", Status: "approved"}, nil
		},
		listApprovalsFn: func(context.Context, string) ([]store.Approval, error) {
			return []store.Approval{{ID: "apr_1", Revision: commit.Hash, Status: "approved"}}, nil
		},
	}
	svc.store = fs

	published, err := svc.PublishPage(context.Background(), "page_1", editorSession())
	if err != nil {
		t.Fatalf("PublishPage: %v", err)
	}
	if published.Hash == "" {
		t.Fatal("expected publish commit hash")
	}

	body, _, err := git.HeadBody("page_1", "main")
	if err != nil {
		t.Fatalf("HeadBody(main): %v", err)
	}
	if body != "v2\n" {
		t.Fatalf("main body = %q, want v2", body)
	}
}

func TestPageDiffBetweenRevisions(t *testing.T) {
	svc, git := newTestService(t, nil)
	first := seedPageRepo(t, git, "page_1", "alpha\nbeta\n")

	second, err := git.CommitBody("page_1", "draft", "alpha\ngamma\n", "Edie Editor", "Swap line")
	if err != nil {
		t.Fatalf("CommitBody: %v", err)
	}

	fs := &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id, SpaceID: "sp_default", Title: "Runbook"}, nil
		},
	}
	svc.store = fs

	view, err := svc.PageDiff(context.Background(), "page_1", first.Hash, second.Hash)
	if err != nil {
		t.Fatalf("PageDiff: %v", err)
	}
	if view.Kind.String() != "lines" {
		t.Fatalf("kind = %s, want lines", view.Kind)
	}
	if view.Additions != 1 || view.Deletions != 1 {
		t.Fatalf("additions/deletions = %d/%d, want 1/1", view.Additions, view.Deletions)
	}
	if view.Split == nil || len(view.Split.Left) != len(view.Split.Right) {
		t.Fatal("split view missing or misaligned")
	}
}

func TestPageDiffRequiresRevisions(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{
		getPageFn: func(_ context.Context, id string) (store.Page, error) {
			return store.Page{ID: id}, nil
		},
	})

	_, err := svc.PageDiff(context.Background(), "page_1", "", "abc")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != 422 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Release Runbook", "release-runbook"},
		{"  Hello, World!  ", "hello-world"},
		{"API v2 / Draft", "api-v2-draft"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
