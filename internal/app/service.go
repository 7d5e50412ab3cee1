package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/api/internal/auth"
	"inkwell/api/internal/authpw"
	"inkwell/api/internal/config"
	"inkwell/api/internal/diffview"
	"inkwell/api/internal/email"
	"inkwell/api/internal/export"
	"inkwell/api/internal/gitrepo"
	"inkwell/api/internal/rbac"
	"inkwell/api/internal/search"
	"inkwell/api/internal/store"
	"inkwell/api/internal/util"
)

const (
	mainBranch  = "main"
	draftBranch = "draft"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Role         string
	IsExternal   bool
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	ListUsersByRole(context.Context, string) ([]store.User, error)
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	InsertWorkspace(context.Context, store.Workspace) error
	ListWorkspaces(context.Context) ([]store.Workspace, error)
	GetWorkspace(context.Context, string) (store.Workspace, error)
	UpdateWorkspace(context.Context, string, string, string) error
	DeleteWorkspace(context.Context, string) error

	InsertSpace(context.Context, store.Space) error
	ListSpaces(context.Context, string) ([]store.Space, error)
	GetSpace(context.Context, string) (store.Space, error)
	UpdateSpace(context.Context, string, string, string, string) error
	DeleteSpace(context.Context, string) error

	InsertPage(context.Context, store.Page) error
	ListPages(context.Context, string) ([]store.Page, error)
	GetPage(context.Context, string) (store.Page, error)
	UpdatePage(context.Context, string, string, string, string) error
	DeletePage(context.Context, string) error

	InsertApproval(context.Context, store.Approval) error
	GetApproval(context.Context, string) (store.Approval, error)
	ListApprovals(context.Context, string) ([]store.Approval, error)
	GetPendingApproval(context.Context, string) (*store.Approval, error)
	DecideApproval(context.Context, string, string, string, string) error

	InsertSignature(context.Context, store.Signature) error
	ListSignatures(context.Context, string) ([]store.Signature, error)

	InsertAuditEvent(context.Context, store.AuditEvent) error
	ListAuditEvents(context.Context, string, string, string, int) ([]store.AuditEvent, error)

	InsertAttachment(context.Context, store.Attachment) error
	ListAttachments(context.Context, string) ([]store.Attachment, error)
	GetAttachment(context.Context, string) (store.Attachment, error)
	DeleteAttachment(context.Context, string) error

	Ping(ctx context.Context) error
}

type gitService interface {
	EnsurePageRepo(pageID, body, author string) error
	EnsureBranch(pageID, branchName, fromBranch string) error
	CommitBody(pageID, branchName, body, author, message string) (store.CommitInfo, error)
	HeadBody(pageID, branchName string) (string, store.CommitInfo, error)
	BodyAt(pageID, hash string) (string, error)
	Checksum(pageID, hash string) (string, error)
	History(pageID, branchName string, limit int) ([]store.CommitInfo, error)
	PublishDraft(pageID, author, message string) (store.CommitInfo, error)
	Diff(pageID, fromHash, toHash string) (diffview.DiffResult, error)
}

// sessionStore holds refresh sessions. Backed by Redis when configured,
// PostgreSQL otherwise.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type blobStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (int64, error)
	Get(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectKey string) error
}

// pgSessionStore adapts the PostgreSQL store to the sessionStore interface.
// Postgres keeps only the user ID; the user record is rehydrated on lookup.
type pgSessionStore struct {
	store *store.PostgresStore
}

func (p pgSessionStore) SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error {
	return p.store.SaveRefreshSession(ctx, tokenHash, user.ID, expiresAt)
}

func (p pgSessionStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error) {
	return p.store.LookupRefreshSession(ctx, tokenHash)
}

func (p pgSessionStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	return p.store.RevokeRefreshSession(ctx, tokenHash)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	git      gitService
	sessions sessionStore
	search   *search.Service
	blob     blobStore
	email    *email.Service
	authpw   *authpw.Service
	exporter *export.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, gitService *gitrepo.Service) *Service {
	s := &Service{
		cfg:      cfg,
		store:    dataStore,
		git:      gitService,
		sessions: pgSessionStore{store: dataStore},
	}
	s.exporter = export.NewService(exportData{s})
	return s
}

// WithSessions replaces the refresh session backend, e.g. with Redis.
func (s *Service) WithSessions(sessions sessionStore) *Service {
	s.sessions = sessions
	return s
}

func (s *Service) WithSearch(svc *search.Service) *Service {
	s.search = svc
	return s
}

func (s *Service) WithBlob(blob blobStore) *Service {
	s.blob = blob
	return s
}

func (s *Service) WithEmail(svc *email.Service) *Service {
	s.email = svc
	return s
}

func (s *Service) WithAuthPassword(svc *authpw.Service) *Service {
	s.authpw = svc
	return s
}

// AuthPasswordService returns the email/password auth service, or nil when
// not configured.
func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Bootstrap seeds the default workspace and space on first run.
func (s *Service) Bootstrap(ctx context.Context) error {
	workspaces, err := s.store.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	if len(workspaces) > 0 {
		return nil
	}

	if err := s.store.InsertWorkspace(ctx, store.Workspace{
		ID:       "ws_default",
		Name:     "Inkwell",
		Slug:     "inkwell",
		Settings: "{}",
	}); err != nil {
		return err
	}
	return s.store.InsertSpace(ctx, store.Space{
		ID:          "sp_default",
		WorkspaceID: "ws_default",
		Name:        "General",
		Slug:        "general",
		Description: "Default space",
		Visibility:  "internal",
	})
}

// ----- Sessions -----

// CreateSession issues an access/refresh token pair for a verified user.
func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	// Rotate: the presented refresh token is single-use.
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:      user.ID,
		Name:     user.DisplayName,
		Role:     user.Role,
		External: user.IsExternal,
		JTI:      jti,
		Exp:      expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Role:         user.Role,
		IsExternal:   user.IsExternal,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:      token,
		UserID:     claims.Sub,
		UserName:   claims.Name,
		Role:       claims.Role,
		IsExternal: claims.External,
		JTI:        claims.JTI,
		ExpiresAt:  time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

// ----- Workspaces -----

func (s *Service) ListWorkspaces(ctx context.Context) ([]store.Workspace, error) {
	return s.store.ListWorkspaces(ctx)
}

func (s *Service) CreateWorkspace(ctx context.Context, name string, session Session) (store.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Workspace{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	workspace := store.Workspace{
		ID:       util.NewID("ws"),
		Name:     name,
		Slug:     slugify(name),
		Settings: "{}",
	}
	if err := s.store.InsertWorkspace(ctx, workspace); err != nil {
		return store.Workspace{}, err
	}
	s.recordAudit(ctx, session, "workspace.created", "workspace", workspace.ID, map[string]any{"name": name})
	return workspace, nil
}

func (s *Service) GetWorkspace(ctx context.Context, id string) (store.Workspace, error) {
	return s.store.GetWorkspace(ctx, id)
}

func (s *Service) UpdateWorkspace(ctx context.Context, id, name, settings string, session Session) error {
	if err := s.store.UpdateWorkspace(ctx, id, name, settings); err != nil {
		return err
	}
	s.recordAudit(ctx, session, "workspace.updated", "workspace", id, map[string]any{"name": name})
	return nil
}

func (s *Service) DeleteWorkspace(ctx context.Context, id string, session Session) error {
	if err := s.store.DeleteWorkspace(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, session, "workspace.deleted", "workspace", id, nil)
	return nil
}

// ----- Spaces -----

func (s *Service) ListSpaces(ctx context.Context, workspaceID string) ([]store.Space, error) {
	return s.store.ListSpaces(ctx, workspaceID)
}

func (s *Service) CreateSpace(ctx context.Context, workspaceID, name, description, visibility string, session Session) (store.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Space{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if _, err := s.store.GetWorkspace(ctx, workspaceID); err != nil {
		return store.Space{}, err
	}
	if visibility == "" {
		visibility = "internal"
	}
	space := store.Space{
		ID:          util.NewID("sp"),
		WorkspaceID: workspaceID,
		Name:        name,
		Slug:        slugify(name),
		Description: description,
		Visibility:  visibility,
	}
	if err := s.store.InsertSpace(ctx, space); err != nil {
		return store.Space{}, err
	}
	s.recordAudit(ctx, session, "space.created", "space", space.ID, map[string]any{"name": name})
	return space, nil
}

func (s *Service) GetSpace(ctx context.Context, id string) (store.Space, error) {
	return s.store.GetSpace(ctx, id)
}

func (s *Service) UpdateSpace(ctx context.Context, id, name, description, visibility string, session Session) error {
	if err := s.store.UpdateSpace(ctx, id, name, description, visibility); err != nil {
		return err
	}
	s.recordAudit(ctx, session, "space.updated", "space", id, map[string]any{"name": name})
	return nil
}

func (s *Service) DeleteSpace(ctx context.Context, id string, session Session) error {
	pages, err := s.store.ListPages(ctx, id)
	if err != nil {
		return err
	}
	if len(pages) > 0 {
		return domainError(http.StatusConflict, "SPACE_NOT_EMPTY", "Space still contains pages", map[string]any{"pageCount": len(pages)})
	}
	if err := s.store.DeleteSpace(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, session, "space.deleted", "space", id, nil)
	return nil
}

// ----- Pages -----

func (s *Service) ListPages(ctx context.Context, spaceID string) ([]map[string]any, error) {
	pages, err := s.store.ListPages(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(pages))
	for _, page := range pages {
		items = append(items, pageSummary(page))
	}
	return items, nil
}

func (s *Service) CreatePage(ctx context.Context, spaceID, title, body string, session Session) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled Page"
	}
	if _, err := s.store.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}

	page := store.Page{
		ID:        util.NewID("page"),
		SpaceID:   spaceID,
		Title:     title,
		Slug:      slugify(title),
		Status:    "draft",
		UpdatedBy: session.UserName,
	}
	if err := s.store.InsertPage(ctx, page); err != nil {
		return nil, err
	}
	if err := s.git.EnsurePageRepo(page.ID, body, session.UserName); err != nil {
		return nil, err
	}
	if err := s.git.EnsureBranch(page.ID, draftBranch, mainBranch); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, session, "page.created", "page", page.ID, map[string]any{"title": title})
	s.indexPage(page, body)
	return s.GetPageView(ctx, page.ID)
}

// GetPageView returns the page with its draft head commit and body.
func (s *Service) GetPageView(ctx context.Context, pageID string) (map[string]any, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	body, head, err := s.git.HeadBody(pageID, draftBranch)
	if err != nil {
		return nil, err
	}
	view := pageSummary(page)
	view["body"] = body
	view["revision"] = head.Hash
	view["revisionAuthor"] = head.Author
	view["revisionMessage"] = head.Message
	return view, nil
}

// SaveDraft commits a new body on the page's draft branch.
func (s *Service) SaveDraft(ctx context.Context, pageID, body, message string, session Session) (store.CommitInfo, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return store.CommitInfo{}, err
	}
	if message == "" {
		message = "Update draft"
	}
	commit, err := s.git.CommitBody(pageID, draftBranch, body, session.UserName, message)
	if err != nil {
		return store.CommitInfo{}, err
	}
	if err := s.store.UpdatePage(ctx, pageID, page.Title, page.Status, session.UserName); err != nil {
		return store.CommitInfo{}, err
	}
	s.recordAudit(ctx, session, "page.draft_saved", "page", pageID, map[string]any{"revision": commit.Hash})
	s.indexPage(page, body)
	return commit, nil
}

// GetPageBody returns a page body at a revision. The revision may be a
// commit hash or a branch name; "latest" means the draft head.
func (s *Service) GetPageBody(ctx context.Context, pageID, revision string) (string, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return "", err
	}
	if revision == "" || revision == "latest" {
		body, _, err := s.git.HeadBody(pageID, draftBranch)
		return body, err
	}
	return s.git.BodyAt(pageID, revision)
}

func (s *Service) PageHistory(ctx context.Context, pageID, branch string, limit int) ([]store.CommitInfo, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	if branch == "" {
		branch = draftBranch
	}
	if branch != draftBranch && branch != mainBranch {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "branch must be draft or main", nil)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.git.History(pageID, branch, limit)
}

// PageDiff renders the change between two revisions of a page. Revisions
// may be commit hashes or branch names.
func (s *Service) PageDiff(ctx context.Context, pageID, from, to string) (diffview.ViewModel, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return diffview.ViewModel{}, err
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return diffview.ViewModel{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "from and to revisions are required", nil)
	}
	result, err := s.git.Diff(pageID, from, to)
	if err != nil {
		return diffview.ViewModel{}, err
	}
	return diffview.Build(result), nil
}

// PublishPage fast-forwards main to the draft head. The draft head revision
// must carry an approved approval.
func (s *Service) PublishPage(ctx context.Context, pageID string, session Session) (store.CommitInfo, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return store.CommitInfo{}, err
	}
	_, head, err := s.git.HeadBody(pageID, draftBranch)
	if err != nil {
		return store.CommitInfo{}, err
	}

	approvals, err := s.store.ListApprovals(ctx, pageID)
	if err != nil {
		return store.CommitInfo{}, err
	}
	approved := false
	for _, approval := range approvals {
		if approval.Status == "approved" && approval.Revision == head.Hash {
			approved = true
			break
		}
	}
	if !approved {
		return store.CommitInfo{}, domainError(http.StatusConflict, "NOT_APPROVED", "Draft head has no approved approval", map[string]any{"revision": head.Hash})
	}

	commit, err := s.git.PublishDraft(pageID, session.UserName, "Publish "+page.Title)
	if err != nil {
		return store.CommitInfo{}, err
	}
	if err := s.store.UpdatePage(ctx, pageID, page.Title, "published", session.UserName); err != nil {
		return store.CommitInfo{}, err
	}
	s.recordAudit(ctx, session, "page.published", "page", pageID, map[string]any{"revision": commit.Hash})
	return commit, nil
}

func (s *Service) DeletePage(ctx context.Context, pageID string, session Session) error {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return err
	}
	if err := s.store.DeletePage(ctx, pageID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeletePage(pageID)
	}
	s.recordAudit(ctx, session, "page.deleted", "page", pageID, nil)
	return nil
}

// ----- Approvals and signatures -----

func (s *Service) RequestApproval(ctx context.Context, pageID, note string, session Session) (store.Approval, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return store.Approval{}, err
	}
	pending, err := s.store.GetPendingApproval(ctx, pageID)
	if err != nil {
		return store.Approval{}, err
	}
	if pending != nil {
		return store.Approval{}, domainError(http.StatusConflict, "APPROVAL_PENDING", "An approval is already pending for this page", map[string]any{"approvalId": pending.ID})
	}

	_, head, err := s.git.HeadBody(pageID, draftBranch)
	if err != nil {
		return store.Approval{}, err
	}

	approval := store.Approval{
		ID:          util.NewID("apr"),
		PageID:      pageID,
		Revision:    head.Hash,
		Status:      "pending",
		RequestedBy: session.UserID,
		Note:        note,
	}
	if err := s.store.InsertApproval(ctx, approval); err != nil {
		return store.Approval{}, err
	}
	if err := s.store.UpdatePage(ctx, pageID, page.Title, "in_review", session.UserName); err != nil {
		return store.Approval{}, err
	}
	s.recordAudit(ctx, session, "approval.requested", "page", pageID, map[string]any{"approvalId": approval.ID, "revision": head.Hash})
	s.notifyApprovalRequested(ctx, page, head.Hash, session)
	return approval, nil
}

func (s *Service) notifyApprovalRequested(ctx context.Context, page store.Page, revision string, session Session) {
	if !s.SMTPConfigured() {
		return
	}
	var recipients []string
	for _, role := range []rbac.Role{rbac.RoleApprover, rbac.RoleAdmin} {
		users, err := s.store.ListUsersByRole(ctx, string(role))
		if err != nil {
			log.Printf("app: list %s users for approval notice: %v", role, err)
			continue
		}
		for _, user := range users {
			if user.ID != session.UserID {
				recipients = append(recipients, user.Email)
			}
		}
	}
	if len(recipients) == 0 {
		return
	}
	go func() {
		if err := s.email.SendApprovalRequestedEmail(recipients, session.UserName, page.Title, revision); err != nil {
			log.Printf("app: send approval request email for %s: %v", page.ID, err)
		}
	}()
}

// DecideApproval approves or rejects a pending approval. Approving records
// an e-signature bound to the page content checksum at the revision.
func (s *Service) DecideApproval(ctx context.Context, approvalID string, approve bool, note string, session Session) (store.Approval, error) {
	approval, err := s.store.GetApproval(ctx, approvalID)
	if err != nil {
		return store.Approval{}, err
	}
	if approval.Status != "pending" {
		return store.Approval{}, domainError(http.StatusConflict, "ALREADY_DECIDED", "Approval has already been decided", map[string]any{"status": approval.Status})
	}
	if approval.RequestedBy == session.UserID {
		return store.Approval{}, domainError(http.StatusForbidden, "SELF_APPROVAL", "Requesters cannot decide their own approvals", nil)
	}

	status := "rejected"
	if approve {
		status = "approved"
		checksum, err := s.git.Checksum(approval.PageID, approval.Revision)
		if err != nil {
			return store.Approval{}, err
		}
		if err := s.store.InsertSignature(ctx, store.Signature{
			ID:         uuid.NewString(),
			ApprovalID: approval.ID,
			PageID:     approval.PageID,
			Revision:   approval.Revision,
			SignerID:   session.UserID,
			SignerName: session.UserName,
			Checksum:   checksum,
		}); err != nil {
			return store.Approval{}, err
		}
	}

	if err := s.store.DecideApproval(ctx, approvalID, status, session.UserID, note); err != nil {
		return store.Approval{}, err
	}

	pageStatus := "draft"
	if approve {
		pageStatus = "approved"
	}
	if page, err := s.store.GetPage(ctx, approval.PageID); err == nil {
		_ = s.store.UpdatePage(ctx, approval.PageID, page.Title, pageStatus, session.UserName)
	}

	s.recordAudit(ctx, session, "approval."+status, "page", approval.PageID, map[string]any{"approvalId": approvalID, "revision": approval.Revision})
	s.notifyDecision(ctx, approval, status, session)

	decided, err := s.store.GetApproval(ctx, approvalID)
	if err != nil {
		return store.Approval{}, err
	}
	return decided, nil
}

func (s *Service) notifyDecision(ctx context.Context, approval store.Approval, status string, session Session) {
	if !s.SMTPConfigured() {
		return
	}
	requester, err := s.store.GetUserByID(ctx, approval.RequestedBy)
	if err != nil {
		return
	}
	page, err := s.store.GetPage(ctx, approval.PageID)
	if err != nil {
		return
	}
	go func() {
		if err := s.email.SendSignatureRecordedEmail(requester.Email, session.UserName, page.Title, approval.Revision); err != nil {
			log.Printf("app: send decision email for %s: %v", approval.ID, err)
		}
	}()
}

func (s *Service) ListApprovals(ctx context.Context, pageID string) ([]store.Approval, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return s.store.ListApprovals(ctx, pageID)
}

func (s *Service) ListSignatures(ctx context.Context, pageID string) ([]store.Signature, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return s.store.ListSignatures(ctx, pageID)
}

// VerifySignature recomputes the content checksum at the signed revision and
// compares it with the recorded one.
func (s *Service) VerifySignature(ctx context.Context, pageID, signatureID string) (map[string]any, error) {
	signatures, err := s.ListSignatures(ctx, pageID)
	if err != nil {
		return nil, err
	}
	for _, signature := range signatures {
		if signature.ID != signatureID {
			continue
		}
		checksum, err := s.git.Checksum(pageID, signature.Revision)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"signatureId": signature.ID,
			"revision":    signature.Revision,
			"valid":       checksum == signature.Checksum,
		}, nil
	}
	return nil, sql.ErrNoRows
}

// ----- Audit -----

func (s *Service) recordAudit(ctx context.Context, session Session, action, entityType, entityID string, details map[string]any) {
	payload := "{}"
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}
	event := store.AuditEvent{
		ID:         util.NewID("evt"),
		Actor:      session.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := s.store.InsertAuditEvent(ctx, event); err != nil {
		log.Printf("app: record audit %s: %v", action, err)
		return
	}
	if s.search != nil {
		s.search.IndexAuditEvent(search.AuditRecord{
			ID:         event.ID,
			Actor:      event.Actor,
			Action:     event.Action,
			Summary:    payload,
			EntityType: entityType,
			EntityID:   entityID,
		})
	}
}

func (s *Service) ListAuditEvents(ctx context.Context, entityType, entityID, actor string, limit int) ([]store.AuditEvent, error) {
	return s.store.ListAuditEvents(ctx, entityType, entityID, actor, limit)
}

// ----- Search -----

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

func (s *Service) indexPage(page store.Page, body string) {
	if s.search == nil {
		return
	}
	s.search.IndexPage(search.PageRecord{
		ID:      page.ID,
		Title:   page.Title,
		Slug:    page.Slug,
		Body:    body,
		SpaceID: page.SpaceID,
		Status:  page.Status,
	})
}

// ----- Export -----

func (s *Service) ExportPage(ctx context.Context, req export.Request) (*export.Result, error) {
	if _, err := s.store.GetPage(ctx, req.PageID); err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, req)
}

// exportData adapts the service to the export package's data interface.
type exportData struct {
	s *Service
}

func (d exportData) GetPage(ctx context.Context, id string) (export.PageInfo, error) {
	page, err := d.s.store.GetPage(ctx, id)
	if err != nil {
		return export.PageInfo{}, err
	}
	return export.PageInfo{
		ID:        page.ID,
		Title:     page.Title,
		Status:    page.Status,
		SpaceID:   page.SpaceID,
		UpdatedBy: page.UpdatedBy,
		UpdatedAt: page.UpdatedAt,
	}, nil
}

func (d exportData) GetSpace(ctx context.Context, id string) (export.SpaceInfo, error) {
	space, err := d.s.store.GetSpace(ctx, id)
	if err != nil {
		return export.SpaceInfo{}, err
	}
	return export.SpaceInfo{ID: space.ID, Name: space.Name}, nil
}

func (d exportData) GetPageBody(ctx context.Context, pageID, revision string) (string, error) {
	if revision == "" || revision == "latest" {
		body, _, err := d.s.git.HeadBody(pageID, mainBranch)
		return body, err
	}
	return d.s.git.BodyAt(pageID, revision)
}

func (d exportData) ListSignatures(ctx context.Context, pageID string) ([]export.SignatureInfo, error) {
	signatures, err := d.s.store.ListSignatures(ctx, pageID)
	if err != nil {
		return nil, err
	}
	infos := make([]export.SignatureInfo, 0, len(signatures))
	for _, signature := range signatures {
		infos = append(infos, export.SignatureInfo{
			SignerName: signature.SignerName,
			Revision:   signature.Revision,
			Checksum:   signature.Checksum,
			CreatedAt:  signature.SignedAt,
		})
	}
	return infos, nil
}

// ----- Attachments -----

func (s *Service) UploadAttachment(ctx context.Context, pageID, fileName, contentType string, size int64, reader io.Reader, session Session) (store.Attachment, error) {
	if s.blob == nil {
		return store.Attachment{}, domainError(http.StatusServiceUnavailable, "ATTACHMENTS_UNAVAILABLE", "Attachment storage not configured", nil)
	}
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return store.Attachment{}, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return store.Attachment{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "fileName is required", nil)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment := store.Attachment{
		ID:          util.NewID("att"),
		PageID:      pageID,
		FileName:    fileName,
		ContentType: contentType,
		UploadedBy:  session.UserID,
	}
	attachment.ObjectKey = pageID + "/" + attachment.ID + "/" + fileName

	written, err := s.blob.Put(ctx, attachment.ObjectKey, reader, size, contentType)
	if err != nil {
		return store.Attachment{}, err
	}
	attachment.Size = written

	if err := s.store.InsertAttachment(ctx, attachment); err != nil {
		_ = s.blob.Remove(ctx, attachment.ObjectKey)
		return store.Attachment{}, err
	}
	s.recordAudit(ctx, session, "attachment.uploaded", "page", pageID, map[string]any{"attachmentId": attachment.ID, "fileName": fileName})
	return attachment, nil
}

func (s *Service) ListAttachments(ctx context.Context, pageID string) ([]store.Attachment, error) {
	if _, err := s.store.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return s.store.ListAttachments(ctx, pageID)
}

func (s *Service) OpenAttachment(ctx context.Context, attachmentID string) (store.Attachment, io.ReadCloser, error) {
	if s.blob == nil {
		return store.Attachment{}, nil, domainError(http.StatusServiceUnavailable, "ATTACHMENTS_UNAVAILABLE", "Attachment storage not configured", nil)
	}
	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return store.Attachment{}, nil, err
	}
	reader, err := s.blob.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return store.Attachment{}, nil, err
	}
	return attachment, reader, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, attachmentID string, session Session) error {
	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	if s.blob != nil {
		if err := s.blob.Remove(ctx, attachment.ObjectKey); err != nil {
			return err
		}
	}
	if err := s.store.DeleteAttachment(ctx, attachmentID); err != nil {
		return err
	}
	s.recordAudit(ctx, session, "attachment.deleted", "page", attachment.PageID, map[string]any{"attachmentId": attachmentID})
	return nil
}

// ----- helpers -----

func pageSummary(page store.Page) map[string]any {
	return map[string]any{
		"id":        page.ID,
		"spaceId":   page.SpaceID,
		"title":     page.Title,
		"slug":      page.Slug,
		"status":    page.Status,
		"updatedBy": page.UpdatedBy,
		"updatedAt": page.UpdatedAt,
	}
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = util.NewID("")[:8]
	}
	return slug
}
