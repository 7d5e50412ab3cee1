package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const query = `
		SELECT id, display_name, email, password_hash, role, is_external, is_email_verified,
		       COALESCE(verification_token, ''), verification_expires_at, deactivated_at, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role,
		&user.IsExternal, &user.IsEmailVerified, &user.VerificationToken,
		&user.VerificationExpiresAt, &user.DeactivatedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const query = `
		SELECT id, display_name, email, password_hash, role, is_external, is_email_verified,
		       COALESCE(verification_token, ''), verification_expires_at, deactivated_at, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role,
		&user.IsExternal, &user.IsEmailVerified, &user.VerificationToken,
		&user.VerificationExpiresAt, &user.DeactivatedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsersByRole returns verified, active users holding the given role.
// Used to find approvers to notify.
func (s *PostgresStore) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	const query = `
		SELECT id, display_name, email, role, is_external
		FROM users
		WHERE role = $1 AND is_email_verified AND deactivated_at IS NULL
		ORDER BY display_name
	`
	rows, err := s.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.DisplayName, &user.Email, &user.Role, &user.IsExternal); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	const query = `
		INSERT INTO users (id, display_name, email, password_hash, role, is_external, is_email_verified, verification_token, verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, user.Email, user.PasswordHash, user.Role,
		user.IsExternal, user.IsEmailVerified, user.VerificationToken, user.VerificationExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token = $2, verification_expires_at = $3, updated_at = NOW() WHERE id = $1
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyUserEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified = TRUE, verification_token = NULL, verification_expires_at = NULL, updated_at = NOW()
		WHERE verification_token = $1 AND verification_expires_at > NOW()
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets WHERE token = $1 AND expires_at > NOW() AND used_at IS NULL
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE password_resets SET used_at = NOW() WHERE token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.display_name, u.role, u.is_external
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1 AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.DisplayName, &user.Role, &user.IsExternal)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1 AND expires_at > NOW())
	`, jti).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertWorkspace(ctx context.Context, workspace Workspace) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, slug, settings) VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), '{}'))
	`, workspace.ID, workspace.Name, workspace.Slug, workspace.Settings)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, settings, created_at, updated_at FROM workspaces ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	items := make([]Workspace, 0)
	for rows.Next() {
		var item Workspace
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Settings, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, id string) (Workspace, error) {
	var item Workspace
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, settings, created_at, updated_at FROM workspaces WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Slug, &item.Settings, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Workspace{}, err
	}
	return item, nil
}

func (s *PostgresStore) UpdateWorkspace(ctx context.Context, id, name, settings string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE workspaces SET name = $2, settings = COALESCE(NULLIF($3, ''), settings), updated_at = NOW() WHERE id = $1
	`, id, name, settings)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) DeleteWorkspace(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) InsertSpace(ctx context.Context, space Space) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spaces (id, workspace_id, name, slug, description, visibility, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, space.ID, space.WorkspaceID, space.Name, space.Slug, space.Description, space.Visibility, space.SortOrder)
	if err != nil {
		return fmt.Errorf("insert space: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSpaces(ctx context.Context, workspaceID string) ([]Space, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, name, slug, description, visibility, sort_order, created_at, updated_at
		FROM spaces WHERE workspace_id = $1 ORDER BY sort_order, name
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	items := make([]Space, 0)
	for rows.Next() {
		var item Space
		if err := rows.Scan(&item.ID, &item.WorkspaceID, &item.Name, &item.Slug, &item.Description, &item.Visibility, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetSpace(ctx context.Context, id string) (Space, error) {
	var item Space
	err := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, slug, description, visibility, sort_order, created_at, updated_at
		FROM spaces WHERE id = $1
	`, id).Scan(&item.ID, &item.WorkspaceID, &item.Name, &item.Slug, &item.Description, &item.Visibility, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Space{}, err
	}
	return item, nil
}

func (s *PostgresStore) UpdateSpace(ctx context.Context, id, name, description, visibility string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE spaces
		SET name = $2, description = $3, visibility = $4, updated_at = NOW()
		WHERE id = $1
	`, id, name, description, visibility)
	if err != nil {
		return fmt.Errorf("update space: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) DeleteSpace(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) InsertPage(ctx context.Context, page Page) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, space_id, title, slug, status, parent_id, sort_order, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, page.ID, page.SpaceID, page.Title, page.Slug, page.Status, page.ParentID, page.SortOrder, page.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPages(ctx context.Context, spaceID string) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, space_id, title, slug, status, parent_id, sort_order, updated_by, created_at, updated_at
		FROM pages WHERE space_id = $1 ORDER BY sort_order, title
	`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	items := make([]Page, 0)
	for rows.Next() {
		var item Page
		if err := rows.Scan(&item.ID, &item.SpaceID, &item.Title, &item.Slug, &item.Status, &item.ParentID, &item.SortOrder, &item.UpdatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetPage(ctx context.Context, id string) (Page, error) {
	var item Page
	err := s.db.QueryRowContext(ctx, `
		SELECT id, space_id, title, slug, status, parent_id, sort_order, updated_by, created_at, updated_at
		FROM pages WHERE id = $1
	`, id).Scan(&item.ID, &item.SpaceID, &item.Title, &item.Slug, &item.Status, &item.ParentID, &item.SortOrder, &item.UpdatedBy, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Page{}, err
	}
	return item, nil
}

func (s *PostgresStore) UpdatePage(ctx context.Context, id, title, status, updatedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pages SET title = $2, status = $3, updated_by = $4, updated_at = NOW() WHERE id = $1
	`, id, title, status, updatedBy)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) DeletePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) InsertApproval(ctx context.Context, approval Approval) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approvals (id, page_id, revision, status, requested_by, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, approval.ID, approval.PageID, approval.Revision, approval.Status, approval.RequestedBy, approval.Note)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetApproval(ctx context.Context, id string) (Approval, error) {
	var item Approval
	err := s.db.QueryRowContext(ctx, `
		SELECT id, page_id, revision, status, requested_by, COALESCE(note, ''), COALESCE(decided_by, ''), decided_at, created_at
		FROM approvals WHERE id = $1
	`, id).Scan(&item.ID, &item.PageID, &item.Revision, &item.Status, &item.RequestedBy, &item.Note, &item.DecidedBy, &item.DecidedAt, &item.CreatedAt)
	if err != nil {
		return Approval{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListApprovals(ctx context.Context, pageID string) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, revision, status, requested_by, COALESCE(note, ''), COALESCE(decided_by, ''), decided_at, created_at
		FROM approvals WHERE page_id = $1 ORDER BY created_at DESC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	items := make([]Approval, 0)
	for rows.Next() {
		var item Approval
		if err := rows.Scan(&item.ID, &item.PageID, &item.Revision, &item.Status, &item.RequestedBy, &item.Note, &item.DecidedBy, &item.DecidedAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetPendingApproval(ctx context.Context, pageID string) (*Approval, error) {
	var item Approval
	err := s.db.QueryRowContext(ctx, `
		SELECT id, page_id, revision, status, requested_by, COALESCE(note, ''), COALESCE(decided_by, ''), decided_at, created_at
		FROM approvals WHERE page_id = $1 AND status = 'pending' ORDER BY created_at DESC LIMIT 1
	`, pageID).Scan(&item.ID, &item.PageID, &item.Revision, &item.Status, &item.RequestedBy, &item.Note, &item.DecidedBy, &item.DecidedAt, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending approval: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) DecideApproval(ctx context.Context, id, status, decidedBy, note string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE approvals
		SET status = $2, decided_by = $3, note = COALESCE(NULLIF($4, ''), note), decided_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status, decidedBy, note)
	if err != nil {
		return fmt.Errorf("decide approval: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) InsertSignature(ctx context.Context, signature Signature) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signatures (id, approval_id, page_id, revision, signer_id, signer_name, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, signature.ID, signature.ApprovalID, signature.PageID, signature.Revision, signature.SignerID, signature.SignerName, signature.Checksum)
	if err != nil {
		return fmt.Errorf("insert signature: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSignatures(ctx context.Context, pageID string) ([]Signature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, approval_id, page_id, revision, signer_id, signer_name, checksum, signed_at
		FROM signatures WHERE page_id = $1 ORDER BY signed_at DESC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	items := make([]Signature, 0)
	for rows.Next() {
		var item Signature
		if err := rows.Scan(&item.ID, &item.ApprovalID, &item.PageID, &item.Revision, &item.SignerID, &item.SignerName, &item.Checksum, &item.SignedAt); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) InsertAuditEvent(ctx context.Context, event AuditEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, actor, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), '{}'))
	`, event.ID, event.Actor, event.Action, event.EntityType, event.EntityID, event.Details)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAuditEvents(ctx context.Context, entityType, entityID, actor string, limit int) ([]AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, action, entity_type, entity_id, details, created_at
		FROM audit_events
		WHERE ($1 = '' OR entity_type = $1)
		  AND ($2 = '' OR entity_id = $2)
		  AND ($3 = '' OR actor = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, entityType, entityID, actor, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	items := make([]AuditEvent, 0)
	for rows.Next() {
		var item AuditEvent
		if err := rows.Scan(&item.ID, &item.Actor, &item.Action, &item.EntityType, &item.EntityID, &item.Details, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) InsertAttachment(ctx context.Context, attachment Attachment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, page_id, file_name, content_type, size, object_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, attachment.ID, attachment.PageID, attachment.FileName, attachment.ContentType, attachment.Size, attachment.ObjectKey, attachment.UploadedBy)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAttachments(ctx context.Context, pageID string) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, file_name, content_type, size, object_key, uploaded_by, created_at
		FROM attachments WHERE page_id = $1 ORDER BY created_at DESC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	items := make([]Attachment, 0)
	for rows.Next() {
		var item Attachment
		if err := rows.Scan(&item.ID, &item.PageID, &item.FileName, &item.ContentType, &item.Size, &item.ObjectKey, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetAttachment(ctx context.Context, id string) (Attachment, error) {
	var item Attachment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, page_id, file_name, content_type, size, object_key, uploaded_by, created_at
		FROM attachments WHERE id = $1
	`, id).Scan(&item.ID, &item.PageID, &item.FileName, &item.ContentType, &item.Size, &item.ObjectKey, &item.UploadedBy, &item.CreatedAt)
	if err != nil {
		return Attachment{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteAttachment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
