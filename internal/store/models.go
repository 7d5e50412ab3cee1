package store

import "time"

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	Role                  string
	IsExternal            bool
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	DeactivatedAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Workspace struct {
	ID        string
	Name      string
	Slug      string
	Settings  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Space struct {
	ID          string
	WorkspaceID string
	Name        string
	Slug        string
	Description string
	Visibility  string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Page struct {
	ID        string
	SpaceID   string
	Title     string
	Slug      string
	Status    string
	ParentID  *string
	SortOrder int
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommitInfo mirrors one git commit of a page repository.
type CommitInfo struct {
	Hash      string
	Message   string
	Author    string
	CreatedAt time.Time
	Added     int
	Removed   int
}

type Approval struct {
	ID          string
	PageID      string
	Revision    string
	Status      string
	RequestedBy string
	Note        string
	DecidedBy   string
	DecidedAt   *time.Time
	CreatedAt   time.Time
}

// Signature is an e-signature captured when an approval is granted. The
// checksum binds the signature to the exact page content at the revision.
type Signature struct {
	ID         string
	ApprovalID string
	PageID     string
	Revision   string
	SignerID   string
	SignerName string
	Checksum   string
	SignedAt   time.Time
}

type AuditEvent struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Details    string
	CreatedAt  time.Time
}

type Attachment struct {
	ID          string
	PageID      string
	FileName    string
	ContentType string
	Size        int64
	ObjectKey   string
	UploadedBy  string
	CreatedAt   time.Time
}
