package export

import (
	"context"
	"fmt"
	"html/template"
	"time"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetPage(ctx context.Context, id string) (PageInfo, error)
	GetSpace(ctx context.Context, id string) (SpaceInfo, error)
	GetPageBody(ctx context.Context, pageID, revision string) (string, error)
	ListSignatures(ctx context.Context, pageID string) ([]SignatureInfo, error)
}

// PageInfo holds basic page metadata
type PageInfo struct {
	ID        string
	Title     string
	Status    string
	SpaceID   string
	UpdatedBy string
	UpdatedAt time.Time
}

// SpaceInfo holds space metadata
type SpaceInfo struct {
	ID   string
	Name string
}

// SignatureInfo holds e-signature metadata
type SignatureInfo struct {
	SignerName string
	Revision   string
	Checksum   string
	CreatedAt  time.Time
}

// Service provides page export functionality
type Service struct {
	store DataStore
}

// NewService creates a new export service
func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	pageInfo, err := s.store.GetPage(ctx, req.PageID)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	spaceInfo, err := s.store.GetSpace(ctx, pageInfo.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("get space: %w", err)
	}

	body, err := s.store.GetPageBody(ctx, req.PageID, req.Revision)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	contentHTML, err := MarkdownToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	data := TemplateData{
		Title:       pageInfo.Title,
		ContentHTML: template.HTML(contentHTML),
		Author:      pageInfo.UpdatedBy,
		Revision:    req.Revision,
		UpdatedAt:   pageInfo.UpdatedAt,
		SpaceName:   spaceInfo.Name,
		Signatures:  []TemplateSignature{},
	}

	if req.IncludeSignatures {
		signatures, err := s.store.ListSignatures(ctx, req.PageID)
		if err != nil {
			return nil, fmt.Errorf("list signatures: %w", err)
		}
		for _, sig := range signatures {
			data.Signatures = append(data.Signatures, TemplateSignature{
				SignerName: sig.SignerName,
				Revision:   sig.Revision,
				Checksum:   sig.Checksum,
				SignedAt:   sig.CreatedAt,
			})
		}
	}

	html, err := RenderPageHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatPDF:
		return exportPDF(html, pageInfo.Title)
	case FormatDOCX:
		return exportDOCX(html, pageInfo.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}
