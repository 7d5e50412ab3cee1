// Package export renders pages as downloadable PDF and DOCX documents.
package export

import "errors"

// Format selects the export output type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Request describes one export job. Revision is a commit hash or "latest",
// which resolves to the published head.
type Request struct {
	PageID            string
	Revision          string
	Format            Format
	IncludeSignatures bool
}

// Result is the rendered document ready to stream to the client.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrContentUnavailable means the page body could not be loaded at the
	// requested revision.
	ErrContentUnavailable = errors.New("export content unavailable")
	// ErrPDFDependencyMissing means no headless Chrome is available.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing means pandoc is not installed.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
