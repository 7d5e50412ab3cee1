// Package search provides full-text search over pages and the audit trail,
// backed by Meilisearch with a PostgreSQL fallback.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultPage  ResultType = "page"
	ResultAudit ResultType = "audit"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	PageID  string     `json:"pageId"`
	SpaceID string     `json:"spaceId"`
}

// Query describes a search request.
type Query struct {
	Text          string
	FilterType    ResultType // empty = all types
	FilterSpaceID string
	Limit         int
	Offset        int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexPage(p PageRecord) error
	IndexAuditEvent(e AuditRecord) error
	DeletePage(id string) error
}

// PageRecord is the data we index for a page. Body comes from the page's
// git repository head, not from PostgreSQL.
type PageRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Body    string `json:"body"`
	SpaceID string `json:"spaceId"`
	Status  string `json:"status"`
}

// AuditRecord is the data we index for an audit trail event.
type AuditRecord struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	Summary    string `json:"summary"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	SpaceID    string `json:"spaceId"`
}
