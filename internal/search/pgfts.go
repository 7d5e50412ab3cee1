package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
// It only covers what lives in PostgreSQL: page titles and the audit trail.
// Page bodies live in git and are only searchable through Meilisearch.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across pages and audit_events using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultPage {
		pageWhere := "pg.fts @@ " + tsQuery
		if q.FilterSpaceID != "" {
			pageWhere += fmt.Sprintf(" AND pg.space_id = $%d", argN)
			args = append(args, q.FilterSpaceID)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'page'::text AS type, pg.id, pg.title,
				ts_headline('english', coalesce(pg.slug, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				pg.id AS page_id, pg.space_id,
				ts_rank(pg.fts, %s) AS rank
			FROM pages pg
			WHERE %s`, tsQuery, tsQuery, pageWhere))
	}

	if q.FilterType == "" || q.FilterType == ResultAudit {
		auditWhere := "a.fts @@ " + tsQuery
		if q.FilterSpaceID != "" {
			auditWhere += fmt.Sprintf(" AND pg.space_id = $%d", argN)
			args = append(args, q.FilterSpaceID)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'audit'::text AS type, a.id, a.action AS title,
				ts_headline('english', coalesce(a.details::text, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				coalesce(pg.id, '') AS page_id, coalesce(pg.space_id, '') AS space_id,
				ts_rank(a.fts, %s) AS rank
			FROM audit_events a
			LEFT JOIN pages pg ON a.entity_type = 'page' AND pg.id = a.entity_id
			WHERE %s`, tsQuery, tsQuery, auditWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, page_id, space_id
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.PageID, &r.SpaceID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
// Page bodies are filled in by the caller from the git layer.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]PageRecord, []AuditRecord, error) {
	pageRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, slug, space_id, status
		FROM pages
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load pages: %w", err)
	}
	defer pageRows.Close()

	pages := make([]PageRecord, 0)
	for pageRows.Next() {
		var rec PageRecord
		if err := pageRows.Scan(&rec.ID, &rec.Title, &rec.Slug, &rec.SpaceID, &rec.Status); err != nil {
			return nil, nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, rec)
	}
	if err := pageRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate pages: %w", err)
	}

	auditRows, err := p.db.QueryContext(ctx, `
		SELECT a.id, a.actor, a.action, a.details::text, a.entity_type, a.entity_id, coalesce(pg.space_id, '')
		FROM audit_events a
		LEFT JOIN pages pg ON a.entity_type = 'page' AND pg.id = a.entity_id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load audit events: %w", err)
	}
	defer auditRows.Close()

	events := make([]AuditRecord, 0)
	for auditRows.Next() {
		var rec AuditRecord
		if err := auditRows.Scan(&rec.ID, &rec.Actor, &rec.Action, &rec.Summary, &rec.EntityType, &rec.EntityID, &rec.SpaceID); err != nil {
			return nil, nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, rec)
	}
	if err := auditRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return pages, events, nil
}
