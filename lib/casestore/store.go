// Package casestore persists scraped case links and completed search
// ranges, so that interrupted runs pick up where they left off.
package casestore

import (
	"context"
	"database/sql"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// dateFormat is the canonical YYYYMMDD form search ranges are keyed by.
const dateFormat = "20060102"

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and applies the
// schema.
func Open(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return Store{db: db}, nil
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Link is one search result: a scraped anchor pointing at a case
// document.
type Link struct {
	Href      string
	Text      string
	Page      int64
	ScrapedAt time.Time
}

// NoteLink records a scraped link. Re-noting the same href overwrites
// the previous observation.
func (s Store) NoteLink(ctx context.Context, link Link) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO case_link (href, text, page, scraped_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (href) DO UPDATE SET
			text = excluded.text,
			page = excluded.page,
			scraped_at = excluded.scraped_at
	`, link.Href, link.Text, link.Page, link.ScrapedAt.Unix())
	return err
}

// Links returns every recorded case link, ordered by href.
func (s Store) Links(ctx context.Context) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT href, text, page, scraped_at FROM case_link ORDER BY href
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		var scrapedAt int64
		err := rows.Scan(&link.Href, &link.Text, &link.Page, &scrapedAt)
		if err != nil {
			return nil, err
		}
		link.ScrapedAt = time.Unix(scrapedAt, 0).UTC()
		links = append(links, link)
	}
	return links, rows.Err()
}

// HasRange reports whether the search range has already been scraped to
// completion.
func (s Store) HasRange(ctx context.Context, start, end time.Time) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM search_range WHERE start_date = ? AND end_date = ?
	`, start.Format(dateFormat), end.Format(dateFormat)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NoteRange marks a search range as scraped to completion.
func (s Store) NoteRange(ctx context.Context, start, end time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO search_range (start_date, end_date, completed_at)
		VALUES (?, ?, ?)
	`, start.Format(dateFormat), end.Format(dateFormat), time.Now().Unix())
	return err
}
