package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width so that lexical order of the stored text matches time order.
const publishedLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feeds (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  link TEXT NOT NULL,
  expanded INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS entries (
  id TEXT PRIMARY KEY,
  feed_id TEXT NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  authors TEXT NOT NULL DEFAULT '[]',
  content TEXT NOT NULL,
  content_line_count INTEGER NOT NULL DEFAULT 0,
  link TEXT NOT NULL,
  published TEXT,
  read INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS entries_feed_id ON entries(feed_id);
`

const upsertFeedSQL = `
INSERT INTO feeds (id, title, link, expanded)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  link=excluded.link,
  expanded=excluded.expanded
`

const upsertEntrySQL = `
INSERT INTO entries (id, feed_id, title, authors, content, content_line_count, link, published, read)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  feed_id=excluded.feed_id,
  title=excluded.title,
  authors=excluded.authors,
  content=excluded.content,
  content_line_count=excluded.content_line_count,
  link=excluded.link,
  published=excluded.published,
  read=excluded.read
`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// pragmas are per connection; a single connection keeps them in force
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SaveFeed(feed *Feed) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(upsertFeedSQL, feed.ID, feed.Title, feed.Link, feed.Expanded); err != nil {
		return fmt.Errorf("save feed %s: %w", feed.ID, err)
	}

	stmt, err := tx.Prepare(upsertEntrySQL)
	if err != nil {
		return fmt.Errorf("prepare entry statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range feed.Entries {
		if err := execEntry(stmt, feed.ID, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveEntry(feedID string, entry *Entry) error {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM feeds WHERE id = ?`, feedID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("look up feed %s: %w", feedID, err)
	}
	if exists == 0 {
		return fmt.Errorf("saving entry %s: %w", entry.ID, ErrFeedNotFound)
	}

	stmt, err := s.db.Prepare(upsertEntrySQL)
	if err != nil {
		return fmt.Errorf("prepare entry statement: %w", err)
	}
	defer stmt.Close()
	return execEntry(stmt, feedID, entry)
}

func execEntry(stmt *sql.Stmt, feedID string, entry *Entry) error {
	authors := entry.Authors
	if authors == nil {
		authors = []string{}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return fmt.Errorf("encode authors: %w", err)
	}

	var published any
	if !entry.Published.IsZero() {
		published = entry.Published.UTC().Format(publishedLayout)
	}

	_, err = stmt.Exec(
		entry.ID,
		feedID,
		entry.Title,
		string(authorsJSON),
		entry.Content,
		entry.ContentLineCount,
		entry.Link,
		published,
		entry.Read,
	)
	if err != nil {
		return fmt.Errorf("save entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *SQLiteStore) SaveAll(feeds []*Feed) error {
	return saveAll(s, feeds)
}

func (s *SQLiteStore) LoadAll() ([]*Feed, error) {
	rows, err := s.db.Query(`SELECT id, title, link, expanded FROM feeds ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*Feed
	byID := make(map[string]*Feed)
	for rows.Next() {
		var feed Feed
		if err := rows.Scan(&feed.ID, &feed.Title, &feed.Link, &feed.Expanded); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, &feed)
		byID[feed.ID] = &feed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	entryRows, err := s.db.Query(`
SELECT id, feed_id, title, authors, content, content_line_count, link, published, read
FROM entries
ORDER BY published DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var (
			entry       Entry
			feedID      string
			authorsJSON string
			published   sql.NullString
		)
		if err := entryRows.Scan(
			&entry.ID,
			&feedID,
			&entry.Title,
			&authorsJSON,
			&entry.Content,
			&entry.ContentLineCount,
			&entry.Link,
			&published,
			&entry.Read,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &entry.Authors); err != nil {
			return nil, fmt.Errorf("decode authors of %s: %w", entry.ID, err)
		}
		if published.Valid {
			entry.Published, err = time.Parse(publishedLayout, published.String)
			if err != nil {
				return nil, fmt.Errorf("parse entry published %q: %w", published.String, err)
			}
		}
		if feed, ok := byID[feedID]; ok {
			feed.Entries = append(feed.Entries, &entry)
		}
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	for _, feed := range feeds {
		SortEntries(feed.Entries)
	}
	return feeds, nil
}

func (s *SQLiteStore) DeleteFeed(id string) error {
	if _, err := s.db.Exec(`DELETE FROM feeds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete feed %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) ExpireUnreadOlderThan(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(
		`DELETE FROM entries WHERE read = 0 AND published IS NOT NULL AND published < ?`,
		cutoff.UTC().Format(publishedLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("expiring entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expiring entries: %w", err)
	}
	return int(n), nil
}
