// Package library persists the document collection. Documents are
// copied into a library directory and indexed in a SQLite database;
// the UI only ever sees Document values, never rows.
package library

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Document is one entry in the library.
type Document struct {
	ID      string
	Name    string
	Path    string
	Tags    []string
	AddedAt time.Time
}

// Library wraps the database and the on-disk file store.
type Library struct {
	db  *sql.DB
	dir string
}

// Open creates or opens the library rooted at dir. The database lives
// at dir/library.db and document files under dir/files.
func Open(dir string) (*Library, error) {
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "library.db")+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	l := &Library{db: db, dir: dir}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// OpenMemory creates a library backed by an in-memory database and a
// temporary file directory (useful for testing).
func OpenMemory() (*Library, error) {
	dir, err := os.MkdirTemp("", "lectern-library-*")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	l := &Library{db: db, dir: dir}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// Close releases the database handle.
func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) migrate() error {
	_, err := l.db.Exec(schema)
	return err
}

// schema contains the full library schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    path TEXT NOT NULL,
    added_at DATETIME NOT NULL DEFAULT (datetime('now')),
    last_opened DATETIME
);

CREATE TABLE IF NOT EXISTS document_tags (
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    PRIMARY KEY (document_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_documents_added ON documents(added_at);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON document_tags(tag);
`

// Add copies the file at srcPath into the library and records it.
func (l *Library) Add(srcPath string, tags ...string) (Document, error) {
	id := uuid.NewString()
	name := filepath.Base(srcPath)
	dst := filepath.Join(l.dir, "files", id+filepath.Ext(name))

	if err := copyFile(srcPath, dst); err != nil {
		return Document{}, fmt.Errorf("copying %s into library: %w", name, err)
	}

	now := time.Now().UTC()
	_, err := l.db.Exec(
		`INSERT INTO documents (id, name, path, added_at) VALUES (?, ?, ?, ?)`,
		id, name, dst, now,
	)
	if err != nil {
		os.Remove(dst)
		return Document{}, fmt.Errorf("recording document: %w", err)
	}

	for _, tag := range tags {
		if _, err := l.db.Exec(
			`INSERT OR IGNORE INTO document_tags (document_id, tag) VALUES (?, ?)`,
			id, tag,
		); err != nil {
			return Document{}, fmt.Errorf("recording tag %q: %w", tag, err)
		}
	}

	return Document{ID: id, Name: name, Path: dst, Tags: tags, AddedAt: now}, nil
}

// Select marks the document as opened and returns it. Returns an error
// when the id is unknown.
func (l *Library) Select(id string) (Document, error) {
	res, err := l.db.Exec(`UPDATE documents SET last_opened = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return Document{}, fmt.Errorf("marking document opened: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Document{}, fmt.Errorf("no document with id %s", id)
	}
	return l.get(id)
}

// Remove deletes the document record, its tags and its file.
func (l *Library) Remove(id string) error {
	doc, err := l.get(id)
	if err != nil {
		return err
	}

	if _, err := l.db.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	// The file is best-effort; a missing file should not strand the row.
	os.Remove(doc.Path)
	return nil
}

// Documents returns all documents ordered by when they were added.
func (l *Library) Documents() ([]Document, error) {
	rows, err := l.db.Query(`SELECT id, name, path, added_at FROM documents ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Path, &d.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i].Tags, err = l.tags(docs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// AllTags returns the distinct tags across the library, sorted.
func (l *Library) AllTags() ([]string, error) {
	rows, err := l.db.Query(`SELECT DISTINCT tag FROM document_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (l *Library) get(id string) (Document, error) {
	var d Document
	err := l.db.QueryRow(
		`SELECT id, name, path, added_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.Path, &d.AddedAt)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("no document with id %s", id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("loading document: %w", err)
	}
	d.Tags, err = l.tags(id)
	return d, err
}

func (l *Library) tags(id string) ([]string, error) {
	rows, err := l.db.Query(`SELECT tag FROM document_tags WHERE document_id = ? ORDER BY tag`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
