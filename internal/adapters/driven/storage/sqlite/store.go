package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.DocumentStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.nexus/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".nexus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys so cascade deletes work
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Documents ====================

// SaveDocument stores a new document and assigns its ID.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.LastRead.IsZero() {
		doc.LastRead = now
	}
	if doc.DiscoveryStatus == "" {
		doc.DiscoveryStatus = domain.DiscoveryIdle
	}

	repairJSON, err := marshalRepairMap(doc.RepairMap)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, content, size, last_read, current_page, repair_map, discovery_status, notes_open, chat_open, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.Name, doc.Content, doc.Size, doc.LastRead, doc.CurrentPage,
		repairJSON, string(doc.DiscoveryStatus), doc.NotesOpen, doc.ChatOpen, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting document id: %w", err)
	}
	doc.ID = id
	return nil
}

// GetDocument retrieves a document by ID, content included.
func (s *Store) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, content, size, last_read, current_page, repair_map, discovery_status, notes_open, chat_open, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row, true)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents ordered by last read, newest first.
// Content bytes are not loaded.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, size, last_read, current_page, repair_map, discovery_status, notes_open, chat_open, created_at
		FROM documents ORDER BY last_read DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// UpdateDocument applies a partial update. Nil fields are unchanged; a
// non-nil RepairMap replaces the stored map wholesale.
func (s *Store) UpdateDocument(ctx context.Context, id int64, fields domain.DocumentFields) error {
	var (
		sets []string
		args []any
	)
	if fields.CurrentPage != nil {
		sets = append(sets, "current_page = ?")
		args = append(args, *fields.CurrentPage)
	}
	if fields.LastRead != nil {
		sets = append(sets, "last_read = ?")
		args = append(args, fields.LastRead.UTC())
	}
	if fields.RepairMap != nil {
		repairJSON, err := marshalRepairMap(fields.RepairMap)
		if err != nil {
			return err
		}
		sets = append(sets, "repair_map = ?")
		args = append(args, repairJSON)
	}
	if fields.DiscoveryStatus != nil {
		if !fields.DiscoveryStatus.Valid() {
			return fmt.Errorf("status %q: %w", *fields.DiscoveryStatus, domain.ErrInvalidInput)
		}
		sets = append(sets, "discovery_status = ?")
		args = append(args, string(*fields.DiscoveryStatus))
	}
	if fields.NotesOpen != nil {
		sets = append(sets, "notes_open = ?")
		args = append(args, *fields.NotesOpen)
	}
	if fields.ChatOpen != nil {
		sets = append(sets, "chat_open = ?")
		args = append(args, *fields.ChatOpen)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document. Messages, notes, and bookmarks go
// with it via foreign key cascade.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Messages ====================

// SaveMessage appends a conversation turn to the durable transcript.
func (s *Store) SaveMessage(ctx context.Context, msg *domain.StoredMessage) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (document_id, role, content, timestamp)
		VALUES (?, ?, ?, ?)
	`, msg.DocumentID, msg.Role, msg.Content, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting message id: %w", err)
	}
	msg.ID = id
	return nil
}

// GetMessages returns the durable transcript for a document in
// chronological order.
func (s *Store) GetMessages(ctx context.Context, documentID int64) ([]domain.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, role, content, timestamp
		FROM messages WHERE document_id = ? ORDER BY timestamp, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.StoredMessage
	for rows.Next() {
		var msg domain.StoredMessage
		var ts sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.DocumentID, &msg.Role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if ts.Valid {
			msg.Timestamp = ts.Time
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// ==================== Notes ====================

// SaveNote stores a new annotation.
func (s *Store) SaveNote(ctx context.Context, note *domain.Note) error {
	if note == nil {
		return domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (document_id, page_index, content, selected_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, note.DocumentID, note.PageIndex, note.Content, note.SelectedText, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting note id: %w", err)
	}
	note.ID = id
	return nil
}

// GetNotes returns a document's notes in creation order.
func (s *Store) GetNotes(ctx context.Context, documentID int64) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, page_index, content, selected_text, created_at, updated_at
		FROM notes WHERE document_id = ? ORDER BY created_at, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.DocumentID, &n.PageIndex, &n.Content, &n.SelectedText, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		if createdAt.Valid {
			n.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			n.UpdatedAt = updatedAt.Time
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// ==================== Bookmarks ====================

// SaveBookmark stores a page bookmark.
func (s *Store) SaveBookmark(ctx context.Context, bm *domain.Bookmark) error {
	if bm == nil {
		return domain.ErrInvalidInput
	}
	if bm.CreatedAt.IsZero() {
		bm.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (document_id, page_index, title, created_at)
		VALUES (?, ?, ?, ?)
	`, bm.DocumentID, bm.PageIndex, bm.Title, bm.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving bookmark: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting bookmark id: %w", err)
	}
	bm.ID = id
	return nil
}

// GetBookmarks returns a document's bookmarks ordered by page.
func (s *Store) GetBookmarks(ctx context.Context, documentID int64) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, page_index, title, created_at
		FROM bookmarks WHERE document_id = ? ORDER BY page_index, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	var bms []domain.Bookmark
	for rows.Next() {
		var bm domain.Bookmark
		var createdAt sql.NullTime
		if err := rows.Scan(&bm.ID, &bm.DocumentID, &bm.PageIndex, &bm.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		if createdAt.Valid {
			bm.CreatedAt = createdAt.Time
		}
		bms = append(bms, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookmarks: %w", err)
	}
	return bms, nil
}

// ==================== helpers ====================

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one document row. The column order must match the
// SELECT lists above; withContent selects the variant that loads bytes.
func scanDocument(row rowScanner, withContent bool) (*domain.Document, error) {
	var (
		doc        domain.Document
		repairJSON sql.NullString
		status     string
		lastRead   sql.NullTime
		createdAt  sql.NullTime
	)

	var err error
	if withContent {
		err = row.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.Size, &lastRead, &doc.CurrentPage,
			&repairJSON, &status, &doc.NotesOpen, &doc.ChatOpen, &createdAt)
	} else {
		err = row.Scan(&doc.ID, &doc.Name, &doc.Size, &lastRead, &doc.CurrentPage,
			&repairJSON, &status, &doc.NotesOpen, &doc.ChatOpen, &createdAt)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if repairJSON.Valid && repairJSON.String != "" {
		if err := json.Unmarshal([]byte(repairJSON.String), &doc.RepairMap); err != nil {
			return nil, fmt.Errorf("unmarshaling repair map: %w", err)
		}
	}
	doc.DiscoveryStatus = domain.DiscoveryStatus(status)
	if lastRead.Valid {
		doc.LastRead = lastRead.Time
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}

// marshalRepairMap serialises a repair map to its JSON column value.
// A nil map stores NULL.
func marshalRepairMap(m domain.RepairMap) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshalling repair map: %w", err)
	}
	return string(data), nil
}
