package domain

import "time"

// DiscoveryStatus tracks the lifecycle of a document's repair-map discovery.
type DiscoveryStatus string

// Discovery lifecycle states.
const (
	// DiscoveryIdle means no discovery run has completed for the document.
	DiscoveryIdle DiscoveryStatus = "idle"

	// DiscoveryLearning means a discovery run is in flight. A document found
	// in this state on open is treated as abandoned and reset to idle.
	DiscoveryLearning DiscoveryStatus = "learning"

	// DiscoveryComplete is terminal and suppresses future discovery runs.
	DiscoveryComplete DiscoveryStatus = "complete"

	// DiscoveryFailed means the last run errored. The document remains
	// usable with unrepaired text and is not retried automatically.
	DiscoveryFailed DiscoveryStatus = "failed"
)

// Valid reports whether s is a known discovery status.
func (s DiscoveryStatus) Valid() bool {
	switch s {
	case DiscoveryIdle, DiscoveryLearning, DiscoveryComplete, DiscoveryFailed:
		return true
	}
	return false
}

// RepairMap translates corrupted glyph sequences from a document's font
// encoding to their corrected replacements. Keys are unique; it must be
// applied longest-key-first so multi-character junk sequences are not
// partially shadowed by single-character keys.
type RepairMap map[string]string

// Document represents an imported PDF and its persisted session state.
type Document struct {
	// ID is the unique identifier, assigned on import.
	ID int64

	// Name is the display name (usually the original file name).
	Name string

	// Content is the raw PDF bytes. The text index is rebuilt from this
	// every time the document is opened; chunks are never persisted.
	Content []byte

	// Size is the content length in bytes.
	Size int64

	// LastRead is when the document was last opened or asked about.
	LastRead time.Time

	// CurrentPage is the reading position, zero-based.
	CurrentPage int

	// RepairMap is the learned character-repair table, nil until a
	// discovery run completes. Replaced wholesale, never merged in place.
	RepairMap RepairMap

	// DiscoveryStatus is the repair-discovery lifecycle state.
	DiscoveryStatus DiscoveryStatus

	// NotesOpen and ChatOpen persist panel visibility so a workspace
	// reopens the way it was left.
	NotesOpen bool
	ChatOpen  bool

	// CreatedAt is when the document was imported.
	CreatedAt time.Time
}

// EligibleForDiscovery reports whether a repair-discovery run may start
// automatically: the document has no learned map and no run has completed,
// failed, or is in flight. A failed document is only retried after an
// explicit status reset.
func (d *Document) EligibleForDiscovery() bool {
	if len(d.RepairMap) > 0 {
		return false
	}
	return d.DiscoveryStatus == "" || d.DiscoveryStatus == DiscoveryIdle
}

// DocumentFields is a partial update of a document's mutable fields.
// Nil members are left unchanged by the store.
type DocumentFields struct {
	CurrentPage     *int
	LastRead        *time.Time
	RepairMap       RepairMap // replaced wholesale when non-nil
	DiscoveryStatus *DiscoveryStatus
	NotesOpen       *bool
	ChatOpen        *bool
}

// Chunk is a page-scoped unit of extracted document text, used for
// indexing and for repair sampling. Chunks are ephemeral: they are derived
// from the document content on open and never persisted independently.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID int64

	// PageIndex is the zero-based page the text came from.
	PageIndex int

	// Text is the extracted page text.
	Text string
}

// Note is a storage-owned annotation. The core only produces the
// repair-applied text that a note records.
type Note struct {
	ID           int64
	DocumentID   int64
	PageIndex    int
	Content      string
	SelectedText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Bookmark marks a page within a document.
type Bookmark struct {
	ID         int64
	DocumentID int64
	PageIndex  int
	Title      string
	CreatedAt  time.Time
}
