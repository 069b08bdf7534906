// Package sqlite provides the SQLite-backed document store. Documents,
// conversation transcripts, notes, and bookmarks live in one database
// file under the user's data directory; deleting a document cascades to
// everything keyed by it.
package sqlite
