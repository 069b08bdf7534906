package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// mockEngine implements driven.SearchEngine with overridable funcs.
type mockEngine struct {
	resetFunc  func(ctx context.Context) error
	indexFunc  func(ctx context.Context, chunks []domain.Chunk) error
	searchFunc func(ctx context.Context, term string, limit int) ([]driven.SearchHit, error)

	resetCalls  int
	indexCalls  int
	searchTerms []string
}

func (m *mockEngine) Reset(ctx context.Context) error {
	m.resetCalls++
	if m.resetFunc != nil {
		return m.resetFunc(ctx)
	}
	return nil
}

func (m *mockEngine) IndexChunks(ctx context.Context, chunks []domain.Chunk) error {
	m.indexCalls++
	if m.indexFunc != nil {
		return m.indexFunc(ctx, chunks)
	}
	return nil
}

func (m *mockEngine) Search(ctx context.Context, term string, limit int) ([]driven.SearchHit, error) {
	m.searchTerms = append(m.searchTerms, term)
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term, limit)
	}
	return nil, nil
}

func (m *mockEngine) Close() error { return nil }

// mockLLM implements driven.LLMService. ChatStream sends the configured
// deltas in order, then the configured error, then closes both channels.
type mockLLM struct {
	chatFunc  func(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (string, error)
	readyErr  error
	deltas    []string
	streamErr error

	mu             sync.Mutex
	chatMessages   [][]domain.Message
	streamMessages [][]domain.Message
	streamCalls    int
}

func (m *mockLLM) Chat(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.chatMessages = append(m.chatMessages, messages)
	m.mu.Unlock()
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages, opts)
	}
	return "", nil
}

func (m *mockLLM) ChatStream(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (<-chan string, <-chan error) {
	m.mu.Lock()
	m.streamCalls++
	m.streamMessages = append(m.streamMessages, messages)
	m.mu.Unlock()

	deltas := make(chan string, len(m.deltas))
	errs := make(chan error, 1)
	go func() {
		defer close(deltas)
		defer close(errs)
		for _, d := range m.deltas {
			deltas <- d
		}
		if m.streamErr != nil {
			errs <- m.streamErr
		}
	}()
	return deltas, errs
}

func (m *mockLLM) lastStreamPrompt() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streamMessages) == 0 {
		return nil
	}
	return m.streamMessages[len(m.streamMessages)-1]
}

func (m *mockLLM) Ready(ctx context.Context) error { return m.readyErr }
func (m *mockLLM) ModelName() string               { return "mock-model" }
func (m *mockLLM) Close() error                    { return nil }

// mockStore implements driven.DocumentStore in memory, recording updates
// so tests can assert on persistence order and content.
type mockStore struct {
	mu        sync.Mutex
	docs      map[int64]*domain.Document
	nextID    int64
	updates   []domain.DocumentFields
	updateErr error
	messages  []domain.StoredMessage
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[int64]*domain.Document), nextID: 1}
}

func (m *mockStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = m.nextID
	m.nextID++
	stored := *doc
	m.docs[doc.ID] = &stored
	return nil
}

func (m *mockStore) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		copied := *doc
		copied.Content = nil
		out = append(out, copied)
	}
	return out, nil
}

func (m *mockStore) UpdateDocument(ctx context.Context, id int64, fields domain.DocumentFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if fields.CurrentPage != nil {
		doc.CurrentPage = *fields.CurrentPage
	}
	if fields.LastRead != nil {
		doc.LastRead = *fields.LastRead
	}
	if fields.RepairMap != nil {
		doc.RepairMap = fields.RepairMap
	}
	if fields.DiscoveryStatus != nil {
		doc.DiscoveryStatus = *fields.DiscoveryStatus
	}
	if fields.NotesOpen != nil {
		doc.NotesOpen = *fields.NotesOpen
	}
	if fields.ChatOpen != nil {
		doc.ChatOpen = *fields.ChatOpen
	}
	m.updates = append(m.updates, fields)
	return nil
}

func (m *mockStore) DeleteDocument(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *mockStore) SaveMessage(ctx context.Context, msg *domain.StoredMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockStore) GetMessages(ctx context.Context, documentID int64) ([]domain.StoredMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StoredMessage
	for _, msg := range m.messages {
		if msg.DocumentID == documentID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockStore) SaveNote(ctx context.Context, note *domain.Note) error { return nil }
func (m *mockStore) GetNotes(ctx context.Context, documentID int64) ([]domain.Note, error) {
	return nil, nil
}
func (m *mockStore) SaveBookmark(ctx context.Context, bm *domain.Bookmark) error { return nil }
func (m *mockStore) GetBookmarks(ctx context.Context, documentID int64) ([]domain.Bookmark, error) {
	return nil, nil
}
func (m *mockStore) Close() error { return nil }

func (m *mockStore) savedMessages() []domain.StoredMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.StoredMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *mockStore) statusUpdates() []domain.DiscoveryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DiscoveryStatus
	for _, f := range m.updates {
		if f.DiscoveryStatus != nil {
			out = append(out, *f.DiscoveryStatus)
		}
	}
	return out
}

// mockExtractor implements driven.TextExtractor.
type mockExtractor struct {
	pages []driven.PageText
	err   error
}

func (m *mockExtractor) Extract(ctx context.Context, data []byte) ([]driven.PageText, error) {
	return m.pages, m.err
}

// mockWeb implements driven.WebSearcher.
type mockWeb struct {
	text    string
	err     error
	enabled bool

	mu      sync.Mutex
	queries []string
}

func (m *mockWeb) Fetch(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.text, m.err
}

func (m *mockWeb) Enabled() bool { return m.enabled }

var (
	_ driven.SearchEngine  = (*mockEngine)(nil)
	_ driven.LLMService    = (*mockLLM)(nil)
	_ driven.DocumentStore = (*mockStore)(nil)
	_ driven.TextExtractor = (*mockExtractor)(nil)
	_ driven.WebSearcher   = (*mockWeb)(nil)
)
