package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nexus-cli/internal/logger"
	"github.com/custodia-labs/nexus-cli/internal/repair"
)

const (
	// historyWindow is how many prior turns are sent with each synthesis
	// call. The full transcript is a storage concern.
	historyWindow = 6

	// historyMax bounds the in-memory window so a long chat session does
	// not grow without limit.
	historyMax = 40

	// docContextRunes and webContextRunes cap each source's contribution
	// to the assembled context. This is a token-budget control.
	docContextRunes = 4000
	webContextRunes = 1500

	keywordMaxTokens   = 60
	synthesisMaxTokens = 1024
)

const systemPrompt = `You are a reading assistant answering questions about a document the user has open.
Ground your answer in the provided document excerpts when they are relevant and cite the page number in the form (p. N).
If web search results are provided, you may use them for background but say so.
If the context does not contain the answer, say you could not find it in the document.
Answer concisely in plain prose.`

const keywordPrompt = `Extract 2-5 search keywords from the user's question.
Reply with only the keywords separated by spaces, no punctuation, no explanation.`

// Asker runs one conversation turn at a time: keyword extraction, parallel
// retrieval, context assembly, and the streamed synthesis call.
type Asker struct {
	llm     driven.LLMService
	indexer *Indexer
	web     driven.WebSearcher
	store   driven.DocumentStore

	inFlight      atomic.Bool
	retrieveLimit atomic.Int64

	mu        sync.Mutex
	history   []domain.Message
	lastDocID int64
}

var _ driving.AskService = (*Asker)(nil)

// NewAsker creates the question-answering orchestrator. The web searcher
// and document store may be nil; those capabilities degrade to off.
func NewAsker(llm driven.LLMService, indexer *Indexer, web driven.WebSearcher, store driven.DocumentStore) *Asker {
	return &Asker{
		llm:     llm,
		indexer: indexer,
		web:     web,
		store:   store,
	}
}

// Ask runs a full turn and returns the final assistant message. A turn
// already in flight is rejected with domain.ErrTurnInFlight; a model that
// is not ready is rejected with domain.ErrModelNotReady. Both are guard
// rejections the caller treats as no-ops.
func (a *Asker) Ask(ctx context.Context, doc *domain.Document, question string, opts driving.AskOptions) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrInvalidInput
	}
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if err := a.llm.Ready(ctx); err != nil {
		return "", domain.ErrModelNotReady
	}
	if !a.inFlight.CompareAndSwap(false, true) {
		return "", domain.ErrTurnInFlight
	}
	defer a.inFlight.Store(false)

	if doc != nil {
		a.switchDocument(doc.ID)
	}

	useDoc := opts.UseDocContext && doc != nil && a.indexer != nil
	useWeb := opts.UseWebSearch && a.web != nil && a.web.Enabled()

	searchTerm := question
	if useDoc || useWeb {
		searchTerm = a.extractKeywords(ctx, question)
	}

	// The two retrieval branches are isolated: each writes its own
	// variable and a failure in one never affects the other. Assembly
	// waits for both to settle.
	var (
		wg        sync.WaitGroup
		docChunks []domain.Chunk
		webText   string
	)
	if useDoc {
		limit := int(a.retrieveLimit.Load())
		if limit <= 0 {
			limit = DefaultRetrieveLimit
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			docChunks = a.indexer.Retrieve(ctx, searchTerm, doc.ID, limit)
		}()
	}
	if useWeb {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := a.web.Fetch(ctx, searchTerm)
			if err != nil {
				logger.Warn("Web search failed: %v", err)
				return
			}
			webText = text
		}()
	}
	wg.Wait()

	contextText := assembleContext(docChunks, a.currentRepairMap(ctx, doc), webText)

	messages := a.buildMessages(contextText, question)
	answer, err := a.stream(ctx, messages, opts.OnDelta)
	if err != nil {
		// The turn is abandoned whole: no partial assistant message is
		// kept, prior history stays intact.
		logger.Error("Turn failed: %v", err)
		return "", fmt.Errorf("synthesis failed: %w", err)
	}

	a.appendTurn(question, answer)
	a.persistTurn(ctx, doc, question, answer)
	return answer, nil
}

// switchDocument clears the window when the turn targets a different
// document than the previous one. The window is a per-document session;
// it never carries across documents.
func (a *Asker) switchDocument(docID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastDocID != 0 && a.lastDocID != docID {
		a.history = nil
	}
	a.lastDocID = docID
}

// currentRepairMap reads the latest persisted map so a discovery run that
// completed after the document was opened improves this turn. The
// open-time snapshot is the fallback when the store cannot serve.
func (a *Asker) currentRepairMap(ctx context.Context, doc *domain.Document) domain.RepairMap {
	if doc == nil {
		return nil
	}
	if a.store != nil {
		if fresh, err := a.store.GetDocument(ctx, doc.ID); err == nil {
			return fresh.RepairMap
		}
	}
	return doc.RepairMap
}

// SetRetrieveLimit overrides how many document snippets each turn
// retrieves. Zero or negative restores the default.
func (a *Asker) SetRetrieveLimit(n int) {
	a.retrieveLimit.Store(int64(n))
}

// History returns a copy of the in-memory conversation window.
func (a *Asker) History() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Reset clears the in-memory conversation window.
func (a *Asker) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// Streaming reports whether a turn is currently in flight.
func (a *Asker) Streaming() bool {
	return a.inFlight.Load()
}

// extractKeywords compresses a conversational question into search
// keywords via one short non-streamed call. Extraction is best-effort:
// any failure or unusable result falls back to the question verbatim.
func (a *Asker) extractKeywords(ctx context.Context, question string) string {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: keywordPrompt},
		{Role: domain.RoleUser, Content: question},
	}
	reply, err := a.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: keywordMaxTokens})
	if err != nil {
		logger.Warn("Keyword extraction failed: %v", err)
		return question
	}
	keywords := sanitizeKeywords(reply)
	if keywords == "" {
		return question
	}
	logger.Debug("Search keywords: %q", keywords)
	return keywords
}

// sanitizeKeywords strips everything outside letters, digits, and spaces,
// and collapses runs of whitespace.
func sanitizeKeywords(s string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '\t', r == '\n':
			return ' '
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(clean), " ")
}

// assembleContext concatenates the non-empty source outputs into labeled
// blocks. Document snippets are repaired with the document's current map
// and carry their page number; each source's contribution is capped.
func assembleContext(chunks []domain.Chunk, m domain.RepairMap, webText string) string {
	var sb strings.Builder

	if len(chunks) > 0 {
		var doc strings.Builder
		for _, c := range chunks {
			text := repair.Apply(c.Text, m)
			if text == "" {
				continue
			}
			fmt.Fprintf(&doc, "[Page %d] %s\n\n", c.PageIndex+1, text)
		}
		if doc.Len() > 0 {
			sb.WriteString("Document excerpts:\n")
			sb.WriteString(capRunes(doc.String(), docContextRunes))
			sb.WriteString("\n")
		}
	}

	if webText = strings.TrimSpace(webText); webText != "" {
		sb.WriteString("Web search results:\n")
		sb.WriteString(capRunes(webText, webContextRunes))
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// buildMessages assembles the synthesis prompt: the fixed system
// instruction, the last turns of the window, and a final user turn of
// context plus question.
func (a *Asker) buildMessages(contextText, question string) []domain.Message {
	messages := []domain.Message{{Role: domain.RoleSystem, Content: systemPrompt}}

	a.mu.Lock()
	window := a.history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	messages = append(messages, window...)
	a.mu.Unlock()

	final := question
	if contextText != "" {
		final = contextText + "\n\nQuestion: " + question
	}
	return append(messages, domain.Message{Role: domain.RoleUser, Content: final})
}

// stream runs the synthesis call, applying deltas strictly in arrival
// order and publishing the accumulated message after every increment.
func (a *Asker) stream(ctx context.Context, messages []domain.Message, onDelta func(string)) (string, error) {
	deltas, errs := a.llm.ChatStream(ctx, messages, driven.ChatOptions{MaxTokens: synthesisMaxTokens})

	var sb strings.Builder
	for delta := range deltas {
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(sb.String())
		}
	}
	if err := <-errs; err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

func (a *Asker) appendTurn(question, answer string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history,
		domain.Message{Role: domain.RoleUser, Content: question},
		domain.Message{Role: domain.RoleAssistant, Content: answer},
	)
	if len(a.history) > historyMax {
		a.history = a.history[len(a.history)-historyMax:]
	}
}

// persistTurn appends the turn to the durable transcript and bumps the
// document's lastRead. Both are best-effort.
func (a *Asker) persistTurn(ctx context.Context, doc *domain.Document, question, answer string) {
	if a.store == nil || doc == nil {
		return
	}
	now := time.Now()
	for _, msg := range []domain.StoredMessage{
		{DocumentID: doc.ID, Role: domain.RoleUser, Content: question, Timestamp: now},
		{DocumentID: doc.ID, Role: domain.RoleAssistant, Content: answer, Timestamp: now},
	} {
		m := msg
		if err := a.store.SaveMessage(ctx, &m); err != nil {
			logger.Warn("Saving transcript message: %v", err)
		}
	}
	if err := a.store.UpdateDocument(ctx, doc.ID, domain.DocumentFields{LastRead: &now}); err != nil {
		logger.Warn("Updating last read: %v", err)
	}
}
