package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nexus-cli/internal/logger"
	"github.com/custodia-labs/nexus-cli/internal/repair"
)

const (
	// defaultReadyAttempts and defaultReadyInterval bound how long a
	// discovery run waits for the model before giving up.
	defaultReadyAttempts = 30
	defaultReadyInterval = time.Second

	escalationMaxTokens = 300
)

const escalationPrompt = `A PDF was extracted with a broken font encoding. The following characters appear in the text but could not be mapped to corrections: %s

Two excerpts for context:
%s

Reply with a single JSON object mapping each corrupted character to its corrected replacement, for example {"Œ": "ī"}. Include only characters you can determine from the context. Reply with the JSON object only.`

// Discovery runs the background repair-map learning workflow. At most one
// run is in flight per document; the map is written exactly once, at
// completion, so readers never see a partial map.
type Discovery struct {
	llm   driven.LLMService
	store driven.DocumentStore

	readyAttempts int
	readyInterval time.Duration

	mu      sync.Mutex
	running map[int64]bool

	events chan driving.DiscoveryEvent
}

var _ driving.DiscoveryService = (*Discovery)(nil)

// NewDiscovery creates the repair-discovery workflow service.
func NewDiscovery(llm driven.LLMService, store driven.DocumentStore) *Discovery {
	return &Discovery{
		llm:           llm,
		store:         store,
		readyAttempts: defaultReadyAttempts,
		readyInterval: defaultReadyInterval,
		running:       make(map[int64]bool),
		events:        make(chan driving.DiscoveryEvent, 8),
	}
}

// Start launches a discovery run for the document in the background. The
// learning status is persisted before the run is accepted so a crash
// mid-run is observable on the next open.
func (d *Discovery) Start(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || len(chunks) == 0 {
		return domain.ErrInvalidInput
	}

	d.mu.Lock()
	if d.running[doc.ID] {
		d.mu.Unlock()
		return domain.ErrDiscoveryRunning
	}
	d.running[doc.ID] = true
	d.mu.Unlock()

	learning := domain.DiscoveryLearning
	if err := d.store.UpdateDocument(ctx, doc.ID, domain.DocumentFields{DiscoveryStatus: &learning}); err != nil {
		d.clear(doc.ID)
		return fmt.Errorf("persisting learning status: %w", err)
	}

	logger.Debug("Starting repair discovery for document %d", doc.ID)
	go d.run(ctx, doc.ID, chunks)
	return nil
}

// Running reports whether a run is in flight for the document.
func (d *Discovery) Running(documentID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running[documentID]
}

// Events delivers terminal events for accepted runs. The channel is
// buffered; events are dropped rather than blocking a run if nobody reads.
func (d *Discovery) Events() <-chan driving.DiscoveryEvent {
	return d.events
}

func (d *Discovery) clear(documentID int64) {
	d.mu.Lock()
	delete(d.running, documentID)
	d.mu.Unlock()
}

func (d *Discovery) run(ctx context.Context, documentID int64, chunks []domain.Chunk) {
	defer d.clear(documentID)

	if err := d.waitReady(ctx); err != nil {
		d.fail(ctx, documentID, fmt.Errorf("model never became ready: %w", err))
		return
	}

	samples := repair.SmartSamples(chunks)
	result := repair.BuildStatisticalMap(samples)

	merged := make(domain.RepairMap, len(result.Map))
	for k, v := range result.Map {
		merged[k] = v
	}

	if len(result.Unmapped) > 0 {
		escalated, err := d.escalate(ctx, result.Unmapped, samples)
		if err != nil {
			d.fail(ctx, documentID, err)
			return
		}
		// Escalation only ever covers characters the table missed, so
		// the merge cannot clobber a statistical mapping.
		for k, v := range escalated {
			merged[k] = v
		}
	}

	complete := domain.DiscoveryComplete
	fields := domain.DocumentFields{RepairMap: merged, DiscoveryStatus: &complete}
	if err := d.store.UpdateDocument(ctx, documentID, fields); err != nil {
		d.fail(ctx, documentID, fmt.Errorf("persisting repair map: %w", err))
		return
	}

	d.announce(ctx, documentID, len(merged))
	logger.Info("Repair discovery complete for document %d: %d rules", documentID, len(merged))
	d.emit(driving.DiscoveryEvent{
		DocumentID:   documentID,
		Status:       domain.DiscoveryComplete,
		RulesLearned: len(merged),
	})
}

// waitReady polls the generation service readiness within a fixed bound.
func (d *Discovery) waitReady(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < d.readyAttempts; attempt++ {
		if lastErr = d.llm.Ready(ctx); lastErr == nil {
			return nil
		}
		if attempt == d.readyAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.readyInterval):
		}
	}
	return lastErr
}

// escalate asks the model for mappings of the characters the built-in
// table did not cover. The response is parsed defensively: a reply with
// no usable JSON object yields no additional mappings, and only keys from
// the unmapped set are accepted.
func (d *Discovery) escalate(ctx context.Context, unmapped []string, samples []string) (domain.RepairMap, error) {
	excerpts := samples
	if len(excerpts) > 2 {
		excerpts = excerpts[:2]
	}
	prompt := fmt.Sprintf(escalationPrompt, strings.Join(unmapped, " "), strings.Join(excerpts, "\n---\n"))

	reply, err := d.llm.Chat(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: prompt},
	}, driven.ChatOptions{MaxTokens: escalationMaxTokens})
	if err != nil {
		return nil, fmt.Errorf("escalation call: %w", err)
	}

	mapping, ok := repair.DecodeMapping(reply)
	if !ok {
		logger.Debug("Escalation reply carried no usable mapping")
		return nil, nil
	}

	allowed := make(map[string]bool, len(unmapped))
	for _, ch := range unmapped {
		allowed[ch] = true
	}
	accepted := make(domain.RepairMap)
	for k, v := range mapping {
		if !allowed[k] {
			logger.Debug("Dropping escalation key %q not in unmapped set", k)
			continue
		}
		accepted[k] = v
	}
	return accepted, nil
}

// announce appends a short informational message to the document's
// transcript. Cosmetic and best-effort.
func (d *Discovery) announce(ctx context.Context, documentID int64, rules int) {
	msg := &domain.StoredMessage{
		DocumentID: documentID,
		Role:       domain.RoleSystem,
		Content:    fmt.Sprintf("Learned %d text-repair rules for this document.", rules),
		Timestamp:  time.Now(),
	}
	if err := d.store.SaveMessage(ctx, msg); err != nil {
		logger.Warn("Saving discovery announcement: %v", err)
	}
}

func (d *Discovery) fail(ctx context.Context, documentID int64, cause error) {
	logger.Error("Repair discovery failed for document %d: %v", documentID, cause)
	failed := domain.DiscoveryFailed
	if err := d.store.UpdateDocument(ctx, documentID, domain.DocumentFields{DiscoveryStatus: &failed}); err != nil {
		logger.Warn("Persisting failed status: %v", err)
	}
	d.emit(driving.DiscoveryEvent{
		DocumentID: documentID,
		Status:     domain.DiscoveryFailed,
		Err:        cause,
	})
}

func (d *Discovery) emit(ev driving.DiscoveryEvent) {
	select {
	case d.events <- ev:
	default:
	}
}
