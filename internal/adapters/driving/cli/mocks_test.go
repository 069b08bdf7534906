package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
)

type mockLibrary struct {
	importFunc func(ctx context.Context, name string, data []byte) (*domain.Document, error)
	openFunc   func(ctx context.Context, id int64) (*domain.Document, []domain.Chunk, error)
	listFunc   func(ctx context.Context) ([]domain.Document, error)
	deleteFunc func(ctx context.Context, id int64) error
	resetFunc  func(ctx context.Context, id int64) error
}

var _ driving.LibraryService = (*mockLibrary)(nil)

func (m *mockLibrary) Import(ctx context.Context, name string, data []byte) (*domain.Document, error) {
	if m.importFunc != nil {
		return m.importFunc(ctx, name, data)
	}
	return &domain.Document{ID: 1, Name: name, Size: int64(len(data))}, nil
}

func (m *mockLibrary) Open(ctx context.Context, id int64) (*domain.Document, []domain.Chunk, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, id)
	}
	return &domain.Document{ID: id, Name: "doc.pdf"}, nil, nil
}

func (m *mockLibrary) List(ctx context.Context) ([]domain.Document, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockLibrary) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockLibrary) SetPage(context.Context, int64, int) error { return nil }

func (m *mockLibrary) SetPanels(context.Context, int64, bool, bool) error { return nil }

func (m *mockLibrary) ResetDiscovery(ctx context.Context, id int64) error {
	if m.resetFunc != nil {
		return m.resetFunc(ctx, id)
	}
	return nil
}

type mockAsk struct {
	askFunc func(ctx context.Context, doc *domain.Document, question string, opts driving.AskOptions) (string, error)
}

var _ driving.AskService = (*mockAsk)(nil)

func (m *mockAsk) Ask(ctx context.Context, doc *domain.Document, question string, opts driving.AskOptions) (string, error) {
	if m.askFunc != nil {
		return m.askFunc(ctx, doc, question, opts)
	}
	return "answer", nil
}

func (m *mockAsk) History() []domain.Message { return nil }
func (m *mockAsk) Reset()                    {}
func (m *mockAsk) Streaming() bool           { return false }

type mockDiscovery struct {
	startFunc func(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error
	events    chan driving.DiscoveryEvent
}

var _ driving.DiscoveryService = (*mockDiscovery)(nil)

func (m *mockDiscovery) Start(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if m.startFunc != nil {
		return m.startFunc(ctx, doc, chunks)
	}
	return nil
}

func (m *mockDiscovery) Running(int64) bool { return false }

func (m *mockDiscovery) Events() <-chan driving.DiscoveryEvent { return m.events }

// execute injects the given mocks, runs the root command with args, and
// returns combined output. Service variables are restored afterwards so
// tests stay independent.
func execute(t *testing.T, lib driving.LibraryService, ask driving.AskService, disc driving.DiscoveryService, args ...string) (string, error) {
	t.Helper()

	prevLib, prevAsk, prevDisc := libraryService, askService, discoveryService
	libraryService, askService, discoveryService = lib, ask, disc
	t.Cleanup(func() {
		libraryService, askService, discoveryService = prevLib, prevAsk, prevDisc
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
