// Package cli wires the Nexus commands: importing and listing documents,
// asking one-shot questions, the interactive chat, repair management, and
// the MCP server. It is also the composition root where adapters are
// constructed and injected into the core services.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/config/file"
	pdfextract "github.com/custodia-labs/nexus-cli/internal/adapters/driven/extract/pdf"
	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/llm"
	bleveengine "github.com/custodia-labs/nexus-cli/internal/adapters/driven/search/bleve"
	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/websearch"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nexus-cli/internal/core/services"
	"github.com/custodia-labs/nexus-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Tests replace these with mocks; ensureServices wires
// the real adapters on first use.
var (
	libraryService   driving.LibraryService
	askService       driving.AskService
	discoveryService driving.DiscoveryService
	retriever        *services.Indexer
	configStore      *file.Store

	closers []func() error
)

var (
	verboseFlag bool
	modelFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Local document assistant",
	Long: `Nexus is a local-first PDF assistant. Import documents, ask questions
answered from retrieved document context, and let it learn character-repair
maps for documents extracted with broken font encodings.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override the configured LLM model")
}

// Execute runs the root command.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ensureServices builds the real adapter stack on first use. Commands that
// need services call this at the top of their RunE; tests that preset the
// service variables skip wiring entirely.
func ensureServices() error {
	if libraryService != nil {
		return nil
	}

	cfgStore, err := file.NewStore("")
	if err != nil {
		return err
	}
	cfg := cfgStore.Config()
	if err := cfgStore.Watch(); err != nil {
		logger.Warn("Config hot reload unavailable: %v", err)
	}
	configStore = cfgStore
	closers = append(closers, cfgStore.Close)

	store, err := sqlite.NewStore("")
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)

	engine, err := bleveengine.NewEngine()
	if err != nil {
		return err
	}
	closers = append(closers, engine.Close)

	model := cfg.LLM.Model
	if modelFlag != "" {
		model = modelFlag
	}
	llmService, err := llm.New(llm.FactoryConfig{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    model,
		APIKey:   cfg.LLM.APIKey,
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	closers = append(closers, llmService.Close)

	web := websearch.NewFetcher(websearch.Config{
		BaseURL: cfg.WebSearch.Endpoint,
		APIKey:  cfg.WebSearch.APIKey,
		Timeout: time.Duration(cfg.WebSearch.TimeoutSeconds) * time.Second,
	})

	indexer := services.NewIndexer(engine)
	retriever = indexer
	libraryService = services.NewLibrary(store, pdfextract.NewExtractor(), indexer)
	asker := services.NewAsker(llmService, indexer, web, store)
	asker.SetRetrieveLimit(cfg.Retrieval.Limit)
	askService = asker
	discoveryService = services.NewDiscovery(llmService, store)

	// Config edits take effect mid-session: a pasted web-search key or a
	// new snippet limit applies to the next turn without restart.
	cfgStore.OnChange(func(c file.Config) {
		web.SetCredentials(c.WebSearch.Endpoint, c.WebSearch.APIKey)
		asker.SetRetrieveLimit(c.Retrieval.Limit)
		logger.Debug("Configuration reloaded")
	})

	logger.Debug("Services wired (model %s)", llmService.ModelName())
	return nil
}

// resolveRetrieval resolves the context toggles for a turn: config file
// defaults, overridden by flags the user set explicitly.
func resolveRetrieval(cmd *cobra.Command, noRAG, web bool) (useDoc, useWeb bool) {
	useDoc, useWeb = true, false
	if configStore != nil {
		cfg := configStore.Config()
		useDoc = cfg.Retrieval.UseDocuments
		useWeb = cfg.Retrieval.UseWeb
	}
	if cmd.Flags().Changed("no-rag") {
		useDoc = !noRAG
	}
	if cmd.Flags().Changed("web") {
		useWeb = web
	}
	return useDoc, useWeb
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("Closing resource: %v", err)
		}
	}
	closers = nil
}
