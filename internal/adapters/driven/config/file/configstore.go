// Package file provides the TOML configuration store. Settings live in
// config.toml under the nexus config directory and are hot-reloaded when
// the file changes, so an API key pasted mid-session takes effect without
// a restart.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/nexus-cli/internal/logger"
)

// Config is the full nexus configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	WebSearch WebSearchConfig `toml:"web_search"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// LLMConfig configures the generation service.
type LLMConfig struct {
	// Provider selects the backend: ollama, openai, or anthropic.
	Provider string `toml:"provider"`

	// BaseURL is the provider's API base URL. Empty uses the provider
	// default; the shipped default points at a local Ollama.
	BaseURL string `toml:"base_url"`

	// APIKey is required for hosted providers, ignored by ollama.
	APIKey string `toml:"api_key"`

	// Model is the model name.
	Model string `toml:"model"`

	// TimeoutSeconds bounds one generation request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// WebSearchConfig configures the external search endpoint.
type WebSearchConfig struct {
	// Endpoint is the search API base URL.
	Endpoint string `toml:"endpoint"`

	// APIKey is the bearer credential. Empty disables web research.
	APIKey string `toml:"api_key"`

	// TimeoutSeconds is the hard per-request bound.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// RetrievalConfig configures the answer pipeline.
type RetrievalConfig struct {
	// UseDocuments enables document-context retrieval.
	UseDocuments bool `toml:"use_documents"`

	// UseWeb enables web research when a credential is present.
	UseWeb bool `toml:"use_web"`

	// Limit is the number of document snippets per question.
	Limit int `toml:"limit"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "ollama",
			BaseURL:        "http://localhost:11434",
			Model:          "llama3.2",
			TimeoutSeconds: 120,
		},
		WebSearch: WebSearchConfig{
			TimeoutSeconds: 10,
		},
		Retrieval: RetrievalConfig{
			UseDocuments: true,
			UseWeb:       false,
			Limit:        5,
		},
	}
}

// Store is the file-backed configuration store.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config

	watcher  *fsnotify.Watcher
	onChange []func(Config)
	done     chan struct{}
	closed   sync.Once
}

// NewStore creates a config store rooted at configDir. If configDir is
// empty, defaults to ~/.nexus. A missing file is created with defaults.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".nexus")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		cfg:      DefaultConfig(),
		done:     make(chan struct{}),
	}

	if err := s.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := s.Save(s.cfg); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Config returns a snapshot of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Save persists the configuration to disk with restricted permissions.
func (s *Store) Save(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Load reads the configuration from disk. Fields absent from the file
// keep their defaults.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// OnChange registers a callback invoked with the new configuration after
// every successful hot reload. Register before calling Watch.
func (s *Store) OnChange(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Watch starts watching the config file and reloads it on change.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace the file on
	// save, which would break a direct file watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go s.watchLoop(watcher)
	return nil
}

func (s *Store) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(); err != nil {
				logger.Warn("Reloading config: %v", err)
				continue
			}
			logger.Debug("Config reloaded from %s", s.filePath)
			s.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher: %v", err)
		}
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	cfg := s.cfg
	callbacks := make([]func(Config), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// Close stops the watcher.
func (s *Store) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.done)
		s.mu.RLock()
		watcher := s.watcher
		s.mu.RUnlock()
		if watcher != nil {
			err = watcher.Close()
		}
	})
	return err
}
