package mcp

import "errors"

// Configuration errors returned when required ports are missing.
var (
	ErrMissingLibraryService = errors.New("mcp: library service is required")
	ErrMissingAskService     = errors.New("mcp: ask service is required")
	ErrMissingRetriever      = errors.New("mcp: retriever is required")
)
