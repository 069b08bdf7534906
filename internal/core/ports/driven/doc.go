// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, the generation service, the
// full-text index, text extraction, and web search. The core services
// depend only on these interfaces so tests can substitute fakes.
package driven
