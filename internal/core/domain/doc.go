// Package domain contains the core business entities for Nexus:
// documents, extracted chunks, repair maps, and conversation messages.
// It has no dependencies on adapters or external services.
package domain
