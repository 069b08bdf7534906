// Package services contains the core business logic: document library
// management, retrieval, the question-answering orchestrator, and the
// background repair-discovery workflow. Services depend only on the port
// interfaces, never on concrete adapters.
package services
