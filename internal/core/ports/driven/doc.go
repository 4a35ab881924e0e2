// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Converts raw document bytes into text
//   - Chunker: Splits extracted text into overlapping chunks
//   - EmbeddingService: Turns text into vectors, or defers to the store
//   - VectorStore: Namespaced vector storage and cosine search
//   - LLMService: Chat completion for answer generation
//   - DocumentStore: Catalogue of ingested documents
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for answer generation
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser, or postprocessor package
package driven
