// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Maps text to fixed-dimension vectors (Ollama, OpenAI)
//   - VectorIndex: Exact nearest-neighbour storage and search
//   - IndexStore: Publishes and reloads the index + id mapping pair
//   - MetadataSource: Reads corpus documents and resolves their text
//   - TextExtractor: Yields raw text for a document path
//   - Segmenter: Splits text into comparison chunks
//   - OverlapDetector: Flags subject chunks that match reference chunks
//   - ResultStore: Persists novelty results and plagiarism reports
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Verifies embedding provider connectivity
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or detector package
package driven
