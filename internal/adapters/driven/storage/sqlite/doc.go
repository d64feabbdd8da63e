// Package sqlite persists the corpus vector index as a SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. The index file holds:
//
//   - vectors: one little-endian float32 blob per document, keyed by index position
//   - index_meta: size, dimension, embedding model, build id, built-at time and
//     the SHA-256 digest of the companion mapping file
//
// The id mapping is written next to the index as a JSON object keyed by the
// decimal index position.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Publishing
//
// Both files are written under temporary names and renamed into place only
// after they are complete. The digest recorded in the index lets Load detect
// a mapping that belongs to a different build.
//
// # Data Location
//
// By default, the index is stored at data/faiss_index.db and the mapping at
// data/faiss_mapping.json, relative to the working directory.
package sqlite
