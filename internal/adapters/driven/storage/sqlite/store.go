package sqlite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/novelcheck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Keys of the index_meta table.
const (
	metaSize          = "size"
	metaDimension     = "dimension"
	metaModel         = "model"
	metaBuildID       = "build_id"
	metaMappingSHA256 = "mapping_sha256"
	metaBuiltAt       = "built_at"
)

// IndexStore persists an index + mapping pair at fixed paths.
type IndexStore struct {
	indexPath   string
	mappingPath string
	newIndex    driven.VectorIndexFactory
	now         func() time.Time
}

// Verify interface compliance.
var _ driven.IndexStore = (*IndexStore)(nil)

// Option configures an IndexStore.
type Option func(*IndexStore)

// WithIndexFactory sets the factory used to rebuild an index on Load.
func WithIndexFactory(factory driven.VectorIndexFactory) Option {
	return func(s *IndexStore) {
		if factory != nil {
			s.newIndex = factory
		}
	}
}

// WithClock sets the time source used for the built-at stamp.
func WithClock(now func() time.Time) Option {
	return func(s *IndexStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIndexStore creates a store for the index at indexPath and its mapping
// at mappingPath. Loaded indexes are flat L2 indexes unless overridden.
func NewIndexStore(indexPath, mappingPath string, opts ...Option) *IndexStore {
	s := &IndexStore{
		indexPath:   indexPath,
		mappingPath: mappingPath,
		newIndex:    flat.NewFactory(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the index and mapping locations.
func (s *IndexStore) Paths() (indexPath, mappingPath string) {
	return s.indexPath, s.mappingPath
}

// Publish writes both artifacts under temporary names and renames them into place.
func (s *IndexStore) Publish(ctx context.Context, artifact *driven.IndexArtifact) error {
	if artifact == nil || artifact.Index == nil {
		return fmt.Errorf("%w: nothing to publish", domain.ErrInvalidInput)
	}
	size := artifact.Index.Size()
	if len(artifact.Mapping) != size {
		return fmt.Errorf("%w: mapping has %d entries, index has %d vectors",
			domain.ErrInvalidInput, len(artifact.Mapping), size)
	}
	for id := 0; id < size; id++ {
		if _, ok := artifact.Mapping.Lookup(id); !ok {
			return fmt.Errorf("%w: mapping has no entry for index position %d", domain.ErrInvalidInput, id)
		}
	}

	buildID := artifact.BuildID
	if buildID == "" {
		buildID = strconv.FormatInt(s.now().UnixNano(), 10)
	}

	for _, p := range []string{s.indexPath, s.mappingPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("%w: creating directory for %s: %w", domain.ErrIO, p, err)
		}
	}

	mappingBytes, err := encodeMapping(artifact.Mapping)
	if err != nil {
		return fmt.Errorf("%w: encoding mapping: %w", domain.ErrIO, err)
	}
	digest := sha256.Sum256(mappingBytes)

	tmpIndex := s.indexPath + ".tmp-" + buildID
	tmpMapping := s.mappingPath + ".tmp-" + buildID
	published := false
	defer func() {
		if !published {
			_ = os.Remove(tmpIndex)
			_ = os.Remove(tmpMapping)
		}
	}()

	// A leftover from an interrupted publish with the same build id.
	_ = os.Remove(tmpIndex)

	meta := map[string]string{
		metaSize:          strconv.Itoa(size),
		metaDimension:     strconv.Itoa(artifact.Index.Dimension()),
		metaModel:         artifact.Model,
		metaBuildID:       buildID,
		metaMappingSHA256: hex.EncodeToString(digest[:]),
		metaBuiltAt:       s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := writeIndex(ctx, tmpIndex, artifact.Index, meta); err != nil {
		return err
	}

	if err := os.WriteFile(tmpMapping, mappingBytes, 0644); err != nil {
		return fmt.Errorf("%w: writing mapping: %w", domain.ErrIO, err)
	}

	if err := os.Rename(tmpIndex, s.indexPath); err != nil {
		return fmt.Errorf("%w: publishing index: %w", domain.ErrIO, err)
	}
	if err := os.Rename(tmpMapping, s.mappingPath); err != nil {
		// The old mapping stays in place; its digest no longer matches and
		// Load reports the pair as inconsistent.
		return fmt.Errorf("%w: publishing mapping: %w", domain.ErrIO, err)
	}

	published = true
	return nil
}

// Load reads and cross-checks both artifacts.
func (s *IndexStore) Load(ctx context.Context) (*driven.IndexArtifact, error) {
	if err := s.requireFiles(); err != nil {
		return nil, err
	}

	mappingBytes, err := os.ReadFile(s.mappingPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading mapping %s: %w", domain.ErrIO, s.mappingPath, err)
	}

	db, err := openExisting(s.indexPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, s.inconsistent("reading index metadata: %v", err)
	}

	digest := sha256.Sum256(mappingBytes)
	if meta[metaMappingSHA256] != hex.EncodeToString(digest[:]) {
		return nil, s.inconsistent("mapping %s does not belong to build %s", s.mappingPath, meta[metaBuildID])
	}

	var mapping domain.IDMapping
	if err := json.Unmarshal(mappingBytes, &mapping); err != nil {
		return nil, s.inconsistent("decoding mapping: %v", err)
	}

	index := s.newIndex()
	rows, err := db.QueryContext(ctx, "SELECT id, embedding FROM vectors ORDER BY id")
	if err != nil {
		return nil, s.inconsistent("reading vectors: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, s.inconsistent("scanning vector: %v", err)
		}
		if id != index.Size() {
			return nil, s.inconsistent("vector ids are not contiguous at %d", id)
		}
		if _, err := index.Add(ctx, bytesToFloat32Slice(blob)); err != nil {
			return nil, s.inconsistent("vector %d: %v", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, s.inconsistent("reading vectors: %v", err)
	}

	if index.Size() != len(mapping) {
		return nil, s.inconsistent("index has %d vectors, mapping has %d entries", index.Size(), len(mapping))
	}
	for id := 0; id < index.Size(); id++ {
		if _, ok := mapping.Lookup(id); !ok {
			return nil, s.inconsistent("mapping has no entry for index position %d", id)
		}
	}

	builtAt, _ := time.Parse(time.RFC3339Nano, meta[metaBuiltAt])
	return &driven.IndexArtifact{
		Index:   index,
		Mapping: mapping,
		Model:   meta[metaModel],
		BuildID: meta[metaBuildID],
		BuiltAt: builtAt,
	}, nil
}

// Info reads index metadata without loading vectors.
func (s *IndexStore) Info(ctx context.Context) (*domain.IndexInfo, error) {
	if err := s.requireFiles(); err != nil {
		return nil, err
	}

	db, err := openExisting(s.indexPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, s.inconsistent("reading index metadata: %v", err)
	}

	size, _ := strconv.Atoi(meta[metaSize])
	dimension, _ := strconv.Atoi(meta[metaDimension])
	builtAt, _ := time.Parse(time.RFC3339Nano, meta[metaBuiltAt])

	return &domain.IndexInfo{
		IndexPath:   s.indexPath,
		MappingPath: s.mappingPath,
		Size:        size,
		Dimension:   dimension,
		Model:       meta[metaModel],
		BuildID:     meta[metaBuildID],
		BuiltAt:     builtAt,
	}, nil
}

func (s *IndexStore) requireFiles() error {
	for _, p := range []string{s.indexPath, s.mappingPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s not found (run 'novelcheck build-index' first)", domain.ErrMissingArtifact, p)
			}
			return fmt.Errorf("%w: %s: %w", domain.ErrIO, p, err)
		}
	}
	return nil
}

func (s *IndexStore) inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrMissingArtifact, domain.ErrInconsistentIndex, fmt.Sprintf(format, args...))
}

// ==================== Index File ====================

// writeIndex creates a fresh database at path holding every vector and the meta rows.
func writeIndex(ctx context.Context, path string, index driven.VectorIndex, meta map[string]string) error {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("%w: opening index: %w", domain.ErrIO, err)
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("%w: running migrations: %w", domain.ErrIO, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrIO, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO vectors (id, embedding) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", domain.ErrIO, err)
	}
	defer stmt.Close()

	for id := 0; id < index.Size(); id++ {
		vec, ok := index.Vector(id)
		if !ok {
			return fmt.Errorf("%w: index has no vector at position %d", domain.ErrInvalidInput, id)
		}
		if _, err := stmt.ExecContext(ctx, id, float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("%w: inserting vector %d: %w", domain.ErrIO, id, err)
		}
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "INSERT INTO index_meta (key, value) VALUES (?, ?)", k, meta[k]); err != nil {
			return fmt.Errorf("%w: writing meta %s: %w", domain.ErrIO, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing index: %w", domain.ErrIO, err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("%w: closing index: %w", domain.ErrIO, err)
	}
	return nil
}

// openExisting opens an index file that is known to exist.
func openExisting(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening index %s: %w", domain.ErrIO, path, err)
	}
	return db, nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, required := range []string{metaSize, metaBuildID, metaMappingSHA256} {
		if _, ok := meta[required]; !ok {
			return nil, fmt.Errorf("missing %q", required)
		}
	}
	return meta, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_vector_index.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Helper Functions ====================

// encodeMapping renders the mapping as indented JSON without HTML escaping.
func encodeMapping(mapping domain.IDMapping) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
