// Package sqlite provides a persistent vector store backed by SQLite.
// Embeddings are stored as little-endian float32 BLOBs, one per chunk;
// similarity is computed in Go with a brute-force scan of the entry's
// chunks, which is plenty for catalog-sized data.
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

// Storage implements the vector store on a SQLite file.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Init creates the schema. An entry is a logical grouping of text (here, a
// spell); chunk contexts keep the sentence order within the entry; chunks
// overlap to preserve context; each chunk owns exactly one embedding.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.dimension = dimension
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chunk_context (
		id INTEGER PRIMARY KEY,
		entry_id INTEGER,
		text TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (entry_id) REFERENCES entries (id)
	);
	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY,
		chunk_context_id INTEGER,
		text TEXT NOT NULL,
		FOREIGN KEY (chunk_context_id) REFERENCES chunk_context (id)
	);
	CREATE TABLE IF NOT EXISTS embeddings (
		chunk_id INTEGER PRIMARY KEY,
		embedding BLOB NOT NULL,
		FOREIGN KEY (chunk_id) REFERENCES chunks (id)
	);
	CREATE INDEX IF NOT EXISTS idx_entry_name ON entries (name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// IndexEntry writes one chunked entry and its chunk embeddings in a single
// transaction. Vectors align with the entry's chunks flattened in context
// order. Ingestion-time only; assumed single-writer.
func (s *Storage) IndexEntry(entry domain.ChunkedEntry, vectors [][]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO entries (name) VALUES (?)`, entry.Name)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	i := 0
	for _, ctx := range entry.ChunkContexts {
		res, err := tx.Exec(`INSERT INTO chunk_context (entry_id, text, position) VALUES (?, ?, ?)`,
			entryID, ctx.Text, ctx.Position)
		if err != nil {
			return fmt.Errorf("inserting chunk context: %w", err)
		}
		contextID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, chunk := range ctx.Chunks {
			if i >= len(vectors) {
				return fmt.Errorf("chunks and vectors length mismatch")
			}
			if len(vectors[i]) != s.dimension {
				return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vectors[i]), s.dimension)
			}
			res, err := tx.Exec(`INSERT INTO chunks (chunk_context_id, text) VALUES (?, ?)`,
				contextID, chunk.Text)
			if err != nil {
				return fmt.Errorf("inserting chunk: %w", err)
			}
			chunkID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`INSERT INTO embeddings (chunk_id, embedding) VALUES (?, ?)`,
				chunkID, encodeVector(vectors[i])); err != nil {
				return fmt.Errorf("inserting embedding: %w", err)
			}
			i++
		}
	}
	if i != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch")
	}
	return tx.Commit()
}

// Query returns the topK nearest chunks within the named entry, best first.
func (s *Storage) Query(vector []float64, entryName string, topK int) ([]domain.SearchResult, error) {
	if entryName == "" {
		return nil, vectorstore.ErrNoEntryName
	}
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.Query(`
		SELECT cc.text, c.text, cc.position, em.embedding
		FROM chunk_context cc
		JOIN chunks c ON cc.id = c.chunk_context_id
		JOIN embeddings em ON c.id = em.chunk_id
		JOIN entries e ON cc.entry_id = e.id
		WHERE e.name = ?`, entryName)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.ContextText, &r.ChunkText, &r.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		emb, err := decodeVector(blob)
		if err != nil {
			continue
		}
		r.Score = vectorstore.CosineSimilarity(emb, vector)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Clear removes all indexed data.
func (s *Storage) Clear() error {
	for _, table := range []string{"embeddings", "chunks", "chunk_context", "entries"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Storage) Close() error { return s.db.Close() }

// encodeVector packs a vector as little-endian float32, the layout
// sqlite-vec uses for FLOAT[] columns.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(f)))
	}
	return buf
}

func decodeVector(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob of %d bytes", len(blob))
	}
	v := make([]float64, len(blob)/4)
	for i := range v {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))
	}
	return v, nil
}
