package search

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mailpilot-be/internal/models"
)

const (
	vectorsFile = "vectors.gob"
	metaFile    = "meta.json"
)

// Embedder turns text into fixed-dimension embeddings. Satisfied by
// services.EmbeddingService.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchGenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Record is the metadata stored alongside one email's embedding.
type Record struct {
	MailID   string `json:"mail_id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject,omitempty"`
	Snippet  string `json:"snippet"`
}

// Result is a Record augmented with its similarity score for one query.
type Result struct {
	Record
	Score float64 `json:"score"`
}

// Index is an append-only-by-identifier similarity index over emails. Vectors
// and records are parallel slices: position i in one always corresponds to
// position i in the other. All mutation goes through Add under the write
// lock, which is what keeps that correspondence intact when Search runs
// concurrently.
type Index struct {
	embedder Embedder

	mu      sync.RWMutex
	vectors [][]float32
	records []Record
	known   map[string]struct{}
}

func NewIndex(embedder Embedder) *Index {
	return &Index{
		embedder: embedder,
		known:    map[string]struct{}{},
	}
}

// Add indexes every email whose mail id is not yet present. Already-indexed
// identifiers are silently skipped.
func (idx *Index) Add(ctx context.Context, emails []models.Email) error {
	idx.mu.RLock()
	var texts []string
	var records []Record
	seen := map[string]struct{}{}
	for _, email := range emails {
		if _, ok := idx.known[email.MailID]; ok {
			continue
		}
		if _, ok := seen[email.MailID]; ok {
			continue
		}
		seen[email.MailID] = struct{}{}
		texts = append(texts, CanonicalText(&email))
		records = append(records, Record{
			MailID:   email.MailID,
			ThreadID: email.ThreadID,
			Subject:  email.Subject,
			Snippet:  Snippet(email.Body, snippetLength),
		})
	}
	idx.mu.RUnlock()

	if len(texts) == 0 {
		return nil
	}

	embeddings, err := idx.embedder.BatchGenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %d emails: %w", len(texts), err)
	}
	if len(embeddings) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d emails", len(embeddings), len(records))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, record := range records {
		// Re-check under the write lock; a concurrent Add may have won.
		if _, ok := idx.known[record.MailID]; ok {
			continue
		}
		idx.vectors = append(idx.vectors, normalize(embeddings[i]))
		idx.records = append(idx.records, record)
		idx.known[record.MailID] = struct{}{}
	}
	return nil
}

// Search returns at most k records ranked by normalized inner product between
// the query's embedding and the indexed embeddings, descending. An empty or
// whitespace query, or an empty index, yields no results; k is clamped to the
// index size.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 || idx.Len() == 0 {
		return nil, nil
	}

	embedding, err := idx.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := normalize(embedding)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]Result, len(idx.records))
	for i, record := range idx.records {
		results[i] = Result{Record: record, Score: dot(queryVec, idx.vectors[i])}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Rebuild clears all state and re-indexes the given emails from scratch.
func (idx *Index) Rebuild(ctx context.Context, emails []models.Email) error {
	idx.mu.Lock()
	idx.vectors = nil
	idx.records = nil
	idx.known = map[string]struct{}{}
	idx.mu.Unlock()

	return idx.Add(ctx, emails)
}

// Len returns the number of indexed emails.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Save writes the embeddings and the parallel metadata list under dir so that
// Load reproduces identical search behavior.
func (idx *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	idx.mu.RLock()
	vectors := make([][]float32, len(idx.vectors))
	copy(vectors, idx.vectors)
	records := make([]Record, len(idx.records))
	copy(records, idx.records)
	idx.mu.RUnlock()

	f, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(vectors); err != nil {
		return fmt.Errorf("failed to encode vectors: %w", err)
	}

	meta, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644)
}

// Load reads an index previously written by Save. A directory missing either
// artifact is an error, not a silent empty index.
func Load(dir string, embedder Embedder) (*Index, error) {
	vectorsPath := filepath.Join(dir, vectorsFile)
	metaPath := filepath.Join(dir, metaFile)
	for _, path := range []string{vectorsPath, metaPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing index artifact %s: %w", path, err)
		}
	}

	f, err := os.Open(vectorsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vectors [][]float32
	if err := gob.NewDecoder(f).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("failed to decode vectors: %w", err)
	}

	meta, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(meta, &records); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	if len(vectors) != len(records) {
		return nil, errors.New("vector and metadata artifacts disagree on index size")
	}

	idx := NewIndex(embedder)
	idx.vectors = vectors
	idx.records = records
	for _, record := range records {
		idx.known[record.MailID] = struct{}{}
	}
	return idx, nil
}

// normalize returns v scaled to unit length. A zero vector stays zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
