// Package qdrant is a minimal REST client to Qdrant, keyed by entry name
// through a payload filter. It assumes cosine distance and creates the
// collection if missing.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"grimoire/internal/domain"
	"grimoire/internal/vectorstore"
)

// Storage stores chunk payloads as Qdrant points.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
	nextID     int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if the collection already exists with the same
	// schema; any other error propagates.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

// IndexEntry upserts one point per chunk, carrying the owning entry name,
// the context sentence, and its position in the payload.
func (s *Storage) IndexEntry(entry domain.ChunkedEntry, vectors [][]float64) error {
	var points []map[string]any
	i := 0
	for _, ctx := range entry.ChunkContexts {
		for _, chunk := range ctx.Chunks {
			if i >= len(vectors) {
				return errors.New("chunks and vectors length mismatch")
			}
			s.nextID++
			points = append(points, map[string]any{
				"id":     s.nextID,
				"vector": vectors[i],
				"payload": map[string]any{
					"entry_name":   entry.Name,
					"context_text": ctx.Text,
					"chunk_text":   chunk.Text,
					"position":     ctx.Position,
				},
			})
			i++
		}
	}
	if i != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Storage) Query(vector []float64, entryName string, topK int) ([]domain.SearchResult, error) {
	if entryName == "" {
		return nil, vectorstore.ErrNoEntryName
	}
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "entry_name", "match": map[string]any{"value": entryName}},
			},
		},
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := domain.SearchResult{Score: r.Score}
		if v, ok := r.Payload["context_text"].(string); ok {
			res.ContextText = v
		}
		if v, ok := r.Payload["chunk_text"].(string); ok {
			res.ChunkText = v
		}
		if v, ok := r.Payload["position"].(float64); ok {
			res.Position = int(v)
		}
		results = append(results, res)
	}
	return results, nil
}

// Clear deletes every point in the collection. The collection itself stays,
// so Init followed by Clear leaves an empty, ready index.
func (s *Storage) Clear() error {
	body := map[string]any{"filter": map[string]any{}}
	return s.postJSON(fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection), body, nil)
}

func (s *Storage) Close() error { return nil }

func (s *Storage) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
