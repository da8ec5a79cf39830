package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// qdrantStatus supports both `status: "ok"` and `status: {"error":"..."}`.
type qdrantStatus struct {
	State string
	Error string
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Time   float64      `json:"time"`
	Result T            `json:"result"`
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type qdrantCountResult struct {
	Count int `json:"count"`
}

// QdrantStore talks to Qdrant over its REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

// NewQdrantStore returns a store bound to one collection. An empty baseURL
// targets a local Qdrant.
func NewQdrantStore(baseURL, apiKey, collection string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureCollection creates the collection with cosine distance. Creation is
// idempotent: an "already exists" response is treated as success. With
// recreate set the collection is deleted first; a missing collection on
// delete is fine.
func (qs *QdrantStore) EnsureCollection(ctx context.Context, dim int, recreate bool) error {
	if dim <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dim)
	}
	if recreate {
		if err := qs.do(ctx, http.MethodDelete, qs.collectionPath(""), nil, nil); err != nil {
			var qerr *qdrantError
			if !errors.As(err, &qerr) || !qerr.notFound() {
				return fmt.Errorf("delete collection %s: %w", qs.collection, err)
			}
		}
	}
	req := map[string]any{
		"vectors": map[string]any{"size": dim, "distance": "Cosine"},
	}
	if err := qs.do(ctx, http.MethodPut, qs.collectionPath(""), req, nil); err != nil {
		var qerr *qdrantError
		if errors.As(err, &qerr) && qerr.alreadyExists() {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", qs.collection, err)
	}
	return nil
}

// Upsert writes records in bounded batches with wait=true so each batch is
// durable before the next begins.
func (qs *QdrantStore) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		points := make([]map[string]any, 0, end-start)
		for _, rec := range records[start:end] {
			points = append(points, map[string]any{
				"id":      rec.ID,
				"vector":  rec.Vector,
				"payload": rec.Payload,
			})
		}
		req := map[string]any{"points": points}
		if err := qs.do(ctx, http.MethodPut, qs.collectionPath("/points?wait=true"), req, nil); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}

// Search runs a nearest-neighbor query, optionally filtered to one game.
func (qs *QdrantStore) Search(ctx context.Context, vector []float32, topK int, gameName string) ([]Result, error) {
	if topK <= 0 {
		topK = 3
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if gameName != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{{
				"key":   "game_name",
				"match": map[string]any{"value": gameName},
			}},
		}
	}
	var resp qdrantEnvelope[[]qdrantPoint]
	if err := qs.do(ctx, http.MethodPost, qs.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search collection %s: %w", qs.collection, err)
	}
	results := make([]Result, 0, len(resp.Result))
	for _, point := range resp.Result {
		results = append(results, Result{
			Record: Record{ID: point.ID, Payload: payloadFromMap(point.Payload)},
			Score:  point.Score,
		})
	}
	return results, nil
}

// Count returns the exact point count.
func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp qdrantEnvelope[qdrantCountResult]
	if err := qs.do(ctx, http.MethodPost, qs.collectionPath("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, fmt.Errorf("count collection %s: %w", qs.collection, err)
	}
	return resp.Result.Count, nil
}

func (qs *QdrantStore) collectionPath(suffix string) string {
	return fmt.Sprintf("/collections/%s%s", url.PathEscape(qs.collection), suffix)
}

// qdrantError carries the HTTP status and server-reported message.
type qdrantError struct {
	statusCode int
	message    string
}

func (e *qdrantError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("qdrant: http %d: %s", e.statusCode, e.message)
	}
	return fmt.Sprintf("qdrant: http %d", e.statusCode)
}

func (e *qdrantError) notFound() bool {
	return e.statusCode == http.StatusNotFound || strings.Contains(strings.ToLower(e.message), "not found")
}

func (e *qdrantError) alreadyExists() bool {
	return strings.Contains(strings.ToLower(e.message), "already exists")
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, qs.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		// Either header works; sending both covers deployments with either check.
		req.Header.Set("api-key", qs.apiKey)
		req.Header.Set("Authorization", "Bearer "+qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env qdrantEnvelope[json.RawMessage]
	_ = json.Unmarshal(respBody, &env) // best-effort parse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &qdrantError{statusCode: resp.StatusCode, message: env.Status.Error}
	}
	if env.Status.Error != "" {
		return &qdrantError{statusCode: resp.StatusCode, message: env.Status.Error}
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func payloadFromMap(m map[string]any) Payload {
	p := Payload{}
	if v, ok := m["text"].(string); ok {
		p.Text = v
	}
	if v, ok := m["source_file"].(string); ok {
		p.SourceFile = v
	}
	if v, ok := m["game_name"].(string); ok {
		p.GameName = v
	}
	if v, ok := m["chunk_index"].(float64); ok {
		p.ChunkIndex = int(v)
	}
	if v, ok := m["doc_chars"].(float64); ok {
		p.DocChars = int(v)
	}
	if v, ok := m["chunk_chars"].(float64); ok {
		p.ChunkChars = int(v)
	}
	return p
}

var _ Store = (*QdrantStore)(nil)
