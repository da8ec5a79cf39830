package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// MemoryStore keeps records in process memory. It backs tests and small
// local runs where no Qdrant or Postgres is available.
type MemoryStore struct {
	dim     int
	records map[string]Record
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (ms *MemoryStore) EnsureCollection(_ context.Context, dim int, recreate bool) error {
	if dim <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dim)
	}
	if recreate {
		ms.records = make(map[string]Record)
		ms.order = nil
	}
	ms.dim = dim
	return nil
}

func (ms *MemoryStore) Upsert(_ context.Context, records []Record) error {
	for _, rec := range records {
		if ms.dim > 0 && len(rec.Vector) != ms.dim {
			return fmt.Errorf("record %s has dimension %d, collection expects %d", rec.ID, len(rec.Vector), ms.dim)
		}
		if _, exists := ms.records[rec.ID]; !exists {
			ms.order = append(ms.order, rec.ID)
		}
		ms.records[rec.ID] = rec
	}
	return nil
}

func (ms *MemoryStore) Search(_ context.Context, vector []float32, topK int, gameName string) ([]Result, error) {
	if topK <= 0 {
		topK = 3
	}
	var results []Result
	for _, id := range ms.order {
		rec := ms.records[id]
		if gameName != "" && rec.Payload.GameName != gameName {
			continue
		}
		results = append(results, Result{Record: rec, Score: cosine(vector, rec.Vector)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (ms *MemoryStore) Count(context.Context) (int, error) {
	return len(ms.records), nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Store = (*MemoryStore)(nil)
