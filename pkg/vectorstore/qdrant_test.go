package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQdrantStatusUnmarshal(t *testing.T) {
	var ok qdrantStatus
	if err := json.Unmarshal([]byte(`"ok"`), &ok); err != nil {
		t.Fatalf("string form: %v", err)
	}
	if ok.State != "ok" || ok.Error != "" {
		t.Fatalf("string form parsed as %+v", ok)
	}

	var failed qdrantStatus
	if err := json.Unmarshal([]byte(`{"error":"Wrong input: dimension mismatch"}`), &failed); err != nil {
		t.Fatalf("object form: %v", err)
	}
	if failed.State != "error" || failed.Error == "" {
		t.Fatalf("object form parsed as %+v", failed)
	}
}

func TestQdrantSearchRequestAndResponse(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/board_game_manuals/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := `{"status":"ok","time":0.001,"result":[
			{"id":"11111111-1111-1111-1111-111111111111","score":0.91,
			 "payload":{"text":"longest road","source_file":"catan_manual.pdf","game_name":"Catan","chunk_index":2,"doc_chars":1800,"chunk_chars":1000}}
		]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "secret", "board_game_manuals")
	results, err := qs.Search(context.Background(), []float32{1, 0}, 3, "Catan")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	hit := results[0]
	if hit.Score != 0.91 || hit.Payload.GameName != "Catan" || hit.Payload.ChunkIndex != 2 {
		t.Fatalf("hit = %+v", hit)
	}

	filter, ok := captured["filter"].(map[string]any)
	if !ok {
		t.Fatalf("request carries no filter: %v", captured)
	}
	must := filter["must"].([]any)[0].(map[string]any)
	if must["key"] != "game_name" {
		t.Fatalf("filter key = %v", must["key"])
	}
	if match := must["match"].(map[string]any); match["value"] != "Catan" {
		t.Fatalf("filter value = %v", match["value"])
	}
}

func TestQdrantSearchOmitsFilterWithoutGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if _, has := req["filter"]; has {
			t.Error("empty game name still sent a filter")
		}
		w.Write([]byte(`{"status":"ok","result":[]}`))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "", "c")
	results, err := qs.Search(context.Background(), []float32{1}, 3, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestQdrantEnsureCollectionToleratesExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":{"error":"Collection board_game_manuals already exists"}}`))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "", "board_game_manuals")
	if err := qs.EnsureCollection(context.Background(), 1536, false); err != nil {
		t.Fatalf("existing collection should be fine: %v", err)
	}
}

func TestQdrantEnsureCollectionRecreate(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":{"error":"Collection not found"}}`))
			return
		}
		w.Write([]byte(`{"status":"ok","result":true}`))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "", "c")
	if err := qs.EnsureCollection(context.Background(), 4, true); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	if len(methods) != 2 || methods[0] != http.MethodDelete || methods[1] != http.MethodPut {
		t.Fatalf("requests = %v, want DELETE then PUT", methods)
	}
}

func TestQdrantUpsertBatches(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.String(), "wait=true") {
			t.Error("upsert without wait=true")
		}
		var req struct {
			Points []json.RawMessage `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		batches = append(batches, len(req.Points))
		w.Write([]byte(`{"status":"ok","result":{}}`))
	}))
	defer srv.Close()

	records := make([]Record, 250)
	for i := range records {
		records[i] = Record{ID: RecordID("big_manual.pdf", i+1), Vector: []float32{1}}
	}
	qs := NewQdrantStore(srv.URL, "", "c")
	if err := qs.Upsert(context.Background(), records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	want := []int{100, 100, 50}
	if len(batches) != len(want) {
		t.Fatalf("batches = %v", batches)
	}
	for i := range want {
		if batches[i] != want[i] {
			t.Fatalf("batches = %v, want %v", batches, want)
		}
	}
}

func TestQdrantErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":{"error":"Wrong input: vector dimension error"}}`))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "", "c")
	err := qs.Upsert(context.Background(), []Record{{ID: "x", Vector: []float32{1}}})
	if err == nil || !strings.Contains(err.Error(), "vector dimension error") {
		t.Fatalf("error = %v, want the server message surfaced", err)
	}
}

func TestQdrantCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","result":{"count":42}}`))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "", "c")
	count, err := qs.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 42 {
		t.Fatalf("count = %d", count)
	}
}
