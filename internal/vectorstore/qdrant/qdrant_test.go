package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxadvisor/internal/domain"
)

func TestUpsertSendsPayloadMetadata(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/tax/points" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "tax"})
	chunk := domain.Chunk{
		ID:          "doc1:0",
		SourceFile:  "income_tax_act.txt",
		Page:        3,
		ChunkIndex:  0,
		TotalChunks: 12,
		Text:        "Section 80C allows deductions up to 150000.",
	}
	require.NoError(t, s.Upsert(context.Background(), []domain.Chunk{chunk}, [][]float64{{0.5, 0.5}}))

	points := captured["points"].([]any)
	require.Len(t, points, 1)
	payload := points[0].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "income_tax_act.txt", payload["source_file"])
	assert.Equal(t, float64(3), payload["page"])
	assert.Equal(t, float64(12), payload["total_chunks"])
	// Point IDs must be valid UUIDs, deterministic per chunk.
	id := points[0].(map[string]any)["id"].(string)
	assert.Len(t, id, 36)
}

func TestSearchConvertsScoreToDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/tax/points/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.92,
					"payload": map[string]any{
						"chunk_id":     "doc1:4",
						"source_file":  "old_regime.txt",
						"page":         float64(2),
						"chunk_index":  float64(4),
						"total_chunks": float64(9),
						"text":         "Rebate applies below the threshold.",
					},
				},
			},
		})
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "tax"})
	results, err := s.Search(context.Background(), []float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc1:4", results[0].Chunk.ID)
	assert.Equal(t, "old_regime.txt", results[0].Chunk.SourceFile)
	assert.Equal(t, 2, results[0].Chunk.Page)
	assert.InDelta(t, 0.08, results[0].Distance, 1e-9)
}

func TestClearDeletesPointsWithoutDroppingCollection(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "tax"})
	require.NoError(t, s.Clear(context.Background()))

	require.Len(t, calls, 1)
	assert.Equal(t, "POST /collections/tax/points/delete", calls[0])
}

func TestClearTreatsMissingCollectionAsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "tax"})
	assert.NoError(t, s.Clear(context.Background()))
}

func TestInitPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad schema", http.StatusConflict)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "tax"})
	assert.Error(t, s.Init(context.Background(), 128))
}
