package classify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/classify"
)

func newCompletionServer(t *testing.T, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestLLMModel_ClassifyAndCache(t *testing.T) {
	var calls int32
	srv := newCompletionServer(t, "Sure! ```json\n{\"label\": \"ingredient\", \"confidence\": 0.92}\n```", &calls)
	defer srv.Close()

	store := cache.NewMemory(cache.MemoryOptions{MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	m := classify.NewLLMModel(classify.LLMOptions{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}, store)

	for i := 0; i < 2; i++ {
		label, conf, err := m.Classify(context.Background(), "2 cups flour")
		require.NoError(t, err)
		assert.Equal(t, classify.LabelIngredient, label)
		assert.InDelta(t, 0.92, conf, 1e-9)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup is served from cache")
}

func TestLLMModel_UnknownLabel(t *testing.T) {
	var calls int32
	srv := newCompletionServer(t, `{"label": "dessert", "confidence": 0.9}`, &calls)
	defer srv.Close()

	m := classify.NewLLMModel(classify.LLMOptions{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}, nil)
	_, _, err := m.Classify(context.Background(), "Tiramisu")
	assert.Error(t, err)
}

func TestLLMModel_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := classify.NewLLMModel(classify.LLMOptions{BaseURL: srv.URL, APIKey: "k", Model: "m"}, nil)
	label, conf, err := m.Classify(context.Background(), "Serves 4")
	require.Error(t, err)
	assert.Equal(t, classify.LabelUnknown, label)
	assert.Zero(t, conf)

	c := classify.New(m)
	assert.Equal(t, classify.LabelUnknown, c.Classify(context.Background(), "Serves 4").Label)
}
