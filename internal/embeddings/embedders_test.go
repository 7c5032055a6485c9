package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIModelDimensions(t *testing.T) {
	tests := []struct {
		model OpenAIModel
		want  int
	}{
		{ModelTextEmbedding3Small, 1536},
		{ModelTextEmbedding3Large, 3072},
		{OpenAIModel("some-future-model"), 1536},
	}
	for _, tt := range tests {
		if got := tt.model.dimensions(); got != tt.want {
			t.Errorf("%s dimensions = %d, want %d", tt.model, got, tt.want)
		}
	}
}

func TestOllamaEmbed(t *testing.T) {
	var gotModel string
	var gotInputs []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		gotModel = req.Model
		gotInputs = append(gotInputs, req.Input)
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer ts.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, ts.URL)
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions = %d, want 3", e.Dimensions())
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("Name = %q", e.Name())
	}

	vecs, err := e.Embed(context.Background(), []string{"profile one", "profile two"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 3 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
	if gotModel != "nomic-embed-text" {
		t.Errorf("model sent = %q", gotModel)
	}
	if len(gotInputs) != 2 || gotInputs[0] != "profile one" || gotInputs[1] != "profile two" {
		t.Errorf("inputs sent = %v", gotInputs)
	}
}

func TestOllamaEmbedErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	e := NewOllamaEmbedder("missing-model", 3, ts.URL)
	if _, err := e.Embed(context.Background(), []string{"text"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestToChromemFuncUsesEmbedder(t *testing.T) {
	stub := &countingEmbedder{vector: []float32{1, 0}}
	fn := ToChromemFunc(stub)

	vec, err := fn(context.Background(), "profile text")
	if err != nil {
		t.Fatalf("embedding func: %v", err)
	}
	if len(vec) != 2 || vec[0] != 1 {
		t.Errorf("unexpected vector %v", vec)
	}
	if stub.calls != 1 {
		t.Errorf("embedder called %d times, want 1", stub.calls)
	}
}

type countingEmbedder struct {
	vector []float32
	calls  int
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = c.vector
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return len(c.vector) }
func (c *countingEmbedder) Name() string    { return "counting" }
