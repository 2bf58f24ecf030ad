package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(client *openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: expected %d vectors, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Index holds resume chunks and, when an embedder was available at build
// time, their vectors. Without vectors it ranks by word overlap.
type Index struct {
	mu       sync.RWMutex
	chunks   []string
	vectors  [][]float32
	embedder Embedder
}

func BuildIndex(ctx context.Context, chunks []string, embedder Embedder) *Index {
	idx := &Index{chunks: append([]string(nil), chunks...)}
	if embedder == nil || len(chunks) == 0 {
		return idx
	}
	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		slog.Warn("[assistant] embeddings unavailable, using keyword retrieval", "error", err)
		return idx
	}
	idx.vectors = vectors
	idx.embedder = embedder
	return idx
}

// Search returns up to k chunks, best match first.
func (idx *Index) Search(ctx context.Context, query string, k int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if k <= 0 || len(idx.chunks) == 0 {
		return nil
	}

	var scores []float64
	if idx.embedder != nil {
		qv, err := idx.embedder.Embed(ctx, []string{query})
		if err == nil && len(qv) == 1 {
			scores = make([]float64, len(idx.chunks))
			for i, v := range idx.vectors {
				scores[i] = cosine(qv[0], v)
			}
		} else {
			slog.Warn("[assistant] query embedding failed, using keyword retrieval", "error", err)
		}
	}
	if scores == nil {
		scores = lexicalScores(query, idx.chunks)
	}

	order := make([]int, len(idx.chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	out := make([]string, 0, k)
	for _, i := range order[:k] {
		out = append(out, idx.chunks[i])
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func lexicalScores(query string, chunks []string) []float64 {
	terms := tokenize(query)
	scores := make([]float64, len(chunks))
	if len(terms) == 0 {
		return scores
	}
	for i, c := range chunks {
		words := tokenize(c)
		if len(words) == 0 {
			continue
		}
		var hits int
		for t := range terms {
			hits += words[t]
		}
		scores[i] = float64(hits) / math.Sqrt(float64(len(words)))
	}
	return scores
}

func tokenize(s string) map[string]int {
	out := map[string]int{}
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(f)) < 2 {
			continue
		}
		out[f]++
	}
	return out
}
