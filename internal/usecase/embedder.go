package usecase

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"insight-engine/internal/domain"
)

// FallbackDimensions is the vector size produced by the local fallback
// embedding. Remote backends may return wider vectors; similarity is
// computed over the overlapping prefix.
const FallbackDimensions = 100

// Embedder turns free text into a fixed-length vector. It never fails: any
// remote encoder error falls through to a deterministic local embedding.
type Embedder struct {
	encoder domain.VectorEncoder
	timeout time.Duration
	logger  *slog.Logger
}

// NewEmbedder wraps the optional remote encoder. A nil encoder means the
// local fallback is always used.
func NewEmbedder(encoder domain.VectorEncoder, timeout time.Duration, logger *slog.Logger) *Embedder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{
		encoder: encoder,
		timeout: timeout,
		logger:  logger,
	}
}

// Embed returns a vector for text, preferring the remote encoder and
// silently degrading to the local fallback on any error or timeout.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if e.encoder != nil {
		encodeCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		vectors, err := e.encoder.Encode(encodeCtx, []string{text})
		if err == nil && len(vectors) == 1 && len(vectors[0]) > 0 {
			return vectors[0]
		}
		if err != nil {
			e.logger.Warn("remote_embedding_failed_using_fallback",
				slog.String("encoder", e.encoder.Version()),
				slog.String("error", err.Error()))
		}
	}
	return FallbackEmbedding(text)
}

// FallbackEmbedding is a pure hash-bucketed bag-of-words embedding. For a
// fixed input it is float-for-float reproducible across runs, which the
// determinism tests rely on.
func FallbackEmbedding(text string) []float32 {
	vector := make([]float32, FallbackDimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		var h int32
		for _, r := range token {
			h = (h<<5 - h) + int32(r)
		}
		bucket := int(h)
		if bucket < 0 {
			bucket = -bucket
		}
		vector[bucket%FallbackDimensions]++
	}

	return l2Normalize(vector)
}

// l2Normalize divides the vector by its Euclidean norm. A zero vector is
// returned unchanged.
func l2Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}

// Similarity is the cosine similarity over the first min(len(a), len(b))
// dimensions. Returns 0 if either side has zero norm in that prefix.
func Similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
