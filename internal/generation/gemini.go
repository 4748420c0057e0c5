package generation

import (
	"context"
	"fmt"
	"io"
	"iter"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var _ ImageGenerator = (*GeminiGenerator)(nil)

// GeminiGenerator calls a Gemini image model through the genai SDK.
type GeminiGenerator struct {
	client  *genai.Client
	limiter *rate.Limiter
}

// NewGeminiGenerator creates a client for apiKey. limiter may be nil.
func NewGeminiGenerator(ctx context.Context, apiKey string, limiter *rate.Limiter) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, limiter: limiter}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (ChunkStream, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("generation rate limiter: %w", err)
		}
	}

	imageConfig := &genai.ImageConfig{ImageSize: req.ImageSize}
	if req.AspectRatio != "" {
		imageConfig.AspectRatio = req.AspectRatio
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		Seed:               genai.Ptr(req.Seed),
		ImageConfig:        imageConfig,
	}

	seq := g.client.Models.GenerateContentStream(ctx, req.Model, genai.Text(req.Prompt), config)
	return newResponseStream(seq), nil
}

// responseStream adapts the SDK's push iterator to ChunkStream.
type responseStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	pending []Chunk
}

func newResponseStream(seq iter.Seq2[*genai.GenerateContentResponse, error]) *responseStream {
	next, stop := iter.Pull2(seq)
	return &responseStream{next: next, stop: stop}
}

func (s *responseStream) Next() (Chunk, error) {
	for len(s.pending) == 0 {
		resp, err, ok := s.next()
		if !ok {
			return Chunk{}, io.EOF
		}
		if err != nil {
			return Chunk{}, err
		}
		s.pending = partsOf(resp)
	}
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk, nil
}

func (s *responseStream) Close() error {
	s.stop()
	return nil
}

// partsOf flattens the first candidate into chunks. Responses without parts
// yield one empty chunk so the caller keeps reading.
func partsOf(resp *genai.GenerateContentResponse) []Chunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return []Chunk{{}}
	}
	parts := resp.Candidates[0].Content.Parts
	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		if p == nil || p.InlineData == nil {
			chunks = append(chunks, Chunk{})
			continue
		}
		chunks = append(chunks, Chunk{Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType})
	}
	if len(chunks) == 0 {
		return []Chunk{{}}
	}
	return chunks
}
