// Package generation wraps the generative image model behind a small streaming interface.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"graphics-server/internal/models"
)

const DefaultMIMEType = "image/png"

// Request is one image generation call.
type Request struct {
	Prompt      string
	Model       string
	Seed        int32
	AspectRatio string
	ImageSize   string
}

// Chunk is one streamed response part. Data is empty for text-only chunks.
type Chunk struct {
	Data     []byte
	MIMEType string
}

// ChunkStream yields chunks until Next returns io.EOF.
type ChunkStream interface {
	Next() (Chunk, error)
	Close() error
}

// ImageGenerator starts a streamed generation.
type ImageGenerator interface {
	Generate(ctx context.Context, req Request) (ChunkStream, error)
}

// Image is the first image found in a stream.
type Image struct {
	Data     []byte
	MIMEType string
}

// FirstImage reads stream until the first chunk carrying image bytes and closes it.
func FirstImage(stream ChunkStream) (*Image, error) {
	defer stream.Close()

	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil, models.ErrImageBytesMissing
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, err)
		}
		if len(chunk.Data) == 0 {
			continue
		}
		mime := chunk.MIMEType
		if mime == "" {
			mime = DefaultMIMEType
		}
		return &Image{Data: chunk.Data, MIMEType: mime}, nil
	}
}
