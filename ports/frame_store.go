package ports

import (
	"context"

	"housecast/domain/dataset"
)

// FrameReader loads a tabular file into memory
type FrameReader interface {
	Read(ctx context.Context, path string) (*dataset.Frame, error)
}

// FrameWriter persists a frame, replacing any existing file at path
type FrameWriter interface {
	Write(ctx context.Context, path string, frame *dataset.Frame) error
}
