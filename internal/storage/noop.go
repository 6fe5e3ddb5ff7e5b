package storage

import (
	"context"
	"io"
	"time"
)

// ArchiveInput is a generated report to archive
type ArchiveInput struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// ArchivedReport describes a stored report
type ArchivedReport struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	ArchivedAt time.Time `json:"archivedAt"`
}

// Archive defines the report archive interface
type Archive interface {
	Save(ctx context.Context, in ArchiveInput) (*ArchivedReport, error)
}

// NoopArchive is used when archiving is disabled
type NoopArchive struct{}

func NewNoopArchive() *NoopArchive { return &NoopArchive{} }

func (NoopArchive) Save(_ context.Context, _ ArchiveInput) (*ArchivedReport, error) { return nil, nil }
