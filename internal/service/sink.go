package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/models"
)

// LogSink is the default JobSink: it only records that a job was handed to
// the terminal side. In a split deployment this is where an HTTP or queue
// publisher would go.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Publish(_ context.Context, job models.Job) error {
	s.Logger.Info().
		Str("job_id", job.ID).
		Str("master_id", job.MasterID).
		Str("category", job.Category).
		Msg("job published to terminal")
	return nil
}
