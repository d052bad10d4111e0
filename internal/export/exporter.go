package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/jobs"
)

// Exporter fans an export job out to every configured sink.
type Exporter struct {
	sinks []Sink
	log   zerolog.Logger
}

func NewExporter(log zerolog.Logger, sinks ...Sink) *Exporter {
	return &Exporter{sinks: sinks, log: log}
}

// Sinks returns the names of the configured sinks.
func (e *Exporter) Sinks() []string {
	names := make([]string, len(e.sinks))
	for i, s := range e.sinks {
		names[i] = s.Name()
	}
	return names
}

// Handle is a jobs.JobHandler. Every sink is attempted; the returned error
// joins the failures so the queue can record and retry them.
func (e *Exporter) Handle(ctx context.Context, job jobs.Job) error {
	exportJob, ok := job.(*jobs.ExportEntryJob)
	if !ok {
		return fmt.Errorf("Handle: unsupported job type %q", job.GetType())
	}

	log := e.log.With().
		Str("job_id", exportJob.JobID).
		Str("entry_id", exportJob.EntryID).
		Int("attempt", exportJob.RetryCount+1).
		Logger()

	var errs []error
	for _, sink := range e.sinks {
		if err := sink.Export(ctx, exportJob.Entry); err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Msg("Entry export failed")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		log.Debug().Str("sink", sink.Name()).Msg("Entry exported")
	}
	return errors.Join(errs...)
}
