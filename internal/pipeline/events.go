package pipeline

import (
	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/model"
)

// EventSink receives pipeline observability events. The host wires it to
// whatever sink it wants; the pipeline itself holds no global state.
type EventSink interface {
	// StageChanged fires on every run status transition.
	StageChanged(runID string, status model.RunStatus)

	// RecordRejected fires once per record dropped by a filtering stage.
	RecordRejected(runID string, rej model.Rejection)

	// RecordAccepted fires once per record admitted to the output set.
	RecordAccepted(runID string, rec model.FusedRecord)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) StageChanged(string, model.RunStatus)     {}
func (NopSink) RecordRejected(string, model.Rejection)   {}
func (NopSink) RecordAccepted(string, model.FusedRecord) {}

// LogSink forwards events to the global structured logger.
type LogSink struct{}

func (LogSink) StageChanged(runID string, status model.RunStatus) {
	zap.L().Info("pipeline: stage",
		zap.String("run_id", runID),
		zap.String("status", string(status)),
	)
}

func (LogSink) RecordRejected(runID string, rej model.Rejection) {
	zap.L().Debug("pipeline: record rejected",
		zap.String("run_id", runID),
		zap.String("record", rej.Name),
		zap.String("street", rej.StreetNumber+" "+rej.StreetName),
		zap.String("reason", string(rej.Reason)),
		zap.Int("score", rej.Score),
		zap.Float64("distance_m", rej.DistanceM),
	)
}

func (LogSink) RecordAccepted(runID string, rec model.FusedRecord) {
	zap.L().Debug("pipeline: record accepted",
		zap.String("run_id", runID),
		zap.String("record", rec.Label()),
		zap.Int("score", rec.Score),
	)
}
