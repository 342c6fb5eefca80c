// Package pipeline orchestrates one fusion run: fuse the two source
// collections, score every fused record, and admit those that are both
// inside the search zone and informative enough.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/fuser"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/scorer"
	"github.com/leadscope/prospect-cli/internal/store"
	"github.com/leadscope/prospect-cli/internal/zone"
)

// Pipeline runs record fusion and quality filtering over two materialized
// source collections. It is the only component holding the run parameters.
type Pipeline struct {
	params model.RunParams
	fuse   *fuser.Fuser
	zone   *zone.Filter
	sink   EventSink
	store  store.Store
}

// Option configures optional collaborators.
type Option func(*Pipeline)

// WithSink wires an event sink for stage and rejection events.
func WithSink(sink EventSink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// WithStore persists runs and their outputs through the given store.
func WithStore(st store.Store) Option {
	return func(p *Pipeline) { p.store = st }
}

// New validates the run parameters and assembles a pipeline. Configuration
// errors are rejected here, before any data is processed.
func New(params model.RunParams, opts ...Option) (*Pipeline, error) {
	if params.RadiusM <= 0 {
		return nil, eris.Errorf("pipeline: radius must be positive, got %v", params.RadiusM)
	}
	if params.MinQualityScore < 0 || params.MinQualityScore > scorer.MaxScore {
		return nil, eris.Errorf("pipeline: min quality score must be in [0, %d], got %d", scorer.MaxScore, params.MinQualityScore)
	}
	if params.ProximityM < 0 {
		return nil, eris.Errorf("pipeline: proximity threshold must be non-negative, got %v", params.ProximityM)
	}
	if params.NameSimilarity < 0 || params.NameSimilarity > 1 {
		return nil, eris.Errorf("pipeline: name similarity threshold must be in [0, 1], got %v", params.NameSimilarity)
	}
	if params.ZoneTolerance != 0 && params.ZoneTolerance < 1 {
		return nil, eris.Errorf("pipeline: zone tolerance must be >= 1, got %v", params.ZoneTolerance)
	}

	p := &Pipeline{
		params: params,
		fuse: fuser.New(fuser.Config{
			ProximityM:    params.ProximityM,
			NameThreshold: params.NameSimilarity,
			AllowGeoOnly:  params.AllowGeoOnlyMatch,
		}),
		zone: zone.New(params.Center, params.RadiusM, params.ZoneTolerance),
		sink: NopSink{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Output is the result of one run: the admitted records plus the rejection
// side-channel for the observability collaborator.
type Output struct {
	Run      model.Run
	Accepted []model.FusedRecord
	Rejected []model.Rejection
}

// Run executes the full fusion pipeline over the two input collections.
// The inputs must be complete: upstream collection has finished before this
// is called, and the collections are treated as immutable snapshots.
func (p *Pipeline) Run(ctx context.Context, dirs []model.DirectoryRecord, pois []model.POIRecord) (*Output, error) {
	now := time.Now().UTC()
	run := model.Run{
		ID:        uuid.New().String(),
		Params:    p.params,
		Status:    model.RunStatusCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting fusion run",
		zap.Int("directory_records", len(dirs)),
		zap.Int("poi_records", len(pois)),
		zap.Float64("radius_m", p.params.RadiusM),
		zap.Int("min_quality_score", p.params.MinQualityScore),
	)

	if p.store != nil {
		if err := p.store.CreateRun(ctx, &run); err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
	}

	out := &Output{Run: run}
	result := model.RunResult{DirectoryIn: len(dirs), POIIn: len(pois)}

	// Empty inputs short-circuit straight to completion.
	if len(dirs) == 0 && len(pois) == 0 {
		return p.complete(ctx, out, result)
	}

	p.setStatus(ctx, &out.Run, model.RunStatusFusing)
	fused := p.fuse.Fuse(dirs, pois)
	result.MatchedPairs = fused.MatchedPairs
	result.Fused = len(fused.Records)

	p.setStatus(ctx, &out.Run, model.RunStatusScoring)
	for i := range fused.Records {
		fused.Records[i].Score = scorer.Score(&fused.Records[i])
	}

	// Zone filtering: the score is already known, so rejections can carry it
	// for observability even though the reason stays out_of_zone.
	p.setStatus(ctx, &out.Run, model.RunStatusZoneFiltering)
	inZone := fused.Records[:0:0]
	for i := range fused.Records {
		rec := &fused.Records[i]
		ok, dist := p.zone.Accept(rec)
		if !ok {
			result.OutOfZone++
			p.reject(out, rec, model.ReasonOutOfZone, dist)
			continue
		}
		inZone = append(inZone, *rec)
	}

	p.setStatus(ctx, &out.Run, model.RunStatusQualityFiltering)
	for i := range inZone {
		rec := &inZone[i]
		if rec.Score < p.params.MinQualityScore {
			result.LowQuality++
			p.reject(out, rec, model.LowQualityReason(rec.Score), 0)
			continue
		}
		out.Accepted = append(out.Accepted, *rec)
		p.sink.RecordAccepted(out.Run.ID, *rec)
	}

	result.Accepted = len(out.Accepted)
	return p.complete(ctx, out, result)
}

func (p *Pipeline) reject(out *Output, rec *model.FusedRecord, reason model.RejectionReason, distanceM float64) {
	rej := model.Rejection{
		StreetNumber: rec.StreetNumber,
		StreetName:   rec.StreetName,
		Name:         rec.Label(),
		Reason:       reason,
		Score:        rec.Score,
		DistanceM:    distanceM,
	}
	out.Rejected = append(out.Rejected, rej)
	p.sink.RecordRejected(out.Run.ID, rej)
}

func (p *Pipeline) setStatus(ctx context.Context, run *model.Run, status model.RunStatus) {
	run.Status = status
	run.UpdatedAt = time.Now().UTC()
	p.sink.StageChanged(run.ID, status)

	if p.store != nil {
		if err := p.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
			zap.L().Warn("pipeline: failed to persist status",
				zap.String("run_id", run.ID),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}
}

func (p *Pipeline) complete(ctx context.Context, out *Output, result model.RunResult) (*Output, error) {
	out.Run.Result = &result
	p.setStatus(ctx, &out.Run, model.RunStatusComplete)

	if p.store != nil {
		if err := p.store.SaveOutput(ctx, out.Run.ID, &result, out.Accepted, out.Rejected); err != nil {
			return nil, eris.Wrap(err, "pipeline: save output")
		}
	}

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", out.Run.ID),
		zap.Int("fused", result.Fused),
		zap.Int("matched_pairs", result.MatchedPairs),
		zap.Int("accepted", result.Accepted),
		zap.Int("out_of_zone", result.OutOfZone),
		zap.Int("low_quality", result.LowQuality),
	)

	return out, nil
}
