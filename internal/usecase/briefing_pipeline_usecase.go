package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/logger"
	"marketcolor/internal/infra/metrics"
)

// Stage names used for spans, log context and the stage duration metric.
const (
	StagePlan       = "plan"
	StageRetrieve   = "retrieve"
	StageCurate     = "curate"
	StageVerify     = "verify"
	StageContext    = "context"
	StageSynthesize = "synthesize"
	StageHistory    = "history"
	StageDeliver    = "deliver"
)

const (
	runStatusSuccess = "success"
	runStatusFailed  = "failed"
	tracerName       = "marketcolor"
)

// BriefingOutput describes one finished run.
type BriefingOutput struct {
	RunID        string
	StartedAt    time.Time
	Text         string
	Candidates   int
	Curation     domain.CurationResult
	Report       domain.VerificationReport
	History      domain.HistoryRecord
	HistorySaved bool
}

// PipelineDeps wires the stages of a BriefingPipeline. Quotes may be nil.
type PipelineDeps struct {
	Planner     *QueryPlanner
	Retriever   *CandidateRetriever
	Curator     *StoryCurator
	Verifier    *ClaimVerifier
	Synthesizer *BriefingSynthesizer
	History     domain.HistoryStore
	Quotes      domain.QuoteSource
	Symbols     []domain.QuoteSymbol
	Deliverer   domain.Deliverer
	// SaveHistory controls whether a successful synthesis overwrites the memo.
	SaveHistory bool
}

// BriefingPipeline runs the stages strictly in order:
// plan, retrieve, curate, verify, synthesize, save history, deliver.
type BriefingPipeline struct {
	deps     PipelineDeps
	now      func() time.Time
	newRunID func() string
	logger   *slog.Logger
}

func NewBriefingPipeline(deps PipelineDeps, logger *slog.Logger) *BriefingPipeline {
	return &BriefingPipeline{
		deps:     deps,
		now:      time.Now,
		newRunID: uuid.NewString,
		logger:   logger,
	}
}

// WithClock replaces the pipeline clock.
func (p *BriefingPipeline) WithClock(now func() time.Time) *BriefingPipeline {
	p.now = now
	return p
}

// Execute runs one briefing. Source, planner and curator failures degrade the
// result without failing the run; synthesis and delivery failures are returned.
// A history save failure is logged and the run continues to delivery.
func (p *BriefingPipeline) Execute(ctx context.Context) (*BriefingOutput, error) {
	out := &BriefingOutput{RunID: p.newRunID(), StartedAt: p.now()}
	ctx = logger.WithRunID(ctx, out.RunID)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "briefing.run",
		trace.WithAttributes(attribute.String(string(logger.RunIDKey), out.RunID)))
	defer span.End()

	log := logger.FromContext(ctx, p.logger)
	log.InfoContext(ctx, "briefing_started", slog.Time("started_at", out.StartedAt))

	err := p.run(ctx, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRun(runStatusFailed, p.now())
		log.ErrorContext(ctx, "briefing_failed",
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(out.StartedAt).Milliseconds()))
		return out, err
	}
	metrics.RecordRun(runStatusSuccess, p.now())
	log.InfoContext(ctx, "briefing_completed",
		slog.Int("candidates", out.Candidates),
		slog.Int("top_stories", len(out.Curation.TopStories)),
		slog.Int("verified", out.Report.VerifiedCount()),
		slog.Bool("history_saved", out.HistorySaved),
		slog.Int64("elapsed_ms", time.Since(out.StartedAt).Milliseconds()))
	return out, nil
}

func (p *BriefingPipeline) run(ctx context.Context, out *BriefingOutput) error {
	var dynamic []domain.SearchSpec
	_ = p.stage(ctx, StagePlan, func(ctx context.Context) error {
		dynamic = p.deps.Planner.Plan(ctx, out.StartedAt)
		return nil
	})

	var set *domain.CandidateSet
	_ = p.stage(ctx, StageRetrieve, func(ctx context.Context) error {
		set = p.deps.Retriever.Retrieve(ctx, dynamic)
		out.Candidates = set.Total()
		return nil
	})

	_ = p.stage(ctx, StageCurate, func(ctx context.Context) error {
		out.Curation = p.deps.Curator.Curate(ctx, set)
		return nil
	})

	_ = p.stage(ctx, StageVerify, func(ctx context.Context) error {
		out.Report = p.deps.Verifier.Verify(ctx, out.Curation)
		return nil
	})

	var prior domain.HistoryRecord
	var quotes []domain.QuoteSnapshot
	_ = p.stage(ctx, StageContext, func(ctx context.Context) error {
		prior = p.deps.History.Load(ctx)
		if p.deps.Quotes != nil && len(p.deps.Symbols) > 0 {
			quotes = p.deps.Quotes.Snapshot(ctx, p.deps.Symbols)
		}
		return nil
	})

	err := p.stage(ctx, StageSynthesize, func(ctx context.Context) error {
		text, err := p.deps.Synthesizer.Synthesize(ctx, SynthesisInput{
			Now:      out.StartedAt,
			Curation: out.Curation,
			Report:   out.Report,
			History:  prior,
			Quotes:   quotes,
		})
		out.Text = text
		return err
	})
	if err != nil {
		return err
	}

	if p.deps.SaveHistory {
		_ = p.stage(ctx, StageHistory, func(ctx context.Context) error {
			record := domain.NewHistoryRecord(out.Text, p.now())
			if err := p.deps.History.Save(ctx, record); err != nil {
				return fmt.Errorf("save history: %w", err)
			}
			out.History = record
			out.HistorySaved = true
			return nil
		})
	}

	return p.stage(ctx, StageDeliver, func(ctx context.Context) error {
		if err := p.deps.Deliverer.Deliver(ctx, out.Text); err != nil {
			if errors.Is(err, domain.ErrDeliveryFailed) {
				return err
			}
			return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
		}
		return nil
	})
}

// stage runs fn inside its own span and records the stage duration.
func (p *BriefingPipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx = logger.WithStage(ctx, name)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "briefing."+name)
	defer span.End()

	log := logger.FromContext(ctx, p.logger)
	log.InfoContext(ctx, name+"_started")
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.ObserveStage(name, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WarnContext(ctx, name+"_failed",
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", elapsed.Milliseconds()))
		return err
	}
	log.InfoContext(ctx, name+"_completed", slog.Int64("elapsed_ms", elapsed.Milliseconds()))
	return nil
}
