package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketinsight/internal/cache"
	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
	"github.com/alanyoungcy/marketinsight/internal/platform/xai"
	"github.com/alanyoungcy/marketinsight/internal/source"
)

// InsightConfig tunes the insight pipeline.
type InsightConfig struct {
	Matching         matching.Options
	SearchLimit      int           // events requested from Gamma public search
	KalshiEventLimit int           // events requested from Kalshi
	SearchTTL        time.Duration // cache TTL for Polymarket search results
	EventsTTL        time.Duration // cache TTL for the Kalshi event list
	UpstreamTimeout  time.Duration
	AnalysisTimeout  time.Duration
}

// DefaultInsightConfig returns the production defaults.
func DefaultInsightConfig() InsightConfig {
	return InsightConfig{
		Matching:         matching.DefaultOptions(),
		SearchLimit:      8,
		KalshiEventLimit: 200,
		SearchTTL:        30 * time.Second,
		EventsTTL:        5 * time.Minute,
		UpstreamTimeout:  10 * time.Second,
		AnalysisTimeout:  30 * time.Second,
	}
}

// InsightService builds query-scoped insights from both venues and the
// external analyst.
type InsightService struct {
	polymarket PolymarketAPI
	kalshi     KalshiAPI
	analyst    Analyst
	loader     *cache.Loader
	publisher  domain.Publisher
	pmAdapter  *source.PolymarketAdapter
	kAdapter   *source.KalshiAdapter
	cfg        InsightConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewInsightService creates an InsightService. analyst and publisher may be
// nil: the analysis then reports itself unavailable and nothing is
// published.
func NewInsightService(
	pm PolymarketAPI,
	k KalshiAPI,
	analyst Analyst,
	loader *cache.Loader,
	publisher domain.Publisher,
	cfg InsightConfig,
	logger *slog.Logger,
) *InsightService {
	return &InsightService{
		polymarket: pm,
		kalshi:     k,
		analyst:    analyst,
		loader:     loader,
		publisher:  publisher,
		pmAdapter:  source.NewPolymarketAdapter(cfg.Matching),
		kAdapter:   source.NewKalshiAdapter(cfg.Matching),
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "insight_service")),
		now:        time.Now,
	}
}

// GetInsight runs the full pipeline for query. Upstream and analysis
// failures degrade the result instead of failing it; the only error is an
// empty query.
func (s *InsightService) GetInsight(ctx context.Context, query string) (domain.Insight, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Insight{}, fmt.Errorf("insight_service: get insight: %w", domain.ErrInvalidQuery)
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "insight started", slog.String("query", query))

	// Both venues are fetched concurrently. Neither goroutine returns an
	// error: a failed venue contributes an empty listing set.
	var (
		pmEvents []polymarket.APIEvent
		kEvents  []kalshi.Event
	)
	stage := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pmEvents = s.fetchPolymarket(gctx, query)
		return nil
	})
	g.Go(func() error {
		kEvents = s.fetchKalshi(gctx)
		return nil
	})
	_ = g.Wait()
	s.logger.InfoContext(ctx, "insight sources",
		slog.Int("pm_events", len(pmEvents)),
		slog.Int("kalshi_events", len(kEvents)),
		slog.Int64("elapsed_ms", time.Since(stage).Milliseconds()),
	)

	stage = time.Now()
	pmCands := s.pmAdapter.Candidates(query, pmEvents)
	kCands := s.kAdapter.Candidates(query, kEvents)
	s.logger.InfoContext(ctx, "insight ranked",
		slog.Int("pm_candidates", len(pmCands)),
		slog.Int("kalshi_candidates", len(kCands)),
		slog.Int64("elapsed_ms", time.Since(stage).Milliseconds()),
	)

	pmPrimary := matching.SelectPrimary(query, pmCands, s.cfg.Matching)
	kPrimary := matching.SelectPrimary(query, kCands, s.cfg.Matching)
	consensus := matching.Consensus(pmPrimary, kPrimary)

	stage = time.Now()
	analysis := s.analyze(ctx, query, pmPrimary, kPrimary, pmCands, kCands)
	s.logger.InfoContext(ctx, "insight analysis",
		slog.Int64("elapsed_ms", time.Since(stage).Milliseconds()),
	)

	insight := domain.Insight{
		Query:                query,
		EventTitle:           eventTitle(query, pmPrimary, kPrimary),
		GeneratedAt:          s.now().UTC(),
		ConsensusProbability: consensus,
		Polymarket:           pmPrimary,
		Kalshi:               kPrimary,
		PolymarketCandidates: pmCands,
		KalshiCandidates:     kCands,
		Analysis:             analysis,
	}

	s.publish(ctx, insight)

	s.logger.InfoContext(ctx, "insight total",
		slog.String("query", query),
		slog.Bool("pm_primary", pmPrimary != nil),
		slog.Bool("kalshi_primary", kPrimary != nil),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return insight, nil
}

func (s *InsightService) fetchPolymarket(ctx context.Context, query string) []polymarket.APIEvent {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	events, err := cache.GetOrFill(ctx, s.loader, "pm:search:"+query, s.cfg.SearchTTL,
		func(ctx context.Context) ([]polymarket.APIEvent, error) {
			ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
			defer cancel()
			return s.polymarket.PublicSearch(ctx, query, s.cfg.SearchLimit)
		})
	if err != nil {
		s.logger.WarnContext(ctx, "polymarket search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return events
}

func (s *InsightService) fetchKalshi(ctx context.Context) []kalshi.Event {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	events, err := cache.GetOrFill(ctx, s.loader, "kalshi:events", s.cfg.EventsTTL,
		func(ctx context.Context) ([]kalshi.Event, error) {
			ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
			defer cancel()
			return s.kalshi.GetEvents(ctx, s.cfg.KalshiEventLimit)
		})
	if err != nil {
		s.logger.WarnContext(ctx, "kalshi events failed",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return events
}

func (s *InsightService) analyze(ctx context.Context, query string, pm, k *domain.Candidate, pmCands, kCands []domain.Candidate) string {
	if s.analyst == nil || !s.analyst.Configured() {
		return analysisNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
	defer cancel()

	s.logger.InfoContext(ctx, "analysis requested",
		slog.String("model", s.analyst.Model()),
		slog.String("query", query),
	)

	resp, err := s.analyst.Respond(ctx, analysisSystemPrompt, buildAnalysisPrompt(query, pm, k, pmCands, kCands))
	if err != nil {
		s.logger.WarnContext(ctx, "analysis failed", slog.String("error", err.Error()))
		return analysisUnavailable + unavailableReason(err)
	}
	if resp == nil {
		return xai.NoTextFallback
	}

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("status", resp.Status),
		slog.String("tool_calls", resp.ToolCalls().String()),
		slog.Int("citations", resp.Citations()),
	)
	return resp.Text()
}

func (s *InsightService) publish(ctx context.Context, insight domain.Insight) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(insight.Summary())
	if err != nil {
		s.logger.WarnContext(ctx, "encode insight summary", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.Publish(ctx, domain.InsightChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "publish insight summary", slog.String("error", err.Error()))
	}
}

func eventTitle(query string, pm, k *domain.Candidate) string {
	switch {
	case pm != nil:
		return pm.Title
	case k != nil:
		return k.Title
	default:
		return query
	}
}
