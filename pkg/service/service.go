// Package service orchestrates resolution runs: fetch records, resolve,
// persist, report, and emit.
package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/mirrorlake/unify/internal/repositories/account"
	"github.com/mirrorlake/unify/internal/repositories/contact"
	"github.com/mirrorlake/unify/internal/repositories/matchgroup"
	"github.com/mirrorlake/unify/internal/repositories/resolutionrun"
	"github.com/mirrorlake/unify/internal/repositories/segmentrule"
	"github.com/mirrorlake/unify/pkg/events"
	"github.com/mirrorlake/unify/pkg/graph"
	"github.com/mirrorlake/unify/pkg/matching"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/report"
	"github.com/mirrorlake/unify/pkg/resolver"
	"github.com/mirrorlake/unify/pkg/rules"
	"github.com/mirrorlake/unify/pkg/tracing"
)

// Config holds the resolution settings the service passes through to the
// scorer and resolver.
type Config struct {
	ContactScoringStrategy string
	Workers                int
	BlockingEnabled        bool
}

// RunResult is what a completed run hands back to the caller.
type RunResult struct {
	Run        *models.ResolutionRun `json:"run"`
	Groups     []*models.MatchGroup  `json:"groups"`
	ReportPath string                `json:"report_path"`
}

// Service runs identity resolution end to end. The resolver and rule
// engine are rebuilt per run so stored threshold changes apply without a
// restart.
type Service struct {
	log          ectologger.Logger
	contactRepo  *contact.Repository
	accountRepo  *account.Repository
	groupRepo    *matchgroup.Repository
	runRepo      *resolutionrun.Repository
	ruleRepo     *segmentrule.Repository
	reportWriter *report.Writer
	emitter      *events.Emitter
	lineage      *graph.Lineage
	identity     *matching.IdentityScorer
	quality      *matching.QualityScorer
	cfg          Config
}

// NewService creates a new resolution service. The emitter and lineage
// writer may be nil when the corresponding backend is not configured.
func NewService(
	log ectologger.Logger,
	contactRepo *contact.Repository,
	accountRepo *account.Repository,
	groupRepo *matchgroup.Repository,
	runRepo *resolutionrun.Repository,
	ruleRepo *segmentrule.Repository,
	reportWriter *report.Writer,
	emitter *events.Emitter,
	lineage *graph.Lineage,
	cfg Config,
) *Service {
	fields := matching.NewFieldSimilarity(matching.FieldSimilarityConfig{})
	return &Service{
		log:          log,
		contactRepo:  contactRepo,
		accountRepo:  accountRepo,
		groupRepo:    groupRepo,
		runRepo:      runRepo,
		ruleRepo:     ruleRepo,
		reportWriter: reportWriter,
		emitter:      emitter,
		lineage:      lineage,
		identity:     matching.NewIdentityScorer(fields, cfg.ContactScoringStrategy),
		quality:      matching.NewQualityScorer(),
		cfg:          cfg,
	}
}

// RunResolution executes one resolution run for an entity kind.
func (s *Service) RunResolution(ctx context.Context, kind models.EntityKind) (*RunResult, error) {
	ctx, span := tracing.StartSpan(ctx, "service.Service.RunResolution")
	defer span.End()

	if kind != models.EntityKindContact && kind != models.EntityKindAccount {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	run, err := s.runRepo.Create(ctx, kind)
	if err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"run_id":      run.ID,
		"entity_kind": string(kind),
	})

	result, err := s.execute(ctx, run, kind)
	if err != nil {
		log.WithError(err).Error("Resolution run failed")
		if failErr := s.runRepo.Fail(ctx, run); failErr != nil {
			log.WithError(failErr).Error("Failed to mark run failed")
		}
		return nil, err
	}

	return result, nil
}

func (s *Service) execute(ctx context.Context, run *models.ResolutionRun, kind models.EntityKind) (*RunResult, error) {
	res, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	var groups []*models.MatchGroup
	switch kind {
	case models.EntityKindContact:
		records, err := s.contactRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		run.TotalRecords = len(records)
		if err := s.emitRunStarted(ctx, run); err != nil {
			return nil, err
		}
		groups, err = res.ResolveContacts(ctx, run.ID, records)
		if err != nil {
			return nil, err
		}
	case models.EntityKindAccount:
		records, err := s.accountRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		run.TotalRecords = len(records)
		if err := s.emitRunStarted(ctx, run); err != nil {
			return nil, err
		}
		groups, err = res.ResolveAccounts(ctx, run.ID, records)
		if err != nil {
			return nil, err
		}
	}

	if err := s.groupRepo.CreateBatch(ctx, groups); err != nil {
		return nil, err
	}

	run.GroupCount = len(groups)
	run.MatchedRecords = 0
	for _, group := range groups {
		run.MatchedRecords += group.TotalInGroup
	}

	reportPath, err := s.reportWriter.WriteGroups(ctx, kind, groups)
	if err != nil {
		return nil, err
	}

	if s.emitter != nil {
		if err := s.emitter.EmitGroupsCreated(ctx, groups); err != nil {
			return nil, err
		}
		if err := s.emitter.EmitRunCompleted(ctx, run); err != nil {
			return nil, err
		}
	}

	// Lineage is best-effort: a graph outage must not fail the run.
	if s.lineage != nil {
		if err := s.lineage.RecordGroups(ctx, groups); err != nil {
			s.log.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"run_id": run.ID,
			}).Warn("Failed to record lineage, continuing")
		}
	}

	if err := s.runRepo.Complete(ctx, run); err != nil {
		return nil, err
	}

	return &RunResult{
		Run:        run,
		Groups:     groups,
		ReportPath: reportPath,
	}, nil
}

// buildResolver assembles a resolver with the current stored thresholds.
func (s *Service) buildResolver(ctx context.Context) (*resolver.Resolver, error) {
	stored, err := s.ruleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	thresholds := make(map[string]rules.Thresholds, len(stored))
	for _, rule := range stored {
		thresholds[rule.Segment] = rules.Thresholds{
			MinConfidence:             rule.MinConfidence,
			ManualReviewThreshold:     rule.ManualReviewThreshold,
			RequireMultipleIndicators: rule.RequireMultipleIndicators,
		}
	}

	engine := rules.NewEngine(s.log, thresholds)
	return resolver.New(s.log, s.identity, s.quality, engine, resolver.Config{
		Workers:         s.cfg.Workers,
		BlockingEnabled: s.cfg.BlockingEnabled,
	}), nil
}

func (s *Service) emitRunStarted(ctx context.Context, run *models.ResolutionRun) error {
	if s.emitter == nil {
		return nil
	}
	return s.emitter.EmitRunStarted(ctx, run)
}

// LatestRun returns the most recent run for an entity kind.
func (s *Service) LatestRun(ctx context.Context, kind models.EntityKind) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "service.Service.LatestRun")
	defer span.End()

	if kind != models.EntityKindContact && kind != models.EntityKindAccount {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	return s.runRepo.Latest(ctx, kind)
}

// ListGroups returns the persisted groups of a run.
func (s *Service) ListGroups(ctx context.Context, runID string) ([]*models.MatchGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "service.Service.ListGroups")
	defer span.End()

	if _, err := s.runRepo.Get(ctx, runID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListByRun(ctx, runID)
}

// ListSegmentRules returns the stored threshold triples merged over the
// defaults, so callers always see every known segment.
func (s *Service) ListSegmentRules(ctx context.Context) ([]*models.SegmentRule, error) {
	ctx, span := tracing.StartSpan(ctx, "service.Service.ListSegmentRules")
	defer span.End()

	stored, err := s.ruleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	bySegment := make(map[string]*models.SegmentRule, len(stored))
	for _, rule := range stored {
		bySegment[rule.Segment] = rule
	}

	merged := []*models.SegmentRule{}
	for segment, t := range rules.DefaultThresholds() {
		if rule, ok := bySegment[segment]; ok {
			merged = append(merged, rule)
			continue
		}
		merged = append(merged, &models.SegmentRule{
			Segment:                   segment,
			MinConfidence:             t.MinConfidence,
			ManualReviewThreshold:     t.ManualReviewThreshold,
			RequireMultipleIndicators: t.RequireMultipleIndicators,
		})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Segment < merged[j].Segment })
	return merged, nil
}

// UpsertSegmentRule stores a threshold triple.
func (s *Service) UpsertSegmentRule(ctx context.Context, rule *models.SegmentRule) (*models.SegmentRule, error) {
	ctx, span := tracing.StartSpan(ctx, "service.Service.UpsertSegmentRule")
	defer span.End()

	return s.ruleRepo.Upsert(ctx, rule)
}
