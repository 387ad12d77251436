// Package resolver implements the greedy duplicate grouping algorithm.
// Records are consumed first-come: once a record joins a group it is
// never compared again, so grouping is deliberately non-transitive.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/mirrorlake/unify/pkg/blocking"
	"github.com/mirrorlake/unify/pkg/matching"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/rules"
	"github.com/mirrorlake/unify/pkg/tracing"
)

// ErrDuplicateRecordID is returned when a batch violates the unique-id
// precondition. Nothing is processed in that case.
var ErrDuplicateRecordID = errors.New("duplicate record id in batch")

// Config controls the resolver's execution, not its semantics. Blocking
// and worker-pool scoring must never change which groups are emitted.
type Config struct {
	Workers         int
	BlockingEnabled bool
}

// Resolver groups duplicate records for one run at a time. A Resolver is
// safe for concurrent use; all run state is local to a call.
type Resolver struct {
	identity *matching.IdentityScorer
	quality  *matching.QualityScorer
	engine   *rules.Engine
	cfg      Config
	log      ectologger.Logger
}

// New creates a Resolver. Workers below one are treated as one.
func New(log ectologger.Logger, identity *matching.IdentityScorer, quality *matching.QualityScorer, engine *rules.Engine, cfg Config) *Resolver {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Resolver{
		identity: identity,
		quality:  quality,
		engine:   engine,
		cfg:      cfg,
		log:      log,
	}
}

// scored is one passing candidate edge out of a record.
type scored struct {
	other       int
	score       float64
	fieldScores map[string]float64
}

// batch adapts one entity kind to the shared resolution loop.
type batch struct {
	kind     models.EntityKind
	ids      []string
	segments []string
	quality  []float64
	index    *blocking.Index
	score    func(i, j int) (float64, map[string]float64)
	reasons  func(fieldScores map[string]float64) []string
	decorate func(group *models.MatchGroup, members []int)
}

// ResolveContacts groups a contact batch.
func (r *Resolver) ResolveContacts(ctx context.Context, runID string, records []*models.ContactRecord) ([]*models.MatchGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolver.ResolveContacts")
	defer span.End()

	b := &batch{
		kind:     models.EntityKindContact,
		ids:      make([]string, len(records)),
		segments: make([]string, len(records)),
		quality:  make([]float64, len(records)),
		score: func(i, j int) (float64, map[string]float64) {
			return r.identity.ContactScore(records[i], records[j])
		},
		reasons: matching.ContactMatchReasons,
		decorate: func(group *models.MatchGroup, members []int) {
			seen := make(map[string]struct{})
			for _, m := range members {
				accountID := records[m].AccountID
				if accountID == "" {
					continue
				}
				if _, ok := seen[accountID]; ok {
					continue
				}
				seen[accountID] = struct{}{}
				group.LinkedAccountIDs = append(group.LinkedAccountIDs, accountID)
			}
		},
	}
	for i, rec := range records {
		b.ids[i] = rec.ContactID
		b.segments[i] = rules.ContactSegment(rec)
		b.quality[i] = r.quality.ContactQuality(rec)
	}
	if r.cfg.BlockingEnabled && r.identity.Strategy() == matching.StrategyRules {
		b.index = blocking.NewContactIndex(records)
	}

	return r.resolve(ctx, runID, b)
}

// ResolveAccounts groups an account batch.
func (r *Resolver) ResolveAccounts(ctx context.Context, runID string, records []*models.AccountRecord) ([]*models.MatchGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolver.ResolveAccounts")
	defer span.End()

	b := &batch{
		kind:     models.EntityKindAccount,
		ids:      make([]string, len(records)),
		segments: make([]string, len(records)),
		quality:  make([]float64, len(records)),
		score: func(i, j int) (float64, map[string]float64) {
			return r.identity.AccountScore(records[i], records[j])
		},
		reasons: matching.AccountMatchReasons,
		decorate: func(group *models.MatchGroup, members []int) {
			for _, m := range members {
				group.TotalRevenue += records[m].AnnualRevenue
				group.TotalEmployees += records[m].EmployeeCount
			}
		},
	}
	for i, rec := range records {
		b.ids[i] = rec.AccountID
		b.segments[i] = rules.DeriveAccountSegment(rec)
		b.quality[i] = r.quality.AccountQuality(rec)
	}
	if r.cfg.BlockingEnabled {
		b.index = blocking.NewAccountIndex(records)
	}

	return r.resolve(ctx, runID, b)
}

// resolve runs both phases: parallel pairwise scoring, then the
// sequential greedy consumption of the shared processed set.
func (r *Resolver) resolve(ctx context.Context, runID string, b *batch) ([]*models.MatchGroup, error) {
	if err := validateUniqueIDs(b.ids); err != nil {
		return nil, err
	}
	if len(b.ids) == 0 {
		return []*models.MatchGroup{}, nil
	}

	log := r.log.WithContext(ctx).WithFields(map[string]any{
		"run_id":      runID,
		"entity_kind": string(b.kind),
		"records":     len(b.ids),
	})

	threshold := r.identity.AcceptanceThreshold(b.kind)
	adjacency, err := r.scorePairs(ctx, b, threshold)
	if err != nil {
		return nil, err
	}

	groups, err := r.consume(ctx, runID, b, adjacency)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{"groups": len(groups)}).Info("Resolved batch")
	return groups, nil
}

// scorePairs computes every passing candidate edge. Rows are distributed
// over a worker pool; each worker only writes its own rows, so phase one
// needs no locking.
func (r *Resolver) scorePairs(ctx context.Context, b *batch, threshold float64) ([][]scored, error) {
	n := len(b.ids)
	rows := make([][]scored, n)

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				for j := i + 1; j < n; j++ {
					if b.index != nil && !b.index.ShouldCompare(i, j) {
						continue
					}
					score, fieldScores := b.score(i, j)
					if score >= threshold {
						rows[i] = append(rows[i], scored{other: j, score: score, fieldScores: fieldScores})
					}
				}
			}
		}()
	}

	var cancelled error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		work <- i
	}
	close(work)
	wg.Wait()

	if cancelled != nil {
		return nil, fmt.Errorf("resolution cancelled: %w", cancelled)
	}

	// Mirror edges so every record sees its full candidate set.
	adjacency := make([][]scored, n)
	for i, row := range rows {
		for _, edge := range row {
			adjacency[i] = append(adjacency[i], edge)
			adjacency[edge.other] = append(adjacency[edge.other], scored{other: i, score: edge.score, fieldScores: edge.fieldScores})
		}
	}
	return adjacency, nil
}

// consume is the greedy pass. It must stay single-threaded: every
// accepted group shrinks the candidate pools of all later primaries.
func (r *Resolver) consume(ctx context.Context, runID string, b *batch, adjacency [][]scored) ([]*models.MatchGroup, error) {
	groups := []*models.MatchGroup{}
	processed := make([]bool, len(b.ids))

	for i := range b.ids {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("resolution cancelled: %w", ctx.Err())
		default:
		}

		if processed[i] {
			continue
		}

		candidates := make([]scored, 0, len(adjacency[i]))
		for _, edge := range adjacency[i] {
			if !processed[edge.other] {
				candidates = append(candidates, edge)
			}
		}
		sort.SliceStable(candidates, func(a, c int) bool {
			return candidates[a].score > candidates[c].score
		})

		scores := make([]float64, len(candidates))
		for k, c := range candidates {
			scores[k] = c.score
		}
		decision := r.engine.Evaluate(ctx, rules.Evaluation{
			Kind:            b.kind,
			Segment:         b.segments[i],
			QualityScore:    b.quality[i],
			CandidateScores: scores,
		})

		accepted := candidates[:0:0]
		for _, c := range candidates {
			if c.score >= decision.Thresholds.MinConfidence {
				accepted = append(accepted, c)
			}
		}
		if len(accepted) == 0 {
			continue
		}

		processed[i] = true
		members := []int{i}
		var total float64
		duplicateIDs := make([]string, 0, len(accepted))
		for _, c := range accepted {
			processed[c.other] = true
			members = append(members, c.other)
			duplicateIDs = append(duplicateIDs, b.ids[c.other])
			total += c.score
		}
		confidence := total / float64(len(accepted))

		group := &models.MatchGroup{
			RunID:             runID,
			EntityKind:        string(b.kind),
			PrimaryID:         b.ids[i],
			DuplicateIDs:      duplicateIDs,
			UnifiedGroupID:    uuid.NewString(),
			ConfidenceScore:   confidence,
			MatchType:         matchType(confidence),
			MatchReason:       strings.Join(b.reasons(accepted[0].fieldScores), "; "),
			QualityScore:      b.quality[i],
			RecommendedAction: decision.Action,
			RuleTrail:         decision.Trail,
			TotalInGroup:      len(members),
			CreatedAt:         time.Now().UTC(),
		}
		if b.decorate != nil {
			b.decorate(group, members)
		}
		groups = append(groups, group)
	}

	return groups, nil
}

func matchType(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return models.MatchTypeExact
	case confidence >= 0.8:
		return models.MatchTypeProbabilistic
	default:
		return models.MatchTypeFuzzy
	}
}

func validateUniqueIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateRecordID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
