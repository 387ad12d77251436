package resolver

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlake/unify/pkg/matching"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/rules"
)

func newResolver(strategy string, cfg Config) *Resolver {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	fields := matching.NewFieldSimilarity(matching.FieldSimilarityConfig{})
	identity := matching.NewIdentityScorer(fields, strategy)
	engine := rules.NewEngine(logger, nil)
	return New(logger, identity, matching.NewQualityScorer(), engine, cfg)
}

func contactPair() []*models.ContactRecord {
	return []*models.ContactRecord{
		{ContactID: "C1", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567", JobTitle: "Engineer"},
		{ContactID: "C2", FirstName: "Jon", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
	}
}

func TestResolver_ResolveContacts_DuplicatePair(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	groups, err := r.ResolveContacts(context.Background(), "run-1", contactPair())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "run-1", group.RunID)
	assert.Equal(t, "C1", group.PrimaryID)
	assert.Equal(t, []string{"C2"}, group.DuplicateIDs)
	assert.InDelta(t, 0.95, group.ConfidenceScore, 0.001)
	assert.Equal(t, models.MatchTypeExact, group.MatchType)
	assert.Equal(t, models.ActionAutoMerge, group.RecommendedAction)
	assert.Equal(t, 2, group.TotalInGroup)
	assert.NotEmpty(t, group.UnifiedGroupID)
	assert.NotEmpty(t, group.RuleTrail)
	assert.Contains(t, group.MatchReason, "Exact email match")
}

func TestResolver_ResolveContacts_DifferentEmailsBelowThreshold(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	records := contactPair()
	records[1].Email = "other@y.com"

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestResolver_ResolveContacts_GreedyConsumption(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	records := []*models.ContactRecord{
		{ContactID: "C1", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C2", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C3", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
	}

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "C1", groups[0].PrimaryID)
	assert.ElementsMatch(t, []string{"C2", "C3"}, groups[0].DuplicateIDs)
	assert.Equal(t, 3, groups[0].TotalInGroup)
}

func TestResolver_ResolveContacts_IdempotentCoverage(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	records := []*models.ContactRecord{
		{ContactID: "C1", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C2", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C3", FirstName: "Alice", LastName: "Brown", Email: "alice@z.com", Phone: "5550000000"},
		{ContactID: "C4", FirstName: "Ann", LastName: "Lee", Email: "ann@w.com"},
		{ContactID: "C5", FirstName: "Alice", LastName: "Brown", Email: "alice@z.com", Phone: "5550000000"},
	}

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)

	claimed := make(map[string]int)
	for _, g := range groups {
		for _, id := range g.AllMemberIDs() {
			claimed[id]++
		}
	}
	for id, count := range claimed {
		assert.Equal(t, 1, count, "record %s claimed more than once", id)
	}
	// every claimed id came from the input
	inputIDs := map[string]struct{}{"C1": {}, "C2": {}, "C3": {}, "C4": {}, "C5": {}}
	for id := range claimed {
		_, ok := inputIDs[id]
		assert.True(t, ok, id)
	}
}

func TestResolver_ResolveContacts_LinkedAccounts(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	records := contactPair()
	records[0].AccountID = "A1"
	records[1].AccountID = "A2"

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"A1", "A2"}, groups[0].LinkedAccountIDs)
}

func TestResolver_ResolveContacts_LowQualityRoutesToReview(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	// exact email and phone only: composite 1.0, quality 2/5.5
	records := []*models.ContactRecord{
		{ContactID: "C1", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C2", Email: "j@x.com", Phone: "5551234567"},
	}

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.ActionDataQualityReview, groups[0].RecommendedAction)
}

func TestResolver_ResolveContacts_WeightedStrategyManualReview(t *testing.T) {
	r := newResolver(matching.StrategyWeighted, Config{})

	// name-only match scores 0.35: above Enterprise min confidence (0.30)
	// but below its manual review threshold (0.50)
	records := []*models.ContactRecord{
		{ContactID: "C1", FirstName: "John", LastName: "Smith", ContactType: "Enterprise", Email: "a@x.com", Phone: "5551234567", JobTitle: "VP"},
		{ContactID: "C2", FirstName: "John", LastName: "Smith", ContactType: "Enterprise", Email: "b@y.net", JobTitle: "VP"},
	}

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.ActionManualReview, groups[0].RecommendedAction)
}

func TestResolver_ResolveAccounts(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	t.Run("shared enterprise id merges regardless of other fields", func(t *testing.T) {
		records := []*models.AccountRecord{
			{AccountID: "A1", AccountName: "Acme Corp", AccountType: "Customer", EnterpriseID: "E100", Phone: "5551234567", Email: "info@acme.com", AnnualRevenue: 2_000_000, EmployeeCount: 50},
			{AccountID: "A2", AccountName: "Totally Different LLC", AccountType: "Customer", EnterpriseID: "E100", Phone: "5559999999", Email: "ops@tdl.com", AnnualRevenue: 500_000, EmployeeCount: 10},
		}

		groups, err := r.ResolveAccounts(context.Background(), "run-2", records)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 1.0, groups[0].ConfidenceScore)
		assert.Equal(t, models.MatchTypeExact, groups[0].MatchType)
		assert.Equal(t, 2_500_000.0, groups[0].TotalRevenue)
		assert.Equal(t, 60, groups[0].TotalEmployees)
		assert.Equal(t, "Exact enterprise ID match", groups[0].MatchReason)
	})

	t.Run("different enterprise ids never match", func(t *testing.T) {
		records := []*models.AccountRecord{
			{AccountID: "A1", AccountName: "Acme Corp", EnterpriseID: "E100"},
			{AccountID: "A2", AccountName: "Acme Corp", EnterpriseID: "E200"},
		}

		groups, err := r.ResolveAccounts(context.Background(), "run-2", records)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestResolver_DuplicateIDsRejected(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	records := contactPair()
	records[1].ContactID = "C1"

	groups, err := r.ResolveContacts(context.Background(), "run-1", records)
	assert.ErrorIs(t, err, ErrDuplicateRecordID)
	assert.Nil(t, groups)
}

func TestResolver_EmptyBatch(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	groups, err := r.ResolveContacts(context.Background(), "run-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestResolver_Cancellation(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveContacts(ctx, "run-1", contactPair())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_BlockingPreservesOutput(t *testing.T) {
	records := []*models.ContactRecord{
		{ContactID: "C1", FirstName: "John", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C2", FirstName: "Jon", LastName: "Smith", Email: "j@x.com", Phone: "5551234567"},
		{ContactID: "C3", FirstName: "Alice", LastName: "Brown", Email: "alice@z.com", Phone: "5550000000"},
		{ContactID: "C4", FirstName: "Alicia", LastName: "Brown", Email: "alice@z.com", Phone: "5550000000"},
		{ContactID: "C5", FirstName: "Solo", LastName: "Nomatch", Email: "solo@q.com"},
	}

	plain := newResolver(matching.StrategyRules, Config{})
	blocked := newResolver(matching.StrategyRules, Config{BlockingEnabled: true, Workers: 4})

	plainGroups, err := plain.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)
	blockedGroups, err := blocked.ResolveContacts(context.Background(), "run-1", records)
	require.NoError(t, err)

	require.Len(t, blockedGroups, len(plainGroups))
	for i := range plainGroups {
		assert.Equal(t, plainGroups[i].PrimaryID, blockedGroups[i].PrimaryID)
		assert.Equal(t, plainGroups[i].DuplicateIDs, blockedGroups[i].DuplicateIDs)
		assert.Equal(t, plainGroups[i].ConfidenceScore, blockedGroups[i].ConfidenceScore)
		assert.Equal(t, plainGroups[i].RecommendedAction, blockedGroups[i].RecommendedAction)
	}
}

func TestResolver_FreshGroupIDs(t *testing.T) {
	r := newResolver(matching.StrategyRules, Config{})

	first, err := r.ResolveContacts(context.Background(), "run-1", contactPair())
	require.NoError(t, err)
	second, err := r.ResolveContacts(context.Background(), "run-2", contactPair())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].UnifiedGroupID, second[0].UnifiedGroupID)
}
