package graph

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

// Executor is the transaction surface the lineage writer needs.
// Satisfied by Client.
type Executor interface {
	ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error)
}

// Lineage records resolved groups in the graph: one UnifiedEntity node
// per group, with a DUPLICATE_OF edge from each member record node.
type Lineage struct {
	executor Executor
	logger   ectologger.Logger
}

// NewLineage creates a Lineage writer.
func NewLineage(executor Executor, logger ectologger.Logger) *Lineage {
	return &Lineage{
		executor: executor,
		logger:   logger,
	}
}

const upsertGroupCypher = `
MERGE (u:UnifiedEntity {group_id: $group_id})
SET u.run_id = $run_id,
    u.entity_kind = $entity_kind,
    u.primary_id = $primary_id,
    u.confidence_score = $confidence_score,
    u.match_type = $match_type
WITH u
UNWIND $member_ids AS member_id
MERGE (r:Record {record_id: member_id, entity_kind: $entity_kind})
MERGE (r)-[:DUPLICATE_OF]->(u)
`

// RecordGroups upserts every group of a run. The whole run is written in
// one transaction so a retried run does not leave partial lineage.
func (l *Lineage) RecordGroups(ctx context.Context, groups []*models.MatchGroup) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Lineage.RecordGroups")
	defer span.End()

	if len(groups) == 0 {
		return nil
	}

	_, err := l.executor.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, group := range groups {
			params := map[string]any{
				"group_id":         group.UnifiedGroupID,
				"run_id":           group.RunID,
				"entity_kind":      group.EntityKind,
				"primary_id":       group.PrimaryID,
				"confidence_score": group.ConfidenceScore,
				"match_type":       group.MatchType,
				"member_ids":       group.AllMemberIDs(),
			}
			if _, err := tx.Run(ctx, upsertGroupCypher, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		l.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"groups": len(groups),
		}).Error("Failed to record group lineage")
		return err
	}

	l.logger.WithContext(ctx).WithFields(map[string]any{
		"groups": len(groups),
	}).Debug("Recorded group lineage")

	return nil
}
