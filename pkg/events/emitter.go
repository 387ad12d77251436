// Package events handles event emission for resolution run lifecycle
// changes.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/mirrorlake/unify/pkg/kafka"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

// Publisher is the producer surface the emitter needs. Satisfied by
// kafka.Producer.
type Publisher interface {
	PublishRunEvent(ctx context.Context, event *kafka.RunEvent) error
	PublishGroupEvents(ctx context.Context, events []*kafka.GroupEvent) error
}

// Emitter translates resolution results into events.
type Emitter struct {
	producer Publisher
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRunStarted emits a resolution.started event.
func (e *Emitter) EmitRunStarted(ctx context.Context, run *models.ResolutionRun) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunStarted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType:    "resolution.started",
		RunID:        run.ID,
		EntityKind:   run.EntityKind,
		TotalRecords: run.TotalRecords,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit resolution.started event")
		return err
	}

	return nil
}

// EmitRunCompleted emits a resolution.completed event.
func (e *Emitter) EmitRunCompleted(ctx context.Context, run *models.ResolutionRun) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType:      "resolution.completed",
		RunID:          run.ID,
		EntityKind:     run.EntityKind,
		TotalRecords:   run.TotalRecords,
		MatchedRecords: run.MatchedRecords,
		GroupCount:     run.GroupCount,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit resolution.completed event")
		return err
	}

	return nil
}

// EmitGroupsCreated emits a group.created event per match group.
func (e *Emitter) EmitGroupsCreated(ctx context.Context, groups []*models.MatchGroup) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitGroupsCreated")
	defer span.End()

	if len(groups) == 0 {
		return nil
	}

	events := make([]*kafka.GroupEvent, len(groups))
	for i, group := range groups {
		events[i] = &kafka.GroupEvent{
			EventType:       "group.created",
			RunID:           group.RunID,
			EntityKind:      group.EntityKind,
			UnifiedGroupID:  group.UnifiedGroupID,
			PrimaryID:       group.PrimaryID,
			DuplicateIDs:    group.DuplicateIDs,
			ConfidenceScore: group.ConfidenceScore,
			MatchType:       group.MatchType,
		}
	}

	if err := e.producer.PublishGroupEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit group.created events")
		return err
	}

	return nil
}
