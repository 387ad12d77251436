package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlake/unify/pkg/kafka"
	"github.com/mirrorlake/unify/pkg/models"
)

type fakePublisher struct {
	runEvents   []*kafka.RunEvent
	groupEvents []*kafka.GroupEvent
	err         error
}

func (f *fakePublisher) PublishRunEvent(_ context.Context, event *kafka.RunEvent) error {
	if f.err != nil {
		return f.err
	}
	f.runEvents = append(f.runEvents, event)
	return nil
}

func (f *fakePublisher) PublishGroupEvents(_ context.Context, events []*kafka.GroupEvent) error {
	if f.err != nil {
		return f.err
	}
	f.groupEvents = append(f.groupEvents, events...)
	return nil
}

func newEmitter(publisher Publisher) *Emitter {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEmitter(publisher, logger)
}

func TestEmitter_RunLifecycle(t *testing.T) {
	publisher := &fakePublisher{}
	emitter := newEmitter(publisher)
	ctx := context.Background()

	run := &models.ResolutionRun{ID: "run-1", EntityKind: "contacts", TotalRecords: 100}
	require.NoError(t, emitter.EmitRunStarted(ctx, run))

	run.MatchedRecords = 12
	run.GroupCount = 5
	require.NoError(t, emitter.EmitRunCompleted(ctx, run))

	require.Len(t, publisher.runEvents, 2)
	assert.Equal(t, "resolution.started", publisher.runEvents[0].EventType)
	assert.Equal(t, "resolution.completed", publisher.runEvents[1].EventType)
	assert.Equal(t, 5, publisher.runEvents[1].GroupCount)
}

func TestEmitter_EmitGroupsCreated(t *testing.T) {
	publisher := &fakePublisher{}
	emitter := newEmitter(publisher)

	groups := []*models.MatchGroup{
		{RunID: "run-1", EntityKind: "contacts", UnifiedGroupID: "g1", PrimaryID: "C1", DuplicateIDs: []string{"C2"}, ConfidenceScore: 0.95, MatchType: models.MatchTypeExact},
	}

	require.NoError(t, emitter.EmitGroupsCreated(context.Background(), groups))
	require.Len(t, publisher.groupEvents, 1)
	assert.Equal(t, "group.created", publisher.groupEvents[0].EventType)
	assert.Equal(t, "g1", publisher.groupEvents[0].UnifiedGroupID)
}

func TestEmitter_EmitGroupsCreated_Empty(t *testing.T) {
	publisher := &fakePublisher{}
	emitter := newEmitter(publisher)

	require.NoError(t, emitter.EmitGroupsCreated(context.Background(), nil))
	assert.Empty(t, publisher.groupEvents)
}

func TestEmitter_PublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	emitter := newEmitter(publisher)

	err := emitter.EmitRunStarted(context.Background(), &models.ResolutionRun{ID: "run-1"})
	assert.Error(t, err)
}
