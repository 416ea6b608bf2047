package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway/gatewaytest"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(&gatewaytest.Stub{}, credential.NewMemoryStore(""), zerolog.Nop(), WithCheckDefaults(0.9, 7))

	submit, err := r.Mount(models.FlowSubmit)
	require.NoError(t, err)
	check, err := r.Mount(models.FlowCheck)
	require.NoError(t, err)
	assert.NotEqual(t, submit.ID(), check.ID())
	assert.Equal(t, 2, r.Len())

	got, err := r.Get(check.ID().String())
	require.NoError(t, err)
	assert.Same(t, check, got)
	assert.Equal(t, 7, got.State().Check.MaxResults)

	require.NoError(t, r.Unmount(check.ID().String()))
	assert.True(t, check.Closed())
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(check.ID().String())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Unmount(check.ID().String()), ErrSessionNotFound)

	r.CloseAll()
	assert.True(t, submit.Closed())
	assert.Zero(t, r.Len())
}

func TestRegistryRejectsBadInput(t *testing.T) {
	r := NewRegistry(&gatewaytest.Stub{}, nil, zerolog.Nop())

	_, err := r.Mount("history")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = r.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = r.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func idleSince(c *Controller, d time.Duration) {
	c.mu.Lock()
	c.lastActive = time.Now().Add(-d)
	c.mu.Unlock()
}

func TestRegistrySweepClosesIdleSessions(t *testing.T) {
	r := NewRegistry(&gatewaytest.Stub{}, credential.NewMemoryStore(""), zerolog.Nop())

	stale, err := r.Mount(models.FlowCheck)
	require.NoError(t, err)
	fresh, err := r.Mount(models.FlowSubmit)
	require.NoError(t, err)

	idleSince(stale, time.Hour)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.True(t, stale.Closed())
	assert.False(t, fresh.Closed())
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(stale.ID().String())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	idleSince(fresh, time.Hour)
	fresh.State()
	assert.Zero(t, r.Sweep(30*time.Minute))
}

func TestRegistrySweepKeepsPendingSessions(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	stub := &gatewaytest.Stub{
		SubmitFunc: func(ctx context.Context, req models.SubmissionRequest) gateway.Result[models.SubmitResponse] {
			close(entered)
			<-release
			return gateway.OK(models.SubmitResponse{SubmissionID: "1", ChunkCount: 1})
		},
	}
	r := NewRegistry(stub, credential.NewMemoryStore(""), zerolog.Nop())

	c, err := r.Mount(models.FlowSubmit)
	require.NoError(t, err)
	require.NoError(t, c.SetFields(map[string]string{
		models.FieldStudentID:  "s1",
		models.FieldQuestionID: "q1",
		models.FieldCode:       "print(1)",
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Submit(context.Background())
		assert.NoError(t, err)
	}()
	<-entered

	idleSince(c, time.Hour)
	assert.Zero(t, r.Sweep(time.Minute))
	assert.False(t, c.Closed())

	close(release)
	<-done
	assert.Equal(t, PhaseSucceeded, c.State().Phase)
}

func TestRegistryRunSweeperStopsWithContext(t *testing.T) {
	r := NewRegistry(&gatewaytest.Stub{}, credential.NewMemoryStore(""), zerolog.Nop())
	c, err := r.Mount(models.FlowCheck)
	require.NoError(t, err)
	idleSince(c, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunSweeper(ctx, 10*time.Millisecond, time.Minute)
		close(done)
	}()

	require.Eventually(t, c.Closed, time.Second, 10*time.Millisecond)
	assert.Zero(t, r.Len())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
