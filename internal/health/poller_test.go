package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway/gatewaytest"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

func TestPollerStartsChecking(t *testing.T) {
	p := NewPoller(&gatewaytest.Stub{}, 0, zerolog.Nop())
	assert.Equal(t, StatusChecking, p.Snapshot().Status)
	assert.Equal(t, DefaultInterval, p.interval)
}

func TestPollerPollsImmediatelyAndOnInterval(t *testing.T) {
	var online atomic.Bool
	online.Store(true)

	stub := &gatewaytest.Stub{
		HealthFunc: func(ctx context.Context) gateway.Result[models.HealthStatus] {
			if online.Load() {
				return gateway.OK(models.HealthStatus{Status: "ok", Message: "Server is running"})
			}
			return gateway.Fail[models.HealthStatus]("Failed to connect to server")
		},
	}

	p := NewPoller(stub, 20*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return p.Snapshot().Status == StatusOnline
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Server is running", p.Snapshot().Message)

	online.Store(false)
	require.Eventually(t, func() bool {
		return p.Snapshot().Status == StatusOffline
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Failed to connect to server", p.Snapshot().Message)
	assert.GreaterOrEqual(t, stub.HealthCalls(), 2)
}

func TestPollerStopHaltsPolling(t *testing.T) {
	stub := &gatewaytest.Stub{
		HealthFunc: func(ctx context.Context) gateway.Result[models.HealthStatus] {
			return gateway.OK(models.HealthStatus{Status: "ok"})
		},
	}

	p := NewPoller(stub, 10*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	p.Start(context.Background())

	require.Eventually(t, func() bool { return stub.HealthCalls() >= 2 }, time.Second, 5*time.Millisecond)
	p.Stop()

	calls := stub.HealthCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, stub.HealthCalls())

	p.Stop()
}

func TestCheckWithoutStart(t *testing.T) {
	stub := &gatewaytest.Stub{}
	p := NewPoller(stub, time.Hour, zerolog.Nop())

	snap := p.Check(context.Background())
	assert.Equal(t, StatusOffline, snap.Status)
	assert.Equal(t, 1, snap.Checks)
	assert.False(t, snap.CheckedAt.IsZero())
}
