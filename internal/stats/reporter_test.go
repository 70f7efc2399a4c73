package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavinsight/internal/stats"
	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/metrics"
	"github.com/mavinsight/pkg/monitor"
)

type fakeSource struct {
	counts map[telemetry.Kind]int
}

func (s fakeSource) Counts() map[telemetry.Kind]int { return s.counts }
func (s fakeSource) Running() bool                  { return true }

func newTestReporter(t *testing.T, interval time.Duration) (*stats.Reporter, monitor.AgentMetrics) {
	t.Helper()
	_, factory := metrics.InitPromRegistry(false)
	m := monitor.NewAgentMetrics(factory)
	src := fakeSource{counts: map[telemetry.Kind]int{telemetry.KindAttitude: 3}}
	rep, err := stats.NewReporter(interval, src, m, nil)
	require.NoError(t, err)
	return rep, m
}

func TestReporterSamplesOwnProcess(t *testing.T) {
	rep, m := newTestReporter(t, 20*time.Millisecond)
	rep.Start(context.Background())
	defer rep.Stop()

	require.Eventually(t, func() bool {
		return !rep.Usage().SampledAt.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	usage := rep.Usage()
	assert.Greater(t, usage.RSSBytes, uint64(0), "本进程RSS必然非零")
	assert.GreaterOrEqual(t, usage.CPUPercent, float64(0))

	assert.Greater(t, testutil.ToFloat64(m.RSSBytes), float64(0))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Uptime), float64(0))
	assert.Greater(t, rep.Uptime(), time.Duration(0))
}

func TestReporterStopJoinsLoop(t *testing.T) {
	rep, _ := newTestReporter(t, 10*time.Millisecond)
	rep.Start(context.Background())

	require.Eventually(t, func() bool {
		return !rep.Usage().SampledAt.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		rep.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return")
	}

	// 停止后不再采样
	last := rep.Usage().SampledAt
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, last, rep.Usage().SampledAt)
}

func TestReporterStopWithoutStart(t *testing.T) {
	rep, _ := newTestReporter(t, 10*time.Millisecond)
	rep.Stop() // 不得阻塞或panic
}

func TestReporterDoubleStart(t *testing.T) {
	rep, _ := newTestReporter(t, 10*time.Millisecond)
	rep.Start(context.Background())
	rep.Start(context.Background()) // 二次启动只告警
	rep.Stop()
}

func TestReporterStopsOnExternalContext(t *testing.T) {
	rep, _ := newTestReporter(t, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	rep.Start(ctx)

	require.Eventually(t, func() bool {
		return !rep.Usage().SampledAt.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)
	last := rep.Usage().SampledAt
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, last, rep.Usage().SampledAt, "外部ctx取消后循环应退出")
}
