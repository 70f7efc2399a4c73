package collector_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavinsight/internal/collector"
	"github.com/mavinsight/internal/link"
	"github.com/mavinsight/internal/telemetry"
	"github.com/mavinsight/pkg/config"
	"github.com/mavinsight/pkg/metrics"
	"github.com/mavinsight/pkg/monitor"
)

// -------------------------- 测试用链路 --------------------------

type fakeEvent struct {
	msg link.Message
	err error
}

// fakeLink 通道驱动的链路替身。没有事件时周期性以 (nil, nil) 空唤醒，
// 模拟真实链路的内部事件，也让采集循环能及时看到停止标志。
type fakeLink struct {
	events chan fakeEvent
	done   chan struct{}
	once   sync.Once
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		events: make(chan fakeEvent, 64),
		done:   make(chan struct{}),
	}
}

func (l *fakeLink) Receive() (link.Message, error) {
	select {
	case <-l.done:
		return nil, link.ErrClosed
	case ev := <-l.events:
		return ev.msg, ev.err
	case <-time.After(5 * time.Millisecond):
		return nil, nil
	}
}

func (l *fakeLink) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *fakeLink) push(msg link.Message) { l.events <- fakeEvent{msg: msg} }
func (l *fakeLink) pushErr(err error)     { l.events <- fakeEvent{err: err} }

// -------------------------- 测试辅助 --------------------------

func enabledConfig() *config.CollectorConfig {
	return &config.CollectorConfig{
		Attitude: config.KindConfig{Enable: true},
		Position: config.KindConfig{Enable: true},
	}
}

// newTestCollector 每个用例独立的注册器与指标集，避免指标重名冲突
func newTestCollector(t *testing.T, cfg *config.CollectorConfig, lk link.Link) (*collector.Collector, monitor.CollectorMetrics) {
	t.Helper()
	_, factory := metrics.InitPromRegistry(false)
	m := monitor.NewCollectorMetrics(factory)
	col, err := collector.New(lk, cfg, m, nil)
	require.NoError(t, err)
	return col, m
}

func totalCount(col *collector.Collector) int {
	n := 0
	for _, c := range col.Counts() {
		n += c
	}
	return n
}

func waitCount(t *testing.T, col *collector.Collector, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return totalCount(col) == want },
		2*time.Second, 10*time.Millisecond, "expected %d buffered records", want)
}

// -------------------------- 构造与生命周期 --------------------------

func TestNewRequiresEnabledKind(t *testing.T) {
	_, factory := metrics.InitPromRegistry(false)
	m := monitor.NewCollectorMetrics(factory)

	cfg := &config.CollectorConfig{} // 两类均关闭
	col, err := collector.New(newFakeLink(), cfg, m, nil)
	assert.Error(t, err)
	assert.Nil(t, col)
}

func TestNewRegistersEnabledKindsOnly(t *testing.T) {
	cfg := &config.CollectorConfig{Attitude: config.KindConfig{Enable: true}}
	col, _ := newTestCollector(t, cfg, newFakeLink())

	kinds := col.Kinds()
	require.Len(t, kinds, 1)
	assert.Equal(t, telemetry.KindAttitude, kinds[0])

	_, ok := col.Snapshot(telemetry.KindGlobalPosition)
	assert.False(t, ok)
}

func TestSessionIDStable(t *testing.T) {
	col, _ := newTestCollector(t, enabledConfig(), newFakeLink())
	id := col.SessionID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, col.SessionID())
}

func TestStartStopLifecycle(t *testing.T) {
	lk := newFakeLink()
	col, m := newTestCollector(t, enabledConfig(), lk)

	assert.False(t, col.Running())
	assert.ErrorIs(t, col.Stop(), collector.ErrNotRunning)

	require.NoError(t, col.Start())
	assert.True(t, col.Running())
	assert.ErrorIs(t, col.Start(), collector.ErrAlreadyRunning)
	require.Eventually(t, func() bool { return testutil.ToFloat64(m.Running) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, col.Stop())
	assert.False(t, col.Running())
	assert.NoError(t, col.Err())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Running))
	assert.ErrorIs(t, col.Stop(), collector.ErrNotRunning)
}

// blockingLink 的 Receive 挂起到 release 关闭为止，用于验证 Stop 的 join 语义
type blockingLink struct {
	release chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (l *blockingLink) Receive() (link.Message, error) {
	select {
	case <-l.release:
		return nil, nil
	case <-l.done:
		return nil, link.ErrClosed
	}
}

func (l *blockingLink) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func TestStopJoinsInFlightReceive(t *testing.T) {
	lk := &blockingLink{release: make(chan struct{}), done: make(chan struct{})}
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())

	stopped := make(chan error, 1)
	go func() { stopped <- col.Stop() }()

	// 在途 Receive 未返回前 Stop 不得返回
	select {
	case <-stopped:
		t.Fatal("stop returned while receive still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(lk.release)
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return after receive unblocked")
	}
	assert.False(t, col.Running())
}

// -------------------------- 采集与分发 --------------------------

func TestCollectAttitudeAndPosition(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	lk.push(link.Attitude{Roll: 0.10, Pitch: -0.05, Yaw: 1.57})
	lk.push(link.GlobalPosition{Lat: 473978450, Lon: 85455280, Alt: 500000})
	waitCount(t, col, 2)

	att, ok := col.Snapshot(telemetry.KindAttitude)
	require.True(t, ok)
	require.Equal(t, 1, att.Len())
	rec, ok := att.Records[0].(telemetry.AttitudeRecord)
	require.True(t, ok)
	assert.Equal(t, float32(0.10), rec.Roll)
	assert.Equal(t, float32(-0.05), rec.Pitch)
	assert.Equal(t, float32(1.57), rec.Yaw)
	assert.False(t, rec.Timestamp.IsZero())

	pos, ok := col.Snapshot(telemetry.KindGlobalPosition)
	require.True(t, ok)
	require.Equal(t, 1, pos.Len())
	prec, ok := pos.Records[0].(telemetry.PositionRecord)
	require.True(t, ok)
	assert.Equal(t, int32(473978450), prec.Latitude)
	assert.Equal(t, int32(85455280), prec.Longitude)
	assert.Equal(t, int32(500000), prec.Altitude)
}

func TestUnknownKindSkipped(t *testing.T) {
	lk := newFakeLink()
	col, m := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	// 心跳可识别但未登记采集，未建模报文原样带名，都按 unknown_kind 跳过
	lk.push(link.Heartbeat{Type: 2})
	lk.push(link.Unknown{Name: "VFR_HUD"})
	lk.push(link.Attitude{Roll: 1})
	waitCount(t, col, 1)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.SkippedTotal.WithLabelValues("HEARTBEAT", "unknown_kind")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.SkippedTotal.WithLabelValues("VFR_HUD", "unknown_kind")))
	assert.Equal(t, 0, col.Counts()[telemetry.KindGlobalPosition])
}

func TestReceiveErrorRecoverable(t *testing.T) {
	lk := newFakeLink()
	col, m := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	lk.push(link.Attitude{Roll: 1})
	lk.pushErr(errors.New("checksum mismatch"))
	lk.push(link.Attitude{Roll: 2})
	waitCount(t, col, 2)

	// 单条故障只计数，循环继续存活
	assert.True(t, col.Running())
	assert.NoError(t, col.Err())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReceiveErrors))
	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.RecordsTotal.WithLabelValues("ATTITUDE")))
}

func TestRecordsKeepArrivalOrder(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	for i := 1; i <= 5; i++ {
		lk.push(link.Attitude{Roll: float32(i)})
	}
	waitCount(t, col, 5)

	snap, ok := col.Snapshot(telemetry.KindAttitude)
	require.True(t, ok)
	require.Equal(t, 5, snap.Len())
	for i, rec := range snap.Records {
		assert.Equal(t, float32(i+1), rec.(telemetry.AttitudeRecord).Roll)
	}
}

// -------------------------- 链路关闭与重启 --------------------------

func TestLinkClosedTerminatesLoop(t *testing.T) {
	lk := newFakeLink()
	col, m := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())

	lk.push(link.Attitude{Roll: 1})
	waitCount(t, col, 1)

	require.NoError(t, lk.Close())
	require.Eventually(t, func() bool { return !col.Running() },
		2*time.Second, 10*time.Millisecond, "loop death must be observable")
	assert.ErrorIs(t, col.Err(), link.ErrClosed)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Running))

	// 已采数据在循环死亡后依然可查
	snap, ok := col.Snapshot(telemetry.KindAttitude)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Len())

	// 自行终止后 Stop 立即返回，Start 允许重启
	require.NoError(t, col.Stop())
	require.NoError(t, col.Start())
	require.Eventually(t, func() bool { return !col.Running() },
		2*time.Second, 10*time.Millisecond) // 链路仍是关的，循环再次退出
	assert.ErrorIs(t, col.Err(), link.ErrClosed)
}

func TestRestartKeepsBuffers(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)

	require.NoError(t, col.Start())
	lk.push(link.Attitude{Roll: 1})
	lk.push(link.Attitude{Roll: 2})
	waitCount(t, col, 2)
	require.NoError(t, col.Stop())

	// 重启不清缓冲，新记录接在旧记录之后
	require.NoError(t, col.Start())
	lk.push(link.Attitude{Roll: 3})
	waitCount(t, col, 3)
	require.NoError(t, col.Stop())

	snap, _ := col.Snapshot(telemetry.KindAttitude)
	require.Equal(t, 3, snap.Len())
	assert.Equal(t, float32(3), snap.Records[2].(telemetry.AttitudeRecord).Roll)
}

// -------------------------- 缓冲上限与清空 --------------------------

func TestBufferLimitKeepsNewest(t *testing.T) {
	cfg := enabledConfig()
	cfg.BufferLimit = 3
	lk := newFakeLink()
	col, m := newTestCollector(t, cfg, lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	for i := 1; i <= 5; i++ {
		lk.push(link.Attitude{Roll: float32(i)})
	}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.RecordsTotal.WithLabelValues("ATTITUDE")) == 5
	}, 2*time.Second, 10*time.Millisecond)

	snap, _ := col.Snapshot(telemetry.KindAttitude)
	require.Equal(t, 3, snap.Len())
	rolls := make([]float32, 0, 3)
	for _, rec := range snap.Records {
		rolls = append(rolls, rec.(telemetry.AttitudeRecord).Roll)
	}
	assert.Equal(t, []float32{3, 4, 5}, rolls)
	// 水位指标反映截断后的条数
	assert.Equal(t, float64(3),
		testutil.ToFloat64(m.BufferRecords.WithLabelValues("ATTITUDE")))
}

func TestResetClearsBuffers(t *testing.T) {
	lk := newFakeLink()
	col, m := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	lk.push(link.Attitude{Roll: 1})
	lk.push(link.GlobalPosition{Lat: 1})
	waitCount(t, col, 2)

	before, _ := col.Snapshot(telemetry.KindAttitude)
	col.Reset()

	assert.Equal(t, 0, totalCount(col))
	after, ok := col.Snapshot(telemetry.KindAttitude)
	require.True(t, ok)
	assert.Equal(t, 0, after.Len())
	assert.Equal(t, float64(0),
		testutil.ToFloat64(m.BufferRecords.WithLabelValues("ATTITUDE")))
	// 清空前取得的快照是副本，不受影响
	assert.Equal(t, 1, before.Len())

	// 清空后采集照常继续
	lk.push(link.Attitude{Roll: 2})
	waitCount(t, col, 1)
}

// -------------------------- 查询语义 --------------------------

func TestSnapshotAbsentKind(t *testing.T) {
	col, _ := newTestCollector(t, enabledConfig(), newFakeLink())

	_, ok := col.Snapshot(telemetry.Kind("BOGUS"))
	assert.False(t, ok)
	_, ok = col.Snapshot(telemetry.KindHeartbeat)
	assert.False(t, ok)

	// 已登记但尚无数据：空快照而非缺席
	snap, ok := col.Snapshot(telemetry.KindAttitude)
	require.True(t, ok)
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, []string{"timestamp", "roll", "pitch", "yaw"}, snap.Columns)
}

func TestSnapshotFrozenCopy(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	lk.push(link.Attitude{Roll: 1})
	waitCount(t, col, 1)
	frozen, _ := col.Snapshot(telemetry.KindAttitude)

	lk.push(link.Attitude{Roll: 2})
	waitCount(t, col, 2)

	assert.Equal(t, 1, frozen.Len())
	assert.Equal(t, float32(1), frozen.Records[0].(telemetry.AttitudeRecord).Roll)
}

func TestSnapshotsAndCountsCoverAllKinds(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	lk.push(link.Attitude{Roll: 1})
	lk.push(link.Attitude{Roll: 2})
	lk.push(link.GlobalPosition{Lat: 1})
	waitCount(t, col, 3)

	snaps := col.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, 2, snaps[telemetry.KindAttitude].Len())
	assert.Equal(t, 1, snaps[telemetry.KindGlobalPosition].Len())

	counts := col.Counts()
	assert.Equal(t, map[telemetry.Kind]int{
		telemetry.KindAttitude:       2,
		telemetry.KindGlobalPosition: 1,
	}, counts)
}

func TestConcurrentQueriesWhileCollecting(t *testing.T) {
	lk := newFakeLink()
	col, _ := newTestCollector(t, enabledConfig(), lk)
	require.NoError(t, col.Start())
	defer func() { _ = col.Stop() }()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = col.Snapshots()
					_ = col.Counts()
					_, _ = col.Snapshot(telemetry.KindAttitude)
				}
			}
		}()
	}

	for i := 1; i <= 50; i++ {
		lk.push(link.Attitude{Roll: float32(i)})
	}
	waitCount(t, col, 50)
	close(stop)
	wg.Wait()

	snap, _ := col.Snapshot(telemetry.KindAttitude)
	assert.Equal(t, 50, snap.Len())
}
