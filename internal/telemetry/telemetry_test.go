package telemetry_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavinsight/internal/telemetry"
)

func TestRecordRowMatchesColumns(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	att := telemetry.AttitudeRecord{Timestamp: ts, Roll: 0.1, Pitch: 0.2, Yaw: 0.3}
	cols, ok := telemetry.Columns(att.Kind())
	require.True(t, ok)
	assert.Len(t, att.Row(), len(cols))
	assert.Equal(t, ts, att.CapturedAt())
	assert.Equal(t, []any{ts, float32(0.1), float32(0.2), float32(0.3)}, att.Row())

	pos := telemetry.PositionRecord{Timestamp: ts, Latitude: 473978450, Longitude: 85455280, Altitude: 500000}
	cols, ok = telemetry.Columns(pos.Kind())
	require.True(t, ok)
	assert.Len(t, pos.Row(), len(cols))
	assert.Equal(t, []any{ts, int32(473978450), int32(85455280), int32(500000)}, pos.Row())
}

func TestColumnsUnknownKind(t *testing.T) {
	cols, ok := telemetry.Columns(telemetry.Kind("BOGUS"))
	assert.False(t, ok)
	assert.Nil(t, cols)

	// HEARTBEAT 可识别但不产出表格记录
	cols, ok = telemetry.Columns(telemetry.KindHeartbeat)
	assert.False(t, ok)
	assert.Nil(t, cols)
}

func TestSnapshotRowsPreserveOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cols, _ := telemetry.Columns(telemetry.KindAttitude)
	snap := telemetry.Snapshot{
		Kind:    telemetry.KindAttitude,
		Columns: cols,
		Records: []telemetry.Record{
			telemetry.AttitudeRecord{Timestamp: base, Roll: 1},
			telemetry.AttitudeRecord{Timestamp: base.Add(time.Second), Roll: 2},
			telemetry.AttitudeRecord{Timestamp: base.Add(2 * time.Second), Roll: 3},
		},
	}

	rows := snap.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, float32(1), rows[0][1])
	assert.Equal(t, float32(2), rows[1][1])
	assert.Equal(t, float32(3), rows[2][1])
}

func TestSnapshotMarshalJSON(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cols, _ := telemetry.Columns(telemetry.KindGlobalPosition)
	snap := telemetry.Snapshot{
		Kind:    telemetry.KindGlobalPosition,
		Columns: cols,
		Records: []telemetry.Record{
			telemetry.PositionRecord{Timestamp: ts, Latitude: 473978450, Longitude: 85455280, Altitude: 500000},
		},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded struct {
		Kind    string   `json:"kind"`
		Columns []string `json:"columns"`
		Count   int      `json:"count"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "GLOBAL_POSITION_INT", decoded.Kind)
	assert.Equal(t, []string{"timestamp", "latitude", "longitude", "altitude"}, decoded.Columns)
	assert.Equal(t, 1, decoded.Count)
	require.Len(t, decoded.Rows, 1)
	// JSON 数字统一解码为 float64，原始单位数值不变
	assert.Equal(t, float64(473978450), decoded.Rows[0][1])
	assert.Equal(t, float64(85455280), decoded.Rows[0][2])
	assert.Equal(t, float64(500000), decoded.Rows[0][3])
}
