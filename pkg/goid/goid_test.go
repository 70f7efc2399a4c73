package goid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavinsight/pkg/goid"
)

func TestGetGID(t *testing.T) {
	id := goid.GetGID()
	require.NotZero(t, id)

	// 同一 goroutine 内稳定
	assert.Equal(t, id, goid.GetGID())

	// 不同 goroutine 得到不同 ID
	ch := make(chan uint64, 1)
	go func() { ch <- goid.GetGID() }()
	other := <-ch
	require.NotZero(t, other)
	assert.NotEqual(t, id, other)
}
