package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateRejectsSecondCall(t *testing.T) {
	var g Gate

	ctx, ok := g.Begin(context.Background())
	require.True(t, ok)
	require.NotNil(t, ctx)

	_, ok = g.Begin(context.Background())
	assert.False(t, ok, "second call admitted while the first is running")

	g.End()
	_, ok = g.Begin(context.Background())
	assert.True(t, ok, "gate not released after End")
	g.End()
}

func TestGateStopCancelsActiveCall(t *testing.T) {
	var g Gate

	assert.False(t, g.Stop(), "Stop reported a call when none was running")

	ctx, ok := g.Begin(context.Background())
	require.True(t, ok)

	require.True(t, g.Stop())
	select {
	case <-ctx.Done():
	default:
		t.Fatal("active call context not cancelled by Stop")
	}

	// still reserved until the call unwinds
	_, ok = g.Begin(context.Background())
	assert.False(t, ok)

	g.End()
	_, ok = g.Begin(context.Background())
	assert.True(t, ok)
}
