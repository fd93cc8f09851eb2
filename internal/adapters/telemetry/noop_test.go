package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/adapters/telemetry"
	"go.trai.ch/pac/internal/core/ports"
)

func TestNoOp_Record(t *testing.T) {
	tel := telemetry.NewNoOp()

	ctx, v := tel.Record(context.Background(), "build libx@v1")
	n, err := v.Stdout().Write([]byte("compiling"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	v.Log("linked")
	v.Cached()
	v.Complete(nil)

	got, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, v, got)
	assert.NoError(t, tel.Close())
}
