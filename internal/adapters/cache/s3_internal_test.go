package cache

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxReadCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &ctxReadCloser{ctx: ctx, rc: io.NopCloser(strings.NewReader("artifact body"))}

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "artifact", string(buf[:n]))

	cancel()
	_, err = r.Read(buf)
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, r.Close())
}
