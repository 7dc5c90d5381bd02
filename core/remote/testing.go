package remote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateMemTransport returns a MemTransport that is closed when the test
// finishes.
func CreateMemTransport(t *testing.T, opts ...MemTransportOpts) *MemTransport {
	tr := NewMemTransport(opts...)
	t.Cleanup(func() {
		require.NoError(t, tr.Close())
	})
	return tr
}
