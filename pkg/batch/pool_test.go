package batch

import (
	"context"
	"testing"
	"time"

	"github.com/sondedec/sondedec/pkg/sonde"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllJobs(t *testing.T) {
	decode := func(ctx context.Context, job Job, emit func(sonde.DecodedFrame, error)) {
		emit(sonde.DecodedFrame{SerialNo: job.Path}, nil)
	}

	p := NewPool(2, 8, decode)
	paths := []string{"a.wav", "b.wav", "c.wav"}
	for _, path := range paths {
		p.Submit(Job{Path: path})
	}

	seen := make(map[string]bool)
	for i := 0; i < len(paths); i++ {
		select {
		case r := <-p.Results():
			require.NoError(t, r.Err)
			seen[r.Frame.SerialNo] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for result")
		}
	}
	p.Stop()

	for _, path := range paths {
		require.True(t, seen[path])
	}
}
