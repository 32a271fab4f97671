package queue

import (
	"testing"
	"time"
)

func TestRetryDelayDoubles(t *testing.T) {
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for n, w := range want {
		if got := RetryDelay(n, nil, nil); got != w {
			t.Errorf("RetryDelay(%d) = %v, want %v", n, got, w)
		}
	}
	if got := RetryDelay(-1, nil, nil); got != 2*time.Second {
		t.Errorf("RetryDelay(-1) = %v, want 2s", got)
	}
}
