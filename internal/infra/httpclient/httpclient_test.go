package httpclient

import (
	"testing"
	"time"
)

func TestNewDefaultsTimeout(t *testing.T) {
	if got := New(0).Timeout; got != defaultTimeout {
		t.Fatalf("timeout = %v, want %v", got, defaultTimeout)
	}
	if got := New(3 * time.Second).Timeout; got != 3*time.Second {
		t.Fatalf("timeout = %v", got)
	}
}
