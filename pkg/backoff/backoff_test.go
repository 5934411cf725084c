package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		max     time.Duration
		min     time.Duration
		ceil    time.Duration
	}{
		{
			name:    "first retry stays near base",
			base:    time.Second,
			attempt: 0,
			max:     time.Minute,
			min:     time.Second,
			ceil:    1200 * time.Millisecond,
		},
		{
			name:    "third retry quadruples",
			base:    time.Second,
			attempt: 2,
			max:     time.Minute,
			min:     4 * time.Second,
			ceil:    4800 * time.Millisecond,
		},
		{
			name:    "capped at max",
			base:    time.Second,
			attempt: 10,
			max:     30 * time.Second,
			min:     30 * time.Second,
			ceil:    30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delay(tt.base, tt.attempt, tt.max)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.ceil)
		})
	}
}

func TestDelayZeroBase(t *testing.T) {
	assert.Equal(t, time.Duration(0), Delay(0, 3, time.Minute))
}

func TestDelayNoCap(t *testing.T) {
	got := Delay(time.Second, 4, 0)
	assert.GreaterOrEqual(t, got, 16*time.Second)
}
