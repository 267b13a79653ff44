package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "0.000 ms"},
		{name: "sub-millisecond", in: 1500 * time.Microsecond, want: "1.500 ms"},
		{name: "nanoseconds", in: 250 * time.Nanosecond, want: "0.000 ms"},
		{name: "milliseconds with fraction", in: 12345 * time.Microsecond, want: "12.345 ms"},
		{name: "exactly 999ms stays in ms", in: 999 * time.Millisecond, want: "999.000 ms"},
		{name: "exactly 1s switches to seconds", in: time.Second, want: "1.000 s"},
		{name: "seconds with fraction", in: 1234 * time.Millisecond, want: "1.234 s"},
		{name: "large", in: 90 * time.Minute, want: "5400.000 s"},
		{name: "negative clamps to zero", in: -5 * time.Millisecond, want: "0.000 ms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.in))
		})
	}
}

func TestBetweenNeverNegative(t *testing.T) {
	base := time.Unix(1000, 0)
	assert.Equal(t, 3*time.Second, Between(base, base.Add(3*time.Second)))
	assert.Equal(t, time.Duration(0), Between(base.Add(time.Second), base))
}

func TestSystemClockMonotonic(t *testing.T) {
	a := System.Now()
	b := System.Now()
	assert.GreaterOrEqual(t, Since(System, a), time.Duration(0))
	assert.False(t, b.Before(a))
}

func TestManual(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)
	assert.Equal(t, start, m.Now())

	m.Advance(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, Since(m, start))

	m.Advance(-time.Second)
	assert.Equal(t, 10*time.Millisecond, Since(m, start), "negative advance is ignored")

	m.Set(start)
	assert.Equal(t, 10*time.Millisecond, Since(m, start), "clock does not move backwards")

	m.Set(start.Add(time.Second))
	assert.Equal(t, time.Second, Since(m, start))
}
