// SPDX-License-Identifier: MPL-2.0

package clock

import (
	"testing"
	"time"
)

func TestFake_Advance(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Time{})
	start := c.Now()
	if start != time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("NewFake(zero).Now() = %v, want reference time", start)
	}

	ch := c.After(10 * time.Second)
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	c.Advance(5 * time.Second)
	select {
	case <-ch:
		t.Fatal("After(10s) fired after 5s")
	default:
	}

	c.Advance(5 * time.Second)
	select {
	case got := <-ch:
		if want := start.Add(10 * time.Second); !got.Equal(want) {
			t.Errorf("After fired with %v, want %v", got, want)
		}
	default:
		t.Fatal("After(10s) did not fire after 10s")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after firing, want 0", c.Pending())
	}
}

func TestFake_AfterNonPositive(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Unix(100, 0))
	select {
	case got := <-c.After(0):
		if !got.Equal(time.Unix(100, 0)) {
			t.Errorf("After(0) = %v", got)
		}
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFake_Set(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Unix(0, 0))
	ch := c.After(time.Hour)
	c.Set(time.Unix(0, 0).Add(2 * time.Hour))
	select {
	case <-ch:
	default:
		t.Fatal("Set past the target should fire After")
	}
}

func TestReal_Now(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := Real{}.Now()
	if got.Before(before) {
		t.Errorf("Real.Now() = %v, before %v", got, before)
	}
}
