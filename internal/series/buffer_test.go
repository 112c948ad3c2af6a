package series

import (
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNew_FullWindowWithBackdatedLabels(t *testing.T) {
	s := New(60, 0.8, t0)
	if s.Len() != 60 || s.Cap() != 60 {
		t.Fatalf("expected 60/60, got len=%d cap=%d", s.Len(), s.Cap())
	}
	pts := s.Points()
	if pts[0].Label != "11:59:01" {
		t.Errorf("oldest label = %q, want 11:59:01", pts[0].Label)
	}
	if pts[59].Label != "12:00:00" {
		t.Errorf("newest label = %q, want 12:00:00", pts[59].Label)
	}
	for i, p := range pts {
		if p.Value != 0.8 {
			t.Fatalf("point %d = %v, want 0.8", i, p.Value)
		}
	}
}

func TestNew_NonPositiveCapacityFallsBack(t *testing.T) {
	if got := New(0, 1, t0).Cap(); got != DefaultCapacity {
		t.Errorf("cap = %d, want %d", got, DefaultCapacity)
	}
}

func TestNew_Idempotent(t *testing.T) {
	a := New(60, 42, t0)
	b := New(60, 42, t0.Add(time.Hour))
	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	av, bv := a.Values(), b.Values()
	for i := range av {
		if av[i] != bv[i] {
			t.Fatalf("value %d differs: %v vs %v", i, av[i], bv[i])
		}
	}
}

func TestPush_FIFOEviction(t *testing.T) {
	s := New(60, -1, t0)
	const n = 150
	for i := 0; i < n; i++ {
		s.Push(fmt.Sprintf("p%d", i), float64(i))
	}
	if s.Len() != 60 {
		t.Fatalf("len = %d, want 60", s.Len())
	}
	pts := s.Points()
	for i, p := range pts {
		want := float64(n - 60 + i)
		if p.Value != want {
			t.Fatalf("point %d = %v, want %v", i, p.Value, want)
		}
		if p.Label != fmt.Sprintf("p%d", n-60+i) {
			t.Fatalf("point %d label = %q", i, p.Label)
		}
	}
	last, ok := s.Last()
	if !ok || last.Value != n-1 {
		t.Errorf("last = %v (%v), want %d", last.Value, ok, n-1)
	}
}

func TestPush_GrowsUntilCapacity(t *testing.T) {
	s := &Series{capacity: 3}
	if _, ok := s.Last(); ok {
		t.Fatal("empty series should have no last point")
	}
	for i := 0; i < 5; i++ {
		s.Push("x", float64(i))
		want := i + 1
		if want > 3 {
			want = 3
		}
		if s.Len() != want {
			t.Fatalf("after push %d len = %d, want %d", i, s.Len(), want)
		}
	}
	got := s.Values()
	if got[0] != 2 || got[1] != 3 || got[2] != 4 {
		t.Errorf("values = %v, want [2 3 4]", got)
	}
}

func TestPoints_ReturnsCopy(t *testing.T) {
	s := New(3, 1, t0)
	pts := s.Points()
	pts[0].Value = 99
	if s.Values()[0] != 1 {
		t.Error("mutating Points() result changed the series")
	}
}
