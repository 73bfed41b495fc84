package pool

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

type item struct {
	n     int
	reset int
}

func newItemPool(t *testing.T, min, max int, policy Policy) *Pool[*item] {
	t.Helper()
	count := 0
	p, err := New(Config[*item]{
		Min: min,
		Max: max,
		New: func() *item {
			count++
			return &item{n: count}
		},
		Reset:  func(it *item) { it.reset++ },
		Policy: policy,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNewPreallocatesMin(t *testing.T) {
	p := newItemPool(t, 10, 100, PolicyReuse)

	if p.Free() != 10 {
		t.Errorf("Free() = %d, want 10", p.Free())
	}
	if p.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0", p.InUse())
	}
	if p.Min() != 10 || p.Max() != 100 {
		t.Errorf("bounds = %d..%d, want 10..100", p.Min(), p.Max())
	}
}

func TestNewInvalidBounds(t *testing.T) {
	ctor := func() *item { return &item{} }
	tests := []struct {
		name string
		cfg  Config[*item]
	}{
		{"negative min", Config[*item]{Min: -1, Max: 5, New: ctor}},
		{"zero max", Config[*item]{Min: 0, Max: 0, New: ctor}},
		{"min above max", Config[*item]{Min: 6, Max: 5, New: ctor}},
		{"nil constructor", Config[*item]{Min: 1, Max: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("New() error = %v, want ErrInvalidBounds", err)
			}
		})
	}
}

func TestAcquireRelease(t *testing.T) {
	p := newItemPool(t, 2, 3, PolicyReuse)

	a, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if p.Free() != 1 || p.InUse() != 1 {
		t.Errorf("after acquire: free=%d inUse=%d, want 1/1", p.Free(), p.InUse())
	}
	if !p.Owns(a) {
		t.Error("Owns(acquired) = false, want true")
	}

	if err := p.Release(a); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if p.Free() != 2 || p.InUse() != 0 {
		t.Errorf("after release: free=%d inUse=%d, want 2/0", p.Free(), p.InUse())
	}
	if a.reset != 1 {
		t.Errorf("reset count = %d, want 1", a.reset)
	}

	b, _ := p.Acquire()
	if b != a {
		t.Error("Acquire() after Release() should hand out the released instance")
	}
}

func TestAcquireGrowsToMax(t *testing.T) {
	p := newItemPool(t, 1, 3, PolicyStrict)

	for i := range 3 {
		if _, err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
}

func TestStrictExhaustion(t *testing.T) {
	p := newItemPool(t, 0, 2, PolicyStrict)
	_, _ = p.Acquire()
	_, _ = p.Acquire()

	_, err := p.Acquire()
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("Acquire() error = %v, want ErrPoolExhausted", err)
	}
	if !errs.Is(err, errs.ErrCodePoolExhausted) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodePoolExhausted)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestReuseRecyclesOldest(t *testing.T) {
	p := newItemPool(t, 0, 2, PolicyReuse)
	first, _ := p.Acquire()
	second, _ := p.Acquire()

	got, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != first {
		t.Errorf("recycled item n=%d, want oldest n=%d", got.n, first.n)
	}
	if first.reset != 1 {
		t.Errorf("recycled item reset = %d, want 1", first.reset)
	}

	// first is now the newest; second is next in line.
	got, _ = p.Acquire()
	if got != second {
		t.Errorf("second recycle n=%d, want n=%d", got.n, second.n)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestReuseStaleHolderRelease(t *testing.T) {
	tests := []struct {
		name      string
		newFirst  bool // the new holder releases before the stale one
		staleErr  error
		wantFree  int
		wantInUse int
	}{
		{"after new holder", true, ErrNotOwned, 1, 0},
		{"before new holder", false, nil, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newItemPool(t, 0, 1, PolicyReuse)
			stale, _ := p.Acquire()
			fresh, err := p.Acquire()
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			if fresh != stale {
				t.Fatalf("full pool handed out n=%d, want recycled n=%d", fresh.n, stale.n)
			}

			if tt.newFirst {
				if err := p.Release(fresh); err != nil {
					t.Fatalf("Release(fresh) error = %v", err)
				}
			}
			if err := p.Release(stale); !errors.Is(err, tt.staleErr) {
				t.Errorf("Release(stale) error = %v, want %v", err, tt.staleErr)
			}
			if !tt.newFirst {
				// The stale release already took the new holder's item.
				if err := p.Release(fresh); !errors.Is(err, ErrNotOwned) {
					t.Errorf("Release(fresh) error = %v, want ErrNotOwned", err)
				}
			}
			if p.Free() != tt.wantFree || p.InUse() != tt.wantInUse {
				t.Errorf("Free, InUse = %d, %d, want %d, %d", p.Free(), p.InUse(), tt.wantFree, tt.wantInUse)
			}
		})
	}
}

func TestReleaseNotOwned(t *testing.T) {
	p := newItemPool(t, 1, 2, PolicyReuse)

	if err := p.Release(&item{}); !errors.Is(err, ErrNotOwned) {
		t.Errorf("Release(foreign) error = %v, want ErrNotOwned", err)
	}

	a, _ := p.Acquire()
	_ = p.Release(a)
	if err := p.Release(a); !errors.Is(err, ErrNotOwned) {
		t.Errorf("double Release() error = %v, want ErrNotOwned", err)
	}
	if p.Free() != 1 {
		t.Errorf("Free() = %d, want 1", p.Free())
	}
}

func TestBoundHolds(t *testing.T) {
	p := newItemPool(t, 3, 5, PolicyReuse)
	var held []*item
	for i := range 50 {
		if i%3 == 2 && len(held) > 0 {
			_ = p.Release(held[0])
			held = held[1:]
			continue
		}
		v, err := p.Acquire()
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if !containsItem(held, v) {
			held = append(held, v)
		}
		if p.Len() > p.Max() {
			t.Fatalf("Len() = %d exceeds Max() = %d", p.Len(), p.Max())
		}
	}
}

func containsItem(items []*item, v *item) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyReuse, false},
		{"reuse", PolicyReuse, false},
		{"strict", PolicyStrict, false},
		{"lenient", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
