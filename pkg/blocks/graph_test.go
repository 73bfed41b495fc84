package blocks

import (
	"errors"
	"slices"
	"testing"
)

func mustAdd(t *testing.T, g *Graph, kind Kind, z int) *Block {
	t.Helper()
	b := NewBlock(g.NextID(), kind, Point{})
	b.ZIndex = z
	if err := g.Add(b); err != nil {
		t.Fatalf("Add(%s) error = %v", kind, err)
	}
	return b
}

func ids(bs []*Block) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestNextID(t *testing.T) {
	g := NewGraph()
	if got := g.NextID(); got != 1 {
		t.Fatalf("NextID() on empty graph = %d, want 1", got)
	}

	a := mustAdd(t, g, KindTone, 0)
	b := mustAdd(t, g, KindDelay, 1)
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d,%d, want 1,2", a.ID, b.ID)
	}

	// Removing the largest id must not free it.
	if _, err := g.Remove(b.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := g.NextID(); got != 3 {
		t.Errorf("NextID() after removing max = %d, want 3", got)
	}

	// Ids added out of order still move the bound.
	_ = g.Add(NewBlock(10, KindGain, Point{}))
	if got := g.NextID(); got != 11 {
		t.Errorf("NextID() = %d, want 11", got)
	}
}

func TestNextIDMonotonic(t *testing.T) {
	g := NewGraph()
	prev := 0
	for i := range 20 {
		id := g.NextID()
		if id <= prev {
			t.Fatalf("NextID() = %d not above previous %d", id, prev)
		}
		prev = id
		_ = g.Add(NewBlock(id, KindGain, Point{}))
		if i%3 == 0 {
			_, _ = g.Remove(id)
		}
	}
}

func TestAddValidation(t *testing.T) {
	g := NewGraph()
	tone := mustAdd(t, g, KindTone, 0)

	tests := []struct {
		name  string
		block *Block
		want  error
	}{
		{"zero id", &Block{ID: 0, Kind: KindTone}, ErrInvalidBlockID},
		{"duplicate id", &Block{ID: tone.ID, Kind: KindTone}, ErrDuplicateBlockID},
		{"unknown kind", &Block{ID: 9, Kind: "theremin"}, ErrUnknownKind},
		{"dangling connection", &Block{ID: 9, Kind: KindDelay, Connections: []int{42}}, ErrUnknownBlock},
		{"connection to source", &Block{ID: 9, Kind: KindDelay, Connections: []int{tone.ID}}, ErrInvalidConnection},
		{"self connection", &Block{ID: 9, Kind: KindDelay, Connections: []int{9}}, ErrInvalidConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.Add(tt.block); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after rejected adds", g.Len())
	}
}

func TestAddFillsDefaults(t *testing.T) {
	g := NewGraph()
	b := &Block{ID: 1, Kind: KindDelay, Params: Params{"feedback": 0.2}}
	if err := g.Add(b); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if b.Params["feedback"] != 0.2 {
		t.Errorf("feedback = %v, want explicit 0.2 kept", b.Params["feedback"])
	}
	if b.Params["delayTime"] != 0.25 {
		t.Errorf("delayTime = %v, want default 0.25", b.Params["delayTime"])
	}
}

func TestConnectRules(t *testing.T) {
	g := NewGraph()
	tone := mustAdd(t, g, KindTone, 0)
	noise := mustAdd(t, g, KindNoise, 1)
	delay := mustAdd(t, g, KindDelay, 2)
	reverb := mustAdd(t, g, KindReverb, 3)

	if err := g.Connect(tone.ID, delay.ID); err != nil {
		t.Fatalf("Connect(source, effect) error = %v", err)
	}
	if err := g.Connect(delay.ID, reverb.ID); err != nil {
		t.Fatalf("Connect(effect, effect) error = %v", err)
	}
	if err := g.Connect(reverb.ID, delay.ID); err != nil {
		t.Fatalf("Connect() closing a cycle error = %v", err)
	}

	tests := []struct {
		name     string
		from, to int
		want     error
	}{
		{"to source", tone.ID, noise.ID, ErrInvalidConnection},
		{"self", delay.ID, delay.ID, ErrInvalidConnection},
		{"duplicate", tone.ID, delay.ID, ErrDuplicateConnection},
		{"unknown source", 99, delay.ID, ErrUnknownBlock},
		{"unknown target", tone.ID, 99, ErrUnknownBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.Connect(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("Connect(%d, %d) error = %v, want %v", tt.from, tt.to, err, tt.want)
			}
		})
	}

	if err := g.Disconnect(tone.ID, delay.ID); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if err := g.Disconnect(tone.ID, delay.ID); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("second Disconnect() error = %v, want ErrUnknownConnection", err)
	}
}

func TestRemoveStripsIncoming(t *testing.T) {
	g := NewGraph()
	tone := mustAdd(t, g, KindTone, 0)
	noise := mustAdd(t, g, KindNoise, 1)
	delay := mustAdd(t, g, KindDelay, 2)
	gain := mustAdd(t, g, KindGain, 3)
	_ = g.Connect(tone.ID, delay.ID)
	_ = g.Connect(noise.ID, delay.ID)
	_ = g.Connect(delay.ID, gain.ID)

	if got := g.Incoming(delay.ID); !slices.Equal(got, []int{tone.ID, noise.ID}) {
		t.Fatalf("Incoming() = %v, want [1 2]", got)
	}

	removed, err := g.Remove(delay.ID)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !slices.Equal(removed.Connections, []int{gain.ID}) {
		t.Errorf("removed block connections = %v, want [4]", removed.Connections)
	}
	if tone.ConnectsTo(delay.ID) || noise.ConnectsTo(delay.ID) {
		t.Error("connections to the removed block should be stripped")
	}
	if _, ok := g.Block(delay.ID); ok {
		t.Error("Block() found removed block")
	}
	if got := g.IDs(); !slices.Equal(got, []int{1, 2, 4}) {
		t.Errorf("IDs() = %v, want [1 2 4] (no renumbering)", got)
	}
	if _, err := g.Remove(delay.ID); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("second Remove() error = %v, want ErrUnknownBlock", err)
	}
}

func TestSortedStable(t *testing.T) {
	g := NewGraph()
	a := mustAdd(t, g, KindTone, 2)
	b := mustAdd(t, g, KindDelay, 1)
	c := mustAdd(t, g, KindGain, 2)
	d := mustAdd(t, g, KindNoise, 0)

	want := []int{d.ID, b.ID, a.ID, c.ID}
	if got := ids(g.Sorted()); !slices.Equal(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
	if got := ids(g.Sources()); !slices.Equal(got, []int{d.ID, a.ID}) {
		t.Errorf("Sources() = %v, want [%d %d]", got, d.ID, a.ID)
	}
	if got := ids(g.Effects()); !slices.Equal(got, []int{b.ID, c.ID}) {
		t.Errorf("Effects() = %v, want [%d %d]", got, b.ID, c.ID)
	}
	if got := g.NextZIndex(); got != 3 {
		t.Errorf("NextZIndex() = %d, want 3", got)
	}
}

func TestReachableSharedAndCyclic(t *testing.T) {
	g := NewGraph()
	t1 := mustAdd(t, g, KindTone, 0)
	t2 := mustAdd(t, g, KindTone, 1)
	dly := mustAdd(t, g, KindDelay, 4)
	rev := mustAdd(t, g, KindReverb, 2)
	gain := mustAdd(t, g, KindGain, 3)
	_ = g.Connect(t1.ID, dly.ID)
	_ = g.Connect(t2.ID, dly.ID) // shared
	_ = g.Connect(dly.ID, rev.ID)
	_ = g.Connect(rev.ID, dly.ID) // cycle
	_ = g.Connect(rev.ID, gain.ID)

	got := g.Reachable(t1.ID, t2.ID)
	want := []int{t1.ID, t2.ID, rev.ID, gain.ID, dly.ID} // ZIndex 0,1,2,3,4
	if !slices.Equal(ids(got), want) {
		t.Errorf("Reachable() = %v, want %v", ids(got), want)
	}

	if got := g.Reachable(99); len(got) != 0 {
		t.Errorf("Reachable(unknown) = %v, want empty", ids(got))
	}
}

func TestFlattenGeneric(t *testing.T) {
	children := map[string][]string{
		"a": {"b", "c"},
		"b": {"c", "a"},
		"c": {"c"},
	}
	got := Flatten([]string{"a", "a", "b"},
		func(s string) string { return s },
		func(s string) []string { return children[s] })
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Flatten() = %v, want [a b c]", got)
	}

	if got := Flatten(nil, func(s string) string { return s }, func(string) []string { return nil }); len(got) != 0 {
		t.Errorf("Flatten(nil) = %v, want empty", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGraph()
	tone := mustAdd(t, g, KindTone, 0)
	delay := mustAdd(t, g, KindDelay, 1)
	_ = g.Connect(tone.ID, delay.ID)

	c := g.Clone()
	cb, _ := c.Block(tone.ID)
	cb.Params["frequency"] = 880
	cb.Connections = nil
	_, _ = c.Remove(delay.ID)

	if tone.Params["frequency"] != 440 {
		t.Error("Clone() shares params with the original")
	}
	if !tone.ConnectsTo(delay.ID) {
		t.Error("Clone() shares connections with the original")
	}
	if g.Len() != 2 {
		t.Errorf("original Len() = %d, want 2", g.Len())
	}
	if c.NextID() != 3 {
		t.Errorf("clone NextID() = %d, want 3", c.NextID())
	}
}

func TestValidate(t *testing.T) {
	g := NewGraph()
	tone := mustAdd(t, g, KindTone, 0)
	delay := mustAdd(t, g, KindDelay, 1)
	_ = g.Connect(tone.ID, delay.ID)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tone.Connections = append(tone.Connections, tone.ID)
	if err := g.Validate(); !errors.Is(err, ErrInvalidConnection) {
		t.Errorf("Validate() error = %v, want ErrInvalidConnection", err)
	}
}
