package savefile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/blokdust/pkg/blocks"
	errs "github.com/matzehuels/blokdust/pkg/errors"
)

func add(t *testing.T, g *blocks.Graph, kind blocks.Kind, z int) *blocks.Block {
	t.Helper()
	b := blocks.NewBlock(g.NextID(), kind, blocks.Point{X: float64(z), Y: 1})
	b.ZIndex = z
	if err := g.Add(b); err != nil {
		t.Fatalf("Add(%s): %v", kind, err)
	}
	return b
}

func connect(t *testing.T, g *blocks.Graph, from, to int) {
	t.Helper()
	if err := g.Connect(from, to); err != nil {
		t.Fatalf("Connect(%d, %d): %v", from, to, err)
	}
}

func roundTrip(t *testing.T, c *blocks.Composition) *Result {
	t.Helper()
	data, err := Serialize(c)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	res, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v\n%s", err, data)
	}
	return res
}

func ids(bs []*blocks.Block) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func sameGraph(t *testing.T, want, got *blocks.Graph) {
	t.Helper()
	if !slices.Equal(ids(want.Sorted()), ids(got.Sorted())) {
		t.Fatalf("order = %v, want %v", ids(got.Sorted()), ids(want.Sorted()))
	}
	for _, w := range want.Blocks() {
		g, ok := got.Block(w.ID)
		if !ok {
			t.Fatalf("block %d missing", w.ID)
		}
		if g.Kind != w.Kind || g.ZIndex != w.ZIndex || g.Position != w.Position {
			t.Errorf("block %d = %+v, want %+v", w.ID, g, w)
		}
		if !slices.Equal(g.Connections, w.Connections) {
			t.Errorf("block %d connections = %v, want %v", w.ID, g.Connections, w.Connections)
		}
		for k, v := range w.Params {
			if g.Params[k] != v {
				t.Errorf("block %d param %s = %v, want %v", w.ID, k, g.Params[k], v)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, g *blocks.Graph)
	}{
		{"empty", func(t *testing.T, g *blocks.Graph) {}},
		{"single", func(t *testing.T, g *blocks.Graph) {
			b := add(t, g, blocks.KindTone, 0)
			b.Params["frequency"] = 220
		}},
		{"chain", func(t *testing.T, g *blocks.Graph) {
			a := add(t, g, blocks.KindTone, 0)
			b := add(t, g, blocks.KindDelay, 1)
			c := add(t, g, blocks.KindReverb, 2)
			connect(t, g, a.ID, b.ID)
			connect(t, g, b.ID, c.ID)
		}},
		{"fan out and shared", func(t *testing.T, g *blocks.Graph) {
			a := add(t, g, blocks.KindTone, 3)
			n := add(t, g, blocks.KindNoise, 0)
			d := add(t, g, blocks.KindDelay, 2)
			r := add(t, g, blocks.KindReverb, 1)
			connect(t, g, a.ID, d.ID)
			connect(t, g, a.ID, r.ID)
			connect(t, g, n.ID, r.ID)
			connect(t, g, d.ID, r.ID)
		}},
		{"cycle", func(t *testing.T, g *blocks.Graph) {
			a := add(t, g, blocks.KindTone, 0)
			d := add(t, g, blocks.KindDelay, 1)
			r := add(t, g, blocks.KindReverb, 2)
			connect(t, g, a.ID, d.ID)
			connect(t, g, d.ID, r.ID)
			connect(t, g, r.ID, d.ID)
		}},
		{"unconnected effect", func(t *testing.T, g *blocks.Graph) {
			add(t, g, blocks.KindGain, 0)
			add(t, g, blocks.KindRecorder, 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := blocks.NewComposition()
			tt.build(t, c.Graph)
			c.Session = blocks.Session{ZoomLevel: 1.5, DragOffset: blocks.Point{X: -3, Y: 4}, ColorThemeNo: 2}

			res := roundTrip(t, c)
			if res.Version != Version {
				t.Errorf("Version = %d, want %d", res.Version, Version)
			}
			if res.Composition.Session != c.Session {
				t.Errorf("Session = %+v, want %+v", res.Composition.Session, c.Session)
			}
			sameGraph(t, c.Graph, res.Composition.Graph)
			if !slices.Equal(ids(res.Blocks), ids(c.Graph.Sorted())) {
				t.Errorf("Blocks = %v, want %v", ids(res.Blocks), ids(c.Graph.Sorted()))
			}
			if err := res.Composition.Graph.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestRoundTripKeepsIDs(t *testing.T) {
	c := blocks.NewComposition()
	add(t, c.Graph, blocks.KindTone, 0)
	add(t, c.Graph, blocks.KindDelay, 1)
	third := add(t, c.Graph, blocks.KindGain, 2)
	if _, err := c.Graph.Remove(2); err != nil {
		t.Fatal(err)
	}

	res := roundTrip(t, c)
	got := res.Composition.Graph
	if !slices.Equal(got.IDs(), []int{1, third.ID}) {
		t.Errorf("IDs() = %v, want [1 3]", got.IDs())
	}
	if got.NextID() != 4 {
		t.Errorf("NextID() = %d, want 4", got.NextID())
	}
}

func TestSerializeRefStubs(t *testing.T) {
	c := blocks.NewComposition()
	a := add(t, c.Graph, blocks.KindTone, 0)
	d := add(t, c.Graph, blocks.KindDelay, 1)
	connect(t, c.Graph, a.ID, d.ID)

	data, err := Serialize(c)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), `"Type": "delay"`); n != 1 {
		t.Errorf("delay written %d times, want once:\n%s", n, data)
	}
	if !strings.Contains(string(data), `"Ref": 2`) {
		t.Errorf("missing Ref stub:\n%s", data)
	}
}

func TestDeserializeLegacy(t *testing.T) {
	// Version 1: no Version field, shared blocks repeated in full, no
	// session fields.
	data := `{
	  "Composition": [
	    {"Id": 1, "Type": "tone", "ZIndex": 0,
	     "Connections": [{"Id": 2, "Type": "delay", "ZIndex": 1}]},
	    {"Id": 3, "Type": "noise", "ZIndex": 2,
	     "Connections": [{"Id": 2, "Type": "delay", "ZIndex": 1}]},
	    {"Id": 2, "Type": "delay", "ZIndex": 1}
	  ]
	}`
	res, err := Deserialize([]byte(data))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if res.Version != 1 {
		t.Errorf("Version = %d, want 1", res.Version)
	}
	if got := ids(res.Blocks); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Blocks = %v, want [1 2 3]", got)
	}
	g := res.Composition.Graph
	for _, from := range []int{1, 3} {
		b, _ := g.Block(from)
		if !slices.Equal(b.Connections, []int{2}) {
			t.Errorf("block %d connections = %v, want [2]", from, b.Connections)
		}
	}
	if res.Composition.Session != blocks.DefaultSession() {
		t.Errorf("Session = %+v, want defaults", res.Composition.Session)
	}
	tone, _ := g.Block(1)
	if tone.Params["frequency"] != 440 {
		t.Errorf("missing params not defaulted: %v", tone.Params)
	}
}

func TestDeserializeZoomDefaults(t *testing.T) {
	res, err := Deserialize([]byte(`{"Version": 2, "Composition": [], "ZoomLevel": 0, "Extra": true}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Composition.Session.ZoomLevel != blocks.DefaultZoomLevel {
		t.Errorf("ZoomLevel = %v, want %v", res.Composition.Session.ZoomLevel, blocks.DefaultZoomLevel)
	}
	if res.Composition.Graph.Len() != 0 {
		t.Errorf("Len() = %d, want 0", res.Composition.Graph.Len())
	}
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"Composition": [`},
		{"wrong type", `{"Composition": {"Id": 1}}`},
		{"future version", `{"Version": 9, "Composition": []}`},
		{"zero id", `{"Composition": [{"Type": "tone"}]}`},
		{"unknown kind", `{"Composition": [{"Id": 1, "Type": "theremin"}]}`},
		{"dangling ref", `{"Version": 2, "Composition": [{"Id": 1, "Type": "tone", "Connections": [{"Ref": 5}]}]}`},
		{"duplicate in v2", `{"Version": 2, "Composition": [{"Id": 1, "Type": "gain"}, {"Id": 1, "Type": "gain"}]}`},
		{"source target", `{"Version": 2, "Composition": [{"Id": 1, "Type": "tone", "Connections": [{"Id": 2, "Type": "noise"}]}]}`},
		{"self connection", `{"Version": 2, "Composition": [{"Id": 1, "Type": "delay", "Connections": [{"Ref": 1}]}]}`},
		{"empty input", ``},
		{"null", `null`},
		{"missing composition", `{"Version": 2, "ZoomLevel": 1}`},
		{"null composition", `{"Version": 2, "Composition": null}`},
		{"trailing garbage", `{"Composition": []} trailing-garbage`},
		{"second value", `{"Composition": [{"Id": 1, "Type": "tone"}]}{`},
		{"two documents", `{"Composition": []} {"Composition": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Deserialize([]byte(tt.data))
			if err == nil {
				t.Fatalf("Deserialize() = %+v, want error", res)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("error = %v, want ErrFormat", err)
			}
			if errs.GetCode(err) != errs.ErrCodeFormat {
				t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodeFormat)
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	c := blocks.NewComposition()
	a := add(t, c.Graph, blocks.KindTone, 0)
	d := add(t, c.Graph, blocks.KindDelay, 1)
	connect(t, c.Graph, a.ID, d.ID)

	path := filepath.Join(t.TempDir(), "patch.json")
	if err := Export(c, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	res, err := Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	sameGraph(t, c.Graph, res.Composition.Graph)

	if _, err := Import(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Import(missing) error = %v, want not exist", err)
	}
}
