package savefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blokdust/pkg/blocks"
	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// ErrFormat is wrapped by every decoding failure.
var ErrFormat = errors.New("malformed save file")

// Result is a decoded save file.
type Result struct {
	// Composition holds a freshly built graph and the session. Its ID is
	// empty; the caller knows which id it loaded.
	Composition *blocks.Composition

	// Blocks lists the reachable blocks once each, in ZIndex order.
	Blocks []*blocks.Block

	// Version is the format version of the input.
	Version int
}

// Deserialize decodes a save file.
func Deserialize(data []byte) (*Result, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a save file from r. It does not close r.
func Read(r io.Reader) (*Result, error) {
	var in file
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, formatErr(err, "decode")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, formatErr(err, "trailing data after save file")
	}
	if in.Composition == nil {
		return nil, formatErr(nil, "missing Composition")
	}
	return decode(in)
}

// Import reads a save file from path.
func Import(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	res, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

func decode(in file) (*Result, error) {
	version := in.Version
	if version == 0 {
		version = 1
	}
	if version < 0 || version > Version {
		return nil, formatErr(nil, "unsupported version %d", in.Version)
	}

	// Phase one: collect definitions and validate every descriptor.
	defs := make(map[int]*descriptor)
	var refs []int
	var collect func(d *descriptor) error
	collect = func(d *descriptor) error {
		if d.Ref != nil {
			refs = append(refs, *d.Ref)
			return nil
		}
		if d.ID < 1 {
			return formatErr(nil, "block id %d must be positive", d.ID)
		}
		if _, ok := blocks.LookupKind(blocks.Kind(d.Type)); !ok {
			return formatErr(blocks.ErrUnknownKind, "block %d has kind %q", d.ID, d.Type)
		}
		if _, seen := defs[d.ID]; !seen {
			defs[d.ID] = d
		} else if version >= 2 {
			return formatErr(nil, "block %d defined twice", d.ID)
		}
		for i := range d.Connections {
			if err := collect(&d.Connections[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range in.Composition {
		if err := collect(&in.Composition[i]); err != nil {
			return nil, err
		}
	}
	for _, id := range refs {
		if _, ok := defs[id]; !ok {
			return nil, formatErr(nil, "reference to undefined block %d", id)
		}
	}

	// Phase two: flatten from the roots and build the graph.
	idOf := func(d *descriptor) int {
		if d.Ref != nil {
			return *d.Ref
		}
		return d.ID
	}
	children := func(d *descriptor) []*descriptor {
		def := defs[idOf(d)]
		out := make([]*descriptor, len(def.Connections))
		for i := range def.Connections {
			out[i] = &def.Connections[i]
		}
		return out
	}
	roots := make([]*descriptor, len(in.Composition))
	for i := range in.Composition {
		roots[i] = &in.Composition[i]
	}

	var list []*blocks.Block
	for _, d := range blocks.Flatten(roots, idOf, children) {
		def := defs[idOf(d)]
		b := &blocks.Block{
			ID:     def.ID,
			ZIndex: def.ZIndex,
			Kind:   blocks.Kind(def.Type),
			Params: def.Params.Clone(),
		}
		if def.Position != nil {
			b.Position = *def.Position
		}
		list = append(list, b)
	}
	blocks.SortByZIndex(list)

	g := blocks.NewGraph()
	for _, b := range list {
		if err := g.Add(b); err != nil {
			return nil, formatErr(err, "block %d", b.ID)
		}
	}
	for _, b := range list {
		for _, c := range defs[b.ID].Connections {
			to := idOf(&c)
			if b.ConnectsTo(to) {
				continue
			}
			if err := g.Connect(b.ID, to); err != nil {
				return nil, formatErr(err, "connection %d -> %d", b.ID, to)
			}
		}
	}

	session := blocks.DefaultSession()
	if in.ZoomLevel != nil && *in.ZoomLevel > 0 {
		session.ZoomLevel = *in.ZoomLevel
	}
	if in.DragOffset != nil {
		session.DragOffset = *in.DragOffset
	}
	if in.ColorThemeNo != nil {
		session.ColorThemeNo = *in.ColorThemeNo
	}

	return &Result{
		Composition: &blocks.Composition{Graph: g, Session: session},
		Blocks:      list,
		Version:     version,
	}, nil
}

func formatErr(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		return errs.Wrap(errs.ErrCodeFormat, fmt.Errorf("%w: %w", ErrFormat, cause), "%s", msg)
	}
	return errs.Wrap(errs.ErrCodeFormat, ErrFormat, "%s", msg)
}
