package savefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blokdust/pkg/blocks"
)

// Version is the format version written by [Serialize].
const Version = 2

type file struct {
	Version      int           `json:"Version"`
	Composition  []descriptor  `json:"Composition"`
	ZoomLevel    *float64      `json:"ZoomLevel,omitempty"`
	DragOffset   *blocks.Point `json:"DragOffset,omitempty"`
	ColorThemeNo *int          `json:"ColorThemeNo,omitempty"`
}

type descriptor struct {
	Ref         *int          `json:"Ref,omitempty"`
	ID          int           `json:"Id,omitempty"`
	Type        string        `json:"Type,omitempty"`
	ZIndex      int           `json:"ZIndex,omitempty"`
	Position    *blocks.Point `json:"Position,omitempty"`
	Params      blocks.Params `json:"Params,omitempty"`
	Connections []descriptor  `json:"Connections,omitempty"`
}

// Serialize encodes a composition. The storage id is not part of the file.
func Serialize(c *blocks.Composition) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a composition as indented JSON and writes it to w.
func Write(c *blocks.Composition, w io.Writer) error {
	out := encode(c)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export writes a composition to a JSON file at path.
func Export(c *blocks.Composition, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(c, f)
}

func encode(c *blocks.Composition) file {
	zoom := c.Session.ZoomLevel
	drag := c.Session.DragOffset
	theme := c.Session.ColorThemeNo
	out := file{
		Version:      Version,
		Composition:  []descriptor{},
		ZoomLevel:    &zoom,
		DragOffset:   &drag,
		ColorThemeNo: &theme,
	}

	written := make(map[int]bool, c.Graph.Len())
	var describe func(b *blocks.Block) descriptor
	describe = func(b *blocks.Block) descriptor {
		if written[b.ID] {
			id := b.ID
			return descriptor{Ref: &id}
		}
		written[b.ID] = true
		pos := b.Position
		d := descriptor{
			ID:       b.ID,
			Type:     string(b.Kind),
			ZIndex:   b.ZIndex,
			Position: &pos,
			Params:   b.Params.Clone(),
		}
		for _, id := range b.Connections {
			if next, ok := c.Graph.Block(id); ok {
				d.Connections = append(d.Connections, describe(next))
			}
		}
		return d
	}

	for _, b := range c.Graph.Sorted() {
		out.Composition = append(out.Composition, describe(b))
	}
	return out
}
