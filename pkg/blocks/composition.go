package blocks

// DefaultZoomLevel is the canvas zoom of a new composition.
const DefaultZoomLevel = 1.0

// Session is the per-composition view state persisted with the graph.
type Session struct {
	ZoomLevel    float64
	DragOffset   Point
	ColorThemeNo int
}

// DefaultSession returns the view state of a new composition.
func DefaultSession() Session {
	return Session{ZoomLevel: DefaultZoomLevel}
}

// Composition is a graph plus its view state and storage id.
type Composition struct {
	ID      string // storage id, empty until first saved
	Graph   *Graph
	Session Session
}

// NewComposition returns an empty, unsaved composition.
func NewComposition() *Composition {
	return &Composition{Graph: NewGraph(), Session: DefaultSession()}
}

// Clone returns a deep copy of the persistent state.
func (c *Composition) Clone() *Composition {
	return &Composition{ID: c.ID, Graph: c.Graph.Clone(), Session: c.Session}
}
