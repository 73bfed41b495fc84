package blocks

// Observer receives lifecycle events for the rendering and audio layers.
// Every broadcast calls the observer once per block, in ZIndex order, after
// the block's own behavior has run.
type Observer interface {
	OnInit(b *Block)
	OnUpdate(b *Block)
	OnDraw(b *Block)
	OnRefresh(b *Block)
	OnDelete(b *Block)
}

// NoopObserver ignores every event.
type NoopObserver struct{}

func (NoopObserver) OnInit(*Block)    {}
func (NoopObserver) OnUpdate(*Block)  {}
func (NoopObserver) OnDraw(*Block)    {}
func (NoopObserver) OnRefresh(*Block) {}
func (NoopObserver) OnDelete(*Block)  {}

// Event names a broadcast.
type Event int

const (
	EventInit Event = iota
	EventUpdate
	EventDraw
	EventRefresh
	EventDelete
)

func (e Event) String() string {
	switch e {
	case EventInit:
		return "init"
	case EventUpdate:
		return "update"
	case EventDraw:
		return "draw"
	case EventRefresh:
		return "refresh"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type dispatch struct {
	behavior func(Behavior, *Block)
	observer func(Observer, *Block)
}

var events = map[Event]dispatch{
	EventInit:    {Behavior.Init, Observer.OnInit},
	EventUpdate:  {Behavior.Update, Observer.OnUpdate},
	EventDraw:    {Behavior.Draw, Observer.OnDraw},
	EventRefresh: {Behavior.Refresh, Observer.OnRefresh},
	EventDelete:  {Behavior.Delete, Observer.OnDelete},
}

func notify(ev Event, b *Block, obs Observer) {
	d := events[ev]
	d.behavior(behaviorOf(b), b)
	d.observer(obs, b)
}
