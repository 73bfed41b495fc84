package blocks

import (
	"errors"
	"slices"
	"sync"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Kind tags a block with its entry in the kinds table.
type Kind string

// Built-in kinds.
const (
	KindTone     Kind = "tone"
	KindNoise    Kind = "noise"
	KindRecorder Kind = "recorder"
	KindDelay    Kind = "delay"
	KindReverb   Kind = "reverb"
	KindGain     Kind = "gain"
)

// Role separates blocks that emit particles from blocks that process sound.
type Role int

const (
	RoleUnknown Role = iota
	RoleSource
	RoleEffect
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Disposition is a behavior's answer to a particle collision.
type Disposition int

const (
	// DispositionPass lets the particle continue.
	DispositionPass Disposition = iota
	// DispositionAbsorb consumes the particle; its holder must release it.
	DispositionAbsorb
)

// Behavior is the per-kind capability set. Implementations are shared by all
// blocks of a kind and keep per-block state on the block itself.
type Behavior interface {
	Init(b *Block)
	Update(b *Block)
	Draw(b *Block)
	Refresh(b *Block)
	Delete(b *Block)
	OnParticleCollision(b *Block, p *Particle) Disposition
}

// BaseBehavior implements every Behavior method as a no-op that lets
// particles pass. Embed it to override only what a kind needs.
type BaseBehavior struct{}

func (BaseBehavior) Init(*Block)    {}
func (BaseBehavior) Update(*Block)  {}
func (BaseBehavior) Draw(*Block)    {}
func (BaseBehavior) Refresh(*Block) {}
func (BaseBehavior) Delete(*Block)  {}

func (BaseBehavior) OnParticleCollision(*Block, *Particle) Disposition { return DispositionPass }

// Range bounds a parameter.
type Range struct{ Min, Max float64 }

// KindSpec is an entry of the kinds table.
type KindSpec struct {
	Role     Role
	Defaults Params
	Limits   map[string]Range // clamped on Init and Refresh
	Behavior Behavior
}

var (
	// ErrUnknownKind is returned for a kind tag missing from the kinds table.
	ErrUnknownKind = errors.New("unknown block kind")

	// ErrDuplicateKind is returned by [RegisterKind] for a tag already in use.
	ErrDuplicateKind = errors.New("duplicate block kind")
)

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]KindSpec{
		KindTone: {
			Role:     RoleSource,
			Defaults: Params{"frequency": 440, "waveform": 0, "volume": -10},
			Limits:   map[string]Range{"frequency": {20, 20000}, "volume": {-60, 12}},
			Behavior: clampBehavior{},
		},
		KindNoise: {
			Role:     RoleSource,
			Defaults: Params{"color": 0, "volume": -10},
			Limits:   map[string]Range{"volume": {-60, 12}},
			Behavior: clampBehavior{},
		},
		KindRecorder: {
			Role:     RoleSource,
			Defaults: Params{"volume": 10, "loop": 1},
			Limits:   map[string]Range{"volume": {-60, 12}, "loop": {0, 1}},
			Behavior: recorderBehavior{},
		},
		KindDelay: {
			Role:     RoleEffect,
			Defaults: Params{"delayTime": 0.25, "feedback": 0.5, "mix": 0.5},
			Limits:   map[string]Range{"delayTime": {0, 10}, "feedback": {0, 0.99}, "mix": {0, 1}},
			Behavior: clampBehavior{},
		},
		KindReverb: {
			Role:     RoleEffect,
			Defaults: Params{"roomSize": 0.7, "dampening": 3000, "mix": 0.5},
			Limits:   map[string]Range{"roomSize": {0, 1}, "mix": {0, 1}},
			Behavior: clampBehavior{},
		},
		KindGain: {
			Role:     RoleEffect,
			Defaults: Params{"gain": 1},
			Limits:   map[string]Range{"gain": {0, 4}},
			Behavior: clampBehavior{},
		},
	}
)

// RegisterKind adds a kind to the table. The KindSpec needs a source or effect
// role; a nil Behavior is replaced by [BaseBehavior].
func RegisterKind(kind Kind, spec KindSpec) error {
	if err := errs.ValidateKindName(string(kind)); err != nil {
		return err
	}
	if spec.Role != RoleSource && spec.Role != RoleEffect {
		return errs.New(errs.ErrCodeInvalidKind, "kind %q needs a source or effect role", kind)
	}
	if spec.Behavior == nil {
		spec.Behavior = BaseBehavior{}
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := kinds[kind]; ok {
		return errs.Wrap(errs.ErrCodeInvalidKind, ErrDuplicateKind, "kind %q", kind)
	}
	kinds[kind] = spec
	return nil
}

// LookupKind returns the table entry for kind.
func LookupKind(kind Kind) (KindSpec, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	spec, ok := kinds[kind]
	return spec, ok
}

// Kinds returns all registered kind tags, sorted.
func Kinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func behaviorOf(b *Block) Behavior {
	if spec, ok := LookupKind(b.Kind); ok {
		return spec.Behavior
	}
	return BaseBehavior{}
}

// =============================================================================
// Built-in behaviors
// =============================================================================

// clampBehavior keeps parameters inside the kind's limits.
type clampBehavior struct{ BaseBehavior }

func (clampBehavior) Init(b *Block)    { clampParams(b) }
func (clampBehavior) Refresh(b *Block) { clampParams(b) }

// recorderBehavior absorbs every particle that reaches it. Deleting a
// recorder drops its recording.
type recorderBehavior struct{ clampBehavior }

func (recorderBehavior) OnParticleCollision(b *Block, _ *Particle) Disposition {
	b.absorbed++
	return DispositionAbsorb
}

func (recorderBehavior) Delete(b *Block) { b.absorbed = 0 }

func clampParams(b *Block) {
	spec, ok := LookupKind(b.Kind)
	if !ok {
		return
	}
	for name, r := range spec.Limits {
		v, ok := b.Params[name]
		if !ok {
			continue
		}
		b.Params[name] = min(max(v, r.Min), r.Max)
	}
}
