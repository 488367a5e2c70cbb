// Package descriptor implements the parameter reduction engine: it classifies
// and merges an arbitrary, order-significant list of loosely-typed
// construction parameters into one canonical Descriptor.
package descriptor

import (
	"regexp"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/go-arbor/arbor/pkg/compose"
)

// Callback is the callable shape accepted by the reduction engine.
type Callback = compose.Fn

// Constructor instantiates a component from a reduced descriptor. The return
// value is either a logical wrapper or a bare native node; the tree package
// resolves which.
type Constructor func(d *Descriptor) (any, error)

// ContentValue marks already-materialized presentation values (native nodes
// and logical wrappers). Reduction classifies any such value as child content
// rather than as a configuration object.
type ContentValue interface {
	ContentValue()
}

// Reserved parameter keys.
const (
	// KeyCompact carries a compact descriptor string as an object value.
	KeyCompact = "sel"
	// KeyOptNames hoists a space-separated list of additional optParam
	// names to recognize during classification.
	KeyOptNames = "optNames"
	// KeyDefaultCallback hoists an alias name for the default callback.
	KeyDefaultCallback = "defaultCallback"
	// DefaultCallbackName is the reserved name for unnamed callables.
	DefaultCallbackName = "callback"
)

// classLockMarker freezes className against further contributions.
const classLockMarker = "!"

var (
	eventNameMu      sync.RWMutex
	eventNamePattern = regexp.MustCompile(`^on[A-Z]`)
)

// SetEventNamePattern installs the collaborator-declared pattern deciding
// which callback names are attribute-style event handlers. Matching callbacks
// are moved into Props as a single composite callable after reduction.
// Pass nil to restore the default (`^on[A-Z]`).
func SetEventNamePattern(re *regexp.Regexp) {
	eventNameMu.Lock()
	defer eventNameMu.Unlock()
	if re == nil {
		eventNamePattern = regexp.MustCompile(`^on[A-Z]`)
	} else {
		eventNamePattern = re
	}
}

func isEventName(name string) bool {
	eventNameMu.RLock()
	defer eventNameMu.RUnlock()
	return eventNamePattern.MatchString(name)
}

// Descriptor is the canonical construction record produced by Reduce.
// Single-valued fields are locked by the first value encountered in
// left-to-right parameter order; ClassName, Content and Callbacks append.
type Descriptor struct {
	TagName string
	Name    string
	IDName  string
	Icon    string
	Label   string

	// Root stops upward name propagation: named descendants of a root
	// descriptor register on its own wrapper, never on an ancestor.
	Root bool
	// Trace routes tree operations on the materialized node through the
	// errors trace handler.
	Trace bool

	// Ctor overrides constructor selection for this descriptor.
	Ctor Constructor
	// DefaultCtor is inherited by construction-parameter children.
	DefaultCtor Constructor
	// DefaultChildCtor constructs children that carry no override.
	DefaultChildCtor Constructor

	// ClassName accumulates space-joined class contributions until the
	// lock marker appears.
	ClassName string

	// Content holds child descriptors, nodes and text in mount order.
	Content []any

	Props     map[string]any
	Styles    map[string]any
	OptParams map[string]any

	// Callbacks maps callback name to the ordered list of registered
	// callables. Event-like names are moved to Props by finalize.
	Callbacks map[string][]Callback

	classLocked bool
	locked      map[string]struct{}

	// hoisted sets, filled before classification
	optNames  map[string]struct{}
	defaultCB string

	reduced bool
}

// New returns an empty descriptor with initialized sub-maps.
func New() *Descriptor {
	return &Descriptor{
		Props:     make(map[string]any),
		Styles:    make(map[string]any),
		OptParams: make(map[string]any),
		Callbacks: make(map[string][]Callback),
		locked:    make(map[string]struct{}),
		optNames:  make(map[string]struct{}),
	}
}

// Reduced reports whether the descriptor was produced by Reduce.
func (d *Descriptor) Reduced() bool { return d.reduced }

// Locked reports whether the scoped key (e.g. "styles.color", "tagName") has
// already been resolved by an earlier parameter.
func (d *Descriptor) Locked(key string) bool {
	_, ok := d.locked[key]
	return ok
}

// setScalar stores v under the scoped key unless an earlier parameter locked it.
func (d *Descriptor) setScalar(key string, assign func()) {
	if _, ok := d.locked[key]; ok {
		return
	}
	d.locked[key] = struct{}{}
	assign()
}

// setMapped applies the single-valued first-wins rule to one sub-map entry.
func (d *Descriptor) setMapped(sub string, m map[string]any, key string, v any) {
	scoped := sub + "." + key
	if _, ok := d.locked[scoped]; ok {
		return
	}
	d.locked[scoped] = struct{}{}
	m[key] = v
}

// AddClass appends whitespace-separated class tokens to ClassName. A token
// beginning with the lock marker contributes its remainder (if any) and then
// freezes ClassName against all later contributions.
func (d *Descriptor) AddClass(s string) {
	for _, tok := range fieldsAndDots(s) {
		if d.classLocked {
			return
		}
		lock := false
		if len(tok) > 0 && tok[:1] == classLockMarker {
			lock = true
			tok = tok[1:]
		}
		if tok != "" {
			if d.ClassName == "" {
				d.ClassName = tok
			} else {
				d.ClassName += " " + tok
			}
		}
		if lock {
			d.classLocked = true
		}
	}
}

// ClassLocked reports whether the class list has seen the lock marker.
func (d *Descriptor) ClassLocked() bool { return d.classLocked }

// AddContent appends one child content entry.
func (d *Descriptor) AddContent(v any) {
	d.Content = append(d.Content, v)
}

// AddCallback registers fn under name. An empty name resolves to the hoisted
// default-callback alias, or to DefaultCallbackName when no alias was hoisted.
func (d *Descriptor) AddCallback(name string, fn Callback) {
	if fn == nil {
		return
	}
	if name == "" {
		name = d.defaultCallbackName()
	}
	d.Callbacks[name] = append(d.Callbacks[name], fn)
}

func (d *Descriptor) defaultCallbackName() string {
	if d.defaultCB != "" {
		return d.defaultCB
	}
	return DefaultCallbackName
}

// finalize moves callbacks whose name matches the event-like pattern into
// Props as one composite callable each, so the node factory can attach them
// directly as native event handlers.
func (d *Descriptor) finalize() {
	for name, list := range d.Callbacks {
		if !isEventName(name) || len(list) == 0 {
			continue
		}
		scoped := "props." + name
		if _, ok := d.locked[scoped]; ok {
			continue
		}
		d.locked[scoped] = struct{}{}
		d.Props[name] = compose.Compose(list, false)
		delete(d.Callbacks, name)
	}
}

// DecodeOptParams maps OptParams onto a typed options struct. Fields are
// matched by the "param" tag, falling back to the field name; input is
// weakly typed, mirroring the loosely-typed parameter surface.
func (d *Descriptor) DecodeOptParams(target any) error {
	return decodeLoose(d.OptParams, target)
}

// DecodeProps maps Props onto a typed struct, same rules as DecodeOptParams.
func (d *Descriptor) DecodeProps(target any) error {
	return decodeLoose(d.Props, target)
}

func decodeLoose(src map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "param",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// fieldsAndDots splits a class contribution on whitespace and dots, so both
// "a b" and ".a.b" forms yield the same tokens.
func fieldsAndDots(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '.' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
