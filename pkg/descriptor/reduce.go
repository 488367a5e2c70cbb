package descriptor

import (
	"sort"
	"strings"

	"github.com/go-arbor/arbor/pkg/errors"
	"github.com/go-arbor/arbor/pkg/styles"
)

// role is the closed set of semantic roles a parameter key can take.
// Classification is a pure function from (key, hoisted name sets) to a role;
// value shapes are validated afterwards by the merge step for that role.
type role int

const (
	roleContainer role = iota // literal props/styles/optParams override
	roleContent               // child content
	roleCompact               // compact descriptor string under KeyCompact
	roleClass                 // class-name contribution
	roleIdentity              // tagName, name, idName, ctor fields, flags
	roleMeta                  // hoisting keys, consumed before classification
	roleDefaultCallback       // hoisted default-callback alias
	roleOptParam              // hoisted optParam name
	roleStyle                 // style-name table hit
	roleProp                  // fallback: native attribute/property
)

// Reduce classifies and merges params into one canonical descriptor.
//
// Reduction is pure with respect to its inputs, with one early exit: a
// parameter that is itself an already-reduced descriptor is returned
// unchanged, so re-entrant construction chains are not parsed twice.
func Reduce(params ...any) (*Descriptor, error) {
	for _, p := range params {
		if d, ok := p.(*Descriptor); ok && d.reduced {
			return d, nil
		}
	}

	d := New()

	// Hoisting pass: collect dynamically-declared names first, so the order
	// in which they appear never affects how later parameters classify.
	for _, p := range params {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if raw, ok := m[KeyOptNames]; ok {
			s, ok := raw.(string)
			if !ok {
				return nil, &errors.TypeError{Op: "descriptor.Reduce", Key: KeyOptNames, Value: raw}
			}
			for _, name := range strings.Fields(s) {
				d.optNames[name] = struct{}{}
			}
		}
		if raw, ok := m[KeyDefaultCallback]; ok {
			s, ok := raw.(string)
			if !ok {
				return nil, &errors.TypeError{Op: "descriptor.Reduce", Key: KeyDefaultCallback, Value: raw}
			}
			if d.defaultCB == "" {
				d.defaultCB = s
			}
		}
	}

	// Classification pass.
	for _, p := range params {
		if err := d.mergeParam(p); err != nil {
			return nil, err
		}
	}

	d.finalize()
	d.reduced = true
	return d, nil
}

// mergeParam classifies one top-level parameter by runtime shape.
func (d *Descriptor) mergeParam(p any) error {
	if p == nil {
		return nil
	}
	switch v := p.(type) {
	case *Descriptor:
		d.AddContent(v)
		return nil
	case ContentValue:
		d.AddContent(v)
		return nil
	case []any:
		// Every element of an array parameter is child content.
		for _, el := range v {
			d.AddContent(el)
		}
		return nil
	case map[string]any:
		return d.mergeObject(v)
	case string:
		return d.mergeCompact(v)
	}
	if fn, ok := asCallback(p); ok {
		d.AddCallback("", fn)
		return nil
	}
	return &errors.TypeError{Op: "descriptor.Reduce", Value: p}
}

// mergeObject classifies each key of an object parameter independently.
// Keys are visited in sorted order so merging is deterministic regardless of
// map iteration order.
func (d *Descriptor) mergeObject(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := d.mergeKey(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// classify maps an object key to its role, in priority order.
func (d *Descriptor) classify(key string) role {
	switch key {
	case "props", "styles", "optParams":
		return roleContainer
	case "content", "children":
		return roleContent
	case KeyCompact:
		return roleCompact
	case "class", "classes", "className", "classNames":
		return roleClass
	case "tagName", "name", "idName", "icon", "label",
		"ctor", "defaultCtor", "defaultChildCtor", "trace", "root":
		return roleIdentity
	case KeyOptNames, KeyDefaultCallback:
		return roleMeta
	}
	if d.defaultCB != "" && key == d.defaultCB {
		return roleDefaultCallback
	}
	if _, ok := d.optNames[key]; ok {
		return roleOptParam
	}
	if styles.IsStyleName(key) {
		return roleStyle
	}
	return roleProp
}

func (d *Descriptor) mergeKey(key string, v any) error {
	switch d.classify(key) {
	case roleContainer:
		m, ok := v.(map[string]any)
		if !ok {
			return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
		}
		return d.mergeContainer(key, m)

	case roleContent:
		if list, ok := v.([]any); ok {
			for _, el := range list {
				d.AddContent(el)
			}
		} else {
			d.AddContent(v)
		}
		return nil

	case roleCompact:
		s, ok := v.(string)
		if !ok {
			return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
		}
		return d.mergeCompact(s)

	case roleClass:
		return d.mergeClassValue(key, v)

	case roleIdentity:
		return d.mergeIdentity(key, v)

	case roleMeta:
		// Consumed by the hoisting pass.
		return nil

	case roleDefaultCallback:
		fn, ok := asCallback(v)
		if !ok {
			return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
		}
		d.AddCallback("", fn)
		return nil

	case roleOptParam:
		d.setMapped("optParams", d.OptParams, key, v)
		return nil

	case roleStyle:
		d.setMapped("styles", d.Styles, key, v)
		return nil
	}

	// Fallback: a native attribute/property. Callables registered under a
	// property key are callbacks named by that key; finalize later moves the
	// event-like ones back into Props as composites.
	if fn, ok := asCallback(v); ok {
		d.AddCallback(key, fn)
		return nil
	}
	d.setMapped("props", d.Props, key, v)
	return nil
}

// mergeContainer bypasses classification: each key of a reserved container
// object goes directly into the corresponding sub-map, first write wins.
func (d *Descriptor) mergeContainer(container string, m map[string]any) error {
	var target map[string]any
	switch container {
	case "props":
		target = d.Props
	case "styles":
		target = d.Styles
	case "optParams":
		target = d.OptParams
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.setMapped(container, target, k, m[k])
	}
	return nil
}

func (d *Descriptor) mergeClassValue(key string, v any) error {
	switch cv := v.(type) {
	case string:
		d.AddClass(cv)
	case []string:
		for _, s := range cv {
			d.AddClass(s)
		}
	case []any:
		for _, el := range cv {
			s, ok := el.(string)
			if !ok {
				return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: el}
			}
			d.AddClass(s)
		}
	default:
		return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
	}
	return nil
}

func (d *Descriptor) mergeIdentity(key string, v any) error {
	switch key {
	case "trace", "root":
		b, ok := v.(bool)
		if !ok {
			return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
		}
		d.setScalar(key, func() {
			if key == "trace" {
				d.Trace = b
			} else {
				d.Root = b
			}
		})
		return nil

	case "ctor", "defaultCtor", "defaultChildCtor":
		ctor, ok := asConstructor(v)
		if !ok {
			return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
		}
		d.setScalar(key, func() {
			switch key {
			case "ctor":
				d.Ctor = ctor
			case "defaultCtor":
				d.DefaultCtor = ctor
			case "defaultChildCtor":
				d.DefaultChildCtor = ctor
			}
		})
		return nil
	}

	s, ok := v.(string)
	if !ok {
		return &errors.TypeError{Op: "descriptor.Reduce", Key: key, Value: v}
	}
	d.setScalar(key, func() {
		switch key {
		case "tagName":
			d.TagName = s
		case "name":
			d.Name = s
		case "idName":
			d.IDName = s
		case "icon":
			d.Icon = s
		case "label":
			d.Label = s
		}
	})
	return nil
}

// mergeCompact parses a compact descriptor string and merges its fields.
func (d *Descriptor) mergeCompact(s string) error {
	f, err := parseCompact(s)
	if err != nil {
		return err
	}
	if f.name != "" {
		d.setScalar("name", func() { d.Name = f.name })
	}
	if f.tag != "" {
		d.setScalar("tagName", func() { d.TagName = f.tag })
	}
	if f.id != "" {
		d.setScalar("idName", func() { d.IDName = f.id })
	}
	for _, c := range f.classes {
		d.AddClass(c)
	}
	if f.icon != "" {
		d.setScalar("icon", func() { d.Icon = f.icon })
	}
	if f.label != "" {
		d.setScalar("label", func() { d.Label = f.label })
	}
	return nil
}

// asCallback converts the function shapes accepted as callbacks.
func asCallback(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, fn != nil
	case func(args ...any) any:
		return fn, fn != nil
	case func(args ...any):
		if fn == nil {
			return nil, false
		}
		return func(args ...any) any { fn(args...); return nil }, true
	case func():
		if fn == nil {
			return nil, false
		}
		return func(args ...any) any { fn(); return nil }, true
	}
	return nil, false
}

func asConstructor(v any) (Constructor, bool) {
	switch fn := v.(type) {
	case Constructor:
		return fn, fn != nil
	case func(*Descriptor) (any, error):
		return fn, fn != nil
	}
	return nil, false
}
