package modifier

import (
	"reflect"
	"sort"
	"sync"
)

// Info describes a registered modifier type.
type Info struct {
	Tag string
	// Mandatory modifiers are always enabled.
	Mandatory bool
}

// Constructor builds a modifier of a registered type for flow.
type Constructor func(flow Flow, info Info, opts Options) (Modifier, error)

type registration struct {
	info Info
	ctor Constructor
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// Register makes a modifier type available to descriptors under tag.
// Registering a tag again with the same mandatory flag and constructor
// function is a no-op; any other identity for a known tag is a conflict.
func Register(tag string, mandatory bool, ctor Constructor) error {
	if tag == "" || ctor == nil {
		return &ExtendError{Message: "a modifier type needs a tag and a constructor"}
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if r, exists := registry[tag]; exists {
		if r.info.Mandatory == mandatory && sameFunc(r.ctor, ctor) {
			return nil
		}
		return &ExtendError{Message: "the modifier type " + tag + " is already registered with another flag or constructor"}
	}
	registry[tag] = registration{info: Info{Tag: tag, Mandatory: mandatory}, ctor: ctor}
	return nil
}

// sameFunc compares the code pointers of two constructors. Closures built
// from one function literal share theirs.
func sameFunc(a, b Constructor) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// MustRegister is Register for package init functions.
func MustRegister(tag string, mandatory bool, ctor Constructor) {
	if err := Register(tag, mandatory, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the registration of tag.
func Lookup(tag string) (Info, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[tag]
	return r.info, ok
}

// Types lists the registered tags in lexical order, optionally only the
// mandatory ones.
func Types(mandatoryOnly bool) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag, r := range registry {
		if !mandatoryOnly || r.info.Mandatory {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// New builds a modifier of the registered type tag. ok is false when the tag
// is unknown.
func New(tag string, flow Flow, opts Options) (m Modifier, ok bool, err error) {
	registryMu.RLock()
	r, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	m, err = r.ctor(flow, r.info, opts)
	if err != nil {
		return nil, true, err
	}
	if b := m.base(); b.self == Modifier(b) {
		b.bind(m)
	}
	return m, true, nil
}
