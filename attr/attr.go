// Package attr implements the cross-format attribute dictionary: three
// scopes (file/aperture/object) per image, a Registry enforcing the
// uniqueness invariant across all three scopes, and the escape/unescape
// codec for RS-274-X2's %TF/%TA/%TO/%TD field text.
//
// Attribute keys and values are interned into a process lifetime-scoped
// pool so that a Key's identity, not its bytes, is what two
// dictionaries compare when deciding whether a value changed (used by
// the RS-274-X2 writer to decide whether to re-emit a %TO).
package attr

import (
	"errors"
	"fmt"
	"sync"
)

// Scope identifies which of the three dictionaries an attribute lives
// in.
type Scope int

const (
	ScopeFile Scope = iota
	ScopeAperture
	ScopeObject
)

func (s Scope) String() string {
	switch s {
	case ScopeFile:
		return "file"
	case ScopeAperture:
		return "aperture"
	case ScopeObject:
		return "object"
	default:
		return "unknown"
	}
}

// pool interns strings process-wide so identical text always yields
// the same *string, letting callers compare by pointer.
type pool struct {
	mu sync.Mutex
	m  map[string]*string
}

var keyPool = &pool{m: make(map[string]*string)}

func (p *pool) intern(s string) *string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.m[s]; ok {
		return existing
	}
	v := s
	p.m[s] = &v
	return &v
}

// Key is an interned attribute name; two Keys built from equal strings
// share the same pointer.
type Key struct{ p *string }

// Intern returns the interned Key for s.
func Intern(s string) Key { return Key{p: keyPool.intern(s)} }

// String returns the key text.
func (k Key) String() string {
	if k.p == nil {
		return ""
	}
	return *k.p
}

// Equal compares by pointer identity, the interned-string equality
// that makes Key comparisons cheap.
func (k Key) Equal(other Key) bool { return k.p == other.p }

// Attribute is one %TF/%TA/%TO record: a key plus its comma-separated
// field list.
type Attribute struct {
	Key    Key
	Fields []string
}

// Value returns the attribute's fields joined as gerbv would for
// single-valued standard attributes (".FileFunction,Copper,L1,Top" ->
// "Copper,L1,Top").
func (a Attribute) Value() string {
	out := ""
	for i, f := range a.Fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

// ErrMalformedKey is returned for a key that doesn't match the
// `[._$a-zA-Z][._$a-zA-Z0-9]{0,126}` grammar attribute names must
// follow.
var ErrMalformedKey = errors.New("attr: malformed attribute key")

// ValidKey reports whether key matches the grammar attribute names
// must follow.
func ValidKey(key string) bool {
	if len(key) == 0 || len(key) > 127 {
		return false
	}
	if !validFirst(key[0]) {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !validRest(key[i]) {
			return false
		}
	}
	return true
}

func validFirst(c byte) bool {
	return c == '.' || c == '_' || c == '$' || isAlpha(c)
}

func validRest(c byte) bool {
	return validFirst(c) || (c >= '0' && c <= '9')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Dict holds one scope's live attributes for an image.
type Dict struct {
	scope Scope
	m     map[Key]Attribute
}

// NewDict creates an empty dictionary for scope.
func NewDict(scope Scope) *Dict {
	return &Dict{scope: scope, m: make(map[Key]Attribute)}
}

// Scope reports the dictionary's scope.
func (d *Dict) Scope() Scope { return d.scope }

// Set installs or replaces key's value.
func (d *Dict) Set(key string, fields []string) {
	k := Intern(key)
	d.m[k] = Attribute{Key: k, Fields: fields}
}

// Delete removes key; a no-op if absent.
func (d *Dict) Delete(key string) {
	delete(d.m, Intern(key))
}

// Clear empties the dictionary (bare %TD*%).
func (d *Dict) Clear() {
	d.m = make(map[Key]Attribute)
}

// Get returns key's attribute, if live.
func (d *Dict) Get(key string) (Attribute, bool) {
	a, ok := d.m[Intern(key)]
	return a, ok
}

// Keys returns the live key set.
func (d *Dict) Keys() []Key {
	keys := make([]Key, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a shallow copy of the live attribute set, used when
// a net or aperture captures the object-scope attributes live when it
// was emitted.
func (d *Dict) Snapshot() map[Key]Attribute {
	out := make(map[Key]Attribute, len(d.m))
	for k, v := range d.m {
		out[k] = v
	}
	return out
}

// Len reports the number of live attributes.
func (d *Dict) Len() int { return len(d.m) }

// Registry enforces the cross-scope uniqueness invariant: an attribute
// name may not exist in more than one of a file's three scopes
// simultaneously. One Registry is shared by an image's three Dicts.
type Registry struct {
	owner map[Key]Scope
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{owner: make(map[Key]Scope)}
}

// Claim records that scope now owns key, failing if any scope
// (including scope itself) already does: redefinition is an error.
func (r *Registry) Claim(scope Scope, key string) error {
	k := Intern(key)
	if owner, ok := r.owner[k]; ok {
		return fmt.Errorf("attr: %q redefined in scope %s, already live in scope %s",
			key, scope, owner)
	}
	r.owner[k] = scope
	return nil
}

// Release drops key's ownership, e.g. on %TD.
func (r *Registry) Release(key string) {
	delete(r.owner, Intern(key))
}

// ReleaseAll drops every key owned by scope, e.g. bare %TD*% clearing
// both aperture and object scopes.
func (r *Registry) ReleaseAll(scope Scope) {
	for k, s := range r.owner {
		if s == scope {
			delete(r.owner, k)
		}
	}
}
