package profile

import (
	"fmt"
	"strings"
)

// Registry holds validated profiles by name. It is built at startup and only read afterwards.
type Registry struct {
	profiles    map[string]*Profile
	names       []string
	defaultName string
}

// NewRegistry validates and registers the given profiles. The first one becomes the
// default unless a profile named DefaultName is among them.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	if _, ok := r.profiles[DefaultName]; ok {
		r.defaultName = DefaultName
	}
	return r, nil
}

// NewBuiltinRegistry returns a registry of the built-in profiles with standard as default.
func NewBuiltinRegistry() (*Registry, error) {
	return NewRegistry(Builtin()...)
}

// Register validates p and adds it under its name.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	name := NormalizeName(p.Name)
	if _, ok := r.profiles[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProfile, name)
	}
	r.profiles[name] = p
	r.names = append(r.names, name)
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// Get returns the named profile; an empty name selects the default.
func (r *Registry) Get(name string) (*Profile, error) {
	name = NormalizeName(name)
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProfile, name, strings.Join(r.names, ", "))
	}
	return p, nil
}

// SetDefault changes the profile returned for an empty name.
func (r *Registry) SetDefault(name string) error {
	p, err := r.Get(name)
	if err != nil {
		return err
	}
	r.defaultName = NormalizeName(p.Name)
	return nil
}

// Default returns the name of the default profile.
func (r *Registry) Default() string {
	return r.defaultName
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// NormalizeName returns the key a profile name is registered under.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
