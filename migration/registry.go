package migration

import (
	"sort"

	"github.com/crestfall/migrate/e"
)

const (
	ECode000201 = e.Code0002 + "01"
	ECode000202 = e.Code0002 + "02"
	ECode000203 = e.Code0002 + "03"
	ECode000204 = e.Code0002 + "04"
	ECode000205 = e.Code0002 + "05"
)

// Factory constructs one execution of a script. A script is instantiated
// once per execution and discarded after.
type Factory func() Script

// Registry is a compile time ScriptStore: migration script files register an
// identifier/factory pair from init and the engine resolves scripts through
// it. Enumeration order is lexical, independent of registration order.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry initializes an empty registry
func NewRegistry() (r *Registry) {
	return &Registry{
		factories: map[string]Factory{},
	}
}

// Add registers a factory for the identifier. The identifier must be well
// formed and not registered yet.
func (r *Registry) Add(identifier string, f Factory) (err error) {
	if !ValidIdentifier(identifier) {
		return e.N(ECode000201, e.MsgIdentifierInvalid, identifier)
	}

	if f == nil {
		return e.N(ECode000202, "nil factory", identifier)
	}

	if _, ok := r.factories[identifier]; ok {
		return e.N(ECode000203, "duplicate migration identifier", identifier)
	}

	r.factories[identifier] = f

	return nil
}

// ListAll returns all registered identifiers sorted lexically
func (r *Registry) ListAll() (identifiers []string, err error) {
	identifiers = make([]string, 0, len(r.factories))
	for identifier := range r.factories {
		identifiers = append(identifiers, identifier)
	}

	sort.Strings(identifiers)

	return identifiers, nil
}

// Exists reports whether a factory is registered for the identifier
func (r *Registry) Exists(identifier string) bool {
	_, ok := r.factories[identifier]
	return ok
}

// Load materializes the script for the identifier. It fails if no factory is
// registered or the factory does not produce a script.
func (r *Registry) Load(identifier string) (s Script, err error) {
	f, ok := r.factories[identifier]
	if !ok {
		return nil, e.N(ECode000204, e.MsgMigrationUnresolvable, identifier)
	}

	if s = f(); s == nil {
		return nil, e.N(ECode000205, e.MsgMigrationUnresolvable, identifier)
	}

	return s, nil
}

var defaultRegistry = NewRegistry()

// Register adds the identifier/factory pair to the default registry. It is
// meant to be called from a migration script file's init and panics on a
// malformed or duplicate registration, as either makes the binary's
// migration set unusable.
func Register(identifier string, f Factory) {
	if err := defaultRegistry.Add(identifier, f); err != nil {
		panic(err)
	}
}

// DefaultRegistry returns the registry populated by Register
func DefaultRegistry() (r *Registry) {
	return defaultRegistry
}
