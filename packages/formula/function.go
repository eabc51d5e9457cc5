package formula

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"
)

// Unbounded is the MaxParams sentinel for variadic functions
const Unbounded = -1

// FunctionDescriptor describes one built-in function. arity is validated
// by the interpreter before Calculate runs, so Calculate never checks
// len(args) against the bounds itself. absent optional arguments are simply
// missing from args.
type FunctionDescriptor struct {
	Name      string
	MinParams int
	MaxParams int
	Calculate func(args ...Value) Value

	// NeedsReference makes the interpreter pass arguments that are
	// syntactically references as Reference values instead of resolving
	// them first
	NeedsReference bool
}

// AcceptsArgCount reports whether n arguments satisfy the arity bounds
func (fd FunctionDescriptor) AcceptsArgCount(n int) bool {
	if n < fd.MinParams {
		return false
	}
	return fd.MaxParams == Unbounded || n <= fd.MaxParams
}

// Registry maps function names to descriptors. names are matched
// case-insensitively. a registry is filled during initialization and only
// read afterwards, so it may be shared by concurrent evaluations.
type Registry struct {
	functions map[string]FunctionDescriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]FunctionDescriptor),
	}
}

// NewDefaultRegistry creates a registry holding every built-in function
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, fd := range builtinFunctions() {
		r.MustRegister(fd)
	}
	return r
}

func registryKey(name string) string {
	return cases.Fold().String(name)
}

// Register adds a function. registering a name twice is an error.
func (r *Registry) Register(fd FunctionDescriptor) error {
	if fd.Name == "" {
		return NewApplicationError(InvalidArgument, "function name must not be empty")
	}
	if fd.Calculate == nil {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("function %s has no Calculate", fd.Name))
	}
	if fd.MinParams < 0 || (fd.MaxParams != Unbounded && fd.MaxParams < fd.MinParams) {
		return NewApplicationError(InvalidArgument,
			fmt.Sprintf("function %s has invalid arity %d..%d", fd.Name, fd.MinParams, fd.MaxParams))
	}

	key := registryKey(fd.Name)
	if _, exists := r.functions[key]; exists {
		return NewApplicationError(AlreadyExists, fmt.Sprintf("function %s is already registered", fd.Name))
	}
	r.functions[key] = fd
	return nil
}

// MustRegister is Register for initialization code, it panics on error
func (r *Registry) MustRegister(fd FunctionDescriptor) {
	if err := r.Register(fd); err != nil {
		panic(err)
	}
}

// Lookup finds a function by name
func (r *Registry) Lookup(name string) (FunctionDescriptor, bool) {
	fd, ok := r.functions[registryKey(name)]
	return fd, ok
}

// Names returns the registered function names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for _, fd := range r.functions {
		names = append(names, fd.Name)
	}
	slices.Sort(names)
	return names
}

// Count returns the number of registered functions
func (r *Registry) Count() int {
	return len(r.functions)
}
