package formula

import (
	"slices"
	"testing"
)

func identity(args ...Value) Value { return args[0] }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(FunctionDescriptor{Name: "Echo", MinParams: 1, MaxParams: 1, Calculate: identity}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, name := range []string{"ECHO", "echo", "Echo"} {
		fd, ok := r.Lookup(name)
		if !ok || fd.Name != "Echo" {
			t.Errorf("Lookup(%s) = %v, %v", name, fd.Name, ok)
		}
	}
	if _, ok := r.Lookup("ECHO2"); ok {
		t.Error("Lookup of an unknown name succeeded")
	}

	err := r.Register(FunctionDescriptor{Name: "ECHO", MinParams: 1, MaxParams: 1, Calculate: identity})
	if appErr, ok := err.(*AppError); !ok || appErr.Code != AlreadyExists {
		t.Errorf("duplicate Register err = %v, want AlreadyExists", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d after a rejected duplicate", r.Count())
	}
}

func TestRegistryRejectsInvalidDescriptors(t *testing.T) {
	tests := map[string]FunctionDescriptor{
		"no name":       {MinParams: 0, MaxParams: 1, Calculate: identity},
		"no body":       {Name: "F", MinParams: 0, MaxParams: 1},
		"negative min":  {Name: "F", MinParams: -1, MaxParams: 1, Calculate: identity},
		"max below min": {Name: "F", MinParams: 2, MaxParams: 1, Calculate: identity},
		"bad max":       {Name: "F", MinParams: 0, MaxParams: -2, Calculate: identity},
	}
	for name, fd := range tests {
		err := NewRegistry().Register(fd)
		if appErr, ok := err.(*AppError); !ok || appErr.Code != InvalidArgument {
			t.Errorf("%s: err = %v, want InvalidArgument", name, err)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on an invalid descriptor")
		}
	}()
	NewRegistry().MustRegister(FunctionDescriptor{Name: "F"})
}

func TestAcceptsArgCount(t *testing.T) {
	bounded := FunctionDescriptor{MinParams: 2, MaxParams: 3}
	variadic := FunctionDescriptor{MinParams: 1, MaxParams: Unbounded}

	tests := []struct {
		fd   FunctionDescriptor
		n    int
		want bool
	}{
		{bounded, 1, false},
		{bounded, 2, true},
		{bounded, 3, true},
		{bounded, 4, false},
		{variadic, 0, false},
		{variadic, 1, true},
		{variadic, 1000, true},
	}
	for _, tt := range tests {
		if got := tt.fd.AcceptsArgCount(tt.n); got != tt.want {
			t.Errorf("%d..%d accepts %d = %v, want %v", tt.fd.MinParams, tt.fd.MaxParams, tt.n, got, tt.want)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	names := r.Names()
	for _, want := range []string{"AVERAGE", "DROP", "ISREF", "SUM"} {
		if !slices.Contains(names, want) {
			t.Errorf("default registry is missing %s", want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}

	isref, _ := r.Lookup("isref")
	if !isref.NeedsReference {
		t.Error("ISREF must receive references")
	}
	drop, _ := r.Lookup("DROP")
	if drop.MinParams != 2 || drop.MaxParams != 3 {
		t.Errorf("DROP arity = %d..%d", drop.MinParams, drop.MaxParams)
	}
	average, _ := r.Lookup("AVERAGE")
	if average.MinParams != 1 || average.MaxParams != 255 {
		t.Errorf("AVERAGE arity = %d..%d", average.MinParams, average.MaxParams)
	}
}
