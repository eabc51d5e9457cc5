package formula

import "sync"

// Interpreter walks expression trees and computes their values. it holds
// only the function registry, so one Interpreter can serve many concurrent
// evaluations as long as each gets a provider that does not change under it.
type Interpreter struct {
	registry *Registry
}

// NewInterpreter creates an interpreter that dispatches to registry
func NewInterpreter(registry *Registry) *Interpreter {
	return &Interpreter{registry: registry}
}

var defaultInterpreter = sync.OnceValue(func() *Interpreter {
	return NewInterpreter(NewDefaultRegistry())
})

// Evaluate computes node against provider using the built-in functions
func Evaluate(node Node, provider CellDataProvider) Value {
	return defaultInterpreter().Evaluate(node, provider)
}

// Registry returns the registry the interpreter dispatches to
func (in *Interpreter) Registry() *Registry {
	return in.registry
}

// Evaluate computes node against provider. every node yields exactly one
// value; calculation problems come back as SpreadsheetError values, never
// as Go errors or panics.
func (in *Interpreter) Evaluate(node Node, provider CellDataProvider) Value {
	e := &evaluation{registry: in.registry, provider: provider}
	return e.eval(node)
}

// evaluation is the state of one pass over one tree
type evaluation struct {
	registry *Registry
	provider CellDataProvider
}

func (e *evaluation) eval(node Node) Value {
	switch n := node.(type) {
	case *Literal:
		if n.Value == nil {
			return Null{}
		}
		return n.Value

	case *CellReference, *RangeReference:
		return e.resolve(n)

	case *Operator:
		if n.Op == BinOpIntersect {
			return e.resolve(n)
		}
		// both sides are evaluated, left first; ApplyBinary lets the left
		// error win
		left := e.eval(n.Left)
		right := e.eval(n.Right)
		return ApplyBinary(n.Op, left, right)

	case *UnaryOperator:
		operand := e.eval(n.Operand)
		switch n.Op {
		case UnaryOpMinus:
			return Negate(operand)
		case UnaryOpPercent:
			return Percent(operand)
		default:
			return operand
		}

	case *FunctionCall:
		return e.call(n)

	case *Name:
		return NewSpreadsheetError(ErrorCodeName)

	default:
		return NewSpreadsheetError(ErrorCodeValue)
	}
}

// resolve evaluates a reference-shaped node into the cells it points at
func (e *evaluation) resolve(node Node) Value {
	addr, errValue, ok := e.reference(node)
	if !ok {
		return NewSpreadsheetError(ErrorCodeValue)
	}
	if errValue != nil {
		return errValue
	}
	return Reference{Address: addr}.Resolve(e.provider)
}

// reference evaluates node in reference position. ok is false when node is
// not reference-shaped at all. when it is, either the address is valid or
// errValue says why not: #REF! for locations outside the worksheet,
// #NULL! for empty intersections.
func (e *evaluation) reference(node Node) (addr RangeAddress, errValue Value, ok bool) {
	switch n := node.(type) {
	case *CellReference:
		addr = n.Address()
	case *RangeReference:
		addr = n.Address.Normalize()
	case *Operator:
		if n.Op != BinOpIntersect {
			return RangeAddress{}, nil, false
		}
		left, leftErr, leftOk := e.reference(n.Left)
		right, rightErr, rightOk := e.reference(n.Right)
		if !leftOk || !rightOk {
			return RangeAddress{}, NewSpreadsheetError(ErrorCodeValue), true
		}
		if leftErr != nil {
			return RangeAddress{}, leftErr, true
		}
		if rightErr != nil {
			return RangeAddress{}, rightErr, true
		}
		overlap, found := left.Intersect(right)
		if !found {
			return RangeAddress{}, NewSpreadsheetError(ErrorCodeNull), true
		}
		return overlap, nil, true
	default:
		return RangeAddress{}, nil, false
	}

	if !addr.Within(e.provider) {
		return RangeAddress{}, NewSpreadsheetError(ErrorCodeRef), true
	}
	return addr, nil, true
}

// call dispatches a function call. the name is resolved and the arity
// checked before any argument is evaluated; evaluation has no side effects,
// so the order of these checks is not observable.
func (e *evaluation) call(n *FunctionCall) Value {
	fd, found := e.registry.Lookup(n.Name)
	if !found {
		return NewSpreadsheetError(ErrorCodeName)
	}
	if !fd.AcceptsArgCount(len(n.Args)) {
		return NewSpreadsheetError(ErrorCodeValue)
	}

	args := make([]Value, len(n.Args))
	for i, argNode := range n.Args {
		if fd.NeedsReference {
			if addr, errValue, ok := e.reference(argNode); ok {
				if errValue != nil {
					args[i] = errValue
				} else {
					args[i] = Reference{Address: addr}
				}
				continue
			}
		}
		args[i] = e.eval(argNode)
	}

	result := fd.Calculate(args...)
	switch r := result.(type) {
	case nil:
		return NewSpreadsheetError(ErrorCodeValue)
	case Reference:
		return r.Resolve(e.provider)
	default:
		return result
	}
}
