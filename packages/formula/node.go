package formula

import (
	"fmt"
	"strings"
)

type NodePosition struct {
	Start int
	End   int
}

// Node is one vertex of a parsed formula. trees are built by a parser and
// only read by the interpreter, never modified.
type Node interface {
	GetPosition() NodePosition
	// ToString returns a normalized rendering, equal for formulas that differ
	// only in whitespace or letter case of function names
	ToString() string
	node()
}

// UnaryOp represents unary operators in UnaryOperator nodes
type UnaryOp int

const (
	UnaryOpPlus UnaryOp = iota
	UnaryOpMinus
	UnaryOpPercent
)

// Literal holds a constant value: number, text, boolean, error or array
// constant
type Literal struct {
	Value    Value
	Position NodePosition
}

// CellReference points at a single cell
type CellReference struct {
	WorksheetID uint32
	Row         uint32
	Column      uint32
	Position    NodePosition
}

// Address returns the 1x1 range the reference covers
func (n *CellReference) Address() RangeAddress {
	return CellRangeAddress(n.WorksheetID, n.Row, n.Column)
}

// RangeReference points at a rectangular range of cells
type RangeReference struct {
	Address  RangeAddress
	Position NodePosition
}

// FunctionCall invokes a registered function with ordered arguments
type FunctionCall struct {
	Name     string
	Args     []Node
	Position NodePosition
}

// Operator is a binary operation
type Operator struct {
	Op       BinaryOp
	Left     Node
	Right    Node
	Position NodePosition
}

// UnaryOperator is a prefix sign or a postfix percent
type UnaryOperator struct {
	Op       UnaryOp
	Operand  Node
	Position NodePosition
}

// Name is an identifier that is neither a function nor a valid address
type Name struct {
	Name     string
	Position NodePosition
}

func (*Literal) node()        {}
func (*CellReference) node()  {}
func (*RangeReference) node() {}
func (*FunctionCall) node()   {}
func (*Operator) node()       {}
func (*UnaryOperator) node()  {}
func (*Name) node()           {}

func (n *Literal) GetPosition() NodePosition        { return n.Position }
func (n *CellReference) GetPosition() NodePosition  { return n.Position }
func (n *RangeReference) GetPosition() NodePosition { return n.Position }
func (n *FunctionCall) GetPosition() NodePosition   { return n.Position }
func (n *Operator) GetPosition() NodePosition       { return n.Position }
func (n *UnaryOperator) GetPosition() NodePosition  { return n.Position }
func (n *Name) GetPosition() NodePosition           { return n.Position }

func (n *Literal) ToString() string {
	switch v := n.Value.(type) {
	case Text:
		// escape quotes in string
		escaped := strings.ReplaceAll(string(v), "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	default:
		return v.String()
	}
}

func (n *CellReference) ToString() string {
	return fmt.Sprintf("REF(%d,%s)", n.WorksheetID, n.Address().String())
}

func (n *RangeReference) ToString() string {
	return fmt.Sprintf("RANGE(%d,%s)", n.Address.WorksheetID, n.Address.Normalize().String())
}

func (n *FunctionCall) ToString() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.ToString()
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(n.Name), strings.Join(args, ","))
}

func (n *Operator) ToString() string {
	return fmt.Sprintf("(%s%s%s)", n.Left.ToString(), n.Op.String(), n.Right.ToString())
}

func (n *UnaryOperator) ToString() string {
	switch n.Op {
	case UnaryOpPercent:
		return fmt.Sprintf("(%s%%)", n.Operand.ToString())
	case UnaryOpMinus:
		return fmt.Sprintf("-%s", n.Operand.ToString())
	default:
		return fmt.Sprintf("+%s", n.Operand.ToString())
	}
}

func (n *Name) ToString() string {
	return n.Name
}
