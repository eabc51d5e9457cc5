package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// grid limits for A1 addresses. text that names a column past XFD or a row
// past MaxRows is not an address
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// ParserContext supplies what the parser needs to know about the workbook
// that will evaluate the formula
type ParserContext struct {
	// CurrentWorksheetID is used for addresses without a sheet prefix
	CurrentWorksheetID uint32
	// ResolveWorksheet maps a sheet name to its id; a prefix it cannot
	// resolve makes the reference a #REF! literal
	ResolveWorksheet func(name string) (uint32, bool)
}

// Parser builds an expression tree from a token stream. node positions are
// token indices in that stream.
type Parser struct {
	tokens  []efp.Token
	pos     int
	context *ParserContext
}

// Parse parses formula text, with or without its leading '=', into a tree.
// ctx may be nil, in which case references point at worksheet 0 and sheet
// prefixes never resolve.
func Parse(formula string, ctx *ParserContext) (Node, error) {
	if ctx == nil {
		ctx = &ParserContext{}
	}

	src := strings.TrimSpace(formula)
	src = strings.TrimPrefix(src, "=")
	if strings.TrimSpace(src) == "" {
		return nil, NewApplicationError(InvalidArgument, "formula is empty")
	}

	tokenizer := efp.ExcelParser()
	tokens := tokenizer.Parse(src)
	// the tokenizer reinserts '=' as a leading infix token
	if len(tokens) > 0 && tokens[0].TType == efp.TokenTypeOperatorInfix && tokens[0].TValue == "=" {
		tokens = tokens[1:]
	}

	return NewParser(tokens, ctx).Parse()
}

// NewParser creates a new parser over tokens produced by efp
func NewParser(tokens []efp.Token, context *ParserContext) *Parser {
	if context == nil {
		context = &ParserContext{}
	}
	return &Parser{
		tokens:  tokens,
		pos:     0,
		context: context,
	}
}

// Parse parses the tokens into a tree
func (p *Parser) Parse() (Node, error) {
	if len(p.tokens) == 0 {
		return nil, NewApplicationError(InvalidArgument, "no tokens to parse")
	}

	node, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unexpected token after expression: %q", tok.TValue))
	}
	return node, nil
}

func (p *Parser) peek() (efp.Token, bool) {
	if p.pos >= len(p.tokens) {
		return efp.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (efp.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *Parser) position(start int) NodePosition {
	return NodePosition{Start: start, End: p.pos}
}

// binary operator precedence, lowest first. intersection binds tighter than
// every other operator and is handled in parseIntersection.
const (
	precComparison = iota + 1
	precConcat
	precAdditive
	precMultiplicative
	precPower
)

func binaryOperator(tok efp.Token) (BinaryOp, int, bool) {
	if tok.TType != efp.TokenTypeOperatorInfix {
		return 0, 0, false
	}
	switch tok.TValue {
	case "=":
		return BinOpEqual, precComparison, true
	case "<>":
		return BinOpNotEqual, precComparison, true
	case "<":
		return BinOpLess, precComparison, true
	case "<=":
		return BinOpLessEqual, precComparison, true
	case ">":
		return BinOpGreater, precComparison, true
	case ">=":
		return BinOpGreaterEqual, precComparison, true
	case "&":
		return BinOpConcat, precConcat, true
	case "+":
		return BinOpAdd, precAdditive, true
	case "-":
		return BinOpSubtract, precAdditive, true
	case "*":
		return BinOpMultiply, precMultiplicative, true
	case "/":
		return BinOpDivide, precMultiplicative, true
	case "^":
		return BinOpPower, precPower, true
	}
	return 0, 0, false
}

// parseBinary handles all left-associative infix operators with precedence
// at least minPrec
func (p *Parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}
		if tok.TType == efp.TokenTypeOperatorInfix && tok.TSubType == efp.TokenSubTypeUnion {
			return nil, NewApplicationError(InvalidArgument, "union of references is not supported")
		}
		op, prec, isBinary := binaryOperator(tok)
		if !isBinary || prec < minPrec {
			break
		}
		p.pos++

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Operator{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}
	return left, nil
}

// parseUnary handles prefix signs. a leading '+' never reaches here, the
// tokenizer drops it.
func (p *Parser) parseUnary() (Node, error) {
	tok, ok := p.peek()
	if ok && tok.TType == efp.TokenTypeOperatorPrefix && tok.TValue == "-" {
		start := p.pos
		p.pos++
		operand, err := p.parseUnary() // recurse for chained unary operators
		if err != nil {
			return nil, err
		}
		return &UnaryOperator{
			Op:       UnaryOpMinus,
			Operand:  operand,
			Position: p.position(start),
		}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles postfix operators (percent)
func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parseIntersection()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.TType != efp.TokenTypeOperatorPostfix || tok.TValue != "%" {
			return node, nil
		}
		p.pos++
		node = &UnaryOperator{
			Op:       UnaryOpPercent,
			Operand:  node,
			Position: NodePosition{Start: node.GetPosition().Start, End: p.pos},
		}
	}
}

// parseIntersection handles the space operator between references
func (p *Parser) parseIntersection() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.TType != efp.TokenTypeOperatorInfix || tok.TSubType != efp.TokenSubTypeIntersection {
			return left, nil
		}
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &Operator{
			Op:       BinOpIntersect,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}
}

// parsePrimary handles operands, function calls, array constants and
// parenthesized subexpressions
func (p *Parser) parsePrimary() (Node, error) {
	start := p.pos
	tok, ok := p.next()
	if !ok {
		return nil, NewApplicationError(InvalidArgument, "unexpected end of expression")
	}

	switch tok.TType {
	case efp.TokenTypeOperand:
		return p.parseOperand(tok, start)

	case efp.TokenTypeFunction:
		if tok.TSubType != efp.TokenSubTypeStart {
			break
		}
		if tok.TValue == "ARRAY" {
			return p.parseArrayConstant(start)
		}
		return p.parseFunctionCall(tok.TValue, start)

	case efp.TokenTypeSubexpression:
		if tok.TSubType != efp.TokenSubTypeStart {
			break
		}
		node, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.TType != efp.TokenTypeSubexpression || closing.TSubType != efp.TokenSubTypeStop {
			return nil, NewApplicationError(InvalidArgument, "expected closing parenthesis")
		}
		return node, nil
	}

	if tok.TValue == "" {
		return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unexpected %s token", strings.ToLower(tok.TType)))
	}
	return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unexpected token: %q", tok.TValue))
}

func (p *Parser) parseOperand(tok efp.Token, start int) (Node, error) {
	switch tok.TSubType {
	case efp.TokenSubTypeText:
		return &Literal{Value: Text(tok.TValue), Position: p.position(start)}, nil

	case efp.TokenSubTypeNumber:
		num, ok := parseNumberLiteral(tok.TValue)
		if !ok {
			// spellings like "inf" that only a float parser accepts
			return &Name{Name: tok.TValue, Position: p.position(start)}, nil
		}
		return &Literal{Value: num, Position: p.position(start)}, nil

	case efp.TokenSubTypeLogical:
		return &Literal{Value: Boolean(tok.TValue == "TRUE"), Position: p.position(start)}, nil

	case efp.TokenSubTypeError:
		code, ok := ParseErrorCode(tok.TValue)
		if !ok {
			return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unsupported error literal: %s", tok.TValue))
		}
		return &Literal{Value: NewSpreadsheetError(code), Position: p.position(start)}, nil

	case efp.TokenSubTypeRange:
		return p.parseReference(tok.TValue, start), nil
	}
	return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unexpected operand: %q", tok.TValue))
}

// parseReference turns an A1-style operand ("B2", "$A$1:C3", "Sheet2!A1")
// into a reference node. anything that is not a valid address becomes a
// Name; a sheet prefix that does not resolve becomes a #REF! literal.
func (p *Parser) parseReference(text string, start int) Node {
	worksheetID := p.context.CurrentWorksheetID
	address := text

	// quotes around sheet names are already stripped by the tokenizer
	if idx := strings.LastIndex(text, "!"); idx != -1 {
		worksheetName := text[:idx]
		address = text[idx+1:]

		id, ok := p.resolveWorksheet(worksheetName)
		if !ok {
			return &Literal{Value: NewSpreadsheetError(ErrorCodeRef), Position: p.position(start)}
		}
		worksheetID = id
	} else {
		switch strings.ToUpper(text) {
		case "TRUE":
			return &Literal{Value: Boolean(true), Position: p.position(start)}
		case "FALSE":
			return &Literal{Value: Boolean(false), Position: p.position(start)}
		}
	}

	parts := strings.Split(address, ":")
	switch len(parts) {
	case 1:
		if row, col, ok := ParseCellAddress(parts[0]); ok {
			return &CellReference{
				WorksheetID: worksheetID,
				Row:         row,
				Column:      col,
				Position:    p.position(start),
			}
		}
	case 2:
		startRow, startCol, startOk := ParseCellAddress(parts[0])
		endRow, endCol, endOk := ParseCellAddress(parts[1])
		if startOk && endOk {
			return &RangeReference{
				Address: RangeAddress{
					WorksheetID: worksheetID,
					StartRow:    startRow,
					StartColumn: startCol,
					EndRow:      endRow,
					EndColumn:   endCol,
				}.Normalize(),
				Position: p.position(start),
			}
		}
	}
	return &Name{Name: text, Position: p.position(start)}
}

func (p *Parser) resolveWorksheet(name string) (uint32, bool) {
	if p.context.ResolveWorksheet == nil {
		return 0, false
	}
	return p.context.ResolveWorksheet(name)
}

// parseFunctionCall parses the arguments of a call whose start token has
// been consumed. an omitted argument, as in F(1,,2), is an empty value.
func (p *Parser) parseFunctionCall(name string, start int) (Node, error) {
	args := []Node{}

	if p.atFunctionStop() {
		p.pos++
		return &FunctionCall{Name: name, Args: args, Position: p.position(start)}, nil
	}

	for {
		var arg Node
		if p.atFunctionStop() || p.atArgumentSeparator() {
			arg = &Literal{Value: Null{}, Position: NodePosition{Start: p.pos, End: p.pos}}
		} else {
			var err error
			arg, err = p.parseBinary(0)
			if err != nil {
				return nil, err
			}
		}
		args = append(args, arg)

		tok, ok := p.next()
		if !ok {
			return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("unexpected end in arguments of %s", name))
		}
		if tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStop {
			break
		}
		if tok.TType != efp.TokenTypeArgument {
			return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("expected ',' or ')' in arguments of %s", name))
		}
	}

	return &FunctionCall{Name: name, Args: args, Position: p.position(start)}, nil
}

func (p *Parser) atFunctionStop() bool {
	tok, ok := p.peek()
	return ok && tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStop
}

func (p *Parser) atArgumentSeparator() bool {
	tok, ok := p.peek()
	return ok && tok.TType == efp.TokenTypeArgument
}

// parseArrayConstant parses {a,b;c,d}. the tokenizer presents it as an
// ARRAY call whose arguments are ARRAYROW calls.
func (p *Parser) parseArrayConstant(start int) (Node, error) {
	var rows [][]Value
	for {
		tok, ok := p.next()
		if !ok || tok.TType != efp.TokenTypeFunction || tok.TSubType != efp.TokenSubTypeStart || tok.TValue != "ARRAYROW" {
			return nil, NewApplicationError(InvalidArgument, "malformed array constant")
		}
		row, err := p.parseArrayRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)

		sep, ok := p.next()
		if !ok {
			return nil, NewApplicationError(InvalidArgument, "unterminated array constant")
		}
		if sep.TType == efp.TokenTypeFunction && sep.TSubType == efp.TokenSubTypeStop {
			break
		}
		if sep.TType != efp.TokenTypeArgument {
			return nil, NewApplicationError(InvalidArgument, "malformed array constant")
		}
	}

	array, err := NewArray(rows)
	if err != nil {
		return nil, err
	}
	return &Literal{Value: array, Position: p.position(start)}, nil
}

func (p *Parser) parseArrayRow() ([]Value, error) {
	var row []Value
	for {
		v, err := p.parseArrayElement()
		if err != nil {
			return nil, err
		}
		row = append(row, v)

		tok, ok := p.next()
		if !ok {
			return nil, NewApplicationError(InvalidArgument, "unterminated array constant")
		}
		if tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStop {
			return row, nil
		}
		if tok.TType != efp.TokenTypeArgument {
			return nil, NewApplicationError(InvalidArgument, "malformed array constant")
		}
	}
}

// parseArrayElement accepts only constants: numbers (optionally negated),
// text, booleans and errors
func (p *Parser) parseArrayElement() (Value, error) {
	tok, ok := p.next()
	negative := false
	if ok && tok.TType == efp.TokenTypeOperatorPrefix && tok.TValue == "-" {
		negative = true
		tok, ok = p.next()
	}
	if !ok || tok.TType != efp.TokenTypeOperand {
		return nil, NewApplicationError(InvalidArgument, "array constants may only contain constants")
	}

	if tok.TSubType == efp.TokenSubTypeNumber {
		num, ok := parseNumberLiteral(tok.TValue)
		if !ok {
			return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid number in array constant: %s", tok.TValue))
		}
		if negative {
			return 0 - num, nil
		}
		return num, nil
	}
	if negative {
		return nil, NewApplicationError(InvalidArgument, "only numbers can be negated in array constants")
	}

	switch tok.TSubType {
	case efp.TokenSubTypeText:
		return Text(tok.TValue), nil
	case efp.TokenSubTypeLogical:
		return Boolean(tok.TValue == "TRUE"), nil
	case efp.TokenSubTypeError:
		if code, ok := ParseErrorCode(tok.TValue); ok {
			return NewSpreadsheetError(code), nil
		}
	case efp.TokenSubTypeRange:
		switch strings.ToUpper(tok.TValue) {
		case "TRUE":
			return Boolean(true), nil
		case "FALSE":
			return Boolean(false), nil
		}
	}
	return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid array constant element: %s", tok.TValue))
}

func parseNumberLiteral(s string) (Number, bool) {
	if strings.HasSuffix(s, "%") {
		return 0, false
	}
	f, ok := parseNumericText(s)
	return Number(f), ok
}

// ParseCellAddress parses an A1 address like "B3" or "$AA$10" into 0-based
// row and column indices. ok is false for anything outside the A1:XFD1048576
// grid.
func ParseCellAddress(cell string) (row, col uint32, ok bool) {
	cell = strings.TrimPrefix(cell, "$")

	// find where letters end and numbers begin
	letterEnd := 0
	for letterEnd < len(cell) && isASCIILetter(cell[letterEnd]) {
		letterEnd++
	}
	// three letters already reach past XFD's width
	if letterEnd == 0 || letterEnd > 3 {
		return 0, 0, false
	}

	rowStr := strings.TrimPrefix(cell[letterEnd:], "$")
	if rowStr == "" {
		return 0, 0, false
	}
	rowNum, err := strconv.ParseUint(rowStr, 10, 32)
	if err != nil || rowNum < 1 || rowNum > MaxRows {
		return 0, 0, false
	}

	// parse column (A=1, B=2, ..., Z=26, AA=27, ...)
	var colNum uint32
	for _, ch := range strings.ToUpper(cell[:letterEnd]) {
		colNum = colNum*26 + uint32(ch-'A'+1)
	}
	if colNum > MaxColumns {
		return 0, 0, false
	}

	return uint32(rowNum - 1), colNum - 1, true
}

func isASCIILetter(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z'
}
