// Package ast defines the abstract syntax tree for PArL programs.
//
// The node set is closed: Statement and Expression carry unexported marker
// methods, so only this package can add variants and every pass can treat a
// type switch over them as exhaustive. Nodes are never mutated after parsing;
// analysis results live in side tables keyed by node pointer.
package ast

import (
	"bytes"
	"strings"

	"github.com/zurustar/parlc/pkg/compiler/lexer"
)

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position refers to a real source location.
func (p Position) IsValid() bool { return p.Line > 0 }

func posOf(tok lexer.Token) Position { return Position{Line: tok.Line, Column: tok.Column} }

type Node interface {
	TokenLiteral() string
	String() string
	Pos() Position
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Position{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IntegerLiteral
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() Position        { return posOf(il.Token) }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral keeps its source text; the IR emits it verbatim.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() Position        { return posOf(fl.Token) }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// BooleanLiteral holds the literal spelling. Only "true" and "false" type-check.
type BooleanLiteral struct {
	Token lexer.Token
	Value string
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() Position        { return posOf(bl.Token) }
func (bl *BooleanLiteral) String() string       { return bl.Value }

// ColourLiteral holds "#rrggbb".
type ColourLiteral struct {
	Token lexer.Token
	Value string
}

func (cl *ColourLiteral) expressionNode()      {}
func (cl *ColourLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *ColourLiteral) Pos() Position        { return posOf(cl.Token) }
func (cl *ColourLiteral) String() string       { return cl.Value }

// Identifier is a variable reference, optionally indexed (a[i]).
type Identifier struct {
	Token lexer.Token
	Value string
	Index Expression // nil unless indexed
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() Position        { return posOf(i.Token) }
func (i *Identifier) String() string {
	if i.Index != nil {
		return i.Value + "[" + i.Index.String() + "]"
	}
	return i.Value
}

// BinaryExpression
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() Position        { return posOf(be.Token) }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// UnaryExpression is "-x" or "not x".
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Pos() Position        { return posOf(ue.Token) }
func (ue *UnaryExpression) String() string {
	if ue.Operator == "not" {
		return "(not " + ue.Operand.String() + ")"
	}
	return "(" + ue.Operator + ue.Operand.String() + ")"
}

// CastExpression is "expr as T".
type CastExpression struct {
	Token  lexer.Token // the 'as' token
	Value  Expression
	Target string
}

func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CastExpression) Pos() Position        { return posOf(ce.Token) }
func (ce *CastExpression) String() string {
	return "(" + ce.Value.String() + " as " + ce.Target + ")"
}

// CallExpression
type CallExpression struct {
	Token     lexer.Token // the function name
	Function  string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() Position        { return posOf(ce.Token) }
func (ce *CallExpression) String() string {
	return ce.Function + "(" + joinExpressions(ce.Arguments) + ")"
}

// WidthExpression is __width.
type WidthExpression struct {
	Token lexer.Token
}

func (we *WidthExpression) expressionNode()      {}
func (we *WidthExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WidthExpression) Pos() Position        { return posOf(we.Token) }
func (we *WidthExpression) String() string       { return "__width" }

// HeightExpression is __height.
type HeightExpression struct {
	Token lexer.Token
}

func (he *HeightExpression) expressionNode()      {}
func (he *HeightExpression) TokenLiteral() string { return he.Token.Literal }
func (he *HeightExpression) Pos() Position        { return posOf(he.Token) }
func (he *HeightExpression) String() string       { return "__height" }

// ReadExpression is "__read x, y".
type ReadExpression struct {
	Token lexer.Token
	X     Expression
	Y     Expression
}

func (re *ReadExpression) expressionNode()      {}
func (re *ReadExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReadExpression) Pos() Position        { return posOf(re.Token) }
func (re *ReadExpression) String() string {
	return "(__read " + re.X.String() + ", " + re.Y.String() + ")"
}

// RandomIntExpression is "__random_int bound".
type RandomIntExpression struct {
	Token lexer.Token
	Bound Expression
}

func (ri *RandomIntExpression) expressionNode()      {}
func (ri *RandomIntExpression) TokenLiteral() string { return ri.Token.Literal }
func (ri *RandomIntExpression) Pos() Position        { return posOf(ri.Token) }
func (ri *RandomIntExpression) String() string {
	return "(__random_int " + ri.Bound.String() + ")"
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VarDeclaration is "let name : Type = value".
type VarDeclaration struct {
	Token lexer.Token // the 'let' token
	Name  string
	Type  string
	Value Expression
}

func (vd *VarDeclaration) statementNode()       {}
func (vd *VarDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDeclaration) Pos() Position        { return posOf(vd.Token) }
func (vd *VarDeclaration) String() string {
	return "let " + vd.Name + ":" + vd.Type + " = " + vd.Value.String() + ";"
}

// ArrayDeclaration is "let name : T[size] = [v, ...]". Type carries the
// "[]" suffix; Size is nil when omitted.
type ArrayDeclaration struct {
	Token  lexer.Token
	Name   string
	Type   string
	Size   Expression
	Values []Expression
}

func (ad *ArrayDeclaration) statementNode()       {}
func (ad *ArrayDeclaration) TokenLiteral() string { return ad.Token.Literal }
func (ad *ArrayDeclaration) Pos() Position        { return posOf(ad.Token) }
func (ad *ArrayDeclaration) String() string {
	size := ""
	if ad.Size != nil {
		size = ad.Size.String()
	}
	elem := strings.TrimSuffix(ad.Type, "[]")
	return "let " + ad.Name + ":" + elem + "[" + size + "] = [" + joinExpressions(ad.Values) + "];"
}

// AssignStatement
type AssignStatement struct {
	Token  lexer.Token
	Target *Identifier
	Value  Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() Position        { return posOf(as.Token) }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String() + ";"
}

// BlockStatement
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() Position        { return posOf(bs.Token) }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // nil when there is no else
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() Position        { return posOf(is.Token) }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

// WhileStatement
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() Position        { return posOf(ws.Token) }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement. Init and Update are optional, Condition is required by the
// grammar but may be nil in hand-built trees.
type ForStatement struct {
	Token     lexer.Token
	Init      *VarDeclaration
	Condition Expression
	Update    *AssignStatement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() Position        { return posOf(fs.Token) }
func (fs *ForStatement) String() string {
	var init, cond, update string
	if fs.Init != nil {
		init = strings.TrimSuffix(fs.Init.String(), ";")
	}
	if fs.Condition != nil {
		cond = fs.Condition.String()
	}
	if fs.Update != nil {
		update = strings.TrimSuffix(fs.Update.String(), ";")
	}
	return "for (" + init + "; " + cond + "; " + update + ") " + fs.Body.String()
}

// Parameter is one formal parameter. Type carries "[]" for array
// parameters, whose Size must be a constant.
type Parameter struct {
	Token lexer.Token
	Name  string
	Type  string
	Size  Expression
}

func (p *Parameter) Pos() Position { return posOf(p.Token) }

func (p *Parameter) String() string {
	if p.Size != nil {
		return p.Name + ":" + strings.TrimSuffix(p.Type, "[]") + "[" + p.Size.String() + "]"
	}
	return p.Name + ":" + p.Type
}

// FunctionStatement is a function declaration.
type FunctionStatement struct {
	Token      lexer.Token // the 'fun' token
	Name       string
	Parameters []*Parameter
	ReturnType string
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) Pos() Position        { return posOf(fs.Token) }
func (fs *FunctionStatement) String() string {
	params := make([]string, len(fs.Parameters))
	for i, p := range fs.Parameters {
		params[i] = p.String()
	}
	return "fun " + fs.Name + "(" + strings.Join(params, ", ") + ") -> " + fs.ReturnType + " " + fs.Body.String()
}

// ReturnStatement
type ReturnStatement struct {
	Token lexer.Token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() Position        { return posOf(rs.Token) }
func (rs *ReturnStatement) String() string       { return "return " + rs.Value.String() + ";" }

// PrintStatement is "__print value".
type PrintStatement struct {
	Token lexer.Token
	Value Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) Pos() Position        { return posOf(ps.Token) }
func (ps *PrintStatement) String() string       { return "__print " + ps.Value.String() + ";" }

// DelayStatement is "__delay ms".
type DelayStatement struct {
	Token lexer.Token
	Value Expression
}

func (ds *DelayStatement) statementNode()       {}
func (ds *DelayStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DelayStatement) Pos() Position        { return posOf(ds.Token) }
func (ds *DelayStatement) String() string       { return "__delay " + ds.Value.String() + ";" }

// ClearStatement is "__clear colour".
type ClearStatement struct {
	Token lexer.Token
	Value Expression
}

func (cs *ClearStatement) statementNode()       {}
func (cs *ClearStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ClearStatement) Pos() Position        { return posOf(cs.Token) }
func (cs *ClearStatement) String() string       { return "__clear " + cs.Value.String() + ";" }

// WriteStatement is "__write x, y, colour".
type WriteStatement struct {
	Token  lexer.Token
	X      Expression
	Y      Expression
	Colour Expression
}

func (ws *WriteStatement) statementNode()       {}
func (ws *WriteStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WriteStatement) Pos() Position        { return posOf(ws.Token) }
func (ws *WriteStatement) String() string {
	return "__write " + joinExpressions([]Expression{ws.X, ws.Y, ws.Colour}) + ";"
}

// WriteBoxStatement is "__write_box x, y, w, h, colour".
type WriteBoxStatement struct {
	Token  lexer.Token
	X      Expression
	Y      Expression
	Width  Expression
	Height Expression
	Colour Expression
}

func (wb *WriteBoxStatement) statementNode()       {}
func (wb *WriteBoxStatement) TokenLiteral() string { return wb.Token.Literal }
func (wb *WriteBoxStatement) Pos() Position        { return posOf(wb.Token) }
func (wb *WriteBoxStatement) String() string {
	return "__write_box " + joinExpressions([]Expression{wb.X, wb.Y, wb.Width, wb.Height, wb.Colour}) + ";"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
