// Copyright 2024 The solx Authors
// This file is part of the solx library.
//
// The solx library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The solx library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the solx library. If not, see <http://www.gnu.org/licenses/>.

package yul

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// The AST mirrors the Yul AST JSON emitted by solc: every node is an object
// carrying a "nodeType" discriminator ("YulBlock", "YulFunctionCall", ...).
// Yul AST 与 solc 输出的 JSON 格式保持一致，每个节点通过 "nodeType" 区分类型。

// Statement is a Yul statement node.
type Statement interface{ statementNode() }

// Expression is a Yul expression node.
type Expression interface{ expressionNode() }

// LiteralKind distinguishes the kinds of literals.
type LiteralKind string

const (
	NumberLiteral LiteralKind = "number"
	StringLiteral LiteralKind = "string"
	BoolLiteral   LiteralKind = "bool"
)

type (
	// Block is a scope: variables declared inside are released at its end.
	Block struct {
		Statements []Statement
	}
	// ExpressionStatement evaluates a call whose results are discarded.
	ExpressionStatement struct {
		Expression Expression
	}
	// VariableDeclaration declares one or more variables, zero-initialised
	// when Value is nil.
	VariableDeclaration struct {
		Names []string
		Value Expression
	}
	Assignment struct {
		Names []string
		Value Expression
	}
	If struct {
		Condition Expression
		Body      *Block
	}
	Switch struct {
		Expression Expression
		Cases      []*Case
		Default    *Block
	}
	Case struct {
		Value *Literal
		Body  *Block
	}
	ForLoop struct {
		Pre       *Block
		Condition Expression
		Post      *Block
		Body      *Block
	}
	FunctionDefinition struct {
		Name       string
		Parameters []string
		Returns    []string
		Body       *Block
	}
	Break    struct{}
	Continue struct{}
	Leave    struct{}

	FunctionCall struct {
		Name      string
		Arguments []Expression
	}
	Identifier struct {
		Name string
	}
	Literal struct {
		Kind  LiteralKind
		Value string
	}
)

func (*Block) statementNode()               {}
func (*ExpressionStatement) statementNode() {}
func (*VariableDeclaration) statementNode() {}
func (*Assignment) statementNode()          {}
func (*If) statementNode()                  {}
func (*Switch) statementNode()              {}
func (*ForLoop) statementNode()             {}
func (*FunctionDefinition) statementNode()  {}
func (*Break) statementNode()               {}
func (*Continue) statementNode()            {}
func (*Leave) statementNode()               {}

func (*FunctionCall) expressionNode() {}
func (*Identifier) expressionNode()   {}
func (*Literal) expressionNode()      {}

// Call builds a function call expression.
func Call(name string, args ...Expression) *FunctionCall {
	return &FunctionCall{Name: name, Arguments: args}
}

// Id builds an identifier expression.
func Id(name string) *Identifier { return &Identifier{Name: name} }

// Num builds a number literal.
func Num(v uint64) *Literal {
	return &Literal{Kind: NumberLiteral, Value: strconv.FormatUint(v, 10)}
}

// Str builds a string literal.
func Str(s string) *Literal { return &Literal{Kind: StringLiteral, Value: s} }

// Expr wraps a call into a statement.
func Expr(call *FunctionCall) *ExpressionStatement {
	return &ExpressionStatement{Expression: call}
}

// Let declares variables.
func Let(value Expression, names ...string) *VariableDeclaration {
	return &VariableDeclaration{Names: names, Value: value}
}

// Set assigns variables.
func Set(value Expression, names ...string) *Assignment {
	return &Assignment{Names: names, Value: value}
}

// NewBlock builds a block.
func NewBlock(stmts ...Statement) *Block { return &Block{Statements: stmts} }

var errNodeType = errors.New("unknown yul node type")

type typedName struct {
	Name string `json:"name"`
}

func typedNames(names []string) []typedName {
	out := make([]typedName, len(names))
	for i, n := range names {
		out[i] = typedName{Name: n}
	}
	return out
}

func plainNames(names []typedName) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Name
	}
	return out
}

// node is the wire shape shared by all AST nodes. Unused fields are omitted.
type node struct {
	NodeType        string            `json:"nodeType"`
	Statements      []json.RawMessage `json:"statements,omitempty"`
	Expression      json.RawMessage   `json:"expression,omitempty"`
	Variables       []typedName       `json:"variables,omitempty"`
	VariableNames   []typedName       `json:"variableNames,omitempty"`
	Value           json.RawMessage   `json:"value,omitempty"`
	Condition       json.RawMessage   `json:"condition,omitempty"`
	Body            *Block            `json:"body,omitempty"`
	Cases           []json.RawMessage `json:"cases,omitempty"`
	Pre             *Block            `json:"pre,omitempty"`
	Post            *Block            `json:"post,omitempty"`
	Name            string            `json:"name,omitempty"`
	Parameters      []typedName       `json:"parameters,omitempty"`
	ReturnVariables []typedName       `json:"returnVariables,omitempty"`
	FunctionName    *typedName        `json:"functionName,omitempty"`
	Arguments       []json.RawMessage `json:"arguments,omitempty"`
	Kind            LiteralKind       `json:"kind,omitempty"`
}

func rawList[T any](items []T, enc func(T) (json.RawMessage, error)) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := enc(item)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (b *Block) MarshalJSON() ([]byte, error) {
	stmts, err := rawList(b.Statements, marshalStatement)
	if err != nil {
		return nil, err
	}
	if stmts == nil {
		stmts = []json.RawMessage{}
	}
	return json.Marshal(struct {
		NodeType   string            `json:"nodeType"`
		Statements []json.RawMessage `json:"statements"`
	}{"YulBlock", stmts})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(input []byte) error {
	var n node
	if err := json.Unmarshal(input, &n); err != nil {
		return err
	}
	if n.NodeType != "YulBlock" {
		return fmt.Errorf("%w: expected YulBlock, got %q", errNodeType, n.NodeType)
	}
	return b.fromNode(&n)
}

func (b *Block) fromNode(n *node) error {
	b.Statements = make([]Statement, 0, len(n.Statements))
	for _, raw := range n.Statements {
		stmt, err := unmarshalStatement(raw)
		if err != nil {
			return err
		}
		b.Statements = append(b.Statements, stmt)
	}
	return nil
}

func marshalStatement(s Statement) (json.RawMessage, error) {
	var n node
	switch s := s.(type) {
	case *Block:
		return s.MarshalJSON()
	case *ExpressionStatement:
		expr, err := marshalExpression(s.Expression)
		if err != nil {
			return nil, err
		}
		n = node{NodeType: "YulExpressionStatement", Expression: expr}
	case *VariableDeclaration:
		n = node{NodeType: "YulVariableDeclaration", Variables: typedNames(s.Names)}
		if s.Value != nil {
			value, err := marshalExpression(s.Value)
			if err != nil {
				return nil, err
			}
			n.Value = value
		}
	case *Assignment:
		value, err := marshalExpression(s.Value)
		if err != nil {
			return nil, err
		}
		n = node{NodeType: "YulAssignment", VariableNames: typedNames(s.Names), Value: value}
	case *If:
		cond, err := marshalExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		n = node{NodeType: "YulIf", Condition: cond, Body: s.Body}
	case *Switch:
		expr, err := marshalExpression(s.Expression)
		if err != nil {
			return nil, err
		}
		cases, err := rawList(s.Cases, func(c *Case) (json.RawMessage, error) {
			value := json.RawMessage(`"default"`)
			if c.Value != nil {
				v, err := marshalExpression(c.Value)
				if err != nil {
					return nil, err
				}
				value = v
			}
			return json.Marshal(node{NodeType: "YulCase", Value: value, Body: c.Body})
		})
		if err != nil {
			return nil, err
		}
		if s.Default != nil {
			def, err := json.Marshal(node{NodeType: "YulCase", Value: json.RawMessage(`"default"`), Body: s.Default})
			if err != nil {
				return nil, err
			}
			cases = append(cases, def)
		}
		n = node{NodeType: "YulSwitch", Expression: expr, Cases: cases}
	case *ForLoop:
		cond, err := marshalExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		n = node{NodeType: "YulForLoop", Pre: s.Pre, Condition: cond, Post: s.Post, Body: s.Body}
	case *FunctionDefinition:
		n = node{
			NodeType:        "YulFunctionDefinition",
			Name:            s.Name,
			Parameters:      typedNames(s.Parameters),
			ReturnVariables: typedNames(s.Returns),
			Body:            s.Body,
		}
	case *Break:
		n = node{NodeType: "YulBreak"}
	case *Continue:
		n = node{NodeType: "YulContinue"}
	case *Leave:
		n = node{NodeType: "YulLeave"}
	default:
		return nil, fmt.Errorf("%w: statement %T", errNodeType, s)
	}
	return json.Marshal(n)
}

func marshalExpression(e Expression) (json.RawMessage, error) {
	switch e := e.(type) {
	case *FunctionCall:
		args, err := rawList(e.Arguments, marshalExpression)
		if err != nil {
			return nil, err
		}
		if args == nil {
			args = []json.RawMessage{}
		}
		return json.Marshal(struct {
			NodeType     string            `json:"nodeType"`
			FunctionName typedName         `json:"functionName"`
			Arguments    []json.RawMessage `json:"arguments"`
		}{"YulFunctionCall", typedName{e.Name}, args})
	case *Identifier:
		return json.Marshal(node{NodeType: "YulIdentifier", Name: e.Name})
	case *Literal:
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(node{NodeType: "YulLiteral", Kind: e.Kind, Value: value})
	case nil:
		return nil, errors.New("missing yul expression")
	}
	return nil, fmt.Errorf("%w: expression %T", errNodeType, e)
}

func unmarshalStatement(raw json.RawMessage) (Statement, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.NodeType {
	case "YulBlock":
		b := new(Block)
		return b, b.fromNode(&n)
	case "YulExpressionStatement":
		expr, err := unmarshalExpression(n.Expression)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Expression: expr}, nil
	case "YulVariableDeclaration":
		decl := &VariableDeclaration{Names: plainNames(n.Variables)}
		if len(n.Value) > 0 && string(n.Value) != "null" {
			value, err := unmarshalExpression(n.Value)
			if err != nil {
				return nil, err
			}
			decl.Value = value
		}
		return decl, nil
	case "YulAssignment":
		value, err := unmarshalExpression(n.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{Names: plainNames(n.VariableNames), Value: value}, nil
	case "YulIf":
		cond, err := unmarshalExpression(n.Condition)
		if err != nil {
			return nil, err
		}
		return &If{Condition: cond, Body: orEmpty(n.Body)}, nil
	case "YulSwitch":
		expr, err := unmarshalExpression(n.Expression)
		if err != nil {
			return nil, err
		}
		sw := &Switch{Expression: expr}
		for _, raw := range n.Cases {
			var c node
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
			if string(c.Value) == `"default"` {
				sw.Default = orEmpty(c.Body)
				continue
			}
			value, err := unmarshalExpression(c.Value)
			if err != nil {
				return nil, err
			}
			lit, ok := value.(*Literal)
			if !ok {
				return nil, errors.New("switch case value must be a literal")
			}
			sw.Cases = append(sw.Cases, &Case{Value: lit, Body: orEmpty(c.Body)})
		}
		return sw, nil
	case "YulForLoop":
		cond, err := unmarshalExpression(n.Condition)
		if err != nil {
			return nil, err
		}
		return &ForLoop{Pre: orEmpty(n.Pre), Condition: cond, Post: orEmpty(n.Post), Body: orEmpty(n.Body)}, nil
	case "YulFunctionDefinition":
		return &FunctionDefinition{
			Name:       n.Name,
			Parameters: plainNames(n.Parameters),
			Returns:    plainNames(n.ReturnVariables),
			Body:       orEmpty(n.Body),
		}, nil
	case "YulBreak":
		return &Break{}, nil
	case "YulContinue":
		return &Continue{}, nil
	case "YulLeave":
		return &Leave{}, nil
	}
	return nil, fmt.Errorf("%w: %q", errNodeType, n.NodeType)
}

func unmarshalExpression(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 {
		return nil, errors.New("missing yul expression")
	}
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.NodeType {
	case "YulFunctionCall":
		if n.FunctionName == nil {
			return nil, errors.New("function call without a name")
		}
		call := &FunctionCall{Name: n.FunctionName.Name}
		for _, raw := range n.Arguments {
			arg, err := unmarshalExpression(raw)
			if err != nil {
				return nil, err
			}
			call.Arguments = append(call.Arguments, arg)
		}
		return call, nil
	case "YulIdentifier":
		return &Identifier{Name: n.Name}, nil
	case "YulLiteral":
		lit := &Literal{Kind: n.Kind}
		if err := json.Unmarshal(n.Value, &lit.Value); err != nil {
			return nil, fmt.Errorf("invalid literal value: %w", err)
		}
		return lit, nil
	}
	return nil, fmt.Errorf("%w: %q", errNodeType, n.NodeType)
}

func orEmpty(b *Block) *Block {
	if b == nil {
		return &Block{}
	}
	return b
}
