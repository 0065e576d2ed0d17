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

// Inspect traverses the statements of a block in depth-first order, calling
// f for every function call expression.
func Inspect(b *Block, f func(*FunctionCall)) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		inspectStatement(stmt, f)
	}
}

func inspectStatement(s Statement, f func(*FunctionCall)) {
	switch s := s.(type) {
	case *Block:
		Inspect(s, f)
	case *ExpressionStatement:
		inspectExpression(s.Expression, f)
	case *VariableDeclaration:
		inspectExpression(s.Value, f)
	case *Assignment:
		inspectExpression(s.Value, f)
	case *If:
		inspectExpression(s.Condition, f)
		Inspect(s.Body, f)
	case *Switch:
		inspectExpression(s.Expression, f)
		for _, c := range s.Cases {
			Inspect(c.Body, f)
		}
		Inspect(s.Default, f)
	case *ForLoop:
		Inspect(s.Pre, f)
		inspectExpression(s.Condition, f)
		Inspect(s.Post, f)
		Inspect(s.Body, f)
	case *FunctionDefinition:
		Inspect(s.Body, f)
	}
}

func inspectExpression(e Expression, f func(*FunctionCall)) {
	call, ok := e.(*FunctionCall)
	if !ok {
		return
	}
	f(call)
	for _, arg := range call.Arguments {
		inspectExpression(arg, f)
	}
}

// literalArguments collects the string literal arguments of calls to any of
// the named builtins.
func literalArguments(b *Block, names ...string) []string {
	var out []string
	Inspect(b, func(call *FunctionCall) {
		for _, name := range names {
			if call.Name != name || len(call.Arguments) != 1 {
				continue
			}
			if lit, ok := call.Arguments[0].(*Literal); ok && lit.Kind == StringLiteral {
				out = append(out, lit.Value)
			}
		}
	})
	return out
}
