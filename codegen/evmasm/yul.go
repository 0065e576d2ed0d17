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

package evmasm

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/core/asm"
	"github.com/sunyihoo/solx/core/vm"
	"github.com/sunyihoo/solx/ir/yul"
)

// Yul 降级 (Yul lowering): 参数从右向左求值，使第一个参数位于栈顶，与 EVM 操作码一致。
// 函数调用约定：调用方压入返回标签和参数；被调用方退出时栈为 [返回值..., 返回标签]。

// builtin describes a Yul builtin that is not a plain opcode.
type builtin struct {
	args, rets int
	literal    []int // argument positions that must be literals
}

var builtins = map[string]builtin{
	"datasize":      {args: 1, rets: 1, literal: []int{0}},
	"dataoffset":    {args: 1, rets: 1, literal: []int{0}},
	"datacopy":      {args: 3, rets: 0},
	"linkersymbol":  {args: 1, rets: 1, literal: []int{0}},
	"loadimmutable": {args: 1, rets: 1, literal: []int{0}},
	"setimmutable":  {args: 3, rets: 0, literal: []int{1}},
	"memoryguard":   {args: 1, rets: 1, literal: []int{0}},
}

// opcodeBuiltin returns the opcode a Yul builtin maps to. Stack and control
// flow opcodes are not callable from Yul.
func opcodeBuiltin(name string) (vm.OpCode, bool) {
	if name != strings.ToLower(name) {
		return 0, false
	}
	op, ok := asm.ToBinary(name)
	if !ok || op.IsPush() || (op >= vm.DUP1 && op <= vm.SWAP16) {
		return 0, false
	}
	switch op {
	case vm.JUMP, vm.JUMPI, vm.JUMPDEST, vm.PC:
		return 0, false
	}
	return op, true
}

// arity returns the argument and result counts of a builtin or function.
func arity(name string, functions map[string]*yul.FunctionDefinition) (args, rets int, ok bool) {
	if b, ok := builtins[name]; ok {
		return b.args, b.rets, true
	}
	if op, ok := opcodeBuiltin(name); ok {
		args, rets, _ := op.StackIO()
		return args, rets, true
	}
	if f, ok := functions[name]; ok {
		return len(f.Parameters), len(f.Returns), true
	}
	return 0, 0, false
}

// verbatimArity parses the counts of a verbatim_<n>i_<m>o builtin.
func verbatimArity(name string) (args, rets int, ok bool) {
	if !strings.HasPrefix(name, "verbatim_") {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(name, "verbatim_%di_%do", &args, &rets); err != nil {
		return 0, 0, false
	}
	return args + 1, rets, true
}

// walkStatements calls f for every statement of the block, recursively.
func walkStatements(b *yul.Block, f func(yul.Statement)) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		f(stmt)
		switch s := stmt.(type) {
		case *yul.Block:
			walkStatements(s, f)
		case *yul.If:
			walkStatements(s.Body, f)
		case *yul.Switch:
			for _, c := range s.Cases {
				walkStatements(c.Body, f)
			}
			walkStatements(s.Default, f)
		case *yul.ForLoop:
			walkStatements(s.Pre, f)
			walkStatements(s.Post, f)
			walkStatements(s.Body, f)
		case *yul.FunctionDefinition:
			walkStatements(s.Body, f)
		}
	}
}

// declareYul collects the function definitions of the object code and
// checks every call against them and the builtins.
func declareYul(object *yul.Object) ([]*yul.FunctionDefinition, error) {
	var (
		errs      *multierror.Error
		functions []*yul.FunctionDefinition
		byName    = make(map[string]*yul.FunctionDefinition)
	)
	if object.Code == nil {
		return nil, fmt.Errorf("object %q has no code", object.Identifier)
	}
	walkStatements(object.Code, func(s yul.Statement) {
		f, ok := s.(*yul.FunctionDefinition)
		if !ok {
			return
		}
		if _, exists := byName[f.Name]; exists {
			errs = multierror.Append(errs, fmt.Errorf("function %q declared twice", f.Name))
			return
		}
		if _, _, builtin := arity(f.Name, nil); builtin {
			errs = multierror.Append(errs, fmt.Errorf("function %q shadows a builtin", f.Name))
			return
		}
		byName[f.Name] = f
		functions = append(functions, f)
	})
	yul.Inspect(object.Code, func(call *yul.FunctionCall) {
		args, _, ok := arity(call.Name, byName)
		if !ok {
			if args, _, ok = verbatimArity(call.Name); !ok {
				errs = multierror.Append(errs, fmt.Errorf("call to undefined function %q", call.Name))
				return
			}
		}
		if len(call.Arguments) != args {
			errs = multierror.Append(errs, fmt.Errorf("function %q expects %d arguments, got %d", call.Name, args, len(call.Arguments)))
			return
		}
		for _, i := range builtins[call.Name].literal {
			if _, ok := call.Arguments[i].(*yul.Literal); !ok {
				errs = multierror.Append(errs, fmt.Errorf("argument %d of %q must be a literal", i+1, call.Name))
			}
		}
	})
	return functions, errs.ErrorOrNil()
}

type loopLabels struct {
	height         int
	next, finished string
}

type frame struct {
	height int
	exit   string
}

// yulGen lowers the code of one Yul object.
type yulGen struct {
	ctx       *context
	object    *yul.Object
	stack     *stack
	functions map[string]*yul.FunctionDefinition
	data      map[string]struct{} // referenced data entries
	loops     []loopLabels
	frame     *frame
	labels    int
}

func (c *context) emitYul(object *yul.Object) error {
	g := &yulGen{
		ctx:       c,
		object:    object,
		stack:     &stack{ctx: c},
		functions: make(map[string]*yul.FunctionDefinition, len(c.functions)),
		data:      make(map[string]struct{}),
	}
	for _, f := range c.functions {
		g.functions[f.Name] = f
	}
	if err := g.block(object.Code); err != nil {
		return err
	}
	c.emit(asm.Op(vm.STOP))
	for _, f := range c.functions {
		if err := g.function(f); err != nil {
			return fmt.Errorf("function %q: %w", f.Name, err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(g.data)) {
		c.emit(asm.Item{Kind: asm.Mark, Name: dataLabel(name)}, asm.Item{Kind: asm.Data, Value: object.Data[name]})
	}
	return nil
}

func dataLabel(name string) string { return "data_" + name }

func functionLabel(name string) string { return "fn_" + name }

func (g *yulGen) newLabel(prefix string) string {
	g.labels++
	return fmt.Sprintf("%s_%d", prefix, g.labels)
}

func (g *yulGen) block(b *yul.Block) error {
	if b == nil {
		return nil
	}
	height := g.stack.height()
	if err := g.statements(b.Statements); err != nil {
		return err
	}
	g.stack.popTo(height)
	return nil
}

func (g *yulGen) statements(stmts []yul.Statement) error {
	for _, stmt := range stmts {
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *yulGen) statement(stmt yul.Statement) error {
	c := g.ctx
	switch s := stmt.(type) {
	case *yul.Block:
		return g.block(s)

	case *yul.ExpressionStatement:
		n, err := g.expression(s.Expression)
		if err != nil {
			return err
		}
		for range n {
			g.stack.pop()
		}

	case *yul.VariableDeclaration:
		if s.Value == nil {
			for _, name := range s.Names {
				c.emit(asm.PushUint64(0))
				g.stack.push(name)
			}
			return nil
		}
		n, err := g.expression(s.Value)
		if err != nil {
			return err
		}
		if n != len(s.Names) {
			return fmt.Errorf("declaration of %d variables from %d values", len(s.Names), n)
		}
		copy(g.stack.slots[g.stack.height()-n:], s.Names)

	case *yul.Assignment:
		n, err := g.expression(s.Value)
		if err != nil {
			return err
		}
		if n != len(s.Names) {
			return fmt.Errorf("assignment of %d values to %d variables", n, len(s.Names))
		}
		for i := len(s.Names) - 1; i >= 0; i-- {
			slot, ok := g.stack.lookup(s.Names[i])
			if !ok {
				return fmt.Errorf("assignment to undefined variable %q", s.Names[i])
			}
			g.stack.store(slot)
		}

	case *yul.If:
		end := g.newLabel("if_end")
		if err := g.value(s.Condition); err != nil {
			return err
		}
		c.emit(asm.Op(vm.ISZERO), asm.PushTag(end), asm.Op(vm.JUMPI))
		g.stack.drop(1)
		if err := g.block(s.Body); err != nil {
			return err
		}
		c.emit(asm.Tag(end))

	case *yul.Switch:
		return g.switchStatement(s)

	case *yul.ForLoop:
		return g.forLoop(s)

	case *yul.FunctionDefinition:
		// Emitted out of line after the object code.

	case *yul.Break, *yul.Continue:
		if len(g.loops) == 0 {
			return errors.New("break or continue outside of a loop")
		}
		loop := g.loops[len(g.loops)-1]
		target := loop.finished
		if _, ok := s.(*yul.Continue); ok {
			target = loop.next
		}
		g.stack.emitPops(loop.height)
		c.emit(asm.PushTag(target), asm.Op(vm.JUMP))

	case *yul.Leave:
		if g.frame == nil {
			return errors.New("leave outside of a function")
		}
		g.stack.emitPops(g.frame.height)
		c.emit(asm.PushTag(g.frame.exit), asm.Op(vm.JUMP))

	default:
		return fmt.Errorf("unknown statement %T", stmt)
	}
	return nil
}

func (g *yulGen) switchStatement(s *yul.Switch) error {
	c := g.ctx
	if err := g.value(s.Expression); err != nil {
		return err
	}
	end := g.newLabel("switch_end")
	labels := make([]string, len(s.Cases))
	for i, cs := range s.Cases {
		labels[i] = g.newLabel("case")
		if cs.Value == nil {
			return errors.New("switch case without a value")
		}
		value, err := g.literal(cs.Value)
		if err != nil {
			return err
		}
		c.emit(asm.Op(vm.DUP1), value, asm.Op(vm.EQ), asm.PushTag(labels[i]), asm.Op(vm.JUMPI))
	}
	fallback := end
	if s.Default != nil {
		fallback = g.newLabel("default")
	}
	c.emit(asm.PushTag(fallback), asm.Op(vm.JUMP))
	for i, cs := range s.Cases {
		c.emit(asm.Tag(labels[i]))
		if err := g.block(cs.Body); err != nil {
			return err
		}
		c.emit(asm.PushTag(end), asm.Op(vm.JUMP))
	}
	if s.Default != nil {
		c.emit(asm.Tag(fallback))
		if err := g.block(s.Default); err != nil {
			return err
		}
	}
	c.emit(asm.Tag(end))
	g.stack.pop()
	return nil
}

func (g *yulGen) forLoop(s *yul.ForLoop) error {
	c := g.ctx
	outer := g.stack.height()
	if s.Pre != nil {
		if err := g.statements(s.Pre.Statements); err != nil {
			return err
		}
	}
	start, next, end := g.newLabel("loop"), g.newLabel("loop_next"), g.newLabel("loop_end")
	c.emit(asm.Tag(start))
	if err := g.value(s.Condition); err != nil {
		return err
	}
	c.emit(asm.Op(vm.ISZERO), asm.PushTag(end), asm.Op(vm.JUMPI))
	g.stack.drop(1)

	g.loops = append(g.loops, loopLabels{height: g.stack.height(), next: next, finished: end})
	err := g.block(s.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if err != nil {
		return err
	}
	c.emit(asm.Tag(next))
	if err := g.block(s.Post); err != nil {
		return err
	}
	c.emit(asm.PushTag(start), asm.Op(vm.JUMP), asm.Tag(end))
	g.stack.popTo(outer)
	return nil
}

// function emits a function body. On entry the stack holds the return
// label below the arguments, the first argument on top.
func (g *yulGen) function(f *yul.FunctionDefinition) error {
	c := g.ctx
	const returnSlot = "@ret"

	saved, savedFrame, savedLoops := g.stack.slots, g.frame, g.loops
	defer func() { g.stack.slots, g.frame, g.loops = saved, savedFrame, savedLoops }()
	g.loops = nil

	g.stack.slots = []string{returnSlot}
	for i := len(f.Parameters) - 1; i >= 0; i-- {
		g.stack.push(f.Parameters[i])
	}
	c.emit(asm.Tag(functionLabel(f.Name)))
	for _, name := range f.Returns {
		c.emit(asm.PushUint64(0))
		g.stack.push(name)
	}
	g.frame = &frame{height: g.stack.height(), exit: g.newLabel("fn_exit")}
	if err := g.block(f.Body); err != nil {
		return err
	}
	c.emit(asm.Tag(g.frame.exit))
	g.stack.shuffle(0, append(slices.Clone(f.Returns), returnSlot))
	c.emit(asm.Op(vm.JUMP))
	return nil
}

// value evaluates an expression producing exactly one value.
func (g *yulGen) value(e yul.Expression) error {
	n, err := g.expression(e)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expression yields %d values where one is expected", n)
	}
	return nil
}

// expression evaluates an expression and returns the number of values it
// left on the stack.
func (g *yulGen) expression(e yul.Expression) (int, error) {
	switch e := e.(type) {
	case *yul.Literal:
		item, err := g.literal(e)
		if err != nil {
			return 0, err
		}
		g.ctx.emit(item)
		g.stack.push("")
		return 1, nil
	case *yul.Identifier:
		slot, ok := g.stack.lookup(e.Name)
		if !ok {
			return 0, fmt.Errorf("undefined variable %q", e.Name)
		}
		g.stack.dup(slot)
		return 1, nil
	case *yul.FunctionCall:
		return g.call(e)
	}
	return 0, fmt.Errorf("unknown expression %T", e)
}

func (g *yulGen) literal(l *yul.Literal) (asm.Item, error) {
	switch l.Kind {
	case yul.BoolLiteral:
		if l.Value == "true" {
			return asm.PushUint64(1), nil
		}
		return asm.PushUint64(0), nil
	case yul.StringLiteral:
		if len(l.Value) > 32 {
			g.ctx.errorf("string literal %q is longer than 32 bytes", l.Value)
		}
		word := make([]byte, 32)
		copy(word, l.Value)
		return asm.PushBytes(word), nil
	}
	v, err := asm.ParseNumber(l.Value)
	if err != nil {
		return asm.Item{}, err
	}
	return asm.PushInt(v), nil
}

// arguments evaluates call arguments right to left.
func (g *yulGen) arguments(args []yul.Expression) error {
	for i := len(args) - 1; i >= 0; i-- {
		if err := g.value(args[i]); err != nil {
			return err
		}
	}
	return nil
}

func literalValue(e yul.Expression) string {
	if l, ok := e.(*yul.Literal); ok {
		return l.Value
	}
	return ""
}

func (g *yulGen) call(call *yul.FunctionCall) (int, error) {
	c := g.ctx
	switch call.Name {
	case "datasize", "dataoffset":
		g.dataReference(call.Name, literalValue(call.Arguments[0]))
		g.stack.push("")
		return 1, nil

	case "datacopy":
		if err := g.arguments(call.Arguments); err != nil {
			return 0, err
		}
		c.emit(asm.Op(vm.CODECOPY))
		g.stack.drop(3)
		return 0, nil

	case "linkersymbol":
		c.emit(asm.Item{Kind: asm.PushSymbol, Size: 20, Tag: string(codegen.RelocationLibrary), Name: literalValue(call.Arguments[0])})
		g.stack.push("")
		return 1, nil

	case "loadimmutable":
		c.emit(asm.Item{Kind: asm.PushImmutable, Name: literalValue(call.Arguments[0])})
		g.stack.push("")
		return 1, nil

	case "setimmutable":
		if err := g.value(call.Arguments[2]); err != nil {
			return 0, err
		}
		if err := g.value(call.Arguments[0]); err != nil {
			return 0, err
		}
		c.assignImmutable(literalValue(call.Arguments[1]))
		g.stack.drop(2)
		return 0, nil

	case "memoryguard":
		return g.expression(call.Arguments[0])
	}

	if op, ok := opcodeBuiltin(call.Name); ok {
		if err := g.arguments(call.Arguments); err != nil {
			return 0, err
		}
		pops, pushes, _ := op.StackIO()
		c.emit(asm.Op(op))
		g.stack.drop(pops)
		g.stack.pushN(pushes)
		return pushes, nil
	}

	if f, ok := g.functions[call.Name]; ok {
		ret := g.newLabel("ret")
		c.emit(asm.PushTag(ret))
		g.stack.push("")
		if err := g.arguments(call.Arguments); err != nil {
			return 0, err
		}
		c.emit(asm.PushTag(functionLabel(f.Name)), asm.Op(vm.JUMP), asm.Tag(ret))
		g.stack.drop(len(f.Parameters) + 1)
		g.stack.pushN(len(f.Returns))
		return len(f.Returns), nil
	}

	if args, rets, ok := verbatimArity(call.Name); ok {
		c.errorf("builtin %q is not supported", call.Name)
		if err := g.arguments(call.Arguments); err != nil {
			return 0, err
		}
		for range args {
			g.stack.pop()
		}
		for range rets {
			c.emit(asm.Op(vm.INVALID))
			g.stack.push("")
		}
		return rets, nil
	}
	return 0, fmt.Errorf("call to undefined function %q", call.Name)
}

// dataReference pushes the offset or size of an object or data entry.
func (g *yulGen) dataReference(builtin, name string) {
	c := g.ctx
	if data, ok := g.object.Data[name]; ok {
		if builtin == "datasize" {
			c.emit(asm.PushUint64(uint64(len(data))))
			return
		}
		g.data[name] = struct{}{}
		c.emit(asm.PushTag(dataLabel(name)))
		return
	}
	if name == g.object.Identifier {
		if builtin == "datasize" {
			c.emit(asm.Item{Kind: asm.PushCodeSize})
		} else {
			c.emit(asm.PushUint64(0))
		}
		return
	}
	c.emit(asm.Item{Kind: asm.PushSymbol, Size: 4, Tag: builtin, Name: c.yulData.Resolve(name)})
}
