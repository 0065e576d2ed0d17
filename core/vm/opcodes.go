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

package vm

import (
	"fmt"
)

// OpCode is an EVM opcode
// OpCode 是一个 EVM 操作码。只保留 legacy EVM（非 EOF）指令，代码生成器只面向 legacy 字节码。
type OpCode byte

// IsPush specifies if an opcode is a PUSH opcode.
func (op OpCode) IsPush() bool {
	return PUSH0 <= op && op <= PUSH32
}

// PushSize returns the number of immediate bytes following a PUSH opcode.
// PushSize 返回 PUSH 操作码之后的立即数字节数。
func (op OpCode) PushSize() int {
	if PUSH1 <= op && op <= PUSH32 {
		return int(op-PUSH1) + 1
	}
	return 0
}

// PushN returns the PUSH opcode carrying n immediate bytes.
func PushN(n int) OpCode {
	if n <= 0 {
		return PUSH0
	}
	if n > 32 {
		panic(fmt.Sprintf("push of %d bytes", n))
	}
	return PUSH1 + OpCode(n-1)
}

// DupN returns DUP1..DUP16.
func DupN(n int) OpCode { return DUP1 + OpCode(n-1) }

// SwapN returns SWAP1..SWAP16.
func SwapN(n int) OpCode { return SWAP1 + OpCode(n-1) }


// 0x0 range - arithmetic ops.
const (
	STOP           OpCode = 0x0 // 停止执行
	ADD            OpCode = 0x1 // 加法
	MUL            OpCode = 0x2 // 乘法
	SUB            OpCode = 0x3 // 减法
	DIV            OpCode = 0x4 // 除法
	SDIV           OpCode = 0x5 // 有符号除法
	MOD            OpCode = 0x6 // 取模
	SMOD           OpCode = 0x7 // 有符号取模
	ADDMOD         OpCode = 0x8 // 加法后取模
	MULMOD         OpCode = 0x9 // 乘法后取模
	EXP            OpCode = 0xa // 指数运算
	SIGNEXTEND     OpCode = 0xb // 符号扩展
)

// 0x10 range - comparison ops.
const (
	LT             OpCode = 0x10 // 小于
	GT             OpCode = 0x11 // 大于
	SLT            OpCode = 0x12 // 有符号小于
	SGT            OpCode = 0x13 // 有符号大于
	EQ             OpCode = 0x14 // 等于
	ISZERO         OpCode = 0x15 // 是否为零
	AND            OpCode = 0x16 // 位与
	OR             OpCode = 0x17 // 位或
	XOR            OpCode = 0x18 // 位异或
	NOT            OpCode = 0x19 // 位非
	BYTE           OpCode = 0x1a // 提取字节
	SHL            OpCode = 0x1b // 左移
	SHR            OpCode = 0x1c // 右移
	SAR            OpCode = 0x1d // 有符号右移
)

// 0x20 range - crypto.
const (
	KECCAK256      OpCode = 0x20 // 计算 Keccak-256 哈希
)

// 0x30 range - closure state.
const (
	ADDRESS        OpCode = 0x30
	BALANCE        OpCode = 0x31
	ORIGIN         OpCode = 0x32
	CALLER         OpCode = 0x33
	CALLVALUE      OpCode = 0x34
	CALLDATALOAD   OpCode = 0x35
	CALLDATASIZE   OpCode = 0x36
	CALLDATACOPY   OpCode = 0x37
	CODESIZE       OpCode = 0x38
	CODECOPY       OpCode = 0x39
	GASPRICE       OpCode = 0x3a
	EXTCODESIZE    OpCode = 0x3b
	EXTCODECOPY    OpCode = 0x3c
	RETURNDATASIZE OpCode = 0x3d
	RETURNDATACOPY OpCode = 0x3e
	EXTCODEHASH    OpCode = 0x3f
)

// 0x40 range - block operations.
const (
	BLOCKHASH      OpCode = 0x40
	COINBASE       OpCode = 0x41
	TIMESTAMP      OpCode = 0x42
	NUMBER         OpCode = 0x43
	PREVRANDAO     OpCode = 0x44
	GASLIMIT       OpCode = 0x45
	CHAINID        OpCode = 0x46
	SELFBALANCE    OpCode = 0x47
	BASEFEE        OpCode = 0x48
	BLOBHASH       OpCode = 0x49
	BLOBBASEFEE    OpCode = 0x4a
	DIFFICULTY     OpCode = 0x44 // Same as PREVRANDAO
)

// 0x50 range - 'storage' and execution.
const (
	POP            OpCode = 0x50
	MLOAD          OpCode = 0x51
	MSTORE         OpCode = 0x52
	MSTORE8        OpCode = 0x53
	SLOAD          OpCode = 0x54
	SSTORE         OpCode = 0x55
	JUMP           OpCode = 0x56
	JUMPI          OpCode = 0x57
	PC             OpCode = 0x58
	MSIZE          OpCode = 0x59
	GAS            OpCode = 0x5a
	JUMPDEST       OpCode = 0x5b
	TLOAD          OpCode = 0x5c
	TSTORE         OpCode = 0x5d
	MCOPY          OpCode = 0x5e
	PUSH0          OpCode = 0x5f
)

// 0x60 range - pushes.
const (
	PUSH1          OpCode = 0x60
	PUSH2          OpCode = 0x61
	PUSH3          OpCode = 0x62
	PUSH4          OpCode = 0x63
	PUSH5          OpCode = 0x64
	PUSH6          OpCode = 0x65
	PUSH7          OpCode = 0x66
	PUSH8          OpCode = 0x67
	PUSH9          OpCode = 0x68
	PUSH10         OpCode = 0x69
	PUSH11         OpCode = 0x6a
	PUSH12         OpCode = 0x6b
	PUSH13         OpCode = 0x6c
	PUSH14         OpCode = 0x6d
	PUSH15         OpCode = 0x6e
	PUSH16         OpCode = 0x6f
	PUSH17         OpCode = 0x70
	PUSH18         OpCode = 0x71
	PUSH19         OpCode = 0x72
	PUSH20         OpCode = 0x73
	PUSH21         OpCode = 0x74
	PUSH22         OpCode = 0x75
	PUSH23         OpCode = 0x76
	PUSH24         OpCode = 0x77
	PUSH25         OpCode = 0x78
	PUSH26         OpCode = 0x79
	PUSH27         OpCode = 0x7a
	PUSH28         OpCode = 0x7b
	PUSH29         OpCode = 0x7c
	PUSH30         OpCode = 0x7d
	PUSH31         OpCode = 0x7e
	PUSH32         OpCode = 0x7f
)

// 0x80 range - dups.
const (
	DUP1           OpCode = 0x80
	DUP2           OpCode = 0x81
	DUP3           OpCode = 0x82
	DUP4           OpCode = 0x83
	DUP5           OpCode = 0x84
	DUP6           OpCode = 0x85
	DUP7           OpCode = 0x86
	DUP8           OpCode = 0x87
	DUP9           OpCode = 0x88
	DUP10          OpCode = 0x89
	DUP11          OpCode = 0x8a
	DUP12          OpCode = 0x8b
	DUP13          OpCode = 0x8c
	DUP14          OpCode = 0x8d
	DUP15          OpCode = 0x8e
	DUP16          OpCode = 0x8f
)

// 0x90 range - swaps.
const (
	SWAP1          OpCode = 0x90
	SWAP2          OpCode = 0x91
	SWAP3          OpCode = 0x92
	SWAP4          OpCode = 0x93
	SWAP5          OpCode = 0x94
	SWAP6          OpCode = 0x95
	SWAP7          OpCode = 0x96
	SWAP8          OpCode = 0x97
	SWAP9          OpCode = 0x98
	SWAP10         OpCode = 0x99
	SWAP11         OpCode = 0x9a
	SWAP12         OpCode = 0x9b
	SWAP13         OpCode = 0x9c
	SWAP14         OpCode = 0x9d
	SWAP15         OpCode = 0x9e
	SWAP16         OpCode = 0x9f
)

// 0xa0 range - logging ops.
const (
	LOG0           OpCode = 0xa0
	LOG1           OpCode = 0xa1
	LOG2           OpCode = 0xa2
	LOG3           OpCode = 0xa3
	LOG4           OpCode = 0xa4
)

// 0xf0 range - closures.
const (
	CREATE         OpCode = 0xf0
	CALL           OpCode = 0xf1
	CALLCODE       OpCode = 0xf2
	RETURN         OpCode = 0xf3
	DELEGATECALL   OpCode = 0xf4
	CREATE2        OpCode = 0xf5
	STATICCALL     OpCode = 0xfa
	REVERT         OpCode = 0xfd
	INVALID        OpCode = 0xfe
	SELFDESTRUCT   OpCode = 0xff
)

type stackIO struct{ pops, pushes int }

var opCodeToString = [256]string{
	STOP:           "STOP",
	ADD:            "ADD",
	MUL:            "MUL",
	SUB:            "SUB",
	DIV:            "DIV",
	SDIV:           "SDIV",
	MOD:            "MOD",
	SMOD:           "SMOD",
	ADDMOD:         "ADDMOD",
	MULMOD:         "MULMOD",
	EXP:            "EXP",
	SIGNEXTEND:     "SIGNEXTEND",
	LT:             "LT",
	GT:             "GT",
	SLT:            "SLT",
	SGT:            "SGT",
	EQ:             "EQ",
	ISZERO:         "ISZERO",
	AND:            "AND",
	OR:             "OR",
	XOR:            "XOR",
	NOT:            "NOT",
	BYTE:           "BYTE",
	SHL:            "SHL",
	SHR:            "SHR",
	SAR:            "SAR",
	KECCAK256:      "KECCAK256",
	ADDRESS:        "ADDRESS",
	BALANCE:        "BALANCE",
	ORIGIN:         "ORIGIN",
	CALLER:         "CALLER",
	CALLVALUE:      "CALLVALUE",
	CALLDATALOAD:   "CALLDATALOAD",
	CALLDATASIZE:   "CALLDATASIZE",
	CALLDATACOPY:   "CALLDATACOPY",
	CODESIZE:       "CODESIZE",
	CODECOPY:       "CODECOPY",
	GASPRICE:       "GASPRICE",
	EXTCODESIZE:    "EXTCODESIZE",
	EXTCODECOPY:    "EXTCODECOPY",
	RETURNDATASIZE: "RETURNDATASIZE",
	RETURNDATACOPY: "RETURNDATACOPY",
	EXTCODEHASH:    "EXTCODEHASH",
	BLOCKHASH:      "BLOCKHASH",
	COINBASE:       "COINBASE",
	TIMESTAMP:      "TIMESTAMP",
	NUMBER:         "NUMBER",
	PREVRANDAO:     "PREVRANDAO",
	GASLIMIT:       "GASLIMIT",
	CHAINID:        "CHAINID",
	SELFBALANCE:    "SELFBALANCE",
	BASEFEE:        "BASEFEE",
	BLOBHASH:       "BLOBHASH",
	BLOBBASEFEE:    "BLOBBASEFEE",
	POP:            "POP",
	MLOAD:          "MLOAD",
	MSTORE:         "MSTORE",
	MSTORE8:        "MSTORE8",
	SLOAD:          "SLOAD",
	SSTORE:         "SSTORE",
	JUMP:           "JUMP",
	JUMPI:          "JUMPI",
	PC:             "PC",
	MSIZE:          "MSIZE",
	GAS:            "GAS",
	JUMPDEST:       "JUMPDEST",
	TLOAD:          "TLOAD",
	TSTORE:         "TSTORE",
	MCOPY:          "MCOPY",
	PUSH0:          "PUSH0",
	PUSH1:          "PUSH1",
	PUSH2:          "PUSH2",
	PUSH3:          "PUSH3",
	PUSH4:          "PUSH4",
	PUSH5:          "PUSH5",
	PUSH6:          "PUSH6",
	PUSH7:          "PUSH7",
	PUSH8:          "PUSH8",
	PUSH9:          "PUSH9",
	PUSH10:         "PUSH10",
	PUSH11:         "PUSH11",
	PUSH12:         "PUSH12",
	PUSH13:         "PUSH13",
	PUSH14:         "PUSH14",
	PUSH15:         "PUSH15",
	PUSH16:         "PUSH16",
	PUSH17:         "PUSH17",
	PUSH18:         "PUSH18",
	PUSH19:         "PUSH19",
	PUSH20:         "PUSH20",
	PUSH21:         "PUSH21",
	PUSH22:         "PUSH22",
	PUSH23:         "PUSH23",
	PUSH24:         "PUSH24",
	PUSH25:         "PUSH25",
	PUSH26:         "PUSH26",
	PUSH27:         "PUSH27",
	PUSH28:         "PUSH28",
	PUSH29:         "PUSH29",
	PUSH30:         "PUSH30",
	PUSH31:         "PUSH31",
	PUSH32:         "PUSH32",
	DUP1:           "DUP1",
	DUP2:           "DUP2",
	DUP3:           "DUP3",
	DUP4:           "DUP4",
	DUP5:           "DUP5",
	DUP6:           "DUP6",
	DUP7:           "DUP7",
	DUP8:           "DUP8",
	DUP9:           "DUP9",
	DUP10:          "DUP10",
	DUP11:          "DUP11",
	DUP12:          "DUP12",
	DUP13:          "DUP13",
	DUP14:          "DUP14",
	DUP15:          "DUP15",
	DUP16:          "DUP16",
	SWAP1:          "SWAP1",
	SWAP2:          "SWAP2",
	SWAP3:          "SWAP3",
	SWAP4:          "SWAP4",
	SWAP5:          "SWAP5",
	SWAP6:          "SWAP6",
	SWAP7:          "SWAP7",
	SWAP8:          "SWAP8",
	SWAP9:          "SWAP9",
	SWAP10:         "SWAP10",
	SWAP11:         "SWAP11",
	SWAP12:         "SWAP12",
	SWAP13:         "SWAP13",
	SWAP14:         "SWAP14",
	SWAP15:         "SWAP15",
	SWAP16:         "SWAP16",
	LOG0:           "LOG0",
	LOG1:           "LOG1",
	LOG2:           "LOG2",
	LOG3:           "LOG3",
	LOG4:           "LOG4",
	CREATE:         "CREATE",
	CALL:           "CALL",
	CALLCODE:       "CALLCODE",
	RETURN:         "RETURN",
	DELEGATECALL:   "DELEGATECALL",
	CREATE2:        "CREATE2",
	STATICCALL:     "STATICCALL",
	REVERT:         "REVERT",
	INVALID:        "INVALID",
	SELFDESTRUCT:   "SELFDESTRUCT",
}

var opCodeStack = [256]*stackIO{
	STOP:           {0, 0},
	ADD:            {2, 1},
	MUL:            {2, 1},
	SUB:            {2, 1},
	DIV:            {2, 1},
	SDIV:           {2, 1},
	MOD:            {2, 1},
	SMOD:           {2, 1},
	ADDMOD:         {3, 1},
	MULMOD:         {3, 1},
	EXP:            {2, 1},
	SIGNEXTEND:     {2, 1},
	LT:             {2, 1},
	GT:             {2, 1},
	SLT:            {2, 1},
	SGT:            {2, 1},
	EQ:             {2, 1},
	ISZERO:         {1, 1},
	AND:            {2, 1},
	OR:             {2, 1},
	XOR:            {2, 1},
	NOT:            {1, 1},
	BYTE:           {2, 1},
	SHL:            {2, 1},
	SHR:            {2, 1},
	SAR:            {2, 1},
	KECCAK256:      {2, 1},
	ADDRESS:        {0, 1},
	BALANCE:        {1, 1},
	ORIGIN:         {0, 1},
	CALLER:         {0, 1},
	CALLVALUE:      {0, 1},
	CALLDATALOAD:   {1, 1},
	CALLDATASIZE:   {0, 1},
	CALLDATACOPY:   {3, 0},
	CODESIZE:       {0, 1},
	CODECOPY:       {3, 0},
	GASPRICE:       {0, 1},
	EXTCODESIZE:    {1, 1},
	EXTCODECOPY:    {4, 0},
	RETURNDATASIZE: {0, 1},
	RETURNDATACOPY: {3, 0},
	EXTCODEHASH:    {1, 1},
	BLOCKHASH:      {1, 1},
	COINBASE:       {0, 1},
	TIMESTAMP:      {0, 1},
	NUMBER:         {0, 1},
	PREVRANDAO:     {0, 1},
	GASLIMIT:       {0, 1},
	CHAINID:        {0, 1},
	SELFBALANCE:    {0, 1},
	BASEFEE:        {0, 1},
	BLOBHASH:       {1, 1},
	BLOBBASEFEE:    {0, 1},
	POP:            {1, 0},
	MLOAD:          {1, 1},
	MSTORE:         {2, 0},
	MSTORE8:        {2, 0},
	SLOAD:          {1, 1},
	SSTORE:         {2, 0},
	JUMP:           {1, 0},
	JUMPI:          {2, 0},
	PC:             {0, 1},
	MSIZE:          {0, 1},
	GAS:            {0, 1},
	JUMPDEST:       {0, 0},
	TLOAD:          {1, 1},
	TSTORE:         {2, 0},
	MCOPY:          {3, 0},
	PUSH0:          {0, 1},
	PUSH1:          {0, 1},
	PUSH2:          {0, 1},
	PUSH3:          {0, 1},
	PUSH4:          {0, 1},
	PUSH5:          {0, 1},
	PUSH6:          {0, 1},
	PUSH7:          {0, 1},
	PUSH8:          {0, 1},
	PUSH9:          {0, 1},
	PUSH10:         {0, 1},
	PUSH11:         {0, 1},
	PUSH12:         {0, 1},
	PUSH13:         {0, 1},
	PUSH14:         {0, 1},
	PUSH15:         {0, 1},
	PUSH16:         {0, 1},
	PUSH17:         {0, 1},
	PUSH18:         {0, 1},
	PUSH19:         {0, 1},
	PUSH20:         {0, 1},
	PUSH21:         {0, 1},
	PUSH22:         {0, 1},
	PUSH23:         {0, 1},
	PUSH24:         {0, 1},
	PUSH25:         {0, 1},
	PUSH26:         {0, 1},
	PUSH27:         {0, 1},
	PUSH28:         {0, 1},
	PUSH29:         {0, 1},
	PUSH30:         {0, 1},
	PUSH31:         {0, 1},
	PUSH32:         {0, 1},
	DUP1:           {1, 2},
	DUP2:           {2, 3},
	DUP3:           {3, 4},
	DUP4:           {4, 5},
	DUP5:           {5, 6},
	DUP6:           {6, 7},
	DUP7:           {7, 8},
	DUP8:           {8, 9},
	DUP9:           {9, 10},
	DUP10:          {10, 11},
	DUP11:          {11, 12},
	DUP12:          {12, 13},
	DUP13:          {13, 14},
	DUP14:          {14, 15},
	DUP15:          {15, 16},
	DUP16:          {16, 17},
	SWAP1:          {2, 2},
	SWAP2:          {3, 3},
	SWAP3:          {4, 4},
	SWAP4:          {5, 5},
	SWAP5:          {6, 6},
	SWAP6:          {7, 7},
	SWAP7:          {8, 8},
	SWAP8:          {9, 9},
	SWAP9:          {10, 10},
	SWAP10:         {11, 11},
	SWAP11:         {12, 12},
	SWAP12:         {13, 13},
	SWAP13:         {14, 14},
	SWAP14:         {15, 15},
	SWAP15:         {16, 16},
	SWAP16:         {17, 17},
	LOG0:           {2, 0},
	LOG1:           {3, 0},
	LOG2:           {4, 0},
	LOG3:           {5, 0},
	LOG4:           {6, 0},
	CREATE:         {3, 1},
	CALL:           {7, 1},
	CALLCODE:       {7, 1},
	RETURN:         {2, 0},
	DELEGATECALL:   {6, 1},
	CREATE2:        {4, 1},
	STATICCALL:     {6, 1},
	REVERT:         {2, 0},
	INVALID:        {0, 0},
	SELFDESTRUCT:   {1, 0},
}

func (op OpCode) String() string {
	if s := opCodeToString[op]; s != "" {
		return s
	}
	return fmt.Sprintf("opcode %#x not defined", int(op))
}

// StackIO reports how many stack items the opcode consumes and produces.
// The last return value is false for undefined opcodes.
// StackIO 返回该操作码消耗和产生的栈元素数量。
func (op OpCode) StackIO() (pops, pushes int, ok bool) {
	io := opCodeStack[op]
	if io == nil {
		return 0, 0, false
	}
	return io.pops, io.pushes, true
}

var stringToOp = map[string]OpCode{
	"STOP":           STOP,
	"ADD":            ADD,
	"MUL":            MUL,
	"SUB":            SUB,
	"DIV":            DIV,
	"SDIV":           SDIV,
	"MOD":            MOD,
	"SMOD":           SMOD,
	"ADDMOD":         ADDMOD,
	"MULMOD":         MULMOD,
	"EXP":            EXP,
	"SIGNEXTEND":     SIGNEXTEND,
	"LT":             LT,
	"GT":             GT,
	"SLT":            SLT,
	"SGT":            SGT,
	"EQ":             EQ,
	"ISZERO":         ISZERO,
	"AND":            AND,
	"OR":             OR,
	"XOR":            XOR,
	"NOT":            NOT,
	"BYTE":           BYTE,
	"SHL":            SHL,
	"SHR":            SHR,
	"SAR":            SAR,
	"KECCAK256":      KECCAK256,
	"ADDRESS":        ADDRESS,
	"BALANCE":        BALANCE,
	"ORIGIN":         ORIGIN,
	"CALLER":         CALLER,
	"CALLVALUE":      CALLVALUE,
	"CALLDATALOAD":   CALLDATALOAD,
	"CALLDATASIZE":   CALLDATASIZE,
	"CALLDATACOPY":   CALLDATACOPY,
	"CODESIZE":       CODESIZE,
	"CODECOPY":       CODECOPY,
	"GASPRICE":       GASPRICE,
	"EXTCODESIZE":    EXTCODESIZE,
	"EXTCODECOPY":    EXTCODECOPY,
	"RETURNDATASIZE": RETURNDATASIZE,
	"RETURNDATACOPY": RETURNDATACOPY,
	"EXTCODEHASH":    EXTCODEHASH,
	"BLOCKHASH":      BLOCKHASH,
	"COINBASE":       COINBASE,
	"TIMESTAMP":      TIMESTAMP,
	"NUMBER":         NUMBER,
	"PREVRANDAO":     PREVRANDAO,
	"GASLIMIT":       GASLIMIT,
	"CHAINID":        CHAINID,
	"SELFBALANCE":    SELFBALANCE,
	"BASEFEE":        BASEFEE,
	"BLOBHASH":       BLOBHASH,
	"BLOBBASEFEE":    BLOBBASEFEE,
	"POP":            POP,
	"MLOAD":          MLOAD,
	"MSTORE":         MSTORE,
	"MSTORE8":        MSTORE8,
	"SLOAD":          SLOAD,
	"SSTORE":         SSTORE,
	"JUMP":           JUMP,
	"JUMPI":          JUMPI,
	"PC":             PC,
	"MSIZE":          MSIZE,
	"GAS":            GAS,
	"JUMPDEST":       JUMPDEST,
	"TLOAD":          TLOAD,
	"TSTORE":         TSTORE,
	"MCOPY":          MCOPY,
	"PUSH0":          PUSH0,
	"PUSH1":          PUSH1,
	"PUSH2":          PUSH2,
	"PUSH3":          PUSH3,
	"PUSH4":          PUSH4,
	"PUSH5":          PUSH5,
	"PUSH6":          PUSH6,
	"PUSH7":          PUSH7,
	"PUSH8":          PUSH8,
	"PUSH9":          PUSH9,
	"PUSH10":         PUSH10,
	"PUSH11":         PUSH11,
	"PUSH12":         PUSH12,
	"PUSH13":         PUSH13,
	"PUSH14":         PUSH14,
	"PUSH15":         PUSH15,
	"PUSH16":         PUSH16,
	"PUSH17":         PUSH17,
	"PUSH18":         PUSH18,
	"PUSH19":         PUSH19,
	"PUSH20":         PUSH20,
	"PUSH21":         PUSH21,
	"PUSH22":         PUSH22,
	"PUSH23":         PUSH23,
	"PUSH24":         PUSH24,
	"PUSH25":         PUSH25,
	"PUSH26":         PUSH26,
	"PUSH27":         PUSH27,
	"PUSH28":         PUSH28,
	"PUSH29":         PUSH29,
	"PUSH30":         PUSH30,
	"PUSH31":         PUSH31,
	"PUSH32":         PUSH32,
	"DUP1":           DUP1,
	"DUP2":           DUP2,
	"DUP3":           DUP3,
	"DUP4":           DUP4,
	"DUP5":           DUP5,
	"DUP6":           DUP6,
	"DUP7":           DUP7,
	"DUP8":           DUP8,
	"DUP9":           DUP9,
	"DUP10":          DUP10,
	"DUP11":          DUP11,
	"DUP12":          DUP12,
	"DUP13":          DUP13,
	"DUP14":          DUP14,
	"DUP15":          DUP15,
	"DUP16":          DUP16,
	"SWAP1":          SWAP1,
	"SWAP2":          SWAP2,
	"SWAP3":          SWAP3,
	"SWAP4":          SWAP4,
	"SWAP5":          SWAP5,
	"SWAP6":          SWAP6,
	"SWAP7":          SWAP7,
	"SWAP8":          SWAP8,
	"SWAP9":          SWAP9,
	"SWAP10":         SWAP10,
	"SWAP11":         SWAP11,
	"SWAP12":         SWAP12,
	"SWAP13":         SWAP13,
	"SWAP14":         SWAP14,
	"SWAP15":         SWAP15,
	"SWAP16":         SWAP16,
	"LOG0":           LOG0,
	"LOG1":           LOG1,
	"LOG2":           LOG2,
	"LOG3":           LOG3,
	"LOG4":           LOG4,
	"CREATE":         CREATE,
	"CALL":           CALL,
	"CALLCODE":       CALLCODE,
	"RETURN":         RETURN,
	"DELEGATECALL":   DELEGATECALL,
	"CREATE2":        CREATE2,
	"STATICCALL":     STATICCALL,
	"REVERT":         REVERT,
	"INVALID":        INVALID,
	"SELFDESTRUCT":   SELFDESTRUCT,
	"DIFFICULTY": DIFFICULTY,
	"SHA3":       KECCAK256,
}

// StringToOp finds the opcode whose name is stored in `str`.
func StringToOp(str string) OpCode {
	return stringToOp[str]
}

// LookupOp finds the opcode whose name is stored in `str`, reporting whether
// the name is known. Unlike StringToOp it can tell STOP from an unknown name.
func LookupOp(str string) (OpCode, bool) {
	op, ok := stringToOp[str]
	return op, ok
}
