// Package ir defines the value and instruction model shared by every
// snippet: identifiers, local values, arithmetic operators, and the
// instruction variants a front-end lowers source text into.
package ir

import "fmt"

// Location is a source position. Only the line number is meaningful to the
// rest of the analyzer (it is all that ever reaches a diagnostic or an
// excepted-execution result).
type Location struct {
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("line %d", l.Line)
}

// ClassifyPrefix reports the kind tag of an identifier: 'l' local, 's'
// shared, 'v' volatile, 'm' monitor. The prefix is the kind — there is no
// separate declaration step.
func ClassifyPrefix(name string) (kind byte, ok bool) {
	if name == "" {
		return 0, false
	}
	switch name[0] {
	case 'l', 's', 'v', 'm':
		return name[0], true
	default:
		return 0, false
	}
}

// LocalValue is either a literal 32-bit unsigned constant or a reference to
// a Snippet's local table.
type LocalValue struct {
	isLiteral bool
	literal   uint32
	localID   int
}

// Literal builds a LocalValue holding a constant.
func Literal(v uint32) LocalValue {
	return LocalValue{isLiteral: true, literal: v}
}

// LocalRef builds a LocalValue referring to local slot id.
func LocalRef(id int) LocalValue {
	return LocalValue{localID: id}
}

// IsLiteral reports whether this value is a constant rather than a local
// reference.
func (v LocalValue) IsLiteral() bool { return v.isLiteral }

// LiteralValue returns the constant. Only valid when IsLiteral is true.
func (v LocalValue) LiteralValue() uint32 { return v.literal }

// LocalID returns the referenced local slot. Only valid when IsLiteral is
// false.
func (v LocalValue) LocalID() int { return v.localID }

// ArithmeticOp is one of the eight arithmetic/bitwise operators a Snippet
// can compute.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpOr
	OpXor
	OpAnd
)

// Mnemonic returns the short assembly-style name used when printing a
// Snippet's instructions for debugging.
func (op ArithmeticOp) Mnemonic() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpRem:
		return "rem"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpAnd:
		return "and"
	default:
		panic("ir: unknown ArithmeticOp")
	}
}

// EvalArithmetic applies op to two 32-bit operands. ok is false only for
// Div/Rem by zero; every other operator always succeeds.
//
// Add/Sub/Mul wrap modulo 2^32 (Go's unsigned arithmetic already does this).
// Div/Rem widen to a signed 64-bit intermediate before narrowing, so that
// INT_MIN / -1 does not overflow int32 on the way to truncating division —
// this keeps the asymmetry between wrapping +/-/* and truncating signed /
// deliberate rather than accidental.
func EvalArithmetic(op ArithmeticOp, a, b uint32) (result uint32, ok bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		sb := int64(int32(b))
		if sb == 0 {
			return 0, false
		}
		sa := int64(int32(a))
		return uint32(int32(sa / sb)), true
	case OpRem:
		sb := int64(int32(b))
		if sb == 0 {
			return 0, false
		}
		sa := int64(int32(a))
		return uint32(int32(sa % sb)), true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	case OpAnd:
		return a & b, true
	default:
		panic("ir: unknown ArithmeticOp")
	}
}

// Kind tags the nine instruction variants of the instruction set. The set is
// closed, so operations on Instruction switch on Kind rather than dispatch
// through an interface.
type Kind int

const (
	KindLock Kind = iota
	KindUnlock
	KindArithmetic
	KindSharedRead
	KindSharedWrite
	KindVolatileRead
	KindVolatileWrite
	KindMove
	KindPrint
)

func (k Kind) String() string {
	switch k {
	case KindLock:
		return "Lock"
	case KindUnlock:
		return "Unlock"
	case KindArithmetic:
		return "Arithmetic"
	case KindSharedRead:
		return "SharedRead"
	case KindSharedWrite:
		return "SharedWrite"
	case KindVolatileRead:
		return "VolatileRead"
	case KindVolatileWrite:
		return "VolatileWrite"
	case KindMove:
		return "Move"
	case KindPrint:
		return "Print"
	default:
		return "Unknown"
	}
}

// Instruction is a single IR instruction. Which fields are meaningful
// depends on Kind:
//
//	Lock, Unlock            Name (monitor)
//	Arithmetic               Target, Op0, ArithOp, Op1
//	SharedRead, VolatileRead Target, Name (shared/volatile)
//	SharedWrite, VolatileWrite Name (shared/volatile), Data
//	Move                     Target, Data
//	Print                    Data
type Instruction struct {
	Kind    Kind
	Loc     Location
	Target  int
	Name    string
	Op0     LocalValue
	Op1     LocalValue
	ArithOp ArithmeticOp
	Data    LocalValue
}

// IsAction reports whether the instruction is memory-model-relevant: a
// read, write, lock, or unlock.
func (i Instruction) IsAction() bool {
	switch i.Kind {
	case KindLock, KindUnlock, KindSharedRead, KindSharedWrite, KindVolatileRead, KindVolatileWrite:
		return true
	default:
		return false
	}
}

// IsSynchronization reports whether the instruction is a synchronization
// action: a lock/unlock or a volatile read/write.
func (i Instruction) IsSynchronization() bool {
	switch i.Kind {
	case KindLock, KindUnlock, KindVolatileRead, KindVolatileWrite:
		return true
	default:
		return false
	}
}

// IsRead reports whether the instruction reads a shared or volatile
// variable.
func (i Instruction) IsRead() bool {
	return i.Kind == KindSharedRead || i.Kind == KindVolatileRead
}

// IsWrite reports whether the instruction writes a shared or volatile
// variable (Move does not count — it only touches a local).
func (i Instruction) IsWrite() bool {
	return i.Kind == KindSharedWrite || i.Kind == KindVolatileWrite
}

// IsLock reports whether the instruction is a Lock.
func (i Instruction) IsLock() bool { return i.Kind == KindLock }

// IsUnlock reports whether the instruction is an Unlock.
func (i Instruction) IsUnlock() bool { return i.Kind == KindUnlock }
