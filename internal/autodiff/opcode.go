package autodiff

// Opcode discriminates the elementary operation a trace entry records.
type Opcode uint8

// Recorded operation kinds. The *Const kinds fold their immediate into the
// entry instead of consuming a trace slot for it.
const (
	OpIndependent Opcode = iota // input root, tangent seeded by the caller
	OpConst                     // constant load, zero derivative
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpSquare
	OpSqrt
	OpExp
	OpLog
	OpSin
	OpCos
	OpPow      // active base, constant exponent
	OpAddConst // x + c
	OpSubConst // x - c
	OpConstSub // c - x
	OpMulConst // x * c
	OpDivConst // x / c
	OpConstDiv // c / x
)

// String returns a short mnemonic for the opcode.
func (op Opcode) String() string {
	switch op {
	case OpIndependent:
		return "indep"
	case OpConst:
		return "const"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpNeg:
		return "neg"
	case OpSquare:
		return "square"
	case OpSqrt:
		return "sqrt"
	case OpExp:
		return "exp"
	case OpLog:
		return "log"
	case OpSin:
		return "sin"
	case OpCos:
		return "cos"
	case OpPow:
		return "pow"
	case OpAddConst:
		return "addc"
	case OpSubConst:
		return "subc"
	case OpConstSub:
		return "csub"
	case OpMulConst:
		return "mulc"
	case OpDivConst:
		return "divc"
	case OpConstDiv:
		return "cdiv"
	default:
		return "unknown"
	}
}

// arity returns the number of operand slots the opcode consumes.
func (op Opcode) arity() int {
	switch op {
	case OpIndependent, OpConst:
		return 0
	case OpAdd, OpSub, OpMul, OpDiv:
		return 2
	default:
		return 1
	}
}

// valid reports whether op is a known opcode. Used when decoding traces.
func (op Opcode) valid() bool {
	return op <= OpConstDiv
}
