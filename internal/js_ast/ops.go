package js_ast

type OpCode uint8

func (op OpCode) IsPrefix() bool {
	return op < UnOpPostDec
}

func (op OpCode) IsUpdate() bool {
	return op >= UnOpPreDec && op <= UnOpPostInc
}

func (op OpCode) IsLogical() bool {
	return op == BinOpNullishCoalescing || op == BinOpLogicalOr || op == BinOpLogicalAnd
}

// "a += b" reads "a" before writing it while "a = b" does not
func (op OpCode) IsCompoundAssign() bool {
	return op > BinOpAssign
}

// If you add a new operator, remember to add it to "OpTable" too
const (
	// Prefix
	UnOpPos OpCode = iota
	UnOpNeg
	UnOpCpl
	UnOpNot
	UnOpVoid
	UnOpTypeof
	UnOpDelete

	// Prefix update
	UnOpPreDec
	UnOpPreInc

	// Postfix update
	UnOpPostDec
	UnOpPostInc

	// Left-associative
	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpPow
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpInstanceof
	BinOpShl
	BinOpShr
	BinOpUShr
	BinOpLooseEq
	BinOpLooseNe
	BinOpStrictEq
	BinOpStrictNe
	BinOpNullishCoalescing
	BinOpLogicalOr
	BinOpLogicalAnd
	BinOpBitwiseOr
	BinOpBitwiseAnd
	BinOpBitwiseXor

	// Right-associative
	BinOpAssign
	BinOpAddAssign
	BinOpSubAssign
	BinOpMulAssign
	BinOpDivAssign
	BinOpRemAssign
	BinOpPowAssign
	BinOpShlAssign
	BinOpShrAssign
	BinOpUShrAssign
	BinOpBitwiseOrAssign
	BinOpBitwiseAndAssign
	BinOpBitwiseXorAssign
	BinOpNullishCoalescingAssign
	BinOpLogicalOrAssign
	BinOpLogicalAndAssign
)

var OpTable = []string{
	// Prefix
	"+", "-", "~", "!", "void", "typeof", "delete",

	// Prefix update
	"--", "++",

	// Postfix update
	"--", "++",

	// Left-associative
	"+", "-", "*", "/", "%", "**", "<", "<=", ">", ">=", "in", "instanceof",
	"<<", ">>", ">>>", "==", "!=", "===", "!==", "??", "||", "&&", "|", "&", "^",

	// Right-associative
	"=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=", "|=", "&=",
	"^=", "??=", "||=", "&&=",
}

func (op OpCode) String() string {
	return OpTable[op]
}

var unaryOps = map[string]OpCode{}
var binaryOps = map[string]OpCode{}
var assignOps = map[string]OpCode{}

func init() {
	for op := UnOpPos; op <= UnOpDelete; op++ {
		unaryOps[OpTable[op]] = op
	}
	for op := BinOpAdd; op <= BinOpBitwiseXor; op++ {
		binaryOps[OpTable[op]] = op
	}
	for op := BinOpAssign; op <= BinOpLogicalAndAssign; op++ {
		assignOps[OpTable[op]] = op
	}
}

func UnaryOpFromText(text string) (OpCode, bool) {
	op, ok := unaryOps[text]
	return op, ok
}

func BinaryOpFromText(text string) (OpCode, bool) {
	op, ok := binaryOps[text]
	return op, ok
}

func AssignOpFromText(text string) (OpCode, bool) {
	op, ok := assignOps[text]
	return op, ok
}

func UpdateOpFromText(text string, prefix bool) (OpCode, bool) {
	switch {
	case text == "++" && prefix:
		return UnOpPreInc, true
	case text == "--" && prefix:
		return UnOpPreDec, true
	case text == "++":
		return UnOpPostInc, true
	case text == "--":
		return UnOpPostDec, true
	}
	return 0, false
}

// The binary operator applied by a compound assignment such as "+="
func (op OpCode) BinaryForAssign() OpCode {
	switch op {
	case BinOpAddAssign:
		return BinOpAdd
	case BinOpSubAssign:
		return BinOpSub
	case BinOpMulAssign:
		return BinOpMul
	case BinOpDivAssign:
		return BinOpDiv
	case BinOpRemAssign:
		return BinOpRem
	case BinOpPowAssign:
		return BinOpPow
	case BinOpShlAssign:
		return BinOpShl
	case BinOpShrAssign:
		return BinOpShr
	case BinOpUShrAssign:
		return BinOpUShr
	case BinOpBitwiseOrAssign:
		return BinOpBitwiseOr
	case BinOpBitwiseAndAssign:
		return BinOpBitwiseAnd
	case BinOpBitwiseXorAssign:
		return BinOpBitwiseXor
	case BinOpNullishCoalescingAssign:
		return BinOpNullishCoalescing
	case BinOpLogicalOrAssign:
		return BinOpLogicalOr
	case BinOpLogicalAndAssign:
		return BinOpLogicalAnd
	}
	return op
}
