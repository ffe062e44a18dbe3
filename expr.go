package veloxx

import "fmt"

// Expr is a node of the programmatic query tree. Expressions are built
// with the fluent constructors below and evaluated against a DataFrame
// by Evaluate; a Bool-typed expression doubles as a predicate for
// filtering.
type Expr interface {
	// String returns a string representation of the expression
	String() string

	// Clone creates a deep copy of the expression
	Clone() Expr

	// columns returns all column names referenced by this expression
	columns() []string
}

// ============================================================================
// Column Expression
// ============================================================================

// ColExpr references an existing column by name.
type ColExpr struct {
	Name string
}

// Col creates a column reference expression
func Col(name string) *ColExpr {
	return &ColExpr{Name: name}
}

func (e *ColExpr) String() string    { return fmt.Sprintf("col(%q)", e.Name) }
func (e *ColExpr) Clone() Expr       { return &ColExpr{Name: e.Name} }
func (e *ColExpr) columns() []string { return []string{e.Name} }

// Arithmetic operations
func (e *ColExpr) Add(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAdd, Right: other} }
func (e *ColExpr) Sub(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpSub, Right: other} }
func (e *ColExpr) Mul(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpMul, Right: other} }
func (e *ColExpr) Div(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpDiv, Right: other} }

// Comparison operations
func (e *ColExpr) Eq(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpEq, Right: other} }
func (e *ColExpr) Ne(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpNe, Right: other} }
func (e *ColExpr) Lt(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpLt, Right: other} }
func (e *ColExpr) Le(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpLe, Right: other} }
func (e *ColExpr) Gt(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpGt, Right: other} }
func (e *ColExpr) Ge(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpGe, Right: other} }

// Logical operations
func (e *ColExpr) And(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAnd, Right: other} }
func (e *ColExpr) Or(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpOr, Right: other} }

// ============================================================================
// Literal Expression
// ============================================================================

// LitExpr holds a constant Value.
type LitExpr struct {
	Value Value
}

// Lit creates a literal expression from a Go value (nil, int, int32,
// int64, float32/64, bool, string, time.Time, or Value). An unsupported
// input becomes a null literal, evaluated like Lit(nil); Lit reports no
// error of its own (LitValue returns the TypeMismatch).
func Lit(value interface{}) *LitExpr {
	v, err := LitValue(value)
	if err != nil {
		return &LitExpr{Value: Value{Kind: Null}}
	}
	return &LitExpr{Value: v}
}

// LitV creates a literal expression directly from a Value.
func LitV(v Value) *LitExpr {
	return &LitExpr{Value: v}
}

func (e *LitExpr) String() string    { return fmt.Sprintf("lit(%s)", e.Value) }
func (e *LitExpr) Clone() Expr       { return &LitExpr{Value: e.Value} }
func (e *LitExpr) columns() []string { return nil }

// ============================================================================
// Binary Operation Expression
// ============================================================================

// BinaryOp enumerates the binary operators of the expression dialect.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

func (op BinaryOp) isArith() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

func (op BinaryOp) isCmp() bool {
	return op >= OpEq && op <= OpGe
}

func (op BinaryOp) isLogic() bool {
	return op == OpAnd || op == OpOr
}

func (op BinaryOp) cmp() cmpOp {
	switch op {
	case OpEq:
		return cmpEq
	case OpNe:
		return cmpNe
	case OpLt:
		return cmpLt
	case OpLe:
		return cmpLe
	case OpGt:
		return cmpGt
	default:
		return cmpGe
	}
}

// BinaryOpExpr combines two expressions with a binary operator.
type BinaryOpExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (e *BinaryOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *BinaryOpExpr) Clone() Expr {
	return &BinaryOpExpr{Left: e.Left.Clone(), Op: e.Op, Right: e.Right.Clone()}
}

func (e *BinaryOpExpr) columns() []string {
	cols := e.Left.columns()
	cols = append(cols, e.Right.columns()...)
	return cols
}

// Chainable operations on BinaryOpExpr
func (e *BinaryOpExpr) And(other Expr) *BinaryOpExpr {
	return &BinaryOpExpr{Left: e, Op: OpAnd, Right: other}
}

func (e *BinaryOpExpr) Or(other Expr) *BinaryOpExpr {
	return &BinaryOpExpr{Left: e, Op: OpOr, Right: other}
}

// ============================================================================
// Not Expression
// ============================================================================

// NotExpr negates a boolean expression under three-valued logic.
type NotExpr struct {
	Input Expr
}

// Not creates a boolean negation expression
func Not(input Expr) *NotExpr {
	return &NotExpr{Input: input}
}

func (e *NotExpr) String() string    { return fmt.Sprintf("not(%s)", e.Input) }
func (e *NotExpr) Clone() Expr       { return &NotExpr{Input: e.Input.Clone()} }
func (e *NotExpr) columns() []string { return e.Input.columns() }
