package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/sandevgo/snipbot/internal/core"
)

var _ core.Evaluator = (*Arithmetic)(nil)

var (
	binaryOperators = map[string]bool{"+": true, "-": true, "*": true, "/": true, "**": true, "^": true, "%": true}
	unaryOperators  = map[string]bool{"+": true, "-": true}

	errDivideByZero = errors.New("divide by zero")
)

// Arithmetic evaluates numeric expressions with expr, rejecting every node
// that is not a number or an arithmetic operator before anything runs.
type Arithmetic struct{}

func New() *Arithmetic {
	return &Arithmetic{}
}

func (a *Arithmetic) Evaluate(input string) (float64, error) {
	tree, err := parser.Parse(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidExpression, err)
	}

	check := &arithmeticOnly{}
	ast.Walk(&tree.Node, check)
	if check.err != nil {
		return 0, check.err
	}

	program, err := expr.Compile(input,
		expr.Env(map[string]any{}),
		expr.Function("div", divide, new(func(float64, float64) float64)),
		expr.Function("mod", modulo, new(func(float64, float64) float64)),
		expr.Patch(&floatArithmetic{}),
	)
	if err != nil {
		return 0, classify(err)
	}

	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return 0, classify(err)
	}

	result, err := toFloat(out)
	if err != nil {
		return 0, err
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: result out of range", core.ErrInvalidExpression)
	}
	return result, nil
}

// classify maps expr failures. Errors raised inside functions come back
// flattened into the runtime error text.
func classify(err error) error {
	if errors.Is(err, errDivideByZero) || strings.Contains(err.Error(), errDivideByZero.Error()) {
		return core.ErrDivisionByZero
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidExpression, err)
}

type arithmeticOnly struct {
	err error
}

func (v *arithmeticOnly) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:
	case *ast.BinaryNode:
		if !binaryOperators[n.Operator] {
			v.err = fmt.Errorf("%w: operator %q", core.ErrUnsupportedFeature, n.Operator)
		}
	case *ast.UnaryNode:
		if !unaryOperators[n.Operator] {
			v.err = fmt.Errorf("%w: operator %q", core.ErrUnsupportedFeature, n.Operator)
		}
	default:
		v.err = fmt.Errorf("%w: %T", core.ErrUnsupportedFeature, n)
	}
}

// floatArithmetic moves evaluation to float64 so large products lose
// precision instead of wrapping, and routes division through checked calls.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		var fn string
		switch n.Operator {
		case "/":
			fn = "div"
		case "%":
			fn = "mod"
		default:
			return
		}
		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: fn},
			Arguments: []ast.Node{n.Left, n.Right},
		})
	}
}

func divide(params ...any) (any, error) {
	x, y := params[0].(float64), params[1].(float64)
	if y == 0 {
		return nil, errDivideByZero
	}
	return x / y, nil
}

func modulo(params ...any) (any, error) {
	x, y := params[0].(float64), params[1].(float64)
	if y == 0 {
		return nil, errDivideByZero
	}
	return math.Mod(x, y), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: non-numeric result %T", core.ErrUnsupportedFeature, v)
	}
}
