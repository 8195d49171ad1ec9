package tool

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// calcGrammar is the complete token set the calculator accepts. Anything
// outside digits, decimal points, the four basic operators, parentheses and
// whitespace is rejected before evaluation. This makes identifier lookups,
// member access and function calls structurally impossible, not merely
// unused: the expression never reaches the evaluator with a name in it.
var calcGrammar = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)

// CalculatorOptions configures the calculator tool.
type CalculatorOptions struct {
	Logger logging.Logger
}

// NewCalculator returns the calculator tool. It evaluates restricted
// arithmetic expressions (numbers and + - * / parentheses only) and reports
// any parse or evaluation failure as a "Calculation error: ..." string.
func NewCalculator(optFns ...func(o *CalculatorOptions)) *FuncTool {
	opts := CalculatorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": `Arithmetic expression like "2+2", "10*5" or "100/4".`,
			},
		},
		"required": []string{"expression"},
	}

	return NewFuncTool(
		"calculator",
		"Evaluate a basic arithmetic expression (numbers, + - * / and parentheses).",
		parameters,
		opts.Logger,
		func(ctx context.Context, args map[string]any) string {
			core.MarkTool(ctx, "calculator")
			expression, _ := args["expression"].(string)
			opts.Logger.Info("tool.calculator", "expression", expression)
			return evaluateExpression(expression)
		},
	)
}

// evaluateExpression enforces the token whitelist and evaluates the
// expression against an empty environment.
func evaluateExpression(expression string) string {
	if strings.TrimSpace(expression) == "" {
		return "Calculation error: empty expression"
	}
	if !calcGrammar.MatchString(expression) {
		return "Calculation error: expression may only contain numbers, + - * / and parentheses"
	}

	result, err := expr.Eval(expression, map[string]any{})
	if err != nil {
		return fmt.Sprintf("Calculation error: %v", err)
	}
	if f, ok := result.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return "Calculation error: result is not a finite number"
	}
	return fmt.Sprintf("%v", result)
}
