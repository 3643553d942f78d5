package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
)

// Evaluator routes an example to one side of a split. It is built once per
// candidate and reused for every example.
type Evaluator interface {
	Decide(data DataSet, example int) Direction
}

// NewEvaluator builds the evaluator of a split definition. A split whose
// expression cannot be compiled gets an evaluator that routes everything
// RIGHT, so it can never win; use ValidateSplit to reject it up front.
func NewEvaluator(split *model.BinaryNode) Evaluator {
	if split.Expression == "" {
		return &inequalityEvaluator{
			feature:    FeatureId(split.Feature),
			threshold:  split.Threshold,
			inequality: split.Inequality,
		}
	}
	eval, err := newExpressionEvaluator(split.Expression)
	if err != nil {
		logger.Errorf("split %q routes everything right: %v", split.Expression, err)
		return constantEvaluator(RIGHT)
	}
	return eval
}

// ValidateSplit reports whether NewEvaluator can build a working evaluator.
func ValidateSplit(split *model.BinaryNode) error {
	if split == nil {
		return fmt.Errorf("nil split")
	}
	if split.Expression != "" {
		_, err := newExpressionEvaluator(split.Expression)
		return err
	}
	if split.Inequality < model.LessOrEqual || split.Inequality > model.GreaterThan {
		return fmt.Errorf("unknown inequality %d", int32(split.Inequality))
	}
	if split.Feature < 0 {
		return fmt.Errorf("negative feature %d", split.Feature)
	}
	return nil
}

type constantEvaluator Direction

func (c constantEvaluator) Decide(DataSet, int) Direction {
	return Direction(c)
}

type inequalityEvaluator struct {
	feature    FeatureId
	threshold  float64
	inequality model.InequalityType
}

func (e *inequalityEvaluator) Decide(data DataSet, example int) Direction {
	v := data.Feature(example, e.feature)
	var left bool
	switch e.inequality {
	case model.LessOrEqual:
		left = v <= e.threshold
	case model.LessThan:
		left = v < e.threshold
	case model.GreaterOrEqual:
		left = v >= e.threshold
	case model.GreaterThan:
		left = v > e.threshold
	}
	if left {
		return LEFT
	}
	return RIGHT
}

// expressionEvaluator evaluates a boolean govaluate expression whose variables
// are features named x<index>.
type expressionEvaluator struct {
	expression *govaluate.EvaluableExpression
	vars       map[string]FeatureId
}

func newExpressionEvaluator(expr string) (*expressionEvaluator, error) {
	expression, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]FeatureId)
	for _, name := range expression.Vars() {
		if !strings.HasPrefix(name, "x") {
			return nil, fmt.Errorf("unknown variable %q, expected x<feature>", name)
		}
		idx, err := strconv.ParseInt(name[1:], 10, 32)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("unknown variable %q, expected x<feature>", name)
		}
		vars[name] = FeatureId(idx)
	}
	return &expressionEvaluator{expression: expression, vars: vars}, nil
}

func (e *expressionEvaluator) Decide(data DataSet, example int) Direction {
	params := make(map[string]interface{}, len(e.vars))
	for name, feature := range e.vars {
		params[name] = data.Feature(example, feature)
	}
	result, err := e.expression.Evaluate(params)
	if err != nil {
		return RIGHT
	}
	if left, ok := result.(bool); ok && left {
		return LEFT
	}
	return RIGHT
}
