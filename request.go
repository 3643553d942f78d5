package main

import (
	"fmt"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/utils"
)

type OpenLeafRequest struct {
	Depth  int32          `json:"depth"`
	Splits []SplitRequest `json:"splits"`
}

// SplitRequest is either an axis-aligned test (feature, threshold,
// inequality) or a boolean expression over x0..xN.
type SplitRequest struct {
	Feature    int32   `json:"feature"`
	Threshold  float64 `json:"threshold"`
	Inequality string  `json:"inequality"`
	Expression string  `json:"expression"`
}

type ExamplesRequest struct {
	Examples []Example `json:"examples"`
}

// Example carries a class label (classification) or one value per output
// (regression). A missing weight counts as 1.
type Example struct {
	Features []float64 `json:"features"`
	Label    int32     `json:"label"`
	Weight   *float64  `json:"weight"`
	Targets  []float64 `json:"targets"`
}

type CheckpointResponse struct {
	Depth int32  `json:"depth"`
	Slot  []byte `json:"slot"`
}

var inequalities = map[string]model.InequalityType{
	"":   model.LessOrEqual,
	"<=": model.LessOrEqual,
	"<":  model.LessThan,
	">=": model.GreaterOrEqual,
	">":  model.GreaterThan,
}

func (s SplitRequest) toNode() (*model.BinaryNode, error) {
	inequality, ok := inequalities[s.Inequality]
	if !ok {
		return nil, fmt.Errorf("unknown inequality %q", s.Inequality)
	}
	return &model.BinaryNode{
		Feature:    s.Feature,
		Threshold:  s.Threshold,
		Inequality: inequality,
		Expression: s.Expression,
	}, nil
}

// batch holds the examples of one request in the form the accumulators read.
type batch struct {
	data   *tree.DenseDataSet
	target tree.Target
	size   int
}

func newBatch(examples []Example, regression bool) *batch {
	b := &batch{data: &tree.DenseDataSet{}, size: len(examples)}
	classes := &tree.ClassTarget{}
	values := &tree.RegressionTarget{}
	for _, e := range examples {
		b.data.Append(e.Features)
		if regression {
			values.Append(e.Targets)
			continue
		}
		weight := 1.0
		if e.Weight != nil {
			weight = *e.Weight
		}
		classes.Append(e.Label, weight)
	}
	if regression {
		b.target = values
	} else {
		b.target = classes
	}
	return b
}

func newBatchFromTable(table *utils.ExampleTable, regression bool) *batch {
	examples := make([]Example, len(table.Features))
	for i := range examples {
		examples[i].Features = table.Features[i]
		if regression {
			examples[i].Targets = table.Targets[i]
			continue
		}
		examples[i].Label = int32(table.Targets[i][0])
		if table.Weights != nil {
			examples[i].Weight = &table.Weights[i]
		}
	}
	return newBatch(examples, regression)
}
