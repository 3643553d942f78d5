package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Roche85/tensorforest/rock-share/base/logger"
)

// ExampleTable is a numeric CSV split into feature columns and target columns.
type ExampleTable struct {
	FeatureNames []string
	Features     [][]float64
	Targets      [][]float64
	Weights      []float64 // nil without a weight column
}

// ReadExampleCsv reads a CSV with a header line. targetColumns are pulled out
// as targets, weightColumn (optional) as example weights, every other column
// is a feature in header order. Empty cells read as NaN.
func ReadExampleCsv(r io.Reader, targetColumns []string, weightColumn string) (*ExampleTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		logger.Errorf("read csv header failed, err: %v", err)
		return nil, ErrReadCsv
	}

	cls := make(map[string]int, len(header))
	for i, columnName := range header {
		cls[columnName] = i
	}
	targetIdx := make([]int, 0, len(targetColumns))
	skip := make(map[int]bool)
	for _, name := range targetColumns {
		i, ok := cls[name]
		if !ok {
			return nil, fmt.Errorf("%w: target column %q not in csv", ErrParameter, name)
		}
		targetIdx = append(targetIdx, i)
		skip[i] = true
	}
	weightIdx := -1
	if weightColumn != "" {
		i, ok := cls[weightColumn]
		if !ok {
			return nil, fmt.Errorf("%w: weight column %q not in csv", ErrParameter, weightColumn)
		}
		weightIdx = i
		skip[i] = true
	}

	table := &ExampleTable{}
	featureIdx := make([]int, 0, len(header))
	for i, name := range header {
		if !skip[i] {
			featureIdx = append(featureIdx, i)
			table.FeatureNames = append(table.FeatureNames, name)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Errorf("read csv line %d failed, err: %v", line, err)
			return nil, ErrReadCsv
		}
		features, err := parseColumns(record, featureIdx, line)
		if err != nil {
			return nil, err
		}
		targets, err := parseColumns(record, targetIdx, line)
		if err != nil {
			return nil, err
		}
		table.Features = append(table.Features, features)
		table.Targets = append(table.Targets, targets)
		if weightIdx >= 0 {
			weight, err := parseValue(record[weightIdx], line)
			if err != nil {
				return nil, err
			}
			table.Weights = append(table.Weights, weight)
		}
	}
	return table, nil
}

func parseColumns(record []string, idx []int, line int) ([]float64, error) {
	out := make([]float64, len(idx))
	for j, i := range idx {
		v, err := parseValue(record[i], line)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func parseValue(value string, line int) (float64, error) {
	if value == "" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d value %q", ErrWrongDataType, line, value)
	}
	return f, nil
}
