package tree

import "math"

// DataSet gives access to the feature values of the examples a leaf sees.
type DataSet interface {
	Feature(example int, feature FeatureId) float64
}

// Target gives access to the label side of an example. Classification reads
// ClassIndex and Weight, regression reads Continuous.
type Target interface {
	ClassIndex(example int) int32
	Weight(example int) float64
	Continuous(example int, output int) float64
}

// DenseDataSet is a row-major in-memory data set. Missing columns read as NaN.
type DenseDataSet struct {
	Rows [][]float64
}

func (d *DenseDataSet) Feature(example int, feature FeatureId) float64 {
	row := d.Rows[example]
	if feature < 0 || int(feature) >= len(row) {
		return math.NaN()
	}
	return row[feature]
}

// Append adds a row and returns its example index.
func (d *DenseDataSet) Append(row []float64) int {
	d.Rows = append(d.Rows, row)
	return len(d.Rows) - 1
}

// ClassTarget holds class labels and optional weights (nil means weight 1).
type ClassTarget struct {
	Labels  []int32
	Weights []float64
}

func (c *ClassTarget) ClassIndex(example int) int32 {
	return c.Labels[example]
}

func (c *ClassTarget) Weight(example int) float64 {
	if len(c.Weights) == 0 {
		return 1
	}
	return c.Weights[example]
}

func (c *ClassTarget) Continuous(example int, output int) float64 {
	return float64(c.Labels[example])
}

// Append adds a labelled example and returns its index. The weight is kept
// only once any weight differs from 1.
func (c *ClassTarget) Append(label int32, weight float64) int {
	if weight != 1 && c.Weights == nil {
		c.Weights = make([]float64, len(c.Labels), len(c.Labels)+1)
		for i := range c.Weights {
			c.Weights[i] = 1
		}
	}
	c.Labels = append(c.Labels, label)
	if c.Weights != nil {
		c.Weights = append(c.Weights, weight)
	}
	return len(c.Labels) - 1
}

// RegressionTarget holds one value per output dimension for every example.
type RegressionTarget struct {
	Values [][]float64
}

func (r *RegressionTarget) ClassIndex(example int) int32 {
	return 0
}

func (r *RegressionTarget) Weight(example int) float64 {
	return 1
}

func (r *RegressionTarget) Continuous(example int, output int) float64 {
	return r.Values[example][output]
}

// Append adds an example's outputs and returns its index.
func (r *RegressionTarget) Append(values []float64) int {
	r.Values = append(r.Values, values)
	return len(r.Values) - 1
}
