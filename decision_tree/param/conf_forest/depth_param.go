package conf_forest

import "math"

// DepthDependentParam is a value that may change with the depth of the leaf.
// Exactly one of the fields is expected to be set; an empty param resolves to 0.
type DepthDependentParam struct {
	ConstantValue *float64          `mapstructure:"constant_value" yaml:"constant_value,omitempty"`
	Linear        *LinearParam      `mapstructure:"linear" yaml:"linear,omitempty"`
	Exponential   *ExponentialParam `mapstructure:"exponential" yaml:"exponential,omitempty"`
	Threshold     *ThresholdParam   `mapstructure:"threshold" yaml:"threshold,omitempty"`
}

// LinearParam: slope*depth + y_intercept, clamped to [min_val, max_val].
type LinearParam struct {
	Slope      float64 `mapstructure:"slope" yaml:"slope"`
	YIntercept float64 `mapstructure:"y_intercept" yaml:"y_intercept"`
	MinVal     float64 `mapstructure:"min_val" yaml:"min_val"`
	MaxVal     float64 `mapstructure:"max_val" yaml:"max_val"`
}

// ExponentialParam: bias + multiplier * base^(depth_multiplier*depth).
type ExponentialParam struct {
	Bias            float64 `mapstructure:"bias" yaml:"bias"`
	Base            float64 `mapstructure:"base" yaml:"base"`
	Multiplier      float64 `mapstructure:"multiplier" yaml:"multiplier"`
	DepthMultiplier float64 `mapstructure:"depth_multiplier" yaml:"depth_multiplier"`
}

// ThresholdParam: on_value once depth >= threshold, off_value before.
type ThresholdParam struct {
	OnValue   float64 `mapstructure:"on_value" yaml:"on_value"`
	OffValue  float64 `mapstructure:"off_value" yaml:"off_value"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

func Constant(v float64) DepthDependentParam {
	return DepthDependentParam{ConstantValue: &v}
}

// ConstantRef is Constant for the optional params of Params.
func ConstantRef(v float64) *DepthDependentParam {
	p := Constant(v)
	return &p
}

// ResolveParam evaluates the param at the given depth.
func ResolveParam(p DepthDependentParam, depth int32) float64 {
	d := float64(depth)
	switch {
	case p.ConstantValue != nil:
		return *p.ConstantValue
	case p.Linear != nil:
		val := d*p.Linear.Slope + p.Linear.YIntercept
		return math.Min(math.Max(val, p.Linear.MinVal), p.Linear.MaxVal)
	case p.Exponential != nil:
		e := p.Exponential
		return e.Bias + e.Multiplier*math.Pow(e.Base, e.DepthMultiplier*d)
	case p.Threshold != nil:
		if d >= p.Threshold.Threshold {
			return p.Threshold.OnValue
		}
		return p.Threshold.OffValue
	default:
		return 0
	}
}
