package add

// FloatAdder accumulates float64 values with Kahan compensation, so long
// streams of small example weights do not drift.
type FloatAdder struct {
	sum float64 // running sum
	c   float64 // compensation term
}

func NewFloatAdder() *FloatAdder {
	return new(FloatAdder)
}

func (adder *FloatAdder) Add(num float64) {
	y := num + (*adder).c
	t := (*adder).sum + y
	(*adder).c = y - (t - (*adder).sum)
	(*adder).sum = t
}

// Reset drops the compensation and starts over from v, used when a sum is
// restored from a checkpoint.
func (adder *FloatAdder) Reset(v float64) {
	(*adder).sum = v
	(*adder).c = 0
}

func (adder *FloatAdder) Clear() {
	adder.Reset(0)
}

func (adder *FloatAdder) Result() float64 {
	return (*adder).sum
}
