package grow

// runningGini keeps, per candidate, the weight and the sum of squared class
// weights of one side, so a gini score needs no pass over the classes.
type runningGini struct {
	sum    []float64
	square []float64
}

func newRunningGini() *runningGini {
	return &runningGini{}
}

// update accounts for weight w added to a class that held old on this side.
func (r *runningGini) update(split int, old, w float64) {
	r.sum[split] += w
	r.square[split] += 2*old*w + w*w
}

func (r *runningGini) set(split int, sum, square float64) {
	r.sum[split] = sum
	r.square[split] = square
}

func (r *runningGini) addSplit() {
	r.sum = append(r.sum, 0)
	r.square = append(r.square, 0)
}

func (r *runningGini) removeSplit(i int) {
	r.sum = removeAt(r.sum, i)
	r.square = removeAt(r.square, i)
}

func (r *runningGini) clear() {
	r.sum = nil
	r.square = nil
}
