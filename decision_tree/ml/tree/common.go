package tree

// FeatureId identifies a feature column of an example.
type FeatureId int32

// Direction is the routing outcome of a binary split.
type Direction int8

const (
	LEFT  Direction = 0 // LEFT example satisfies the split test
	RIGHT Direction = 1 // RIGHT everything else, NaN included
)

func (d Direction) String() string {
	if d == LEFT {
		return "LEFT"
	}
	return "RIGHT"
}
