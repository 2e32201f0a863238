package overlap

import "github.com/chazu/g4basic/pkg/geometry"

// transformStack accumulates placements during tree traversal.
type transformStack struct {
	placements []geometry.Placement
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(p geometry.Placement) {
	ts.placements = append(ts.placements, p)
}

func (ts *transformStack) pop() {
	if len(ts.placements) > 0 {
		ts.placements = ts.placements[:len(ts.placements)-1]
	}
}

// accumulated composes the stack from the world down into one placement
// mapping the innermost frame to the world frame.
func (ts *transformStack) accumulated() geometry.Placement {
	var pose geometry.Placement
	for _, p := range ts.placements {
		pose = pose.Compose(p)
	}
	return pose
}
