package flow

import cycle "github.com/joeycumines/go-detect-cycle/floyds"

// hasCycle walks root's child graph with Floyd's tortoise-and-hare cycle
// detector, branching one hare per child edge (the same shape as a
// dependency-graph cycle check, applied to Action.Children instead of a
// precomputed adjacency map). Used to reject a dynamic child attachment
// (Sequence.AddChild, Parallel.AddChild) that would make root its own
// descendant.
func hasCycle(root Action) bool {
	var check func(a Action, f cycle.BranchingDetector) bool
	check = func(a Action, f cycle.BranchingDetector) bool {
		for _, child := range a.Children() {
			if func() bool {
				nf := f.Hare(child)
				defer nf.Clear()
				if !f.Ok() {
					return true
				}
				return check(child, nf)
			}() {
				return true
			}
		}
		return false
	}
	return check(root, cycle.NewBranchingDetector(root, nil))
}
