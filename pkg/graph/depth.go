package graph

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// Depths computes the topological layer of every node: 0 for nodes without
// resolving parents, otherwise 1 + the deepest parent.
//
// Parent ids come from upstream collaborators and may form cycles. A parent
// that is still in progress when revisited contributes depth 0, i.e. the
// back edge is treated as absent, so the walk always terminates. Parent ids
// that name no node are ignored.
func Depths(nodes []*Node) map[string]int {
	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	depth := make(map[string]int, len(nodes))
	state := make(map[string]visitState, len(nodes))

	type frame struct {
		id   string
		next int // index of the next parent to inspect
		best int // deepest parent seen so far, -1 if none resolved
	}

	for _, root := range nodes {
		if state[root.ID] != unvisited {
			continue
		}

		stack := []frame{{id: root.ID, best: -1}}
		state[root.ID] = inProgress

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			parents := byID[top.id].ParentIDs

			if top.next < len(parents) {
				pid := parents[top.next]
				top.next++

				if _, ok := byID[pid]; !ok {
					continue
				}

				switch state[pid] {
				case done:
					if depth[pid] > top.best {
						top.best = depth[pid]
					}
				case inProgress:
					// Cycle: the in-progress parent counts as a root.
					if top.best < 0 {
						top.best = 0
					}
				default:
					state[pid] = inProgress
					stack = append(stack, frame{id: pid, best: -1})
				}
				continue
			}

			d := top.best + 1
			depth[top.id] = d
			state[top.id] = done
			stack = stack[:len(stack)-1]

			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				if d > parent.best {
					parent.best = d
				}
			}
		}
	}

	return depth
}

// MaxDepth returns the deepest layer in depths, or -1 when empty.
func MaxDepth(depths map[string]int) int {
	deepest := -1
	for _, d := range depths {
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
