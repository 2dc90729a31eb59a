package graph

// queueItem pairs a user id with its distance from the BFS root.
type queueItem struct {
	id    string
	depth int
}

// Distance returns the length of the shortest path between from and to, and
// false when no path exists.
//
// BREADTH-FIRST SEARCH:
// The search expands the frontier one ring at a time: everything at distance
// 1, then everything at distance 2, and so on. Each id is marked visited the
// moment it is enqueued, so it is enqueued at most once and the distance it
// was first discovered at is its shortest distance in an unweighted graph.
// The loop is bounded by the number of nodes in the snapshot.
//
// from == to is distance 0 even for a user with no connections.
func (a *Adjacency) Distance(from, to string) (int, bool) {
	if from == to {
		return 0, true
	}
	// A user with no edges cannot reach or be reached by anyone.
	if _, ok := a.neighbors[from]; !ok {
		return 0, false
	}
	if _, ok := a.neighbors[to]; !ok {
		return 0, false
	}

	visited := make(map[string]bool, len(a.neighbors))
	queue := make([]queueItem, 0, len(a.neighbors))

	visited[from] = true
	queue = append(queue, queueItem{id: from, depth: 0})

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.id == to {
			return item.depth, true
		}

		for nbr := range a.neighbors[item.id] {
			if visited[nbr] {
				continue
			}
			visited[nbr] = true
			queue = append(queue, queueItem{id: nbr, depth: item.depth + 1})
		}
	}

	return 0, false
}
