package todo

import (
	"sort"
	"strconv"
)

// Graph maintains the depends-on adjacency index stored in the todo document
// and derives blocked/unblocked and transitive-closure views. It treats the
// store as read-only except for the dependencies index itself.
type Graph struct {
	store *Store
}

// NewGraph returns a graph view over the store's dependency index.
func NewGraph(s *Store) *Graph {
	return &Graph{store: s}
}

// AddDependency records that dependentID depends on prerequisiteID. Both
// tasks must exist and the edge must not close a cycle: the prerequisite may
// not already depend, transitively, on the dependent. Adding an edge that is
// already present succeeds without duplicating it.
func (g *Graph) AddDependency(dependentID, prerequisiteID int) error {
	if g.store.find(dependentID) == nil || g.store.find(prerequisiteID) == nil {
		return ErrNotFound
	}
	if dependentID == prerequisiteID {
		return ErrCycle
	}
	if g.dependenciesOf(prerequisiteID)[dependentID] {
		return ErrCycle
	}

	key := strconv.Itoa(dependentID)
	deps := g.store.doc.Dependencies[key]
	for _, dep := range deps {
		if dep == prerequisiteID {
			return nil
		}
	}
	g.store.doc.Dependencies[key] = append(deps, prerequisiteID)
	return g.store.save()
}

// RemoveDependency removes the edge if present. A dependent whose edge list
// becomes empty is dropped from the index entirely.
func (g *Graph) RemoveDependency(dependentID, prerequisiteID int) error {
	key := strconv.Itoa(dependentID)
	deps, ok := g.store.doc.Dependencies[key]
	if !ok {
		return ErrNotFound
	}

	idx := -1
	for i, dep := range deps {
		if dep == prerequisiteID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	deps = append(deps[:idx], deps[idx+1:]...)
	if len(deps) == 0 {
		delete(g.store.doc.Dependencies, key)
	} else {
		g.store.doc.Dependencies[key] = deps
	}
	return g.store.save()
}

// IsBlocked reports whether the task is not complete and has at least one
// direct prerequisite that is not complete. A prerequisite id with no
// matching task counts as incomplete; a hand-edited document can carry
// dangling ids even though Delete cascades.
func (g *Graph) IsBlocked(id int) bool {
	t := g.store.find(id)
	if t == nil || t.IsComplete() {
		return false
	}
	for _, dep := range g.store.doc.Dependencies[strconv.Itoa(id)] {
		prereq := g.store.find(dep)
		if prereq == nil || !prereq.IsComplete() {
			return true
		}
	}
	return false
}

// Blocked returns all non-complete tasks with at least one incomplete direct
// prerequisite, ordered by id.
func (g *Graph) Blocked() []Task {
	var out []Task
	for key := range g.store.doc.Dependencies {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if g.IsBlocked(id) {
			if t, ok := g.store.Get(id); ok {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Unblocked returns the non-complete tasks that are not blocked: a strict
// partition of the incomplete set together with Blocked. Results keep the
// default priority ordering.
func (g *Graph) Unblocked() []Task {
	blocked := make(map[int]bool)
	for _, t := range g.Blocked() {
		blocked[t.ID] = true
	}

	var out []Task
	for _, t := range g.store.List(Filter{}) {
		if t.IsComplete() || blocked[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Chain is the transitive closure around a task: every task it depends on,
// and every task that depends on it.
type Chain struct {
	TodoID       int   `json:"todo_id"`
	Dependencies []int `json:"dependencies"`
	Dependents   []int `json:"dependents"`
}

// DependencyChain returns the full dependency chain for a task. The index is
// acyclic by construction, so a single visited set per direction suffices and
// the traversal is linear in vertices plus edges.
func (g *Graph) DependencyChain(id int) Chain {
	return Chain{
		TodoID:       id,
		Dependencies: sortedIDs(g.dependenciesOf(id)),
		Dependents:   sortedIDs(g.dependentsOf(id)),
	}
}

// dependenciesOf walks prerequisite edges from id and returns every task id
// reachable that way, excluding id itself.
func (g *Graph) dependenciesOf(id int) map[int]bool {
	visited := map[int]bool{id: true}
	found := make(map[int]bool)
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.store.doc.Dependencies[strconv.Itoa(cur)] {
			found[dep] = true
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	delete(found, id)
	return found
}

// dependentsOf walks the edges in reverse: every task that transitively
// depends on id, excluding id itself.
func (g *Graph) dependentsOf(id int) map[int]bool {
	reverse := make(map[int][]int, len(g.store.doc.Dependencies))
	for key, deps := range g.store.doc.Dependencies {
		dependent, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], dependent)
		}
	}

	visited := map[int]bool{id: true}
	found := make(map[int]bool)
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dependent := range reverse[cur] {
			found[dependent] = true
			if !visited[dependent] {
				visited[dependent] = true
				stack = append(stack, dependent)
			}
		}
	}
	delete(found, id)
	return found
}

func sortedIDs(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
