package sourcepath

import (
	"sync"

	set "github.com/hashicorp/go-set/v2"
)

// Graph records which units depend on which. Nodes keep the order they
// were added in, and every ordering answer falls back to it.
type Graph struct {
	mu    sync.RWMutex
	nodes []string
	index map[string]int
	deps  map[string][]string
	seen  map[string]*set.Set[string]
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		deps:  make(map[string][]string),
		seen:  make(map[string]*set.Set[string]),
	}
}

// AddNode adds n if it is not present yet.
func (g *Graph) AddNode(n string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNode(n)
}

func (g *Graph) addNode(n string) {
	if _, ok := g.index[n]; ok {
		return
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.seen[n] = set.New[string](0)
}

// AddDependency records that from needs to. Self references are dropped.
func (g *Graph) AddDependency(from, to string) {
	if from == to {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNode(from)
	g.addNode(to)
	if g.seen[from].Insert(to) {
		g.deps[from] = append(g.deps[from], to)
	}
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.nodes...)
}

// Dependencies returns what n depends on, in the order recorded.
func (g *Graph) Dependencies(n string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.deps[n]...)
}

// Order returns every node after the nodes it depends on. Within a cycle,
// and between unrelated nodes, insertion order decides.
func (g *Graph) Order() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	waiting := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string)
	for _, n := range g.nodes {
		for _, d := range g.deps[n] {
			waiting[n]++
			dependents[d] = append(dependents[d], n)
		}
	}

	done := set.New[string](len(g.nodes))
	out := make([]string, 0, len(g.nodes))
	emit := func(n string) {
		done.Insert(n)
		out = append(out, n)
		for _, dep := range dependents[n] {
			waiting[dep]--
		}
	}
	for len(out) < len(g.nodes) {
		progress := false
		for _, n := range g.nodes {
			if !done.Contains(n) && waiting[n] <= 0 {
				emit(n)
				progress = true
			}
		}
		if progress {
			continue
		}
		// every remaining node waits on a cycle; release the earliest
		for _, n := range g.nodes {
			if !done.Contains(n) {
				emit(n)
				break
			}
		}
	}
	return out
}

// Cycles returns the groups of nodes that depend on each other, each in
// insertion order.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Tarjan's strongly connected components
	var (
		counter int
		stack   []string
		onStack = set.New[string](0)
		low     = make(map[string]int)
		num     = make(map[string]int)
		out     [][]string
	)
	var visit func(n string)
	visit = func(n string) {
		counter++
		num[n], low[n] = counter, counter
		stack = append(stack, n)
		onStack.Insert(n)
		for _, d := range g.deps[n] {
			if num[d] == 0 {
				visit(d)
				low[n] = min(low[n], low[d])
			} else if onStack.Contains(d) {
				low[n] = min(low[n], num[d])
			}
		}
		if low[n] != num[n] {
			return
		}
		var comp []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack.Remove(top)
			comp = append(comp, top)
			if top == n {
				break
			}
		}
		if len(comp) > 1 {
			out = append(out, g.inOrder(comp))
		}
	}
	for _, n := range g.nodes {
		if num[n] == 0 {
			visit(n)
		}
	}
	return out
}

func (g *Graph) inOrder(ns []string) []string {
	ordered := make([]string, 0, len(ns))
	members := set.From(ns)
	for _, n := range g.nodes {
		if members.Contains(n) {
			ordered = append(ordered, n)
		}
	}
	return ordered
}
