package substructure

// backRef points from a plan step to a query vertex placed earlier, with the
// query edge joining them.
type backRef struct {
	q    int
	edge int
}

// planStep places one query vertex.  parent is the earliest placed neighbour
// (-1 when the step opens a new component); refs lists every placed neighbour.
type planStep struct {
	q      int
	parent int
	refs   []backRef
}

// plan is a fixed visiting order over the query vertices.
type plan struct {
	steps []planStep
	// pos[q] is the step index of query vertex q.
	pos []int
}

func (p *plan) refsOf(q int) []backRef {
	return p.steps[p.pos[q]].refs
}

// compilePlan orders the query vertices most constrained first: the next
// vertex has the most placed neighbours, then the highest degree, then the
// lowest index.  When root >= 0 the plan starts there.
func compilePlan(query Graph, root int) *plan {
	n := query.VertexCount()
	p := &plan{steps: make([]planStep, 0, n), pos: make([]int, n)}
	for i := range p.pos {
		p.pos[i] = -1
	}
	placedNbrs := make([]int, n)

	for len(p.steps) < n {
		next := -1
		if len(p.steps) == 0 && root >= 0 && root < n {
			next = root
		} else {
			for v := 0; v < n; v++ {
				if p.pos[v] >= 0 {
					continue
				}
				if next < 0 || placedNbrs[v] > placedNbrs[next] ||
					(placedNbrs[v] == placedNbrs[next] && len(query.Neighbors(v)) > len(query.Neighbors(next))) {
					next = v
				}
			}
		}

		step := planStep{q: next, parent: -1}
		bestPos := n
		for _, u := range query.Neighbors(next) {
			if p.pos[u] < 0 {
				continue
			}
			step.refs = append(step.refs, backRef{q: u, edge: query.EdgeBetween(next, u)})
			if p.pos[u] < bestPos {
				bestPos, step.parent = p.pos[u], u
			}
		}
		p.pos[next] = len(p.steps)
		p.steps = append(p.steps, step)
		for _, u := range query.Neighbors(next) {
			placedNbrs[u]++
		}
	}
	return p
}

// depthFirstStrategy walks a compiled plan.  With root >= 0 the first step
// only tries that target vertex.
type depthFirstStrategy struct {
	plan *plan
	root int
}

func (d *depthFirstStrategy) expand(s *searchState) {
	depth := len(s.path)
	if depth >= len(d.plan.steps) {
		return
	}
	step := d.plan.steps[depth]
	if depth == 0 && d.root >= 0 {
		s.push(step.q, d.root)
		return
	}
	if step.parent >= 0 {
		for _, tn := range s.target.Neighbors(s.mapping[step.parent]) {
			if s.inverse[tn] == Unmapped {
				s.push(step.q, tn)
			}
		}
		return
	}
	for t, owner := range s.inverse {
		if owner == Unmapped {
			s.push(step.q, t)
		}
	}
}

func (d *depthFirstStrategy) admit(*searchState, candidate) bool { return true }

func (d *depthFirstStrategy) placed(*searchState, candidate) bool { return true }

func (d *depthFirstStrategy) unplaced(*searchState) {}
