package solver

import (
	"context"
	"fmt"
	"sort"
)

const weightEps = 1e-9

// Strategy is an enumeration of the search strategies the solver supports.
type Strategy int

const (
	// StrategyBranchAndBound explores placements exhaustively with
	// relaxation-bound pruning and proves the worked count optimal.
	StrategyBranchAndBound Strategy = iota
	// StrategyGreedy runs the first-fit heuristic only. Fast, but the
	// worked count may be below optimal.
	StrategyGreedy
)

// search runs a prepared problem to a solution.
type search interface {
	run(ctx context.Context, pr *prepared) (*solution, error)
}

// newSearch is a factory that creates a search for the given strategy.
func newSearch(strategy Strategy) (search, error) {
	switch strategy {
	case StrategyBranchAndBound:
		return &bbSearch{}, nil
	case StrategyGreedy:
		return &greedySearch{}, nil
	default:
		return nil, fmt.Errorf("unsupported search strategy: %v", strategy)
	}
}

// consumption is the amount one placement option draws from one row.
type consumption struct {
	rowIdx int
	amount float64
}

// placementOption is a normalized option with its row consumptions
// resolved.
type placementOption struct {
	bools []int
	cons  []consumption
}

// searchTask is one placeable task in search order.
type searchTask struct {
	input int // index into the task constraint input slice
	opts  []placementOption
}

// prepared is the search-ready form of a problem: tasks ordered cheapest
// first, row capacities extracted, and suffix weight tables for the
// relaxation bound.
type prepared struct {
	prob     *problem
	tasks    []searchTask
	capacity []float64

	classes []string
	// classCap[c] is the total remaining capacity of class c's rows; kept
	// as a starting value, the search tracks its own copy.
	classCap []float64
	// symmetric reports that every task has the same option row layout, so
	// options whose rows are in identical remaining states lead to
	// isomorphic subtrees and need exploring only once.
	symmetric bool
	// suffix[c][i] holds the ascending-sorted class-c weights of
	// tasks[i:]; used by the k-cheapest relaxation bound.
	suffix [][][]float64
	// classWeight[c][i] is task i's weight in class c.
	classWeight [][]float64
}

// solution is a search result: for every task in prepared order, the chosen
// option index or -1 when dropped.
type solution struct {
	choice  []int
	worked  int
	nodes   int64
	optimal bool
}

// prepare resolves options against rows and builds the bound tables.
func prepare(p *problem) *prepared {
	pr := &prepared{prob: p}

	pr.capacity = make([]float64, len(p.rows))
	rowByBool := make(map[int][]int) // boolID -> row indices
	for i, r := range p.rows {
		pr.capacity[i] = r.bound
		for boolID := range r.terms {
			rowByBool[boolID] = append(rowByBool[boolID], i)
		}
	}
	for _, rows := range rowByBool {
		sort.Ints(rows)
	}

	for _, node := range p.tasks {
		if !node.viable || len(node.options) == 0 {
			continue
		}
		st := searchTask{input: node.index}
		for _, opt := range node.options {
			po := placementOption{bools: opt.bools}
			perRow := make(map[int]float64)
			for _, boolID := range opt.bools {
				for _, rowIdx := range rowByBool[boolID] {
					ref := p.rows[rowIdx].terms[boolID]
					perRow[rowIdx] += p.weight(ref)
				}
			}
			rowIdxs := make([]int, 0, len(perRow))
			for idx := range perRow {
				rowIdxs = append(rowIdxs, idx)
			}
			sort.Ints(rowIdxs)
			for _, idx := range rowIdxs {
				po.cons = append(po.cons, consumption{rowIdx: idx, amount: perRow[idx]})
			}
			st.opts = append(st.opts, po)
		}
		pr.tasks = append(pr.tasks, st)
	}

	pr.buildClasses()
	pr.detectSymmetry()
	pr.orderTasks()
	pr.buildSuffixes()
	return pr
}

// detectSymmetry checks whether every task's options touch the same row
// layout, option for option.
func (pr *prepared) detectSymmetry() {
	if len(pr.tasks) == 0 {
		return
	}
	ref := pr.tasks[0]
	for _, t := range pr.tasks[1:] {
		if len(t.opts) != len(ref.opts) {
			return
		}
		for i, opt := range t.opts {
			if len(opt.cons) != len(ref.opts[i].cons) {
				return
			}
			for j, c := range opt.cons {
				if c.rowIdx != ref.opts[i].cons[j].rowIdx {
					return
				}
			}
		}
	}
	pr.symmetric = true
}

// buildClasses collects the distinct resource classes of the rows.
func (pr *prepared) buildClasses() {
	seen := make(map[string]int)
	for _, r := range pr.prob.rows {
		if _, ok := seen[r.class]; !ok {
			seen[r.class] = len(pr.classes)
			pr.classes = append(pr.classes, r.class)
		}
	}
	pr.classCap = make([]float64, len(pr.classes))
	for i, r := range pr.prob.rows {
		pr.classCap[seen[r.class]] += pr.capacity[i]
	}
}

func (pr *prepared) classIndex(class string) int {
	for i, c := range pr.classes {
		if c == class {
			return i
		}
	}
	return -1
}

// taskClassWeight is the least amount the task can consume from the class
// across its options; an admissible per-class demand for the bound.
func (pr *prepared) taskClassWeight(t searchTask, classIdx int) float64 {
	first := true
	least := 0.0
	for _, opt := range t.opts {
		w := 0.0
		for _, c := range opt.cons {
			if pr.classIndex(pr.prob.rows[c.rowIdx].class) == classIdx {
				w += c.amount
			}
		}
		if first || w < least {
			least = w
			first = false
		}
	}
	return least
}

// orderTasks sorts tasks cheapest-total-demand first so greedy incumbents
// and the relaxation bound are tight early.
func (pr *prepared) orderTasks() {
	total := make(map[int]float64, len(pr.tasks))
	for _, t := range pr.tasks {
		sum := 0.0
		for c := range pr.classes {
			sum += pr.taskClassWeight(t, c) / maxf(pr.classCap[c], 1)
		}
		total[t.input] = sum
	}
	sort.SliceStable(pr.tasks, func(i, j int) bool {
		ti, tj := pr.tasks[i], pr.tasks[j]
		if total[ti.input] != total[tj.input] {
			return total[ti.input] < total[tj.input]
		}
		return ti.input < tj.input
	})
}

// buildSuffixes precomputes, per class, the sorted weight list of every
// task suffix in search order.
func (pr *prepared) buildSuffixes() {
	n := len(pr.tasks)
	pr.classWeight = make([][]float64, len(pr.classes))
	pr.suffix = make([][][]float64, len(pr.classes))
	for c := range pr.classes {
		pr.classWeight[c] = make([]float64, n)
		for i, t := range pr.tasks {
			pr.classWeight[c][i] = pr.taskClassWeight(t, c)
		}
		pr.suffix[c] = make([][]float64, n+1)
		pr.suffix[c][n] = nil
		for i := n - 1; i >= 0; i-- {
			s := append([]float64(nil), pr.suffix[c][i+1]...)
			s = append(s, pr.classWeight[c][i])
			sort.Float64s(s)
			pr.suffix[c][i] = s
		}
	}
}

// upperBound is an optimistic count of how many of tasks[i:] could still be
// placed: per class, the largest k whose k cheapest weights fit in the
// class's remaining aggregate capacity.
func (pr *prepared) upperBound(i int, classRemaining []float64) int {
	best := len(pr.tasks) - i
	for c := range pr.classes {
		remaining := classRemaining[c]
		k := 0
		for _, w := range pr.suffix[c][i] {
			if w > remaining+weightEps {
				break
			}
			remaining -= w
			k++
		}
		if k < best {
			best = k
		}
	}
	return best
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// bbSearch is the exact branch-and-bound strategy.
type bbSearch struct{}

func (s *bbSearch) run(ctx context.Context, pr *prepared) (*solution, error) {
	incumbent := firstFit(pr)

	st := &bbState{
		pr:             pr,
		remaining:      append([]float64(nil), pr.capacity...),
		classRemaining: append([]float64(nil), pr.classCap...),
		choice:         make([]int, len(pr.tasks)),
		best:           incumbent,
	}
	for i := range st.choice {
		st.choice[i] = -1
	}
	st.classOf = make([]int, len(pr.prob.rows))
	for i, r := range pr.prob.rows {
		st.classOf[i] = pr.classIndex(r.class)
	}

	if err := st.dfs(ctx, 0, 0); err != nil {
		return nil, err
	}
	st.best.nodes = st.nodes
	st.best.optimal = true
	return st.best, nil
}

type bbState struct {
	pr             *prepared
	remaining      []float64
	classRemaining []float64
	classOf        []int
	choice         []int
	best           *solution
	nodes          int64
}

func (st *bbState) dfs(ctx context.Context, i, placed int) error {
	st.nodes++
	if st.nodes&1023 == 1 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("search interrupted after %d nodes: %w", st.nodes, ErrTimeout)
		default:
		}
	}

	if placed > st.best.worked {
		st.best = &solution{
			choice: append([]int(nil), st.choice...),
			worked: placed,
		}
	}
	if i == len(st.pr.tasks) {
		return nil
	}
	if placed+st.pr.upperBound(i, st.classRemaining) <= st.best.worked {
		return nil
	}

	task := st.pr.tasks[i]
	for optIdx, opt := range task.opts {
		if !st.fits(opt) {
			continue
		}
		if st.pr.symmetric && st.shadowed(task, optIdx) {
			continue
		}
		st.apply(opt, -1)
		st.choice[i] = optIdx
		if err := st.dfs(ctx, i+1, placed+1); err != nil {
			return err
		}
		st.choice[i] = -1
		st.apply(opt, 1)
	}
	return st.dfs(ctx, i+1, placed)
}

// shadowed reports whether an earlier option of the same task draws the
// same amounts from rows in identical remaining states; exploring this one
// would repeat an isomorphic subtree.
func (st *bbState) shadowed(task searchTask, optIdx int) bool {
	opt := task.opts[optIdx]
	for k := 0; k < optIdx; k++ {
		prev := task.opts[k]
		if len(prev.cons) != len(opt.cons) {
			continue
		}
		same := true
		for j := range opt.cons {
			if prev.cons[j].amount != opt.cons[j].amount ||
				st.remaining[prev.cons[j].rowIdx] != st.remaining[opt.cons[j].rowIdx] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func (st *bbState) fits(opt placementOption) bool {
	for _, c := range opt.cons {
		if c.amount > st.remaining[c.rowIdx]+weightEps {
			return false
		}
	}
	return true
}

// apply charges (sign=-1) or refunds (sign=+1) an option's consumptions.
func (st *bbState) apply(opt placementOption, sign float64) {
	for _, c := range opt.cons {
		st.remaining[c.rowIdx] += sign * c.amount
		st.classRemaining[st.classOf[c.rowIdx]] += sign * c.amount
	}
}

// greedySearch is the first-fit heuristic strategy.
type greedySearch struct{}

func (s *greedySearch) run(_ context.Context, pr *prepared) (*solution, error) {
	sol := firstFit(pr)
	sol.nodes = int64(len(pr.tasks))
	return sol, nil
}

// firstFit places tasks in search order on the first option that fits.
func firstFit(pr *prepared) *solution {
	remaining := append([]float64(nil), pr.capacity...)
	sol := &solution{choice: make([]int, len(pr.tasks))}
	for i := range sol.choice {
		sol.choice[i] = -1
	}
	for i, t := range pr.tasks {
		for optIdx, opt := range t.opts {
			fits := true
			for _, c := range opt.cons {
				if c.amount > remaining[c.rowIdx]+weightEps {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}
			for _, c := range opt.cons {
				remaining[c.rowIdx] -= c.amount
			}
			sol.choice[i] = optIdx
			sol.worked++
			break
		}
	}
	return sol
}
