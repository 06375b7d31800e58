package e2e

import (
	"context"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/placekit/bladealloc/api/v1alpha1"
	"github.com/placekit/bladealloc/internal/planner"
	"github.com/placekit/bladealloc/pkg/solver"
)

var _ = Describe("Default scenario", func() {
	var (
		ctx      context.Context
		scenario v1alpha1.Scenario
	)

	BeforeEach(func() {
		ctx = context.Background()
		scenario = v1alpha1.DefaultScenario()
	})

	It("places the reference-optimal number of tasks", func() {
		prob, err := planner.FromScenario(scenario)
		Expect(err).NotTo(HaveOccurred())

		pl := planner.New(planner.WithTimeout(time.Minute))
		placement, err := pl.Plan(ctx, prob)
		Expect(err).NotTo(HaveOccurred())

		Expect(placement.Worked).To(Equal(bruteForceOptimum(scenario)))
		Expect(placement.Worked).To(Equal(14))
	})

	It("produces a placement that satisfies every capacity", func() {
		prob, err := planner.FromScenario(scenario)
		Expect(err).NotTo(HaveOccurred())

		pl := planner.New(planner.WithTimeout(time.Minute))
		placement, err := pl.Plan(ctx, prob)
		Expect(err).NotTo(HaveOccurred())

		seen := map[int]bool{}
		for bi, ids := range placement.Blades {
			var cpu float64
			var mem int
			for _, id := range ids {
				Expect(seen[id]).To(BeFalse(), "task %d placed twice", id)
				seen[id] = true
				cpu += scenario.Tasks[id].CPU
				mem += scenario.Tasks[id].Memory
			}
			Expect(cpu).To(BeNumerically("<=", scenario.Blades[bi].CPU))
			Expect(mem).To(BeNumerically("<=", scenario.Blades[bi].Memory))
		}
		Expect(seen).To(HaveLen(placement.Worked))
	})

	It("never beats the exact strategy with the greedy one", func() {
		prob, err := planner.FromScenario(scenario)
		Expect(err).NotTo(HaveOccurred())

		exact, err := planner.New(planner.WithTimeout(time.Minute)).Plan(ctx, prob)
		Expect(err).NotTo(HaveOccurred())
		greedy, err := planner.New(planner.WithStrategy(solver.StrategyGreedy)).Plan(ctx, prob)
		Expect(err).NotTo(HaveOccurred())

		Expect(greedy.Worked).To(BeNumerically("<=", exact.Worked))
	})
})

// bruteForceOptimum computes the maximum number of placeable tasks with a
// plain depth-first enumeration. It shares no code with the solver and is
// deliberately simple: an aggregate capacity bound and an at-most-one-empty-
// blade rule (valid because every blade in the scenario is identical) keep
// the enumeration tractable.
func bruteForceOptimum(s v1alpha1.Scenario) int {
	n := len(s.Tasks)

	// Tasks sorted cheapest first so deep branches fill up early.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := s.Tasks[order[a]], s.Tasks[order[b]]
		if ta.CPU != tb.CPU {
			return ta.CPU < tb.CPU
		}
		return ta.Memory < tb.Memory
	})

	// Ascending cost suffixes for the aggregate bound.
	suffixCPU := make([][]float64, n+1)
	suffixMem := make([][]int, n+1)
	for i := n - 1; i >= 0; i-- {
		cpus := append([]float64(nil), suffixCPU[i+1]...)
		mems := append([]int(nil), suffixMem[i+1]...)
		cpus = append(cpus, s.Tasks[order[i]].CPU)
		mems = append(mems, s.Tasks[order[i]].Memory)
		sort.Float64s(cpus)
		sort.Ints(mems)
		suffixCPU[i] = cpus
		suffixMem[i] = mems
	}

	cpuLeft := make([]float64, len(s.Blades))
	memLeft := make([]int, len(s.Blades))
	var totalCPU float64
	var totalMem int
	for i, b := range s.Blades {
		cpuLeft[i] = b.CPU
		memLeft[i] = b.Memory
		totalCPU += b.CPU
		totalMem += b.Memory
	}

	bound := func(i int, cpu float64, mem int) int {
		k := 0
		for _, c := range suffixCPU[i] {
			if c > cpu+1e-9 {
				break
			}
			cpu -= c
			k++
		}
		m := 0
		for _, c := range suffixMem[i] {
			if c > mem {
				break
			}
			mem -= c
			m++
		}
		if m < k {
			return m
		}
		return k
	}

	best := 0
	var dfs func(i, placed int, cpu float64, mem int)
	dfs = func(i, placed int, cpu float64, mem int) {
		if placed > best {
			best = placed
		}
		if i == n || placed+bound(i, cpu, mem) <= best {
			return
		}
		task := s.Tasks[order[i]]
		usedEmpty := false
		for b := range cpuLeft {
			empty := cpuLeft[b] == s.Blades[b].CPU && memLeft[b] == s.Blades[b].Memory
			if empty {
				if usedEmpty {
					continue
				}
				usedEmpty = true
			}
			if task.CPU > cpuLeft[b]+1e-9 || task.Memory > memLeft[b] {
				continue
			}
			cpuLeft[b] -= task.CPU
			memLeft[b] -= task.Memory
			dfs(i+1, placed+1, cpu-task.CPU, mem-task.Memory)
			cpuLeft[b] += task.CPU
			memLeft[b] += task.Memory
		}
		dfs(i+1, placed, cpu, mem)
	}
	dfs(0, 0, totalCPU, totalMem)
	return best
}
