package planner_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/placekit/bladealloc/api/v1alpha1"
	"github.com/placekit/bladealloc/internal/planner"
	"github.com/placekit/bladealloc/pkg/model"
	"github.com/placekit/bladealloc/pkg/solver"
)

// buildProblem assembles a Problem with every blade a candidate for every
// task. Blades are (cpu, mem) pairs, tasks likewise.
func buildProblem(blades [][2]float64, tasks [][2]float64) planner.Problem {
	pool, err := model.NewPool(len(tasks))
	Expect(err).NotTo(HaveOccurred())

	prob := planner.Problem{Pool: pool}
	for _, spec := range blades {
		b, err := pool.NewBlade("blade", spec[0], int(spec[1]))
		Expect(err).NotTo(HaveOccurred())
		prob.Blades = append(prob.Blades, b)
	}
	for i, spec := range tasks {
		t, err := model.NewTask(i, spec[0], int(spec[1]))
		Expect(err).NotTo(HaveOccurred())
		prob.Tasks = append(prob.Tasks, t)
	}
	return prob
}

var _ = Describe("Planner", func() {
	var (
		ctx context.Context
		pl  *planner.Planner
	)

	BeforeEach(func() {
		ctx = context.Background()
		pl = planner.New(planner.WithTimeout(30 * time.Second))
	})

	Context("with a single blade", func() {
		It("places a task that fits", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}},
				[][2]float64{{4, 64}},
			)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(Equal(1))
			Expect(placement.Blades[0]).To(Equal([]int{0}))
		})

		It("drops one of two tasks that cannot share the blade", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}},
				[][2]float64{{5, 64}, {5, 64}},
			)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(Equal(1))
			Expect(placement.Blades[0]).To(HaveLen(1))
		})

		It("drops tasks whose memory cost alone exceeds capacity", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}},
				[][2]float64{{1, 200}, {1, 64}},
			)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(Equal(1))
			Expect(placement.Blades[0]).To(Equal([]int{1}))
		})
	})

	Context("with candidate restrictions", func() {
		It("honors the restricted blade set", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}, {8, 128}},
				[][2]float64{{4, 64}},
			)
			prob.Candidates = map[int][]int{0: {1}}

			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(Equal(1))
			Expect(placement.Blades[0]).To(BeEmpty())
			Expect(placement.Blades[1]).To(Equal([]int{0}))
		})

		It("rejects a task with an empty candidate set", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}},
				[][2]float64{{4, 64}},
			)
			prob.Candidates = map[int][]int{0: {}}

			_, err := pl.Plan(ctx, prob)
			Expect(err).To(MatchError(model.ErrConfiguration))
		})
	})

	Context("with multiple blades", func() {
		It("never places a task on two blades", func() {
			prob := buildProblem(
				[][2]float64{{8, 128}, {8, 128}, {8, 128}},
				[][2]float64{{2, 16}, {2, 16}, {2, 16}, {2, 16}, {2, 16}},
			)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(Equal(5))

			seen := map[int]bool{}
			for _, ids := range placement.Blades {
				for _, id := range ids {
					Expect(seen[id]).To(BeFalse(), "task %d placed twice", id)
					seen[id] = true
				}
			}
			Expect(seen).To(HaveLen(5))
		})

		It("keeps every blade within capacity", func() {
			blades := [][2]float64{{8, 128}, {8, 128}}
			tasks := [][2]float64{
				{0.4, 1}, {2, 12}, {3, 48}, {5, 64}, {7, 96},
				{0.4, 1}, {2, 12}, {3, 48},
			}
			prob := buildProblem(blades, tasks)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())

			for bi, ids := range placement.Blades {
				var cpu float64
				var mem int
				for _, id := range ids {
					cpu += tasks[id][0]
					mem += int(tasks[id][1])
				}
				Expect(cpu).To(BeNumerically("<=", blades[bi][0]))
				Expect(mem).To(BeNumerically("<=", int(blades[bi][1])))
			}
		})

		It("places more tasks when capacity grows", func() {
			tasks := [][2]float64{{5, 30}, {5, 30}, {5, 30}}

			small, err := pl.Plan(ctx, buildProblem([][2]float64{{8, 128}}, tasks))
			Expect(err).NotTo(HaveOccurred())
			large, err := pl.Plan(ctx, buildProblem([][2]float64{{16, 128}}, tasks))
			Expect(err).NotTo(HaveOccurred())

			Expect(small.Worked).To(Equal(1))
			Expect(large.Worked).To(Equal(3))
		})
	})

	Context("with the greedy strategy", func() {
		It("places a valid subset of tasks", func() {
			pl = planner.New(planner.WithStrategy(solver.StrategyGreedy))
			prob := buildProblem(
				[][2]float64{{8, 128}, {8, 128}},
				[][2]float64{{5, 64}, {5, 64}, {3, 48}},
			)
			placement, err := pl.Plan(ctx, prob)
			Expect(err).NotTo(HaveOccurred())
			Expect(placement.Worked).To(BeNumerically(">=", 1))
			Expect(placement.Worked).To(BeNumerically("<=", 3))
		})
	})

	Context("with malformed problems", func() {
		It("rejects a nil pool", func() {
			_, err := pl.Plan(ctx, planner.Problem{})
			Expect(err).To(MatchError(model.ErrConfiguration))
		})

		It("rejects duplicate task ids", func() {
			prob := buildProblem([][2]float64{{8, 128}}, [][2]float64{{1, 1}, {1, 1}})
			dup, err := model.NewTask(0, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			prob.Tasks[1] = dup

			_, err = pl.Plan(ctx, prob)
			Expect(err).To(MatchError(model.ErrConfiguration))
		})

		It("rejects candidate indices out of range", func() {
			prob := buildProblem([][2]float64{{8, 128}}, [][2]float64{{1, 1}})
			prob.Candidates = map[int][]int{0: {5}}

			_, err := pl.Plan(ctx, prob)
			Expect(err).To(MatchError(model.ErrConfiguration))
		})
	})
})

var _ = Describe("FromScenario", func() {
	It("builds a problem from the default scenario", func() {
		prob, err := planner.FromScenario(v1alpha1.DefaultScenario())
		Expect(err).NotTo(HaveOccurred())
		Expect(prob.Blades).To(HaveLen(4))
		Expect(prob.Tasks).To(HaveLen(20))
		Expect(prob.Candidates).To(BeNil())
	})

	It("maps candidate blade names to indices", func() {
		s := v1alpha1.Scenario{
			Blades: []v1alpha1.BladeSpec{
				{Name: "small", CPU: 4, Memory: 64},
				{Name: "big", CPU: 16, Memory: 256},
			},
			Tasks: []v1alpha1.TaskSpec{
				{CPU: 2, Memory: 32},
				{CPU: 10, Memory: 128, Blades: []string{"big"}},
			},
		}
		prob, err := planner.FromScenario(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(prob.Candidates).To(Equal(map[int][]int{1: {1}}))
	})

	It("rejects an unresolvable candidate name", func() {
		s := v1alpha1.Scenario{
			Blades: []v1alpha1.BladeSpec{{Name: "only", CPU: 4, Memory: 64}},
			Tasks:  []v1alpha1.TaskSpec{{CPU: 1, Memory: 1, Blades: []string{"ghost"}}},
		}
		_, err := planner.FromScenario(s)
		Expect(err).To(MatchError(model.ErrConfiguration))
	})
})
