// Package annealsolver is the stochastic fallback solving strategy: a
// greedy quota-respecting initial assignment refined by simulated annealing
// over a swap neighbourhood that stays within one (period, post) bucket, so
// every swap keeps each doctor's quota counts unchanged. It trades the declarative
// guarantees of solver/cpsolver for a dependency-free search that keeps
// working when the CP-SAT binding is unavailable.
package annealsolver

import (
	"context"
	"math"
	"math/rand"

	"github.com/thewbear/doembang-roster/pkg/core/constraint"
	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/core/solver"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
)

const (
	initialTemperature = 10.0
	coolingRate        = 0.995
	maxIterations       = 100_000
)

// Solver implements solver.Solver via greedy init + simulated annealing.
type Solver struct{}

// New returns an annealing Solver.
func New() *Solver {
	return &Solver{}
}

// assignment tracks which doctor occupies which enumerated slot index, the
// inverse index for neighbourhood moves, and a running remaining-quota
// counter so greedy init never overshoots a doctor's effective quota.
type assignment struct {
	slots     []slot.Slot
	doctor    []model.Doctor // doctor[i] is who occupies slots[i]
	remaining map[model.Doctor]map[model.PeriodPost]int
}

// Solve runs greedy initialisation followed by simulated annealing until
// the assignment is hard-feasible, the iteration cap is hit, or ctx/in's
// deadline elapses.
func (s *Solver) Solve(ctx context.Context, in solver.Input) (*schedule.Schedule, error) {
	if len(in.Slots) == 0 {
		return schedule.New(), nil
	}

	if in.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Deadline)
		defer cancel()
	}

	checker := constraint.New(in.Autopsy, in.Periods, in.MonthStart, in.MonthEnd, constraint.Options{
		ChainCountsWeekendImplicitDay: in.ChainCountsWeekendImplicitDay,
		AutopsyAppliesOutsideMonth:    in.AutopsyAppliesOutsideMonth,
	})

	rng := rand.New(rand.NewSource(in.Seed))

	a := newAssignment(in)
	sched := greedyInit(in, a, checker, rng)

	temperature := initialTemperature
	cost := a.violationCount(checker, sched)

	for iter := 0; iter < maxIterations && cost > 0; iter++ {
		select {
		case <-ctx.Done():
			return nil, rostererr.Unsatisfiable{Reason: "deadline exceeded before a feasible schedule was found"}
		default:
		}

		i, j := rng.Intn(len(a.slots)), rng.Intn(len(a.slots))
		if i == j || a.slots[i].Period != a.slots[j].Period || a.slots[i].Post != a.slots[j].Post {
			temperature *= coolingRate
			continue
		}

		newCost := a.trialSwapCost(checker, sched, i, j)
		if newCost <= cost || rng.Float64() < math.Exp(float64(cost-newCost)/temperature) {
			a.commitSwap(sched, i, j)
			cost = newCost
		}

		temperature *= coolingRate
	}

	if cost > 0 {
		return nil, rostererr.Unsatisfiable{Reason: "simulated annealing exhausted its iteration budget without reaching zero hard-rule violations"}
	}

	return sched, nil
}

func newAssignment(in solver.Input) *assignment {
	remaining := make(map[model.Doctor]map[model.PeriodPost]int, len(in.EffectiveQuota))
	for doc, eq := range in.EffectiveQuota {
		remaining[doc] = make(map[model.PeriodPost]int, len(eq))
		for pp, n := range eq {
			remaining[doc][pp] = n
		}
	}
	return &assignment{
		slots:     in.Slots,
		doctor:    make([]model.Doctor, len(in.Slots)),
		remaining: remaining,
	}
}

// greedyInit assigns every slot to the first doctor (in a seeded-random
// order) with remaining quota in that slot's (period, post) bucket,
// preferring a doctor who does not yet violate a hard rule there. Slots
// that cannot be filled without a hard violation are filled anyway by the
// first doctor in that order with remaining quota; annealing is expected to
// repair the remainder.
func greedyInit(in solver.Input, a *assignment, checker *constraint.Checker, rng *rand.Rand) *schedule.Schedule {
	sched := schedule.New()
	order := rng.Perm(len(a.slots))

	doctors := in.Doctors()

	for _, idx := range order {
		sl := a.slots[idx]
		pp := model.PeriodPost{Period: sl.Period, Post: sl.Post}

		best := doctors[0]
		bestHasQuota := false

		start := rng.Intn(len(doctors))
		for k := 0; k < len(doctors); k++ {
			doc := doctors[(start+k)%len(doctors)]
			hasQuota := a.remaining[doc][pp] > 0
			cand := constraint.Candidate{Doctor: doc, Date: sl.Date, Post: sl.Post, Time: sl.Time, Period: sl.Period}

			if hasQuota && !checker.Violates(sched, cand) {
				best, bestHasQuota = doc, true
				break
			}
			if hasQuota && !bestHasQuota {
				best, bestHasQuota = doc, true
			}
		}

		sched.Place(sl.Date, sl.Post, sl.Time, best)
		a.doctor[idx] = best
		if bestHasQuota {
			a.remaining[best][pp]--
		}
	}

	return sched
}

// violationCount counts how many placed slots currently violate a hard
// rule against the rest of the schedule.
func (a *assignment) violationCount(checker *constraint.Checker, sched *schedule.Schedule) int {
	count := 0
	for i, sl := range a.slots {
		doc := a.doctor[i]
		sched.Unplace(sl.Date, sl.Post, sl.Time)
		cand := constraint.Candidate{Doctor: doc, Date: sl.Date, Post: sl.Post, Time: sl.Time, Period: sl.Period}
		if checker.Violates(sched, cand) {
			count++
		}
		sched.Place(sl.Date, sl.Post, sl.Time, doc)
	}
	return count
}

// trialSwapCost reports what violationCount would be after swapping the
// doctors at slot indices i and j, without mutating sched or a permanently.
func (a *assignment) trialSwapCost(checker *constraint.Checker, sched *schedule.Schedule, i, j int) int {
	a.commitSwap(sched, i, j)
	cost := a.violationCount(checker, sched)
	a.commitSwap(sched, i, j) // swap is its own inverse
	return cost
}

// commitSwap exchanges the doctors occupying slot indices i and j.
func (a *assignment) commitSwap(sched *schedule.Schedule, i, j int) {
	a.doctor[i], a.doctor[j] = a.doctor[j], a.doctor[i]
	si, sj := a.slots[i], a.slots[j]
	sched.Place(si.Date, si.Post, si.Time, a.doctor[i])
	sched.Place(sj.Date, sj.Post, sj.Time, a.doctor[j])
}
