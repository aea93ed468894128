package service

import (
	"context"
	"math/rand"
	"sort"
	"time"
)

// SolveStatus reports the outcome of a solver run.
type SolveStatus string

const (
	SolveOptimal    SolveStatus = "OPTIMAL"
	SolveFeasible   SolveStatus = "FEASIBLE"
	SolveInfeasible SolveStatus = "INFEASIBLE"
	SolveTimeout    SolveStatus = "TIMEOUT"
)

// VarID identifies one boolean decision variable.
type VarID int

// ObjectiveTerm weights a variable in the linear objective.
type ObjectiveTerm struct {
	Var    VarID
	Weight int64
}

// Solution is the assignment a solver produced.
type Solution struct {
	Status   SolveStatus
	Selected []bool
	Score    int64
	Restarts int
	// UnmetForcedGroups counts exactly-one groups left without a selected
	// member. The run continues; the affected groups simply yield nothing.
	UnmetForcedGroups int
}

// Solver abstracts a combinatorial engine over boolean selection variables.
// The allocation pipeline speaks only this contract, so an exact CP/ILP
// binding can replace the shipped heuristic without touching the model
// builders.
type Solver interface {
	AddVar() VarID
	AddAtMostOne(vars []VarID)
	AddExactlyOne(vars []VarID)
	// AddLoadBalanceAux registers a per-company imbalance penalty: the
	// spread between the busiest and least-busy panel, multiplied by
	// weight, is subtracted from the objective.
	AddLoadBalanceAux(companyID string, panelVars [][]VarID, weight int64)
	SetObjective(terms []ObjectiveTerm)
	Solve(ctx context.Context, limit time.Duration) (Solution, error)
}

// SolverFactory builds a fresh solver per allocation run.
type SolverFactory func(seed int64, maxRestarts int) Solver

type balanceGroup struct {
	companyID string
	panels    [][]VarID
	weight    int64
}

// greedySolver is a seeded multi-restart greedy engine. Each restart
// scans variables in descending weight order with a fresh random
// tie-break, selects every variable whose constraint groups are still
// free, scores the result with the full objective (including the balance
// penalties), and keeps the best incumbent until the restart cap or the
// time budget is reached.
type greedySolver struct {
	rng         *rand.Rand
	maxRestarts int

	weights   []int64
	groups    [][]VarID
	exact     []int // indices into groups that are exactly-one
	varGroups [][]int
	balance   []balanceGroup
}

// NewGreedySolver builds the heuristic solver with an injected RNG seed
// for deterministic tie-breaking.
func NewGreedySolver(seed int64, maxRestarts int) Solver {
	if maxRestarts <= 0 {
		maxRestarts = 1
	}
	return &greedySolver{
		rng:         rand.New(rand.NewSource(seed)),
		maxRestarts: maxRestarts,
	}
}

func (s *greedySolver) AddVar() VarID {
	id := VarID(len(s.weights))
	s.weights = append(s.weights, 0)
	s.varGroups = append(s.varGroups, nil)
	return id
}

func (s *greedySolver) addGroup(vars []VarID, forced bool) {
	idx := len(s.groups)
	s.groups = append(s.groups, vars)
	if forced {
		s.exact = append(s.exact, idx)
	}
	for _, v := range vars {
		s.varGroups[v] = append(s.varGroups[v], idx)
	}
}

func (s *greedySolver) AddAtMostOne(vars []VarID) {
	s.addGroup(vars, false)
}

func (s *greedySolver) AddExactlyOne(vars []VarID) {
	s.addGroup(vars, true)
}

func (s *greedySolver) AddLoadBalanceAux(companyID string, panelVars [][]VarID, weight int64) {
	s.balance = append(s.balance, balanceGroup{companyID: companyID, panels: panelVars, weight: weight})
}

func (s *greedySolver) SetObjective(terms []ObjectiveTerm) {
	for _, term := range terms {
		s.weights[term.Var] += term.Weight
	}
}

func (s *greedySolver) Solve(ctx context.Context, limit time.Duration) (Solution, error) {
	n := len(s.weights)
	if n == 0 {
		return Solution{Status: SolveOptimal}, nil
	}

	deadline := time.Now().Add(limit)
	var (
		best      []bool
		bestScore int64
		restarts  int
		timedOut  bool
	)

	order := make([]int, n)
	for restarts < s.maxRestarts {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			timedOut = true
			break
		}

		perm := s.rng.Perm(n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			va, vb := order[a], order[b]
			if s.weights[va] != s.weights[vb] {
				return s.weights[va] > s.weights[vb]
			}
			return perm[va] < perm[vb]
		})

		selected := make([]bool, n)
		groupUsed := make([]bool, len(s.groups))
		var score int64
		for _, v := range order {
			if s.weights[v] <= 0 {
				continue
			}
			free := true
			for _, g := range s.varGroups[v] {
				if groupUsed[g] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			selected[v] = true
			for _, g := range s.varGroups[v] {
				groupUsed[g] = true
			}
			score += s.weights[v]
		}
		score -= s.imbalancePenalty(selected)

		if best == nil || score > bestScore {
			best = selected
			bestScore = score
		}
		restarts++
	}

	sol := Solution{
		Selected: best,
		Score:    bestScore,
		Restarts: restarts,
	}
	sol.UnmetForcedGroups = s.countUnmetForced(best)

	switch {
	case best == nil:
		sol.Status = SolveTimeout
	case timedOut:
		sol.Status = SolveTimeout
	case sol.UnmetForcedGroups > 0:
		sol.Status = SolveInfeasible
	default:
		sol.Status = SolveFeasible
	}
	return sol, nil
}

func (s *greedySolver) imbalancePenalty(selected []bool) int64 {
	var penalty int64
	for _, bg := range s.balance {
		if len(bg.panels) < 2 {
			continue
		}
		minLoad, maxLoad := -1, 0
		for _, panel := range bg.panels {
			load := 0
			for _, v := range panel {
				if selected[v] {
					load++
				}
			}
			if minLoad < 0 || load < minLoad {
				minLoad = load
			}
			if load > maxLoad {
				maxLoad = load
			}
		}
		penalty += bg.weight * int64(maxLoad-minLoad)
	}
	return penalty
}

func (s *greedySolver) countUnmetForced(selected []bool) int {
	if selected == nil {
		return len(s.exact)
	}
	unmet := 0
	for _, gi := range s.exact {
		met := false
		for _, v := range s.groups[gi] {
			if selected[v] {
				met = true
				break
			}
		}
		if !met {
			unmet++
		}
	}
	return unmet
}
