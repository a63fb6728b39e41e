package routing

import (
	"container/heap"
	"sort"
	"time"

	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/system"
)

// StepKind discriminates the two kinds of steps a Path can contain.
type StepKind int

const (
	StepTravel StepKind = iota
	StepRefuel
)

// Step is one element of a planned Path: either a TRAVEL hop or a REFUEL stop.
type Step struct {
	Kind        StepKind
	Waypoint    string
	Mode        shared.FlightMode
	Distance    float64
	FuelCost    int
	TimeSeconds int
	RefuelTo    int
}

// Path is an ordered sequence of Steps plus its totals.
type Path struct {
	Steps            []Step
	TotalFuelCost    int
	TotalTimeSeconds int
}

// fuelSafetyReserve is the minimum fuel SelectOptimalFlightMode must leave behind.
const fuelSafetyReserve = 4

// fuelBucketSize groups fuel levels for Dijkstra state deduplication.
const fuelBucketSize = 10

// refuelFullThreshold is the fraction of capacity below which a fuel stop is considered.
const refuelFullThreshold = 0.9

type dijkstraState struct {
	waypoint string
	fuel     int
}

func bucketKey(waypoint string, fuel int) string {
	return waypoint + "#" + itoa(fuel/fuelBucketSize)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

type pqEntry struct {
	state dijkstraState
	time  int
	seq   int
	prior string // key of predecessor settled state, "" for the origin
	step  Step
}

type priorityQueue []pqEntry

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].time != pq[j].time {
		return pq[i].time < pq[j].time
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(pqEntry)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// distanceBetween returns the distance used for routing purposes: zero for
// orbital neighbours, Euclidean otherwise.
func distanceBetween(a, b *shared.Waypoint) float64 {
	if a.Symbol == b.Symbol {
		return 0
	}
	if a.IsOrbitalOf(b) {
		return 0
	}
	return a.DistanceTo(b)
}

// PlanPath finds the fastest fuel-feasible route from start to goal, over the
// (waypoint, bucketed-fuel) state space described in the routing engine spec.
// Returns nil if no fuel-feasible path exists.
func PlanPath(graph *system.NavigationGraph, start, goal string, currentFuel, fuelCapacity, engineSpeed int, preferCruise bool) *Path {
	if start == goal {
		return &Path{Steps: []Step{}}
	}
	if !graph.HasWaypoint(start) || !graph.HasWaypoint(goal) {
		return nil
	}

	settled := make(map[string]bool)
	best := make(map[string]pqEntry)

	pq := &priorityQueue{}
	heap.Init(pq)
	seq := 0
	origin := pqEntry{state: dijkstraState{waypoint: start, fuel: currentFuel}, time: 0, seq: seq}
	heap.Push(pq, origin)
	best[bucketKey(start, currentFuel)] = origin

	goalWp, _ := graph.GetWaypoint(goal)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pqEntry)
		key := bucketKey(current.state.waypoint, current.state.fuel)
		if settled[key] {
			continue
		}
		settled[key] = true
		best[key] = current

		if current.state.waypoint == goal {
			return reconstructPath(best, key)
		}

		fromWp, err := graph.GetWaypoint(current.state.waypoint)
		if err != nil {
			continue
		}

		// Refuel successor.
		if fromWp.HasFuel {
			distToGoal := distanceBetween(fromWp, goalWp)
			driftCostToGoal := shared.FlightModeDrift.FuelCost(distToGoal)
			belowThreshold := float64(current.state.fuel) < refuelFullThreshold*float64(fuelCapacity)
			insufficientForGoal := current.state.fuel < driftCostToGoal
			if belowThreshold || insufficientForGoal {
				if current.state.fuel < fuelCapacity {
					seq++
					nextState := dijkstraState{waypoint: current.state.waypoint, fuel: fuelCapacity}
					nextKey := bucketKey(nextState.waypoint, nextState.fuel)
					if !settled[nextKey] {
						heap.Push(pq, pqEntry{
							state: nextState,
							time:  current.time,
							seq:   seq,
							prior: key,
							step: Step{
								Kind:     StepRefuel,
								Waypoint: current.state.waypoint,
								RefuelTo: fuelCapacity,
							},
						})
					}
				}
			}
		}

		// Travel successors: every other waypoint in the graph.
		for symbol, toWp := range graph.Waypoints {
			if symbol == current.state.waypoint {
				continue
			}
			d := distanceBetween(fromWp, toWp)
			cruiseCost := shared.FlightModeCruise.FuelCost(d)
			mode := shared.SelectOptimalFlightMode(current.state.fuel, cruiseCost, fuelSafetyReserve)
			if preferCruise && mode == shared.FlightModeBurn && current.state.fuel >= cruiseCost+fuelSafetyReserve {
				mode = shared.FlightModeCruise
			}
			fuelCost := mode.FuelCost(d)
			remaining := current.state.fuel - fuelCost
			if remaining < 0 {
				continue
			}
			travelTime := mode.TravelTime(d, engineSpeed)
			seq++
			nextState := dijkstraState{waypoint: symbol, fuel: remaining}
			nextKey := bucketKey(symbol, remaining)
			if settled[nextKey] {
				continue
			}
			heap.Push(pq, pqEntry{
				state: nextState,
				time:  current.time + travelTime,
				seq:   seq,
				prior: key,
				step: Step{
					Kind:        StepTravel,
					Waypoint:    symbol,
					Mode:        mode,
					Distance:    d,
					FuelCost:    fuelCost,
					TimeSeconds: travelTime,
				},
			})
		}
	}

	return nil
}

func reconstructPath(best map[string]pqEntry, goalKey string) *Path {
	var steps []Step
	key := goalKey
	for {
		entry := best[key]
		if entry.prior == "" {
			break
		}
		steps = append([]Step{entry.step}, steps...)
		key = entry.prior
	}

	path := &Path{Steps: steps}
	for _, s := range steps {
		path.TotalFuelCost += s.FuelCost
		path.TotalTimeSeconds += s.TimeSeconds
	}
	return path
}

// TourResult is the outcome of optimising a multi-stop tour.
type TourResult struct {
	Ordered          []string
	Legs             []*Path
	TotalTimeSeconds int
}

// OptimiseTour finds a fast closed tour starting and ending at start and
// visiting every waypoint in targets exactly once, using a nearest-neighbour
// construction followed by a time-bounded 2-opt improvement pass.
func OptimiseTour(graph *system.NavigationGraph, targets []string, start string, fuelCapacity, engineSpeed int, budget time.Duration) *TourResult {
	if len(targets) == 0 {
		return &TourResult{Ordered: []string{start, start}}
	}

	deadline := time.Now().Add(budget)

	// Cost matrix over {start} ∪ targets, using plan_path time (∞ sentinel if unreachable).
	nodes := append([]string{start}, targets...)
	const infinity = 1_000_000
	cost := make(map[string]map[string]int, len(nodes))
	legCache := make(map[string]*Path)
	for _, from := range nodes {
		cost[from] = make(map[string]int, len(nodes))
		for _, to := range nodes {
			if from == to {
				cost[from][to] = 0
				continue
			}
			p := PlanPath(graph, from, to, fuelCapacity, fuelCapacity, engineSpeed, false)
			if p == nil {
				cost[from][to] = infinity
				continue
			}
			cost[from][to] = p.TotalTimeSeconds
			legCache[from+"->"+to] = p
		}
	}

	// Nearest-neighbour construction.
	visited := map[string]bool{start: true}
	order := []string{start}
	current := start
	for len(order) < len(nodes) {
		bestNode := ""
		bestCost := infinity + 1
		for _, n := range nodes {
			if visited[n] {
				continue
			}
			if cost[current][n] < bestCost {
				bestCost = cost[current][n]
				bestNode = n
			}
		}
		if bestNode == "" {
			break
		}
		visited[bestNode] = true
		order = append(order, bestNode)
		current = bestNode
	}
	order = append(order, start)

	tourLen := func(o []string) int {
		total := 0
		for i := 0; i+1 < len(o); i++ {
			total += cost[o[i]][o[i+1]]
		}
		return total
	}

	// 2-opt improvement, bounded by the wall-clock budget.
	improved := true
	for improved && time.Now().Before(deadline) {
		improved = false
		for i := 1; i < len(order)-2 && time.Now().Before(deadline); i++ {
			for j := i + 1; j < len(order)-1; j++ {
				reversed := reverseSegment(order, i, j)
				if tourLen(reversed) < tourLen(order) {
					order = reversed
					improved = true
				}
			}
		}
	}

	legs := make([]*Path, 0, len(order)-1)
	totalTime := 0
	for i := 0; i+1 < len(order); i++ {
		leg := legCache[order[i]+"->"+order[i+1]]
		if leg == nil {
			leg = PlanPath(graph, order[i], order[i+1], fuelCapacity, fuelCapacity, engineSpeed, false)
		}
		if leg != nil {
			legs = append(legs, leg)
			totalTime += leg.TotalTimeSeconds
		}
	}

	return &TourResult{Ordered: order, Legs: legs, TotalTimeSeconds: totalTime}
}

func reverseSegment(order []string, i, j int) []string {
	out := make([]string, len(order))
	copy(out, order)
	for l, r := i, j; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// ShipState is a ship's fleet-partitioning input: current location plus its
// fuel/engine characteristics.
type ShipState struct {
	CurrentLocation string
	FuelCapacity    int
	EngineSpeed     int
}

// PartitionFleet splits markets across ships to minimise makespan (longest
// single-ship tour time), using a greedy list-scheduling construction: every
// market is assigned to whichever ship's running tour grows least by
// visiting it next. Every market is assigned to exactly one ship; ships with
// no markets left get an empty list.
func PartitionFleet(graph *system.NavigationGraph, markets []string, ships map[string]ShipState, budget time.Duration) map[string][]string {
	assignments := make(map[string][]string, len(ships))
	shipSymbols := make([]string, 0, len(ships))
	for symbol := range ships {
		assignments[symbol] = []string{}
		shipSymbols = append(shipSymbols, symbol)
	}
	sort.Strings(shipSymbols) // deterministic iteration order

	if len(markets) == 0 || len(shipSymbols) == 0 {
		return assignments
	}

	deadline := time.Now().Add(budget)
	const infinity = 1_000_000

	type tourState struct {
		lastWaypoint string
		elapsed      int
	}
	tours := make(map[string]*tourState, len(shipSymbols))
	for _, symbol := range shipSymbols {
		tours[symbol] = &tourState{lastWaypoint: ships[symbol].CurrentLocation}
	}

	remaining := make(map[string]bool, len(markets))
	for _, m := range markets {
		remaining[m] = true
	}

	for len(remaining) > 0 && time.Now().Before(deadline) {
		bestShip := ""
		bestMarket := ""
		bestMarginal := infinity + 1

		for _, symbol := range shipSymbols {
			ship := ships[symbol]
			tour := tours[symbol]
			for market := range remaining {
				leg := PlanPath(graph, tour.lastWaypoint, market, ship.FuelCapacity, ship.FuelCapacity, ship.EngineSpeed, false)
				marginal := infinity
				if leg != nil {
					marginal = tour.elapsed + leg.TotalTimeSeconds
				}
				if marginal < bestMarginal {
					bestMarginal = marginal
					bestShip = symbol
					bestMarket = market
				}
			}
		}

		if bestShip == "" {
			// Nothing reachable by anyone; drop remaining markets onto the
			// first ship's list unassigned-but-present so none are lost.
			for market := range remaining {
				assignments[shipSymbols[0]] = append(assignments[shipSymbols[0]], market)
			}
			break
		}

		assignments[bestShip] = append(assignments[bestShip], bestMarket)
		tours[bestShip].lastWaypoint = bestMarket
		tours[bestShip].elapsed = bestMarginal
		delete(remaining, bestMarket)
	}

	return assignments
}
