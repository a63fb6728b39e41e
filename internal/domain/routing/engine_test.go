package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/system"
)

func waypoint(t *testing.T, symbol string, x, y float64, hasFuel bool) *shared.Waypoint {
	t.Helper()
	wp, err := shared.NewWaypoint(symbol, x, y)
	require.NoError(t, err)
	wp.HasFuel = hasFuel
	return wp
}

func TestPlanPath_FuelConstrainedRefuel(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "A", 0, 0, true))
	graph.AddWaypoint(waypoint(t, "B", 100, 0, false))
	graph.AddWaypoint(waypoint(t, "GOAL", 200, 0, true))

	path := PlanPath(graph, "A", "GOAL", 60, 100, 30, false)
	require.NotNil(t, path)
	require.GreaterOrEqual(t, len(path.Steps), 1)
	assert.Equal(t, StepRefuel, path.Steps[0].Kind)
	assert.Equal(t, "A", path.Steps[0].Waypoint)

	var travelSteps []Step
	for _, s := range path.Steps {
		if s.Kind == StepTravel {
			travelSteps = append(travelSteps, s)
		}
	}
	require.Len(t, travelSteps, 2)
	assert.Equal(t, shared.FlightModeCruise, travelSteps[0].Mode)
	assert.Equal(t, 100, travelSteps[0].FuelCost)
}

func TestPlanPath_OrbitalHopIsFree(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	planet := waypoint(t, "PLANET", 0, 0, false)
	planet.Orbitals = []string{"STATION"}
	station := waypoint(t, "STATION", 0, 0, false)
	graph.AddWaypoint(planet)
	graph.AddWaypoint(station)

	path := PlanPath(graph, "PLANET", "STATION", 10, 100, 30, false)
	require.NotNil(t, path)
	require.Len(t, path.Steps, 1)
	step := path.Steps[0]
	assert.Equal(t, StepTravel, step.Kind)
	assert.Equal(t, 0.0, step.Distance)
	assert.Equal(t, 0, step.FuelCost)
	assert.Equal(t, 1, step.TimeSeconds)
	assert.Equal(t, shared.FlightModeCruise, step.Mode)
}

func TestPlanPath_SameStartAndGoalIsEmpty(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "A", 0, 0, true))

	path := PlanPath(graph, "A", "A", 50, 100, 30, false)
	require.NotNil(t, path)
	assert.Empty(t, path.Steps)
	assert.Equal(t, 0, path.TotalFuelCost)
	assert.Equal(t, 0, path.TotalTimeSeconds)
}

func TestPlanPath_InsufficientFuelReturnsNil(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "A", 0, 0, false))
	graph.AddWaypoint(waypoint(t, "FAR", 10000, 0, false))

	path := PlanPath(graph, "A", "FAR", 1, 100, 30, false)
	assert.Nil(t, path)
}

func TestPartitionFleet_AssignsEveryMarketExactlyOnce(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "X1-A", 0, 0, true))
	graph.AddWaypoint(waypoint(t, "X1-B", 100, 0, true))
	for i, sym := range []string{"M1", "M2", "M3", "M4"} {
		graph.AddWaypoint(waypoint(t, sym, float64(i*10), float64(i*10), false))
	}

	ships := map[string]ShipState{
		"SHIP-A": {CurrentLocation: "X1-A", FuelCapacity: 400, EngineSpeed: 30},
		"SHIP-B": {CurrentLocation: "X1-B", FuelCapacity: 400, EngineSpeed: 30},
	}

	assignments := PartitionFleet(graph, []string{"M1", "M2", "M3", "M4"}, ships, time.Second)

	seen := map[string]bool{}
	for _, markets := range assignments {
		assert.LessOrEqual(t, len(markets), 3)
		for _, m := range markets {
			assert.False(t, seen[m], "market assigned twice: %s", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 4)
	for ship, markets := range assignments {
		assert.GreaterOrEqual(t, len(markets), 1, "ship %s got no markets", ship)
	}
}

func TestOptimiseTour_TrivialWithNoTargets(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "A", 0, 0, true))

	result := OptimiseTour(graph, nil, "A", 100, 30, time.Second)
	require.NotNil(t, result)
	assert.Equal(t, []string{"A", "A"}, result.Ordered)
}

func TestOptimiseTour_VisitsEveryWaypointOnceAndReturns(t *testing.T) {
	graph := system.NewNavigationGraph("X1")
	graph.AddWaypoint(waypoint(t, "A", 0, 0, true))
	graph.AddWaypoint(waypoint(t, "M1", 10, 0, false))
	graph.AddWaypoint(waypoint(t, "M2", 0, 10, false))
	graph.AddWaypoint(waypoint(t, "M3", 10, 10, false))

	result := OptimiseTour(graph, []string{"M1", "M2", "M3"}, "A", 400, 30, 200*time.Millisecond)
	require.NotNil(t, result)
	assert.Equal(t, "A", result.Ordered[0])
	assert.Equal(t, "A", result.Ordered[len(result.Ordered)-1])

	middle := result.Ordered[1 : len(result.Ordered)-1]
	assert.ElementsMatch(t, []string{"M1", "M2", "M3"}, middle)
}
