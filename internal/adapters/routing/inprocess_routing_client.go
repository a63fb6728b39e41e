package routing

import (
	"context"
	"time"

	domainRouting "github.com/acdtunes/spacetraders-fleet/internal/domain/routing"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/system"
)

// tourBudget bounds the wall-clock time OptimiseTour/PartitionFleet may spend
// searching for an improved solution. Production deployments can widen this
// via InProcessRoutingClient.Budget; tests keep the default tight.
const defaultSolveBudget = 1 * time.Second

// InProcessRoutingClient implements domainRouting.RoutingClient by calling the
// in-process Dijkstra/TSP/VRP engine directly, rather than delegating to the
// out-of-process routing-service. It is the default RoutingClient; the gRPC
// client remains available for operators who want the solver running under a
// separate process (see cmd/routing-service).
type InProcessRoutingClient struct {
	Budget time.Duration
}

// NewInProcessRoutingClient creates a routing client backed by the in-process engine.
func NewInProcessRoutingClient() *InProcessRoutingClient {
	return &InProcessRoutingClient{Budget: defaultSolveBudget}
}

func (c *InProcessRoutingClient) budget() time.Duration {
	if c.Budget <= 0 {
		return defaultSolveBudget
	}
	return c.Budget
}

func buildGraph(systemSymbol string, waypoints []*system.WaypointData) *system.NavigationGraph {
	graph := system.NewNavigationGraph(systemSymbol)
	for _, wp := range waypoints {
		sw, err := shared.NewWaypoint(wp.Symbol, wp.X, wp.Y)
		if err != nil {
			continue
		}
		sw.HasFuel = wp.HasFuel
		sw.Orbitals = wp.Orbitals
		graph.AddWaypoint(sw)
	}
	return graph
}

func stepsToDTO(steps []domainRouting.Step) []*domainRouting.RouteStepData {
	out := make([]*domainRouting.RouteStepData, 0, len(steps))
	for _, s := range steps {
		dto := &domainRouting.RouteStepData{
			Waypoint:    s.Waypoint,
			FuelCost:    s.FuelCost,
			TimeSeconds: s.TimeSeconds,
			Mode:        s.Mode.Name(),
		}
		if s.Kind == domainRouting.StepRefuel {
			dto.Action = domainRouting.RouteActionRefuel
		} else {
			dto.Action = domainRouting.RouteActionTravel
		}
		out = append(out, dto)
	}
	return out
}

// PlanRoute finds the fastest fuel-feasible path from start to goal.
func (c *InProcessRoutingClient) PlanRoute(ctx context.Context, req *domainRouting.RouteRequest) (*domainRouting.RouteResponse, error) {
	graph := buildGraph(req.SystemSymbol, req.Waypoints)
	preferCruise := req.PreferCruise && !req.FuelEfficient
	path := domainRouting.PlanPath(graph, req.StartWaypoint, req.GoalWaypoint, req.CurrentFuel, req.FuelCapacity, req.EngineSpeed, preferCruise)
	if path == nil {
		return &domainRouting.RouteResponse{}, nil
	}
	totalDistance := 0.0
	for _, s := range path.Steps {
		totalDistance += s.Distance
	}
	return &domainRouting.RouteResponse{
		Steps:            stepsToDTO(path.Steps),
		TotalFuelCost:    path.TotalFuelCost,
		TotalTimeSeconds: path.TotalTimeSeconds,
		TotalDistance:    totalDistance,
	}, nil
}

// OptimizeTour sequences a set of waypoints into a fast tour, ignoring fuel
// (used when the caller already knows fuel is not a constraint for the leg).
func (c *InProcessRoutingClient) OptimizeTour(ctx context.Context, req *domainRouting.TourRequest) (*domainRouting.TourResponse, error) {
	graph := buildGraph(req.SystemSymbol, req.AllWaypoints)
	result := domainRouting.OptimiseTour(graph, req.Waypoints, req.StartWaypoint, req.FuelCapacity, req.EngineSpeed, c.budget())

	var combined []*domainRouting.RouteStepData
	for _, leg := range result.Legs {
		combined = append(combined, stepsToDTO(leg.Steps)...)
	}

	return &domainRouting.TourResponse{
		VisitOrder:       result.Ordered,
		CombinedRoute:    combined,
		TotalTimeSeconds: result.TotalTimeSeconds,
	}, nil
}

// OptimizeFueledTour sequences waypoints into a fuel-aware tour, with legs
// that carry flight mode and refuel detail, optionally returning to start.
func (c *InProcessRoutingClient) OptimizeFueledTour(ctx context.Context, req *domainRouting.FueledTourRequest) (*domainRouting.FueledTourResponse, error) {
	graph := buildGraph(req.SystemSymbol, req.AllWaypoints)
	targets := req.TargetWaypoints
	result := domainRouting.OptimiseTour(graph, targets, req.StartWaypoint, req.FuelCapacity, req.EngineSpeed, c.budget())

	legs := make([]*domainRouting.TourLegData, 0, len(result.Legs))
	totalTime, totalFuel, totalDistance, refuelStops := 0, 0, 0.0, 0
	order := result.Ordered
	// If the caller asked not to return to start, drop the trailing leg back to it.
	if req.ReturnWaypoint == "" && len(order) > 2 && order[len(order)-1] == req.StartWaypoint {
		result.Legs = result.Legs[:len(result.Legs)-1]
		order = order[:len(order)-1]
	}

	for i, leg := range result.Legs {
		from, to := order[i], order[i+1]
		var intermediate []*domainRouting.IntermediateStopData
		refuelBefore := false
		refuelAmount := 0
		var mode string
		fuelCost, timeSeconds := 0, 0
		distance := 0.0
		for _, s := range leg.Steps {
			if s.Kind == domainRouting.StepRefuel {
				refuelBefore = true
				refuelAmount = s.RefuelTo
				refuelStops++
				intermediate = append(intermediate, &domainRouting.IntermediateStopData{
					Waypoint:     s.Waypoint,
					FlightMode:   "",
					RefuelAmount: s.RefuelTo,
				})
				continue
			}
			mode = s.Mode.Name()
			fuelCost += s.FuelCost
			timeSeconds += s.TimeSeconds
			distance += s.Distance
		}
		legs = append(legs, &domainRouting.TourLegData{
			FromWaypoint:      from,
			ToWaypoint:        to,
			FlightMode:        mode,
			FuelCost:          fuelCost,
			TimeSeconds:       timeSeconds,
			Distance:          distance,
			RefuelBefore:      refuelBefore,
			RefuelAmount:      refuelAmount,
			IntermediateStops: intermediate,
		})
		totalTime += timeSeconds
		totalFuel += fuelCost
		totalDistance += distance
	}

	return &domainRouting.FueledTourResponse{
		VisitOrder:       order,
		Legs:             legs,
		TotalTimeSeconds: totalTime,
		TotalFuelCost:    totalFuel,
		TotalDistance:    totalDistance,
		RefuelStops:      refuelStops,
	}, nil
}

// PartitionFleet splits markets across ships to minimise makespan.
func (c *InProcessRoutingClient) PartitionFleet(ctx context.Context, req *domainRouting.VRPRequest) (*domainRouting.VRPResponse, error) {
	graph := buildGraph(req.SystemSymbol, req.AllWaypoints)

	ships := make(map[string]domainRouting.ShipState, len(req.ShipConfigs))
	for symbol, cfg := range req.ShipConfigs {
		ships[symbol] = domainRouting.ShipState{
			CurrentLocation: cfg.CurrentLocation,
			FuelCapacity:    cfg.FuelCapacity,
			EngineSpeed:     cfg.EngineSpeed,
		}
	}

	assignment := domainRouting.PartitionFleet(graph, req.MarketWaypoints, ships, c.budget())

	response := &domainRouting.VRPResponse{Assignments: make(map[string]*domainRouting.ShipTourData, len(assignment))}
	for ship, markets := range assignment {
		response.Assignments[ship] = &domainRouting.ShipTourData{Waypoints: markets}
	}
	return response, nil
}

var _ domainRouting.RoutingClient = (*InProcessRoutingClient)(nil)
