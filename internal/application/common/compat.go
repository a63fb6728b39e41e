package common

// This file provides backward compatibility by re-exporting types from the new packages.
// This allows existing code to continue working while we gradually migrate imports.
//
// DEPRECATED: Import directly from the specific packages instead:
//   - github.com/acdtunes/spacetraders-fleet/internal/application/mediator
//   - github.com/acdtunes/spacetraders-fleet/internal/application/auth
//   - github.com/acdtunes/spacetraders-fleet/internal/application/logging

import (
	"github.com/acdtunes/spacetraders-fleet/internal/application/auth"
	"github.com/acdtunes/spacetraders-fleet/internal/application/logging"
	"github.com/acdtunes/spacetraders-fleet/internal/application/mediator"
	"github.com/acdtunes/spacetraders-fleet/internal/application/ship/dtos"
)

// Mediator types - re-exported for backward compatibility
type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
	HandlerFunc    = mediator.HandlerFunc
	Middleware     = mediator.Middleware
	Mediator       = mediator.Mediator
)

// Logging types - re-exported for backward compatibility
type ContainerLogger = logging.ContainerLogger

// Ship DTO types - re-exported for backward compatibility
type (
	RouteSegmentDTO = dtos.RouteSegmentDTO
	ShipRouteDTO    = dtos.ShipRouteDTO
)

// Mediator functions - re-exported for backward compatibility
var (
	NewMediator = mediator.NewMediator
)

// RegisterHandler registers handler for request type T on m. It forwards to
// the generic mediator.RegisterHandler so callers that only import common
// (rather than the mediator package directly) keep working.
func RegisterHandler[T mediator.Request](m mediator.Mediator, handler mediator.RequestHandler) error {
	return mediator.RegisterHandler[T](m, handler)
}

// Pipeline behaviours - re-exported for backward compatibility
var (
	LoggingBehaviour    = mediator.LoggingBehaviour
	ValidationBehaviour = mediator.ValidationBehaviour
)

// Validatable - re-exported for backward compatibility
type Validatable = mediator.Validatable

// Auth functions - re-exported for backward compatibility
var (
	WithPlayerToken        = auth.WithPlayerToken
	PlayerTokenFromContext = auth.PlayerTokenFromContext
	PlayerTokenMiddleware  = auth.PlayerTokenMiddleware
)

// Logging functions - re-exported for backward compatibility
var (
	WithLogger        = logging.WithLogger
	LoggerFromContext = logging.LoggerFromContext
)

// Ship DTO functions - re-exported for backward compatibility
var (
	RouteSegmentToDTO = dtos.RouteSegmentToDTO
)
