package mediator

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/acdtunes/spacetraders-fleet/internal/application/logging"
)

// Mediator dispatches requests to their handlers through a chain of
// registered middleware (behaviours).
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	RegisterMiddleware(middleware Middleware)
}

type mediatorImpl struct {
	handlers    map[reflect.Type]RequestHandler
	middlewares []Middleware
}

// NewMediator creates a new mediator with no handlers or middleware
// registered.
func NewMediator() Mediator {
	return &mediatorImpl{
		handlers:    make(map[reflect.Type]RequestHandler),
		middlewares: make([]Middleware, 0),
	}
}

// Register registers a handler for a specific request type.
func (m *mediatorImpl) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// RegisterMiddleware registers middleware to run for every request, in
// registration order (first registered runs outermost).
func (m *mediatorImpl) RegisterMiddleware(middleware Middleware) {
	m.middlewares = append(m.middlewares, middleware)
}

// Send dispatches a request through the middleware chain to its handler.
func (m *mediatorImpl) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	requestType := reflect.TypeOf(request)
	handler, ok := m.handlers[requestType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for type %s", requestType)
	}

	next := handler.Handle
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		middleware := m.middlewares[i]
		currentNext := next
		next = func(ctx context.Context, req Request) (Response, error) {
			return middleware(ctx, req, currentNext)
		}
	}

	return next(ctx, request)
}

// RegisterHandler registers handler for the concrete request type T,
// deriving the lookup key via the zero value's reflect.Type.
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	requestType := reflect.TypeOf(zero)
	return m.Register(requestType, handler)
}

// Validatable is implemented by requests that carry struct-tag validation
// rules (go-playground/validator). ValidationBehaviour short-circuits the
// chain for any request implementing it whose Validate fails.
type Validatable interface {
	Validate() error
}

// ValidationBehaviour rejects requests implementing Validatable before they
// reach the handler. It belongs innermost in the chain (closest to the
// handler) so logging/metrics still observe rejected requests.
func ValidationBehaviour(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	if v, ok := request.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	return next(ctx, request)
}

// LoggingBehaviour logs the start, completion and error of every request
// dispatched through the mediator, using whatever ContainerLogger is bound
// to the context (falling back to the logging package's no-op logger when
// the request isn't running inside a container). It belongs outermost in
// the chain so every other behaviour's duration is captured.
func LoggingBehaviour(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	logger := logging.LoggerFromContext(ctx)
	commandName := commandName(request)
	start := time.Now()

	logger.Log("debug", "command started", map[string]interface{}{
		"command": commandName,
	})

	response, err := next(ctx, request)

	elapsed := time.Since(start)
	if err != nil {
		logger.Log("error", "command failed", map[string]interface{}{
			"command":     commandName,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
		return response, err
	}

	logger.Log("debug", "command completed", map[string]interface{}{
		"command":     commandName,
		"duration_ms": elapsed.Milliseconds(),
	})
	return response, nil
}

func commandName(request Request) string {
	t := reflect.TypeOf(request)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	return t.Name()
}
