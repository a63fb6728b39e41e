package grpc

import (
	"github.com/acdtunes/spacetraders-fleet/internal/application/registry"
)

// registerCommandFactories populates the daemon's recovery-time lookup table
// from the compile-time command-type registry (internal/application/registry).
// Each application package registers its own factory from an init() function;
// this method never hardcodes a command type itself, so a new container type
// is wired in by adding a registry_init.go next to its command, not by
// editing the daemon.
func (s *DaemonServer) registerCommandFactories() {
	for _, commandType := range registry.RegisteredTypes() {
		commandType := commandType // capture for the closure below
		s.commandFactories[commandType] = func(config map[string]interface{}, playerID int) (interface{}, error) {
			return registry.Build(commandType, config, playerID)
		}
	}
}
