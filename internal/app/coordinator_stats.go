package app

import (
	"github.com/Amund211/vidcat/internal/coordinator"
)

type CoordinatorStats struct {
	// Video and page fetches, shared by all users
	Shared coordinator.Stats
	// Like status batching, one coordinator per user
	Sessions      int
	SessionTotals coordinator.Stats
}

type GetCoordinatorStats func() CoordinatorStats

func BuildGetCoordinatorStats(shared *coordinator.Coordinator, registry *coordinator.Registry) GetCoordinatorStats {
	return func() CoordinatorStats {
		return CoordinatorStats{
			Shared:        shared.Stats(),
			Sessions:      registry.Len(),
			SessionTotals: registry.Stats(),
		}
	}
}
