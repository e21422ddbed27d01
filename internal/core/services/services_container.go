package services

import (
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/events"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repo portsrepo.LedgerRepositoryWithLock, publisher events.Publisher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Editing:  NewLedgerEditingService(repo),
		Snapshot: NewVersionSnapshotService(repo, publisher),
		Query:    NewLedgerQueryService(repo),
	}
}
