package hub

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/dbmodels"
)

// Authorizer resolves which applications may observe a payload classified by
// an action and bound to a target, and maps them to their live connections.
type Authorizer struct {
	repository dbaccess.Repository
	registry   *connregistry.Registry
}

// NewAuthorizer returns an authorizer over the given repository and registry.
func NewAuthorizer(repository dbaccess.Repository, registry *connregistry.Registry) *Authorizer {
	return &Authorizer{
		repository: repository,
		registry:   registry,
	}
}

// AuthorizedAppIDs returns the set of application ids permitted to observe a
// payload classified by action and bound to targetID. Owners of a matching
// active permission are authorized, and active admins are authorized for
// every action on every target. When targetID is nil only the admin set is
// returned. The target itself is never implicitly a member.
func (a *Authorizer) AuthorizedAppIDs(targetID *string, action dbmodels.Action) map[string]struct{} {
	applications := a.repository.FindAuthorizedApplications(targetID, action, true)

	appIDs := make(map[string]struct{}, len(applications))
	for _, application := range applications {
		appIDs[application.ID] = struct{}{}
	}
	return appIDs
}

// AuthorizedConnections composes AuthorizedAppIDs with the connection
// registry: every live connection of every authorized application,
// deduplicated.
func (a *Authorizer) AuthorizedConnections(targetID *string, action dbmodels.Action) []*connregistry.Connection {
	appIDs := a.AuthorizedAppIDs(targetID, action)

	connections := []*connregistry.Connection{}
	for appID := range appIDs {
		connections = append(connections, a.registry.FindByID(appID)...)
	}
	return connections
}
