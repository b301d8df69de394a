package dbaccess

import (
	"github.com/kyprware/synapse/dbmodels"
)

// QueryOptions narrows and pages a listing. A zero Limit means no limit.
type QueryOptions struct {
	Order string
	Skip  int
	Limit int
}

// ApplicationFilter narrows an application listing.
type ApplicationFilter struct {
	ActiveOnly bool
	IsAdmin    *bool
}

// PermissionFilter narrows a permission listing.
type PermissionFilter struct {
	OwnerID    *string
	TargetID   *string
	Action     *dbmodels.Action
	ActiveOnly bool
}

// Repository is the persistence contract for applications and permissions.
//
// All methods are best-effort: failures are logged and surfaced as nil, empty
// or false rather than propagated, so RPC handlers can translate them to
// JSON-RPC error codes.
type Repository interface {
	FindApplicationByID(id string) *dbmodels.Application
	FindApplications(filter *ApplicationFilter, opts *QueryOptions) []*dbmodels.Application
	CreateApplication(application *dbmodels.Application) *dbmodels.Application
	UpdateApplication(id string, updates map[string]interface{}) *dbmodels.Application
	DeleteApplication(id string) bool

	GrantPermission(ownerID, targetID string, action dbmodels.Action) *dbmodels.ApplicationPermission
	RevokePermission(ownerID, targetID string, action dbmodels.Action) bool
	RevokePermissionByID(permissionID string) bool
	FindPermissions(filter *PermissionFilter, opts *QueryOptions) []*dbmodels.ApplicationPermission

	FindAuthorizedApplications(targetID *string, action dbmodels.Action, activeOnly bool) []*dbmodels.Application
}
