package testtools

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/dbmodels"
)

// InMemoryRepository implements the dbaccess.Repository contract over plain
// maps, including the permission invariants the database-backed repository
// enforces. It is intended for tests and local experimentation.
type InMemoryRepository struct {
	lock         sync.Mutex
	applications map[string]*dbmodels.Application
	permissions  map[string]*dbmodels.ApplicationPermission
}

// NewInMemoryRepository returns an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		applications: make(map[string]*dbmodels.Application),
		permissions:  make(map[string]*dbmodels.ApplicationPermission),
	}
}

// AddApplication seeds an application, minting an ID if it has none.
func (r *InMemoryRepository) AddApplication(application *dbmodels.Application) *dbmodels.Application {
	r.lock.Lock()
	defer r.lock.Unlock()

	if application.ID == "" {
		application.ID = uuid.New().String()
	}
	r.applications[application.ID] = application
	return application
}

func (r *InMemoryRepository) FindApplicationByID(id string) *dbmodels.Application {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.applications[id]
}

func (r *InMemoryRepository) FindApplications(filter *dbaccess.ApplicationFilter,
	opts *dbaccess.QueryOptions) []*dbmodels.Application {

	r.lock.Lock()
	defer r.lock.Unlock()

	applications := []*dbmodels.Application{}
	for _, application := range r.applications {
		if filter != nil {
			if filter.ActiveOnly && !application.IsActive {
				continue
			}
			if filter.IsAdmin != nil && application.IsAdmin != *filter.IsAdmin {
				continue
			}
		}
		applications = append(applications, application)
	}
	return page(applications, opts)
}

func (r *InMemoryRepository) CreateApplication(application *dbmodels.Application) *dbmodels.Application {
	r.lock.Lock()
	defer r.lock.Unlock()

	if application.ID == "" {
		application.ID = uuid.New().String()
	}
	if _, ok := r.applications[application.ID]; ok {
		return nil
	}
	r.applications[application.ID] = application
	return application
}

func (r *InMemoryRepository) UpdateApplication(id string, updates map[string]interface{}) *dbmodels.Application {
	r.lock.Lock()
	defer r.lock.Unlock()

	application, ok := r.applications[id]
	if !ok {
		return nil
	}
	for field, value := range updates {
		switch field {
		case "url":
			if url, ok := value.(string); ok {
				application.URL = url
			}
		case "description":
			if description, ok := value.(string); ok {
				application.Description = &description
			}
		case "is_active":
			if isActive, ok := value.(bool); ok {
				application.IsActive = isActive
			}
		case "authentication_token":
			if token, ok := value.(string); ok {
				application.AuthenticationToken = &token
			}
		}
	}
	return application
}

func (r *InMemoryRepository) DeleteApplication(id string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.applications[id]; !ok {
		return false
	}
	delete(r.applications, id)
	for permissionID, permission := range r.permissions {
		if permission.OwnerID == id || permission.TargetID == id {
			delete(r.permissions, permissionID)
		}
	}
	return true
}

func (r *InMemoryRepository) GrantPermission(ownerID, targetID string,
	action dbmodels.Action) *dbmodels.ApplicationPermission {

	r.lock.Lock()
	defer r.lock.Unlock()

	if ownerID == targetID {
		return nil
	}
	if _, ok := r.applications[ownerID]; !ok {
		return nil
	}
	if _, ok := r.applications[targetID]; !ok {
		return nil
	}
	for _, permission := range r.permissions {
		sameTriple := permission.OwnerID == ownerID && permission.TargetID == targetID &&
			permission.Action == action
		reverseTriple := permission.OwnerID == targetID && permission.TargetID == ownerID &&
			permission.Action == action && permission.IsActive
		if sameTriple || reverseTriple {
			return nil
		}
	}

	permission := &dbmodels.ApplicationPermission{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		TargetID: targetID,
		Action:   action,
		IsActive: true,
	}
	r.permissions[permission.ID] = permission
	return permission
}

func (r *InMemoryRepository) RevokePermission(ownerID, targetID string, action dbmodels.Action) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	for permissionID, permission := range r.permissions {
		if permission.OwnerID == ownerID && permission.TargetID == targetID &&
			permission.Action == action {

			delete(r.permissions, permissionID)
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) RevokePermissionByID(permissionID string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.permissions[permissionID]; !ok {
		return false
	}
	delete(r.permissions, permissionID)
	return true
}

func (r *InMemoryRepository) FindPermissions(filter *dbaccess.PermissionFilter,
	opts *dbaccess.QueryOptions) []*dbmodels.ApplicationPermission {

	r.lock.Lock()
	defer r.lock.Unlock()

	permissions := []*dbmodels.ApplicationPermission{}
	for _, permission := range r.permissions {
		if filter != nil {
			if filter.OwnerID != nil && permission.OwnerID != *filter.OwnerID {
				continue
			}
			if filter.TargetID != nil && permission.TargetID != *filter.TargetID {
				continue
			}
			if filter.Action != nil && permission.Action != *filter.Action {
				continue
			}
			if filter.ActiveOnly && !permission.IsActive {
				continue
			}
		}
		permissions = append(permissions, permission)
	}
	return page(permissions, opts)
}

func (r *InMemoryRepository) FindAuthorizedApplications(targetID *string, action dbmodels.Action,
	activeOnly bool) []*dbmodels.Application {

	authorized := map[string]*dbmodels.Application{}

	if targetID != nil {
		permissions := r.FindPermissions(&dbaccess.PermissionFilter{
			TargetID:   targetID,
			Action:     &action,
			ActiveOnly: activeOnly,
		}, nil)
		r.lock.Lock()
		for _, permission := range permissions {
			owner, ok := r.applications[permission.OwnerID]
			if !ok {
				continue
			}
			if activeOnly && !owner.IsActive {
				continue
			}
			authorized[owner.ID] = owner
		}
		r.lock.Unlock()
	}

	isAdmin := true
	admins := r.FindApplications(&dbaccess.ApplicationFilter{ActiveOnly: true, IsAdmin: &isAdmin}, nil)
	for _, admin := range admins {
		authorized[admin.ID] = admin
	}

	applications := make([]*dbmodels.Application, 0, len(authorized))
	for _, application := range authorized {
		applications = append(applications, application)
	}
	return applications
}

func page[T any](items []T, opts *dbaccess.QueryOptions) []T {
	if opts == nil {
		return items
	}
	if opts.Skip > 0 {
		if opts.Skip >= len(items) {
			return nil
		}
		items = items[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
