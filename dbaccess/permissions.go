package dbaccess

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/kyprware/synapse/database"
	"github.com/kyprware/synapse/dbmodels"
)

func (r *databaseRepository) GrantPermission(ownerID, targetID string, action dbmodels.Action) *dbmodels.ApplicationPermission {
	if ownerID == targetID {
		log.Warnf("Cannot grant permission to self: '%s'", ownerID)
		return nil
	}

	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't grant permission: %s", err)
		return nil
	}

	// The relation is directional and cycles of length two are disallowed.
	reverse := r.FindPermissions(&PermissionFilter{
		OwnerID:    &targetID,
		TargetID:   &ownerID,
		Action:     &action,
		ActiveOnly: true,
	}, nil)
	if len(reverse) > 0 {
		log.Warnf("Cannot grant permission, reverse permission exists: "+
			"'%s' -> '%s' for action '%s'", targetID, ownerID, action)
		return nil
	}

	if r.FindApplicationByID(ownerID) == nil {
		log.Errorf("Owner application '%s' does not exist", ownerID)
		return nil
	}
	if r.FindApplicationByID(targetID) == nil {
		log.Errorf("Target application '%s' does not exist", targetID)
		return nil
	}

	permission := &dbmodels.ApplicationPermission{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		TargetID: targetID,
		Action:   action,
		IsActive: true,
	}
	dbResult := db.Create(permission)
	if len(dbResult.GetErrors()) > 0 {
		log.Warnf("Permission already exists or constraint violation: %s", dbResult.GetErrors())
		return nil
	}

	log.Infof("Granted permission: '%s' -> '%s' for action '%s'", ownerID, targetID, action)
	return permission
}

func (r *databaseRepository) RevokePermission(ownerID, targetID string, action dbmodels.Action) bool {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't revoke permission: %s", err)
		return false
	}

	dbResult := db.Where(&dbmodels.ApplicationPermission{
		OwnerID:  ownerID,
		TargetID: targetID,
		Action:   action,
	}).Delete(&dbmodels.ApplicationPermission{})
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't revoke permission '%s' -> '%s' for action '%s': %s",
			ownerID, targetID, action, dbResult.GetErrors())
		return false
	}
	if dbResult.RowsAffected == 0 {
		log.Warnf("No permission found to revoke: '%s' -> '%s' for action '%s'",
			ownerID, targetID, action)
		return false
	}

	log.Infof("Revoked permission: '%s' -> '%s' for action '%s'", ownerID, targetID, action)
	return true
}

func (r *databaseRepository) RevokePermissionByID(permissionID string) bool {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't revoke permission '%s': %s", permissionID, err)
		return false
	}

	dbResult := db.Where(&dbmodels.ApplicationPermission{ID: permissionID}).
		Delete(&dbmodels.ApplicationPermission{})
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't revoke permission '%s': %s", permissionID, dbResult.GetErrors())
		return false
	}
	if dbResult.RowsAffected == 0 {
		log.Warnf("No permission found to revoke with ID '%s'", permissionID)
		return false
	}

	log.Infof("Revoked permission with ID '%s'", permissionID)
	return true
}

func (r *databaseRepository) FindPermissions(filter *PermissionFilter, opts *QueryOptions) []*dbmodels.ApplicationPermission {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't list permissions: %s", err)
		return nil
	}

	query := applyPermissionFilter(db.Model(&dbmodels.ApplicationPermission{}), filter)
	query = applyQueryOptions(query, opts)

	permissions := []*dbmodels.ApplicationPermission{}
	dbResult := query.Find(&permissions)
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't list permissions: %s", dbResult.GetErrors())
		return nil
	}
	return permissions
}

func (r *databaseRepository) FindAuthorizedApplications(targetID *string, action dbmodels.Action, activeOnly bool) []*dbmodels.Application {
	authorized := map[string]*dbmodels.Application{}

	// Owners of a matching permission are authorized...
	if targetID != nil {
		permissions := r.FindPermissions(&PermissionFilter{
			TargetID:   targetID,
			Action:     &action,
			ActiveOnly: activeOnly,
		}, nil)
		for _, permission := range permissions {
			owner := r.FindApplicationByID(permission.OwnerID)
			if owner == nil {
				continue
			}
			if activeOnly && !owner.IsActive {
				continue
			}
			authorized[owner.ID] = owner
		}
	}

	// ...and so is every active admin, for every action on every target.
	isAdmin := true
	admins := r.FindApplications(&ApplicationFilter{ActiveOnly: true, IsAdmin: &isAdmin}, nil)
	for _, admin := range admins {
		authorized[admin.ID] = admin
	}

	applications := make([]*dbmodels.Application, 0, len(authorized))
	for _, application := range authorized {
		applications = append(applications, application)
	}
	return applications
}

func applyPermissionFilter(query *gorm.DB, filter *PermissionFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.TargetID != nil {
		query = query.Where("target_id = ?", *filter.TargetID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}
