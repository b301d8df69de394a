package dbaccess

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/kyprware/synapse/database"
	"github.com/kyprware/synapse/dbmodels"
)

// databaseRepository is the GORM-backed Repository over the hub database.
type databaseRepository struct{}

// NewDatabaseRepository returns a Repository reading and writing the
// connected hub database.
func NewDatabaseRepository() Repository {
	return &databaseRepository{}
}

// updatableApplicationFields is the whitelist applied by UpdateApplication.
// Unknown fields are silently dropped.
var updatableApplicationFields = map[string]struct{}{
	"url":                  {},
	"description":          {},
	"is_active":            {},
	"authentication_token": {},
}

func (r *databaseRepository) FindApplicationByID(id string) *dbmodels.Application {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't find application '%s': %s", id, err)
		return nil
	}

	application := &dbmodels.Application{}
	dbResult := db.Where(&dbmodels.Application{ID: id}).First(application)
	if dbResult.RecordNotFound() {
		log.Debugf("No application found with ID '%s'", id)
		return nil
	}
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't find application '%s': %s", id, dbResult.GetErrors())
		return nil
	}
	return application
}

func (r *databaseRepository) FindApplications(filter *ApplicationFilter, opts *QueryOptions) []*dbmodels.Application {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't list applications: %s", err)
		return nil
	}

	query := db.Model(&dbmodels.Application{})
	if filter != nil {
		if filter.ActiveOnly {
			query = query.Where("is_active = ?", true)
		}
		if filter.IsAdmin != nil {
			query = query.Where("is_admin = ?", *filter.IsAdmin)
		}
	}
	query = applyQueryOptions(query, opts)

	applications := []*dbmodels.Application{}
	dbResult := query.Find(&applications)
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't list applications: %s", dbResult.GetErrors())
		return nil
	}
	return applications
}

func (r *databaseRepository) CreateApplication(application *dbmodels.Application) *dbmodels.Application {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't create application: %s", err)
		return nil
	}

	if application.ID == "" {
		application.ID = uuid.New().String()
	}

	dbResult := db.Create(application)
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't create application '%s': %s", application.ID, dbResult.GetErrors())
		return nil
	}
	log.Infof("Created application '%s'", application.ID)
	return application
}

func (r *databaseRepository) UpdateApplication(id string, updates map[string]interface{}) *dbmodels.Application {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't update application '%s': %s", id, err)
		return nil
	}

	application := r.FindApplicationByID(id)
	if application == nil {
		return nil
	}

	filtered := map[string]interface{}{}
	for field, value := range updates {
		if _, ok := updatableApplicationFields[field]; ok {
			filtered[field] = value
		}
	}
	if len(filtered) == 0 {
		// An empty update returns the existing record.
		return application
	}

	dbResult := db.Model(application).Updates(filtered)
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't update application '%s': %s", id, dbResult.GetErrors())
		return nil
	}
	return r.FindApplicationByID(id)
}

func (r *databaseRepository) DeleteApplication(id string) bool {
	db, err := database.DB()
	if err != nil {
		log.Errorf("Couldn't delete application '%s': %s", id, err)
		return false
	}

	// Permissions owned by or targeting the application go with it. The
	// schema enforces this with cascading foreign keys as well; deleting
	// here keeps the behavior identical on databases without them.
	tx := db.Begin()
	dbResult := tx.Where("owner_id = ? OR target_id = ?", id, id).
		Delete(&dbmodels.ApplicationPermission{})
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't delete permissions of application '%s': %s", id, dbResult.GetErrors())
		tx.Rollback()
		return false
	}

	dbResult = tx.Where(&dbmodels.Application{ID: id}).Delete(&dbmodels.Application{})
	if len(dbResult.GetErrors()) > 0 {
		log.Errorf("Couldn't delete application '%s': %s", id, dbResult.GetErrors())
		tx.Rollback()
		return false
	}
	if dbResult.RowsAffected == 0 {
		tx.Rollback()
		return false
	}

	err = tx.Commit().Error
	if err != nil {
		log.Errorf("Couldn't delete application '%s': %s", id, err)
		return false
	}
	log.Infof("Deleted application '%s'", id)
	return true
}

func applyQueryOptions(query *gorm.DB, opts *QueryOptions) *gorm.DB {
	if opts == nil {
		return query
	}
	if opts.Order != "" {
		query = query.Order(opts.Order)
	}
	if opts.Skip > 0 {
		query = query.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	return query
}
