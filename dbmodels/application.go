package dbmodels

// Application is a persisted identity that may connect to the hub. Its
// authentication token, when present, is stored encrypted at rest.
type Application struct {
	ID                  string  `gorm:"primary_key;type:varchar(36)" json:"id"`
	URL                 string  `gorm:"not null" json:"url"`
	Name                string  `json:"name"`
	Description         *string `json:"description,omitempty"`
	AuthenticationToken *string `json:"-"`
	IsActive            bool    `gorm:"not null;default:true" json:"is_active"`
	IsAdmin             bool    `gorm:"not null;default:false" json:"is_admin"`

	OwnedPermissions  []ApplicationPermission `gorm:"foreignkey:OwnerID" json:"-"`
	TargetPermissions []ApplicationPermission `gorm:"foreignkey:TargetID" json:"-"`
}

// TableName sets the insert table name for this struct type
func (Application) TableName() string {
	return "applications"
}
