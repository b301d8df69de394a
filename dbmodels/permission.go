package dbmodels

// ApplicationPermission is a directional authorization triple: owner may
// observe payloads classified by Action and bound to target. The triple is
// unique and owner never equals target.
type ApplicationPermission struct {
	ID       string `gorm:"primary_key;type:varchar(36)" json:"id"`
	OwnerID  string `gorm:"type:varchar(36);not null;unique_index:idx_owner_target_action" json:"owner_id"`
	TargetID string `gorm:"type:varchar(36);not null;unique_index:idx_owner_target_action" json:"target_id"`
	Action   Action `gorm:"type:varchar(32);not null;unique_index:idx_owner_target_action" json:"action"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName sets the insert table name for this struct type
func (ApplicationPermission) TableName() string {
	return "application_permissions"
}
