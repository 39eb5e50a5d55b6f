package models

import (
	"time"

	"gorm.io/gorm"
)

type GrantStatus string

const (
	GrantStatusPending  GrantStatus = "pending"
	GrantStatusApproved GrantStatus = "approved"
	GrantStatusDenied   GrantStatus = "denied"
	GrantStatusRevoked  GrantStatus = "revoked"
)

// Active reports whether the grant still occupies its (field, viewer)
// slot. Denied and revoked grants do not block a fresh request.
func (s GrantStatus) Active() bool {
	return s == GrantStatusPending || s == GrantStatusApproved
}

type AccessGrant struct {
	gorm.Model
	OwnerFieldID uint  `gorm:"not null;index" json:"owner_field_id"`
	OwnerField   Field `gorm:"foreignKey:OwnerFieldID" json:"-"`

	ViewerUserID uint `gorm:"not null;index" json:"viewer_user_id"`
	ViewerUser   User `gorm:"foreignKey:ViewerUserID" json:"-"`

	// ViewerFieldID scopes the grant to one of the viewer's fields when
	// the request was made on behalf of a specific field.
	ViewerFieldID *uint  `gorm:"index" json:"viewer_field_id,omitempty"`
	ViewerField   *Field `gorm:"foreignKey:ViewerFieldID" json:"-"`

	Status    GrantStatus `gorm:"default:pending;index" json:"status"`
	DecidedAt *time.Time  `json:"decided_at,omitempty"`
}
