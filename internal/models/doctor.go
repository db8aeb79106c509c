package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Doctor represents an entry in the hospital's doctor directory. Appointments
// reference doctors loosely by id; the directory exists so the portal can
// denormalize a display name onto incoming requests.
type Doctor struct {
	ID                string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name              string      `gorm:"size:255;not null" json:"name"`
	Specialty         string      `gorm:"size:100" json:"specialty"`
	Department        string      `gorm:"size:100" json:"department"`
	Available         bool        `gorm:"default:true" json:"available"`
	AvailabilitySlots StringArray `json:"availability_slots"`
	CreatedDate       string      `gorm:"size:32" json:"created_date"`
	UpdatedAt         string      `gorm:"size:32" json:"updated_at"`
}

// BeforeCreate assigns a doc-prefixed UUID when no id was supplied.
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = "doc-" + uuid.New().String()
	}
	return nil
}
