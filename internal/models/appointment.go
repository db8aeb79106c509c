package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AppointmentStatus represents the review status of an appointment request
type AppointmentStatus string

const (
	StatusPending             AppointmentStatus = "pending"
	StatusConfirmed           AppointmentStatus = "confirmed"
	StatusRejected            AppointmentStatus = "rejected"
	StatusDocumentsRequested  AppointmentStatus = "documents_requested"
	StatusRescheduleRequested AppointmentStatus = "reschedule_requested"
)

// AppointmentPriority represents the triage priority of a request
type AppointmentPriority string

const (
	PriorityLow       AppointmentPriority = "low"
	PriorityMedium    AppointmentPriority = "medium"
	PriorityHigh      AppointmentPriority = "high"
	PriorityEmergency AppointmentPriority = "emergency"
)

// TimestampFormat is the wire format for created_date/updated_at. Millisecond
// precision so that two consecutive mutations produce strictly increasing
// values.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Timestamp returns t formatted for storage and API responses.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// StringArray is a JSON-encoded string slice column. MySQL stores it as a
// native JSON column, SQLite as TEXT. Scanning is lenient: NULL, empty, or
// malformed stored values come back as an empty slice, never an error and
// never nil.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		a = StringArray{}
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	*a = StringArray{}
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil
	}
	*a = out
	return nil
}

// GormDBDataType picks the column type per dialect.
func (StringArray) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "json"
	}
	return "text"
}

// Appointment is the canonical appointment record. Temporal fields are kept
// as strings: the resolver passes unparseable client input through verbatim,
// so the columns cannot be native datetimes.
type Appointment struct {
	ID                  string              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PatientName         string              `gorm:"size:255" json:"patient_name"`
	PatientEmail        *string             `gorm:"size:255" json:"patient_email"`
	PatientPhone        *string             `gorm:"size:64" json:"patient_phone"`
	Symptoms            string              `gorm:"type:text" json:"symptoms"`
	RequestedDoctorID   *string             `gorm:"size:64;index" json:"requested_doctor_id"`
	RequestedDoctorName *string             `gorm:"size:255" json:"requested_doctor_name"`
	AppointmentDate     *string             `gorm:"size:32" json:"appointment_date"`
	AppointmentTimeSlot *string             `gorm:"size:16" json:"appointment_time_slot"`
	AppointmentTime     *string             `gorm:"size:64" json:"appointment_time"`
	Priority            AppointmentPriority `gorm:"size:20;default:'medium'" json:"priority"`
	Status              AppointmentStatus   `gorm:"size:32;default:'pending'" json:"status"`
	DocumentURLs        StringArray         `gorm:"column:document_urls" json:"document_urls"`
	UploadedDocuments   StringArray         `json:"uploaded_documents"`
	CreatedDate         string              `gorm:"size:32;index" json:"created_date"`
	UpdatedAt           string              `gorm:"size:32" json:"updated_at"`
}

// BeforeCreate assigns an apt-prefixed UUID when the client did not supply
// an id.
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = "apt-" + uuid.New().String()
	}
	return nil
}
