package models

import (
	"encoding/json"
	"time"
)

// inputAliases maps each canonical appointment field to the ordered list of
// key names accepted from clients. Earlier names win. The dashboard and the
// older patient widgets disagree on naming, so both read and write paths go
// through this one table.
var inputAliases = map[string][]string{
	"patient_name":          {"patient_name", "patientName"},
	"patient_email":         {"patient_email", "email"},
	"patient_phone":         {"patient_phone", "phone"},
	"symptoms":              {"symptoms"},
	"requested_doctor_id":   {"requested_doctor_id"},
	"requested_doctor_name": {"requested_doctor_name", "requested_doctor", "doctorName", "doctor_name"},
	"appointment_date":      {"appointment_date", "date"},
	"appointment_time_slot": {"appointment_time_slot", "time"},
	"appointment_time":      {"appointment_time"},
	"priority":              {"priority"},
	"status":                {"status"},
	"document_urls":         {"document_urls"},
	"uploaded_documents":    {"uploaded_documents"},
}

// lookupAlias returns the first alias value present in input for the
// canonical field, and whether any alias key was present at all.
func lookupAlias(input map[string]interface{}, canonical string) (interface{}, bool) {
	for _, key := range inputAliases[canonical] {
		if v, ok := input[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// aliasString resolves a canonical field to its first non-empty string
// value, or nil. An alias carrying an empty or non-string value falls
// through to the next accepted name.
func aliasString(input map[string]interface{}, canonical string) *string {
	for _, key := range inputAliases[canonical] {
		if s, ok := input[key].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// aliasArray resolves a canonical field to a string slice. Accepts a native
// array or a JSON-encoded string; anything malformed degrades to an empty
// slice rather than failing.
func aliasArray(input map[string]interface{}, canonical string) StringArray {
	v, _ := lookupAlias(input, canonical)
	switch arr := v.(type) {
	case []string:
		return StringArray(arr)
	case []interface{}:
		out := StringArray{}
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		if err := json.Unmarshal([]byte(arr), &out); err != nil || out == nil {
			return StringArray{}
		}
		return StringArray(out)
	default:
		return StringArray{}
	}
}

// timeLayouts tried, most to least specific, when parsing client-submitted
// temporal values. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseClientTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// resolveTemporal produces the canonical appointment_time plus its derived
// date-only and time-slot companions.
//
// Resolution order: an explicit appointment_time wins; otherwise a
// date + time-slot pair is combined; otherwise a bare date is used alone.
// Unparseable values pass through as the submitted string (lenient policy,
// kept for compatibility with the deployed widgets) and yield no derived
// companions. Explicitly supplied date/slot values are kept verbatim.
func resolveTemporal(input map[string]interface{}) (iso, date, slot *string) {
	date = aliasString(input, "appointment_date")
	slot = aliasString(input, "appointment_time_slot")

	raw := aliasString(input, "appointment_time")
	switch {
	case raw != nil:
		// keep iso from raw below
	case date != nil && slot != nil:
		combined := *date + "T" + *slot
		raw = &combined
	case date != nil:
		raw = date
	default:
		return nil, date, slot
	}

	if t, ok := parseClientTime(*raw); ok {
		formatted := Timestamp(t)
		iso = &formatted
		if date == nil {
			d := t.Format("2006-01-02")
			date = &d
		}
		if slot == nil {
			s := t.Format("15:04")
			slot = &s
		}
	} else {
		iso = raw
	}
	return iso, date, slot
}

// ResolveAppointmentInput converts a raw client-submitted payload into a
// canonical Appointment. The timestamp seeds created_date and updated_at.
// Resolution never fails: absent or malformed fields degrade to nil or empty
// defaults.
func ResolveAppointmentInput(input map[string]interface{}, timestamp string) Appointment {
	a := Appointment{
		PatientEmail:        aliasString(input, "patient_email"),
		PatientPhone:        aliasString(input, "patient_phone"),
		RequestedDoctorID:   aliasString(input, "requested_doctor_id"),
		RequestedDoctorName: aliasString(input, "requested_doctor_name"),
		Priority:            PriorityMedium,
		Status:              StatusPending,
		DocumentURLs:        aliasArray(input, "document_urls"),
		UploadedDocuments:   aliasArray(input, "uploaded_documents"),
		CreatedDate:         timestamp,
		UpdatedAt:           timestamp,
	}

	if id, ok := input["id"].(string); ok && id != "" {
		a.ID = id
	}
	if name := aliasString(input, "patient_name"); name != nil {
		a.PatientName = *name
	}
	if symptoms := aliasString(input, "symptoms"); symptoms != nil {
		a.Symptoms = *symptoms
	}
	if p := aliasString(input, "priority"); p != nil {
		a.Priority = AppointmentPriority(*p)
	}
	if s := aliasString(input, "status"); s != nil {
		a.Status = AppointmentStatus(*s)
	}

	a.AppointmentTime, a.AppointmentDate, a.AppointmentTimeSlot = resolveTemporal(input)
	return a
}

// MissingRequired returns the canonical names of required creation fields
// that are absent or empty.
func (a *Appointment) MissingRequired() []string {
	var missing []string
	if a.PatientName == "" {
		missing = append(missing, "patient_name")
	}
	if a.Symptoms == "" {
		missing = append(missing, "symptoms")
	}
	if a.AppointmentTime == nil || *a.AppointmentTime == "" {
		missing = append(missing, "appointment_time")
	}
	return missing
}

// temporalFields are updated as a unit: a partial update naming any one of
// them re-resolves all three, since they are projections of one moment.
var temporalFields = []string{"appointment_time", "appointment_date", "appointment_time_slot"}

// BuildAppointmentUpdate applies the same alias resolution as
// ResolveAppointmentInput but restricted to canonical fields whose alias
// actually appears in the payload: anything the client did not mention stays
// untouched. The returned map is ready for a column-level partial update.
// updated_at is always refreshed, even when no recognized field changed.
func BuildAppointmentUpdate(updates map[string]interface{}, timestamp string) map[string]interface{} {
	resolved := ResolveAppointmentInput(updates, timestamp)
	columns := map[string]interface{}{}

	if _, ok := lookupAlias(updates, "patient_name"); ok {
		columns["patient_name"] = resolved.PatientName
	}
	if _, ok := lookupAlias(updates, "patient_email"); ok {
		columns["patient_email"] = resolved.PatientEmail
	}
	if _, ok := lookupAlias(updates, "patient_phone"); ok {
		columns["patient_phone"] = resolved.PatientPhone
	}
	if _, ok := lookupAlias(updates, "symptoms"); ok {
		columns["symptoms"] = resolved.Symptoms
	}
	if _, ok := lookupAlias(updates, "requested_doctor_id"); ok {
		columns["requested_doctor_id"] = resolved.RequestedDoctorID
	}
	if _, ok := lookupAlias(updates, "requested_doctor_name"); ok {
		columns["requested_doctor_name"] = resolved.RequestedDoctorName
	}
	if _, ok := lookupAlias(updates, "priority"); ok {
		columns["priority"] = resolved.Priority
	}
	if _, ok := lookupAlias(updates, "status"); ok {
		columns["status"] = resolved.Status
	}
	if _, ok := lookupAlias(updates, "document_urls"); ok {
		columns["document_urls"] = resolved.DocumentURLs
	}
	if _, ok := lookupAlias(updates, "uploaded_documents"); ok {
		columns["uploaded_documents"] = resolved.UploadedDocuments
	}

	for _, field := range temporalFields {
		if _, ok := lookupAlias(updates, field); ok {
			columns["appointment_time"] = resolved.AppointmentTime
			columns["appointment_date"] = resolved.AppointmentDate
			columns["appointment_time_slot"] = resolved.AppointmentTimeSlot
			break
		}
	}

	columns["updated_at"] = timestamp
	return columns
}

// AppointmentView is the display-ready appointment shape. It exposes both
// canonical names and the legacy aliases the older dashboard builds still
// read, so a single response body serves every deployed client.
type AppointmentView struct {
	ID                  string              `json:"id"`
	PatientName         string              `json:"patient_name"`
	PatientNameLegacy   string              `json:"patientName"`
	PatientEmail        *string             `json:"patient_email"`
	EmailLegacy         *string             `json:"email"`
	PatientPhone        *string             `json:"patient_phone"`
	PhoneLegacy         *string             `json:"phone"`
	Symptoms            string              `json:"symptoms"`
	RequestedDoctorID   *string             `json:"requested_doctor_id"`
	RequestedDoctorName *string             `json:"requested_doctor_name"`
	DoctorNameLegacy    *string             `json:"doctor_name"`
	AppointmentDate     *string             `json:"appointment_date"`
	DateLegacy          *string             `json:"date"`
	AppointmentTimeSlot *string             `json:"appointment_time_slot"`
	TimeLegacy          *string             `json:"time"`
	AppointmentTime     *string             `json:"appointment_time"`
	Priority            AppointmentPriority `json:"priority"`
	Status              AppointmentStatus   `json:"status"`
	DocumentURLs        []string            `json:"document_urls"`
	UploadedDocuments   []string            `json:"uploaded_documents"`
	CreatedDate         string              `json:"created_date"`
	UpdatedAt           string              `json:"updated_at"`
}

// View creates an AppointmentView from a stored row. Array fields are never
// nil in the result.
func (a *Appointment) View() AppointmentView {
	docs := a.DocumentURLs
	if docs == nil {
		docs = StringArray{}
	}
	uploaded := a.UploadedDocuments
	if uploaded == nil {
		uploaded = StringArray{}
	}
	return AppointmentView{
		ID:                  a.ID,
		PatientName:         a.PatientName,
		PatientNameLegacy:   a.PatientName,
		PatientEmail:        a.PatientEmail,
		EmailLegacy:         a.PatientEmail,
		PatientPhone:        a.PatientPhone,
		PhoneLegacy:         a.PatientPhone,
		Symptoms:            a.Symptoms,
		RequestedDoctorID:   a.RequestedDoctorID,
		RequestedDoctorName: a.RequestedDoctorName,
		DoctorNameLegacy:    a.RequestedDoctorName,
		AppointmentDate:     a.AppointmentDate,
		DateLegacy:          a.AppointmentDate,
		AppointmentTimeSlot: a.AppointmentTimeSlot,
		TimeLegacy:          a.AppointmentTimeSlot,
		AppointmentTime:     a.AppointmentTime,
		Priority:            a.Priority,
		Status:              a.Status,
		DocumentURLs:        docs,
		UploadedDocuments:   uploaded,
		CreatedDate:         a.CreatedDate,
		UpdatedAt:           a.UpdatedAt,
	}
}
