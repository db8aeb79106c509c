package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = "2025-11-01T08:00:00.000Z"

func TestResolveAppointmentInput_FieldNameVariants(t *testing.T) {
	variants := []map[string]interface{}{
		{
			"patient_name":          "Asha Rao",
			"symptoms":              "fever",
			"requested_doctor_name": "Dr. Mehta",
			"appointment_time":      "2025-11-01T09:00:00Z",
		},
		{
			"patientName":      "Asha Rao",
			"symptoms":         "fever",
			"requested_doctor": "Dr. Mehta",
			"date":             "2025-11-01",
			"time":             "09:00",
		},
		{
			"patient_name":          "Asha Rao",
			"symptoms":              "fever",
			"doctorName":            "Dr. Mehta",
			"appointment_date":      "2025-11-01",
			"appointment_time_slot": "09:00",
		},
	}

	for i, input := range variants {
		a := ResolveAppointmentInput(input, ts)
		assert.Equal(t, "Asha Rao", a.PatientName, "variant %d", i)
		assert.Equal(t, "fever", a.Symptoms, "variant %d", i)
		require.NotNil(t, a.RequestedDoctorName, "variant %d", i)
		assert.Equal(t, "Dr. Mehta", *a.RequestedDoctorName, "variant %d", i)
		require.NotNil(t, a.AppointmentTime, "variant %d", i)
		assert.Equal(t, "2025-11-01T09:00:00.000Z", *a.AppointmentTime, "variant %d", i)
		require.NotNil(t, a.AppointmentDate, "variant %d", i)
		assert.Equal(t, "2025-11-01", *a.AppointmentDate, "variant %d", i)
		require.NotNil(t, a.AppointmentTimeSlot, "variant %d", i)
		assert.Equal(t, "09:00", *a.AppointmentTimeSlot, "variant %d", i)
	}
}

func TestResolveAppointmentInput_Defaults(t *testing.T) {
	a := ResolveAppointmentInput(map[string]interface{}{
		"patient_name":     "Asha Rao",
		"symptoms":         "fever",
		"appointment_time": "2025-11-01T09:00:00Z",
	}, ts)

	assert.Equal(t, PriorityMedium, a.Priority)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, StringArray{}, a.DocumentURLs)
	assert.Equal(t, StringArray{}, a.UploadedDocuments)
	assert.Equal(t, ts, a.CreatedDate)
	assert.Equal(t, ts, a.UpdatedAt)
	assert.Nil(t, a.PatientEmail)
	assert.Nil(t, a.RequestedDoctorID)
}

func TestResolveAppointmentInput_DoctorNameResolutionOrder(t *testing.T) {
	a := ResolveAppointmentInput(map[string]interface{}{
		"requested_doctor_name": "Dr. A",
		"requested_doctor":      "Dr. B",
		"doctorName":            "Dr. C",
	}, ts)
	require.NotNil(t, a.RequestedDoctorName)
	assert.Equal(t, "Dr. A", *a.RequestedDoctorName)

	a = ResolveAppointmentInput(map[string]interface{}{
		"requested_doctor": "Dr. B",
		"doctorName":       "Dr. C",
	}, ts)
	require.NotNil(t, a.RequestedDoctorName)
	assert.Equal(t, "Dr. B", *a.RequestedDoctorName)

	// An empty value falls through to the next accepted name.
	a = ResolveAppointmentInput(map[string]interface{}{
		"requested_doctor_name": "",
		"doctorName":            "Dr. C",
	}, ts)
	require.NotNil(t, a.RequestedDoctorName)
	assert.Equal(t, "Dr. C", *a.RequestedDoctorName)
}

func TestResolveAppointmentInput_LenientTimeParsing(t *testing.T) {
	// An unparseable value passes through verbatim and derives nothing.
	a := ResolveAppointmentInput(map[string]interface{}{
		"patient_name":     "Asha Rao",
		"symptoms":         "fever",
		"appointment_time": "whenever works",
	}, ts)
	require.NotNil(t, a.AppointmentTime)
	assert.Equal(t, "whenever works", *a.AppointmentTime)
	assert.Nil(t, a.AppointmentDate)
	assert.Nil(t, a.AppointmentTimeSlot)

	// A bare date resolves alone.
	a = ResolveAppointmentInput(map[string]interface{}{"date": "2025-11-01"}, ts)
	require.NotNil(t, a.AppointmentTime)
	assert.Equal(t, "2025-11-01T00:00:00.000Z", *a.AppointmentTime)
	require.NotNil(t, a.AppointmentDate)
	assert.Equal(t, "2025-11-01", *a.AppointmentDate)

	// No temporal input at all resolves to nothing.
	a = ResolveAppointmentInput(map[string]interface{}{}, ts)
	assert.Nil(t, a.AppointmentTime)
}

func TestResolveAppointmentInput_ArrayForms(t *testing.T) {
	// Native array.
	a := ResolveAppointmentInput(map[string]interface{}{
		"document_urls": []interface{}{"https://x/a.pdf", "https://x/b.pdf"},
	}, ts)
	assert.Equal(t, StringArray{"https://x/a.pdf", "https://x/b.pdf"}, a.DocumentURLs)

	// JSON-encoded string.
	a = ResolveAppointmentInput(map[string]interface{}{
		"uploaded_documents": `["scan.png"]`,
	}, ts)
	assert.Equal(t, StringArray{"scan.png"}, a.UploadedDocuments)

	// Malformed JSON degrades to empty, never fails.
	a = ResolveAppointmentInput(map[string]interface{}{
		"uploaded_documents": `[broken`,
	}, ts)
	assert.Equal(t, StringArray{}, a.UploadedDocuments)
}

func TestMissingRequired(t *testing.T) {
	a := ResolveAppointmentInput(map[string]interface{}{}, ts)
	assert.Equal(t, []string{"patient_name", "symptoms", "appointment_time"}, a.MissingRequired())

	a = ResolveAppointmentInput(map[string]interface{}{
		"patient_name":     "Asha Rao",
		"symptoms":         "fever",
		"appointment_time": "2025-11-01T09:00:00Z",
	}, ts)
	assert.Empty(t, a.MissingRequired())
}

func TestBuildAppointmentUpdate_OnlyPresentFields(t *testing.T) {
	columns := BuildAppointmentUpdate(map[string]interface{}{
		"status": "confirmed",
	}, ts)

	assert.Equal(t, StatusConfirmed, columns["status"])
	assert.Equal(t, ts, columns["updated_at"])
	assert.NotContains(t, columns, "patient_name")
	assert.NotContains(t, columns, "symptoms")
	assert.NotContains(t, columns, "appointment_time")
	assert.NotContains(t, columns, "priority")
}

func TestBuildAppointmentUpdate_TemporalGroup(t *testing.T) {
	// Naming any temporal alias re-resolves all three projections.
	columns := BuildAppointmentUpdate(map[string]interface{}{
		"date": "2025-12-02",
		"time": "14:30",
	}, ts)

	iso := columns["appointment_time"].(*string)
	require.NotNil(t, iso)
	assert.Equal(t, "2025-12-02T14:30:00.000Z", *iso)
	date := columns["appointment_date"].(*string)
	require.NotNil(t, date)
	assert.Equal(t, "2025-12-02", *date)
	slot := columns["appointment_time_slot"].(*string)
	require.NotNil(t, slot)
	assert.Equal(t, "14:30", *slot)
}

func TestBuildAppointmentUpdate_EmptyStillBumpsTimestamp(t *testing.T) {
	columns := BuildAppointmentUpdate(map[string]interface{}{}, ts)
	assert.Equal(t, map[string]interface{}{"updated_at": ts}, columns)
}

func TestBuildAppointmentUpdate_IgnoresID(t *testing.T) {
	columns := BuildAppointmentUpdate(map[string]interface{}{"id": "apt-other"}, ts)
	assert.NotContains(t, columns, "id")
}

func TestStringArrayScanLenient(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, a)

	require.NoError(t, a.Scan([]byte(`{not json`)))
	assert.Equal(t, StringArray{}, a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, StringArray{}, a)

	require.NoError(t, a.Scan("null"))
	assert.Equal(t, StringArray{}, a)
}

func TestViewExposesLegacyAliases(t *testing.T) {
	email := "asha@example.com"
	doctor := "Dr. Mehta"
	date := "2025-11-01"
	a := Appointment{
		ID:                  "apt-1",
		PatientName:         "Asha Rao",
		PatientEmail:        &email,
		RequestedDoctorName: &doctor,
		AppointmentDate:     &date,
	}

	body, err := json.Marshal(a.View())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "Asha Rao", decoded["patient_name"])
	assert.Equal(t, "Asha Rao", decoded["patientName"])
	assert.Equal(t, "asha@example.com", decoded["email"])
	assert.Equal(t, "Dr. Mehta", decoded["doctor_name"])
	assert.Equal(t, "2025-11-01", decoded["date"])

	// Arrays are never null in a normalized read result.
	assert.Equal(t, []interface{}{}, decoded["document_urls"])
	assert.Equal(t, []interface{}{}, decoded["uploaded_documents"])
}
