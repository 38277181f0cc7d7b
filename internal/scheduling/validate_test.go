package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func completeDetails() AppointmentDetails {
	return AppointmentDetails{
		PatientName: "Jane",
		Specialty:   "Cardiology",
		DateTime:    "next Tuesday at 10am",
		Reason:      "checkup",
		ContactInfo: "jane@example.com",
	}
}

func TestValidateDetailsComplete(t *testing.T) {
	result := ValidateDetails(completeDetails())

	require.True(t, result.IsValid)
	require.Empty(t, result.MissingFields)
	require.Equal(t, "All appointment details are complete.", result.Message)
	require.Equal(t, completeDetails(), result.Appointment)
}

func TestValidateDetailsSingleMissingField(t *testing.T) {
	details := completeDetails()
	details.DateTime = UnknownValue

	result := ValidateDetails(details)

	require.False(t, result.IsValid)
	require.Equal(t, []string{"preferred date and time"}, result.MissingFields)
	require.Equal(t, "The following details are still needed: preferred date and time.", result.Message)
}

func TestValidateDetailsAllMissing(t *testing.T) {
	details := AppointmentDetails{
		PatientName: UnknownValue,
		Specialty:   UnknownValue,
		DateTime:    UnknownValue,
		Reason:      UnknownValue,
		ContactInfo: UnknownValue,
	}

	result := ValidateDetails(details)

	require.False(t, result.IsValid)
	require.Equal(t, []string{
		"patient name",
		"doctor specialty",
		"preferred date and time",
		"reason for visit",
		"contact information",
	}, result.MissingFields)
}

func TestIsCompleteMatchesMissingFields(t *testing.T) {
	require.True(t, completeDetails().IsComplete())

	details := completeDetails()
	details.Reason = UnknownValue
	require.False(t, details.IsComplete())
}

func TestServiceValidateUnknownSpecialty(t *testing.T) {
	svc := newTestService(newMemRepo())

	details := completeDetails()
	details.Specialty = "Podiatry"

	result, err := svc.ValidateAppointmentDetails(context.Background(), details)
	require.NoError(t, err)

	require.False(t, result.IsValid)
	// The specialty gate answers before the completeness merge: the agent
	// must be able to tell "not offered" apart from "still missing".
	require.Empty(t, result.MissingFields)
	require.Contains(t, result.Message, "Podiatry")
	require.Contains(t, result.Message, "not available")
}

func TestServiceValidateUnknownSpecialtyPrecedesIncompleteness(t *testing.T) {
	svc := newTestService(newMemRepo())

	details := completeDetails()
	details.Specialty = "Podiatry"
	details.DateTime = UnknownValue

	result, err := svc.ValidateAppointmentDetails(context.Background(), details)
	require.NoError(t, err)

	require.False(t, result.IsValid)
	require.Contains(t, result.Message, "not available")
	require.NotContains(t, result.Message, "still needed")
}

func TestServiceValidateSpecialtyCaseInsensitive(t *testing.T) {
	svc := newTestService(newMemRepo())

	details := completeDetails()
	details.Specialty = "cArDiOlOgY"

	result, err := svc.ValidateAppointmentDetails(context.Background(), details)
	require.NoError(t, err)
	require.True(t, result.IsValid)
}

func TestServiceValidateSentinelSpecialtySkipsLookup(t *testing.T) {
	svc := newTestService(newMemRepo())

	details := completeDetails()
	details.Specialty = UnknownValue

	result, err := svc.ValidateAppointmentDetails(context.Background(), details)
	require.NoError(t, err)

	require.False(t, result.IsValid)
	require.Equal(t, []string{"doctor specialty"}, result.MissingFields)
}
