package scheduling

import (
	"fmt"
	"strings"
)

// UnknownValue is the sentinel the conversation agent uses for fields it has
// not extracted yet. The boundary contract depends on this exact string.
const UnknownValue = "unknown"

// AppointmentDetails is the shape the conversation agent hands over as it
// gathers information turn by turn.
type AppointmentDetails struct {
	PatientName string `json:"patientName"`
	Specialty   string `json:"specialty"`
	DateTime    string `json:"dateTime"`
	Reason      string `json:"reason"`
	ContactInfo string `json:"contactInfo"`
}

// MissingFields lists the human-readable labels of fields still set to the
// "unknown" sentinel, in a fixed order.
func (d AppointmentDetails) MissingFields() []string {
	var missing []string
	if d.PatientName == UnknownValue {
		missing = append(missing, "patient name")
	}
	if d.Specialty == UnknownValue {
		missing = append(missing, "doctor specialty")
	}
	if d.DateTime == UnknownValue {
		missing = append(missing, "preferred date and time")
	}
	if d.Reason == UnknownValue {
		missing = append(missing, "reason for visit")
	}
	if d.ContactInfo == UnknownValue {
		missing = append(missing, "contact information")
	}
	return missing
}

// IsComplete reports whether every required field is non-sentinel.
func (d AppointmentDetails) IsComplete() bool {
	return len(d.MissingFields()) == 0
}

type ValidationResult struct {
	IsValid       bool
	MissingFields []string
	Message       string
	Appointment   AppointmentDetails
}

// ValidateDetails applies the completeness gate. The specialty-existence gate
// is applied by the service before this, since it needs a lookup.
func ValidateDetails(details AppointmentDetails) *ValidationResult {
	missing := details.MissingFields()

	if len(missing) == 0 {
		return &ValidationResult{
			IsValid:     true,
			Message:     "All appointment details are complete.",
			Appointment: details,
		}
	}

	return &ValidationResult{
		IsValid:       false,
		MissingFields: missing,
		Message:       fmt.Sprintf("The following details are still needed: %s.", strings.Join(missing, ", ")),
		Appointment:   details,
	}
}

// unknownSpecialtyResult is deliberately distinct from the missing-fields
// message so the agent can tell the patient the specialty is not offered
// rather than asking for it again.
func unknownSpecialtyResult(details AppointmentDetails) *ValidationResult {
	return &ValidationResult{
		IsValid:     false,
		Message:     fmt.Sprintf("The specialty %q is not available at our clinic. Please choose one of our available specialties.", details.Specialty),
		Appointment: details,
	}
}
