package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what every service returns on failure. It serializes to
// the JSON body and carries the HTTP status for the route layer.
type ErrorResponse interface {
	error
	Code() int
}

type simpleError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *simpleError) Error() string {
	return e.Message
}

func (e *simpleError) Code() int {
	return e.StatusCode
}

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{StatusCode: code, Message: message}
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Something went wrong on our side")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Could not parse request body")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Missing or invalid authorization token")
	LoginFailedError      = NewSimple(http.StatusUnauthorized, "Login failed")

	PatientRoleRequiredError   = NewSimple(http.StatusForbidden, "Please login as a patient")
	CaregiverRoleRequiredError = NewSimple(http.StatusForbidden, "Please login as a caregiver")
	NotYourAppointmentError    = NewSimple(http.StatusForbidden, "You don't have permission to cancel this appointment")

	AppointmentNotFoundError  = NewSimple(http.StatusNotFound, "Appointment not found")
	NoCaregiverAvailableError = NewSimple(http.StatusNotFound, "No caregiver is available on this date")
	UnknownVaccineError       = NewSimple(http.StatusNotFound, "Vaccine not found")

	NotEnoughDosesError      = NewSimple(http.StatusConflict, "Not enough available doses")
	SlotAlreadyUploadedError = NewSimple(http.StatusConflict, "Availability already uploaded for this date")
	UsernameTakenError       = NewSimple(http.StatusConflict, "Username taken, try again")
)

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", name))
}

func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	failed := make([]string, len(verrs))
	for i, fe := range verrs {
		failed[i] = fmt.Sprintf("'%s' failed on '%s'", fe.Field(), fe.Tag())
	}
	return NewSimple(http.StatusBadRequest, "Validation failed: "+strings.Join(failed, ", "))
}
