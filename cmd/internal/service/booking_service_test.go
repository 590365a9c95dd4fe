package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
)

func TestReserveAssignsLowestCaregiver(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "bob", "2022-05-01")
	env.uploadSlot(t, "alice", "2022-05-01")
	env.addDoses(t, "bob", "vaxA", 5)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)
	assert.Equal(t, "alice", resp.CaregiverUsername)
	assert.NotEmpty(t, resp.AppointmentID)

	// alice's slot is consumed, bob is next in line
	assert.Equal(t, []string{"bob"}, env.openCaregivers(t, "2022-05-01"))

	resp, apierr = env.booking.Reserve(patientSession("pat2"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)
	assert.Equal(t, "bob", resp.CaregiverUsername)
	assert.Empty(t, env.openCaregivers(t, "2022-05-01"))
	assert.Equal(t, 3, env.doses(t, "vaxA"))
}

func TestReserveRequiresPatientRole(t *testing.T) {
	env := setup(t)
	req := &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"}

	_, apierr := env.booking.Reserve(caregiverSession("alice"), req)
	assert.Equal(t, apierror.PatientRoleRequiredError, apierr)

	_, apierr = env.booking.Reserve(nil, req)
	assert.Equal(t, apierror.PatientRoleRequiredError, apierr)
}

func TestReserveNoCaregiverAvailable(t *testing.T) {
	env := setup(t)
	env.addDoses(t, "alice", "vaxA", 2)

	_, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	assert.Equal(t, apierror.NoCaregiverAvailableError, apierr)

	// the ledger must be untouched by a failed reservation
	assert.Equal(t, 2, env.doses(t, "vaxA"))
}

func TestReserveUnknownVaccineRestoresSlot(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")

	_, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "nothere"})
	assert.Equal(t, apierror.UnknownVaccineError, apierr)

	// the provisionally consumed slot came back
	assert.Equal(t, []string{"alice"}, env.openCaregivers(t, "2022-05-01"))
}

func TestReserveInsufficientStockRestoresSlot(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.uploadSlot(t, "bob", "2022-05-01")
	env.addDoses(t, "alice", "vaxA", 1)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)
	assert.Equal(t, "alice", resp.CaregiverUsername)
	assert.Equal(t, 0, env.doses(t, "vaxA"))

	_, apierr = env.booking.Reserve(patientSession("pat2"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	assert.Equal(t, apierror.NotEnoughDosesError, apierr)

	// bob's slot is unaffected by the failed attempt and the counter
	// never went negative
	assert.Equal(t, []string{"bob"}, env.openCaregivers(t, "2022-05-01"))
	assert.Equal(t, 0, env.doses(t, "vaxA"))
}

func TestReserveValidatesArguments(t *testing.T) {
	env := setup(t)

	_, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "not-a-date", VaccineName: "vaxA"})
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01"})
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestCancelIsExactInverseOfReserve(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.addDoses(t, "alice", "vaxA", 1)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)
	assert.Equal(t, 0, env.doses(t, "vaxA"))
	assert.Empty(t, env.openCaregivers(t, "2022-05-01"))

	apierr = env.booking.Cancel(patientSession("pat1"), resp.AppointmentID)
	require.Nil(t, apierr)

	// calendar and ledger are back to their pre-reserve state
	assert.Equal(t, []string{"alice"}, env.openCaregivers(t, "2022-05-01"))
	assert.Equal(t, 1, env.doses(t, "vaxA"))

	appts, apierr := env.booking.Appointments(patientSession("pat1"))
	require.Nil(t, apierr)
	assert.Empty(t, appts)
}

func TestCancelTwiceFails(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.addDoses(t, "alice", "vaxA", 1)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)

	require.Nil(t, env.booking.Cancel(patientSession("pat1"), resp.AppointmentID))
	assert.Equal(t, apierror.AppointmentNotFoundError, env.booking.Cancel(patientSession("pat1"), resp.AppointmentID))

	// a double cancel must not refund a second dose or slot
	assert.Equal(t, 1, env.doses(t, "vaxA"))
	assert.Equal(t, []string{"alice"}, env.openCaregivers(t, "2022-05-01"))
}

func TestCancelPermissions(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.addDoses(t, "alice", "vaxA", 2)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)

	assert.Equal(t, apierror.NotYourAppointmentError, env.booking.Cancel(patientSession("someoneelse"), resp.AppointmentID))
	assert.Equal(t, apierror.NotYourAppointmentError, env.booking.Cancel(caregiverSession("bob"), resp.AppointmentID))

	// the caregiver named on the appointment may cancel it too
	require.Nil(t, env.booking.Cancel(caregiverSession("alice"), resp.AppointmentID))
}

func TestCancelUnknownAppointment(t *testing.T) {
	env := setup(t)
	assert.Equal(t, apierror.AppointmentNotFoundError, env.booking.Cancel(patientSession("pat1"), "no-such-id"))
}

func TestCancelRestoreMergesWithReuploadedSlot(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.addDoses(t, "alice", "vaxA", 1)

	resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
	require.Nil(t, apierr)

	// alice re-opens the date herself before the patient cancels
	env.uploadSlot(t, "alice", "2022-05-01")

	require.Nil(t, env.booking.Cancel(patientSession("pat1"), resp.AppointmentID))
	assert.Equal(t, []string{"alice"}, env.openCaregivers(t, "2022-05-01"))
	assert.Equal(t, 1, env.doses(t, "vaxA"))
}

func TestAppointmentsListedByRoleAndOrderedByID(t *testing.T) {
	env := setup(t)
	env.uploadSlot(t, "alice", "2022-05-01")
	env.uploadSlot(t, "alice", "2022-05-02")
	env.uploadSlot(t, "alice", "2022-05-03")
	env.addDoses(t, "alice", "vaxA", 3)

	for _, date := range []string{"2022-05-01", "2022-05-02", "2022-05-03"} {
		_, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: date, VaccineName: "vaxA"})
		require.Nil(t, apierr)
	}

	appts, apierr := env.booking.Appointments(patientSession("pat1"))
	require.Nil(t, apierr)
	require.Len(t, appts, 3)
	for i := 1; i < len(appts); i++ {
		assert.Less(t, appts[i-1].ID, appts[i].ID)
	}

	caregiverAppts, apierr := env.booking.Appointments(caregiverSession("alice"))
	require.Nil(t, apierr)
	assert.Len(t, caregiverAppts, 3)

	other, apierr := env.booking.Appointments(patientSession("pat2"))
	require.Nil(t, apierr)
	assert.Empty(t, other)
}

func TestConcurrentReservesNeverOversubscribe(t *testing.T) {
	const doses = 3
	const callers = 8

	env := setup(t)
	caregivers := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	for _, caregiver := range caregivers {
		env.uploadSlot(t, caregiver, "2022-05-01")
	}
	env.addDoses(t, "c1", "vaxA", doses)

	type result struct {
		resp   *service.ReserveResponse
		apierr apierror.ErrorResponse
	}
	results := make([]result, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, apierr := env.booking.Reserve(patientSession("pat1"), &service.ReserveRequest{Date: "2022-05-01", VaccineName: "vaxA"})
			results[i] = result{resp: resp, apierr: apierr}
		}(i)
	}
	wg.Wait()

	successes := 0
	seenIDs := map[string]bool{}
	seenCaregivers := map[string]bool{}
	for _, r := range results {
		if r.apierr == nil {
			successes++
			assert.False(t, seenIDs[r.resp.AppointmentID], "duplicate appointment id")
			assert.False(t, seenCaregivers[r.resp.CaregiverUsername], "same slot booked twice")
			seenIDs[r.resp.AppointmentID] = true
			seenCaregivers[r.resp.CaregiverUsername] = true
		} else {
			assert.Equal(t, apierror.NotEnoughDosesError, r.apierr)
		}
	}

	assert.Equal(t, doses, successes)
	assert.Equal(t, 0, env.doses(t, "vaxA"))
	// the failed attempts put their slots back
	assert.Len(t, env.openCaregivers(t, "2022-05-01"), callers-doses)
}
