package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
)

func TestAddDosesCreatesVaccineOnFirstSight(t *testing.T) {
	env := setup(t)

	stock, apierr := env.inventory.AddDoses(caregiverSession("alice"), &service.AddDosesRequest{VaccineName: "vaxA", Doses: 5})
	require.Nil(t, apierr)
	assert.Equal(t, "vaxA", stock.Name)
	assert.Equal(t, 5, stock.Doses)
}

func TestAddDosesRestocksExistingVaccine(t *testing.T) {
	env := setup(t)
	env.addDoses(t, "alice", "vaxA", 5)

	stock, apierr := env.inventory.AddDoses(caregiverSession("bob"), &service.AddDosesRequest{VaccineName: "vaxA", Doses: 3})
	require.Nil(t, apierr)
	assert.Equal(t, 8, stock.Doses)
	assert.Equal(t, 8, env.doses(t, "vaxA"))
}

func TestAddDosesRequiresCaregiver(t *testing.T) {
	env := setup(t)
	req := &service.AddDosesRequest{VaccineName: "vaxA", Doses: 5}

	_, apierr := env.inventory.AddDoses(patientSession("pat1"), req)
	assert.Equal(t, apierror.CaregiverRoleRequiredError, apierr)

	_, apierr = env.inventory.AddDoses(nil, req)
	assert.Equal(t, apierror.CaregiverRoleRequiredError, apierr)
}

func TestAddDosesRejectsNonPositiveCounts(t *testing.T) {
	env := setup(t)

	for _, doses := range []int{0, -3} {
		_, apierr := env.inventory.AddDoses(caregiverSession("alice"), &service.AddDosesRequest{VaccineName: "vaxA", Doses: doses})
		require.NotNil(t, apierr)
		assert.Equal(t, 400, apierr.Code())
	}
}
