package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCitizens struct {
	names map[string]string
	err   error
}

func (f *fakeCitizens) LookupByNationalID(_ context.Context, nationalID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[nationalID]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

func TestCreateBusiness_OwnerBecomesAdmin(t *testing.T) {
	e := newEnv()
	svc := NewBusinessService(e.businessRepo, newFakeUserRepo(), nil)
	ownerID := uuid.New()

	resp, err := svc.CreateBusiness(context.Background(), ownerID, dto.CreateBusinessRequest{
		Name:              "Downtown Cuts",
		EstablishmentCode: strptr("002"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)

	binding, err := e.businessRepo.FindEmployee(context.Background(), ownerID, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, binding.Role)
}

func TestHireEmployee_RequiresAdmin(t *testing.T) {
	e := newEnv()
	users := newFakeUserRepo()
	svc := NewBusinessService(e.businessRepo, users, nil)

	hire := &model.User{ID: uuid.New(), Email: "new@example.com", Name: "New", Active: true}
	users.users[hire.ID] = hire

	// The seeded operator is not an admin.
	_, err := svc.HireEmployee(context.Background(), e.operatorID, e.business.ID, dto.HireEmployeeRequest{
		UserID: hire.ID.String(),
		Role:   model.RoleOperator,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotAuthorized))
}

func TestHireEmployee_RejectsDoubleBinding(t *testing.T) {
	e := newEnv()
	users := newFakeUserRepo()
	svc := NewBusinessService(e.businessRepo, users, nil)
	ownerID := uuid.New()

	created, err := svc.CreateBusiness(context.Background(), ownerID, dto.CreateBusinessRequest{Name: "Downtown Cuts"})
	require.NoError(t, err)
	businessID := uuid.MustParse(created.ID)

	hire := &model.User{ID: uuid.New(), Email: "new@example.com", Name: "New", Active: true}
	users.users[hire.ID] = hire

	req := dto.HireEmployeeRequest{UserID: hire.ID.String(), Role: model.RoleOperator, EmissionPointCode: strptr("003")}
	_, err = svc.HireEmployee(context.Background(), ownerID, businessID, req)
	require.NoError(t, err)

	_, err = svc.HireEmployee(context.Background(), ownerID, businessID, req)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestHireEmployee_SamePointCodeAcrossBusinesses(t *testing.T) {
	e := newEnv()
	users := newFakeUserRepo()
	svc := NewBusinessService(e.businessRepo, users, nil)

	// Emission point codes are scoped per business: two shops can both run
	// a point "002" — receipt numbers stay distinct through the
	// establishment code.
	for _, name := range []string{"Downtown Cuts", "Uptown Cuts"} {
		ownerID := uuid.New()
		created, err := svc.CreateBusiness(context.Background(), ownerID, dto.CreateBusinessRequest{Name: name})
		require.NoError(t, err)

		hire := &model.User{ID: uuid.New(), Email: name + "@example.com", Name: "Operator", Active: true}
		users.users[hire.ID] = hire

		emp, err := svc.HireEmployee(context.Background(), ownerID, uuid.MustParse(created.ID), dto.HireEmployeeRequest{
			UserID:            hire.ID.String(),
			Role:              model.RoleOperator,
			EmissionPointCode: strptr("002"),
		})
		require.NoError(t, err)
		require.NotNil(t, emp.EmissionPointCode)
		assert.Equal(t, "002", *emp.EmissionPointCode)
	}
}

func TestCreateCustomer_ResolvesNameFromRegistry(t *testing.T) {
	e := newEnv()
	citizens := &fakeCitizens{names: map[string]string{"0912345678": "Carlos Vera"}}
	svc := NewBusinessService(e.businessRepo, newFakeUserRepo(), citizens)

	resp, err := svc.CreateCustomer(context.Background(), e.operatorID, e.business.ID, dto.CreateCustomerRequest{
		NationalID: strptr("0912345678"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos Vera", resp.Name)
}

func TestCreateCustomer_RegistryDownNeedsExplicitName(t *testing.T) {
	e := newEnv()
	citizens := &fakeCitizens{err: errors.New("registry timeout")}
	svc := NewBusinessService(e.businessRepo, newFakeUserRepo(), citizens)

	_, err := svc.CreateCustomer(context.Background(), e.operatorID, e.business.ID, dto.CreateCustomerRequest{
		NationalID: strptr("0912345678"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	// An explicit name always works, registry or not.
	resp, err := svc.CreateCustomer(context.Background(), e.operatorID, e.business.ID, dto.CreateCustomerRequest{
		NationalID: strptr("0912345678"),
		Name:       strptr("Carlos Vera"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos Vera", resp.Name)
}

func TestCreateCustomer_RequiresEmployee(t *testing.T) {
	e := newEnv()
	svc := NewBusinessService(e.businessRepo, newFakeUserRepo(), nil)

	_, err := svc.CreateCustomer(context.Background(), uuid.New(), e.business.ID, dto.CreateCustomerRequest{
		Name: strptr("Carlos Vera"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotAuthorized))
}
