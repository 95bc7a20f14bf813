package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVehicleRepo(t *testing.T) (*VehicleRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewVehicleRepo(db), mock
}

func TestVehicleCreate(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectExec("INSERT INTO vehicles").
		WithArgs(3, "Toyota", "Corolla", 2020, "AB-123-CD").
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.Create(context.Background(), 3, "Toyota", "Corolla", 2020, "AB-123-CD")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
}

func TestVehicleCreateDuplicatePlate(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectExec("INSERT INTO vehicles").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'AB-123-CD' for key 'vehicles.license_plate'"))

	_, err := repo.Create(context.Background(), 3, "Toyota", "Corolla", 2020, "AB-123-CD")
	assert.ErrorIs(t, err, ErrPlateExists)
}

func TestVehicleAddDriverDuplicate(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectExec("INSERT INTO vehicle_drivers").
		WithArgs(1, 2).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-2' for key 'PRIMARY'"))

	err := repo.AddDriver(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrDriverExists)
}

func TestVehicleSoftDelete(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectExec("UPDATE vehicles SET is_deleted=1").
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), 4))

	mock.ExpectExec("UPDATE vehicles SET is_deleted=1").
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 4), sql.ErrNoRows)
}

// ListPublic merges two fixed queries: the listable vehicles and the
// driver links. A vehicle the first query did not return must not gain
// drivers from the second.
func TestVehicleListPublic(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectQuery("FROM vehicles v JOIN users u ON u.id = v.owner_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "make", "model", "year", "owner_id", "name"}).
			AddRow(1, "Toyota", "Corolla", 2020, 3, "Ana").
			AddRow(2, "Honda", "Civic", 2021, 4, "Bo"))

	mock.ExpectQuery("FROM vehicle_drivers d JOIN vehicles v").
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id", "driver_id"}).
			AddRow(1, 10).
			AddRow(1, 11).
			AddRow(2, 20).
			AddRow(99, 30))

	out, err := repo.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, uint64(1), out[0].ID)
	assert.Equal(t, "Ana", out[0].OwnerName)
	assert.Equal(t, []uint64{10, 11}, out[0].DriverIDs)
	assert.Equal(t, []uint64{20}, out[1].DriverIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleListPublicEmpty(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	mock.ExpectQuery("FROM vehicles v JOIN users u ON u.id = v.owner_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "make", "model", "year", "owner_id", "name"}))
	mock.ExpectQuery("FROM vehicle_drivers d JOIN vehicles v").
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id", "driver_id"}))

	out, err := repo.ListPublic(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out, "an empty listing must serialize as [] not null")
	assert.Len(t, out, 0)
}

func TestVehicleGetByID(t *testing.T) {
	repo, mock := newVehicleRepo(t)

	now := time.Now()
	mock.ExpectQuery("FROM vehicles WHERE id=\\?").
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "make", "model", "year", "license_plate", "status", "is_deleted", "created_at", "updated_at"}).
			AddRow(6, 3, "Toyota", "Corolla", 2020, "AB-123-CD", "available", true, now, now))

	v, err := repo.GetByID(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, v.IsDeleted, "soft-deleted vehicles are returned; callers decide")
}
