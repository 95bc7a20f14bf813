package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/fleet-booking/internal/model"
)

type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

// VehicleWithOwner pairs a vehicle row with its owner's display name for
// listings that populate the owner field.
type VehicleWithOwner struct {
	model.Vehicle
	OwnerName string
}

// AdminVehicle is the moderation projection: every vehicle including
// soft-deleted ones, with owner contact details and registered drivers.
type AdminVehicle struct {
	model.Vehicle
	OwnerName  string
	OwnerEmail string
	DriverIDs  []uint64
}

const vehicleCols = "id,owner_id,make,model,year,license_plate,status,is_deleted,created_at,updated_at"

func scanVehicle(row interface{ Scan(...any) error }, v *model.Vehicle) error {
	return row.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &v.LicensePlate,
		&v.Status, &v.IsDeleted, &v.CreatedAt, &v.UpdatedAt)
}

// Create inserts a vehicle owned by ownerID and returns its ID. New
// vehicles start in the available state with no drivers.
func (r *VehicleRepo) Create(ctx context.Context, ownerID uint64, mk, mdl string, year uint16, plate string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicles (owner_id, make, model, year, license_plate, status) VALUES (?,?,?,?,?,'available')",
		ownerID, mk, mdl, year, plate)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrPlateExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a vehicle by id regardless of the soft-delete flag.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	var v model.Vehicle
	err := scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1", id), &v)
	return v, err
}

// ListByOwner returns the non-deleted vehicles belonging to an owner.
func (r *VehicleRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE owner_id=? AND is_deleted=0 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SoftDelete marks a vehicle as deleted. sql.ErrNoRows is returned when
// no row was touched.
func (r *VehicleRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddDriver registers a driver onto a vehicle. Registering twice yields
// ErrDriverExists via the join table's primary key.
func (r *VehicleRepo) AddDriver(ctx context.Context, vehicleID, driverID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicle_drivers (vehicle_id, driver_id) VALUES (?,?)",
		vehicleID, driverID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDriverExists
	}
	return err
}

// ListPublic computes the public listing from the source of truth: not
// deleted, available and with at least one registered driver. The owner
// name and the driver id list are populated so the cached snapshot is
// self-contained.
func (r *VehicleRepo) ListPublic(ctx context.Context) ([]model.PublicVehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id, v.make, v.model, v.year, v.owner_id, u.name
		 FROM vehicles v JOIN users u ON u.id = v.owner_id
		 WHERE v.is_deleted=0 AND v.status='available'
		   AND EXISTS (SELECT 1 FROM vehicle_drivers d WHERE d.vehicle_id = v.id)
		 ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.PublicVehicle, 0)
	index := map[uint64]int{}
	for rows.Next() {
		var pv model.PublicVehicle
		if err := rows.Scan(&pv.ID, &pv.Make, &pv.Model, &pv.Year, &pv.OwnerID, &pv.OwnerName); err != nil {
			return nil, err
		}
		pv.DriverIDs = []uint64{}
		index[pv.ID] = len(out)
		out = append(out, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	drows, err := r.DB.QueryContext(ctx,
		`SELECT d.vehicle_id, d.driver_id
		 FROM vehicle_drivers d JOIN vehicles v ON v.id = d.vehicle_id
		 WHERE v.is_deleted=0 AND v.status='available'
		 ORDER BY d.vehicle_id, d.driver_id`)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var vid, did uint64
		if err := drows.Scan(&vid, &did); err != nil {
			return nil, err
		}
		if i, ok := index[vid]; ok {
			out[i].DriverIDs = append(out[i].DriverIDs, did)
		}
	}
	return out, drows.Err()
}

// AvailableForDriver lists non-deleted vehicles the driver is not yet
// registered on, with owner names populated.
func (r *VehicleRepo) AvailableForDriver(ctx context.Context, driverID uint64) ([]VehicleWithOwner, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id, v.owner_id, v.make, v.model, v.year, v.license_plate, v.status, v.is_deleted, v.created_at, v.updated_at, u.name
		 FROM vehicles v JOIN users u ON u.id = v.owner_id
		 WHERE v.is_deleted=0
		   AND NOT EXISTS (SELECT 1 FROM vehicle_drivers d WHERE d.vehicle_id = v.id AND d.driver_id = ?)
		 ORDER BY v.id`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VehicleWithOwner
	for rows.Next() {
		var vo VehicleWithOwner
		if err := rows.Scan(&vo.ID, &vo.OwnerID, &vo.Make, &vo.Model, &vo.Year, &vo.LicensePlate,
			&vo.Status, &vo.IsDeleted, &vo.CreatedAt, &vo.UpdatedAt, &vo.OwnerName); err != nil {
			return nil, err
		}
		out = append(out, vo)
	}
	return out, rows.Err()
}

// ListAll returns every vehicle including soft-deleted ones for the
// admin moderation view.
func (r *VehicleRepo) ListAll(ctx context.Context) ([]AdminVehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id, v.owner_id, v.make, v.model, v.year, v.license_plate, v.status, v.is_deleted, v.created_at, v.updated_at, u.name, u.email
		 FROM vehicles v JOIN users u ON u.id = v.owner_id
		 ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AdminVehicle, 0)
	index := map[uint64]int{}
	for rows.Next() {
		var av AdminVehicle
		if err := rows.Scan(&av.ID, &av.OwnerID, &av.Make, &av.Model, &av.Year, &av.LicensePlate,
			&av.Status, &av.IsDeleted, &av.CreatedAt, &av.UpdatedAt, &av.OwnerName, &av.OwnerEmail); err != nil {
			return nil, err
		}
		av.DriverIDs = []uint64{}
		index[av.ID] = len(out)
		out = append(out, av)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	drows, err := r.DB.QueryContext(ctx,
		"SELECT vehicle_id, driver_id FROM vehicle_drivers ORDER BY vehicle_id, driver_id")
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var vid, did uint64
		if err := drows.Scan(&vid, &did); err != nil {
			return nil, err
		}
		if i, ok := index[vid]; ok {
			out[i].DriverIDs = append(out[i].DriverIDs, did)
		}
	}
	return out, drows.Err()
}

// CountActive counts non-deleted vehicles for the admin analytics view.
func (r *VehicleRepo) CountActive(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vehicles WHERE is_deleted=0").Scan(&n)
	return n, err
}
