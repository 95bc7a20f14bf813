package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/fleet-booking/internal/model"
)

type TripRepo struct{ DB *sql.DB }

func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{DB: db} }

// CustomerTrip is the booking-history projection for customers: the trip
// plus the vehicle identity and the driver's name.
type CustomerTrip struct {
	model.Trip
	VehicleMake  string
	VehicleModel string
	LicensePlate string
	DriverName   string
}

// DriverTrip is the assigned-trip projection for drivers.
type DriverTrip struct {
	model.Trip
	VehicleMake  string
	VehicleModel string
	LicensePlate string
	CustomerName string
}

// AdminTrip is the moderation projection: every trip with contact
// details for both parties.
type AdminTrip struct {
	model.Trip
	CustomerName  string
	CustomerEmail string
	DriverName    string
	DriverEmail   string
	VehicleMake   string
	VehicleModel  string
	LicensePlate  string
}

// TripDetail carries the fields the accept/cancel flows need to notify
// the customer without a second lookup.
type TripDetail struct {
	model.Trip
	CustomerName  string
	CustomerEmail string
	VehicleMake   string
	VehicleModel  string
}

const tripCols = "t.id,t.customer_id,t.vehicle_id,t.driver_id,t.start_time,t.end_time,t.status,t.total_amount,t.is_deleted,t.created_at,t.updated_at"

// Create inserts a pending trip and returns its ID.
func (r *TripRepo) Create(ctx context.Context, customerID, vehicleID, driverID uint64, start, end time.Time, amount int64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO trips (customer_id, vehicle_id, driver_id, start_time, end_time, status, total_amount) VALUES (?,?,?,?,?,'pending',?)",
		customerID, vehicleID, driverID, start, end, amount)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetDetail fetches a trip with customer contact details and vehicle
// identity, regardless of the soft-delete flag.
func (r *TripRepo) GetDetail(ctx context.Context, id uint64) (TripDetail, error) {
	var d TripDetail
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+tripCols+`, c.name, c.email, v.make, v.model
		 FROM trips t
		 JOIN users c ON c.id = t.customer_id
		 JOIN vehicles v ON v.id = t.vehicle_id
		 WHERE t.id=? LIMIT 1`, id).
		Scan(&d.ID, &d.CustomerID, &d.VehicleID, &d.DriverID, &d.StartTime, &d.EndTime,
			&d.Status, &d.TotalAmount, &d.IsDeleted, &d.CreatedAt, &d.UpdatedAt,
			&d.CustomerName, &d.CustomerEmail, &d.VehicleMake, &d.VehicleModel)
	return d, err
}

// ListByCustomer returns a customer's booking history.
func (r *TripRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]CustomerTrip, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tripCols+`, v.make, v.model, v.license_plate, d.name
		 FROM trips t
		 JOIN vehicles v ON v.id = t.vehicle_id
		 JOIN users d ON d.id = t.driver_id
		 WHERE t.customer_id=? ORDER BY t.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerTrip
	for rows.Next() {
		var ct CustomerTrip
		if err := rows.Scan(&ct.ID, &ct.CustomerID, &ct.VehicleID, &ct.DriverID, &ct.StartTime, &ct.EndTime,
			&ct.Status, &ct.TotalAmount, &ct.IsDeleted, &ct.CreatedAt, &ct.UpdatedAt,
			&ct.VehicleMake, &ct.VehicleModel, &ct.LicensePlate, &ct.DriverName); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// ListByDriver returns the non-deleted trips assigned to a driver.
func (r *TripRepo) ListByDriver(ctx context.Context, driverID uint64) ([]DriverTrip, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tripCols+`, v.make, v.model, v.license_plate, c.name
		 FROM trips t
		 JOIN vehicles v ON v.id = t.vehicle_id
		 JOIN users c ON c.id = t.customer_id
		 WHERE t.driver_id=? AND t.is_deleted=0 ORDER BY t.id DESC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DriverTrip
	for rows.Next() {
		var dt DriverTrip
		if err := rows.Scan(&dt.ID, &dt.CustomerID, &dt.VehicleID, &dt.DriverID, &dt.StartTime, &dt.EndTime,
			&dt.Status, &dt.TotalAmount, &dt.IsDeleted, &dt.CreatedAt, &dt.UpdatedAt,
			&dt.VehicleMake, &dt.VehicleModel, &dt.LicensePlate, &dt.CustomerName); err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

// UpdateStatus sets a trip's status. Transition legality is checked by
// the handler, which holds the freshly loaded trip.
func (r *TripRepo) UpdateStatus(ctx context.Context, id uint64, status model.TripStatus) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE trips SET status=? WHERE id=?", string(status), id)
	return err
}

// CancelFutureByVehicle cancels every trip on the vehicle that has not
// started yet. Called when a vehicle is soft-deleted.
func (r *TripRepo) CancelFutureByVehicle(ctx context.Context, vehicleID uint64, from time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE trips SET status='cancelled' WHERE vehicle_id=? AND start_time>=?",
		vehicleID, from)
	return err
}

// SoftDelete marks a trip as deleted. sql.ErrNoRows is returned when no
// row was touched.
func (r *TripRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE trips SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
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

// ListAll returns every trip including soft-deleted ones for the admin
// moderation view.
func (r *TripRepo) ListAll(ctx context.Context) ([]AdminTrip, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tripCols+`, c.name, c.email, d.name, d.email, v.make, v.model, v.license_plate
		 FROM trips t
		 JOIN users c ON c.id = t.customer_id
		 JOIN users d ON d.id = t.driver_id
		 JOIN vehicles v ON v.id = t.vehicle_id
		 ORDER BY t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminTrip
	for rows.Next() {
		var at AdminTrip
		if err := rows.Scan(&at.ID, &at.CustomerID, &at.VehicleID, &at.DriverID, &at.StartTime, &at.EndTime,
			&at.Status, &at.TotalAmount, &at.IsDeleted, &at.CreatedAt, &at.UpdatedAt,
			&at.CustomerName, &at.CustomerEmail, &at.DriverName, &at.DriverEmail,
			&at.VehicleMake, &at.VehicleModel, &at.LicensePlate); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// CountActive counts non-deleted trips for the admin analytics view.
func (r *TripRepo) CountActive(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trips WHERE is_deleted=0").Scan(&n)
	return n, err
}

// TotalCompletedRevenue sums the total amount of all completed trips.
func (r *TripRepo) TotalCompletedRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_amount),0) FROM trips WHERE status='completed'").Scan(&total)
	return total, err
}

// OwnerRevenue aggregates completed bookings across all of an owner's
// vehicles: the revenue total and the number of completed trips.
func (r *TripRepo) OwnerRevenue(ctx context.Context, ownerID uint64) (int64, uint64, error) {
	var (
		revenue  int64
		bookings uint64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.total_amount),0), COUNT(*)
		 FROM trips t JOIN vehicles v ON v.id = t.vehicle_id
		 WHERE v.owner_id=? AND t.status='completed'`, ownerID).
		Scan(&revenue, &bookings)
	return revenue, bookings, err
}

// OwnerCancellations counts cancelled trips across an owner's vehicles.
func (r *TripRepo) OwnerCancellations(ctx context.Context, ownerID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM trips t JOIN vehicles v ON v.id = t.vehicle_id
		 WHERE v.owner_id=? AND t.status='cancelled'`, ownerID).Scan(&n)
	return n, err
}

// RecentByOwner returns the newest trips across an owner's vehicles for
// the dashboard history list.
func (r *TripRepo) RecentByOwner(ctx context.Context, ownerID uint64, limit int) ([]AdminTrip, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tripCols+`, c.name, c.email, d.name, d.email, v.make, v.model, v.license_plate
		 FROM trips t
		 JOIN users c ON c.id = t.customer_id
		 JOIN users d ON d.id = t.driver_id
		 JOIN vehicles v ON v.id = t.vehicle_id
		 WHERE v.owner_id=?
		 ORDER BY t.created_at DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminTrip
	for rows.Next() {
		var at AdminTrip
		if err := rows.Scan(&at.ID, &at.CustomerID, &at.VehicleID, &at.DriverID, &at.StartTime, &at.EndTime,
			&at.Status, &at.TotalAmount, &at.IsDeleted, &at.CreatedAt, &at.UpdatedAt,
			&at.CustomerName, &at.CustomerEmail, &at.DriverName, &at.DriverEmail,
			&at.VehicleMake, &at.VehicleModel, &at.LicensePlate); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}
