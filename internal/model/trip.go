package model

import "time"

// TripStatus enumerates the states a booking moves through. New trips
// start pending; the assigned driver confirms them; drivers or admins
// mark them ongoing and completed; either party may cancel a trip that
// has not started yet.
type TripStatus string

const (
	TripPending   TripStatus = "pending"
	TripConfirmed TripStatus = "confirmed"
	TripOngoing   TripStatus = "ongoing"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// Trip mirrors the `trips` table.
//
// Fields:
//  ID          – primary key identifier.
//  CustomerID  – booking customer.
//  VehicleID   – booked vehicle.
//  DriverID    – assigned driver.
//  StartTime   – scheduled start.
//  EndTime     – scheduled end.
//  Status      – pending, confirmed, ongoing, completed or cancelled.
//  TotalAmount – agreed price in cents.
//  IsDeleted   – soft-delete flag set by admin moderation.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Trip struct {
	ID          uint64     // trips.id
	CustomerID  uint64     // trips.customer_id
	VehicleID   uint64     // trips.vehicle_id
	DriverID    uint64     // trips.driver_id
	StartTime   time.Time  // trips.start_time
	EndTime     time.Time  // trips.end_time
	Status      TripStatus // trips.status
	TotalAmount int64      // trips.total_amount
	IsDeleted   bool       // trips.is_deleted
	CreatedAt   time.Time  // trips.created_at
	UpdatedAt   time.Time  // trips.updated_at
}
