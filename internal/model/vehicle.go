package model

import "time"

// VehicleStatus enumerates the lifecycle states of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleBooked      VehicleStatus = "booked"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Vehicle mirrors the `vehicles` table. The set of drivers approved to
// drive a vehicle lives in the `vehicle_drivers` join table and is
// loaded separately where a response needs it.
//
// A vehicle is publicly listable when it is not soft-deleted, its
// status is available and at least one driver is registered on it.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – owning user (role owner).
//  Make         – manufacturer name.
//  Model        – model name.
//  Year         – model year.
//  LicensePlate – unique plate number.
//  Status       – available, booked or maintenance.
//  IsDeleted    – soft-delete flag.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Vehicle struct {
	ID           uint64        // vehicles.id
	OwnerID      uint64        // vehicles.owner_id
	Make         string        // vehicles.make
	Model        string        // vehicles.model
	Year         uint16        // vehicles.year
	LicensePlate string        // vehicles.license_plate
	Status       VehicleStatus // vehicles.status
	IsDeleted    bool          // vehicles.is_deleted
	CreatedAt    time.Time     // vehicles.created_at
	UpdatedAt    time.Time     // vehicles.updated_at
}

// PublicVehicle is the projection served by the public listing and
// cached under the availability cache key. Only safe fields appear:
// the plate and timestamps are withheld from unauthenticated callers.
type PublicVehicle struct {
	ID        uint64   `json:"id"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      uint16   `json:"year"`
	OwnerID   uint64   `json:"owner_id"`
	OwnerName string   `json:"owner_name"`
	DriverIDs []uint64 `json:"drivers"`
}
