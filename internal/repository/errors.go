// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios; for
// example, ErrEmailExists signals a registration attempt with an
// address that is already taken.
package repository

import "errors"

// ErrEmailExists is returned when a registration collides with an
// existing email address. Handlers translate this into an HTTP 400
// response.
var ErrEmailExists = errors.New("email already exists")

// ErrPlateExists is returned when a vehicle is created with a license
// plate that is already registered. Handlers translate this into an
// HTTP 400 response.
var ErrPlateExists = errors.New("license plate already exists")

// ErrDriverExists is returned when a driver registers onto a vehicle
// they are already approved for. Handlers translate this into an
// HTTP 400 response.
var ErrDriverExists = errors.New("driver already registered for vehicle")
