package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/model"
	"github.com/iliyamo/fleet-booking/internal/repository"
)

// AdminHandler bundles dependencies for the moderation endpoints. Every
// route here sits behind the admin role gate.
type AdminHandler struct {
	Users    *repository.UserRepo
	Vehicles *repository.VehicleRepo
	Trips    *repository.TripRepo
}

func NewAdminHandler(u *repository.UserRepo, v *repository.VehicleRepo, t *repository.TripRepo) *AdminHandler {
	return &AdminHandler{Users: u, Vehicles: v, Trips: t}
}

type adminUserResp struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListUsers lists all non-deleted accounts without password hashes.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// SoftDeleteUser marks an account deleted. The account's tokens stop
// working on their next protected request because the auth gate reloads
// the user every time.
func (h *AdminHandler) SoftDeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user removed"})
}

// Analytics returns the platform-wide counters and completed revenue.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	vehicles, err := h.Vehicles.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	trips, err := h.Trips.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	revenue, err := h.Trips.TotalCompletedRevenue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_users":    users,
		"total_vehicles": vehicles,
		"total_trips":    trips,
		"total_revenue":  revenue,
	})
}

type adminVehicleResp struct {
	vehicleResp
	IsDeleted  bool     `json:"is_deleted"`
	OwnerName  string   `json:"owner_name"`
	OwnerEmail string   `json:"owner_email"`
	DriverIDs  []uint64 `json:"drivers"`
}

// ListVehicles returns every vehicle, soft-deleted ones included.
func (h *AdminHandler) ListVehicles(c echo.Context) error {
	vehicles, err := h.Vehicles.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]adminVehicleResp, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, adminVehicleResp{
			vehicleResp: vehicleResp{
				ID: v.ID, OwnerID: v.OwnerID, Make: v.Make, Model: v.Model,
				Year: v.Year, LicensePlate: v.LicensePlate, Status: v.Status,
			},
			IsDeleted: v.IsDeleted, OwnerName: v.OwnerName, OwnerEmail: v.OwnerEmail,
			DriverIDs: v.DriverIDs,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type adminTripResp struct {
	tripResp
	IsDeleted     bool   `json:"is_deleted"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	DriverName    string `json:"driver_name"`
	DriverEmail   string `json:"driver_email"`
	VehicleMake   string `json:"vehicle_make"`
	VehicleModel  string `json:"vehicle_model"`
	LicensePlate  string `json:"license_plate"`
}

// ListTrips returns every trip, soft-deleted ones included.
func (h *AdminHandler) ListTrips(c echo.Context) error {
	trips, err := h.Trips.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]adminTripResp, 0, len(trips))
	for _, t := range trips {
		out = append(out, adminTripResp{
			tripResp:  toTripResp(t.Trip),
			IsDeleted: t.IsDeleted,
			CustomerName: t.CustomerName, CustomerEmail: t.CustomerEmail,
			DriverName: t.DriverName, DriverEmail: t.DriverEmail,
			VehicleMake: t.VehicleMake, VehicleModel: t.VehicleModel, LicensePlate: t.LicensePlate,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// SoftDeleteTrip hides a trip from the regular listings.
func (h *AdminHandler) SoftDeleteTrip(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Trips.SoftDelete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "trip removed"})
}
