package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/repository"
)

// DriverHandler bundles dependencies for driver endpoints.
type DriverHandler struct {
	Vehicles *repository.VehicleRepo
	Cache    AvailabilityCache
}

func NewDriverHandler(v *repository.VehicleRepo, cache AvailabilityCache) *DriverHandler {
	return &DriverHandler{Vehicles: v, Cache: cache}
}

type driverVehicleResp struct {
	ID           uint64 `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         uint16 `json:"year"`
	LicensePlate string `json:"license_plate"`
	Status       string `json:"status"`
	OwnerName    string `json:"owner_name"`
}

// AvailableVehicles lists vehicles the authenticated driver can still
// register onto: every non-deleted vehicle whose driver set does not
// already contain them.
func (h *DriverHandler) AvailableVehicles(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	vehicles, err := h.Vehicles.AvailableForDriver(c.Request().Context(), u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]driverVehicleResp, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, driverVehicleResp{
			ID: v.ID, Make: v.Make, Model: v.Model, Year: v.Year,
			LicensePlate: v.LicensePlate, Status: string(v.Status), OwnerName: v.OwnerName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// RegisterVehicle adds the authenticated driver to a vehicle's driver
// set. Gaining a first driver can make the vehicle publicly listable,
// so the availability cache is invalidated before responding.
func (h *DriverHandler) RegisterVehicle(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	vehicleID, err := paramID(c, "vehicleId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if v.IsDeleted {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "vehicle not found"})
	}

	if err := h.Vehicles.AddDriver(ctx, vehicleID, u.ID); err != nil {
		if err == repository.ErrDriverExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "driver is already registered for this vehicle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "register driver failed"})
	}

	// Invalidate before responding so the next public read recomputes.
	if err := h.Cache.Invalidate(ctx); err != nil {
		log.Printf("driver register: cache invalidation failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "successfully registered for vehicle",
		"vehicle": vehicleResp{
			ID: v.ID, OwnerID: v.OwnerID, Make: v.Make, Model: v.Model,
			Year: v.Year, LicensePlate: v.LicensePlate, Status: v.Status,
		},
	})
}
