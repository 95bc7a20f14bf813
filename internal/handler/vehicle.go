package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/model"
	"github.com/iliyamo/fleet-booking/internal/repository"
)

// AvailabilityCache is the read-through cache the public listing and
// the availability-changing mutations share. The concrete
// implementation lives in internal/cache; handlers only see this seam
// so tests can observe invalidations.
type AvailabilityCache interface {
	GetPublicVehicles(ctx context.Context) ([]model.PublicVehicle, bool)
	SetPublicVehicles(ctx context.Context, vehicles []model.PublicVehicle) error
	Invalidate(ctx context.Context) error
}

// VehicleHandler bundles dependencies for vehicle endpoints.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
	Trips    *repository.TripRepo
	Cache    AvailabilityCache
}

func NewVehicleHandler(v *repository.VehicleRepo, t *repository.TripRepo, cache AvailabilityCache) *VehicleHandler {
	return &VehicleHandler{Vehicles: v, Trips: t, Cache: cache}
}

type createVehicleReq struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         uint16 `json:"year"`
	LicensePlate string `json:"license_plate"`
}

type vehicleResp struct {
	ID           uint64              `json:"id"`
	OwnerID      uint64              `json:"owner_id"`
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	Year         uint16              `json:"year"`
	LicensePlate string              `json:"license_plate"`
	Status       model.VehicleStatus `json:"status"`
}

// Create registers a new vehicle for the authenticated owner.
func (h *VehicleHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req createVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	req.LicensePlate = strings.TrimSpace(req.LicensePlate)
	if req.Make == "" || req.Model == "" || req.Year == 0 || req.LicensePlate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "please provide all vehicle details"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Vehicles.Create(ctx, u.ID, req.Make, req.Model, req.Year, req.LicensePlate)
	if err != nil {
		if err == repository.ErrPlateExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "license plate already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create vehicle failed"})
	}
	return c.JSON(http.StatusCreated, vehicleResp{
		ID: id, OwnerID: u.ID, Make: req.Make, Model: req.Model,
		Year: req.Year, LicensePlate: req.LicensePlate, Status: model.VehicleAvailable,
	})
}

// MyVehicles lists the authenticated owner's non-deleted vehicles.
func (h *VehicleHandler) MyVehicles(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	vehicles, err := h.Vehicles.ListByOwner(c.Request().Context(), u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]vehicleResp, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleResp{
			ID: v.ID, OwnerID: v.OwnerID, Make: v.Make, Model: v.Model,
			Year: v.Year, LicensePlate: v.LicensePlate, Status: v.Status,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// SoftDelete marks a vehicle deleted, cancels its future trips and
// invalidates the public listing cache before responding. Owners may
// delete their own vehicles; admins may delete any.
func (h *VehicleHandler) SoftDelete(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if v.OwnerID != u.ID && u.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to delete this vehicle"})
	}

	if err := h.Vehicles.SoftDelete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	if err := h.Trips.CancelFutureByVehicle(ctx, id, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "cancel trips failed"})
	}

	// Invalidate before responding so the next public read recomputes.
	if err := h.Cache.Invalidate(ctx); err != nil {
		log.Printf("vehicle delete: cache invalidation failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle removed and future trips cancelled"})
}

// Public serves the public vehicle listing through the availability
// cache: a hit skips the database entirely, a miss recomputes the
// snapshot and stores it. Cache trouble degrades to database reads.
func (h *VehicleHandler) Public(c echo.Context) error {
	ctx := c.Request().Context()

	if vehicles, ok := h.Cache.GetPublicVehicles(ctx); ok {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSON(http.StatusOK, vehicles)
	}

	vehicles, err := h.Vehicles.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if err := h.Cache.SetPublicVehicles(ctx, vehicles); err != nil {
		log.Printf("public vehicles: cache store failed: %v", err)
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSON(http.StatusOK, vehicles)
}

type insightTrip struct {
	ID           uint64           `json:"id"`
	Status       model.TripStatus `json:"status"`
	TotalAmount  int64            `json:"total_amount"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	CustomerName string           `json:"customer_name"`
	DriverName   string           `json:"driver_name"`
	VehicleMake  string           `json:"vehicle_make"`
	VehicleModel string           `json:"vehicle_model"`
}

// MyInsights returns dashboard aggregates for an owner: completed
// revenue and bookings, cancellations, and the ten newest trips across
// their fleet.
func (h *VehicleHandler) MyInsights(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	revenue, bookings, err := h.Trips.OwnerRevenue(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	cancellations, err := h.Trips.OwnerCancellations(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	recent, err := h.Trips.RecentByOwner(ctx, u.ID, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	history := make([]insightTrip, 0, len(recent))
	for _, t := range recent {
		history = append(history, insightTrip{
			ID: t.ID, Status: t.Status, TotalAmount: t.TotalAmount,
			StartTime: t.StartTime, EndTime: t.EndTime,
			CustomerName: t.CustomerName, DriverName: t.DriverName,
			VehicleMake: t.VehicleMake, VehicleModel: t.VehicleModel,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_revenue":       revenue,
		"total_bookings":      bookings,
		"total_cancellations": cancellations,
		"trip_history":        history,
	})
}
