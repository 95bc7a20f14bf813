package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/model"
	"github.com/iliyamo/fleet-booking/internal/queue"
	"github.com/iliyamo/fleet-booking/internal/repository"
	queue_publisher "github.com/iliyamo/fleet-booking/internal/service"
)

// TripHandler bundles dependencies for booking endpoints.
type TripHandler struct {
	Trips    *repository.TripRepo
	Vehicles *repository.VehicleRepo
	Users    *repository.UserRepo
	Notifier queue_publisher.Notifier
}

func NewTripHandler(t *repository.TripRepo, v *repository.VehicleRepo, u *repository.UserRepo, n queue_publisher.Notifier) *TripHandler {
	return &TripHandler{Trips: t, Vehicles: v, Users: u, Notifier: n}
}

type bookReq struct {
	VehicleID   uint64    `json:"vehicle_id"`
	DriverID    uint64    `json:"driver_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TotalAmount int64     `json:"total_amount"`
}

type tripResp struct {
	ID          uint64           `json:"id"`
	CustomerID  uint64           `json:"customer_id"`
	VehicleID   uint64           `json:"vehicle_id"`
	DriverID    uint64           `json:"driver_id"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Status      model.TripStatus `json:"status"`
	TotalAmount int64            `json:"total_amount"`
}

func toTripResp(t model.Trip) tripResp {
	return tripResp{
		ID: t.ID, CustomerID: t.CustomerID, VehicleID: t.VehicleID, DriverID: t.DriverID,
		StartTime: t.StartTime, EndTime: t.EndTime, Status: t.Status, TotalAmount: t.TotalAmount,
	}
}

// notify publishes a customer email request and logs failed deliveries.
// Notification trouble never fails the triggering request.
func (h *TripHandler) notify(ctx context.Context, tripID uint64, email, subject, message string) {
	res := h.Notifier.Send(ctx, queue.EmailRequestedEvent{
		TripID:      tripID,
		Email:       email,
		Subject:     subject,
		Message:     message,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if !res.Sent {
		log.Printf("trip %d: email notification failed: %s", tripID, res.Reason)
	}
}

// Book creates a pending trip request for the authenticated customer.
// The chosen driver must actually be a driver; the assigned driver
// confirms the request later via Accept.
func (h *TripHandler) Book(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.VehicleID == 0 || req.DriverID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() || req.TotalAmount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "please provide all booking details"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, req.VehicleID)
	if err != nil || v.IsDeleted {
		if err != nil && err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"message": "vehicle not found"})
	}
	d, err := h.Users.GetByID(ctx, req.DriverID)
	if err != nil || d.Role != model.RoleDriver || d.IsDeleted {
		if err != nil && err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"message": "driver not found"})
	}

	id, err := h.Trips.Create(ctx, u.ID, req.VehicleID, req.DriverID, req.StartTime, req.EndTime, req.TotalAmount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create trip failed"})
	}
	return c.JSON(http.StatusCreated, tripResp{
		ID: id, CustomerID: u.ID, VehicleID: req.VehicleID, DriverID: req.DriverID,
		StartTime: req.StartTime, EndTime: req.EndTime, Status: model.TripPending, TotalAmount: req.TotalAmount,
	})
}

type customerTripResp struct {
	tripResp
	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	LicensePlate string `json:"license_plate"`
	DriverName   string `json:"driver_name"`
}

// MyHistory lists the authenticated customer's bookings.
func (h *TripHandler) MyHistory(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	trips, err := h.Trips.ListByCustomer(c.Request().Context(), u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]customerTripResp, 0, len(trips))
	for _, t := range trips {
		out = append(out, customerTripResp{
			tripResp:    toTripResp(t.Trip),
			VehicleMake: t.VehicleMake, VehicleModel: t.VehicleModel,
			LicensePlate: t.LicensePlate, DriverName: t.DriverName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type driverTripResp struct {
	tripResp
	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	LicensePlate string `json:"license_plate"`
	CustomerName string `json:"customer_name"`
}

// Assigned lists the authenticated driver's non-deleted trips.
func (h *TripHandler) Assigned(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	trips, err := h.Trips.ListByDriver(c.Request().Context(), u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	out := make([]driverTripResp, 0, len(trips))
	for _, t := range trips {
		out = append(out, driverTripResp{
			tripResp:    toTripResp(t.Trip),
			VehicleMake: t.VehicleMake, VehicleModel: t.VehicleModel,
			LicensePlate: t.LicensePlate, CustomerName: t.CustomerName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves a trip to ongoing or completed. Only the assigned
// driver or an admin may do this; cancellation is a separate action.
func (h *TripHandler) UpdateStatus(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	status := model.TripStatus(req.Status)
	if status != model.TripOngoing && status != model.TripCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status provided for this action"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if t.DriverID != u.ID && u.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to update this trip"})
	}

	if err := h.Trips.UpdateStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	t.Status = status
	return c.JSON(http.StatusOK, toTripResp(t.Trip))
}

// Accept confirms a pending trip. Only the assigned driver may accept,
// and only from the pending state. The customer is notified by a
// best-effort email event.
func (h *TripHandler) Accept(c echo.Context) error {
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

	t, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if t.DriverID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to accept this trip"})
	}
	if t.Status != model.TripPending {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "trip is not in a pending state"})
	}

	if err := h.Trips.UpdateStatus(ctx, id, model.TripConfirmed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	t.Status = model.TripConfirmed

	h.notify(ctx, t.ID, t.CustomerEmail, "Your Trip has been Confirmed!",
		fmt.Sprintf("Your booking for the %s %s starting at %s has been confirmed by the driver.",
			t.VehicleMake, t.VehicleModel, t.StartTime.Format(time.RFC1123)))

	return c.JSON(http.StatusOK, toTripResp(t.Trip))
}

// Cancel cancels a pending or confirmed trip. The trip's customer and
// its driver may cancel; nobody else.
func (h *TripHandler) Cancel(c echo.Context) error {
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

	t, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if t.CustomerID != u.ID && t.DriverID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to cancel this trip"})
	}
	if t.Status != model.TripPending && t.Status != model.TripConfirmed {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": fmt.Sprintf("cannot cancel a trip that is %s", t.Status)})
	}

	if err := h.Trips.UpdateStatus(ctx, id, model.TripCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}

	h.notify(ctx, t.ID, t.CustomerEmail, "Your Trip has been Cancelled",
		fmt.Sprintf("Your booking for a trip starting at %s has been cancelled.",
			t.StartTime.Format(time.RFC1123)))

	return c.JSON(http.StatusOK, echo.Map{"message": "trip successfully cancelled"})
}
