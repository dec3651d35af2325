package customer

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	customersvc "pkgrental/service/customer"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc customersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Detail
// @Summary      Customer detail with packages
// @Tags         customers
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/customers/{id} [get]
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	out, err := ct.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "customer detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// List filters customers by rental status ("all" included).
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        status  query  string  false  "all|not_active|active|returned"
// @Success      200  {object}  map[string]any
// @Router       /v1/customers [get]
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.Filter(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return ct.fail(c, "customer list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// SaveNotes
// @Summary      Save customer notes
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Param        payload  body  customer.NotesReq  true  "Notes payload"
// @Success      200  {object}  map[string]any
// @Router       /v1/customers/{id}/notes [put]
func (ct *Controller) SaveNotes(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req NotesReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := ct.Svc.SaveNotes(c.Request().Context(), id, req.Notes); err != nil {
		return ct.fail(c, "save notes", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notes saved"})
}

// Emails lists the customer's notification history.
// @Summary      Customer email history
// @Tags         customers
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/customers/{id}/emails [get]
func (ct *Controller) Emails(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rows, err := ct.Svc.Emails(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "email history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Delete removes the customer and all dependent rows.
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/customers/{id} [delete]
func (ct *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		return ct.fail(c, "delete customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "customer deleted"})
}

// Stats
// @Summary      Dashboard counters
// @Tags         customers
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/stats [get]
func (ct *Controller) Stats(c echo.Context) error {
	out, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		return ct.fail(c, "stats", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

func (ct *Controller) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, customersvc.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "customer not found")
	case errors.Is(err, customersvc.ErrBadFilter):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}
	ct.Log.Error(op+" failed", "err", err,
		"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
