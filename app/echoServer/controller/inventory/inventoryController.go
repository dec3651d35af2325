package inventory

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pkgrental/model"
	is "pkgrental/service/inventory"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc is.Service
	V   *validator.Validate
	Log *slog.Logger
}

// AddUnits
// @Summary      Add package units
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Param        payload  body  inventory.AddUnitsReq  true  "Add payload"
// @Success      201  {object}  map[string]any
// @Router       /v1/customers/{id}/packages [post]
func (ct *Controller) AddUnits(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req AddUnitsReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	ids, err := ct.Svc.AddUnits(c.Request().Context(), id, req.PackageType, req.Quantity)
	if err != nil {
		return ct.fail(c, "add units", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "packages added",
		"unit_ids": ids,
	})
}

// RemoveUnits deletes available units only, newest first, all or nothing.
// @Summary      Remove package units
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Param        payload  body  inventory.RemoveUnitsReq  true  "Remove payload"
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  map[string]any "fewer available units than requested"
// @Router       /v1/customers/{id}/packages [delete]
func (ct *Controller) RemoveUnits(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req RemoveUnitsReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	ids, err := ct.Svc.RemoveUnits(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return ct.fail(c, "remove units", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "packages removed",
		"unit_ids": ids,
	})
}

// List returns the customer's units plus the live summary.
// @Summary      List package units
// @Tags         packages
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/customers/{id}/packages [get]
func (ct *Controller) List(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	units, err := ct.Svc.ListUnits(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "list units", err)
	}
	sum, err := ct.Svc.Summary(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "summary", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"packages":        units,
		"package_summary": sum,
	})
}

// Action runs one scanner button: checkout_one, checkout_all, checkin_one
// or checkin_all.
// @Summary      Checkout / checkin packages
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Param        payload  body  inventory.ActionReq  true  "Action payload"
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  map[string]any "nothing to check out / check in"
// @Router       /v1/customers/{id}/packages/action [post]
func (ct *Controller) Action(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ActionReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	count := req.Count
	if count == 0 {
		count = 1
	}
	if strings.HasSuffix(req.Action, "_all") {
		count = is.All
	}

	var (
		out *is.ActionResult
		err error
	)
	if strings.HasPrefix(req.Action, "checkout") {
		out, err = ct.Svc.Checkout(c.Request().Context(), id, count)
	} else {
		out, err = ct.Svc.Checkin(c.Request().Context(), id, count)
	}
	if err != nil {
		return ct.fail(c, req.Action, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": req.Action + " done",
		"data":    out,
	})
}

// Reset flips every unit back to available without a thank-you email.
// @Summary      Reset customer packages
// @Tags         packages
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/customers/{id}/packages/reset [post]
func (ct *Controller) Reset(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	out, err := ct.Svc.Reset(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "reset", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "packages reset",
		"data":    out,
	})
}

// SetStatus edits one unit directly.
// @Summary      Set single unit status
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Package unit ID"
// @Param        payload  body  inventory.SetStatusReq  true  "Status payload"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/packages/{id}/status [put]
func (ct *Controller) SetStatus(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req SetStatusReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	out, err := ct.Svc.SetUnitStatus(c.Request().Context(), id, model.UnitStatus(req.Status))
	if err != nil {
		return ct.fail(c, "set status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "status updated",
		"data":    out,
	})
}

func (ct *Controller) fail(c echo.Context, op string, err error) error {
	switch is.Code(err) {
	case is.ErrInvalidQuantity, is.ErrInvalidCount, is.ErrInvalidStatus:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case is.ErrInsufficientAvailable:
		return echo.NewHTTPError(http.StatusConflict, "fewer available packages than requested")
	case is.ErrNoAvailableUnits:
		return echo.NewHTTPError(http.StatusConflict, "no available packages")
	case is.ErrNoRentedUnits:
		return echo.NewHTTPError(http.StatusConflict, "no rented packages")
	case is.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case is.ErrStorageUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	ct.Log.Error(op+" failed", "err", err,
		"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
