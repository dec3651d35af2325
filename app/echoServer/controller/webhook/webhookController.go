package webhook

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	customerrepo "pkgrental/repository/customer"
	"pkgrental/service/ingest"
	"pkgrental/service/inventory"
	qrcodesvc "pkgrental/service/qrcode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ingest.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Submission ingests one form submission from the upstream form provider.
// @Summary      Ingest form submission
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        payload  body  webhook.SubmissionReq  true  "Submission payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "active code pool exhausted"
// @Router       /v1/webhook/submission [post]
func (ct *Controller) Submission(c echo.Context) error {
	var req SubmissionReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	out, err := ct.Svc.Process(c.Request().Context(), ingest.Submission{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		City:        req.City,
		PackageType: req.PackageType,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return ct.fail(c, "submission", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "submission processed",
		"data":    out,
	})
}

// Reissue regenerates a customer's redemption code and re-sends the email.
// @Summary      Reissue redemption code
// @Tags         webhook
// @Produce      json
// @Param        id  path  int  true  "Customer ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/customers/{id}/qrcode [post]
func (ct *Controller) Reissue(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	out, err := ct.Svc.Reissue(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, "reissue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "code reissued",
		"data":    out,
	})
}

func (ct *Controller) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ingest.ErrMissingFields):
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	case errors.Is(err, qrcodesvc.ErrCapacityExhausted):
		return echo.NewHTTPError(http.StatusConflict, "no free redemption codes left")
	case errors.Is(err, customerrepo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "customer not found")
	}
	if inventory.Code(err) == inventory.ErrStorageUnavailable {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	ct.Log.Error(op+" failed", "err", err,
		"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
