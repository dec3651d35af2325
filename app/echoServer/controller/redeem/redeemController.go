package redeem

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	rs "pkgrental/service/redeem"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

// Resolve looks up the customer behind a presented redemption code.
// @Summary      Resolve redemption code
// @Tags         redeem
// @Produce      json
// @Param        code  path  string  true  "4-digit redemption code"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any "unknown or deactivated code"
// @Router       /v1/redeem/{code} [get]
func (ct *Controller) Resolve(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}

	out, err := ct.Svc.Resolve(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, rs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "code not found")
		}
		ct.Log.Error("resolve failed", "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Search finds customers by name or email for the manual fallback path.
// @Summary      Search customers
// @Tags         redeem
// @Produce      json
// @Param        q  query  string  true  "name or email fragment"
// @Success      200  {object}  map[string]any
// @Router       /v1/search [get]
func (ct *Controller) Search(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	rows, err := ct.Svc.Search(c.Request().Context(), term)
	if err != nil {
		ct.Log.Error("search failed", "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
