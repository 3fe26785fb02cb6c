package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/service"
)

// DashboardHandler serves the role-scoped dashboard view.
type DashboardHandler struct {
    Aggregator *service.DashboardAggregator
}

func NewDashboardHandler(a *service.DashboardAggregator) *DashboardHandler {
    return &DashboardHandler{Aggregator: a}
}

// Get returns the caller's dashboard. Admins may inspect another
// user's dashboard with ?user_id=N; everyone else gets their own.
func (h *DashboardHandler) Get(c echo.Context) error {
    uid, role, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    target := uid
    if q := c.QueryParam("user_id"); q != "" {
        if role != model.RoleAdmin {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        parsed, err := strconv.ParseUint(q, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
        }
        target = parsed
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    d, err := h.Aggregator.Dashboard(ctx, target)
    if err != nil {
        if errors.Is(err, service.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dashboard failed"})
    }
    return c.JSON(http.StatusOK, d)
}
