package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
)

// UserHandler serves user metadata endpoints.
type UserHandler struct {
    Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
    return &UserHandler{Users: users}
}

// OwnMetadata returns the caller's own profile and associations.
func (h *UserHandler) OwnMetadata(c echo.Context) error {
    uid, _, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return h.metadata(c, uid)
}

// Metadata returns a user's profile plus their registered-batch
// associations. A user may read only their own record; admins may read
// anyone's.
func (h *UserHandler) Metadata(c echo.Context) error {
    uid, role, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    target, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if target != uid && role != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return h.metadata(c, target)
}

func (h *UserHandler) metadata(c echo.Context, target uint64) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, target)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    associations, err := h.Users.ListHashAssociations(ctx, target)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "user_id":      u.ID,
        "email":        u.Email,
        "full_name":    u.FullName,
        "role":         u.Role,
        "company_name": u.CompanyName,
        "is_active":    u.IsActive,
        "last_login":   u.LastLogin,
        "created_at":   u.CreatedAt,
        "associations": associations,
    })
}
