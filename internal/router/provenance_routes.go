package router

import (
    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/handler"
    "github.com/scanchain/scanchain/internal/middleware"
    "github.com/scanchain/scanchain/internal/model"
)

// RegisterPublic registers unauthenticated provenance endpoints.  A
// consumer holding a QR code can verify a batch, read its record and
// browse its scan trail without an account.
func RegisterPublic(e *echo.Echo, b *handler.BatchHandler, s *handler.ScanHandler, v *handler.VerifyHandler, search *handler.SearchHandler) {
    // Verification by posted QR payload or by batch id in the path.
    e.POST("/v1/verify", v.Verify)
    e.GET("/v1/verify/:id", v.VerifyByID)

    // Batch record, QR re-issue and the public scan trail.
    e.GET("/v1/batches/:id", b.Get)
    e.GET("/v1/batches/:id/qr", b.QR)
    e.GET("/v1/batches/:id/qr/download", b.QRDownload)
    e.GET("/v1/batches/:id/scans", s.ListByBatch)

    // Catalogue search.  Use ?q= with an optional ?field= of batchId,
    // batchName, manufacturer or productType.  Registered before the
    // :id routes match, echo prefers the static segment.
    e.GET("/v1/batches/search", search.Search)
}

// RegisterProvenance registers authenticated provenance endpoints under
// /v1.  Registration is restricted to manufacturers and admins; scans
// and dashboards are open to every authenticated role.
func RegisterProvenance(e *echo.Echo, b *handler.BatchHandler, s *handler.ScanHandler, d *handler.DashboardHandler, u *handler.UserHandler, jwtSecret string) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    // Batch lifecycle.  The revoke handler additionally checks that the
    // caller owns the batch or is an admin.
    reg := middleware.RequireRole(model.RoleManufacturer, model.RoleAdmin)
    g.POST("/batches", b.Register, reg)
    g.GET("/my-batches", b.ListMine)
    g.POST("/batches/:id/revoke", b.Revoke)

    // Scan recording and detail; the global listing is admin only.
    g.POST("/scans", s.Record)
    g.GET("/scans/:id", s.Get)
    g.GET("/scans", s.ListAll, middleware.RequireRole(model.RoleAdmin))

    // Role-scoped dashboard; admins may pass ?user_id= to inspect
    // another account.
    g.GET("/dashboard", d.Get)

    // User metadata: self or admin.
    g.GET("/users/me/metadata", u.OwnMetadata)
    g.GET("/users/:id/metadata", u.Metadata)
}
