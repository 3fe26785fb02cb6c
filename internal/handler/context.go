package handler

import (
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// currentUser extracts the authenticated user's id and role from the
// request context. JWTAuth stores the raw claim values, so the subject
// arrives as float64 (JSON number) or occasionally as a numeric string.
func currentUser(c echo.Context) (uint64, string, bool) {
    var uid uint64
    switch v := c.Get("user_id").(type) {
    case float64:
        uid = uint64(v)
    case uint64:
        uid = v
    case string:
        parsed, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return 0, "", false
        }
        uid = parsed
    default:
        return 0, "", false
    }
    role, _ := c.Get("role").(string)
    if uid == 0 {
        return 0, "", false
    }
    return uid, role, true
}

// bearerSubject parses the Authorization header directly and returns
// the token's subject. Used by endpoints that run outside the JWT
// middleware but can still act on a valid bearer token.
func bearerSubject(c echo.Context, secret string) (uint64, bool) {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return 0, false
    }
    raw := strings.TrimPrefix(auth, "Bearer ")
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, false
    }
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), true
    case string:
        if parsed, err := strconv.ParseUint(sub, 10, 64); err == nil {
            return parsed, true
        }
    }
    return 0, false
}
