package middleware // reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // subject string to user id conversion
    "strings"  // prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/fadl/dashboard-api/internal/token"
)

// HeaderUserID is the trusted internal header carrying the resolved subject.
// Downstream handlers trust it implicitly, so they must never be reachable
// without this middleware in front of them.
const HeaderUserID = "x-user-id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the resolved identity into the request: `user_id` in the Echo
// context for in-process handlers and the x-user-id header for anything
// proxied further.  Every failure is the same opaque 401; the reason is
// never surfaced to the client.
func JWTAuth(verifier *token.Issuer) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            sub, err := verifier.Verify(raw, token.Access)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
            }
            uid, err := strconv.ParseUint(sub, 10, 64)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
            }

            c.Set("user_id", uid)
            // never forward a client-supplied value for the trusted header
            c.Request().Header.Set(HeaderUserID, sub)
            return next(c)
        }
    }
}
