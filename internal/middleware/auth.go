package middleware

import (
	"fmt"
	"net/http"
	"storefront-api/internal/config"
	"storefront-api/internal/model"
	"storefront-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// JWTAuth verifies the bearer token and leaves it on the context under "user".
func JWTAuth(cfg config.Auth) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: userContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			token, err := jwt.ParseWithClaims(auth, &service.Claims{}, func(t *jwt.Token) (interface{}, error) {
				return []byte(cfg.Key), nil
			},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(cfg.Issuer),
				jwt.WithAudience(cfg.Audience),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				return nil, err
			}
			return token, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	})
}

func IdentityFrom(c echo.Context) (service.Identity, error) {
	token, ok := c.Get(userContextKey).(*jwt.Token)
	if !ok {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}
	claims, ok := token.Claims.(*service.Claims)
	if !ok || claims.Subject == "" {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims.Identity(), nil
}

// RequireRole must run after JWTAuth.
func RequireRole(role model.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := IdentityFrom(c)
			if err != nil {
				return err
			}
			if identity.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("%s role required", role))
			}
			return next(c)
		}
	}
}
