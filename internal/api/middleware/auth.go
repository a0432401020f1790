package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// OperatorIDKey is the echo context key holding the authenticated operator.
const OperatorIDKey = "operator_id"

// Auth validates the bearer JWT and injects the operator identity into
// context. The operator is read from the operator_id claim, falling back to sub.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				if jwtSecret == "" {
					return nil, jwt.ErrInvalidKey
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			operatorID, _ := claims["operator_id"].(string)
			if operatorID == "" {
				operatorID, _ = claims.GetSubject()
			}
			if operatorID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing operator identity")
			}

			c.Set(OperatorIDKey, operatorID)
			return next(c)
		}
	}
}
