package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"go.uber.org/zap"
)

const actorKey = "actor"

// JWTAuthMiddleware validates the bearer token and stores the caller as an access.Actor
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil, metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				metrics.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				metrics.RecordAuthError("bad_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				metrics.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}

			role := access.Role(claims.Role)
			if !role.Valid() {
				log.Warn("Token carries unknown role", zap.String("role", claims.Role))
				metrics.RecordAuthError("unknown_role")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}
			if role == access.RoleClient && claims.ClientID == "" {
				log.Warn("Client token without client_id", zap.String("user_id", claims.UserID))
				metrics.RecordAuthError("missing_client")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "client_id is required in the token"})
			}

			actor := access.Actor{UserID: claims.UserID, Role: role, ClientID: claims.ClientID}
			c.Set(actorKey, actor)
			c.Set(logger.EchoKey, log.With(zap.String("user_id", actor.UserID), zap.String("role", string(actor.Role))))
			log.Debug("JWT token validated successfully",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// RequireCapability rejects callers whose role lacks c. It runs after JWTAuthMiddleware.
func RequireCapability(c access.Capability, metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			actor, ok := ActorFrom(ec)
			if !ok || !actor.Can(c) {
				logger.FromEcho(ec).Warn("Capability denied",
					zap.String("role", string(actor.Role)),
					zap.String("capability", string(c)))
				metrics.RecordAuthError("forbidden")
				return ec.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(ec)
		}
	}
}

// ActorFrom returns the authenticated caller stored by JWTAuthMiddleware
func ActorFrom(c echo.Context) (access.Actor, bool) {
	actor, ok := c.Get(actorKey).(access.Actor)
	return actor, ok
}
