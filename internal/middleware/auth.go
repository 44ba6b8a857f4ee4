package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// Claims are the access token claims issued by the storefront's auth
// service. Only HS256 tokens with an expiry are accepted.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var errMalformedHeader = errors.New("invalid authorization header format")

// AuthMiddleware validates JWT tokens and puts the caller's user id and
// role on the request context
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, err := bearerToken(authHeader)
			if err != nil {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}

			var claims Claims
			if _, err := parser.ParseWithClaims(tokenString, &claims, keyFunc); err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if claims.UserID == "" || claims.Role == "" {
				logger.Warn("Token is missing user_id or role claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

			logger.Debug("User authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", errMalformedHeader
	}
	return token, nil
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
