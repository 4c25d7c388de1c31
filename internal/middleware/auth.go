package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "user_id"

type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

// GenerateAccessToken creates a JWT with 15 minute expiry. The auth frontend
// is an external collaborator; this exists so integration setups and tests
// can mint tokens the middleware accepts.
func (j *JWTAuth) GenerateAccessToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Middleware validates the JWT and attaches user_id to the context.
// Requests without a valid token are rejected.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, errCode, errMsg := j.userIDFromRequest(r)
		if errCode != "" {
			writeError(w, http.StatusUnauthorized, errCode, errMsg, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalMiddleware attaches user_id when a valid token is present and
// passes the request through anonymously otherwise. The chat endpoint works
// for both; only persistence needs a user.
func (j *JWTAuth) OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, errCode, _ := j.userIDFromRequest(r)
		if errCode != "" {
			// A malformed token does not block the chat path.
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (j *JWTAuth) userIDFromRequest(r *http.Request) (userID, errCode, errMsg string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "UNAUTHORIZED", "Missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "UNAUTHORIZED", "Invalid authorization format"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return "", "TOKEN_EXPIRED", "Token has expired"
		}
		return "", "UNAUTHORIZED", "Invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "UNAUTHORIZED", "Invalid token claims"
	}

	// The user id is an opaque string minted by the auth collaborator.
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", "UNAUTHORIZED", "Invalid user ID in token"
	}
	return id, "", ""
}

// GetUserID extracts user_id from the request context; "" means anonymous.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
