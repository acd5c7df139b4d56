package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prolearn/prolearn/shared/domain"
	jwt_internal "github.com/prolearn/prolearn/shared/jwt"
	"github.com/prolearn/prolearn/shared/logger"
	"github.com/prolearn/prolearn/shared/utils"
)

// Key to store the user in the request context
type key int

const UserClaimsKey key = 0

var errInvalidClaims = errors.New("invalid claims")

// Auth is the authentication stub. Sessions belong to an external identity
// provider, so a request without a bearer token is served as the demo user.
type Auth struct {
	jwtService jwt_internal.JwtService
	demo       domain.User
}

func NewAuth(jwtService jwt_internal.JwtService, demo domain.User) *Auth {
	return &Auth{jwtService: jwtService, demo: demo}
}

// Middleware puts the request's user into the context. A bearer token, when
// present, must be valid.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := a.demo
		if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
			decoded, err := a.userFromToken(token)
			if err != nil {
				if errors.Is(err, errInvalidClaims) {
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			user = *decoded
		}

		ctx := context.WithValue(r.Context(), UserClaimsKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) userFromToken(tokenString string) (*domain.User, error) {
	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return nil, errInvalidClaims
	}
	name, _ := claims["name"].(string)
	return &domain.User{Username: username, DisplayName: name}, nil
}

// GetUserFromContext retrieves the user stored by Auth, or nil.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
