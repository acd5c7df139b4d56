package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prolearn/prolearn/shared/domain"
	internal_errors "github.com/prolearn/prolearn/shared/errors"
	"github.com/prolearn/prolearn/shared/logger"
)

type JwtService interface {
	NewToken(user domain.User) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{}
	claims["sub"] = user.Username
	claims["name"] = user.DisplayName
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", errors.New("Can't create token")
	}

	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

// UserTokenSource mints bearer tokens for one fixed user and reuses a token
// until it is close to expiry.
type UserTokenSource struct {
	mu     sync.Mutex
	svc    JwtService
	user   domain.User
	ttl    time.Duration
	now    func() time.Time
	token  string
	minted time.Time
}

func NewUserTokenSource(svc JwtService, user domain.User, ttl time.Duration) *UserTokenSource {
	return &UserTokenSource{svc: svc, user: user, ttl: ttl, now: time.Now}
}

func (s *UserTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && s.now().Sub(s.minted) < s.ttl/2 {
		return s.token, nil
	}
	token, err := s.svc.NewToken(s.user)
	if err != nil {
		return "", err
	}
	s.token, s.minted = token, s.now()
	return token, nil
}
