package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"

	ClaimUserID     = "user_id"
	ClaimEmployeeID = "employee_id"
	ClaimRole       = "role"
	ClaimType       = "type"
)

var ErrInvalidClaims = errors.New("token claims do not describe a valid actor")

// Service issues access tokens. Login itself happens in the identity provider;
// this service only mints tokens for actors it is handed.
type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	if !actor.Role.IsValid() {
		return "", 0, user.ErrInvalidRole
	}
	if actor.EmployeeID == "" {
		return "", 0, user.ErrEmployeeIDRequired
	}

	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, fmt.Errorf("invalid access token expiration %q: %w", j.accessTokenExpirationTime, err)
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		ClaimUserID:     actor.UserID,
		ClaimEmployeeID: actor.EmployeeID,
		ClaimRole:       string(actor.Role),
		ClaimType:       TokenTypeAccess,
		"exp":           expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromClaims rebuilds the caller from verified access token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	tokenType, _ := claims[ClaimType].(string)
	if tokenType != TokenTypeAccess {
		return user.Actor{}, ErrInvalidClaims
	}

	employeeID, _ := claims[ClaimEmployeeID].(string)
	if employeeID == "" {
		return user.Actor{}, fmt.Errorf("%w: %v", ErrInvalidClaims, user.ErrEmployeeIDRequired)
	}

	roleStr, _ := claims[ClaimRole].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Actor{}, fmt.Errorf("%w: %v", ErrInvalidClaims, user.ErrInvalidRole)
	}

	userID, _ := claims[ClaimUserID].(string)
	return user.Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       role,
	}, nil
}
