package webserver

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cafedesk/cafedesk/internal/domain"
)

const tokenTTL = 12 * time.Hour

// WorkerClaims is the JWT payload carried by logged-in sessions. WorkerID is
// a snowflake and travels as a string; a numeric JSON claim would lose
// precision in the float64 round trip.
type WorkerClaims struct {
	WorkerID int64  `json:"worker_id,string"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the worker.
func IssueToken(secret string, worker domain.Worker) (string, error) {
	claims := WorkerClaims{
		WorkerID: worker.ID,
		Username: worker.Username,
		Role:     worker.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CurrentClaims extracts the verified session claims from the request.
func CurrentClaims(c echo.Context) (*WorkerClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("no session token")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("malformed session claims")
	}
	claims := &WorkerClaims{}
	if v, ok := mc["worker_id"].(string); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "malformed worker id claim")
		}
		claims.WorkerID = id
	}
	if v, ok := mc["username"].(string); ok {
		claims.Username = v
	}
	if v, ok := mc["role"].(string); ok {
		claims.Role = v
	}
	if claims.WorkerID == 0 {
		return nil, errors.New("malformed session claims")
	}
	return claims, nil
}
