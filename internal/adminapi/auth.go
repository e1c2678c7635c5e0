package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/login", login)
	webserver.ApiPOST("/logout", logout)
	webserver.ApiGET("/me", me)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	for i := range workers {
		w := &workers[i]
		if w.Username != payload.Username {
			continue
		}
		if w.Status == common.DISABLED {
			return fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled", nil)
		}
		if !common.CheckPassword(w.PasswordHash, payload.Password) {
			break
		}
		token, terr := webserver.IssueToken(GetApp(c).Config().Web.Secret, *w)
		if terr != nil {
			return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue session", terr.Error())
		}
		w.LastLogin = time.Now()
		if err := store.SaveWorkers(workers); err != nil {
			zap.L().Warn("failed to record last login", zap.Error(err))
		}
		if err := store.PutMeta(localdb.MetaCurrentUser, w.Username); err != nil {
			zap.L().Warn("failed to record current user", zap.Error(err))
		}
		zap.L().Info("worker logged in", zap.String("username", w.Username))
		return ok(c, map[string]interface{}{
			"token":  token,
			"worker": w,
		})
	}
	return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
}

// logout is a client-side operation with stateless tokens; the endpoint
// exists so the audit log records the event.
func logout(c echo.Context) error {
	if worker, err := currentWorker(c); err == nil {
		zap.L().Info("worker logged out", zap.String("username", worker.Username))
	}
	return ok(c, map[string]interface{}{"logged_out": true})
}

func me(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	return ok(c, worker)
}
