package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/models"
	"github.com/mandoni/retail-ordering/internal/tokens"
)

const userContextKey = "currentUser"

// Gate authenticates bearer tokens and enforces the admin capability.
// It is read-only: every check runs before any handler logic.
type Gate struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (g *Gate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolve(c)
		if err != nil {
			return err
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolve(c)
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "only admin users can perform this action")
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// resolve validates the Authorization header and maps the token subject
// to a stored user. Any failure short of a DB outage is a 401.
func (g *Gate) resolve(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "enter valid token")
	}

	claims, err := tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "), g.JWTSecret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "enter valid token")
	}

	var user models.User
	if err := g.DB.WithContext(c.Request().Context()).
		Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return &user, nil
}

func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
