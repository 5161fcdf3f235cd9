package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/events"
	"github.com/mandoni/retail-ordering/internal/hash"
	"github.com/mandoni/retail-ordering/internal/middleware/auth"
	"github.com/mandoni/retail-ordering/internal/models"
	"github.com/mandoni/retail-ordering/internal/response"
	"github.com/mandoni/retail-ordering/internal/tokens"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Producer      *events.Producer
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), "user_events", key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, http.StatusBadRequest, "username and password are required")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return response.Error(c, http.StatusBadRequest, "A user with this username already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		IsAdmin:      false,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return response.Error(c, http.StatusBadRequest, "A user with this username already exists")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, http.StatusCreated, "User created successfully", echo.Map{
		"id":       user.ID,
		"username": user.Username,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return response.Error(c, http.StatusBadRequest, "Invalid username or password")
	}

	access, refresh, err := h.issueTokens(&user)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not create tokens")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, http.StatusOK, "User successfully logged in", echo.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh access/refresh pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}

	claims, err := tokens.ParseRefresh(req.Refresh, h.RefreshSecret)
	if err != nil {
		return response.Error(c, http.StatusUnauthorized, "enter valid token")
	}

	var stored models.RefreshToken
	if err := h.DB.Where("token = ?", tokens.Sha256Hex(req.Refresh)).First(&stored).Error; err != nil {
		return response.Error(c, http.StatusUnauthorized, "enter valid token")
	}
	if stored.Revoked || time.Now().Unix() > stored.ExpiresAt {
		return response.Error(c, http.StatusUnauthorized, "token expired or revoked")
	}

	var user models.User
	if err := h.DB.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		return response.Error(c, http.StatusUnauthorized, "invalid user")
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("jti = ?", stored.JTI).
		Update("revoked", true).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	access, refresh, err := h.issueTokens(&user)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not create tokens")
	}

	return response.OK(c, http.StatusOK, "Token refreshed", echo.Map{
		"access":  access,
		"refresh": refresh,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		return response.Error(c, http.StatusBadRequest, "refresh token required")
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", tokens.Sha256Hex(req.Refresh)).
		Update("revoked", true).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	return response.OK(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) MakeAdmin(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "User not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	if user.IsAdmin {
		return response.Error(c, http.StatusBadRequest, "User is already an admin")
	}

	user.IsAdmin = true
	if err := h.DB.Save(&user).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	var promotedBy uint
	if promoter := auth.CurrentUser(c); promoter != nil {
		promotedBy = promoter.ID
	}
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":        "user_promoted",
		"user_id":     user.ID,
		"promoted_by": promotedBy,
	})

	return response.OK(c, http.StatusOK,
		fmt.Sprintf("User %s has been promoted to admin", user.Username),
		echo.Map{
			"id":       user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		})
}

func (h *AuthHandler) issueTokens(user *models.User) (string, string, error) {
	access, err := tokens.SignAccess(user.Username, h.AccessTTL, h.JWTSecret)
	if err != nil {
		return "", "", err
	}

	refresh, jti, err := tokens.SignRefresh(user.Username, h.RefreshTTL, h.RefreshSecret)
	if err != nil {
		return "", "", err
	}

	stored := models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(h.RefreshTTL).Unix(),
	}
	if err := h.DB.Create(&stored).Error; err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
