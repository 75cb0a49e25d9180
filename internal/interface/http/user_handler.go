package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/shopora/user-service/internal/application"
	"github.com/shopora/user-service/pkg/helpers"
	"github.com/shopora/user-service/pkg/response"
	"github.com/shopora/user-service/pkg/validation"
)

// UserHandler exposes the account lifecycle over HTTP.
type UserHandler struct {
	Svc              *userapp.Service
	Logger           *logrus.Logger
	Cookies          *helpers.Manager
	LoginRedirectURL string
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookies *helpers.Manager, loginRedirectURL string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: cookies, LoginRedirectURL: loginRedirectURL}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type addressRequest struct {
	Country     string `json:"country" binding:"required"`
	City        string `json:"city" binding:"required"`
	Line        string `json:"address" binding:"required"`
	Pincode     string `json:"pincode" binding:"required"`
	AddressType string `json:"address_type" binding:"required"`
}

// fail maps service errors onto the documented HTTP statuses. Unknown errors
// become a generic internal error so nothing leaks.
func (h *UserHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userapp.ErrMissingFields),
		errors.Is(err, userapp.ErrMissingCredentials),
		errors.Is(err, userapp.ErrMissingToken),
		errors.Is(err, userapp.ErrMissingAddressFields):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, userapp.ErrEmailRegistered):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, userapp.ErrAccountNotFound),
		errors.Is(err, userapp.ErrNotActivated),
		errors.Is(err, userapp.ErrInvalidCredentials),
		errors.Is(err, userapp.ErrInvalidToken):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, userapp.ErrMailDelivery):
		response.Error(c, http.StatusInternalServerError, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("unhandled service error")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// Signup handles POST /signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), userapp.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": u.ID, "email": u.Email}, "registration successful, check your email to activate the account", nil)
}

// Activation handles GET /activation/:token. On success the browser is sent
// to the frontend login page.
func (h *UserHandler) Activation(c *gin.Context) {
	token := c.Param("token")
	if err := h.Svc.Activate(c.Request.Context(), token); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.LoginRedirectURL)
}

// Login handles POST /login and sets the session cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, session, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetSession(c, session.Token, session.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"token":   session.Token,
	}, "login successful", gin.H{"expires_at": session.ExpiresAt})
}

// Logout clears the session cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// CheckLogin handles GET /checklogin for an authenticated user.
func (h *UserHandler) CheckLogin(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "user id not found", nil)
		return
	}
	view, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "profile", nil)
}

// Upload handles POST /upload with a multipart "photo" file.
func (h *UserHandler) Upload(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "user id not found", nil)
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read the uploaded file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	view, err := h.Svc.UploadProfilePhoto(c.Request.Context(), uid, f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "profile photo updated", nil)
}

// AddAddress handles PUT /add-address.
func (h *UserHandler) AddAddress(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "user id not found", nil)
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	view, err := h.Svc.AddAddress(c.Request.Context(), uid, userapp.AddressInput{
		Country:     req.Country,
		City:        req.City,
		Line:        req.Line,
		Pincode:     req.Pincode,
		AddressType: req.AddressType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "address added", nil)
}

// Search handles GET /users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("user search failed")
		}
		response.Error(c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
