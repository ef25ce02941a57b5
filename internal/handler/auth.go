package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/monitoring"
	"github.com/outy-app/outy/internal/repository"
	"github.com/outy-app/outy/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

// NewAuthHandler wires registration and login to the user store.
func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"` // user | business
	BusinessName string `json:"business_name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

func (h *AuthHandler) issue(u model.User) (string, error) {
	var bn string
	if u.BusinessName != nil {
		bn = *u.BusinessName
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, bn, h.Cfg.TokenTTL)
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email and password required")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, req.BusinessName)
	if err != nil {
		return respondError(c, err, "failed to register")
	}
	monitoring.TrackRegistration(u.Role)

	token, err := h.issue(u)
	if err != nil {
		return respondError(c, err, "failed to issue token")
	}
	return c.JSON(http.StatusCreated, authResp{Token: token, User: u.Public()})
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email and password required")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return respondError(c, err, "login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.issue(u)
	if err != nil {
		return respondError(c, err, "failed to issue token")
	}
	return c.JSON(http.StatusOK, authResp{Token: token, User: u.Public()})
}

// Me echoes the identity carried by the caller's token.
func (h *AuthHandler) Me(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var bn *string
	if cl.BusinessName != "" {
		bn = &cl.BusinessName
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": model.PublicUser{ID: cl.UserID, Email: cl.Email, Role: cl.Role, BusinessName: bn},
	})
}
