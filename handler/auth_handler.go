package handler

import (
	"log"
	"time"

	"notevault/dto"
	"notevault/middleware"
	"notevault/services"
	"notevault/usecase"
	"notevault/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users    *usecase.UserService
	TokenTTL time.Duration
}

func NewAuthHandler(users *usecase.UserService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, TokenTTL: tokenTTL}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.Users.Register(c.Request.Context(), usecase.SignupProfile{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		middleware.TrackAuthAttempt("failure", "signup")
		respondError(c, err)
		return
	}

	middleware.TrackAuthAttempt("success", "signup")
	utils.Created(c, "User created successfully", gin.H{
		"data": gin.H{"user": user},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password, req.TOTP)
	if err != nil {
		middleware.TrackAuthAttempt("failure", "login")
		respondError(c, err)
		return
	}

	browser, osName, device := utils.ParseUserAgent(c.Request.UserAgent())
	log.Printf("login: user=%s from %s on %s (%s) ip=%s", user.UserID, browser, osName, device, c.ClientIP())

	c.SetCookie("token", token, int(h.TokenTTL.Seconds()), "/", "", false, true)

	middleware.TrackAuthAttempt("success", "login")
	utils.OK(c, "Login successful", gin.H{
		"token": token,
		"data":  gin.H{"user": user},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := services.BlacklistToken(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("token", "", -1, "/", "", false, true)
	utils.OK(c, "Logged out successfully", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	userID := c.GetString("userID")
	if err := h.Users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "Password updated successfully", nil)
}

func (h *AuthHandler) EnableTwoFactor(c *gin.Context) {
	userID := c.GetString("userID")

	otpauthURL, err := h.Users.EnableTwoFactor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "Two-factor setup started", gin.H{
		"data": gin.H{"otpauth_url": otpauthURL},
	})
}

func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var req dto.VerifyTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	userID := c.GetString("userID")
	if err := h.Users.VerifyTwoFactor(c.Request.Context(), userID, req.Code); err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "Two-factor authentication enabled", nil)
}
