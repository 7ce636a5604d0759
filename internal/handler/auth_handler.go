package handler

import (
	"errors"
	"time"

	"shopledger/internal/auth"
	"shopledger/internal/config"
	"shopledger/internal/repository"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	shopRepo *repository.ShopRepository
}

func NewAuthHandler(shopRepo *repository.ShopRepository) *AuthHandler {
	return &AuthHandler{shopRepo: shopRepo}
}

type loginRequest struct {
	ShopID int64  `json:"shop_id" binding:"required"`
	Phone  string `json:"phone" binding:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Role      string `json:"role"`
	Name      string `json:"name"`
}

// Login exchanges a registered phone number for a bearer token. The
// phone is trusted as already verified; OTP delivery sits in front of
// this service.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailKind(c, response.KindValidation, "shop_id and phone are required")
		return
	}

	user, err := h.shopRepo.GetUserByPhone(c.Request.Context(), req.ShopID, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.FailKind(c, response.KindUnauthorized, "unknown user")
			return
		}
		response.Fail(c, err)
		return
	}
	if !user.IsActive {
		response.FailKind(c, response.KindUnauthorized, "account disabled")
		return
	}

	ttl := time.Duration(config.GlobalConfig.Auth.TokenTTLHrs) * time.Hour
	token, err := auth.GenerateToken(config.GlobalConfig.Auth.JWTSecret, auth.Actor{
		UserID: user.ID,
		ShopID: user.ShopID,
		Role:   user.Role,
		Name:   user.Name,
	}, ttl)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, loginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		Role:      user.Role,
		Name:      user.Name,
	})
}
