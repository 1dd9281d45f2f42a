package httpserver

import (
	"errors"
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	identitysvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/identity"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// DeviceID triggers the guest-basket merge after a successful sign-in.
	DeviceID string `json:"deviceId"`
}

type loginResponse struct {
	Account      *domain.Account `json:"account"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresIn    int             `json:"expiresIn"`
	MergedItems  int             `json:"mergedItems"`
}

func signupHandler(identity IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req identitysvc.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		account, err := identity.Signup(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				c.JSON(http.StatusConflict, gin.H{"message": "account already exists"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"account": account})
	}
}

func loginHandler(identity IdentityService, baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		account, access, refresh, err := identity.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identitysvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
				return
			}
			respondError(c, err)
			return
		}

		merged := 0
		if req.DeviceID != "" {
			// The sign-in itself succeeded; a merge failure must not fail it.
			if n, mergeErr := baskets.MergeOnSignIn(c.Request.Context(), req.DeviceID, *account); mergeErr == nil {
				merged = n
			}
		}

		c.JSON(http.StatusOK, loginResponse{
			Account:      account,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    identity.AccessTTLSeconds(),
			MergedItems:  merged,
		})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		c.JSON(http.StatusOK, gin.H{"account": account, "policy": account.Policy()})
	}
}

func verifyAccountHandler(identity IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := identity.Verify(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": account})
	}
}
