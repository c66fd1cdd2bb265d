package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/buyer"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/config"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/courier"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/region"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/staff"
)

type tokenResponse struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
	ID    string    `json:"id"`
	Name  string    `json:"name,omitempty"`
}

func registerBuyerHandler(buyers buyer.Repository, regions region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buyer.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" || req.SubdistrictID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password and subdistrict are required"})
			return
		}
		if _, err := regions.GetSubdistrict(c.Request.Context(), req.SubdistrictID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown subdistrict"})
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash error"})
			return
		}
		b := &buyer.Buyer{
			ID:            uuid.NewString(),
			Name:          req.Name,
			Email:         req.Email,
			PasswordHash:  hash,
			Phone:         req.Phone,
			Address:       req.Address,
			SubdistrictID: req.SubdistrictID,
		}
		if err := buyers.Create(c.Request.Context(), b); err != nil {
			if errors.Is(err, buyer.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

func loginBuyerHandler(buyers buyer.Repository, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buyer.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		b, err := buyers.GetByEmail(c.Request.Context(), req.Email)
		if err != nil || !auth.CheckPassword(b.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
			return
		}
		issueToken(c, auth.Actor{ID: b.ID, Role: auth.RoleBuyer}, b.Name, cfg)
	}
}

func loginCourierHandler(couriers courier.Repository, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buyer.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		k, err := couriers.GetByEmail(c.Request.Context(), req.Email)
		if err != nil || !auth.CheckPassword(k.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
			return
		}
		if !k.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
			return
		}
		issueToken(c, auth.Actor{ID: k.ID, Role: auth.RoleCourier}, k.Name, cfg)
	}
}

func loginStaffHandler(staffRepo staff.Repository, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buyer.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		s, err := staffRepo.GetByEmail(c.Request.Context(), req.Email)
		if err != nil || !auth.CheckPassword(s.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
			return
		}
		role := auth.Role(s.Role)
		if !role.Valid() {
			c.JSON(http.StatusForbidden, gin.H{"error": "unknown staff role"})
			return
		}
		issueToken(c, auth.Actor{ID: s.ID, Role: role}, s.Username, cfg)
	}
}

func issueToken(c *gin.Context, actor auth.Actor, name string, cfg config.Config) {
	tok, err := auth.IssueToken(actor, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: tok, Role: actor.Role, ID: actor.ID, Name: name})
}
