package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/vrjatclg/Time2Eat/internal/middleware"
	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type issuedTokens struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID primitive.ObjectID
	ExpiresIn      int64
}

type staffResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func AdminLogin(st *store.Store, tokens TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			respondWithError(c, http.StatusBadRequest, route, "email and password are required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		staff, err := st.Staff.GetByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Error().Str("component", "auth").Err(err).Msg("staff lookup failed")
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if staff.Role != models.RoleAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if !staff.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
			return
		}

		issued, err := issueTokens(ctx, st.RefreshTokens, staff, tokens)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		log.Info().Str("component", "auth").Str("email", staff.Email).Msg("staff signed in")
		c.JSON(http.StatusOK, gin.H{
			"token":        issued.AccessToken,
			"accessToken":  issued.AccessToken,
			"refreshToken": issued.RefreshToken,
			"expiresIn":    issued.ExpiresIn,
			"staff":        staffResponse{ID: staff.ID.Hex(), Email: staff.Email, Name: staff.Name},
		})
	}
}

func Refresh(st *store.Store, tokens TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/refresh"
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		plain := strings.TrimSpace(req.RefreshToken)
		if plain == "" {
			respondWithError(c, http.StatusBadRequest, route, "refreshToken is required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		token, err := st.RefreshTokens.FindActive(ctx, hashToken(plain))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		if time.Now().After(token.ExpiresAt) {
			_ = st.RefreshTokens.Revoke(ctx, token.ID, nil)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
			return
		}

		staff, err := st.Staff.GetByID(ctx, token.StaffID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "staff account not found"})
			return
		}
		if !staff.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
			return
		}

		issued, err := issueTokens(ctx, st.RefreshTokens, staff, tokens)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}
		if err := st.RefreshTokens.Revoke(ctx, token.ID, &issued.RefreshTokenID); err != nil {
			log.Warn().Str("component", "auth").Err(err).Msg("old refresh token not revoked")
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  issued.AccessToken,
			"refreshToken": issued.RefreshToken,
			"expiresIn":    issued.ExpiresIn,
			"staff":        staffResponse{ID: staff.ID.Hex(), Email: staff.Email, Name: staff.Name},
		})
	}
}

func Logout(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/logout"
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		revoked, err := st.RefreshTokens.RevokeByHash(ctx, hashToken(strings.TrimSpace(req.RefreshToken)))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func issueTokens(ctx context.Context, refreshTokens store.RefreshTokens, staff models.StaffAccount, cfg TokenConfig) (*issuedTokens, error) {
	now := time.Now()
	claims := middleware.StaffClaims{
		Role:  staff.Role,
		Email: staff.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return nil, err
	}

	plainRefresh, err := generateRefreshString()
	if err != nil {
		return nil, err
	}
	refreshID, err := refreshTokens.Insert(ctx, models.RefreshToken{
		StaffID:   staff.ID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: now.Add(cfg.RefreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &issuedTokens{
		AccessToken:    accessToken,
		RefreshToken:   plainRefresh,
		RefreshTokenID: refreshID,
		ExpiresIn:      int64(cfg.AccessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// EnsureStaffAccount creates the bootstrap admin when no account with that
// email exists yet. Existing accounts keep their password.
func EnsureStaffAccount(ctx context.Context, staff store.Staff, email, password string, now time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("staff email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return staff.Ensure(ctx, models.StaffAccount{
		Email:        email,
		Name:         "Canteen admin",
		PasswordHash: string(hash),
		IsActive:     true,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
