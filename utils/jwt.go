package utils

import (
	"errors"
	"strings"
	"time"

	"stockroom-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSecret = "stockroom-secret-key-change-in-production"

	// LocalsProfile holds the authenticated *models.Profile
	LocalsProfile = "profile"
)

var (
	jwtSecret = []byte(defaultSecret)
	jwtTTL    = 24 * time.Hour
)

// Claims is the payload of a session token
type Claims struct {
	ProfileID string `json:"profile_id"`
	StoreID   string `json:"store_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// InitJWT sets the signing secret and token lifetime
func InitJWT(secret string, ttl time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		jwtTTL = ttl
	}
}

// GenerateJWT issues a token for the profile
func GenerateJWT(profile *models.Profile) (string, error) {
	now := time.Now()
	claims := &Claims{
		ProfileID: profile.ID,
		StoreID:   profile.StoreID,
		Role:      string(profile.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT parses and verifies a token
func ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	}, jwt.WithLeeway(time.Minute))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.ProfileID != "" {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}

// LoadProfile resolves a token to the current profile. A profile moved to another
// store since the token was issued is rejected.
func LoadProfile(db *gorm.DB, tokenString string) (*models.Profile, error) {
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}

	// re-read so role and name changes apply immediately
	var profile models.Profile
	if err := db.First(&profile, "id = ?", claims.ProfileID).Error; err != nil {
		return nil, err
	}
	// a profile moved to another store invalidates old tokens
	if profile.StoreID != claims.StoreID {
		return nil, errors.New("token store mismatch")
	}
	return &profile, nil
}

// AuthMiddleware checks the bearer token and stores the freshly loaded profile in Locals
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// read the bearer token
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// expect "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		profile, err := LoadProfile(db.WithContext(c.UserContext()), tokenParts[1])
		if err != nil {
			Logger(c).Debug("rejected token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		// profile and an enriched logger for the handlers
		c.Locals(LocalsProfile, profile)
		c.Locals(LocalsLogger, Logger(c).With(
			zap.String("profile_id", profile.ID),
			zap.String("store_id", profile.StoreID)))

		return c.Next()
	}
}

// CurrentProfile returns the profile stored by AuthMiddleware
func CurrentProfile(c *fiber.Ctx) (*models.Profile, bool) {
	profile, ok := c.Locals(LocalsProfile).(*models.Profile)
	return profile, ok && profile != nil
}

// RequireOwner stops staff at the router, before any handler runs
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := CurrentProfile(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !profile.IsOwner() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}
