package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
	"github.com/arnold/smartgoals-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// createAccount stores the user with default settings in one transaction.
func createAccount(user *models.User) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(user.ID)
		return tx.Create(&settings).Error
	})
}

func welcome(c *fiber.Ctx, user *models.User) {
	locale := acceptLocale(c)
	if _, err := services.Notify(c.UserContext(), user.ID, models.NotificationWelcome,
		i18n.T(locale, i18n.WelcomeTitle), i18n.T(locale, i18n.WelcomeBody), nil); err != nil {
		logger.L().Warn("welcome notification failed", "user_id", user.ID, "error", err)
	}
}

func Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user exists
	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fail(c, fiber.StatusConflict, CodeConflict, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, "Failed to hash password", err)
	}

	user := models.User{
		Email:        req.Email,
		Password:     string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AuthProvider: models.AuthProviderEmail,
	}
	if err := createAccount(&user); err != nil {
		return internalError(c, "Failed to create user", err)
	}
	welcome(c, &user)

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		return internalError(c, "Failed to generate token", err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "Registration successful",
	})
}

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
	}
	if user.Password == "" {
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "This account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		return internalError(c, "Failed to generate token", err)
	}

	return c.JSON(models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// Logout is stateless: the client drops its token.
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return notFound(c, "User not found")
	}
	return c.JSON(user)
}

// googleTokenInfo represents the response from Google's tokeninfo endpoint
type googleTokenInfo struct {
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Sub           string `json:"sub"`
}

// verifyGoogleIDToken is replaced in tests.
var verifyGoogleIDToken = googleTokenInfoLookup

func GoogleLogin(c *fiber.Ctx) error {
	var req models.GoogleAuthRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tokenInfo, err := verifyGoogleIDToken(c.UserContext(), req.IDToken)
	if err != nil {
		logger.L().Info("Google token verification failed", "error", err)
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid Google token")
	}

	// The token's aud is the client ID of the platform the user signed in from.
	if allowed := cfg.AllowedGoogleClientIDs(); len(allowed) > 0 && !slices.Contains(allowed, tokenInfo.Aud) {
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Token not intended for this app")
	}
	if tokenInfo.Email == "" || tokenInfo.EmailVerified != "true" {
		return badRequest(c, "Verified email not available from Google account")
	}

	email := strings.ToLower(tokenInfo.Email)
	var user models.User
	err = database.DB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:        email,
			FirstName:    tokenInfo.GivenName,
			LastName:     tokenInfo.FamilyName,
			AuthProvider: models.AuthProviderGoogle,
		}
		if err := createAccount(&user); err != nil {
			return internalError(c, "Failed to create user", err)
		}
		welcome(c, &user)
	case err != nil:
		return internalError(c, "Failed to load user", err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		return internalError(c, "Failed to generate token", err)
	}

	return c.JSON(models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

var googleHTTP = &http.Client{Timeout: 10 * time.Second}

// googleTokenInfoLookup verifies a Google ID token using Google's tokeninfo endpoint
func googleTokenInfoLookup(ctx context.Context, idToken string) (*googleTokenInfo, error) {
	endpoint := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := googleHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}
	return &info, nil
}
