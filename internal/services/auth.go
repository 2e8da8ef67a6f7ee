package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/utils"
	"github.com/luneclub/lune/backend/pkg/logger"
	"github.com/luneclub/lune/backend/pkg/response"
)

type AuthService struct {
	db          *gorm.DB
	ldapService *LDAPService
	jwtConfig   *config.JWTConfig
	configSvc   *SystemConfigService
	uploads     *UploadService
	queue       TaskQueue
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, ldapCfg *config.LDAPConfig, uploads *UploadService, queue TaskQueue) *AuthService {
	return &AuthService{
		db:          db,
		ldapService: NewLDAPService(ldapCfg),
		jwtConfig:   jwtCfg,
		configSvc:   NewSystemConfigService(db),
		uploads:     uploads,
		queue:       queue,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type" binding:"omitempty,oneof=local ldap"`
}

type LoginResult struct {
	AccessToken     string       `json:"token"`
	AccessExpireAt  time.Time    `json:"expire_at"`
	RefreshToken    string       `json:"refresh_token"`
	RefreshExpireAt time.Time    `json:"refresh_expire_at"`
	User            *models.User `json:"user"`
}

var errBadCredentials = response.NewUnauthorized("invalid email or password")

// Login authenticates and issues an access token plus a rotating refresh
// token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user *models.User
	var err error

	switch req.AuthType {
	case "", models.AuthTypeLocal:
		user, err = s.localAuth(ctx, normalizeEmail(req.Email), req.Password)
	case models.AuthTypeLDAP:
		user, err = s.ldapAuth(ctx, strings.TrimSpace(req.Email), req.Password)
	default:
		return nil, response.NewValidation("invalid auth type")
	}
	if err != nil {
		LogWarning("auth", "login_failed", req.Email, nil, clientIP, userAgent, nil)
		return nil, err
	}

	result, err := s.issueTokens(s.db.WithContext(ctx), user, clientIP, userAgent)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	user.LastLogin = &now
	s.db.WithContext(ctx).Model(user).Update("last_login", now)

	LogInfo("auth", "login", user.Email, &user.ID, clientIP, userAgent, map[string]string{"role": string(user.Role)})
	result.User = user
	return result, nil
}

// issueTokens signs an access token and stores a new refresh token through db.
func (s *AuthService) issueTokens(db *gorm.DB, user *models.User, clientIP, userAgent string) (*LoginResult, error) {
	accessHours := s.configSvc.GetInt(models.ConfigAccessTokenHours, s.jwtConfig.ExpireHour)
	refreshDays := s.configSvc.GetInt(models.ConfigRefreshTokenDays, 14)

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role), accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := timeNow()
	record := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   now.AddDate(0, 0, refreshDays),
		CreatedByIP: clientIP,
		UserAgent:   truncate(userAgent, 255),
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: record.ExpiresAt,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is
// revoked and linked to its replacement in the same transaction.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, response.NewValidation("refresh_token is required")
	}

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hashRefreshToken(refreshToken)).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !stored.Usable(timeNow()) {
		return nil, response.NewUnauthorized("refresh token expired or revoked")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}

	var result *LoginResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.issueTokens(tx, &user, clientIP, userAgent)
		if err != nil {
			return err
		}
		var replacement models.RefreshToken
		if err := tx.Where("token_hash = ?", hashRefreshToken(result.RefreshToken)).First(&replacement).Error; err != nil {
			return err
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", stored.ID).
			Updates(map[string]interface{}{
				"revoked_at":           timeNow(),
				"replaced_by_token_id": replacement.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewUnauthorized("refresh token already used")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.User = &user
	return result, nil
}

// RevokeRefreshToken implements logout. Unknown tokens are ignored.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashRefreshToken(refreshToken)).
		Update("revoked_at", timeNow()).Error
}

// PurgeExpiredRefreshTokens drops tokens that can no longer be used.
func (s *AuthService) PurgeExpiredRefreshTokens() (int64, error) {
	cutoff := timeNow()
	res := s.db.Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff.AddDate(0, 0, -1)).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	return token, hashRefreshToken(token), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) localAuth(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ? AND auth_type = ?", email, models.AuthTypeLocal).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}
	return &user, nil
}

// ldapAuth signs staff in through the directory, provisioning an ADMIN
// account on first login.
func (s *AuthService) ldapAuth(ctx context.Context, login, password string) (*models.User, error) {
	if !s.ldapService.IsEnabled() {
		return nil, response.NewValidation("LDAP login is not enabled")
	}
	ldapUser, err := s.ldapService.Authenticate(login, password)
	if err != nil {
		if errors.Is(err, errLDAPCredentials) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	email := normalizeEmail(ldapUser.Email)
	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := timeNow()
		user = models.User{
			Email:              email,
			Nickname:           ldapUser.Nickname,
			Role:               models.RoleAdmin,
			AuthType:           models.AuthTypeLDAP,
			VerificationStatus: models.VerificationApproved,
			VerifiedAt:         &now,
			IsActive:           true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		logger.Info().Str("email", email).Msg("provisioned admin from LDAP")
	case err != nil:
		return nil, err
	case user.AuthType != models.AuthTypeLDAP || user.Role != models.RoleAdmin:
		// a local account with the same email must not be taken over
		return nil, errBadCredentials
	}

	if !user.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}
	if ldapUser.Nickname != "" && ldapUser.Nickname != user.Nickname {
		s.db.WithContext(ctx).Model(&user).Update("nickname", ldapUser.Nickname)
	}
	return &user, nil
}

// GetUserByID returns the user with its profile attached.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.Photos", orderByDisplay).
		Preload("Cast").
		Preload("Cast.Photos", orderByDisplay).
		First(&user, id).Error
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

// CreateAdminIfNotExists seeds the first administrator.
func (s *AuthService) CreateAdminIfNotExists(email, password string) error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	now := timeNow()
	admin := models.User{
		Email:              normalizeEmail(email),
		Password:           hashedPassword,
		Nickname:           "Administrator",
		Role:               models.RoleAdmin,
		AuthType:           models.AuthTypeLocal,
		VerificationStatus: models.VerificationApproved,
		VerifiedAt:         &now,
		IsActive:           true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info().Str("email", admin.Email).Msg("default admin created")
	return nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return notFoundOr(err, "user not found")
	}

	if user.AuthType != models.AuthTypeLocal {
		return response.NewValidation("directory accounts cannot change password here")
	}
	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewValidation("incorrect old password")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("password", hashedPassword).Error
}

// --- Registration ---

// FileUpload is one multipart part handed over by the HTTP layer.
type FileUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type RegisterMemberRequest struct {
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required,min=6"`
	Nickname   string `form:"nickname" binding:"required,max=100"`
	Age        *int   `form:"age" binding:"omitempty,min=18,max=120"`
	Location   string `form:"location" binding:"max=100"`
	Occupation string `form:"occupation" binding:"max=100"`
	Locale     string `form:"locale" binding:"omitempty,oneof=en ja"`
}

type RegisterCastRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname" binding:"required,max=100"`
	Age      int    `json:"age" binding:"required,min=18,max=99"`
	Location string `json:"location" binding:"required,max=100"`
	Locale   string `json:"locale" binding:"omitempty,oneof=en ja"`
}

func (s *AuthService) checkRegistrationOpen() error {
	if !s.configSvc.GetBool(models.ConfigRegistrationOpen, true) {
		return response.NewForbidden("registration is closed")
	}
	return nil
}

func (s *AuthService) ensureEmailFree(tx *gorm.DB, email string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return response.NewConflict("email is already registered")
	}
	return nil
}

// RegisterMember creates a MEMBER identity awaiting verification, storing
// the optional ID document and income proof first.
func (s *AuthService) RegisterMember(ctx context.Context, req *RegisterMemberRequest, idDocument, incomeProof *FileUpload) (*models.User, error) {
	if err := s.checkRegistrationOpen(); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(s.db.WithContext(ctx), email); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var storedKeys []string
	store := func(f *FileUpload, kind string) (string, error) {
		if f == nil {
			return "", nil
		}
		saved, err := s.uploads.Save(ctx, "members/registration/"+kind, f.Filename, f.Size, f.Reader, KindDocument)
		if err != nil {
			return "", err
		}
		storedKeys = append(storedKeys, saved.Key)
		return saved.URL, nil
	}
	idURL, err := store(idDocument, "id")
	if err != nil {
		s.purge(storedKeys, "registration failed")
		return nil, err
	}
	incomeURL, err := store(incomeProof, "income")
	if err != nil {
		s.purge(storedKeys, "registration failed")
		return nil, err
	}

	user := models.User{
		Email:              email,
		Password:           hashedPassword,
		Nickname:           strings.TrimSpace(req.Nickname),
		Role:               models.RoleMember,
		AuthType:           models.AuthTypeLocal,
		VerificationStatus: models.VerificationPending,
		Locale:             localeOrDefault(req.Locale),
		IsActive:           true,
		Member: &models.Member{
			Tier:           models.TierStandard,
			IsActive:       true,
			Age:            req.Age,
			Location:       strings.TrimSpace(req.Location),
			Occupation:     strings.TrimSpace(req.Occupation),
			Languages:      datatypes.NewJSONSlice([]string{}),
			Interests:      datatypes.NewJSONSlice([]string{}),
			Hobbies:        datatypes.NewJSONSlice([]string{}),
			IncomeCurrency: "USD",
			IDDocumentURL:  idURL,
			IncomeProofURL: incomeURL,
		},
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.purge(storedKeys, "registration failed")
		if isDuplicateKey(err) {
			return nil, response.NewConflict("email is already registered")
		}
		return nil, err
	}

	LogInfo("auth", "register_member", user.Email, &user.ID, "", "", nil)
	return &user, nil
}

// RegisterCast creates a CAST identity with an inactive STANDARD profile.
// Admin approval activates it.
func (s *AuthService) RegisterCast(ctx context.Context, req *RegisterCastRequest) (*models.User, error) {
	if err := s.checkRegistrationOpen(); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(s.db.WithContext(ctx), email); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:              email,
		Password:           hashedPassword,
		Nickname:           strings.TrimSpace(req.Nickname),
		Role:               models.RoleCast,
		AuthType:           models.AuthTypeLocal,
		VerificationStatus: models.VerificationPending,
		Locale:             localeOrDefault(req.Locale),
		IsActive:           true,
		Cast: &models.Cast{
			TierClassification: models.CastTierStandard,
			IsActive:           false,
			Age:                req.Age,
			Location:           strings.TrimSpace(req.Location),
			Languages:          datatypes.NewJSONSlice([]string{"en"}),
			Interests:          datatypes.NewJSONSlice([]string{}),
			Hobbies:            datatypes.NewJSONSlice([]string{}),
			HolidayStyle:       datatypes.NewJSONSlice([]string{}),
		},
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, response.NewConflict("email is already registered")
		}
		return nil, err
	}

	LogInfo("auth", "register_cast", user.Email, &user.ID, "", "", nil)
	return &user, nil
}

func (s *AuthService) purge(keys []string, reason string) {
	if len(keys) == 0 || s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(&BlobPurgeTask{Keys: keys, Reason: reason}); err != nil {
		logger.Error().Err(err).Strs("keys", keys).Msg("failed to enqueue blob purge")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "en"
	}
	return locale
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
