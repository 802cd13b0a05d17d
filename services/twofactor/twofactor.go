// Package twofactor implements TOTP enrollment, backup codes, and
// trusted-device exemptions.
//
// Backup codes use the legacy two-group hex format (XXXX-XXXX, 32 bits); kept
// for compatibility with codes already printed by users.
package twofactor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	userModel "office-portal/models/user"
	"office-portal/services/audit"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrNotEnabled     = errors.New("two-factor authentication is not enabled")
	ErrInvalidCode    = errors.New("invalid verification code")
	ErrWrongPassword  = errors.New("password does not match")
	ErrDeviceNotFound = errors.New("trusted device not found")
)

const (
	backupCodeCount  = 10
	totpPeriod       = 30
	totpSkew         = 1 // accepts the adjacent 30s step either side
	trustedDeviceTTL = 30 * 24 * time.Hour
)

// Service manages per-user two-factor state. Every mutation appends an audit
// record with entity type "2fa".
type Service struct {
	DB     *gorm.DB
	Issuer string
	Audit  *audit.Service
}

// NewService creates a new two-factor service
func NewService(db *gorm.DB, issuer string, auditSvc *audit.Service) *Service {
	if issuer == "" {
		issuer = "office-portal"
	}
	return &Service{DB: db, Issuer: issuer, Audit: auditSvc}
}

// StatusResult reports the caller's current two-factor state.
type StatusResult struct {
	Enabled             bool  `json:"enabled"`
	HasBackupCodes      bool  `json:"has_backup_codes"`
	BackupCodesCount    int   `json:"backup_codes_count"`
	TrustedDevicesCount int64 `json:"trusted_devices_count"`
}

// SetupResult carries the freshly generated secret back to the client. The
// secret is not persisted until Enable succeeds.
type SetupResult struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCodePNG       string `json:"qr_code_png"`
}

// Status reports the enabled flag, backup-code counts, and the number of
// unexpired trusted devices.
func (s *Service) Status(userID uint) (*StatusResult, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	var deviceCount int64
	err = s.DB.Model(&userModel.TrustedDevice{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&deviceCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count trusted devices: %w", err)
	}

	return &StatusResult{
		Enabled:             user.TOTPEnabled,
		HasBackupCodes:      len(user.BackupCodes) > 0,
		BackupCodesCount:    len(user.BackupCodes),
		TrustedDevicesCount: deviceCount,
	}, nil
}

// Setup generates a new shared secret and a scannable provisioning QR code.
// Nothing is persisted; the client echoes the secret back on Enable.
func (s *Service) Setup(userID uint) (*SetupResult, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, ErrAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &SetupResult{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCodePNG:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Enable verifies the first code against the secret from Setup, persists the
// secret, and issues 10 single-use backup codes. The plaintext codes are
// returned exactly once.
func (s *Service) Enable(userID uint, secret, code string) ([]string, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, ErrAlreadyEnabled
	}
	if secret == "" || !s.validateCode(code, secret) {
		return nil, ErrInvalidCode
	}

	plaintext, hashes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	user.TOTPSecret = &secret
	user.TOTPEnabled = true
	user.BackupCodes = hashes
	if err := s.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to enable two-factor authentication: %w", err)
	}

	s.Audit.Append(user.ID, user.Email, "2fa.enable", "2fa", user.ID, map[string]interface{}{
		"backup_codes_issued": backupCodeCount,
	})

	return plaintext, nil
}

// Disable requires the account password and a valid current code, then wipes
// the secret, backup codes, and every trusted device.
func (s *Service) Disable(userID uint, password, code string) error {
	user, err := s.loadUser(userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		return ErrNotEnabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	if !s.validateCode(code, *user.TOTPSecret) {
		return ErrInvalidCode
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"totp_secret":  nil,
			"totp_enabled": false,
			"backup_codes": nil,
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&userModel.TrustedDevice{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to disable two-factor authentication: %w", err)
	}

	s.Audit.Append(user.ID, user.Email, "2fa.disable", "2fa", user.ID, nil)
	return nil
}

// RegenerateBackupCodes replaces the stored hash set after a password check.
// The new plaintext codes are returned exactly once.
func (s *Service) RegenerateBackupCodes(userID uint, password string) ([]string, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if !user.TOTPEnabled {
		return nil, ErrNotEnabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrWrongPassword
	}

	plaintext, hashes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	user.BackupCodes = hashes
	if err := s.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to store backup codes: %w", err)
	}

	s.Audit.Append(user.ID, user.Email, "2fa.regenerate_backup_codes", "2fa", user.ID, nil)
	return plaintext, nil
}

// VerifyCode checks a TOTP code against the user's enabled secret.
func (s *Service) VerifyCode(userID uint, code string) (bool, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return false, err
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		return false, ErrNotEnabled
	}
	return s.validateCode(code, *user.TOTPSecret), nil
}

// VerifyBackupCode consumes a backup code. A matched code is removed from the
// stored hash set in the same update, so each code works exactly once.
func (s *Service) VerifyBackupCode(userID uint, code string) (bool, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return false, err
	}
	if !user.TOTPEnabled {
		return false, ErrNotEnabled
	}

	index := matchBackupCode(user.BackupCodes, code)
	if index < 0 {
		return false, nil
	}

	remaining := make(userModel.StringSlice, 0, len(user.BackupCodes)-1)
	remaining = append(remaining, user.BackupCodes[:index]...)
	remaining = append(remaining, user.BackupCodes[index+1:]...)
	user.BackupCodes = remaining
	if err := s.DB.Save(user).Error; err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}

	s.Audit.Append(user.ID, user.Email, "2fa.backup_code_used", "2fa", user.ID, map[string]interface{}{
		"remaining_codes": len(remaining),
	})
	return true, nil
}

// AdminReset clears the target user's two-factor state and trusted devices.
// No second factor is required from the admin; the action is always audited
// with the target's identity.
func (s *Service) AdminReset(adminID uint, adminEmail string, targetUserID uint) error {
	target, err := s.loadUser(targetUserID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"totp_secret":  nil,
			"totp_enabled": false,
			"backup_codes": nil,
		}
		if err := tx.Model(target).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", target.ID).Delete(&userModel.TrustedDevice{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to reset two-factor authentication: %w", err)
	}

	s.Audit.Append(adminID, adminEmail, "2fa.admin_reset", "2fa", target.ID, map[string]interface{}{
		"target_id":    target.ID,
		"target_email": target.Email,
	})
	return nil
}

func (s *Service) validateCode(code, secret string) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

func (s *Service) loadUser(userID uint) (*userModel.User, error) {
	var user userModel.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// CreateTrustedDevice issues a trusted-device token valid for 30 days.
func (s *Service) CreateTrustedDevice(userID uint, deviceName string) (*userModel.TrustedDevice, error) {
	if deviceName == "" {
		deviceName = "Unknown device"
	}
	device := userModel.TrustedDevice{
		UserID:     userID,
		Token:      uuid.NewString(),
		DeviceName: deviceName,
		ExpiresAt:  time.Now().Add(trustedDeviceTTL),
	}
	if err := s.DB.Create(&device).Error; err != nil {
		return nil, fmt.Errorf("failed to create trusted device: %w", err)
	}

	var user userModel.User
	if err := s.DB.First(&user, userID).Error; err == nil {
		s.Audit.Append(user.ID, user.Email, "2fa.trust_device", "2fa", user.ID, map[string]interface{}{
			"device_name": deviceName,
		})
	}
	return &device, nil
}

// VerifyTrustedDevice reports whether token is an unexpired trusted-device
// token for the user.
func (s *Service) VerifyTrustedDevice(userID uint, token string) bool {
	if token == "" {
		return false
	}
	var count int64
	err := s.DB.Model(&userModel.TrustedDevice{}).
		Where("user_id = ? AND token = ? AND expires_at > ?", userID, token, time.Now()).
		Count(&count).Error
	return err == nil && count > 0
}

// ListTrustedDevices returns the caller's own devices, newest first.
func (s *Service) ListTrustedDevices(userID uint) ([]userModel.TrustedDevice, error) {
	var devices []userModel.TrustedDevice
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted devices: %w", err)
	}
	return devices, nil
}

// DeleteTrustedDevice removes one of the caller's own devices.
func (s *Service) DeleteTrustedDevice(userID, deviceID uint) error {
	result := s.DB.Where("id = ? AND user_id = ?", deviceID, userID).Delete(&userModel.TrustedDevice{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete trusted device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}
