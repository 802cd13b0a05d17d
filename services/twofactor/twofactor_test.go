package twofactor

import (
	"strings"
	"testing"
	"time"

	"office-portal/logger"
	auditModel "office-portal/models/audit"
	userModel "office-portal/models/user"
	auditService "office-portal/services/audit"

	"github.com/glebarez/sqlite"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "correct horse battery"

func setupService(t *testing.T) (*Service, *gorm.DB, *userModel.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.User{},
		&userModel.TrustedDevice{},
		&auditModel.AuditLog{},
	))

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := userModel.User{
		Email:        "rahim@example.com",
		PasswordHash: string(hash),
		Name:         "Rahim",
		Role:         "staff",
		Active:       true,
	}
	require.NoError(t, db.Create(&user).Error)

	svc := NewService(db, "office-portal-test", auditService.NewService(db, logger.NewAsyncLogger(db)))
	return svc, db, &user
}

// enroll completes Setup + Enable with a freshly generated valid code and
// returns the secret and the plaintext backup codes.
func enroll(t *testing.T, svc *Service, userID uint) (string, []string) {
	t.Helper()
	setup, err := svc.Setup(userID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now().UTC())
	require.NoError(t, err)

	backupCodes, err := svc.Enable(userID, setup.Secret, code)
	require.NoError(t, err)
	return setup.Secret, backupCodes
}

func TestSetupDoesNotPersistSecret(t *testing.T) {
	svc, db, user := setupService(t)

	setup, err := svc.Setup(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.True(t, strings.HasPrefix(setup.QRCodePNG, "data:image/png;base64,"))

	var reloaded userModel.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Nil(t, reloaded.TOTPSecret)
	assert.False(t, reloaded.TOTPEnabled)
}

func TestEnableRejectsWrongCode(t *testing.T) {
	svc, _, user := setupService(t)

	setup, err := svc.Setup(user.ID)
	require.NoError(t, err)

	_, err = svc.Enable(user.ID, setup.Secret, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestEnrollmentRoundTrip(t *testing.T) {
	svc, db, user := setupService(t)

	secret, backupCodes := enroll(t, svc, user.ID)
	assert.Len(t, backupCodes, 10)
	for _, code := range backupCodes {
		assert.Regexp(t, `^[0-9A-F]{4}-[0-9A-F]{4}$`, code)
	}

	var reloaded userModel.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.TOTPEnabled)
	require.NotNil(t, reloaded.TOTPSecret)
	assert.Equal(t, secret, *reloaded.TOTPSecret)
	// Stored values are hashes, never the plaintext codes.
	for _, stored := range reloaded.BackupCodes {
		assert.NotContains(t, backupCodes, stored)
	}

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)
	ok, err := svc.VerifyCode(user.ID, code)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Setup(user.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnabled)
}

func TestVerifyCodeAcceptsAdjacentSteps(t *testing.T) {
	svc, _, user := setupService(t)
	secret, _ := enroll(t, svc, user.ID)

	// One 30-second step of clock drift either way still verifies.
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := totp.GenerateCode(secret, time.Now().UTC().Add(offset))
		require.NoError(t, err)
		ok, err := svc.VerifyCode(user.ID, code)
		require.NoError(t, err)
		assert.True(t, ok, "offset %v", offset)
	}

	// Two steps out is rejected.
	code, err := totp.GenerateCode(secret, time.Now().UTC().Add(-90*time.Second))
	require.NoError(t, err)
	ok, err := svc.VerifyCode(user.ID, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackupCodeNormalization(t *testing.T) {
	svc, _, user := setupService(t)
	_, backupCodes := enroll(t, svc, user.ID)

	// Lowercase, no hyphen, padded with whitespace: still the same code.
	raw := backupCodes[0]
	mangled := "  " + strings.ToLower(strings.ReplaceAll(raw, "-", "")) + " "
	ok, err := svc.VerifyBackupCode(user.ID, mangled)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBackupCodeIsSingleUse(t *testing.T) {
	svc, db, user := setupService(t)
	_, backupCodes := enroll(t, svc, user.ID)

	ok, err := svc.VerifyBackupCode(user.ID, backupCodes[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyBackupCode(user.ID, backupCodes[0])
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code must not verify again")

	var reloaded userModel.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Len(t, []string(reloaded.BackupCodes), 9)

	// The other codes still work.
	ok, err = svc.VerifyBackupCode(user.ID, backupCodes[1])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegenerateInvalidatesOldCodes(t *testing.T) {
	svc, _, user := setupService(t)
	_, oldCodes := enroll(t, svc, user.ID)

	_, err := svc.RegenerateBackupCodes(user.ID, "wrong password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	newCodes, err := svc.RegenerateBackupCodes(user.ID, testPassword)
	require.NoError(t, err)
	assert.Len(t, newCodes, 10)

	ok, err := svc.VerifyBackupCode(user.ID, oldCodes[0])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyBackupCode(user.ID, newCodes[0])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisableWipesEverything(t *testing.T) {
	svc, db, user := setupService(t)
	secret, _ := enroll(t, svc, user.ID)

	_, err := svc.CreateTrustedDevice(user.ID, "Work laptop")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Disable(user.ID, "wrong password", code), ErrWrongPassword)
	require.ErrorIs(t, svc.Disable(user.ID, testPassword, "000000"), ErrInvalidCode)
	require.NoError(t, svc.Disable(user.ID, testPassword, code))

	var reloaded userModel.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.TOTPEnabled)
	assert.Nil(t, reloaded.TOTPSecret)
	assert.Empty(t, reloaded.BackupCodes)

	var deviceCount int64
	require.NoError(t, db.Model(&userModel.TrustedDevice{}).Count(&deviceCount).Error)
	assert.Zero(t, deviceCount)
}

func TestTrustedDeviceLifecycle(t *testing.T) {
	svc, db, user := setupService(t)
	enroll(t, svc, user.ID)

	device, err := svc.CreateTrustedDevice(user.ID, "Work laptop")
	require.NoError(t, err)
	assert.NotEmpty(t, device.Token)

	assert.True(t, svc.VerifyTrustedDevice(user.ID, device.Token))
	assert.False(t, svc.VerifyTrustedDevice(user.ID, "not-a-token"))
	assert.False(t, svc.VerifyTrustedDevice(user.ID+1, device.Token))
	assert.False(t, svc.VerifyTrustedDevice(user.ID, ""))

	// An expired token stops verifying.
	require.NoError(t, db.Model(device).Update("expires_at", time.Now().Add(-time.Hour)).Error)
	assert.False(t, svc.VerifyTrustedDevice(user.ID, device.Token))

	devices, err := svc.ListTrustedDevices(user.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)

	require.NoError(t, svc.DeleteTrustedDevice(user.ID, device.ID))
	assert.ErrorIs(t, svc.DeleteTrustedDevice(user.ID, device.ID), ErrDeviceNotFound)
}

func TestAdminReset(t *testing.T) {
	svc, db, user := setupService(t)
	enroll(t, svc, user.ID)
	_, err := svc.CreateTrustedDevice(user.ID, "Work laptop")
	require.NoError(t, err)

	require.NoError(t, svc.AdminReset(99, "admin@example.com", user.ID))

	var reloaded userModel.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.TOTPEnabled)
	assert.Nil(t, reloaded.TOTPSecret)

	var deviceCount int64
	require.NoError(t, db.Model(&userModel.TrustedDevice{}).Count(&deviceCount).Error)
	assert.Zero(t, deviceCount)

	assert.ErrorIs(t, svc.AdminReset(99, "admin@example.com", 12345), ErrUserNotFound)
}

func TestNormalizeBackupCode(t *testing.T) {
	assert.Equal(t, "AB12CD34", normalizeBackupCode("ab12-cd34"))
	assert.Equal(t, "AB12CD34", normalizeBackupCode("  AB12CD34  "))
	assert.Equal(t, "AB12CD34", normalizeBackupCode("Ab12-Cd34"))
}

func TestMatchBackupCodeMissing(t *testing.T) {
	hashes := []string{hashBackupCode("AB12-CD34")}
	assert.Equal(t, 0, matchBackupCode(hashes, "ab12cd34"))
	assert.Equal(t, -1, matchBackupCode(hashes, "FFFF-FFFF"))
	assert.Equal(t, -1, matchBackupCode(nil, "AB12-CD34"))
}
