package twofactor

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	userModel "office-portal/models/user"
)

// generateBackupCodes returns count plaintext codes in XXXX-XXXX hex form and
// the matching hash set to store.
func generateBackupCodes(count int) ([]string, userModel.StringSlice, error) {
	plaintext := make([]string, 0, count)
	hashes := make(userModel.StringSlice, 0, count)
	for i := 0; i < count; i++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return nil, nil, err
		}
		code := fmt.Sprintf("%02X%02X-%02X%02X", buf[0], buf[1], buf[2], buf[3])
		plaintext = append(plaintext, code)
		hashes = append(hashes, hashBackupCode(code))
	}
	return plaintext, hashes, nil
}

// normalizeBackupCode strips hyphens and whitespace and uppercases, so
// "ab12cd34" and "AB12-CD34" verify as the same code.
func normalizeBackupCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeBackupCode(code)))
	return hex.EncodeToString(sum[:])
}

// matchBackupCode returns the index of the stored hash matching code, or -1.
// Comparison is constant-time per entry.
func matchBackupCode(hashes []string, code string) int {
	candidate := []byte(hashBackupCode(code))
	for i, stored := range hashes {
		if subtle.ConstantTimeCompare(candidate, []byte(stored)) == 1 {
			return i
		}
	}
	return -1
}
