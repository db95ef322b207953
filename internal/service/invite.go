package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var inviteCodePattern = regexp.MustCompile(`^JOIN-[A-Z0-9]{6}$`)

// GenerateInviteCode produces a fresh JOIN-XXXXXX code.
func GenerateInviteCode() (string, error) {
	var b strings.Builder
	b.WriteString("JOIN-")
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInviteCode uppercases the input and strips all whitespace.
func NormalizeInviteCode(text string) string {
	code := strings.ToUpper(strings.TrimSpace(text))
	return strings.ReplaceAll(code, " ", "")
}

// ValidInviteCode reports whether a normalized code has the
// JOIN- + 6 alphanumerics shape.
func ValidInviteCode(code string) bool {
	return inviteCodePattern.MatchString(code)
}
