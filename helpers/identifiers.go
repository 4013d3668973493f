package helpers

import (
	"crypto/rand"
	"math/big"
)

const lowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandStrNoCaps will generate a random lowercase alphanumeric string of the specified length.
func RandStrNoCaps(strSize int) string {
	return StringWithCharset(strSize, lowerAlphanumeric)
}

// StringWithCharset returns a random string of length characters drawn from charset.
func StringWithCharset(length int, charset string) string {
	b := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range b {
		idx, _ := rand.Int(rand.Reader, charsetLen)
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}

// SnapshotIdentifier builds a snapshot name for an instance when the caller
// did not supply one. RDS identifiers allow letters, digits and single hyphens.
func SnapshotIdentifier(instanceIdentifier string) string {
	return instanceIdentifier + "-snapshot-" + RandStrNoCaps(10)
}
