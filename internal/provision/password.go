package provision

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet for generated temporary passwords. Ambiguous characters (0/O, 1/l)
// are left out because these credentials get read to people over a desk.
const passwordAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const tempPasswordLength = 12

// GenerateTempPassword returns a random temporary credential.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
