package pickup

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const codeLength = 6

// generateCode returns a fixed-length numeric one-time code from
// crypto/rand.
func generateCode() (string, error) {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String(), nil
}

// maskPhone hides all but the last three digits, so responses never echo the
// guardian's full number back to whoever is standing at the desk.
func maskPhone(phone string) string {
	if len(phone) <= 3 {
		return phone
	}
	return strings.Repeat("*", len(phone)-3) + phone[len(phone)-3:]
}
