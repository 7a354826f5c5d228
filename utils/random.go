package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// GenerateTicketNo returns a human-facing ticket number of the form
// TKT<base36 unix millis><random hex>, uppercased. Uniqueness is enforced by
// the collection index; the random suffix keeps same-millisecond collisions
// out of the common path.
func GenerateTicketNo() (string, error) {
	suffix, err := GenerateCode(3)
	if err != nil {
		return "", err
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return strings.ToUpper("TKT" + ts + suffix), nil
}

func GenerateCode(n int) (string, error) {
	// Make a slice of n random bytes.
	byt := make([]byte, n)

	// Read into the slice.
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	// Return the hexadecimal string.
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
