package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOTP generates a 6-digit OTP in [100000, 999999]
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("utils: reading random OTP: %v", err))
	}
	return fmt.Sprintf("%d", 100000+n.Int64())
}

// GenerateProfileID returns the registration year followed by 8 uppercase base-36 characters
func GenerateProfileID(now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d", now.Year()))
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("utils: reading random profile id: %v", err))
		}
		b.WriteByte(base36[n.Int64()])
	}
	return b.String()
}

// Pagination turns page/limit query values into an offset, with sane defaults
func Pagination(page, limit int) (offset, safePage, safeLimit int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return (page - 1) * limit, page, limit
}
