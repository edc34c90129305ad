package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var codeMu sync.Mutex
var codeRand *rand.Rand

func init() {
	codeRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randBase36(n int) string {
	codeMu.Lock()
	defer codeMu.Unlock()
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(base36[codeRand.Intn(len(base36))])
	}
	return b.String()
}

func idPrefix(residentID string) string {
	p := residentID
	if len(p) > 4 {
		p = p[:4]
	}
	return strings.ToUpper(p)
}

// GenerateVoucherCode builds a voucher receipt code,
// e.g. VOUCH-1739184000123-JOHN-8F3K2A.
func GenerateVoucherCode(residentID string) string {
	return fmt.Sprintf("VOUCH-%d-%s-%s", time.Now().UnixMilli(), idPrefix(residentID), randBase36(6))
}

// GenerateBonusCode builds a weekly-bonus voucher code,
// e.g. BONUS-2025-02-10-JOHN-8F3K2A.
func GenerateBonusCode(residentID, weekKey string) string {
	return fmt.Sprintf("BONUS-%s-%s-%s", weekKey, idPrefix(residentID), randBase36(6))
}
