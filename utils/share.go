package utils

import (
	"math/rand"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

const shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenShareCode generates a fixed-length alphanumeric share code.
func GenShareCode(length int) string {
	rngMu.Lock()
	defer rngMu.Unlock()
	code := make([]byte, length)
	for i := range code {
		code[i] = shareCodeAlphabet[rng.Intn(len(shareCodeAlphabet))]
	}
	return string(code)
}
