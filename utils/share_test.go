package utils

import (
	"strings"
	"testing"
)

func TestGenShareCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenShareCode(8)
		if len(code) != 8 {
			t.Fatalf("code length = %d, want 8", len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(shareCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 62^8 space should not collide
	if len(seen) < 99 {
		t.Fatalf("unexpected collisions: %d distinct codes out of 100", len(seen))
	}
}

func TestGenShareCodeConcurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				GenShareCode(8)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
