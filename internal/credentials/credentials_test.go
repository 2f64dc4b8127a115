package credentials

import (
	"strings"
	"testing"
)

func TestGenerateInitialPassword(t *testing.T) {
	seen := make(map[string]bool)
	duplicates := 0
	for i := 0; i < 50; i++ {
		password, err := GenerateInitialPassword()
		if err != nil {
			t.Fatalf("GenerateInitialPassword() error = %v", err)
		}
		if len(password) < 8 {
			t.Errorf("password %q shorter than 8 characters", password)
		}
		if parts := strings.Split(password, "-"); len(parts) != 3 || len(parts[2]) != 4 {
			t.Errorf("password %q not in adjective-noun-digits form", password)
		}
		if seen[password] {
			duplicates++
		}
		seen[password] = true
	}
	if duplicates > 1 {
		t.Errorf("too many duplicate passwords: %d", duplicates)
	}
}
