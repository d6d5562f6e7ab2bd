package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// StringPtr returns a pointer to the given string value.
// This is useful for building tri-state lock and prune reasons.
func StringPtr(s string) *string {
	return &s
}

// Chdir switches the working directory for the rest of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}
