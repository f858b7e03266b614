package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainExitsWhenConfigurationIsMissing(t *testing.T) {
	if os.Getenv("PDEZZY_RUN_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainExitsWhenConfigurationIsMissing$")
	env := []string{"PDEZZY_RUN_MAIN=1"}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "ACCESS_TOKEN_SECRET=") || strings.HasPrefix(kv, "REFRESH_TOKEN_SECRET=") {
			continue
		}
		env = append(env, kv)
	}
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "main should exit non-zero, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), `"level":"fatal"`)
	assert.Contains(t, string(out), "failed to load configuration")
}
