package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListsCatalog(t *testing.T) {
	var out bytes.Buffer
	rulesCmd.SetOut(&out)
	t.Cleanup(func() { rulesCmd.SetOut(nil) })

	require.NoError(t, rulesCmd.RunE(rulesCmd, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Greater(t, len(lines), 2)
	assert.Contains(t, lines[0], "Missed")
	assert.Contains(t, out.String(), "yes")
}
