package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-08-30", "abc1234")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "sqlgate 1.2.3")
	assert.Contains(t, output, "2026-08-30")
	assert.Contains(t, output, "abc1234")
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("dev", "unknown", "unknown")
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
}
