package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "version", Run: runVersion}
	cmd.Flags().BoolP("short", "s", false, "")
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Media Tagger API")
	assert.Contains(t, out.String(), "v"+Version)
}

func TestVersionCommandShort(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "version", Run: runVersion}
	cmd.Flags().BoolP("short", "s", false, "")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "v"+Version+"\n", out.String())
}
