package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["link"], "expected subcommand %q not found", "link")
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ibeslink", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestLinkCommand_Flags(t *testing.T) {
	out := linkCmd.Flags().Lookup("output")
	require.NotNil(t, out, "link command should have --output flag")
	assert.Equal(t, "o", out.Shorthand)
	assert.Equal(t, []string{"true"}, out.Annotations["cobra_annotation_bash_completion_one_required_flag"])

	method := linkCmd.Flags().Lookup("method")
	require.NotNil(t, method, "link command should have --method flag")
	assert.Equal(t, "m", method.Shorthand)

	for _, name := range []string{"base-dir", "format", "preview", "publish"} {
		assert.NotNil(t, linkCmd.Flags().Lookup(name), "link should have --%s flag", name)
	}
}
