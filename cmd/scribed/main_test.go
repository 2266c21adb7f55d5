package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand_Wiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "analyze", "history", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestConfigCommand_Wiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["show"])
}

func TestGlobalFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, runCmd.Flags().Lookup("workers"))
}
