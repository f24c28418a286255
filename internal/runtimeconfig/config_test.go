package runtimeconfig_test

import (
	"testing"

	"github.com/artuross/fnlang/internal/runtimeconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlagger struct {
	flags map[string]bool
}

func (f fakeFlagger) Bool(name string) bool {
	return f.flags[name]
}

func TestRead_ResolvesSourcePathAndFlags(t *testing.T) {
	cfg, err := runtimeconfig.Read(
		fakeFlagger{flags: map[string]bool{"trace": true, "watch": true}},
		[]string{"main.fn"},
		func(string) string { return "" },
	)

	require.NoError(t, err)
	assert.Equal(t, "main.fn", cfg.SourcePath)
	assert.True(t, cfg.Trace)
	assert.True(t, cfg.Watch)
}

func TestRead_MissingSourcePathErrors(t *testing.T) {
	_, err := runtimeconfig.Read(
		fakeFlagger{},
		nil,
		func(string) string { return "" },
	)

	require.Error(t, err)
}

func TestRead_EnvVarEnablesTrace(t *testing.T) {
	cfg, err := runtimeconfig.Read(
		fakeFlagger{},
		[]string{"main.fn"},
		func(name string) string {
			if name == "FNLANG_TRACE" {
				return "1"
			}
			return ""
		},
	)

	require.NoError(t, err)
	assert.True(t, cfg.Trace)
}
