package internal

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	testData := []struct {
		content  string
		expected *Config
	}{
		{
			content: `
[output]
dir = "build"
check = false

[log]
verbose = "symbols,labels"
`,
			expected: &Config{
				Output: OutputConfig{Dir: "build", Extension: ".vm", Check: false},
				Log:    LogConfig{Verbose: "symbols,labels"},
			},
		},
		{
			content: `
[output]
extension = ".hackvm"
`,
			expected: &Config{
				Output: OutputConfig{Extension: ".hackvm", Check: true},
			},
		},
		{
			content:  "",
			expected: DefaultConfig(),
		},
	}
	for _, data := range testData {
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		require.NoError(t, os.WriteFile(path, []byte(data.content), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err, data.content)
		assert.Equal(t, data.expected, cfg, data.content)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("[output\ndir = "), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
