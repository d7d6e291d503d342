package config

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/gitversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoad_YAML(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "/repo/.gitversion.yaml", `
prefix: my-lib@
match: ["v*", "release/**"]
semverOnly: true
hashLength: 10
backend: cli
timeout: 5s
`)

	file, err := Load(fs, "/repo/.gitversion.yaml")
	require.NoError(t, err)

	assert.Equal(t, gitversion.Config{
		Prefix:     "my-lib@",
		Match:      []string{"v*", "release/**"},
		SemverOnly: true,
		HashLength: 10,
	}, file.Config())
	assert.Equal(t, BackendCLI, file.Backend)
	assert.Equal(t, 5*time.Second, file.TimeoutDuration())
	assert.NotNil(t, file.BackendFactory())
}

func TestLoad_CUE(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "/repo/.gitversion.cue", `
prefix:     "service/"
hashLength: 8
`)

	file, err := Load(fs, "/repo/.gitversion.cue")
	require.NoError(t, err)

	assert.Equal(t, "service/", file.Prefix)
	assert.Equal(t, 8, file.HashLength)
	assert.Empty(t, file.Backend)
	assert.Equal(t, time.Duration(0), file.TimeoutDuration())
}

func TestLoad_EmptyYAML(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "/repo/.gitversion.yml", "")

	file, err := Load(fs, "/repo/.gitversion.yml")
	require.NoError(t, err)
	assert.Equal(t, gitversion.Config{}, file.Config())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		code    platformerrors.ErrorCode
	}{
		{"unknown field", "/repo/.gitversion.yaml", "prefx: v-\n", platformerrors.CodeCUEValidationFailed},
		{"bad prefix", "/repo/.gitversion.yaml", "prefix: \"1.\"\n", platformerrors.CodeCUEValidationFailed},
		{"hash too long", "/repo/.gitversion.yaml", "hashLength: 64\n", platformerrors.CodeCUEValidationFailed},
		{"wrong type", "/repo/.gitversion.yaml", "semverOnly: maybe\n", platformerrors.CodeCUEValidationFailed},
		{"unknown backend", "/repo/.gitversion.yaml", "backend: libgit2\n", platformerrors.CodeCUEValidationFailed},
		{"bad timeout", "/repo/.gitversion.yaml", "timeout: soon\n", platformerrors.CodeInvalidConfig},
		{"malformed yaml", "/repo/.gitversion.yaml", "match: [\n", platformerrors.CodeCUEBuildFailed},
		{"malformed cue", "/repo/.gitversion.cue", "prefix: \n", platformerrors.CodeCUEBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			writeFile(t, fs, tt.path, tt.content)

			_, err := Load(fs, tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, gitversion.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.path)

			var platformErr platformerrors.PlatformError
			require.ErrorAs(t, err, &platformErr)
			assert.Equal(t, tt.code, platformErr.Code())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(memfs.New(), "/repo/.gitversion.yaml")
	require.Error(t, err)

	var platformErr platformerrors.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, platformerrors.CodeCUELoadFailed, platformErr.Code())
}

func TestDiscover(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, fs.MkdirAll("/repo", 0o755))

		file, path, err := Discover(fs, "/repo")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Empty(t, path)
	})

	t.Run("cue takes precedence", func(t *testing.T) {
		fs := memfs.New()
		writeFile(t, fs, "/repo/.gitversion.yaml", "prefix: yaml-\n")
		writeFile(t, fs, "/repo/.gitversion.cue", "prefix: \"cue-\"\n")

		file, path, err := Discover(fs, "/repo")
		require.NoError(t, err)
		assert.Equal(t, "/repo/.gitversion.cue", path)
		assert.Equal(t, "cue-", file.Prefix)
	})

	t.Run("yml", func(t *testing.T) {
		fs := memfs.New()
		writeFile(t, fs, "/repo/.gitversion.yml", "hashLength: 12\n")

		file, path, err := Discover(fs, "/repo")
		require.NoError(t, err)
		assert.Equal(t, "/repo/.gitversion.yml", path)
		assert.Equal(t, 12, file.HashLength)
	})
}
