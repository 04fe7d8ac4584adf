package mrpack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packdock/packdock/core"
)

const sampleIndex = `{
    "formatVersion": 1,
    "game": "minecraft",
    "versionId": "1.2.0",
    "name": "Test Pack",
    "files": [
        {
            "path": "mods/testmod.jar",
            "hashes": {
                "sha1": "cb40b8bd0b43d7f9f9b79f7bbb36318531f9b4f0",
                "sha512": "unused"
            },
            "downloads": ["https://cdn.example.com/testmod.jar"],
            "fileSize": 1024
        },
        {
            "path": "mods/clientmod.jar",
            "hashes": {"sha1": "ab40b8bd0b43d7f9f9b79f7bbb36318531f9b4f0"},
            "env": {"client": "required", "server": "unsupported"},
            "downloads": ["https://cdn.example.com/clientmod.jar"],
            "fileSize": 2048
        }
    ],
    "dependencies": {
        "minecraft": "1.20.1",
        "fabric-loader": "0.14.21"
    }
}`

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	assert.Equal(t, "Test Pack", idx.Name)
	assert.Equal(t, "1.2.0", idx.VersionID)
	assert.Equal(t, "1.20.1", idx.MinecraftVersion())
	require.Len(t, idx.Files, 2)

	f := idx.Files[0]
	assert.Equal(t, "mods/testmod.jar", f.Path)
	assert.Equal(t, "cb40b8bd0b43d7f9f9b79f7bbb36318531f9b4f0", f.SHA1())
	assert.Equal(t, "https://cdn.example.com/testmod.jar", f.PrimaryDownload())
	assert.Equal(t, EnvRequired, f.ServerSide(), "missing env block means required on both sides")

	assert.Equal(t, EnvUnsupported, idx.Files[1].ServerSide())
}

func TestParseIndexMissingMinecraft(t *testing.T) {
	_, err := ParseIndex([]byte(`{"formatVersion": 1, "name": "x", "dependencies": {"fabric-loader": "0.14.21"}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParse))
}

func TestParseIndexMalformed(t *testing.T) {
	_, err := ParseIndex([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParse))
}

func TestPrimaryDownloadEmpty(t *testing.T) {
	f := IndexFile{Path: "mods/x.jar"}
	assert.Equal(t, "", f.PrimaryDownload())
	assert.Equal(t, "", f.SHA1())
}
