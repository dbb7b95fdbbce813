package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 8, config.Game.MaxPlayers)
	assert.Equal(t, 5, config.Game.PointsToWin)
	assert.Equal(t, "OPENAI_API_KEY", config.LLM.SharedKeyEnv)
	assert.Equal(t, "cardsagainst.db", config.Storage.Path)
}

func TestLoadServerConfigParsesHCL(t *testing.T) {
	content := `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
  secret    = "sealing-secret"
}

game {
  max_players   = 6
  points_to_win = 7
}

llm {
  hosted_model      = "gpt-4o-mini"
  hosted_timeout_ms = 10000
  local_base_url    = "http://localhost:11434/v1"
  local_model       = "qwen2.5:3b"
  local_timeout_ms  = 30000
}

storage {
  path = "/var/lib/cardsagainst/games.db"
}

persona "noir" {
  name          = "Noir Detective"
  system_prompt = "You are a hard-boiled detective. Pick the bleakest card."
  description   = "Rain-soaked monologues"
}
`
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Address)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, "sealing-secret", config.Server.Secret)
	assert.Equal(t, 6, config.Game.MaxPlayers)
	assert.Equal(t, 7, config.Game.PointsToWin)
	assert.Equal(t, "gpt-4o-mini", config.LLM.HostedModel)
	assert.Equal(t, 10000, config.LLM.HostedTimeoutMs)
	assert.Equal(t, "qwen2.5:3b", config.LLM.LocalModel)
	assert.Equal(t, "/var/lib/cardsagainst/games.db", config.Storage.Path)
	require.Len(t, config.Personas, 1)
	assert.Equal(t, "noir", config.Personas[0].ID)
	assert.Equal(t, "Noir Detective", config.Personas[0].Name)
}

func TestLoadServerConfigPartialFileAppliesDefaults(t *testing.T) {
	content := `
server {
  port = 9100
}
`
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, 8, config.Game.MaxPlayers)
	assert.Equal(t, "cardsagainst.db", config.Storage.Path)
}

func TestLoadServerConfigRejectsMalformedHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { port = `), 0o644))

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}
