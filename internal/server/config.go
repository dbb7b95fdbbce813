package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server   ServerSettings   `hcl:"server,block"`
	Game     *GameSettings    `hcl:"game,block"`
	LLM      *LLMSettings     `hcl:"llm,block"`
	Storage  *StorageSettings `hcl:"storage,block"`
	Personas []PersonaConfig  `hcl:"persona,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Secret   string `hcl:"secret,optional"`
}

// GameSettings contains per-game defaults
type GameSettings struct {
	MaxPlayers  int    `hcl:"max_players,optional"`
	PointsToWin int    `hcl:"points_to_win,optional"`
	PackFile    string `hcl:"pack_file,optional"`
}

// LLMSettings configures the bot decision backends
type LLMSettings struct {
	HostedModel     string `hcl:"hosted_model,optional"`
	HostedTimeoutMs int    `hcl:"hosted_timeout_ms,optional"`
	SharedKeyEnv    string `hcl:"shared_key_env,optional"`
	LocalBaseURL    string `hcl:"local_base_url,optional"`
	LocalModel      string `hcl:"local_model,optional"`
	LocalTimeoutMs  int    `hcl:"local_timeout_ms,optional"`
}

// PersonaConfig defines a bot persona available to games on this server.
// When no persona blocks are present the built-in roster is used.
type PersonaConfig struct {
	ID           string `hcl:"id,label"`
	Name         string `hcl:"name"`
	SystemPrompt string `hcl:"system_prompt"`
	Description  string `hcl:"description,optional"`
}

// StorageSettings configures snapshot and win persistence
type StorageSettings struct {
	Path string `hcl:"path,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: &GameSettings{
			MaxPlayers:  8,
			PointsToWin: 5,
		},
		LLM: &LLMSettings{
			SharedKeyEnv: "OPENAI_API_KEY",
		},
		Storage: &StorageSettings{
			Path: "cardsagainst.db",
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Game == nil {
		config.Game = &GameSettings{}
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = 8
	}
	if config.Game.PointsToWin == 0 {
		config.Game.PointsToWin = 5
	}
	if config.LLM == nil {
		config.LLM = &LLMSettings{}
	}
	if config.LLM.SharedKeyEnv == "" {
		config.LLM.SharedKeyEnv = "OPENAI_API_KEY"
	}
	if config.Storage == nil {
		config.Storage = &StorageSettings{}
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "cardsagainst.db"
	}

	return &config, nil
}
