package scenecore

import (
	"strings"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultLogLevel = "info"
	DefaultPort     = "4040"
)

var defaultConfig = SceneConfig{
	SceneName:      "untitled",
	SceneNamespace: "scenecore",
	ScenePort:      DefaultPort,
	SceneLogLevel:  DefaultLogLevel,
	RedisAddress:   "",
	RedisPassword:  "",
	StatsdAddress:  "",
	TraceAddress:   "",
}

// SceneConfig is the environment-driven configuration for a scene. Every
// field has a default; a missing variable leaves the default in place. An
// empty RedisAddress runs the scene fully in memory with no persistence
// adapter attached.
type SceneConfig struct {
	SceneName      string `config:"SCENE_NAME"`
	SceneNamespace string `config:"SCENE_NAMESPACE"`
	ScenePort      string `config:"SCENE_PORT"`
	SceneLogLevel  string `config:"SCENE_LOG_LEVEL"`
	RedisAddress   string `config:"REDIS_ADDRESS"`
	RedisPassword  string `config:"REDIS_PASSWORD"`
	StatsdAddress  string `config:"STATSD_ADDRESS"`
	TraceAddress   string `config:"TRACE_ADDRESS"`
}

func loadSceneConfig() (*SceneConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load scene config from env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid scene config")
	}
	return &cfg, nil
}

// Validate rejects configurations the scene cannot start with.
func (c *SceneConfig) Validate() error {
	if strings.TrimSpace(c.SceneName) == "" {
		return eris.New("SCENE_NAME must not be empty")
	}
	if strings.TrimSpace(c.SceneNamespace) == "" {
		return eris.New("SCENE_NAMESPACE must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.SceneLogLevel); err != nil {
		return eris.Wrap(err, "SCENE_LOG_LEVEL is not a valid level")
	}
	return nil
}

func (c *SceneConfig) logLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.SceneLogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
