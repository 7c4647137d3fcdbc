package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Ollama         OllamaConfig         `mapstructure:"ollama"`
	SceneDetection SceneDetectionConfig `mapstructure:"scene_detection"`
	Tagging        TaggingConfig        `mapstructure:"tagging"`
	Processing     ProcessingConfig     `mapstructure:"processing"`
	Security       SecurityConfig       `mapstructure:"security"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path                  string        `mapstructure:"path"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
	Verbose               bool          `mapstructure:"verbose"`
}

// StorageConfig contains media storage settings
type StorageConfig struct {
	BasePath      string `mapstructure:"base_path"`
	ThumbnailsDir string `mapstructure:"thumbnails_dir"`
	ClipsDir      string `mapstructure:"clips_dir"`
}

// OllamaConfig contains generation service settings
type OllamaConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	TextTimeout   time.Duration `mapstructure:"text_timeout"`
	VisionTimeout time.Duration `mapstructure:"vision_timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
}

// SceneDetectionConfig contains content-change detector settings
type SceneDetectionConfig struct {
	Threshold      float64 `mapstructure:"threshold"`        // Lower = more sensitive
	MinSceneFrames int     `mapstructure:"min_scene_frames"` // Minimum scene length in frames
	FallbackFPS    float64 `mapstructure:"fallback_fps"`     // Used when the stream rate cannot be probed
}

// TaggingConfig contains pipeline settings
type TaggingConfig struct {
	FramesPerScene   int `mapstructure:"frames_per_scene"`
	MaxSceneTags     int `mapstructure:"max_scene_tags"`
	MaxVideoTags     int `mapstructure:"max_video_tags"`
	MaxImageTags     int `mapstructure:"max_image_tags"`
	MaxAggregateTags int `mapstructure:"max_aggregate_tags"`
}

// ProcessingConfig contains worker and ffmpeg settings
type ProcessingConfig struct {
	Workers       int           `mapstructure:"workers"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS      bool     `mapstructure:"enable_cors"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	EnableRequestID bool     `mapstructure:"enable_request_id"`
	EnableRecovery  bool     `mapstructure:"enable_recovery"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
