package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates the immutable runtime configuration for one run. It is
// built once at startup and handed to every component; nothing else reads the
// environment.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Camera  CameraConfig  `yaml:"camera"`
	Vision  VisionConfig  `yaml:"vision"`
	Storage StorageConfig `yaml:"storage"`
	Image   ImageConfig   `yaml:"image"`
	Alert   AlertConfig   `yaml:"alert"`
	Mail    MailConfig    `yaml:"mail"`
	Archive ArchiveConfig `yaml:"archive"`
}

// Overrides carries command-line settings that take precedence over the file
// and the environment.
type Overrides struct {
	ConfigPath string
	DataDir    string
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CameraConfig points at the UniFi Protect controller owning the gauge camera.
type CameraConfig struct {
	Host      string        `yaml:"host"`
	APIKey    string        `yaml:"apiKey"`
	CameraID  string        `yaml:"cameraId"`
	Timeout   time.Duration `yaml:"timeout"`
	VerifyTLS bool          `yaml:"verifyTls"`
}

// VisionConfig contains settings for the vision inference service.
type VisionConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"maxTokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Prompt      string        `yaml:"prompt"`
}

// StorageConfig locates the data directory holding the log and snapshots.
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// ImagesDir is the snapshot directory under the data dir.
func (s StorageConfig) ImagesDir() string {
	return filepath.Join(s.DataDir, "images")
}

// LogPath is the append-only reading log.
func (s StorageConfig) LogPath() string {
	return filepath.Join(s.DataDir, "oil_level_log.csv")
}

// AlertStatePath holds the last-alert timestamp used by the cooldown policy.
func (s StorageConfig) AlertStatePath() string {
	return filepath.Join(s.DataDir, "alert_state.json")
}

// CropBox is the pixel rectangle isolating the gauge on the rotated frame.
type CropBox struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
}

// IsZero reports whether no crop was configured.
func (b CropBox) IsZero() bool {
	return b.Left == 0 && b.Top == 0 && b.Right == 0 && b.Bottom == 0
}

// ImageConfig drives snapshot preprocessing before analysis. The defaults are
// the calibration worked out for the deployed camera angle.
type ImageConfig struct {
	RotateDegrees     float64 `yaml:"rotateDegrees"`
	Crop              CropBox `yaml:"crop"`
	ReduceGlare       bool    `yaml:"reduceGlare"`
	Enhance           bool    `yaml:"enhance"`
	EmailScalePercent int     `yaml:"emailScalePercent"`
}

// AlertConfig controls the low-level decision and notification policy.
type AlertConfig struct {
	Threshold     int           `yaml:"threshold"`
	Recipient     string        `yaml:"recipient"`
	Cooldown      time.Duration `yaml:"cooldown"`
	SendOKReports bool          `yaml:"sendOkReports"`
}

// MailConfig holds SMTP transport settings. Username and password are
// optional; without them the relay is used unauthenticated.
type MailConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Sender resolves the From address, falling back to the SMTP username.
func (m MailConfig) Sender() string {
	if strings.TrimSpace(m.From) != "" {
		return m.From
	}
	return m.Username
}

// ArchiveConfig enables mirroring snapshots to an S3-compatible bucket.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// Load builds the configuration: defaults, then an optional .env file, then
// an optional YAML file, then environment variables, then command-line
// overrides. The result is validated before use.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaultConfig()

	// A .env beside the binary seeds the environment without clobbering
	// variables that are already set.
	_ = godotenv.Load()

	path := strings.TrimSpace(overrides.ConfigPath)
	if path == "" {
		path = os.Getenv("OIL_NOTIFIER_CONFIG")
	}
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if dir := strings.TrimSpace(overrides.DataDir); dir != "" {
		cfg.Storage.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		cfg.Logging.JSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("UNIFI_HOST"); v != "" {
		cfg.Camera.Host = v
	}
	if v := os.Getenv("UNIFI_API_KEY"); v != "" {
		cfg.Camera.APIKey = v
	}
	if v := os.Getenv("CAMERA_ID"); v != "" {
		cfg.Camera.CameraID = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Vision.Model = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ALERT_THRESHOLD"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Alert.Threshold = parsed
		}
	}
	if v := os.Getenv("ALERT_EMAIL"); v != "" {
		cfg.Alert.Recipient = v
	}
	if v := os.Getenv("ALERT_COOLDOWN"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Alert.Cooldown = parsed
		}
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.Mail.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = parsed
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
		Camera: CameraConfig{
			Timeout: 10 * time.Second,
			// Local controllers ship self-signed certificates.
			VerifyTLS: false,
		},
		Vision: VisionConfig{
			Model:       "claude-sonnet-4-5",
			MaxTokens:   2048,
			Temperature: 0,
			Timeout:     60 * time.Second,
			Prompt:      defaultGaugePrompt,
		},
		Storage: StorageConfig{
			DataDir: ".",
		},
		Image: ImageConfig{
			RotateDegrees:     55,
			Crop:              CropBox{Left: 700, Top: 650, Right: 1300, Bottom: 1600},
			ReduceGlare:       true,
			Enhance:           false,
			EmailScalePercent: 50,
		},
		Alert: AlertConfig{
			Threshold: 25,
			Cooldown:  0,
		},
		Mail: MailConfig{
			Server: "smtp.gmail.com",
			Port:   587,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Region:  "auto",
		},
	}
}

// Validate ensures the configuration values are safe to use. Presence of
// credentials is checked where the owning client is constructed, so discovery
// commands keep working on a half-configured install.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.dataDir cannot be empty")
	}
	if c.Alert.Threshold < 0 || c.Alert.Threshold > 100 {
		return errors.New("alert.threshold must be within [0, 100]")
	}
	if c.Alert.Cooldown < 0 {
		return errors.New("alert.cooldown cannot be negative")
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return errors.New("mail.port must be a valid TCP port")
	}
	if c.Vision.MaxTokens <= 0 {
		return errors.New("vision.maxTokens must be positive")
	}
	if c.Vision.Temperature < 0 {
		return errors.New("vision.temperature cannot be negative")
	}
	if strings.TrimSpace(c.Vision.Prompt) == "" {
		return errors.New("vision.prompt cannot be empty")
	}
	if c.Vision.Timeout <= 0 || c.Camera.Timeout <= 0 {
		return errors.New("camera.timeout and vision.timeout must be positive")
	}
	if !c.Image.Crop.IsZero() {
		if c.Image.Crop.Right <= c.Image.Crop.Left || c.Image.Crop.Bottom <= c.Image.Crop.Top {
			return errors.New("image.crop box is inverted")
		}
	}
	if c.Image.EmailScalePercent <= 0 || c.Image.EmailScalePercent > 100 {
		return errors.New("image.emailScalePercent must be within (0, 100]")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required when archiving is enabled")
		}
	}
	return nil
}

// defaultGaugePrompt is the calibration instruction sent with every snapshot.
// It encodes the physical gauge layout and the reply contract the parser
// expects; operators can replace it wholesale via vision.prompt.
const defaultGaugePrompt = `This is a vertical oil tank float gauge. Your task is to determine the oil level percentage.

GAUGE STRUCTURE:
- Clear tube with labeled markers: FULL (top), 3/4, 1/2, 1/4, EMPTY (bottom)
- A FLOAT (thick disc, ~4-5mm) moves up/down inside the tube
- The float appears as a THICK HORIZONTAL BAND when viewed from the side

CRITICAL - IDENTIFYING THE REAL FLOAT VS REFLECTIONS:
This infrared camera image has BRIGHT REFLECTIONS that look like horizontal bands, especially NEAR THE TOP of the gauge (between 3/4 and FULL). Do NOT mistake these reflections for the float.

How to distinguish the REAL FLOAT from reflections:
1. The real float is a SOLID, UNIFORM thickness horizontal band (~4-5mm thick)
2. The real float has CLEAR DEFINED EDGES (top and bottom edges are sharp)
3. Reflections appear as BRIGHT GLARE, often with fuzzy or uneven edges
4. Reflections often appear near the TOP of the gauge due to lighting angle
5. The float is typically DARKER or more SOLID than bright glare spots

STEP 1 - Scan the ENTIRE gauge from bottom to top:
Look at the full length of the tube. Identify ALL horizontal bands you see, noting their position and characteristics.

STEP 2 - Eliminate reflections:
Any bright, glary, or fuzzy horizontal features near the top (FULL to 3/4 region) are likely reflections. The real float will be a solid, well-defined band.

STEP 3 - Find the real float:
The float is the solid, uniform-thickness horizontal band with clear edges. It may be anywhere from EMPTY to FULL. Do NOT assume it is near the top just because you see brightness there.

STEP 4 - Calculate percentage:
- EXACTLY at EMPTY marker = 0%
- EXACTLY at 1/4 marker = 25%
- EXACTLY at 1/2 marker = 50%
- EXACTLY at 3/4 marker = 75%
- EXACTLY at FULL marker = 100%

For positions between markers, interpolate linearly.

RESPOND WITH:
Observations: [List ALL horizontal bands/features you see, from bottom to top, noting which appear to be reflections vs the real float]
Float position: [describe exactly where the REAL float is, after eliminating reflections]
Calculation: [show your work]
Percentage: X%
Confidence: [High/Medium/Low]`
