package model

type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Templates TemplatesConfig `yaml:"templates"`
	Inventory InventoryConfig `yaml:"inventory"`
	Photos    PhotosConfig    `yaml:"photos"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type TemplatesConfig struct {
	// Dir holds additional checklist template YAML files layered over the
	// built-in set. Empty means built-ins only.
	Dir string `yaml:"dir"`
	// Watch enables hot reload of Dir; the registry snapshot is swapped
	// atomically and resolved templates stay immutable.
	Watch            bool    `yaml:"watch"`
	WatchDebounceSec float64 `yaml:"watch_debounce_sec"`
}

type InventoryConfig struct {
	// WarnBelow logs a low-stock warning after any debit that leaves fewer
	// units than this threshold. Zero disables the warning.
	WarnBelow int `yaml:"warn_below"`
}

type PhotosConfig struct {
	// JPEGQuality is the re-encode quality for uploaded evidence photos.
	JPEGQuality int `yaml:"jpeg_quality"`
	// MaxConcurrent bounds parallel image compression.
	MaxConcurrent int `yaml:"max_concurrent"`
}

type AuditConfig struct {
	Path         string `yaml:"path"`
	MaxSizeBytes int64  `yaml:"max_size_bytes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ApplyDefaults fills zero-valued settings after unmarshal.
func (c *Config) ApplyDefaults() {
	if c.Templates.WatchDebounceSec <= 0 {
		c.Templates.WatchDebounceSec = 0.5
	}
	if c.Photos.JPEGQuality <= 0 || c.Photos.JPEGQuality > 100 {
		c.Photos.JPEGQuality = 70
	}
	if c.Photos.MaxConcurrent <= 0 {
		c.Photos.MaxConcurrent = 4
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "audit/fieldops.jsonl"
	}
	if c.Audit.MaxSizeBytes <= 0 {
		c.Audit.MaxSizeBytes = 100 * 1024 * 1024
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
