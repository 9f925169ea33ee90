package config

// RouteConfig describes one news category and where its items are relayed
type RouteConfig struct {
	Name       string             // Derived from filename (without .yml extension)
	Category   string             `yaml:"category"`
	Source     string             `yaml:"source"` // "api" or "rss"
	FeedURL    string             `yaml:"feed_url"`
	Settings   RouteSettings      `yaml:"settings"`
	Recipients RecipientOverrides `yaml:"recipients"`
}

// RouteSettings contains per-category processing settings
type RouteSettings struct {
	Enabled  bool `yaml:"enabled"`
	MaxItems int  `yaml:"max_items"`
	Timeout  int  `yaml:"timeout"` // seconds
}

// RecipientOverrides replaces the default recipients per channel kind when set
type RecipientOverrides struct {
	Telegram []string `yaml:"telegram"`
	Line     []string `yaml:"line"`
}
