package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SourceAPI = "api"
	SourceRSS = "rss"
)

// Loader handles loading and validation of news route configurations
type Loader struct {
	routesDir string
}

func NewLoader(routesDir string) *Loader {
	return &Loader{routesDir: routesDir}
}

// LoadAll loads all YAML route files from the routes directory. The returned
// slice is ordered by filename; the news poller iterates categories in this
// order on every cycle.
func (l *Loader) LoadAll() ([]*RouteConfig, error) {
	if _, err := os.Stat(l.routesDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.routesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.routesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	var configs []*RouteConfig
	for _, file := range files {
		routeConfig, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(routeConfig); err != nil {
			return nil, fmt.Errorf("invalid route config %s: %w", file, err)
		}

		configs = append(configs, routeConfig)
		slog.Debug("Loaded route configuration", "file", file, "category", routeConfig.Category)
	}

	return configs, nil
}

func (l *Loader) loadFile(path string) (*RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var routeConfig RouteConfig
	if err := yaml.Unmarshal(data, &routeConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Base(path)
	routeConfig.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")

	l.setDefaults(&routeConfig)

	return &routeConfig, nil
}

func (l *Loader) setDefaults(routeConfig *RouteConfig) {
	if routeConfig.Source == "" {
		routeConfig.Source = SourceAPI
	}
	if routeConfig.Settings.MaxItems == 0 {
		routeConfig.Settings.MaxItems = 20
	}
	if routeConfig.Settings.Timeout == 0 {
		routeConfig.Settings.Timeout = 30 // seconds
	}
}

func (l *Loader) validate(routeConfig *RouteConfig) error {
	if routeConfig.Category == "" {
		return fmt.Errorf("category is required")
	}

	switch routeConfig.Source {
	case SourceAPI:
	case SourceRSS:
		if routeConfig.FeedURL == "" {
			return fmt.Errorf("feed_url is required for rss routes")
		}
	default:
		return fmt.Errorf("unknown source %q (expected %q or %q)", routeConfig.Source, SourceAPI, SourceRSS)
	}

	if routeConfig.Settings.MaxItems < 0 {
		return fmt.Errorf("max_items must be non-negative")
	}
	if routeConfig.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}
