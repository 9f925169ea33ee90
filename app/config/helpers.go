package config

import (
	"time"
)

// GetTimeout returns the fetch timeout as time.Duration
func (s *RouteSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
