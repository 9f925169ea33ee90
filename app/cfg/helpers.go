package cfg

import (
	"time"
)

// GetPollInterval returns the news poll interval as time.Duration
func (c *Cfg) GetPollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.PollInterval) * time.Minute
}

// GetRetentionWindow returns the maximum news item age as time.Duration
func (c *Cfg) GetRetentionWindow() time.Duration {
	if c.RetentionHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.RetentionHours) * time.Hour
}

// GetSendDelay returns the inter-send delay as time.Duration
func (c *Cfg) GetSendDelay() time.Duration {
	if c.SendDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.SendDelayMs) * time.Millisecond
}

// GetSendTimeout returns the per-channel send timeout as time.Duration
func (c *Cfg) GetSendTimeout() time.Duration {
	if c.SendTimeout <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.SendTimeout) * time.Second
}

// GetChartTimeout returns the chart rendering timeout as time.Duration
func (c *Cfg) GetChartTimeout() time.Duration {
	if c.ChartTimeout <= 0 {
		return 45 * time.Second
	}
	return time.Duration(c.ChartTimeout) * time.Second
}
