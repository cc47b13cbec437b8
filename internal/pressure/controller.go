// Package pressure classifies record store usage into levels.
//
// The Controller maps the store's usage ratio onto Normal, Warning,
// Critical and Emergency. A level is entered at its threshold and left only
// once usage drops hysteresis below it, so a store hovering near a boundary
// does not flap between levels.
package pressure

import (
	"github.com/xtxerr/sensorring/internal/config"
)

// Level represents the current pressure level.
type Level int

const (
	// LevelNormal - store has plenty of room.
	LevelNormal Level = iota

	// LevelWarning - store is filling up.
	LevelWarning

	// LevelCritical - store is close to full.
	LevelCritical

	// LevelEmergency - store is at or past the emergency threshold;
	// further pushes overflow.
	LevelEmergency
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// UsageSource reports how full a store is, 0.0 - 1.0.
type UsageSource interface {
	UsageRatio() float64
}

// Controller tracks the pressure level of one store.
// Like the store it observes, it is not safe for concurrent use.
type Controller struct {
	config config.PressureConfig
	source UsageSource

	level Level
	stats Stats

	// Level change callback
	onLevelChange func(old, new Level)
}

// Stats holds level transition counters.
type Stats struct {
	LevelChanges   int64
	WarningCount   int64
	CriticalCount  int64
	EmergencyCount int64
}

// New creates a new pressure controller.
func New(cfg config.PressureConfig, source UsageSource) *Controller {
	return &Controller{
		config: cfg,
		source: source,
	}
}

// SetOnLevelChange sets the callback for level changes.
func (c *Controller) SetOnLevelChange(fn func(old, new Level)) {
	c.onLevelChange = fn
}

// Check evaluates the current usage and updates the level.
// Call it after every operation that changes the store's size or capacity.
func (c *Controller) Check() Level {
	if !c.config.Enabled {
		return LevelNormal
	}

	newLevel := c.determineLevel(c.source.UsageRatio())
	if newLevel != c.level {
		c.setLevel(newLevel)
	}

	return newLevel
}

// determineLevel determines the pressure level based on usage.
func (c *Controller) determineLevel(usage float64) Level {
	thresholds := c.config.Thresholds
	hysteresis := c.config.Hysteresis

	// Going up (increasing pressure)
	if usage >= thresholds.Emergency {
		return LevelEmergency
	}
	if usage >= thresholds.Critical && c.level < LevelCritical {
		return LevelCritical
	}
	if usage >= thresholds.Warning && c.level < LevelWarning {
		return LevelWarning
	}

	// Going down (decreasing pressure) - apply hysteresis one level at a time
	level := c.level
	for {
		switch {
		case level == LevelEmergency && usage < thresholds.Emergency-hysteresis:
			level = LevelCritical
		case level == LevelCritical && usage < thresholds.Critical-hysteresis:
			level = LevelWarning
		case level == LevelWarning && usage < thresholds.Warning-hysteresis:
			level = LevelNormal
		default:
			return level
		}
	}
}

// setLevel updates the current level and fires callback.
func (c *Controller) setLevel(newLevel Level) {
	oldLevel := c.level
	c.level = newLevel
	c.stats.LevelChanges++

	// Update level-specific counters
	switch newLevel {
	case LevelWarning:
		c.stats.WarningCount++
	case LevelCritical:
		c.stats.CriticalCount++
	case LevelEmergency:
		c.stats.EmergencyCount++
	}

	if c.onLevelChange != nil {
		c.onLevelChange(oldLevel, newLevel)
	}
}

// CurrentLevel returns the level computed by the last Check.
func (c *Controller) CurrentLevel() Level {
	return c.level
}

// Stats returns current statistics.
func (c *Controller) Stats() Stats {
	return c.stats
}

// IsEnabled returns whether level tracking is enabled.
func (c *Controller) IsEnabled() bool {
	return c.config.Enabled
}
