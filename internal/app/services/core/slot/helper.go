package slot

import (
	"fmt"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/utils"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

func parseWallTimeFlex(s string) (WallTime, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", ":")
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return WallTime{}, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return WallTime{}, false
	}
	return WallTime{H: h, M: m}, true
}

// ParseWallTime accepts "HH:MM" and the dotted "HH.MM" form.
func ParseWallTime(s string) (WallTime, error) {
	c, ok := parseWallTimeFlex(s)
	if !ok {
		return WallTime{}, fmt.Errorf("%w: invalid wall time '%s'", exceptions.ErrInvalidConfiguration, s)
	}
	return c, nil
}

func wallTimeAt(offset time.Duration) WallTime {
	minutes := int(offset / time.Minute)
	return WallTime{H: minutes / 60, M: minutes % 60}
}

// Validate reports configurations the generator must refuse.
func (c Configuration) Validate() error {
	if !c.Open.Before(c.Close) {
		return fmt.Errorf("%w: open %s must be before close %s", exceptions.ErrInvalidConfiguration, c.Open, c.Close)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("%w: slot duration must be positive, got %s", exceptions.ErrInvalidConfiguration, c.SlotDuration)
	}
	if c.BufferDuration < 0 {
		return fmt.Errorf("%w: buffer duration must not be negative, got %s", exceptions.ErrInvalidConfiguration, c.BufferDuration)
	}
	// slot ids carry minute precision, so a finer step would repeat ids
	if c.SlotDuration%time.Minute != 0 || c.BufferDuration%time.Minute != 0 {
		return fmt.Errorf("%w: slot %s and buffer %s must be whole minutes", exceptions.ErrInvalidConfiguration, c.SlotDuration, c.BufferDuration)
	}
	if w := c.Exclusion; w != nil {
		if !w.Start.Before(w.End) {
			return fmt.Errorf("%w: exclusion window %s-%s is empty", exceptions.ErrInvalidConfiguration, w.Start, w.End)
		}
		if w.Start.Before(c.Open) || c.Close.Before(w.End) {
			return fmt.Errorf("%w: exclusion window %s-%s is outside %s-%s", exceptions.ErrInvalidConfiguration, w.Start, w.End, c.Open, c.Close)
		}
	}
	return nil
}

// ScheduleConfig is the JSON form of a Configuration.
type ScheduleConfig struct {
	OpenTime        string           `json:"openTime" validate:"required,clock"`
	CloseTime       string           `json:"closeTime" validate:"required,clock"`
	SlotMinutes     int              `json:"slotMinutes" validate:"gt=0"`
	BufferMinutes   int              `json:"bufferMinutes" validate:"gte=0"`
	ExclusionWindow *ExclusionWindow `json:"exclusionWindow,omitempty"`
}

type ExclusionWindow struct {
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

// ParseScheduleConfig decodes and validates the JSON configuration.
func ParseScheduleConfig(raw []byte) (Configuration, error) {
	var c ScheduleConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return Configuration{}, fmt.Errorf("%w: %s", exceptions.ErrInvalidConfiguration, err.Error())
	}
	return c.Configuration()
}

func (c ScheduleConfig) Configuration() (Configuration, error) {
	if err := utils.ValidateStruct(c); err != nil {
		return Configuration{}, fmt.Errorf("%w: %s", exceptions.ErrInvalidConfiguration, exceptions.FormatFirstValidationError(err))
	}
	open, err := ParseWallTime(c.OpenTime)
	if err != nil {
		return Configuration{}, err
	}
	closing, err := ParseWallTime(c.CloseTime)
	if err != nil {
		return Configuration{}, err
	}
	cfg := Configuration{
		Open:           open,
		Close:          closing,
		SlotDuration:   time.Duration(c.SlotMinutes) * time.Minute,
		BufferDuration: time.Duration(c.BufferMinutes) * time.Minute,
	}
	if c.ExclusionWindow != nil {
		start, err := ParseWallTime(c.ExclusionWindow.Start)
		if err != nil {
			return Configuration{}, err
		}
		end, err := ParseWallTime(c.ExclusionWindow.End)
		if err != nil {
			return Configuration{}, err
		}
		cfg.Exclusion = &Window{Start: start, End: end}
	}
	return cfg, cfg.Validate()
}
