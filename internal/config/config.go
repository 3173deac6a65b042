// Package config loads and validates the YAML configuration that drives one
// scheduling run: the target month, each doctor's nominal quota and
// autopsy commitments, the holiday sources that reclassify weekdays as
// weekend-equivalent, and the open-question flags surfaced as settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/thewbear/doembang-roster/pkg/core/model"
)

// NominalQuota mirrors model.NominalQuota with YAML tags and validation.
type NominalQuota struct {
	WeekdayER   int `yaml:"weekdayER" validate:"gte=0"`
	WeekdayWard int `yaml:"weekdayWard" validate:"gte=0"`
	WeekendER   int `yaml:"weekendER" validate:"gte=0"`
	WeekendWard int `yaml:"weekendWard" validate:"gte=0"`
}

// AutopsyEntry mirrors model.AutopsyEntry with YAML tags and validation.
type AutopsyEntry struct {
	Date string `yaml:"date" validate:"required"`
	Time string `yaml:"time" validate:"required,oneof=DAY EVENING NIGHT"`
}

// NYQuota mirrors model.NYQuota with YAML tags and validation.
type NYQuota struct {
	NYE int `yaml:"nye" validate:"gte=0"`
	NY  int `yaml:"ny" validate:"gte=0"`
}

// Doctor bundles one doctor's quota, autopsy bookings, and optional
// New Year window quota.
type Doctor struct {
	Name     string         `yaml:"name" validate:"required"`
	Quota    NominalQuota   `yaml:"quota" validate:"required"`
	Autopsy  []AutopsyEntry `yaml:"autopsy,omitempty" validate:"dive"`
	NYQuota  *NYQuota       `yaml:"nyQuota,omitempty"`
}

// Holidays lists every source contributing to the weekend-equivalent
// reclassification.
type Holidays struct {
	Explicit []string `yaml:"explicit,omitempty"`
	RRules   []string `yaml:"rrules,omitempty"`
	ICSPath  string   `yaml:"icsPath,omitempty"`
}

// Flags resolves spec.md's open questions as configuration rather than
// hard-coded behaviour.
type Flags struct {
	ChainCountsWeekendImplicitDay bool `yaml:"chainCountsWeekendImplicitDay"`
	NYESupersedesWeekendQuota     bool `yaml:"nyeSupersedesWeekendQuota"`
	AutopsyAppliesOutsideMonth    bool `yaml:"autopsyAppliesOutsideMonth"`
}

// Config is the full YAML document for one scheduling run.
type Config struct {
	Year     int        `yaml:"year" validate:"required,gte=2000,lte=2100"`
	Month    int        `yaml:"month" validate:"required,gte=1,lte=12"`
	Doctors  []Doctor   `yaml:"doctors" validate:"required,min=1,dive"`
	Holidays Holidays   `yaml:"holidays"`
	Flags    Flags      `yaml:"flags"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadFromPath reads, parses, and validates a Config from path. Flags the
// file leaves out keep their defaults: nyeSupersedesWeekendQuota and
// autopsyAppliesOutsideMonth true, chainCountsWeekendImplicitDay false.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Config{Flags: Flags{NYESupersedesWeekendQuota: true, AutopsyAppliesOutsideMonth: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct-tag validation plus the semantic checks tags can't
// express: RRULE syntax and date/time parseability.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, r := range cfg.Holidays.RRules {
		if _, err := rrule.StrToRRule(r); err != nil {
			return fmt.Errorf("invalid rrule in holidays.rrules[%d]: %w", i, err)
		}
	}

	for i, d := range cfg.Holidays.Explicit {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date in holidays.explicit[%d]: %w", i, err)
		}
	}

	for _, doc := range cfg.Doctors {
		for i, e := range doc.Autopsy {
			if _, err := time.Parse("2006-01-02", e.Date); err != nil {
				return fmt.Errorf("invalid date in doctor %q autopsy[%d]: %w", doc.Name, i, err)
			}
		}
	}

	return nil
}

// ToNominalQuota converts the YAML NominalQuota into the core model type.
func (q NominalQuota) ToNominalQuota() model.NominalQuota {
	return model.NominalQuota{
		WeekdayER:   q.WeekdayER,
		WeekdayWard: q.WeekdayWard,
		WeekendER:   q.WeekendER,
		WeekendWard: q.WeekendWard,
	}
}

// ToAutopsyEntry parses the YAML AutopsyEntry into the core model type. The
// date and time strings are assumed already validated by Validate.
func (e AutopsyEntry) ToAutopsyEntry() (model.AutopsyEntry, error) {
	t, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return model.AutopsyEntry{}, fmt.Errorf("parsing autopsy date %q: %w", e.Date, err)
	}

	shiftTime, err := parseShiftTime(e.Time)
	if err != nil {
		return model.AutopsyEntry{}, err
	}

	return model.AutopsyEntry{Date: model.DateFromTime(t), Time: shiftTime}, nil
}

func parseShiftTime(s string) (model.ShiftTime, error) {
	switch s {
	case "DAY":
		return model.DAY, nil
	case "EVENING":
		return model.EVENING, nil
	case "NIGHT":
		return model.NIGHT, nil
	default:
		return 0, fmt.Errorf("unrecognised shift time %q", s)
	}
}
