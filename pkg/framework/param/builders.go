package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		index := int(value)
		if index >= 0 && index < len(options) {
			return options[index].Name
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(int32(len(options) - 1)).
		Formatter(formatter, parser)
	if len(options) > 0 {
		b.Default(options[0].Value)
	}
	return b
}

// BypassParameter creates a bypass on/off switch. Any non-zero plain value
// means bypassed.
func BypassParameter(id uint32, name string) *Builder {
	return Choice(id, name, []ChoiceOption{
		{Value: 0, Name: "Active", Aliases: []string{"off", "false", "0"}},
		{Value: 1, Name: "Bypassed", Aliases: []string{"on", "true", "1"}},
	}).Flags(CanAutomate | IsToggled | IsBypass)
}

// KnobParameter creates a 0..1 control shown as a percentage
func KnobParameter(id uint32, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultVal).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// LevelParameter creates a 0..1 control displayed as the dB value it maps to
// on [minDB, maxDB].
func LevelParameter(id uint32, name string, minDB, maxDB, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultVal).
		Unit("dB").
		Formatter(func(v float64) string {
			return DecibelFormatter(minDB + v*(maxDB-minDB))
		}, func(s string) (float64, error) {
			db, err := DecibelParser(s)
			if err != nil {
				return 0, err
			}
			return (db - minDB) / (maxDB - minDB), nil
		})
}
