// Package ebc implements the explanation-based chunking control core: the
// per-instantiation learning gate, the deterministic rule namer, and the
// controller that owns the counters and per-attempt state of a learning
// episode.
package ebc

import (
	"fmt"

	"ebcore/internal/config"
)

// NamingStyle selects how learned rules are named.
type NamingStyle uint8

const (
	// NumberedFormat names rules prefix + counter.
	NumberedFormat NamingStyle = iota
	// DescriptiveFormat composes provenance, impasse, and clock into the name.
	DescriptiveFormat
)

func (s NamingStyle) String() string {
	if s == DescriptiveFormat {
		return "descriptive"
	}
	return "numbered"
}

// ParseNamingStyle maps the config string to a style. Unknown values fall
// back to numbered.
func ParseNamingStyle(s string) NamingStyle {
	if s == "descriptive" {
		return DescriptiveFormat
	}
	return NumberedFormat
}

// Settings are the chunking parameters, frozen per agent until a config
// reload applies a new set.
type Settings struct {
	LearningOn bool
	Except     bool
	Only       bool
	BottomOnly bool

	NamingStyle NamingStyle
	MaxChunks   uint64
	MaxDupes    uint64
	Timers      bool
}

// SettingsFromConfig maps the YAML learning section onto Settings.
func SettingsFromConfig(lc config.LearningConfig) Settings {
	return Settings{
		LearningOn:  lc.Enabled,
		Except:      lc.Except,
		Only:        lc.Only,
		BottomOnly:  lc.BottomOnly,
		NamingStyle: ParseNamingStyle(lc.NamingStyle),
		MaxChunks:   lc.MaxChunks,
		MaxDupes:    lc.MaxDupes,
		Timers:      lc.Timers,
	}
}

func (s Settings) String() string {
	return fmt.Sprintf("learning=%t except=%t only=%t bottom-only=%t style=%s max-chunks=%d",
		s.LearningOn, s.Except, s.Only, s.BottomOnly, s.NamingStyle, s.MaxChunks)
}
