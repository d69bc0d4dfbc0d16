package config

import (
	"strings"

	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/logger"
)

type TreeShakingOptions struct {
	// When false every statement of every executed module is included
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Honor "/*#__PURE__*/" and "/*@__PURE__*/" call annotations
	Annotations bool `koanf:"annotations" json:"annotations" yaml:"annotations"`

	// The side-effect flag of modules not matched by "NoSideEffects"
	ModuleSideEffects bool `koanf:"moduleSideEffects" json:"moduleSideEffects" yaml:"moduleSideEffects"`

	// Module ids (glob patterns) whose top-level code is assumed to have no
	// side effects. Such modules are only executed if something they export
	// is used.
	NoSideEffects []string `koanf:"noSideEffects" json:"noSideEffects" yaml:"noSideEffects"`

	// Reading a property of an unknown value may trigger a getter
	PropertyReadSideEffects bool `koanf:"propertyReadSideEffects" json:"propertyReadSideEffects" yaml:"propertyReadSideEffects"`

	// Everything inside a "try" block is included and everything it calls
	// is deoptimized
	TryCatchDeoptimization bool `koanf:"tryCatchDeoptimization" json:"tryCatchDeoptimization" yaml:"tryCatchDeoptimization"`

	// Reading an unknown global may throw a ReferenceError
	UnknownGlobalSideEffects bool `koanf:"unknownGlobalSideEffects" json:"unknownGlobalSideEffects" yaml:"unknownGlobalSideEffects"`
}

type Options struct {
	TreeShaking TreeShakingOptions `koanf:"treeshake" json:"treeshake" yaml:"treeshake"`

	// Missing imports resolve to a shim variable with a warning instead of
	// failing the build
	ShimMissingExports bool `koanf:"shimMissingExports" json:"shimMissingExports" yaml:"shimMissingExports"`

	// Each entry is a module id glob, optionally followed by "=name" to pick
	// the export that provides the synthetic named exports. The name
	// defaults to "default".
	SyntheticNamedExports []string `koanf:"syntheticNamedExports" json:"syntheticNamedExports" yaml:"syntheticNamedExports"`

	// Bare specifiers and paths (glob patterns) that stay outside the graph
	External []string `koanf:"external" json:"external" yaml:"external"`

	LogLevel    string            `koanf:"logLevel" json:"logLevel" yaml:"logLevel"`
	LogOverride map[string]string `koanf:"logOverride" json:"logOverride" yaml:"logOverride"`
}

func DefaultOptions() *Options {
	return &Options{
		TreeShaking: TreeShakingOptions{
			Enabled:                  true,
			Annotations:              true,
			ModuleSideEffects:        true,
			PropertyReadSideEffects:  true,
			TryCatchDeoptimization:   true,
			UnknownGlobalSideEffects: true,
		},
		LogLevel: "warning",
	}
}

// The glob patterns of the options compiled once per build
type ProcessedOptions struct {
	Options

	noSideEffects []globRule
	synthetic     []globRule
	external      []globRule
}

type globRule struct {
	pattern []helpers.GlobPart
	value   string
}

func compileRules(patterns []string, defaultValue string) (rules []globRule) {
	for _, text := range patterns {
		value := defaultValue
		if equals := strings.LastIndexByte(text, '='); equals != -1 && defaultValue != "" {
			text, value = text[:equals], text[equals+1:]
		}
		rules = append(rules, globRule{pattern: helpers.ParseGlobPattern(text), value: value})
	}
	return
}

func matchRules(rules []globRule, id string) (string, bool) {
	for _, rule := range rules {
		if helpers.GlobMatches(rule.pattern, id) {
			return rule.value, true
		}
	}
	return "", false
}

func ProcessOptions(options Options) *ProcessedOptions {
	return &ProcessedOptions{
		Options:       options,
		noSideEffects: compileRules(options.TreeShaking.NoSideEffects, ""),
		synthetic:     compileRules(options.SyntheticNamedExports, "default"),
		external:      compileRules(options.External, ""),
	}
}

func (options *ProcessedOptions) ModuleSideEffects(id string) bool {
	if options.MatchesNoSideEffects(id) {
		return false
	}
	return options.TreeShaking.ModuleSideEffects
}

// Whether a "noSideEffects" pattern names this module. Such a rule wins
// over what the package of the module says about itself.
func (options *ProcessedOptions) MatchesNoSideEffects(id string) bool {
	_, ok := matchRules(options.noSideEffects, id)
	return ok
}

// Returns the name of the export that provides the synthetic named exports
// of the module with this id, or "" if the module has none.
func (options *ProcessedOptions) SyntheticNamedExports(id string) string {
	name, _ := matchRules(options.synthetic, id)
	return name
}

func (options *ProcessedOptions) IsExternal(specifier string) bool {
	_, ok := matchRules(options.external, specifier)
	return ok
}

func ParseLogLevel(text string) (logger.LogLevel, bool) {
	switch text {
	case "verbose":
		return logger.LevelVerbose, true
	case "debug":
		return logger.LevelDebug, true
	case "info":
		return logger.LevelInfo, true
	case "warning", "":
		return logger.LevelWarning, true
	case "error":
		return logger.LevelError, true
	case "silent":
		return logger.LevelSilent, true
	}
	return logger.LevelNone, false
}

func (options *Options) LogOverrides() map[logger.MsgID]logger.LogLevel {
	overrides := make(map[logger.MsgID]logger.LogLevel)
	for name, level := range options.LogOverride {
		if logLevel, ok := ParseLogLevel(level); ok {
			logger.StringToMsgIDs(name, logLevel, overrides)
		}
	}
	return overrides
}
