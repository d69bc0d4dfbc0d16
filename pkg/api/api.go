package api

type Location struct {
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`     // 1-based
	Column   int    `json:"column" yaml:"column"` // 0-based, in bytes
	Length   int    `json:"length" yaml:"length"` // in bytes
	LineText string `json:"lineText" yaml:"lineText"`
}

type Message struct {
	// A code like "CIRCULAR_DEPENDENCY", or "" for messages without one
	Code     string    `json:"code,omitempty" yaml:"code,omitempty"`
	Text     string    `json:"text" yaml:"text"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelVerbose
	LogLevelDebug
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

type TreeShaking uint8

const (
	TreeShakingDefault TreeShaking = iota
	TreeShakingFalse
	TreeShakingTrue
)

////////////////////////////////////////////////////////////////////////////////
// Shake API

// The boolean options are phrased so that the zero value is the default
type ShakeOptions struct {
	Color    StderrColor
	LogLimit int

	// Messages are printed to stderr at this level and above. They are
	// always returned in the result.
	LogLevel    LogLevel
	LogOverride map[string]LogLevel

	EntryPoints []string

	// A YAML, JSON or TOML file with the options of a build. When this is
	// set, the tree-shaking fields below are ignored.
	ConfigFile string

	TreeShaking                TreeShaking
	IgnoreAnnotations          bool
	NoModuleSideEffects        bool
	NoSideEffects              []string
	NoPropertyReadSideEffects  bool
	NoTryCatchDeoptimization   bool
	NoUnknownGlobalSideEffects bool

	ShimMissingExports    bool
	SyntheticNamedExports []string
	External              []string

	// Keeps parsed files between calls
	Cache *Cache

	// Timing of each phase is logged at the verbose level
	Timing bool
}

type ShakeResult struct {
	Errors   []Message `json:"errors" yaml:"errors"`
	Warnings []Message `json:"warnings" yaml:"warnings"`

	// In execution order
	Modules   []ModuleReport   `json:"modules" yaml:"modules"`
	Externals []ExternalReport `json:"externals" yaml:"externals"`

	// Every import cycle as a path that starts and ends with the same module
	Cycles [][]string `json:"cycles,omitempty" yaml:"cycles,omitempty"`

	// Modules that are part of the same strongly connected component
	CycleGroups [][]string `json:"cycleGroups,omitempty" yaml:"cycleGroups,omitempty"`
}

type ModuleReport struct {
	ID       string `json:"id" yaml:"id"`
	IsEntry  bool   `json:"isEntry" yaml:"isEntry"`
	Executed bool   `json:"executed" yaml:"executed"`
	Included bool   `json:"included" yaml:"included"`

	Exports         []string `json:"exports" yaml:"exports"`
	IncludedExports []string `json:"includedExports" yaml:"includedExports"`

	// The modules this one needs loaded before it, by id
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// Top-level statements, not counting import and export syntax
	Statements         int `json:"statements" yaml:"statements"`
	IncludedStatements int `json:"includedStatements" yaml:"includedStatements"`

	// The source with everything that was not included removed
	Code string `json:"code" yaml:"code"`
}

type ExternalReport struct {
	ID        string   `json:"id" yaml:"id"`
	Used      bool     `json:"used" yaml:"used"`
	UsedNames []string `json:"usedNames" yaml:"usedNames"`
	Importers []string `json:"importers" yaml:"importers"`
}

func Shake(options ShakeOptions) ShakeResult {
	return shakeImpl(options, nil)
}
