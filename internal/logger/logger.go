package logger

// Messages are rendered in the same shape as clang diagnostics: the file,
// line and column, the kind of message, then the offending source line with
// a marker underneath it. Errors and warnings found while linking a module
// graph are collected here and the caller decides whether to print them.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg

	// Warnings whose level has been overridden are filtered before they reach
	// AddMsg. The zero value applies no overrides.
	Overrides map[MsgID]LogLevel
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelVerbose
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
	Note
	Debug
	Verbose
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	case Debug:
		return "debug"
	case Verbose:
		return "verbose"
	default:
		panic("Internal error")
	}
}

type Msg struct {
	Notes []MsgData
	Data  MsgData
	Kind  MsgKind
	ID    MsgID
}

type MsgData struct {
	Location *MsgLocation
	Text     string
}

type MsgLocation struct {
	File     string
	LineText string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
}

type Loc struct {
	// This is the 0-based index of this location from the start of the file, in bytes
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// This is used to represent both file system paths (Namespace == "file") and
// abstract module ids (Namespace != "file"), for example external modules.
type Path struct {
	Text      string
	Namespace string
}

func (a Path) IsFile() bool {
	return a.Namespace == "file"
}

type Source struct {
	// This is used as a unique key to identify this source file. It should never
	// be shown to the user. Use "PrettyPath" for anything user-facing.
	KeyPath Path

	// A mostly platform-independent path relative to the working directory. It
	// is used as the module id in diagnostics and reports.
	PrettyPath string

	Contents string
	Index    uint32
}

func (s *Source) TextForRange(r Range) string {
	return s.Contents[r.Loc.Start:r.End()]
}

func (s *Source) RangeOfString(loc Loc) Range {
	text := s.Contents[loc.Start:]
	if len(text) == 0 {
		return Range{Loc: loc}
	}
	if quote := text[0]; quote == '"' || quote == '\'' || quote == '`' {
		for i := 1; i < len(text); i++ {
			switch text[i] {
			case quote:
				return Range{Loc: loc, Len: int32(i + 1)}
			case '\\':
				i++
			}
		}
	}
	return Range{Loc: loc}
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int          { return len(a) }
func (a sortableMsgs) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a sortableMsgs) Less(i int, j int) bool {
	ai := a[i].Data.Location
	aj := a[j].Data.Location
	if ai == nil || aj == nil {
		if ai != aj {
			return ai == nil
		}
	} else {
		if ai.File != aj.File {
			return ai.File < aj.File
		}
		if ai.Line != aj.Line {
			return ai.Line < aj.Line
		}
		if ai.Column != aj.Column {
			return ai.Column < aj.Column
		}
	}
	if a[i].Kind != a[j].Kind {
		return a[i].Kind < a[j].Kind
	}
	return a[i].Data.Text < a[j].Data.Text
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

type UseColor uint8

const (
	ColorIfTerminal UseColor = iota
	ColorNever
	ColorAlways
)

type OutputOptions struct {
	IncludeSource bool
	MessageLimit  int
	Color         UseColor
	LogLevel      LogLevel
	Overrides     map[MsgID]LogLevel
}

func NewStderrLog(options OutputOptions) Log {
	var mutex sync.Mutex
	var msgs sortableMsgs
	terminalInfo := GetTerminalInfo(os.Stderr)
	errors := 0
	warnings := 0
	shown := 0
	limitWasHit := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	return Log{
		Overrides: options.Overrides,
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			switch msg.Kind {
			case Error:
				errors++
			case Warning:
				warnings++
			}
			if limitWasHit || !levelShowsKind(options.LogLevel, msg.Kind) {
				return
			}
			writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
			shown++

			if options.MessageLimit != 0 && shown >= options.MessageLimit {
				limitWasHit = true
				writeStringWithColor(os.Stderr, fmt.Sprintf(
					"%s shown (disable the limit with --log-limit=0)\n", errorAndWarningSummary(errors, warnings)))
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			if !limitWasHit && options.LogLevel <= LevelInfo && (warnings != 0 || errors != 0) {
				writeStringWithColor(os.Stderr, errorAndWarningSummary(errors, warnings)+"\n")
			}
			sort.Stable(msgs)
			return msgs
		},
	}
}

func levelShowsKind(level LogLevel, kind MsgKind) bool {
	switch kind {
	case Error:
		return level <= LevelError
	case Warning:
		return level <= LevelWarning
	case Info:
		return level <= LevelInfo
	case Debug:
		return level <= LevelDebug
	default:
		return level <= LevelVerbose
	}
}

func NewDeferLog() Log {
	var msgs sortableMsgs
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

func plural(prefix string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, prefix)
	}
	return fmt.Sprintf("%d %ss", count, prefix)
}

func errorAndWarningSummary(errors int, warnings int) string {
	switch {
	case errors == 0:
		return plural("warning", warnings)
	case warnings == 0:
		return plural("error", errors)
	default:
		return fmt.Sprintf("%s and %s", plural("warning", warnings), plural("error", errors))
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
	colorDim    = "\033[37m"
)

var TerminalColors = struct {
	Reset  string
	Red    string
	Green  string
	Yellow string
	Dim    string
}{colorReset, colorRed, colorGreen, colorYellow, colorDim}

func (msg Msg) String(options OutputOptions, terminalInfo TerminalInfo) string {
	kindColor := colorBlue
	switch msg.Kind {
	case Error:
		kindColor = colorRed
	case Warning:
		kindColor = colorYellow
	}

	var sb strings.Builder
	writeData := func(kind string, data MsgData) {
		loc := data.Location
		if terminalInfo.UseColorEscapes {
			sb.WriteString(colorBold)
		}
		if loc != nil {
			fmt.Fprintf(&sb, "%s:%d:%d: ", loc.File, loc.Line, loc.Column)
		}
		if terminalInfo.UseColorEscapes {
			fmt.Fprintf(&sb, "%s%s:%s%s %s%s\n", kindColor, kind, colorReset, colorBold, data.Text, colorReset)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", kind, data.Text)
		}
		if loc != nil && options.IncludeSource {
			line, marker := sourceLineAndMarker(*loc, terminalInfo.Width)
			sb.WriteString("    " + line + "\n")
			if terminalInfo.UseColorEscapes {
				sb.WriteString("    " + colorGreen + marker + colorReset + "\n")
			} else {
				sb.WriteString("    " + marker + "\n")
			}
		}
	}

	writeData(msg.Kind.String(), msg.Data)
	for _, note := range msg.Notes {
		writeData("note", note)
	}
	return sb.String()
}

// Returns the first line of the location's line text with tabs expanded,
// clipped to the terminal width, and a "^~~~" marker line under the range.
func sourceLineAndMarker(loc MsgLocation, width int) (string, string) {
	lineText := loc.LineText
	if end := strings.IndexAny(lineText, "\r\n"); end != -1 {
		lineText = lineText[:end]
	}
	column := clamp(loc.Column, 0, len(lineText))
	length := clamp(loc.Length, 0, len(lineText)-column)

	const spacesPerTab = 2
	before := strings.ReplaceAll(lineText[:column], "\t", strings.Repeat(" ", spacesPerTab))
	marked := strings.ReplaceAll(lineText[column:column+length], "\t", strings.Repeat(" ", spacesPerTab))
	after := strings.ReplaceAll(lineText[column+length:], "\t", strings.Repeat(" ", spacesPerTab))

	if width < 1 {
		width = 80
	}
	width -= 4
	if len(before)+len(marked)+len(after) > width && len(before) > width/2 {
		cut := len(before) - width/2
		before = "..." + before[cut+3:]
	}
	line := before + marked + after
	if len(line) > width && width > 3 {
		line = line[:width-3] + "..."
	}

	marker := "^"
	if len(marked) > 1 {
		marker = strings.Repeat("~", len(marked))
	}
	return line, strings.Repeat(" ", len(before)) + marker
}

func clamp(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func computeLineAndColumn(contents string, offset int) (lineCount int, columnCount int, lineStart int, lineEnd int) {
	var prevCodePoint rune
	if offset > len(contents) {
		offset = len(contents)
	}

	for i, codePoint := range contents[:offset] {
		switch codePoint {
		case '\n':
			lineStart = i + 1
			if prevCodePoint != '\r' {
				lineCount++
			}
		case '\r':
			lineStart = i + 1
			lineCount++
		case '\u2028', '\u2029':
			lineStart = i + 3 // These take three bytes to encode in UTF-8
			lineCount++
		}
		prevCodePoint = codePoint
	}

	lineEnd = len(contents)
	if end := strings.IndexAny(contents[offset:], "\r\n\u2028\u2029"); end != -1 {
		lineEnd = offset + end
	}

	columnCount = offset - lineStart
	return
}

func LocationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}

	lineCount, columnCount, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     lineCount + 1, // 0-based to 1-based
		Column:   columnCount,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

func (log Log) AddError(source *Source, r Range, text string) {
	log.AddMsg(Msg{
		Kind: Error,
		Data: MsgData{Text: text, Location: LocationOrNil(source, r)},
	})
}

func (log Log) AddErrorWithNotes(source *Source, r Range, text string, notes []MsgData) {
	log.AddMsg(Msg{
		Kind:  Error,
		Data:  MsgData{Text: text, Location: LocationOrNil(source, r)},
		Notes: notes,
	})
}

// Warnings and other non-error messages carry an id so that their level can
// be overridden. An override to LevelSilent drops the message entirely.
func (log Log) AddID(id MsgID, kind MsgKind, source *Source, r Range, text string) {
	log.AddIDWithNotes(id, kind, source, r, text, nil)
}

func (log Log) AddIDWithNotes(id MsgID, kind MsgKind, source *Source, r Range, text string, notes []MsgData) {
	if override, ok := log.Overrides[id]; ok {
		switch override {
		case LevelSilent:
			return
		case LevelError:
			kind = Error
		case LevelWarning:
			kind = Warning
		case LevelInfo:
			kind = Info
		case LevelDebug:
			kind = Debug
		case LevelVerbose:
			kind = Verbose
		}
	}
	log.AddMsg(Msg{
		ID:    id,
		Kind:  kind,
		Data:  MsgData{Text: text, Location: LocationOrNil(source, r)},
		Notes: notes,
	})
}

func PrintErrorToStderr(osArgs []string, text string) {
	options := OutputOptions{IncludeSource: true}
	for _, arg := range osArgs {
		switch arg {
		case "--color=false":
			options.Color = ColorNever
		case "--color=true":
			options.Color = ColorAlways
		}
	}
	log := NewStderrLog(options)
	log.AddMsg(Msg{Kind: Error, Data: MsgData{Text: text}})
	log.Done()
}

func hasNoColorEnvironmentVariable() bool {
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return false
}
