package logger_test

import (
	"testing"

	"github.com/evanw/treeshake/internal/logger"
	"github.com/evanw/treeshake/internal/test"
)

func TestMsgIDs(t *testing.T) {
	for id := logger.MsgID_None; id <= logger.MsgID_END; id++ {
		str := logger.MsgIDToString(id)
		if str == "" {
			continue
		}

		overrides := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(str, logger.LevelError, overrides)
		if len(overrides) == 0 {
			t.Fatalf("Failed to find message id(s) for the string %q", str)
		}

		for k, v := range overrides {
			test.AssertEqual(t, logger.MsgIDToString(k), str)
			test.AssertEqual(t, v, logger.LevelError)
		}
		test.AssertEqual(t, logger.MsgIDToCode(id) != "", true)
	}
}

func TestOverrideSilencesWarning(t *testing.T) {
	log := logger.NewDeferLog()
	log.Overrides = map[logger.MsgID]logger.LogLevel{logger.MsgID_JS_DirectEval: logger.LevelSilent}
	source := &logger.Source{PrettyPath: "main.js", Contents: "eval('x')"}
	log.AddID(logger.MsgID_JS_DirectEval, logger.Warning, source, logger.Range{Len: 4}, "Use of eval")
	log.AddID(logger.MsgID_Bundler_EmptyFacade, logger.Warning, source, logger.Range{}, "Empty")
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].ID, logger.MsgID_Bundler_EmptyFacade)
}

func TestOverridePromotesToError(t *testing.T) {
	log := logger.NewDeferLog()
	log.Overrides = map[logger.MsgID]logger.LogLevel{logger.MsgID_Bundler_ShimmedExport: logger.LevelError}
	log.AddID(logger.MsgID_Bundler_ShimmedExport, logger.Warning, nil, logger.Range{}, "Shimmed")
	test.AssertEqual(t, log.HasErrors(), true)
}

func TestLocation(t *testing.T) {
	source := &logger.Source{PrettyPath: "a.js", Contents: "let a = 1;\nfoo(bar);\n"}
	loc := logger.LocationOrNil(source, logger.Range{Loc: logger.Loc{Start: 15}, Len: 3})
	test.AssertEqual(t, loc.Line, 2)
	test.AssertEqual(t, loc.Column, 4)
	test.AssertEqual(t, loc.LineText, "foo(bar);")
}

func TestMsgString(t *testing.T) {
	source := &logger.Source{PrettyPath: "a.js", Contents: "foo(bar);"}
	msg := logger.Msg{
		Kind: logger.Warning,
		Data: logger.MsgData{Text: "Oops", Location: logger.LocationOrNil(source, logger.Range{Loc: logger.Loc{Start: 4}, Len: 3})},
	}
	text := msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{})
	test.AssertEqualWithDiff(t, text, "a.js:1:4: warning: Oops\n    foo(bar);\n        ~~~\n")
}
