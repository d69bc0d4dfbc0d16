package helpers_test

import (
	"strings"
	"testing"

	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/test"
)

func TestTimerNesting(t *testing.T) {
	timer := &helpers.Timer{}
	timer.Begin("Build")
	timer.Begin("Scan")
	timer.End("Scan")
	timer.Begin("Link")
	timer.End("Link")
	timer.End("Build")

	phases := timer.Phases()
	test.AssertEqual(t, len(phases), 3)
	test.AssertEqual(t, strings.HasPrefix(phases[0], "Build: "), true)
	test.AssertEqual(t, strings.HasPrefix(phases[1], "  Scan: "), true)
	test.AssertEqual(t, strings.HasPrefix(phases[2], "  Link: "), true)
}

func TestNilTimer(t *testing.T) {
	var timer *helpers.Timer
	timer.Begin("x")
	timer.End("x")
	test.AssertEqual(t, len(timer.Phases()), 0)
}

func TestTypoDetector(t *testing.T) {
	detector := helpers.MakeTypoDetector([]string{"default", "render", "foo"})

	corrected, ok := detector.MaybeCorrectTypo("rendr")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, corrected, "render")

	corrected, ok = detector.MaybeCorrectTypo("defualt")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, corrected, "default")

	_, ok = detector.MaybeCorrectTypo("fo")
	test.AssertEqual(t, ok, false)
}

func TestPrettyPrintedStack(t *testing.T) {
	stack := helpers.PrettyPrintedStack()
	first := strings.Split(stack, "\n")[0]
	test.AssertEqual(t, strings.HasPrefix(first, "helpers_test.TestPrettyPrintedStack ("), true)
	test.AssertEqual(t, strings.Contains(stack, "runtime."), false)
}
