package helpers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evanw/treeshake/internal/logger"
)

// Records nested phases of a build. A nil timer is valid and records nothing,
// so callers never need to check whether timing was requested.
type Timer struct {
	data  []timerData
	mutex sync.Mutex
}

type timerData struct {
	time  time.Time
	name  string
	isEnd bool
}

func (t *Timer) Begin(name string) {
	if t != nil {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		t.data = append(t.data, timerData{
			name: name,
			time: time.Now(),
		})
	}
}

func (t *Timer) End(name string) {
	if t != nil {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		t.data = append(t.data, timerData{
			name:  name,
			time:  time.Now(),
			isEnd: true,
		})
	}
}

func (t *Timer) Fork() *Timer {
	if t != nil {
		return &Timer{}
	}
	return nil
}

func (t *Timer) Join(other *Timer) {
	if t != nil && other != nil {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		t.data = append(t.data, other.data...)
	}
}

// Phases lists each completed phase with its duration in nesting order.
func (t *Timer) Phases() []string {
	if t == nil {
		return nil
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()

	type pair struct {
		timerData
		index int
	}

	var lines []string
	var stack []pair
	indent := 0

	for _, item := range t.data {
		if !item.isEnd {
			stack = append(stack, pair{timerData: item, index: len(lines)})
			lines = append(lines, "")
			indent++
			continue
		}
		indent--
		last := len(stack) - 1
		top := stack[last]
		stack = stack[:last]
		if item.name != top.name {
			panic("Internal error")
		}
		lines[top.index] = fmt.Sprintf("%s%s: %dms",
			strings.Repeat("  ", indent),
			top.name,
			item.time.Sub(top.time).Milliseconds())
	}
	return lines
}

func (t *Timer) Log(log logger.Log) {
	if t == nil {
		return
	}

	var notes []logger.MsgData
	for _, line := range t.Phases() {
		notes = append(notes, logger.MsgData{Text: line})
	}

	log.AddIDWithNotes(logger.MsgID_None, logger.Info, nil, logger.Range{},
		"Timing information (times may not nest hierarchically due to parallelism)", notes)
}
