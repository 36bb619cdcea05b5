// Package timer runs script statements later. A timer remembers the offset
// of a statement and re-enters the engine there with EXECUTELINE, once per
// interval, until its count runs out.
package timer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/script"
)

// Timer describes one scheduled statement.
type Timer struct {
	// Name is lowercased. Timers are unique per owner and name.
	Name   string
	Owner  *entity.Entity
	Script *script.Script
	// Line is the offset of the statement to run.
	Line     int
	Interval time.Duration
	// Count is the number of runs left; 0 repeats until stopped.
	Count int
}

type key struct {
	owner  *entity.Entity
	script *script.Script
	name   string
}

type scheduled struct {
	Timer
	due     time.Time
	seq     uint64
	stopped bool
}

// Scheduler keeps timers ordered by due time. It is driven by Tick and is
// not safe for concurrent use.
type Scheduler struct {
	engine *script.Engine
	logger *slog.Logger
	Now    func() time.Time

	queue  *minHeap[*scheduled]
	active map[key]*scheduled
	seq    uint64
	named  int
}

// NewScheduler creates a scheduler that fires timers through engine.
func NewScheduler(engine *script.Engine, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine: engine,
		logger: logger,
		Now:    time.Now,
		queue: newHeap(func(a, b *scheduled) bool {
			if a.due.Equal(b.due) {
				return a.seq < b.seq
			}
			return a.due.Before(b.due)
		}),
		active: make(map[key]*scheduled),
	}
}

func keyOf(t Timer) key {
	return key{owner: t.Owner, script: t.Script, name: t.Name}
}

// Start schedules t, replacing a running timer with the same owner and name.
// An empty name gets a generated one. Start returns the name used.
func (s *Scheduler) Start(t Timer) string {
	t.Name = strings.ToLower(t.Name)
	if t.Name == "" {
		s.named++
		t.Name = fmt.Sprintf("timer_%d", s.named)
	}
	s.Stop(t.Owner, t.Script, t.Name)

	s.seq++
	item := &scheduled{Timer: t, due: s.Now().Add(t.Interval), seq: s.seq}
	s.active[keyOf(t)] = item
	s.queue.Push(item)

	s.logger.Debug("Timer started",
		"timer", t.Name,
		"interval", t.Interval,
		"count", t.Count,
		"script", scriptName(t.Script))
	return t.Name
}

// Stop cancels the named timer. It reports whether one was running.
func (s *Scheduler) Stop(owner *entity.Entity, sc *script.Script, name string) bool {
	k := key{owner: owner, script: sc, name: strings.ToLower(name)}
	item, ok := s.active[k]
	if !ok {
		return false
	}
	item.stopped = true
	delete(s.active, k)
	return true
}

// StopOwner cancels every timer started by owner's script and returns how
// many were running.
func (s *Scheduler) StopOwner(owner *entity.Entity, sc *script.Script) int {
	n := 0
	for k, item := range s.active {
		if k.owner == owner && k.script == sc {
			item.stopped = true
			delete(s.active, k)
			n++
		}
	}
	return n
}

// StopAll cancels every timer.
func (s *Scheduler) StopAll() {
	for k, item := range s.active {
		item.stopped = true
		delete(s.active, k)
	}
}

// Len returns the number of running timers.
func (s *Scheduler) Len() int {
	return len(s.active)
}

// Next returns when the earliest running timer is due.
func (s *Scheduler) Next() (time.Time, bool) {
	for {
		item, ok := s.queue.Peek()
		if !ok {
			return time.Time{}, false
		}
		if !item.stopped {
			return item.due, true
		}
		s.queue.Pop()
	}
}

// Tick fires every timer due at now and returns how many fired. A timer
// fires at most once per tick.
func (s *Scheduler) Tick(now time.Time) int {
	var due []*scheduled
	for {
		item, ok := s.queue.Peek()
		if !ok || item.due.After(now) {
			break
		}
		s.queue.Pop()
		if !item.stopped {
			due = append(due, item)
		}
	}

	fired := 0
	for _, item := range due {
		// an earlier timer in this tick may have stopped it
		if item.stopped {
			continue
		}
		s.fire(item)
		fired++

		if item.stopped {
			continue
		}
		if item.Count > 0 {
			item.Count--
			if item.Count == 0 {
				item.stopped = true
				delete(s.active, keyOf(item.Timer))
				continue
			}
		}
		item.due = item.due.Add(item.Interval)
		if !item.due.After(now) {
			item.due = now.Add(item.Interval)
		}
		s.seq++
		item.seq = s.seq
		s.queue.Push(item)
	}
	return fired
}

func (s *Scheduler) fire(item *scheduled) {
	res, err := s.engine.Dispatch(script.Request{
		Script: item.Script,
		Event:  script.EventExecuteLine,
		Entity: item.Owner,
		Line:   item.Line,
	})
	if err != nil {
		s.logger.Warn("Timer statement failed",
			"timer", item.Name,
			"script", scriptName(item.Script),
			"result", res.String(),
			"error", err)
	}
}

func scriptName(sc *script.Script) string {
	if sc == nil {
		return ""
	}
	return sc.Name
}
