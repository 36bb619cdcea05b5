package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

// send is one event named on the command line: [entity:]EVENT[=params].
type send struct {
	Entity string
	Event  string
	Params string
}

func parseSend(arg, defaultEntity string) (send, error) {
	s := send{Entity: defaultEntity}
	if i := strings.IndexByte(arg, '='); i >= 0 {
		arg, s.Params = arg[:i], arg[i+1:]
	}
	if i := strings.IndexByte(arg, ':'); i >= 0 {
		s.Entity, arg = arg[:i], arg[i+1:]
	}
	s.Event = strings.TrimSpace(arg)
	if s.Event == "" || s.Entity == "" {
		return send{}, fmt.Errorf("bad event %q: want [entity:]EVENT[=params]", arg)
	}
	return s, nil
}

type outcome struct {
	send
	Result string
	Took   time.Duration
}

// deliver sends each event in order. Standard names use the event table,
// others run "ON <name>".
func deliver(w *world.World, sends []send) []outcome {
	out := make([]outcome, 0, len(sends))
	for _, s := range sends {
		start := time.Now()
		var (
			res script.Result
			err error
		)
		if ev, ok := script.ParseEvent(s.Event); ok {
			res, err = w.Send(s.Entity, ev, s.Params)
		} else {
			res, err = w.SendNamed(s.Entity, s.Event, s.Params)
		}
		o := outcome{send: s, Result: res.String(), Took: time.Since(start)}
		if err != nil {
			o.Result = "error: " + err.Error()
		}
		out = append(out, o)
	}
	return out
}
