package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

func TestParseSend(t *testing.T) {
	tests := []struct {
		arg     string
		def     string
		want    send
		wantErr bool
	}{
		{arg: "HIT", def: "guard", want: send{Entity: "guard", Event: "HIT"}},
		{arg: "HIT=10 player", def: "guard", want: send{Entity: "guard", Event: "HIT", Params: "10 player"}},
		{arg: "door:unlock", def: "guard", want: send{Entity: "door", Event: "unlock"}},
		{arg: "door:unlock=a=b", want: send{Entity: "door", Event: "unlock", Params: "a=b"}},
		{arg: "HIT", wantErr: true},
		{arg: "door:", wantErr: true},
		{arg: "=5", def: "guard", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseSend(tt.arg, tt.def)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guard.asl")
	require.NoError(t, os.WriteFile(path, []byte(`ON INIT {
  SET §hp 10
  HEROSAY "halt"
}
ON HIT {
  DEC §hp ^#param1
  REFUSE
}
ON WAVE {
  HEROSAY "[wave]"
}
`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", path, "HIT=3", "wave", "--vars"})
	t.Setenv("LOG_LEVEL", "error")
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "refuse")
	assert.Contains(t, text, "halt")
	assert.Contains(t, text, "[wave]")
	assert.Contains(t, text, "§hp")
	assert.Contains(t, text, "1 entities")
}

func TestAdvance_StopsAtEveryDueTime(t *testing.T) {
	clock := &simClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	w, err := world.New(world.Options{Now: clock.Now}, nil)
	require.NoError(t, err)
	_, err = w.Spawn("clock", entity.FlagFix, `ON INIT {
  TIMERfast -m 0 250 INC #fast 1
  TIMERslow 0 2 INC #slow 1
}`)
	require.NoError(t, err)
	w.Init()

	start := clock.now
	fired := advance(w, clock, time.Second)
	assert.Equal(t, 4, fired)
	assert.Equal(t, 4.0, w.Globals.Number("#fast"))
	assert.Zero(t, w.Globals.Number("#slow"))
	assert.Equal(t, start.Add(time.Second), clock.now)

	advance(w, clock, time.Second)
	assert.Equal(t, 8.0, w.Globals.Number("#fast"))
	assert.Equal(t, 1.0, w.Globals.Number("#slow"))
}

func TestAdvance_ZeroIntervalIsBounded(t *testing.T) {
	clock := &simClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	w, err := world.New(world.Options{Now: clock.Now}, nil)
	require.NoError(t, err)
	_, err = w.Spawn("spin", entity.FlagFix, "ON INIT {\n  TIMERspin -m 0 0 INC #spins 1\n}")
	require.NoError(t, err)
	w.Init()

	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Equal(t, maxAdvanceFires, advance(w, clock, time.Second))
	assert.Equal(t, 1, w.Timers.Len())
}
