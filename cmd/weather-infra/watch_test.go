package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&app{})

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("lint-only"))

	flag := cmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}

func TestDebounceEvents(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls, errCount atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- debounceEvents(ctx, events, errs, 20*time.Millisecond,
			func(name string) bool { return name == "/cfg/weather-infra.yaml" },
			func() { calls.Add(1) },
			func(error) { errCount.Add(1) })
	}()

	for i := 0; i < 3; i++ {
		events <- fsnotify.Event{Name: "/cfg/weather-infra.yaml", Op: fsnotify.Write}
	}
	events <- fsnotify.Event{Name: "/cfg/other.yaml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "/cfg/weather-infra.yaml", Op: fsnotify.Chmod}
	errs <- errors.New("overflow")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "rapid writes coalesce into one rebuild")
	assert.Equal(t, int32(1), errCount.Load())

	events <- fsnotify.Event{Name: "/cfg/weather-infra.yaml", Op: fsnotify.Create}
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("debounceEvents did not return after cancel")
	}
}

func TestDebounceEvents_ClosedChannel(t *testing.T) {
	events := make(chan fsnotify.Event)
	close(events)
	err := debounceEvents(context.Background(), events, nil, time.Millisecond,
		func(string) bool { return true }, func() {}, func(error) {})
	assert.NoError(t, err)
}

func TestRebuild(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "weather-infra.yaml")
	outPath := filepath.Join(dir, "template.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte("variant: minimal\n"), 0o644))

	a := &app{configFile: cfgPath, flags: newRootCmd().PersistentFlags()}
	var out bytes.Buffer

	ok := rebuild(a, watchOptions{outputFormat: "json", outputFile: outPath}, &out)
	require.True(t, ok, out.String())
	assert.Contains(t, out.String(), "(minimal variant)")
	assert.Contains(t, out.String(), "Wrote "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WeatherCluster")

	require.NoError(t, os.WriteFile(cfgPath, []byte("variant: full\n"), 0o644))
	out.Reset()
	ok = rebuild(a, watchOptions{lintOnly: true}, &out)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Config error")
	assert.Contains(t, out.String(), "alertEmail is required")
}

func TestRunWatch_NoConfigFile(t *testing.T) {
	isolate(t)
	a := &app{flags: newRootCmd().PersistentFlags()}
	err := runWatch(context.Background(), a, watchOptions{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no config file found")
}

func TestRunWatch_InvalidConfigKeepsWatching(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather-infra.yaml"), []byte("variant: full\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &app{flags: newRootCmd().PersistentFlags()}
	var out bytes.Buffer
	err := runWatch(ctx, a, watchOptions{lintOnly: true, debounce: time.Millisecond}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Watching: ")
	assert.Contains(t, out.String(), "weather-infra.yaml")
	assert.Contains(t, out.String(), "alertEmail is required")
	assert.Contains(t, out.String(), "Stopping watch")
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)
	assert.Empty(t, findConfigFile())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather-infra.yaml"), []byte("variant: [unclosed\n"), 0o644))
	assert.Equal(t, "weather-infra.yaml", filepath.Base(findConfigFile()), "unparsable files are still found")
}
