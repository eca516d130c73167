package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, Init(Options{Level: "debug", Out: &out, Err: &errOut, NoColor: true}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Debugf("debug %s", "line")
	Infof("info %d", 1)
	Warnf("warn %s", "line")
	Errorf("error %s", "line")

	assert.Contains(t, out.String(), "debug line")
	assert.Contains(t, out.String(), "info 1")
	assert.Contains(t, out.String(), "warn line")
	assert.NotContains(t, out.String(), "error line")
	assert.Contains(t, errOut.String(), "error line")
	assert.NotContains(t, errOut.String(), "info 1")
}

func TestInitFiltersBelowLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, Init(Options{Level: "warn", Out: &out, Err: &errOut, NoColor: true}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Infof("hidden")
	Warnf("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestWithAddsFields(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Out: &out, Err: &out, NoColor: true}))
	t.Cleanup(func() { _ = Init(Options{}) })

	l := With("project", "my-project", "dangling")
	l.Info().Msg("scoped")

	assert.Contains(t, out.String(), "project=my-project")
	assert.NotContains(t, out.String(), "dangling")
}

func TestConcurrentLoggingToSharedBuffer(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Out: &out, Err: &out, NoColor: true}))
	t.Cleanup(func() { _ = Init(Options{}) })

	const workers, lines = 8, 50
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := With("worker", fmt.Sprint(w))
			for i := range lines {
				if i%2 == 0 {
					l.Info().Msg("tick")
				} else {
					l.Error().Msg("tock")
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*lines, strings.Count(out.String(), "\n"))
	assert.Equal(t, workers*lines/2, strings.Count(out.String(), "tick"))
	assert.Equal(t, workers*lines/2, strings.Count(out.String(), "tock"))
}

func TestSameWriter(t *testing.T) {
	var a, b bytes.Buffer
	assert.True(t, sameWriter(&a, &a))
	assert.False(t, sameWriter(&a, &b))
	assert.False(t, sameWriter(&a, nil))
	assert.False(t, sameWriter(SpecificLevelWriter{Writer: &a}, SpecificLevelWriter{Writer: &a}), "non-comparable writers are treated as distinct")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
