package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/kjk/fileops/assert"
)

func TestWriteDaily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w := NewWriteDaily(dir)
	_, err := w.Write([]byte("line 1\n"))
	assert.NoError(t, err)
	_, err = w.Write([]byte("line 2\n"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	d, err := os.ReadFile(filepath.Join(dir, name))
	assert.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(d))

	var nilWriter *WriteDaily
	n, err := nilWriter.Write([]byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, nilWriter.Close())
}

func TestInitWithDir(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	dir := t.TempDir()
	Init(&Config{Dir: dir, Verbose: true})
	Logf("loading %s\n", "rows.csv")
	Logger().V(1).Info("verbose message")
	Close()

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	d, err := os.ReadFile(filepath.Join(dir, name))
	assert.NoError(t, err)
	s := string(d)
	assert.Contains(t, s, "loading rows.csv")
	assert.Contains(t, s, "verbose message")
}

func TestSetLoggerAndIfErrf(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	var lines []string
	SetLogger(funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{}))

	assert.False(t, IfErrf(nil))
	assert.True(t, IfErrf(errors.New("disk full")))
	assert.True(t, IfErrf(errors.New("x"), "failed to save %s", "a.csv"))
	assert.Len(t, lines, 2)
	assert.True(t, strings.Contains(lines[0], "disk full"))
	assert.True(t, strings.Contains(lines[1], "failed to save a.csv"))
}

func TestVerbosef(t *testing.T) {
	prev := Logger()
	prevVerbose := IsVerbose()
	defer func() {
		SetLogger(prev)
		SetVerbose(prevVerbose)
	}()

	var mu sync.Mutex
	var lines []string
	SetLogger(funcr.New(func(prefix, args string) {
		mu.Lock()
		lines = append(lines, args)
		mu.Unlock()
	}, funcr.Options{}))

	SetVerbose(false)
	Verbosef("hidden")
	SetVerbose(true)
	Verbosef("shown %d", 1)
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown 1")

	// toggling while logging from other goroutines
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				SetVerbose(i%2 == 0)
				Verbosef("msg")
			}
		}()
	}
	wg.Wait()
}
