package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   logr.Logger
	zapLog   *zap.Logger
	dailyLog *WriteDaily
	mu       sync.Mutex

	// if true, Verbosef() will log messages
	verbose atomic.Bool
)

func init() {
	zapLog = zap.New(newCore(nil, zapcore.InfoLevel))
	logger = zapr.NewLogger(zapLog)
}

// WriteDaily writes to a file named after the current day (YYYY-MM-DD.txt)
// in Dir, switching to a new file when the day changes
type WriteDaily struct {
	Dir         string
	currentDate int // YYYYMMDD format
	file        *os.File
	mu          sync.Mutex
}

func NewWriteDaily(dir string) *WriteDaily {
	return &WriteDaily{
		Dir: dir,
	}
}

// dayFromTime converts a time.Time to YYYYMMDD integer format
func dayFromTime(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func (w *WriteDaily) openForToday() error {
	now := time.Now().UTC()
	today := dayFromTime(now)

	if w.file != nil && w.currentDate != today {
		if err := w.close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return nil
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}
	name := filepath.Join(w.Dir, now.Format("2006-01-02")+".txt")
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.currentDate = today
	return nil
}

// Write implements io.Writer
// it's safe to call on nil receiver
func (w *WriteDaily) Write(d []byte) (int, error) {
	if w == nil {
		return len(d), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.openForToday(); err != nil {
		return 0, err
	}
	return w.file.Write(d)
}

func (w *WriteDaily) close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.currentDate = 0
	return err
}

// Sync flushes the daily log file to disk
// it's safe to call on nil receiver
func (w *WriteDaily) Sync() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// Close closes the daily log file
// it's safe to call on nil receiver
func (w *WriteDaily) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.close()
}

type Config struct {
	// if set, logs are also written to daily files in this directory
	Dir string
	// if true, V(1) messages are logged as well
	Verbose bool
}

func newCore(daily *WriteDaily, level zapcore.Level) zapcore.Core {
	encCfg := zap.NewDevelopmentEncoderConfig()
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	if daily == nil {
		return console
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	file := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(daily), level)
	return zapcore.NewTee(console, file)
}

// Init replaces the global logger with one configured by config
func Init(config *Config) {
	mu.Lock()
	defer mu.Unlock()

	closeDaily()
	verbose.Store(config.Verbose)
	level := zapcore.InfoLevel
	if config.Verbose {
		// logr V(1) maps to zap level -1
		level = zapcore.DebugLevel
	}
	if config.Dir != "" {
		dailyLog = NewWriteDaily(config.Dir)
	}
	zapLog = zap.New(newCore(dailyLog, level))
	logger = zapr.NewLogger(zapLog)
}

func closeDaily() {
	if zapLog != nil {
		_ = zapLog.Sync()
	}
	if dailyLog != nil {
		_ = dailyLog.Sync()
		_ = dailyLog.Close()
		dailyLog = nil
	}
}

// Close flushes and closes log files
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeDaily()
}

// Logger returns the global logger
func Logger() logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetLogger sets the global logger
func SetLogger(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Logf logs a formatted message at info level
func Logf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	Logger().Info(strings.TrimSuffix(s, "\n"))
}

// SetVerbose turns logging of Verbosef messages on or off
func SetVerbose(v bool) {
	verbose.Store(v)
}

// IsVerbose returns true if Verbosef messages are logged
func IsVerbose() bool {
	return verbose.Load()
}

// Verbosef is Logf that only logs if verbose logging is on
func Verbosef(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	Logf(format, args...)
}

func GetCallstackFrames(skip int) []string {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	frames := runtime.CallersFrames(callers[:n])
	var cs []string
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		s := frame.File + ":" + strconv.Itoa(frame.Line)
		cs = append(cs, s)
	}
	return cs
}

func GetCallstack(skip int) string {
	frames := GetCallstackFrames(skip + 1)
	return strings.Join(frames, "\n")
}

// Errorf logs an error message along with the callstack
func Errorf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	cs := GetCallstack(1)
	Logger().Error(nil, strings.TrimSuffix(s, "\n"), "callstack", cs)
}

// if err != nil, log and return true
// IfErrf(err) => logs err.Error()
// IfErrf(err, "error is: %v", err) => logs message formatted
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	if len(a) == 0 {
		Errorf("%s", err.Error())
		return true
	}
	s, ok := a[0].(string)
	if !ok {
		s = fmt.Sprintf("%s", a[0])
	}
	if len(a) > 1 {
		s = fmt.Sprintf(s, a[1:]...)
	}
	Errorf("%s", s)
	return true
}
