package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger is the logging interface consumed by the rpc client. A nil Logger
// disables logging entirely.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Config struct {
	Level  Level
	Writer io.Writer // defaults to os.Stderr
}

type levelLogger struct {
	level  Level
	writer io.Writer
	mu     sync.Mutex
}

var (
	debugTag = color.New(color.FgCyan, color.Bold).Sprint("DEBUG")
	infoTag  = color.New(color.FgGreen, color.Bold).Sprint("INFO ")
	warnTag  = color.New(color.FgYellow, color.Bold).Sprint("WARN ")
	errorTag = color.New(color.FgRed, color.Bold).Sprint("ERROR")
)

func New(conf Config) Logger {
	writer := conf.Writer
	if writer == nil {
		writer = os.Stderr
	}
	return &levelLogger{
		level:  conf.Level,
		writer: writer,
	}
}

func (l *levelLogger) log(level Level, tag string, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer, "%s [%s] %s\n", time.Now().Format(time.RFC3339), tag, msg)
}

func (l *levelLogger) Debug(msg string) {
	l.log(LevelDebug, debugTag, msg)
}

func (l *levelLogger) Info(msg string) {
	l.log(LevelInfo, infoTag, msg)
}

func (l *levelLogger) Warn(msg string) {
	l.log(LevelWarn, warnTag, msg)
}

func (l *levelLogger) Error(msg string) {
	l.log(LevelError, errorTag, msg)
}
