// Package klog is a small dual file+console logger, the ambient logging
// stack named in SPEC_FULL §10.1. The core decoder never imports this
// package — it only returns errors — the CLI uses it for progress and
// diagnostics.
package klog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR"}

type Logger struct {
	mu         sync.Mutex
	fileLogger *log.Logger
	consoleLog *log.Logger
	level      Level
	logFile    *os.File
}

var (
	def  *Logger
	once sync.Once
)

// Init creates the global logger, writing logDir/kvsnap.log plus
// console mirroring for Warn/Error/Console output.
func Init(logDir string, level Level) error {
	var initErr error
	once.Do(func() {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			initErr = fmt.Errorf("create log directory: %w", err)
			return
		}
		logFile, err := os.OpenFile(filepath.Join(logDir, "kvsnap.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = fmt.Errorf("open log file: %w", err)
			return
		}
		def = &Logger{
			fileLogger: log.New(logFile, "", 0),
			consoleLog: log.New(os.Stdout, "", 0),
			level:      level,
			logFile:    logFile,
		}
	})
	return initErr
}

func Close() error {
	if def != nil && def.logFile != nil {
		return def.logFile.Close()
	}
	return nil
}

func formatMessage(level Level, format string, args ...any) string {
	return fmt.Sprintf("%s [%s] %s", time.Now().Format("2006/01/02 15:04:05"), levelNames[level], fmt.Sprintf(format, args...))
}

func logToFile(level Level, format string, args ...any) {
	if def == nil || level < def.level {
		return
	}
	def.mu.Lock()
	defer def.mu.Unlock()
	def.fileLogger.Println(formatMessage(level, format, args...))
}

func logToConsole(format string, args ...any) {
	if def == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	def.mu.Lock()
	defer def.mu.Unlock()
	def.consoleLog.Printf("%s %s", time.Now().Format("2006/01/02 15:04:05"), fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { logToFile(DEBUG, format, args...) }
func Info(format string, args ...any)  { logToFile(INFO, format, args...) }
func Warn(format string, args ...any) {
	logToFile(WARN, format, args...)
	logToConsole(format, args...)
}
func Error(format string, args ...any) {
	logToFile(ERROR, format, args...)
	logToConsole(format, args...)
}
func Console(format string, args ...any) {
	logToConsole(format, args...)
	logToFile(INFO, format, args...)
}

// Writer returns an io.Writer compatible with the standard log package.
func Writer() io.Writer {
	if def != nil {
		return def.logFile
	}
	return os.Stdout
}
