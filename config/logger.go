package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	infoLogger    *log.Logger
	warningLogger *log.Logger
	errorLogger   *log.Logger
)

// SetupLogger writes leveled logs to stdout and a per-day file under logs/.
func SetupLogger() error {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("create log dir: %v", err)
	}

	name := filepath.Join(logDir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %v", err)
	}

	w := io.MultiWriter(os.Stdout, logFile)
	infoLogger = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	warningLogger = log.New(w, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

func Info(format string, v ...interface{}) {
	if infoLogger == nil {
		log.Printf(format, v...)
		return
	}
	infoLogger.Printf(format, v...)
}

func Warning(format string, v ...interface{}) {
	if warningLogger == nil {
		log.Printf(format, v...)
		return
	}
	warningLogger.Printf(format, v...)
}

func Error(format string, v ...interface{}) {
	if errorLogger == nil {
		log.Printf(format, v...)
		return
	}
	errorLogger.Printf(format, v...)
}
