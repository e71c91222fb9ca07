package internal

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = " "
	SeverityWarning Severity = "?"
	SeverityError   Severity = "!"
	SeverityRaw     Severity = "-"
)

// Logger writes feature events to stdout and, when a database is attached,
// mirrors them to the log collection. Writes go through a buffered channel so
// callers never block on slow sinks; events are dropped when the buffer fills.
type Logger struct {
	database  Database
	debugMode bool
	events    chan *logRecord
	dropped   atomic.Int64
}

type logRecord struct {
	severity Severity
	message  *FeatureLogMessage
}

func NewLogger() *Logger {
	logger := &Logger{
		events: make(chan *logRecord, 100),
	}
	go logger.writeLoop()
	return logger
}

func (l *Logger) SetDebugMode(debugMode bool) {
	l.debugMode = debugMode
}

func (l *Logger) SetDatabase(database Database) {
	l.database = database
}

// Dropped reports how many events were discarded because the buffer was full.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

func (l *Logger) writeLoop() {
	for record := range l.events {
		message := record.message
		log.Printf("%s [%s] %s: %s", record.severity, message.ChargePointId, message.Feature, message.Text)
		if l.database == nil {
			continue
		}
		if err := l.database.WriteLogMessage(message); err != nil {
			log.Printf("%s log write to database failed: %s", SeverityError, err)
		}
	}
}

func (l *Logger) submit(severity Severity, feature, id, text string) {
	if id == "" {
		id = "*"
	}
	record := &logRecord{
		severity: severity,
		message: &FeatureLogMessage{
			Time:          time.Now().Format("2006-01-02 15:04:05"),
			TimeStamp:     time.Now().UTC(),
			Importance:    string(severity),
			Feature:       feature,
			ChargePointId: id,
			Text:          text,
		},
	}
	select {
	case l.events <- record:
	default:
		l.dropped.Add(1)
	}
}

func (l *Logger) FeatureEvent(feature, id, text string) {
	l.submit(SeverityInfo, feature, id, text)
}

func (l *Logger) Debug(text string) {
	l.submit(SeverityInfo, "info", "", text)
}

func (l *Logger) Warn(text string) {
	l.submit(SeverityWarning, "warning", "", text)
}

func (l *Logger) Error(text string, err error) {
	l.submit(SeverityError, "error", "", fmt.Sprintf("%s: %s", text, err))
}

func (l *Logger) RawDataEvent(direction, data string) {
	if l.debugMode {
		l.submit(SeverityRaw, "raw", "", fmt.Sprintf("%s: %s", direction, data))
	}
}
