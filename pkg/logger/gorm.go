package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger forwards gorm statement logs into the structured logger so SQL
// lines carry the same request and session fields as the handler logs.
type GormLogger struct {
	log           *Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger builds a gorm logger. Statements slower than slow are logged
// at warn level; a zero threshold disables slow query reporting.
func NewGormLogger(log *Logger, slow time.Duration) *GormLogger {
	return &GormLogger{log: log, level: gormlogger.Warn, slowThreshold: slow}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.log == nil || g.level < gormlogger.Info {
		return
	}
	g.log.Info(ctx, fmt.Sprintf(msg, args...))
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.log == nil || g.level < gormlogger.Warn {
		return
	}
	g.log.Warn(ctx, fmt.Sprintf(msg, args...))
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.log == nil || g.level < gormlogger.Error {
		return
	}
	g.log.Error(ctx, fmt.Sprintf(msg, args...), nil)
}

func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.log == nil || g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		ctx = g.log.WithFields(ctx, map[string]any{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
		g.log.Error(ctx, "db.query_failed", err)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		ctx = g.log.WithFields(ctx, map[string]any{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
		g.log.Warn(ctx, "db.slow_query")
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		ctx = g.log.WithFields(ctx, map[string]any{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
		g.log.Debug(ctx, "db.query")
	}
}
