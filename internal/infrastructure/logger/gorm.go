package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSlowQuery = 200 * time.Millisecond
	defaultLockWait  = 100 * time.Millisecond
)

// SQLLogger sends gorm statements to zap. Each line carries the request id and
// the order/store scope from the context. Row lock reads (SELECT ... FOR UPDATE)
// are reported as "row lock acquired" with the time spent waiting, since that
// is where concurrent receives on one order queue up.
type SQLLogger struct {
	log       *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
	lockWait  time.Duration
}

// SQLLoggerOption configures an SQLLogger
type SQLLoggerOption func(*SQLLogger)

// WithSlowQuery sets the duration above which a statement is logged as slow. Zero disables it.
func WithSlowQuery(d time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) { l.slowQuery = d }
}

// WithLockWait sets the lock wait above which a row lock read is a warning
func WithLockWait(d time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) { l.lockWait = d }
}

// NewSQLLogger creates an SQLLogger writing to the "sql" child of log
func NewSQLLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	l := &SQLLogger{
		log:       log.Named("sql"),
		level:     level,
		slowQuery: defaultSlowQuery,
		lockWait:  defaultLockWait,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *SQLLogger) message(ctx context.Context, threshold gormlogger.LogLevel, at zapcore.Level, msg string, data []any) {
	if l.level < threshold {
		return
	}
	if ce := l.log.Check(at, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(scopeFields(ctx)...)
	}
}

// Trace implements gormlogger.Interface
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	// repositories look rows up and treat not found as a normal answer
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}
	slow := l.slowQuery > 0 && elapsed > l.slowQuery
	waited := l.lockWait > 0 && elapsed > l.lockWait

	switch {
	case err != nil && l.level < gormlogger.Error:
		return
	case err == nil && l.level < gormlogger.Info && !(l.level >= gormlogger.Warn && (slow || waited)):
		return
	}

	sql, rows := fc()
	locking := isRowLock(sql)
	fields := append(scopeFields(ctx),
		zap.String("op", statementKind(sql)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)

	switch {
	case err != nil:
		l.log.Error("statement failed", append(fields, zap.Error(err))...)
	case locking && waited:
		l.log.Warn("row lock acquired", fields...)
	case slow:
		l.log.Warn("slow statement", append(fields, zap.Duration("threshold", l.slowQuery))...)
	case l.level < gormlogger.Info:
	case locking:
		l.log.Debug("row lock acquired", fields...)
	default:
		l.log.Debug("statement", fields...)
	}
}

func scopeFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	scope := GetScope(ctx)
	if scope.OrderID != "" {
		fields = append(fields, zap.String("order_id", scope.OrderID))
	}
	if scope.StoreID != "" {
		fields = append(fields, zap.String("store_id", scope.StoreID))
	}
	return fields
}

func isRowLock(sql string) bool {
	return strings.Contains(strings.ToUpper(sql), "FOR UPDATE")
}

// statementKind is the leading SQL keyword in lower case, e.g. "select"
func statementKind(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \t\n("); i > 0 {
		sql = sql[:i]
	}
	return strings.ToLower(sql)
}

// SQLLogLevel derives the gorm level from the service log level: "debug" logs
// every statement, "error" only failures, anything else slow statements and lock waits too.
func SQLLogLevel(level string) gormlogger.LogLevel {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return gormlogger.Warn
	}
	switch {
	case parsed <= zapcore.DebugLevel:
		return gormlogger.Info
	case parsed >= zapcore.ErrorLevel:
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
