package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bind variables in spans; dev only
	SlowQueryThresh time.Duration // default 200ms
	DBName          string
}

// DBTracingPlugin registers otelgorm plus a slow-query annotator on a gorm.DB.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the plugin. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	registrations := []struct {
		op       string
		register func(name string, fn func(*gorm.DB), before bool) error
	}{
		{"create", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Create().Before("gorm:create").Register(n, fn)
			}
			return db.Callback().Create().After("gorm:create").Register(n, fn)
		}},
		{"query", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Query().Before("gorm:query").Register(n, fn)
			}
			return db.Callback().Query().After("gorm:query").Register(n, fn)
		}},
		{"update", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Update().Before("gorm:update").Register(n, fn)
			}
			return db.Callback().Update().After("gorm:update").Register(n, fn)
		}},
		{"delete", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Delete().Before("gorm:delete").Register(n, fn)
			}
			return db.Callback().Delete().After("gorm:delete").Register(n, fn)
		}},
		{"row", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Row().Before("gorm:row").Register(n, fn)
			}
			return db.Callback().Row().After("gorm:row").Register(n, fn)
		}},
		{"raw", func(n string, fn func(*gorm.DB), before bool) error {
			if before {
				return db.Callback().Raw().Before("gorm:raw").Register(n, fn)
			}
			return db.Callback().Raw().After("gorm:raw").Register(n, fn)
		}},
	}
	for _, r := range registrations {
		if err := r.register("otel_timing:before_"+r.op, markQueryStart, true); err != nil {
			return err
		}
		if err := r.register("otel_slow_query:"+r.op, p.annotate, false); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// annotate adds table, row count, error and slow-query details to the active span
func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(startTime); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		p.logger.Warn("slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}
