package logging

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger is a ContextLogger backed by zap.
type StructuredLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewStructuredLogger writes entries to w using the given format.
func NewStructuredLogger(w io.Writer, format LogFormat, service, version, level string) *StructuredLogger {
	atom := zap.NewAtomicLevelAt(parseLevel(level).zapLevel())

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var enc zapcore.Encoder
	if format == FormatText {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), atom)
	return NewStructuredLoggerWithCore(core, atom, service, version)
}

// NewStructuredLoggerWithCore wraps an existing zap core. Level filtering is
// applied by the logger in addition to whatever the core enforces.
func NewStructuredLoggerWithCore(core zapcore.Core, atom zap.AtomicLevel, service, version string) *StructuredLogger {
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if service != "" {
		base = base.With(zap.String("service", service))
	}
	if version != "" {
		base = base.With(zap.String("version", version))
	}
	return &StructuredLogger{sugar: base.Sugar(), level: atom}
}

// NewNopLogger discards everything.
func NewNopLogger() *StructuredLogger {
	return &StructuredLogger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevel()}
}

// WithContext returns a logger carrying the game, correlation and request IDs
// found in ctx.
func (l *StructuredLogger) WithContext(ctx context.Context) ContextLogger {
	fields := map[string]interface{}{}
	for _, key := range contextFields {
		if id, ok := stringValue(ctx, key); ok {
			fields[string(key)] = id
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.WithFields(fields)
}

// WithFields returns a logger with additional fields.
func (l *StructuredLogger) WithFields(fields map[string]interface{}) ContextLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &StructuredLogger{sugar: l.sugar.With(kv...), level: l.level}
}

// WithField returns a logger with an additional field.
func (l *StructuredLogger) WithField(key string, value interface{}) ContextLogger {
	return l.WithFields(map[string]interface{}{key: value})
}

// split separates printf operands from trailing key/value pairs.
func split(message string, args []interface{}) (string, []interface{}) {
	if len(args) == 0 {
		return message, nil
	}

	verbs := 0
	if strings.Contains(message, "%") {
		for i := 0; i < len(message)-1; i++ {
			if message[i] == '%' {
				if message[i+1] == '%' {
					i++
					continue
				}
				verbs++
			}
		}
	}
	if verbs > 0 && len(args) >= verbs {
		message = fmt.Sprintf(message, args[:verbs]...)
		args = args[verbs:]
	}

	kv := make([]interface{}, 0, len(args)+1)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		kv = append(kv, key, args[i+1])
	}
	if len(args)%2 == 1 {
		kv = append(kv, "extra", args[len(args)-1])
	}
	return message, kv
}

func (l *StructuredLogger) log(level Level, message string, args ...interface{}) {
	if !l.level.Enabled(level.zapLevel()) {
		return
	}
	msg, kv := split(message, args)
	switch level {
	case DebugLevel:
		l.sugar.Debugw(msg, kv...)
	case InfoLevel:
		l.sugar.Infow(msg, kv...)
	case WarnLevel:
		l.sugar.Warnw(msg, kv...)
	default:
		l.sugar.Errorw(msg, kv...)
	}
}

func (l *StructuredLogger) Debug(message string, args ...interface{}) {
	l.log(DebugLevel, message, args...)
}

func (l *StructuredLogger) Info(message string, args ...interface{}) {
	l.log(InfoLevel, message, args...)
}

func (l *StructuredLogger) Warn(message string, args ...interface{}) {
	l.log(WarnLevel, message, args...)
}

func (l *StructuredLogger) Error(message string, args ...interface{}) {
	l.log(ErrorLevel, message, args...)
}

// Fatal logs and exits the process.
func (l *StructuredLogger) Fatal(message string, args ...interface{}) {
	l.fatal(message, args...)
}

func (l *StructuredLogger) fatal(message string, args ...interface{}) {
	msg, kv := split(message, args)
	l.sugar.Fatalw(msg, kv...)
}

func (l *StructuredLogger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

func (l *StructuredLogger) GetLevel() Level {
	return levelFromZap(l.level.Level())
}

// Sync flushes buffered entries.
func (l *StructuredLogger) Sync() error {
	return l.sugar.Sync()
}
