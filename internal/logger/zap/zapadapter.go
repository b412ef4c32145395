// Package zap adapts go.uber.org/zap to the logger.Logger interface.
package zap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chorddht/internal/logger"
)

// Adapter wraps a *zap.Logger so it satisfies logger.Logger.
type Adapter struct {
	z *zap.Logger
}

// Wrap adapts an existing *zap.Logger.
func Wrap(z *zap.Logger) *Adapter {
	return &Adapter{z: z}
}

func (a *Adapter) Named(name string) logger.Logger {
	return &Adapter{z: a.z.Named(name)}
}

func (a *Adapter) With(fields ...logger.Field) logger.Logger {
	return &Adapter{z: a.z.With(toZapFields(fields)...)}
}

func (a *Adapter) Debug(msg string, fields ...logger.Field) { a.z.Debug(msg, toZapFields(fields)...) }
func (a *Adapter) Info(msg string, fields ...logger.Field)  { a.z.Info(msg, toZapFields(fields)...) }
func (a *Adapter) Warn(msg string, fields ...logger.Field)  { a.z.Warn(msg, toZapFields(fields)...) }
func (a *Adapter) Error(msg string, fields ...logger.Field) { a.z.Error(msg, toZapFields(fields)...) }

func toZapFields(fields []logger.Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Val))
	}
	return out
}
