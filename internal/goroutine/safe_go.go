package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/mkravchenko/lendit-backend/internal/logger"
)

// SafeGoWithContext запускает горутину с обработкой panic. Используется для
// фоновых процессов (ws-хаб, диспетчер уведомлений), падение которых не должно
// ронять сервер.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log().Errorf("panic в горутине: %v\nstack:\n%s", r, debug.Stack())
			}
		}()
		fn(ctx)
	}()
}

// SafeGo запускает горутину с обработкой panic без контекста.
func SafeGo(fn func()) {
	SafeGoWithContext(context.Background(), func(context.Context) { fn() })
}

func log() logrus.FieldLogger {
	if logger.Log != nil {
		return logger.Log
	}
	return logrus.StandardLogger()
}
