package logger

import (
	"github.com/sirupsen/logrus"
)

// Log всегда инициализирован, чтобы пакеты могли логировать и без Init (например, в тестах).
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// Adapter пробрасывает Errorf в Log, чтобы логгер подходил под goroutine.Logger.
type Adapter struct{}

func (Adapter) Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}
