package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init arma el logger singleton una sola vez; llamadas posteriores no tienen
// efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el singleton. Sin Init previo cae a un logger dev/info, lo que
// deja usarlo desde tests sin ceremonia.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Sync flushea buffers pendientes (defer en main).
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
