package logger

import (
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// Options controla o destino e o formato dos logs.
type Options struct {
	Level       string // "debug", "info", "warn", "error"
	Environment string // "production" usa JSON; qualquer outro valor usa o encoder de console
	File        string // Quando definido, os logs também vão para o arquivo, com rotação
}

// ZapLogger é a implementação concreta da interface Logger sobre o zap.
type ZapLogger struct {
	base *zap.Logger
}

// NewLogger cria um Logger JSON no stdout com o nível informado.
func NewLogger(level string) Logger {
	return New(Options{Level: level, Environment: "production"})
}

// New cria um Logger a partir das opções. Esta função é chamada nos cmd/.
func New(opts Options) Logger {
	level := parseLevel(opts.Level)

	var encoder zapcore.Encoder
	if opts.Environment == "production" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opts.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64, // MB
			MaxBackups: 7,
			MaxAge:     30, // dias
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return &ZapLogger{base: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}
}

// NewNop devolve um Logger que descarta tudo (útil em testes silenciosos).
func NewNop() Logger {
	return &ZapLogger{base: zap.NewNop()}
}

// parseLevel converte o nível textual; valores desconhecidos caem em info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// toFields converte o mapa de campos em zap.Field, em ordem estável.
func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

// Implementações da Interface Logger

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug(msg, toFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.base.Info(msg, toFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn(msg, toFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error) {
	l.base.Error(msg, zap.Error(err))
}

// Fatal registra a mensagem e encerra o processo.
func (l *ZapLogger) Fatal(msg string, err error) {
	l.base.Fatal(msg, zap.Error(err))
}

// Sync descarrega os buffers pendentes; chamado no encerramento.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}
