// Package notify mantém as notificações transitórias exibidas ao administrador.
package notify

import (
	"sync"
	"time"
)

// Level distingue notificações de sucesso e de erro.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Operações que geram notificações.
const (
	OpAdd      = "add"
	OpEdit     = "edit"
	OpDelete   = "delete"
	OpValidate = "validate"
	OpRefresh  = "refresh"
	OpOpen     = "open"
	OpUpload   = "upload"
	OpSubmit   = "submit"
)

// Notification é uma mensagem fixa associada ao resultado de uma operação.
type Notification struct {
	Level     Level     `json:"level"`
	Op        string    `json:"op"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier é o contrato usado pelo controlador e pelo fluxo do diálogo.
type Notifier interface {
	Success(op, message string)
	Error(op, message string)
}

// Feed guarda as últimas notificações em memória até que a tela as consuma.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
	now   func() time.Time
}

// NewFeed cria um feed que mantém no máximo limit notificações (as mais antigas são descartadas).
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Success(op, message string) { f.push(LevelSuccess, op, message) }

func (f *Feed) Error(op, message string) { f.push(LevelError, op, message) }

func (f *Feed) push(level Level, op, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{Level: level, Op: op, Message: message, CreatedAt: f.now()})
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Drain devolve as notificações pendentes, na ordem de emissão, e esvazia o feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}
