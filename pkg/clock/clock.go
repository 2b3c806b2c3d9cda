// Package clock abstrae la hora actual para que los cálculos de estado
// (que dependen de "hoy") sean deterministas en pruebas.
package clock

import (
	"sync"
	"time"
)

// Clock fuente de la hora actual.
type Clock interface {
	Now() time.Time
}

// Real usa time.Now.
type Real struct{}

// Now devuelve la hora del sistema.
func (Real) Now() time.Time { return time.Now() }

// Fake reloj manual para pruebas.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake crea un reloj detenido en t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now devuelve la hora fijada.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance adelanta el reloj d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set fija el reloj en t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
