package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "intake.session.submitted", "intake.session.started")

	assert.Len(t, registry.GetHandlers("intake.session.submitted"), 1)
	assert.Len(t, registry.GetHandlers("intake.session.started"), 1)
	assert.Empty(t, registry.GetHandlers("intake.session.expired"))
	assert.Equal(t, 1, registry.Len())
}

func TestHandlerRegistry_WildcardComesLast(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newTestHandler()
	typed := newTestHandler()

	registry.Register(wildcard)
	registry.Register(typed, "intake.session.submitted")

	handlers := registry.GetHandlers("intake.session.submitted")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])
	assert.Equal(t, 2, registry.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()

	registry.Register(a, "x", "y")
	registry.Register(b, "x")
	registry.Register(a)

	registry.Unregister(a)

	handlers := registry.GetHandlers("x")
	assert.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])
	assert.Empty(t, registry.GetHandlers("y"))
	assert.Equal(t, 1, registry.Len())
}
