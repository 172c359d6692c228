package screens

import (
	"context"
	"fmt"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/service"
)

// Controller applies event.ChangeTransaction requests to the editor and
// forwards the follow-up screen change.
type Controller struct {
	ctx    context.Context
	editor *service.Editor
	bus    *event.Dispatcher
}

// NewController returns a controller for editor on bus.
func NewController(ctx context.Context, editor *service.Editor, bus *event.Dispatcher) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Controller{ctx: ctx, editor: editor, bus: bus}
}

// Attach starts handling event.ChangeTransaction.
func (c *Controller) Attach() error {
	return c.bus.AddEventListener(event.ChangeTransaction, c, c.onChangeTransaction)
}

// Release stops handling events.
func (c *Controller) Release() {
	c.bus.RemoveEventListener(event.ChangeTransaction, c, c.onChangeTransaction)
}

func (c *Controller) onChangeTransaction(payload any) error {
	change, ok := payload.(*TransactionChange)
	if !ok {
		return nil
	}
	draft, err := c.editor.Apply(c.ctx, change.Request)
	if err != nil {
		return fmt.Errorf("%s transaction: %w", change.Request.Type, err)
	}
	if change.Next == nil {
		return nil
	}
	if change.Next.Data == nil && draft != nil {
		change.Next.Data = draft
	}
	return c.bus.DispatchEvent(event.ChangeScreen, change.Next)
}
