package session

import (
	"context"
	"time"
)

// conversation is the speech channel of a turn. Listen hands the current
// turn its reply and blocks for the next submitted utterance, which then
// becomes the current turn.
type conversation struct {
	controller *Controller
	loop       context.Context
	current    *turn
	prompts    []string
	// answered is set once current has been replied to.
	answered bool
}

func (c *conversation) Say(ctx context.Context, text string) {
	c.prompts = append(c.prompts, text)
	c.controller.speak(ctx, text)
}

func (c *conversation) Listen(ctx context.Context, timeout time.Duration) string {
	ctrl := c.controller
	if timeout <= 0 {
		timeout = ctrl.opts.ListenTimeout
	}
	c.finish(Result{Awaiting: true})
	ctrl.setAwaiting(true)
	defer ctrl.setAwaiting(false)
	ctrl.indicator.ShowListening(ctx)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.loop.Done():
		return ""
	case <-ctx.Done():
		return ""
	case <-timer.C:
		return ""
	case next := <-ctrl.turns:
		c.current = next
		c.answered = false
		ctrl.renew()
		return next.text
	}
}

// finish replies to the current turn with the prompts spoken since it began.
// A turn is answered at most once.
func (c *conversation) finish(result Result) {
	if c.current == nil || c.answered {
		return
	}
	result.TurnID = c.current.id
	result.Text = c.current.text
	result.Prompts = c.prompts
	c.current.reply <- result
	c.answered = true
	c.prompts = nil
}
