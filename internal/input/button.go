// Package input delivers debounced button presses from the Linux GPIO
// character device.
package input

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Button is a single push button wired active-low between a GPIO line
// and ground. Presses arrive on a small buffered channel; when the
// consumer lags, presses are dropped rather than blocking the kernel
// event handler.
type Button struct {
	line   *gpiocdev.Line
	events chan struct{}
}

// NewButton requests the line with hardware debounce and falling-edge
// detection.
func NewButton(chip string, offset int, debounce time.Duration) (*Button, error) {
	b := &Button{events: make(chan struct{}, 4)}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithConsumer("satbadge-button"),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case b.events <- struct{}{}:
			default:
			}
		}))
	if err != nil {
		return nil, fmt.Errorf("input: request %s line %d: %w", chip, offset, err)
	}
	b.line = line
	return b, nil
}

// Events returns the press channel.
func (b *Button) Events() <-chan struct{} {
	return b.events
}

func (b *Button) Close() error {
	if b.line == nil {
		return nil
	}
	err := b.line.Close()
	b.line = nil
	return err
}
