package console

import (
	"context"
	"fmt"
	"io"

	"marketcolor/internal/domain"
)

// Deliverer writes the briefing to w instead of a chat channel. It backs
// dry runs.
type Deliverer struct {
	w io.Writer
}

func NewDeliverer(w io.Writer) *Deliverer {
	return &Deliverer{w: w}
}

var _ domain.Deliverer = (*Deliverer)(nil)

func (d *Deliverer) Deliver(_ context.Context, text string) error {
	if _, err := fmt.Fprintln(d.w, text); err != nil {
		return fmt.Errorf("%w: write briefing: %w", domain.ErrDeliveryFailed, err)
	}
	return nil
}
