package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/common"
	"github.com/i474232898/voice-assistant/internal/reminder"
)

const (
	maxDigestLines = 10
	maxLineLen     = 80
)

// Lister is the read side of the reminder service.
type Lister interface {
	List(ctx context.Context) ([]reminder.Reminder, error)
}

// Digest texts the list of stored reminders to one recipient.
type Digest struct {
	reminders Lister
	sender    Sender
	to        string
	logger    zerolog.Logger
}

func NewDigest(reminders Lister, sender Sender, to string, logger zerolog.Logger) *Digest {
	return &Digest{
		reminders: reminders,
		sender:    sender,
		to:        to,
		logger:    logger,
	}
}

// Send delivers the digest and returns how many reminders it covered.
// Nothing is sent when there are no reminders.
func (d *Digest) Send(ctx context.Context) (int, error) {
	reminders, err := d.reminders.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load reminders: %w", err)
	}
	if len(reminders) == 0 {
		d.logger.Debug().Msg("no reminders; digest skipped")
		return 0, nil
	}

	if err := d.sender.Send(ctx, d.to, Format(reminders)); err != nil {
		return 0, err
	}

	d.logger.Info().
		Int("reminders", len(reminders)).
		Str("to", d.to).
		Msg("reminder digest sent")
	return len(reminders), nil
}

// Format renders at most ten reminders, one per line, with a count of the
// ones left out.
func Format(reminders []reminder.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d reminder(s):", len(reminders))

	for i, r := range reminders {
		if i == maxDigestLines {
			fmt.Fprintf(&b, "\n...and %d more", len(reminders)-maxDigestLines)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, common.Truncate(r.Title(), maxLineLen))
	}
	return b.String()
}
