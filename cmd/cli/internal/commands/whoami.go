package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/session"
)

// WhoamiCmd shows the saved session. Token claims are decoded for display
// only, nothing is sent to the API.
type WhoamiCmd struct {
	out io.Writer        `kong:"-"`
	now func() time.Time `kong:"-"`
}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogging()

	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	sess := session.NewStore(a.store).Restore()
	if sess.IsZero() {
		return ErrNotLoggedIn
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}

	tw := tabwriter.NewWriter(writerOr(c.out, os.Stdout), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "API:\t%s\n", globals.APIURL)
	fmt.Fprintf(tw, "Role:\t%s\n", sess.Role)

	claims, err := session.ParseClaims(sess.Token)
	switch {
	case errors.Is(err, session.ErrOpaqueToken):
		log.Debug().Err(err).Msg("token claims unavailable")
		fmt.Fprintf(tw, "Token:\topaque\n")
	case err != nil:
		return err
	default:
		if claims.Subject != "" {
			fmt.Fprintf(tw, "Subject:\t%s\n", claims.Subject)
		}
		switch {
		case claims.ExpiresAt.IsZero():
			fmt.Fprintf(tw, "Expires:\tnever\n")
		case claims.Expired(now()):
			fmt.Fprintf(tw, "Expires:\t%s (expired)\n", claims.ExpiresAt.Format(time.RFC3339))
		default:
			fmt.Fprintf(tw, "Expires:\t%s\n", claims.ExpiresAt.Format(time.RFC3339))
		}
	}

	return tw.Flush()
}
