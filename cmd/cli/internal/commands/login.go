package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

type LoginCmd struct {
	Username string `help:"Account email." env:"ADMETRICS_USERNAME" required:""`
	Password string `help:"Account password." env:"ADMETRICS_PASSWORD" required:""`

	out io.Writer `kong:"-"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogging()

	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	eff, notice := a.ctrl.OnLogin(l.Username, l.Password)
	if !notice.IsZero() {
		return errors.New(notice.Message)
	}

	res := a.ctrl.Login(ctx, eff)

	// the follow-up fetch is left to metrics and browse
	if _, notice := a.ctrl.OnLoginResult(res); !notice.IsZero() {
		return errors.New(notice.Message)
	}

	sess := a.ctrl.Session()
	log.Info().Str("role", string(sess.Role)).Msg("logged in")

	_, err = fmt.Fprintf(writerOr(l.out, os.Stdout), "Logged in as %s (%s)\n", l.Username, sess.Role)
	return err
}
