package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/admetrics/internal/controller"
)

type LogoutCmd struct {
	out io.Writer `kong:"-"`
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	globals.setupLogging()

	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	w := writerOr(l.out, os.Stdout)

	a.ctrl.Start()
	if a.ctrl.State() == controller.LoggedOut {
		_, err = fmt.Fprintln(w, "Not logged in.")
		return err
	}

	if _, notice := a.ctrl.OnLogout(); !notice.IsZero() {
		return errors.New(notice.Message)
	}

	_, err = fmt.Fprintln(w, "Logged out.")
	return err
}
