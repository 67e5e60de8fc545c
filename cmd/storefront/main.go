package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront/internal/config"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/observability"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/storefront"
	"github.com/rs/zerolog/log"
)

const usage = `usage: storefront <command> [arguments]

commands:
  login -email E [-password P]     sign in (password also read from STOREFRONT_PASSWORD)
  login-google -id-token T         sign in with a Google ID token
  logout                           sign out and forget the stored credentials
  whoami                           show the signed-in user
  products [name]                  list products, optionally filtered by name
  product <id>                     show one product
  categories                       show the category tree
  cart                             show the cart
  cart add <product-id>            add one unit
  cart set <product-id> <qty>      set the quantity (0 removes)
  cart remove <product-id>         remove the line
  cart clear                       empty the cart
  checkout [address flags]         summarise the cart for delivery; blank street,
                                   district, city and state are filled from -postal-code
  shipping -postal-code C          quote delivery to a postal code
  favorites                        list favourites
  favorites toggle <product-id>    add or remove a favourite
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := config.New()
	observability.SetupLogging(os.Stderr, c.GetEnv(), c.GetLogLevel())
	if err := observability.InitSentry(c.GetSentryDSN(), c.GetEnv(), c.GetAppName()); err != nil {
		log.Warn().Err(err).Msg("sentry disabled")
	}
	defer observability.FlushSentry()

	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		displayAppname(c.GetAppName())
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sf, err := storefront.New(ctx, c)
	if err != nil {
		return fail(args[0], err)
	}
	defer sf.Close()

	sf.Session.OnInvalid(func(reason sessions.Reason) {
		if reason != sessions.ReasonLoggedOut {
			observability.CaptureMessage("session terminated", map[string]string{"reason": string(reason)})
			fmt.Fprintln(os.Stderr, "Your session has ended, please log in again.")
		}
	})

	if err := dispatch(ctx, sf, os.Stdout, args); err != nil {
		return fail(args[0], err)
	}
	return 0
}

func fail(command string, err error) int {
	var usageErr usageError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		return 2
	case errors.Is(err, storeerrors.ErrSessionInvalid), errors.Is(err, storeerrors.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, "Not signed in. Run: storefront login -email you@example.com")
		return 1
	case errors.Is(err, storeerrors.ErrInvalidCredentials):
		fmt.Fprintln(os.Stderr, "Email or password is incorrect.")
		return 1
	}
	observability.CaptureError(err, map[string]string{"command": command})
	fmt.Fprintf(os.Stderr, "storefront %s: %v\n", command, err)
	return 1
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
