package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront/identity"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/observability"
	"github.com/jrsteele09/go-storefront/mockapi"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("mock API stopped with an error")
	}
	log.Info().Msg("mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	observability.SetupLogging(os.Stderr, c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName() + " API")

	var opts []mockapi.Option
	if clientID := c.GetGoogleClientID(); clientID != "" {
		v, err := identity.NewProviderVerifier(context.Background(), c.GetOIDCIssuer(), clientID)
		if err != nil {
			return fmt.Errorf("federated login: %w", err)
		}
		opts = append(opts, mockapi.WithIDTokenVerifier(v))
	}

	api := mockapi.New(c, opts...)
	if err := api.SeedDemo(); err != nil {
		return err
	}
	log.Info().Str("email", mockapi.DemoEmail).Str("password", mockapi.DemoPassword).Msg("demo account ready")

	server := &http.Server{Addr: c.GetPort(), Handler: api, ReadHeaderTimeout: 5 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("mock API listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
