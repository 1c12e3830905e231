package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"browserboot/application"
	"browserboot/application/bootstrap"
	"browserboot/infrastructure/browser"
	"browserboot/infrastructure/logging"
)

type openOptions struct {
	mode        string
	engine      string
	keepCookies bool
	hold        time.Duration
	screenshot  string
}

func newOpenCmd(c *cli) *cobra.Command {
	opts := &openOptions{}

	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Start a browser and open a URL",
		Long: `Start a browser in the selected mode and bring it to the given URL.

Examples:
  browserboot open https://example.test/login --mode headless
  browserboot open https://example.test --engine selenium --hold 1m
  browserboot open https://example.test --mode ci --screenshot start.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd.Context(), c, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Launch mode (standard, ci-agent, headless)")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "Browser engine (chromedp, playwright, selenium)")
	cmd.Flags().BoolVar(&opts.keepCookies, "keep-cookies", false, "Do not delete cookies before navigating")
	cmd.Flags().DurationVar(&opts.hold, "hold", 0, "Keep the browser open this long, or until interrupted")
	cmd.Flags().StringVar(&opts.screenshot, "screenshot", "", "Write a PNG screenshot of the start page to this file")

	return cmd
}

// parseEndpoint accepts absolute URLs only.
func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: scheme and host are required", raw)
	}
	return u, nil
}

func runOpen(ctx context.Context, c *cli, opts *openOptions, rawURL string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := c.settings
	if opts.mode != "" {
		settings.Mode = opts.mode
	}
	if opts.engine != "" {
		settings.Engine = opts.engine
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	mode, err := settings.LaunchMode()
	if err != nil {
		return err
	}
	endpoint, err := parseEndpoint(rawURL)
	if err != nil {
		return err
	}

	app, err := application.New(ctx, &application.Config{
		Settings: settings,
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	ctx = logging.WithAttrs(ctx, "command", "open", "mode", mode.String(), "engine", settings.Engine)
	logger := logging.From(ctx)

	session, err := app.Bootstrap(ctx, endpoint, mode, bootstrap.WithClearSessionState(!opts.keepCookies))
	if err != nil {
		var failure *bootstrap.StartupFailure
		if errors.As(err, &failure) {
			logger.Error("Browser did not start", "attempts", len(failure.Log))
		}
		return err
	}
	defer session.Close()

	fmt.Fprintf(os.Stdout, "Opened %s (%s, %s)\n", endpoint, mode, settings.Engine)

	if opts.screenshot != "" {
		if err := saveScreenshot(ctx, session, opts.screenshot); err != nil {
			return err
		}
		logger.Info("Screenshot saved", "path", opts.screenshot)
	}

	if opts.hold > 0 {
		hold(ctx, opts.hold)
	}

	return nil
}

func saveScreenshot(ctx context.Context, session browser.Session, path string) error {
	shooter, ok := session.(browser.Screenshotter)
	if !ok {
		return errors.New("engine does not support screenshots")
	}

	buf, err := shooter.Screenshot(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// hold blocks for d or until ctx is done.
func hold(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
