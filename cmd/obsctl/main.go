package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/LLIEPJIOK/obs-remote/pkg/obs/client"
)

const usage = `usage: obsctl [flags] <command>

commands:
  scenes          list scenes and mark the current one
  switch <scene>  switch the program output to a scene
  events          print events until interrupted

environment: OBS_URL, OBS_PASSWORD, OBS_REQUEST_TIMEOUT, OBS_LOG_LEVEL
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("obsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to a YAML config file")
	wsURL := fs.String("url", "", "obs-websocket url, overrides OBS_URL and the config file")
	password := fs.String("password", "", "obs-websocket password, prefer OBS_PASSWORD")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if *wsURL != "" {
		cfg.Session.URL = *wsURL
	}

	if *password != "" {
		cfg.Password = *password
	}

	if *logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
			return fmt.Errorf("invalid -log-level: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	cfg.Session.Logger = logger

	cmd := fs.Args()
	if len(cmd) == 0 {
		fs.Usage()
		return errUsage
	}

	switch {
	case cmd[0] == "switch" && len(cmd) != 2:
		return fmt.Errorf("%w: switch takes exactly one scene name", errUsage)
	case cmd[0] != "scenes" && cmd[0] != "switch" && cmd[0] != "events":
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd[0])
	}

	var handle func(event any)
	if cmd[0] == "events" {
		events := slog.New(slog.NewTextHandler(stdout, nil))
		handle = func(event any) {
			events.Info("event", "type", fmt.Sprintf("%T", event), "event", event)
		}
	}

	c := client.New(cfg.Session, handle)
	if err := c.Connect(ctx, cfg.Password); err != nil {
		return err
	}
	defer c.Close()

	switch cmd[0] {
	case "scenes":
		return printScenes(ctx, c, stdout)

	case "switch":
		if err := c.SetCurrentScene(ctx, cmd[1]); err != nil {
			return err
		}

		logger.Info("scene switched", "scene", cmd[1])

		return nil

	default:
		return streamEvents(ctx, c)
	}
}

func printScenes(ctx context.Context, c *client.Client, w io.Writer) error {
	list, err := c.GetSceneList(ctx)
	if err != nil {
		return err
	}

	for _, scene := range list.Scenes {
		marker := " "
		if scene.Name == list.CurrentScene {
			marker = "*"
		}

		fmt.Fprintf(w, "%s %s (%d sources)\n", marker, scene.Name, len(scene.Sources))
	}

	return nil
}

// streamEvents blocks until ctx is canceled or the session ends.
func streamEvents(ctx context.Context, c *client.Client) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-c.Done():
			if ctx.Err() != nil {
				return nil
			}

			return c.Err()
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return c.Close()
	})

	return g.Wait()
}
