package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/chat/bridge"
	"github.com/soyeahso/mjrelay/internal/chat/irc"
	"github.com/soyeahso/mjrelay/internal/config"
	"github.com/soyeahso/mjrelay/internal/logging"
	"github.com/soyeahso/mjrelay/internal/mjapi"
	"github.com/soyeahso/mjrelay/internal/notify"
	"github.com/soyeahso/mjrelay/internal/router"
	"github.com/soyeahso/mjrelay/internal/sensitive"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Notify.Port = port
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if logLevel == "" && (cfg.Logging.Level != "info" || cfg.Logging.File != "") {
				log, err = logging.NewWithFile(cfg.Logging.File, cfg.Logging.Level)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
			}

			return serve(cfg, log)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "notify listener port (overrides config)")
	return cmd
}

func serve(cfg config.Config, log *logging.Logger) error {
	filter, err := sensitive.Load(cfg.Sensitive.WordsFile)
	if err != nil {
		return fmt.Errorf("loading sensitive words: %w", err)
	}
	if filter.Count() > 0 {
		log.Info().Int("words", filter.Count()).Msg("sensitive word filter loaded")
	}

	session, err := newSession(cfg.Chat, log)
	if err != nil {
		return err
	}

	tasks := mjapi.NewClient(cfg.MJ.Endpoint, cfg.MJ.NotifyHook, log)

	images, err := notify.NewFetcher(cfg.MJ.HTTPProxy, cfg.MJ.ImagesDir, log)
	if err != nil {
		return err
	}
	relay := notify.NewRelay(session, images, log)
	server := notify.NewServer(relay, cfg.Notify.Port, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The start timestamp is the replay boundary: messages delivered again
	// after a reconnect predate it and are dropped.
	cmdRouter := router.New(session, tasks, filter, time.Now(), log)
	session.OnEvent(func(evt chat.Event) {
		if evt.Message != nil {
			cmdRouter.Handle(ctx, *evt.Message)
		}
	})

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start(ctx)
	}()
	go func() {
		errCh <- session.Start(ctx)
	}()

	select {
	case err := <-errCh:
		stop()
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("stopping chat session failed")
		}
		return nil
	}
}

func newSession(cfg config.ChatConfig, log *logging.Logger) (chat.Session, error) {
	switch cfg.Transport {
	case "irc":
		return irc.New(*cfg.IRC, log), nil
	default:
		return bridge.New(*cfg.Bridge, cfg.SelfName, log), nil
	}
}
