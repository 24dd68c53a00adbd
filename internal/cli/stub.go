package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/BeyzaCankayaa/mindprobe/internal/infra/logger"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/webhookstub"
)

func stubCmd() *cobra.Command {
	var (
		addr      string
		reply     string
		status    int
		emptyBody bool
		delay     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local stand-in for the automation webhook",
		Long: "Serve a local webhook that answers the chat contract " +
			"(POST {message, history, userContext} -> {\"reply\": ...}). " +
			"Use --empty-body, --status or --delay to rehearse failure modes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := webhookstub.DefaultConfig()
			if reply != "" {
				cfg.Reply = reply
			}
			cfg.Status = status
			cfg.EmptyBody = emptyBody
			cfg.Delay = delay

			srv := &http.Server{
				Addr:              addr,
				Handler:           webhookstub.New(cfg, logger.L()).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			fmt.Printf("webhook stub listening on %s (status=%d empty=%v delay=%s)\n", addr, cfg.Status, emptyBody, delay)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5678", "Listen address")
	cmd.Flags().StringVar(&reply, "reply", "", "Canned reply text")
	cmd.Flags().IntVar(&status, "status", 200, "Response status code")
	cmd.Flags().BoolVar(&emptyBody, "empty-body", false, "Answer with an empty body")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Delay before responding (e.g. 3s)")

	return cmd
}
