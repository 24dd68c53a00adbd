package cli

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/httpclient"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/logger"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/steprunner"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
	"github.com/BeyzaCankayaa/mindprobe/internal/probe"
	"github.com/BeyzaCankayaa/mindprobe/internal/ui/watch"
	"github.com/BeyzaCankayaa/mindprobe/internal/usecase"
)

// envConfig carries the environment-variable layer of the settings merge.
// Precedence: built-in defaults < env vars < target file < flags.
type envConfig struct {
	BaseURL    string `env:"MINDIO_BASE_URL"        envDefault:"http://127.0.0.1:8000"`
	Email      string `env:"MINDIO_SMOKE_EMAIL"     envDefault:"smoke@mindio.app"`
	Password   string `env:"MINDIO_SMOKE_PASSWORD"  envDefault:"smoke-test-1"`
	WebhookURL string `env:"AI_WEBHOOK_URL"         envDefault:"http://127.0.0.1:5678/webhook/mindio-chat"`
}

func runCmd() *cobra.Command {
	var (
		probeDir   string
		target     string
		baseURL    string
		email      string
		password   string
		webhookURL string

		register    bool
		extended    bool
		skipWebhook bool
		strictDaily bool

		format  string
		noSave  bool
		watchUI bool
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Run the smoke sequence against a Mindio deployment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ec, err := env.ParseAs[envConfig]()
			if err != nil {
				return fmt.Errorf("parse environment: %w", err)
			}

			settings := probe.Settings{
				BaseURL:     ec.BaseURL,
				Email:       ec.Email,
				Password:    ec.Password,
				WebhookURL:  ec.WebhookURL,
				Register:    register,
				Extended:    extended,
				SkipWebhook: skipWebhook,
			}

			var store ports.ArtifactStore
			var runner ports.StepRunner

			pc, pcErr := loadProbeDir(probeDir)
			if pcErr == nil {
				targetArg, terr := resolveTargetArg(pc, target)
				if terr != nil {
					return terr
				}
				if targetArg != "" {
					tgt, lerr := pc.targets.LoadTarget(targetArg)
					if lerr != nil {
						// An explicitly named target must exist; the configured
						// default may be absent in a fresh probe dir.
						if cmd.Flags().Changed("target") {
							return lerr
						}
						logger.L().Warn("run.default_target_missing", "target", targetArg, "err", lerr.Error())
					} else {
						settings.Target = tgt.Name
						applyTargetVars(&settings, tgt.Vars)
					}
				}
				runner = pc.runner
				store = pc.store
			} else {
				// No probe directory: env vars and flags alone are enough for a
				// one-off run, but naming a target requires one.
				if cmd.Flags().Changed("target") || cmd.Flags().Changed("probe-dir") {
					return pcErr
				}
				runner = steprunner.New(httpclient.New(httpclient.DefaultConfig()))
			}

			// Flags win over everything.
			if cmd.Flags().Changed("base-url") {
				settings.BaseURL = baseURL
			}
			if cmd.Flags().Changed("email") {
				settings.Email = email
			}
			if cmd.Flags().Changed("password") {
				settings.Password = password
			}
			if cmd.Flags().Changed("webhook-url") {
				settings.WebhookURL = webhookURL
			}

			if noSave {
				store = nil
			}

			plan, err := probe.BuildPlan(settings)
			if err != nil {
				return err
			}

			logger.L().Info("run.start",
				"target", plan.Target,
				"base_url", plan.BaseURL,
				"steps", len(plan.Steps),
				"strict_daily", strictDaily,
			)

			opts := []usecase.RunSmokeOption{usecase.WithStrictDaily(strictDaily)}
			if store != nil {
				opts = append(opts, usecase.WithStore(store))
			}

			if watchUI {
				return runWatched(cmd, runner, plan, opts)
			}

			uc := usecase.NewRunSmoke(runner, opts...)
			report, runID, runErr := uc.Execute(cmd.Context(), plan)

			if perr := printReport(os.Stdout, report, runID, format); perr != nil {
				return perr
			}
			return runErr
		},
	}

	c.Flags().StringVar(&probeDir, "probe-dir", "", "Probe directory root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&target, "target", "t", "", "Target name or path (optional; defaults to the configured target)")
	c.Flags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides env and target)")
	c.Flags().StringVar(&email, "email", "", "Smoke account email (overrides env and target)")
	c.Flags().StringVar(&password, "password", "", "Smoke account password (overrides env and target)")
	c.Flags().StringVar(&webhookURL, "webhook-url", "", "Automation webhook URL (overrides env and target)")
	c.Flags().BoolVar(&register, "register", false, "Register the smoke account first (409 is accepted)")
	c.Flags().BoolVar(&extended, "extended", false, "Include the mood check-in steps")
	c.Flags().BoolVar(&skipWebhook, "skip-webhook", false, "Skip the direct webhook probe")
	c.Flags().BoolVar(&strictDaily, "strict-daily", false, "Fail the run when the daily suggestion changes within the same day")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save a run artifact under reports/")
	c.Flags().BoolVar(&watchUI, "watch", false, "Render the run live in the terminal")

	return c
}

// runWatched feeds the run through the live view. Step events arrive on a
// channel from the runner goroutine; the view owns the terminal until done.
func runWatched(cmd *cobra.Command, runner ports.StepRunner, plan domain.Plan, opts []usecase.RunSmokeOption) error {
	events := make(chan tea.Msg, 8)

	opts = append(opts, usecase.WithStepObserver(func(ev usecase.StepEvent) {
		events <- watch.StepMsg{Result: ev.Result, Index: ev.Index, Total: ev.Total}
	}))

	uc := usecase.NewRunSmoke(runner, opts...)

	go func() {
		report, runID, err := uc.Execute(cmd.Context(), plan)
		events <- watch.DoneMsg{Report: report, ID: runID, Err: err}
		close(events)
	}()

	report, runID, err := watch.Run(plan.Target, plan.BaseURL, events)

	// The live view is transient; leave a plain summary behind it.
	fmt.Fprintln(os.Stdout)
	printSummary(os.Stdout, report, runID)
	return err
}

func applyTargetVars(s *probe.Settings, vars domain.Vars) {
	if v, ok := vars["base_url"]; ok && v != "" {
		s.BaseURL = v
	}
	if v, ok := vars["email"]; ok && v != "" {
		s.Email = v
	}
	if v, ok := vars["password"]; ok && v != "" {
		s.Password = v
	}
	if v, ok := vars["webhook_url"]; ok && v != "" {
		s.WebhookURL = v
	}
}
