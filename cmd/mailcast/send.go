package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/mailcast/pkg/dispatch"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/mailer/provider"
	"github.com/dmitrymomot/mailcast/pkg/storage"
)

type sendOptions struct {
	extra       map[string]string
	jobFile     string
	rows        string
	template    string
	subject     string
	format      string
	attachments string
	recipient   string
	name        string
	subjectCol  string
	from        string
	delayMs     float64
	jitterMs    float64
}

func newSendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run one dispatch job and print NDJSON progress to stdout",
		Example: `  mailcast send --rows guests.csv --template invite.md --recipient Email --name Name
  mailcast send --job event.yaml --delay-ms 5000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}

			spec, err := opts.spec(cmd)
			if err != nil {
				return err
			}
			job, err := spec.build()
			if err != nil {
				return err
			}
			if opts.from != "" {
				cfg.Dispatch.From = opts.from
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return send(ctx, cfg, job, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.bindFlags(cmd.Flags())
	return cmd
}

func (o *sendOptions) bindFlags(f *pflag.FlagSet) {
	f.StringVar(&o.jobFile, "job", "", "YAML job file; flags override its values")
	f.StringVar(&o.rows, "rows", "", "rows file (.csv with header or .json array)")
	f.StringVar(&o.template, "template", "", "body template file, optional YAML frontmatter with subject and format")
	f.StringVar(&o.subject, "subject", "", "subject template (overrides frontmatter)")
	f.StringVar(&o.format, "format", "", "body format: html or markdown (default from frontmatter or extension)")
	f.StringVar(&o.attachments, "attachments", "", "directory of per-recipient files named after the display name")
	f.StringVar(&o.recipient, "recipient", "", "column holding the recipient address")
	f.StringVar(&o.name, "name", "", "column holding the display name")
	f.StringVar(&o.subjectCol, "subject-column", "", "column holding a per-row subject")
	f.StringVar(&o.from, "from", "", "From address (overrides MAILER_FROM)")
	f.Float64Var(&o.delayMs, "delay-ms", 0, "base delay between sends in milliseconds (default MAILER_DEFAULT_DELAY_MS)")
	f.Float64Var(&o.jitterMs, "jitter-ms", 0, "maximum jitter in milliseconds (default MAILER_DEFAULT_JITTER_MS)")
	f.StringToStringVar(&o.extra, "extra", nil, "extra template values as key=value")
}

// spec merges the job file with the flags that were set explicitly.
func (o *sendOptions) spec(cmd *cobra.Command) (jobSpec, error) {
	var spec jobSpec
	if o.jobFile != "" {
		var err error
		if spec, err = loadJobFile(o.jobFile); err != nil {
			return spec, err
		}
	}

	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("rows", &spec.Rows, o.rows)
	set("template", &spec.Template, o.template)
	set("subject", &spec.Subject, o.subject)
	set("format", &spec.Format, o.format)
	set("attachments", &spec.Attachments, o.attachments)
	set("recipient", &spec.Mapping.Recipient, o.recipient)
	set("name", &spec.Mapping.Name, o.name)
	set("subject-column", &spec.Mapping.Subject, o.subjectCol)

	if f.Changed("delay-ms") {
		spec.DelayMs = &o.delayMs
	}
	if f.Changed("jitter-ms") {
		spec.JitterMs = &o.jitterMs
	}
	if len(o.extra) > 0 {
		if spec.ExtraContext == nil {
			spec.ExtraContext = make(map[string]any, len(o.extra))
		}
		for k, v := range o.extra {
			spec.ExtraContext[k] = v
		}
	}
	return spec, nil
}

// send runs job against the configured transport. Progress goes to out as NDJSON,
// logs and the final summary go to errOut.
func send(ctx context.Context, cfg config, job dispatch.Job, out, errOut io.Writer) error {
	log := logger.NewFromConfig(errOut, cfg.Log)
	defer logger.FlushSentry(sentryFlushTimeout)

	transport, err := provider.New(cfg.Mailer)
	if err != nil {
		return fmt.Errorf("mail transport: %w", err)
	}

	opts := []dispatch.Option{dispatch.WithLogger(log)}
	if cfg.Storage.Enabled() {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("attachment storage: %w", err)
		}
		opts = append(opts, dispatch.WithAttachmentLoader(store))
	}

	d := dispatch.New(transport.Sender, cfg.Dispatch, opts...)
	log.Info("sending", slog.String("provider", transport.Name), slog.Int("rows", len(job.Rows)))

	summary, err := d.Run(ctx, job, dispatch.NewStreamEncoder(out))
	fmt.Fprintf(errOut, "sent %d, failed %d of %d\n", summary.Sent, summary.Failed, summary.Total)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d sends failed", summary.Failed, summary.Total)
	}
	return nil
}
