// Package commands wires the CLI surface to the billing, organization
// and report packages.
package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
	"github.com/awsaudit-dev/awsaudit/internal/buildinfo"
	"github.com/awsaudit-dev/awsaudit/internal/config"
	"github.com/awsaudit-dev/awsaudit/internal/costtree"
	"github.com/awsaudit-dev/awsaudit/internal/email"
	"github.com/awsaudit-dev/awsaudit/internal/orgs"
	"github.com/awsaudit-dev/awsaudit/internal/plot"
	"github.com/awsaudit-dev/awsaudit/internal/report"
)

type options struct {
	accountID  string
	bucket     string
	localPath  string
	save       bool
	quiet      bool
	ouMode     bool
	limit      float64
	displayIDs bool
	full       bool
	emailOn    bool
	orgCSV     string
	accountCSV string
	plotOn     bool
	top        int
	weekly     bool
	monthly    bool
	logLevel   string
	configPath string
}

// NewRootCommand creates the awsaudit CLI. The tool is a single
// command designed to run from cron, so every mode hangs off root
// flags rather than subcommands.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "awsaudit",
		Short: "Download, parse and report on consolidated AWS spend",
		Long: `Download, parse and create reports for general AWS spend, optionally
sending the report as an e-mail and/or outputting CSV-based spending data.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			logger, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			return run(opts, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.accountID, "id", "i", "", "AWS account ID for consolidated billing (required unless --local is used)")
	cmd.Flags().StringVarP(&opts.bucket, "bucket", "b", "", "S3 billing bucket name (required unless --local is used)")
	cmd.Flags().StringVarP(&opts.localPath, "local", "L", "", "read a consolidated billing CSV from the filesystem instead of S3")
	cmd.Flags().BoolVarP(&opts.save, "save", "s", false, "save the billing CSV to the local directory")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the report to stdout")
	cmd.Flags().BoolVarP(&opts.ouMode, "ou", "o", false, "group accounts by AWS Organizational Unit (much slower: one directory call per OU listing)")
	cmd.Flags().Float64VarP(&opts.limit, "limit", "l", 5.0, "hide spends below this value; hidden spends still count towards totals")
	cmd.Flags().BoolVarP(&opts.displayIDs, "display-ids", "D", false, "display AWS account IDs in the report")
	cmd.Flags().BoolVarP(&opts.full, "full", "f", false, "in OU mode, append the flat per-account report after the tree")
	cmd.Flags().BoolVarP(&opts.emailOn, "email", "e", false, "send the report as an email using the settings in awsaudit.yaml")
	cmd.Flags().StringVarP(&opts.orgCSV, "orgcsv", "O", "", "append org-based spends to this CSV file (created with a header if missing)")
	cmd.Flags().StringVarP(&opts.accountCSV, "csv", "C", "", "append account-based spends to this CSV file (created with a header if missing)")
	cmd.Flags().BoolVarP(&opts.plotOn, "plot", "p", false, "render PNG plots of the CSV spend history")
	cmd.Flags().IntVarP(&opts.top, "top", "T", 0, "prepend a leaderboard of the top N spenders (0 disables)")
	cmd.Flags().BoolVarP(&opts.weekly, "weekly", "w", false, "format the email as a weekly incremental report")
	cmd.Flags().BoolVarP(&opts.monthly, "monthly", "m", false, "format the email as an end-of-month report")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to awsaudit.yaml")
	cmd.MarkFlagsMutuallyExclusive("weekly", "monthly")

	return cmd
}

// validate rejects flag combinations before any I/O happens, so a
// misconfigured run produces no partial output.
func (o *options) validate() error {
	if o.localPath == "" && o.accountID == "" {
		return fmt.Errorf("an AWS account id (--id) is required unless reading a local billing CSV with --local")
	}
	if o.localPath == "" && o.bucket == "" {
		return fmt.Errorf("an S3 billing bucket (--bucket) is required unless reading a local billing CSV with --local")
	}
	if o.ouMode && o.accountID == "" {
		return fmt.Errorf("--ou requires an AWS account id (--id)")
	}
	if o.orgCSV != "" && !o.ouMode {
		return fmt.Errorf("--orgcsv requires --ou")
	}
	if o.accountCSV != "" && o.accountCSV == o.orgCSV {
		return fmt.Errorf("--csv and --orgcsv must use different filenames")
	}
	if o.emailOn && !o.weekly && !o.monthly {
		return fmt.Errorf("--email requires exactly one of --weekly or --monthly")
	}
	if o.plotOn && o.accountCSV == "" && o.orgCSV == "" {
		return fmt.Errorf("--plot requires at least one of --csv or --orgcsv")
	}
	return nil
}

func newLogger(level string) (log.FieldLogger, error) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := log.New()
	logger.SetLevel(logLevel)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return logger, nil
}

func run(opts *options, logger log.FieldLogger, stdout io.Writer) error {
	data, err := resolveExport(opts, logger)
	if err != nil {
		return err
	}

	ledger, err := billing.ParseExport(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if ledger.MixedCurrencies {
		logger.Warn("billing export mixes currencies; totals are summed without conversion")
	}
	logger.WithFields(log.Fields{
		"accounts": ledger.Len(),
		"currency": ledger.Currency,
		"year":     ledger.Period.Year,
		"month":    ledger.Period.Month,
	}).Info("parsed billing export")

	limit := decimal.NewFromFloat(opts.limit)
	var body string

	if opts.top != 0 {
		body += report.Leaderboard(ledger, opts.top, opts.displayIDs)
	}

	var tree *costtree.Tree
	if opts.ouMode {
		dir := orgs.NewAWSDirectory(logger)
		tree, err = costtree.NewReconciler(dir, logger).Build(ledger)
		if err != nil {
			return err
		}
		body += report.TotalsHeader(tree.TotalSpend(), ledger.Currency, limit)
		body += report.Hierarchy(tree, limit, opts.displayIDs)
		if opts.full {
			body += "\n\n" + report.Flat(ledger, limit, opts.displayIDs)
		}
	} else {
		body += report.Flat(ledger, limit, opts.displayIDs)
	}

	if opts.accountCSV != "" {
		if err := report.WriteAccountCSV(opts.accountCSV, ledger, decimal.Zero); err != nil {
			return err
		}
	}
	if opts.orgCSV != "" {
		if err := report.WriteOrgCSV(opts.orgCSV, tree, decimal.Zero, ledger.Period); err != nil {
			return err
		}
	}

	var attachments []string
	if opts.plotOn {
		attachments, err = renderPlots(opts, logger)
		if err != nil {
			return err
		}
	}

	if !opts.quiet {
		fmt.Fprint(stdout, body)
	}

	if opts.emailOn {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		if err := email.NewSender(cfg.Email, logger).Send(body, opts.weekly, attachments); err != nil {
			return err
		}
	}
	return nil
}

// resolveExport reads the billing CSV from the local filesystem or
// downloads the current month's object from S3, optionally saving it.
func resolveExport(opts *options, logger log.FieldLogger) ([]byte, error) {
	if opts.localPath != "" {
		return billing.ReadLocal(opts.localPath)
	}

	data, key, err := billing.NewSource(logger).Fetch(opts.bucket, opts.accountID)
	if err != nil {
		return nil, err
	}
	if opts.save {
		if err := billing.Save(key, data); err != nil {
			return nil, err
		}
		logger.WithField("file", key).Info("saved billing export")
	}
	return data, nil
}

func renderPlots(opts *options, logger log.FieldLogger) ([]string, error) {
	var paths []string
	if opts.accountCSV != "" {
		p, err := plot.AccountSpend(opts.accountCSV)
		if err != nil {
			return nil, err
		}
		logger.WithField("plot", p).Info("rendered account spend plot")
		paths = append(paths, p)
	}
	if opts.orgCSV != "" {
		p, err := plot.OrgSpend(opts.orgCSV)
		if err != nil {
			return nil, err
		}
		logger.WithField("plot", p).Info("rendered org spend plot")
		paths = append(paths, p)
	}
	return paths, nil
}
