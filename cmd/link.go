package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ibeslink/internal/config"
	"github.com/sells-group/ibeslink/internal/db"
	"github.com/sells-group/ibeslink/internal/linker"
	"github.com/sells-group/ibeslink/internal/output"
	"github.com/sells-group/ibeslink/internal/wrds"
)

// linkOptions carries the link command's flags.
type linkOptions struct {
	Output  string
	Method  string
	BaseDir string
	Format  string
	Preview int
	Publish string
}

var linkOpts linkOptions

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Build the IBES to Compustat link table",
	Long: `Builds a gvkey to IBES ticker mapping and writes it to --output.

Methods:
  crsp  IBES cusip -> CRSP stocknames ncusip -> CCM link history (default).
        Only LC/LU links with P/C priority are kept; link dates are ignored.
  gsec  IBES ticker -> Compustat security ibtic.

Examples:
  ibeslink link -o ibes_ccm.csv
  ibeslink link -o ibes_gsec.xlsx -m gsec --preview 10
  ibeslink link -o link.csv --base-dir /data/links --publish link.ibes_ccm`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runLink(ctx, cmd.OutOrStdout(), cfg, linkOpts, defaultLinkEnv())
	},
}

func init() {
	f := linkCmd.Flags()
	f.StringVarP(&linkOpts.Output, "output", "o", "", "output file (csv, xlsx or sqlite)")
	f.StringVarP(&linkOpts.Method, "method", "m", "", "link method: crsp or gsec (default from link.method, else crsp)")
	f.StringVar(&linkOpts.BaseDir, "base-dir", "", "directory relative output paths resolve against (default from link.base_dir)")
	f.StringVar(&linkOpts.Format, "format", "", "output format: csv, xlsx or sqlite (default: from extension)")
	f.IntVar(&linkOpts.Preview, "preview", 0, "print the first N rows of the result")
	f.StringVar(&linkOpts.Publish, "publish", "", "also load the result into this PostgreSQL table (schema.table)")
	_ = linkCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(linkCmd)
}

// linkEnv opens the external connections a link run needs.
type linkEnv struct {
	openSource    func(ctx context.Context, c *config.Config) (wrds.Source, func(), error)
	openPublisher func(ctx context.Context, c *config.Config) (*output.Publisher, func(), error)
}

func defaultLinkEnv() linkEnv {
	return linkEnv{
		openSource: func(ctx context.Context, c *config.Config) (wrds.Source, func(), error) {
			pool, err := db.Connect(ctx, c.WRDS.DSN())
			if err != nil {
				return nil, nil, eris.Wrap(err, "link: connect to wrds")
			}
			zap.L().Info("connected to wrds", zap.String("host", c.WRDS.Host))
			return wrds.NewClient(pool), pool.Close, nil
		},
		openPublisher: func(ctx context.Context, c *config.Config) (*output.Publisher, func(), error) {
			pool, err := db.Connect(ctx, c.Publish.DatabaseURL)
			if err != nil {
				return nil, nil, eris.Wrap(err, "link: connect to publish database")
			}
			return output.NewPublisher(pool), pool.Close, nil
		},
	}
}

func runLink(ctx context.Context, w io.Writer, c *config.Config, opts linkOptions, env linkEnv) error {
	method := firstNonEmpty(opts.Method, c.Link.Method)
	strategy, err := linker.ParseMethod(method)
	if err != nil {
		return eris.Wrap(err, "link")
	}

	path := output.ResolvePath(firstNonEmpty(opts.BaseDir, c.Link.BaseDir), opts.Output)
	if path == "" {
		return eris.New("link: --output is required")
	}
	format, err := output.ParseFormat(firstNonEmpty(opts.Format, c.Link.Format), path)
	if err != nil {
		return eris.Wrap(err, "link")
	}

	publish := firstNonEmpty(opts.Publish, c.Publish.Table)
	if err := c.Validate(publish); err != nil {
		return eris.Wrap(err, "link")
	}

	runID := uuid.New().String()
	log := zap.L().With(
		zap.String("command", "link"),
		zap.String("run_id", runID),
		zap.Stringer("method", strategy),
	)

	src, closeSrc, err := env.openSource(ctx, c)
	if err != nil {
		return err
	}
	defer closeSrc()

	res, err := linker.New(src).Build(ctx, strategy)
	if err != nil {
		return eris.Wrap(err, "link: build")
	}

	if err := output.WriteFile(ctx, path, format, res.Table); err != nil {
		return eris.Wrap(err, "link: write")
	}
	log.Info("link table written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", res.Table.Len()),
	)

	if opts.Preview > 0 {
		output.Preview(w, res.Table, opts.Preview)
	}

	if publish != "" {
		pub, closePub, err := env.openPublisher(ctx, c)
		if err != nil {
			return err
		}
		defer closePub()

		if _, err := pub.Publish(ctx, publish, res.Table); err != nil {
			return eris.Wrap(err, "link: publish")
		}
	}

	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
