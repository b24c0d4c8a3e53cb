package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/pkg/convert"
	"github.com/sambigeara/permcalc/pkg/observability/logging"
	"github.com/sambigeara/permcalc/pkg/observability/metrics"
	"github.com/sambigeara/permcalc/pkg/rpc"
	"github.com/sambigeara/permcalc/pkg/workspace"
)

const remoteTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "permcalc",
		Short:        "Convert Unix permissions between octal (755) and symbolic (rwxr-xr-x) form",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("dir", "", "State directory (default ~/.permcalc)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newExplainCmd(),
		newTableCmd(),
		newMenuCmd(),
		newServeCmd(),
		newStatusCmd(),
		newConfigCmd(),
	)
	return root
}

func stateDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	return workspace.EnsureDir(dir)
}

// cliLogger stays silent unless --log-level is given; one-shot commands
// report through their own output.
func cliLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		return zap.NewNop(), nil
	}
	return logging.Init(level)
}

// newConverter converts locally, or through a running server when --remote
// is set.
func newConverter(cmd *cobra.Command) (convert.Converter, error) {
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		return rpc.NewClient(&http.Client{Timeout: remoteTimeout}, remote), nil
	}

	log, err := cliLogger(cmd)
	if err != nil {
		return nil, err
	}
	rec, err := metrics.NewRecorder()
	if err != nil {
		return nil, err
	}
	return convert.New(log, rec, noop.NewTracerProvider()), nil
}
