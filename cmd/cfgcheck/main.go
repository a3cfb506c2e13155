package main

import (
	"fmt"
	"os"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	"github.com/spf13/cobra"
)

type options struct {
	variant  string
	file     string
	sets     []string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "cfgcheck",
		Short:         "Validate and inspect RabbitMQ connector settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.InitWriter(cmd.ErrOrStderr(), opts.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&opts.variant, "variant", "common", "settings variant: common, sink or source")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")

	root.AddCommand(validateCmd(opts))
	root.AddCommand(describeCmd(opts))
	root.AddCommand(pingCmd(opts))
	return root
}

func addSettingsFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "settings file (.yaml, .yml, .json or .properties)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "override a setting, key=value (repeatable)")
}
