package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/rabbitmq"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/rabbitmq/sink"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/rabbitmq/source"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// built is a constructed configuration of any variant.
type built struct {
	summary any
	factory rabbitmq.ConnectionFactory
	source  *source.Config
}

type variant struct {
	schema func() *config.Schema
	build  func(raw map[string]any) (built, error)
}

var variants = map[string]variant{
	"common": {
		schema: rabbitmq.Schema,
		build: func(raw map[string]any) (built, error) {
			c, err := rabbitmq.NewConfig(raw)
			if err != nil {
				return built{}, err
			}
			return built{summary: c, factory: c.Factory()}, nil
		},
	},
	"sink": {
		schema: sink.Schema,
		build: func(raw map[string]any) (built, error) {
			c, err := sink.NewConfig(raw)
			if err != nil {
				return built{}, err
			}
			return built{summary: c, factory: c.Factory()}, nil
		},
	},
	"source": {
		schema: source.Schema,
		build: func(raw map[string]any) (built, error) {
			c, err := source.NewConfig(raw)
			if err != nil {
				return built{}, err
			}
			return built{summary: c, factory: c.Factory(), source: c}, nil
		},
	},
}

func lookupVariant(name string) (variant, error) {
	v, ok := variants[name]
	if !ok {
		return variant{}, fmt.Errorf("unknown variant %q (want common, sink or source)", name)
	}
	return v, nil
}

// loadSettings reads the settings file, if any, then applies --set
// overrides on top.
func loadSettings(opts *options) (map[string]any, error) {
	raw := map[string]any{}
	if opts.file != "" {
		loaded, err := config.LoadFile(opts.file)
		if err != nil {
			return nil, err
		}
		raw = loaded
	}
	for _, s := range opts.sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", s)
		}
		raw[k] = v
	}
	return raw, nil
}

func buildFromFlags(opts *options) (built, error) {
	v, err := lookupVariant(opts.variant)
	if err != nil {
		return built{}, err
	}
	raw, err := loadSettings(opts)
	if err != nil {
		return built{}, err
	}
	return v.build(raw)
}

func validateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build the configuration and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := buildFromFlags(opts)
			if err != nil {
				return err
			}
			util.App.Info().Str("variant", opts.variant).Str("broker", b.factory.String()).Msg("✅ valid configuration")
			return writeSummary(cmd.OutOrStdout(), b)
		},
	}
	addSettingsFlags(cmd, opts)
	return cmd
}

func writeSummary(w io.Writer, b built) error {
	fmt.Fprintf(w, "# broker: %s\n", b.factory)
	if sc := b.factory.SecureContext(); sc != nil {
		fmt.Fprintf(w, "# tls: %s, %d identities, %d trust anchors\n", sc.Protocol(), sc.Identities(), sc.TrustAnchors())
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b.summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}

func describeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print every setting of the variant as a documented YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := lookupVariant(opts.variant)
			if err != nil {
				return err
			}
			return v.schema().WriteYAML(cmd.OutOrStdout())
		},
	}
}

func pingCmd(opts *options) *cobra.Command {
	var declare bool
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Build the configuration and open one connection to the broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := buildFromFlags(opts)
			if err != nil {
				return err
			}
			conn := rabbitmq.NewConnector(b.factory)
			if err := conn.Open(); err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			if declare {
				if b.source == nil {
					return fmt.Errorf("--declare needs --variant source")
				}
				ch, err := conn.Channel()
				if err != nil {
					return err
				}
				if err := b.source.DeclareTopology(ch); err != nil {
					return err
				}
			}
			util.App.Info().Str("broker", b.factory.String()).Msg("✅ broker reachable")
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", b.factory)
			return nil
		},
	}
	addSettingsFlags(cmd, opts)
	cmd.Flags().BoolVar(&declare, "declare", false, "also declare the source exchange, queues and bindings")
	return cmd
}
