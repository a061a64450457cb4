package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malbx/resea/config"
	"github.com/malbx/resea/log"
)

func newRootCmd() *cobra.Command {
	var (
		configFile string
		input      string
		output     string
		port       uint16
	)

	cmd := &cobra.Command{
		Use:   "pcap_echo",
		Short: "Echo the udp datagrams of a capture file",
		Long: `pcap_echo reads a pcap capture, hands every udp datagram addressed to the
echo port to a datagram endpoint and writes what the endpoint sends back to a
new capture with raw IPv4 framing.

Datagrams to other ports, non udp traffic and malformed headers are counted
and skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Echo.Input = input
			}
			if flags.Changed("output") {
				cfg.Echo.Output = output
			}
			if flags.Changed("port") {
				cfg.Echo.Port = port
			}

			if err := log.Init(cfg.Log); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}

			return run(cfg, cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&input, "input", "i", "", "capture file to replay")
	cmd.Flags().StringVarP(&output, "output", "o", "", "capture file the echoes are written to")
	cmd.Flags().Uint16VarP(&port, "port", "p", 0, "udp port to echo on")

	return cmd
}

func run(cfg *config.Config, out io.Writer) error {
	if cfg.Echo.Input == "" {
		return fmt.Errorf("no input capture, set --input or resea.echo.input")
	}

	in, err := os.Open(cfg.Echo.Input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	f, err := os.Create(cfg.Echo.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	stats, err := echo(cfg, in, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"input":     cfg.Echo.Input,
		"output":    cfg.Echo.Output,
		"port":      cfg.Echo.Port,
		"packets":   stats.Packets,
		"echoed":    stats.Echoed,
		"filtered":  stats.Filtered,
		"malformed": stats.Malformed,
		"skipped":   stats.Skipped,
	}).Info("replay finished")

	fmt.Fprintf(out, "%d packets, %d echoed, %d filtered, %d malformed, %d skipped\n",
		stats.Packets, stats.Echoed, stats.Filtered, stats.Malformed, stats.Skipped)

	return nil
}
