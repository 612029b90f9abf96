package main

import (
	"github.com/spf13/cobra"

	"github.com/Zereker/lineecho"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Accept one connection and echo one message back",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg := lineecho.Config{Host: globalFlags.Host, Service: globalFlags.Port}
		srv, err := lineecho.Listen(ctx, cfg, libOptions()...)
		if err != nil {
			return err
		}
		defer srv.Close()

		msg, err := srv.ServeOne(ctx)
		if err == nil {
			logger.Info("echoed message", "len", len(msg), "message", string(msg))
		}
		return exchangeResult(err)
	},
}
