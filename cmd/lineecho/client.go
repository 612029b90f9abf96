package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zereker/lineecho"
)

const defaultMessage = "The message to be read: hello world!\n"

var clientMessage string

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Send one message and print the echoed reply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		host := globalFlags.Host
		if host == "" {
			host = lineecho.DefaultHost
		}

		cfg := lineecho.Config{Host: host, Service: globalFlags.Port}
		conn, err := lineecho.Dial(cmd.Context(), cfg, libOptions()...)
		if err != nil {
			return err
		}
		defer conn.Close()

		reply, err := conn.Exchange(lineecho.Terminate([]byte(clientMessage)))
		if len(reply) > 0 {
			fmt.Fprint(cmd.OutOrStdout(), string(reply))
		}
		return exchangeResult(err)
	},
}

func init() {
	clientCmd.Flags().StringVarP(&clientMessage, "message", "m", defaultMessage, "message to send, a trailing newline is added if missing")
}
