package main

import (
	"bytes"
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Zereker/lineecho"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a server and a client against each other on loopback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := lineecho.Listen(cmd.Context(), lineecho.Config{Host: "127.0.0.1", Service: "0"}, libOptions()...)
		if err != nil {
			return err
		}
		defer srv.Close()

		tcpAddr, ok := srv.Addr().(*net.TCPAddr)
		if !ok {
			return errors.Errorf("unexpected listener address %v", srv.Addr())
		}
		port := strconv.Itoa(tcpAddr.Port)
		msg := []byte(defaultMessage)

		group, ctx := errgroup.WithContext(cmd.Context())
		group.Go(func() error {
			_, err := srv.ServeOne(ctx)
			return err
		})

		var reply []byte
		group.Go(func() error {
			conn, err := lineecho.Dial(ctx, lineecho.Config{Host: "127.0.0.1", Service: port}, libOptions()...)
			if err != nil {
				return err
			}
			defer conn.Close()

			reply, err = conn.Exchange(msg)
			return err
		})

		if err := group.Wait(); err != nil {
			return exchangeResult(err)
		}

		if !bytes.Equal(reply, msg) {
			logger.Warn("reply differs from message", "sent", len(msg), "received", len(reply))
		}
		fmt.Fprint(cmd.OutOrStdout(), string(reply))
		return nil
	},
}
