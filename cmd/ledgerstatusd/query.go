package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	statusgrpc "github.com/blockberries/ledgerstatus/grpc"
	"github.com/blockberries/ledgerstatus/rest"
	"github.com/blockberries/ledgerstatus/types"
)

const (
	addrKey    = "addr"
	txIDKey    = "tx-id"
	blockIDKey = "block-id"
	timeoutKey = "timeout"
)

var errNotFound = errors.New("not found")

type queryConfig struct {
	Addr    string
	Query   types.StatusQuery
	Timeout time.Duration
}

func addQueryFlags(flags *pflag.FlagSet) {
	flags.String(addrKey, "127.0.0.1:9985", "gRPC address of a running ledgerstatusd")
	flags.String(txIDKey, "", "Transaction to query")
	flags.String(blockIDKey, "", "Block to query")
	flags.Duration(timeoutKey, 5*time.Second, "Query timeout")
}

func parseQueryFlags(flags *pflag.FlagSet, args []string) (*queryConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	var (
		c   queryConfig
		err error
	)
	if c.Addr, err = flags.GetString(addrKey); err != nil {
		return nil, err
	}
	if c.Query.TxID, err = flags.GetString(txIDKey); err != nil {
		return nil, err
	}
	if c.Query.BlockID, err = flags.GetString(blockIDKey); err != nil {
		return nil, err
	}
	if c.Timeout, err = flags.GetDuration(timeoutKey); err != nil {
		return nil, err
	}
	return &c, nil
}

func queryCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "query",
		Short: "Queries the status of a transaction or a block",
		Args:  cobra.NoArgs,
		RunE:  queryFunc,
	}
	addQueryFlags(c.Flags())
	return c
}

func queryFunc(c *cobra.Command, args []string) error {
	cfg, err := parseQueryFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
	defer cancel()

	client, err := statusgrpc.Dial(ctx, cfg.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	outcome, err := client.Status(ctx, cfg.Query)
	if err != nil {
		return err
	}
	if !outcome.Found {
		return errNotFound
	}

	enc := json.NewEncoder(c.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rest.StatusReply{Status: outcome.Status, Links: outcome.LinkMap()})
}
