// Command parkctl is a scriptable client for a site's parkd control API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chinopark/internal/site"
	"github.com/matheus3301/chinopark/internal/tui/client"
)

type options struct {
	site    string
	output  string
	timeout time.Duration
	// dial is swapped in tests.
	dial func(socketPath string) (*client.Client, error)
}

func main() {
	if err := newRootCmd(&options{dial: client.New}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Control a chino park site daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			opts.site = site.Resolve(opts.site)
			if err := site.ValidateName(opts.site); err != nil {
				return err
			}
			_, err := newPrinter(opts.output, nil)
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.site, "site", "", "site name (overrides config default)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		newStatusCmd(opts),
		newSpacesCmd(opts),
		newReportCmd(opts),
		newCheckInCmd(opts),
		newCheckOutCmd(opts),
		newWatchCmd(opts),
		newLockCmd(opts),
	)
	return root
}

// connect dials the site daemon. The returned cancel releases both the
// context and the connection.
func (o *options) connect(parent context.Context, timeout bool) (*client.Client, context.Context, func(), error) {
	c, err := o.dial(site.SocketPath(o.site))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot connect to daemon for site %q: %w", o.site, err)
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout {
		ctx, cancel = context.WithTimeout(parent, o.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return c, ctx, func() {
		cancel()
		_ = c.Close()
	}, nil
}
