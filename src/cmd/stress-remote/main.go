package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"copypolish/src/eventloop"
	"copypolish/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration
}

type sender interface {
	Send(ctx context.Context, command string) (bool, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-remote",
		Short:         "Stress test remote control of the resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := eventloop.ParseCommand(opts.command); err != nil {
				return err
			}
			res := runWithOptions(*opts, singleinstance.NewClient())
			res.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.command, "command", "reload", "command each client sends (start|stop|reload)")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

type result struct {
	launched    int
	ok          int32
	rejected    int32
	notResident int32
	elapsed     time.Duration
}

func (r result) print(w io.Writer) {
	fmt.Fprintf(w, "launched=%d ok=%d rejected=%d no-resident=%d elapsed=%s\n",
		r.launched, r.ok, r.rejected, r.notResident, r.elapsed)
}

func runWithOptions(opts stressOptions, client sender) result {
	var wg sync.WaitGroup
	res := result{launched: opts.n}

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, err := client.Send(ctx, opts.command)
			switch {
			case !delegated:
				atomic.AddInt32(&res.notResident, 1)
			case err != nil:
				atomic.AddInt32(&res.rejected, 1)
			default:
				atomic.AddInt32(&res.ok, 1)
			}
		}()
	}
	wg.Wait()
	res.elapsed = time.Since(start)
	return res
}
