package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/kvcell/codec"
)

var errNotSet = errors.New("key not set")

// storeCmd builds a command that opens the store stack before running fn.
func storeCmd(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			e, err := openEnv(ctx, v)
			if err != nil {
				return err
			}
			defer e.Close(ctx)
			return fn(ctx, cmd, e, args)
		},
	}
	addStoreFlags(cmd)
	addEnvelopeFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := storeCmd("get KEY", "Print the stored value of KEY", cobra.ExactArgs(1), runGet)
	cmd.Long = `Prints "<kind><TAB><payload>" for KEY. Exits non-zero when nothing is stored.
Undecodable entries are deleted and reported as not set.`
	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
	c, err := e.cell(ctx, args[0])
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	val, ok := c.Get()
	if !ok {
		return fmt.Errorf("%s: %w", c.StorageKey(), errNotSet)
	}
	return printValue(cmd.OutOrStdout(), val, ok)
}

func newSetCmd() *cobra.Command {
	cmd := storeCmd("set KEY [VALUE|-]", "Store VALUE (or stdin) under KEY", cobra.RangeArgs(1, 2), runSet)
	cmd.Long = `Stores VALUE under KEY and publishes the change on the bus, if any.
VALUE is read like "kvcell encode": JSON is classified by shape, other text is
a string, and --as forces a kind. Setting null removes the entry.`
	cmd.Flags().String("as", "auto", "kind to read VALUE as: auto|number|string|boolean|object|null|map|set|date|any")
	return cmd
}

func runSet(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
	s, err := readArg(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}
	val, err := parseLiteral(s, e.v.GetString("as"))
	if err != nil {
		return err
	}
	c, err := e.cell(ctx, args[0])
	if err != nil {
		return err
	}
	defer c.Close(ctx)
	return c.Set(ctx, val)
}

func newRmCmd() *cobra.Command {
	cmd := storeCmd("rm KEY", "Remove KEY", cobra.ExactArgs(1), runRm)
	return cmd
}

func runRm(ctx context.Context, _ *cobra.Command, e *env, args []string) error {
	c, err := e.cell(ctx, args[0])
	if err != nil {
		return err
	}
	defer c.Close(ctx)
	return c.Remove(ctx)
}

func newWatchCmd() *cobra.Command {
	cmd := storeCmd("watch KEY", "Print KEY's value and every change to it", cobra.ExactArgs(1), runWatch)
	cmd.Long = `Prints the current value of KEY, then one line per change published by
other writers, until interrupted. Requires --bus redis.`
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
	if e.bus == nil {
		return errors.New("watch needs a notification bus (--bus redis)")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := e.cell(ctx, args[0])
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	show := func(v codec.Value, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if err := printValue(out, v, ok); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
	unsub := c.Subscribe(show)
	defer unsub()

	val, ok := c.Get()
	show(val, ok)

	<-ctx.Done()
	return nil
}

func printValue(w io.Writer, v codec.Value, ok bool) error {
	if !ok {
		_, err := fmt.Fprintln(w, "absent")
		return err
	}
	line, err := describe(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, line)
	return err
}
