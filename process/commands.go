package process

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"remap/mapping"
	"remap/rewrite"
	"remap/state"
)

// Resolve implements the resolve subcommand: it canonicalizes each path given
// on the command line and prints the result, one per line. Resolved mappings
// are persisted exactly as during document processing.
func Resolve(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errors.New("no path has been specified")
	}

	store, err := mapping.Open(env.Cfg.Rewrite.Cache.Path, env.Log)
	if err != nil {
		return fmt.Errorf("unable to open mapping cache: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	eng := rewrite.New(env.Origin(), env.Rules(), store, env.Log)

	for _, p := range cmd.Args().Slice() {
		fmt.Fprintf(cmd.Writer, "%s\t%s\n", p, eng.Canonicalize(ctx, p))
	}
	return nil
}

// Clear implements the clear subcommand dropping every stored mapping.
func Clear(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("clear")

	store, err := mapping.Open(env.Cfg.Rewrite.Cache.Path, env.Log)
	if err != nil {
		return fmt.Errorf("unable to open mapping cache: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("unable to count stored mappings: %w", err)
	}
	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("unable to clear mapping cache: %w", err)
	}

	log.Info("Mapping cache cleared", zap.Int64("dropped", count))
	return nil
}
