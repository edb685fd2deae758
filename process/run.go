// Package process implements the document processing pipeline: it discovers
// HTML and CSS documents in a directory tree, a zip archive or a single file,
// runs them through the rewrite engine and writes results to the destination,
// carrying all other files over verbatim.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	fixzip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"remap/archive"
	"remap/common"
	"remap/mapping"
	"remap/rewrite"
	"remap/state"
)

// runStats accumulates what a single run touched, processing is sequential so
// no locking is needed.
type runStats struct {
	processed []string
	copied    int
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite, env.Fresh = cmd.Bool("overwrite"), cmd.Bool("fresh")

	// Site exports produced on old systems may carry document content in a
	// legacy code page rather than UTF-8
	cp := cmd.String("force-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 document content", zap.String("charset", n))
		}
	}

	cachePath := env.Cfg.Rewrite.Cache.Path
	if cmd.Bool("no-cache") {
		// mappings are still computed consistently within the run, they are
		// just not persisted
		cachePath = ""
	}
	store, err := mapping.Open(cachePath, env.Log)
	if err != nil {
		return fmt.Errorf("unable to open mapping cache: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	if env.Fresh {
		count, _ := store.Count(ctx)
		if err := store.ClearAll(ctx); err != nil {
			return fmt.Errorf("unable to clear mapping cache: %w", err)
		}
		log.Info("Mapping cache cleared", zap.Int64("dropped", count))
	}

	eng := rewrite.New(env.Origin(), env.Rules(), store, env.Log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	stats := new(runStats)
	if err := process(ctx, eng, src, dst, stats, log); err != nil {
		return err
	}

	if eng.StoreDegraded() {
		log.Warn("Mapping cache was unavailable during this run, computed mappings were not persisted")
	}

	sort.Sort(natural.StringSlice(stats.processed))
	log.Info("Documents rewritten", zap.Int("documents", len(stats.processed)), zap.Int("copied", stats.copied))

	if env.Rpt != nil {
		env.Rpt.StoreData("processed.txt", []byte(strings.Join(stats.processed, "\n")))
		if len(cachePath) > 0 && !eng.StoreDegraded() {
			env.Rpt.Store("mapping-cache.db", cachePath)
		}
	}
	return nil
}

// process handles the core pipeline logic independently of CLI framework. It
// determines the input type (directory, archive, or single document) and
// processes accordingly.
func process(ctx context.Context, eng *rewrite.Engine, src, dst string, stats *runStats, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		return processDir(ctx, eng, src, dst, stats, log)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	arc, err := isArchiveFile(src)
	if err != nil {
		return fmt.Errorf("unable to check archive type: %w", err)
	}
	if arc {
		return processArchive(ctx, eng, src, dst, stats, log)
	}

	kind := detectKind(src)
	if !kind.Rewritable() {
		return fmt.Errorf("input was not recognized as HTML or CSS document (%s)", src)
	}
	return processDoc(ctx, eng, src, filepath.Base(src), dst, kind, stats, log)
}

// processDir walks directory tree rewriting every HTML and CSS document and
// copying everything else over unchanged.
func processDir(ctx context.Context, eng *rewrite.Engine, dir, dst string, stats *runStats, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		kind := detectKind(path)
		if !kind.Rewritable() {
			if err := copyVerbatim(ctx, path, rel, dst); err != nil {
				log.Error("Unable to copy file", zap.String("file", path), zap.Error(err))
			} else {
				stats.copied++
			}
			return nil
		}

		count++

		if err := processDoc(ctx, eng, path, rel, dst, kind, stats, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive rewrites HTML and CSS entries of a zip archive producing a
// new archive under dst. All other entries are raw-copied keeping their
// compressed bytes.
func processArchive(ctx context.Context, eng *rewrite.Engine, path, dst string, stats *runStats, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	outName := outputName(dst, filepath.Base(path), env)
	out, err := createOutput(outName, env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	w := fixzip.NewWriter(out)
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	count := 0
	err = archive.Walk(path, "", func(arc string, f *fixzip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind := detectKind(f.Name)
		if !kind.Rewritable() {
			// some readers (Windows explorer included) have problems with
			// data descriptors
			f.Flags &= ^fixzip.FlagDataDescriptor
			if err := w.CopyFile(f); err != nil {
				return fmt.Errorf("unable to copy entry %q: %w", f.Name, err)
			}
			stats.copied++
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}

		doc := rewriteDoc(ctx, eng, kind, data, f.Name, log)

		hdr := &fixzip.FileHeader{Name: f.Name, Method: fixzip.Deflate}
		hdr.SetModTime(f.ModTime())
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("unable to create entry %q: %w", f.Name, err)
		}
		if _, err := fw.Write(doc); err != nil {
			return fmt.Errorf("unable to write entry %q: %w", f.Name, err)
		}

		stats.processed = append(stats.processed, f.Name)
		return nil
	})
	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return err
}

// processDoc rewrites a single document. "rel" is the source path relative to
// the original input (just the base name when a single file was specified),
// it decides where under dst the result lands.
func processDoc(ctx context.Context, eng *rewrite.Engine, path, rel, dst string, kind common.DocKind, stats *runStats, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	outName := outputName(dst, rel, env)

	log.Info("Rewrite starting", zap.String("from", rel), zap.Stringer("kind", kind))
	defer func(start time.Time) {
		// a single malformed document must not stop a batch run
		if r := recover(); r != nil {
			log.Error("Rewrite ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rewrite panic: %v", r)
		} else {
			log.Info("Rewrite completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outName))
		}
	}(time.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc := rewriteDoc(ctx, eng, kind, data, rel, log)

	out, err := createOutput(outName, env)
	if err != nil {
		return err
	}
	defer func() {
		rerr = multierr.Append(rerr, out.Close())
	}()

	if _, err := out.Write(doc); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	stats.processed = append(stats.processed, rel)
	return nil
}

// rewriteDoc decodes document content when a code page was forced and runs it
// through the engine.
func rewriteDoc(ctx context.Context, eng *rewrite.Engine, kind common.DocKind, data []byte, name string, log *zap.Logger) []byte {
	cp := state.EnvFromContext(ctx).CodePage
	if cp != nil {
		if d, err := cp.NewDecoder().Bytes(data); err == nil {
			data = d
		} else {
			n, _ := ianaindex.IANA.Name(cp)
			log.Warn("Unable to convert document from specified encoding",
				zap.String("charset", n), zap.String("file", name), zap.Error(err))
		}
	}
	return []byte(eng.RewriteDoc(ctx, kind, string(data)))
}

// copyVerbatim carries a non-document file to the destination unchanged.
func copyVerbatim(ctx context.Context, path, rel, dst string) (err error) {
	env := state.EnvFromContext(ctx)

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(filepath.Join(dst, filepath.FromSlash(rel)), env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
