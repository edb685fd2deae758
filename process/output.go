package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"remap/config"
	"remap/state"
)

// outputName builds the destination path for a source entry keeping its
// relative directory structure. Only the base name is transliterated, clean
// paths inside documents never depend on where files land on disk.
func outputName(dst, rel string, env *state.LocalEnv) string {
	dir, base := filepath.Split(filepath.FromSlash(rel))
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if env.Cfg != nil && env.Cfg.Rewrite.FileNameTransliterate {
		name = slug.Make(name)
	}
	return filepath.Join(dst, dir, config.CleanFileName(name)+ext)
}

// createOutput prepares the destination file honoring the overwrite flag.
func createOutput(name string, env *state.LocalEnv) (*os.File, error) {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return nil, fmt.Errorf("destination file already exists: %s (use --ow to overwrite)", name)
		}
		if err := os.Remove(name); err != nil {
			return nil, fmt.Errorf("unable to remove existing destination file: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return nil, fmt.Errorf("unable to create destination directory: %w", err)
	}
	return os.Create(name)
}
