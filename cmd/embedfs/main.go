// Command embedfs works with embedfs asset bundles: generating Go source
// tables from a directory, packing directories into bundle files,
// inspecting and extracting bundles, and serving a bundle over FUSE.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/embedkit/embedfs"
	"github.com/embedkit/embedfs/bundle"
	"github.com/embedkit/embedfs/fusefs"
	"github.com/embedkit/embedfs/gen"
)

func main() {
	app := &cli.App{
		Name:  "embedfs",
		Usage: "build, inspect, and serve embedded asset tables",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.InfoLevel
			if c.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			return nil
		},
		Commands: []*cli.Command{
			genCommand(),
			packCommand(),
			unpackCommand(),
			inspectCommand(),
			catCommand(),
			mountCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// libLogger adapts the CLI verbosity to the slog loggers the library
// packages accept.
func libLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func genCommand() *cli.Command {
	return &cli.Command{
		Name:      "gen",
		Usage:     "generate a Go source file embedding a directory tree",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
			&cli.StringFlag{Name: "package", Value: "assets", Usage: "package name for the generated file"},
			&cli.StringFlag{Name: "prefix", Value: "Asset", Usage: "identifier prefix for the generated tables"},
			&cli.StringFlag{Name: "build-tag", Usage: "build constraint for the generated file"},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				return cli.Exit("gen: missing directory argument", 2)
			}

			var out io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			opts := []gen.Option{
				gen.WithPackage(c.String("package")),
				gen.WithPrefix(c.String("prefix")),
				gen.WithGenerateLogger(libLogger(c)),
			}
			if tag := c.String("build-tag"); tag != "" {
				opts = append(opts, gen.WithBuildTag(tag))
			}
			return gen.Generate(c.Context, dir, out, opts...)
		},
	}
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "pack a directory tree into a bundle file",
		ArgsUsage: "<dir> <bundle>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "zstd", Usage: "compress the data section with zstd"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("pack: expected <dir> <bundle>", 2)
			}
			dir, out := c.Args().Get(0), c.Args().Get(1)

			opts := []bundle.WriteOption{bundle.WithWriteLogger(libLogger(c))}
			if c.Bool("zstd") {
				opts = append(opts, bundle.WithCompression(bundle.CompressionZstd))
			}
			if err := bundle.WriteFile(c.Context, dir, out, opts...); err != nil {
				return err
			}
			log.Info().Str("bundle", out).Msg("bundle written")
			return nil
		},
	}
}

func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "extract a bundle into a directory",
		ArgsUsage: "<bundle> <dir>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Usage: "replace existing files"},
			&cli.IntFlag{Name: "concurrency", Usage: "parallel file writes (default GOMAXPROCS)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("unpack: expected <bundle> <dir>", 2)
			}
			a, err := bundle.LoadFile(c.Args().Get(0))
			if err != nil {
				return err
			}

			opts := []bundle.ExtractOption{
				bundle.WithOverwrite(c.Bool("overwrite")),
				bundle.WithExtractLogger(libLogger(c)),
			}
			if n := c.Int("concurrency"); n > 0 {
				opts = append(opts, bundle.WithConcurrency(n))
			}
			if err := a.Extract(c.Context, c.Args().Get(1), opts...); err != nil {
				return err
			}
			log.Info().Int("entries", a.Len()).Str("dir", c.Args().Get(1)).Msg("bundle extracted")
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print a bundle's header and entry table",
		ArgsUsage: "<bundle>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("inspect: expected <bundle>", 2)
			}
			a, err := bundle.LoadFile(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("compression: %s\n", a.Compression())
			fmt.Printf("digest:      %s\n", a.DataDigest())
			fmt.Printf("entries:     %d\n", a.Len())
			for _, e := range a.Entries() {
				fmt.Printf("  %10d  %s\n", e.Size, e.Path)
			}
			return nil
		},
	}
}

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "write one entry of a bundle to stdout",
		ArgsUsage: "<bundle> <path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("cat: expected <bundle> <path>", 2)
			}
			a, err := bundle.LoadFile(c.Args().Get(0))
			if err != nil {
				return err
			}

			fsys := embedfs.New()
			if err := a.Mount(fsys); err != nil {
				return err
			}
			data, err := fsys.ReadFile(c.Args().Get(1))
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func mountCommand() *cli.Command {
	return &cli.Command{
		Name:      "mount",
		Usage:     "serve a bundle read-only over FUSE until interrupted",
		ArgsUsage: "<bundle> <mountpoint>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("mount: expected <bundle> <mountpoint>", 2)
			}
			a, err := bundle.LoadFile(c.Args().Get(0))
			if err != nil {
				return err
			}

			fsys := embedfs.New()
			if err := a.Mount(fsys); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			mountPoint := c.Args().Get(1)
			log.Info().Str("mount_point", mountPoint).Int("entries", fsys.Len()).
				Msg("serving filesystem, press Ctrl-C to stop")
			return fusefs.Serve(ctx, fsys, mountPoint, fusefs.WithLogger(libLogger(c)))
		},
	}
}
