// Command femur-viewer shows a bone mesh in an interactive 3D window.
//
// With no arguments it opens the validation femur shipped with the data
// set. Errors are printed as "Application Error: ..." and the process
// exits 0 unless --exit-code is given.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thedaneeffect/femur-viewer/internal/config"
	"github.com/thedaneeffect/femur-viewer/internal/mesh"
	"github.com/thedaneeffect/femur-viewer/internal/viewer"
)

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout io.Writer) int {
	var strict bool
	app := new_app(stdout, &strict)
	if err := app.Run(args); err != nil {
		report(stdout, err)
		if strict {
			return 1
		}
	}
	return 0
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Application Error:"), err)
}

func new_app(stdout io.Writer, strict *bool) *cli.App {
	return &cli.App{
		Name:            "femur-viewer",
		Usage:           "display a bone mesh in an interactive 3D window",
		ArgsUsage:       "[mesh file]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stdout,
		ExitErrHandler:  func(*cli.Context, error) {},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return err
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.IntFlag{
				Name:  "width",
				Value: config.DefaultWidth,
				Usage: "window width in pixels",
			},
			&cli.IntFlag{
				Name:  "height",
				Value: config.DefaultHeight,
				Usage: "window height in pixels",
			},
			&cli.StringFlag{
				Name:  "title",
				Value: config.DefaultTitle,
				Usage: "window title",
			},
			&cli.StringFlag{
				Name:  "color",
				Value: config.DefaultColor,
				Usage: "mesh color, a name or #rrggbb",
			},
			&cli.BoolFlag{
				Name:  "edges",
				Usage: "outline every triangle",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "write the loaded mesh as OBJ to `FILE` instead of opening a window",
			},
			&cli.BoolFlag{
				Name:        "exit-code",
				Usage:       "exit with status 1 when an error is reported",
				Destination: strict,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "cpuprofile",
				Usage: "write cpu profile to `FILE`",
			},
			&cli.StringFlag{
				Name:  "memprofile",
				Usage: "write memory profile to `FILE`",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config_from(c)
			if err != nil {
				return err
			}

			logger := new_logger(stdout, c.Bool("debug"))
			defer func() {
				// syncing a pipe or terminal fails harmlessly
				_ = logger.Sync()
			}()

			stop, err := start_profiles(c.String("cpuprofile"), c.String("memprofile"))
			if err != nil {
				return err
			}

			err = view(cfg, c.String("export"), logger)
			return multierr.Combine(err, stop())
		},
	}
}

// config_from layers the config file, the positional path and explicit
// flags over the defaults.
func config_from(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.FromFile(path); err != nil {
			return cfg, err
		}
	}

	if c.NArg() > 1 {
		return cfg, errors.Errorf("expected at most one mesh file, got %d", c.NArg())
	}
	if c.NArg() == 1 {
		cfg.Path = c.Args().First()
	}

	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("title") {
		cfg.Title = c.String("title")
	}
	if c.IsSet("color") {
		cfg.Color = c.String("color")
	}
	if c.IsSet("edges") {
		cfg.ShowEdges = c.Bool("edges")
	}

	return cfg, cfg.Validate()
}

func view(cfg config.Config, export string, logger *zap.SugaredLogger) error {
	v, err := viewer.New(cfg, logger)
	if err != nil {
		return err
	}

	if export == "" {
		return v.Run()
	}

	if err := v.Load(); err != nil {
		return err
	}
	if err := mesh.SaveOBJ(export, v.Mesh()); err != nil {
		return errors.Wrap(err, "export")
	}
	logger.Infof("[Success] Saved to %s", export)
	return nil
}

// start_profiles begins cpu profiling and returns a function that stops it
// and writes the heap profile.
func start_profiles(cpu_profile, mem_profile string) (func() error, error) {
	var cpu_file *os.File
	if cpu_profile != "" {
		f, err := os.Create(cpu_profile)
		if err != nil {
			return nil, errors.Wrap(err, "could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return nil, multierr.Combine(errors.Wrap(err, "could not start CPU profile"), f.Close())
		}
		cpu_file = f
	}

	return func() (err error) {
		if cpu_file != nil {
			pprof.StopCPUProfile()
			err = multierr.Combine(err, cpu_file.Close())
		}
		if mem_profile != "" {
			f, ferr := os.Create(mem_profile)
			if ferr != nil {
				return multierr.Combine(err, errors.Wrap(ferr, "could not create memory profile"))
			}
			runtime.GC() // get up-to-date statistics
			err = multierr.Combine(err, errors.Wrap(pprof.WriteHeapProfile(f), "could not write memory profile"), f.Close())
		}
		return err
	}, nil
}

// new_logger writes bare messages to w, adding level and caller in debug mode.
func new_logger(w io.Writer, debug bool) *zap.SugaredLogger {
	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	level := zap.InfoLevel
	var opts []zap.Option
	if debug {
		level = zap.DebugLevel
		enc.TimeKey = "ts"
		enc.LevelKey = "level"
		enc.NameKey = "logger"
		enc.CallerKey = "caller"
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core, opts...).Sugar()
}
