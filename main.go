package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin"
	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/config"
	"github.com/vchilikov/mediasort/internal/logging"
	"github.com/vchilikov/mediasort/internal/mediaext"
	"github.com/vchilikov/mediasort/internal/selector"
	"github.com/vchilikov/mediasort/internal/wizard"
)

const (
	cmdPhotos = "photos"
	cmdROMs   = "roms"
)

var (
	runWizard        = wizard.Run
	loadConfig       = config.Load
	configureLogging = logging.Configure
)

type cliOptions struct {
	workdir string
	config  string
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func newApp(errOut io.Writer) (*kingpin.Application, *cliOptions) {
	opts := &cliOptions{}
	app := kingpin.New("mediasort", "Sort photos and videos into year/month folders, or pick ROMs into a selection folder.")
	app.UsageWriter(errOut)
	app.ErrorWriter(errOut)

	app.Flag("workdir", "Working directory (defaults to the current directory).").StringVar(&opts.workdir)
	app.Flag("config", "Config file (defaults to mediasort.yaml in the working directory).").StringVar(&opts.config)
	app.Flag("verbose", "Log debug details.").Short('v').BoolVar(&opts.verbose)

	app.Command(cmdPhotos, photosHelp()).Default()
	app.Command(cmdROMs, "Interactive ROM selector.")
	return app, opts
}

func photosHelp() string {
	return fmt.Sprintf("Interactive photo and video organizer. Images: %s. Videos: %s.",
		strings.Join(mediaext.Images(), " "), strings.Join(mediaext.Videos(), " "))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	app, opts := newApp(errOut)
	command, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(errOut, "invalid arguments: %v\n", err)
		fmt.Fprintln(errOut, "usage: mediasort [photos|roms] [--workdir /path/to/folder] [--config file.yaml] [--verbose]")
		return wizard.ExitRuntimeFail
	}

	workDir, err := resolveWorkDir(opts.workdir, os.Getwd, os.Stat)
	if err != nil {
		fmt.Fprintf(errOut, "invalid arguments: %v\n", err)
		return wizard.ExitRuntimeFail
	}

	cfg, err := loadConfig(workDir, opts.config)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return wizard.ExitPreflightFail
	}

	closeLog, err := configureLogging(logrus.StandardLogger(), cfg.Log, opts.verbose)
	if err != nil {
		fmt.Fprintf(errOut, "logging: %v\n", err)
		return wizard.ExitPreflightFail
	}
	defer func() { _ = closeLog() }()

	logrus.WithFields(logrus.Fields{
		"command": command,
		"workdir": workDir,
		"config":  cfg.File,
	}).Info("mediasort started")

	switch command {
	case cmdROMs:
		session := &selector.Session{
			Source: cfg.Selector.SourceDir,
			Dest:   cfg.Selector.DestDir,
			Ext:    cfg.Selector.Extension,
			Logger: logrus.StandardLogger(),
		}
		if err := session.Run(in, out); err != nil {
			fmt.Fprintf(errOut, "roms: %v\n", err)
			logrus.WithError(err).Error("selector stopped")
			return wizard.ExitRuntimeFail
		}
		return wizard.ExitSuccess
	default:
		return runWizard(workDir, in, out, cfg)
	}
}

func resolveWorkDir(
	flagValue string,
	getwd func() (string, error),
	statFn func(string) (os.FileInfo, error),
) (string, error) {
	resolved := strings.TrimSpace(flagValue)
	if resolved == "" {
		cwd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("get current working directory: %w", err)
		}
		resolved = cwd
	}

	info, err := statFn(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("workdir %q does not exist", resolved)
		}
		return "", fmt.Errorf("stat workdir %q: %w", resolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workdir %q is not a directory", resolved)
	}

	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	return resolved, nil
}
