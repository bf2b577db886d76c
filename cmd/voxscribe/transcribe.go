package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/kbukum/voxscribe/bootstrap"
	"github.com/kbukum/voxscribe/display"
	"github.com/kbukum/voxscribe/form"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
)

// cliSession is the only session of a command-line run.
const cliSession = "cli"

type transcribeOptions struct {
	file   string
	out    string
	copy   bool
	popups bool
	stdout io.Writer
	stderr io.Writer
}

func runTranscribe(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("transcribe", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yml")
	envPath := fs.String("env", "", "path to a .env file")
	providerName := fs.String("provider", "", "transcription backend: gemini, openai or whisper")
	opts := transcribeOptions{stdout: os.Stdout, stderr: os.Stderr}
	fs.StringVarP(&opts.out, "out", "o", "", "write the transcript to this file, or to transcript.txt inside this directory")
	fs.BoolVar(&opts.copy, "copy", false, "copy the transcript to the system clipboard")
	fs.BoolVar(&opts.popups, "notify", true, "show desktop notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: voxscribe transcribe FILE [--out PATH] [--copy] [--provider NAME]")
	}
	opts.file = fs.Arg(0)

	cfg, err := loadConfig(*configPath, *envPath)
	if err != nil {
		return err
	}
	if *providerName != "" {
		cfg.Transcription.Provider = *providerName
	}
	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return err
	}
	obs, err := observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, app.Logger)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(obs); err != nil {
		return err
	}
	svc, err := newTranscriptionService(cfg, obs.Metrics(), app.Logger)
	if err != nil {
		return err
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return transcribeFile(ctx, svc, opts)
	})
}

// transcribeFile runs one upload through the same form, store and display
// the web page uses, with notices on the console and desktop.
func transcribeFile(ctx context.Context, action form.Transcriber, opts transcribeOptions) error {
	notifier := notice.NewDesktop(opts.stderr, opts.popups)
	store := transcript.NewStore(transcript.NewMemoryBackend())
	f := form.New(action, store, notifier)
	disp := display.New(display.NewSystem(), notifier)

	up, err := readAudio(opts.file, action.MaxBytes())
	if err != nil {
		return err
	}
	if _, err := f.Submit(ctx, cliSession, up); err != nil {
		return err
	}
	t, err := store.Get(ctx, cliSession)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.stdout, t.Text)

	if opts.out != "" {
		att, err := disp.Download(ctx, cliSession, t)
		if err != nil {
			return err
		}
		path := opts.out
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, att.Filename)
		}
		if err := os.WriteFile(path, att.Body, 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	}
	if opts.copy {
		// A failed copy already raised its notice; the transcript was
		// printed, so the run still succeeds.
		_ = disp.Copy(ctx, cliSession, t)
	}
	return nil
}

// readAudio reads at most limit+1 bytes so an oversized file is still
// rejected by size without loading it whole.
func readAudio(path string, limit int64) (*transcription.Upload, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return &transcription.Upload{Filename: filepath.Base(path), Size: info.Size(), Data: data}, nil
}
