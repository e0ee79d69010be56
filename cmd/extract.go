package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/akashicode/pdf2text/internal/batch"
	appconfig "github.com/akashicode/pdf2text/internal/config"
	"github.com/akashicode/pdf2text/internal/display"
	"github.com/akashicode/pdf2text/internal/extract"
	"github.com/akashicode/pdf2text/internal/logging"
	"github.com/akashicode/pdf2text/internal/ocr"
	"github.com/akashicode/pdf2text/internal/reader"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>...",
	Short: "Convert PDF files to plain text",
	Long: `Converts each PDF to plain text and writes <name>.txt next to it (or into --out).

Modes:
  auto  read the text layer; if it holds almost nothing, OCR every page (default)
  text  read the embedded text layer only
  ocr   render every page and run OCR on it

Each file is processed independently; a failing file does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var (
	extractOut    string
	extractStdout bool
)

func init() {
	f := extractCmd.Flags()
	f.StringP("mode", "m", "auto", "extraction mode: auto, text or ocr")
	f.IntP("jobs", "j", 1, "number of files processed at once")
	f.String("backend", "mupdf", "text layer backend: mupdf or ledongthuc")
	f.Int("threshold", extract.DefaultAutoThreshold, "auto mode: minimum text-layer characters to skip OCR")
	f.Float64("scale", extract.DefaultRenderScale, "render scale factor for OCR")
	f.StringSlice("lang", nil, "OCR languages in priority order (default chi_tra,eng)")
	f.StringVarP(&extractOut, "out", "o", "", "directory for .txt output (default: next to each PDF)")
	f.BoolVar(&extractStdout, "stdout", false, "print text to stdout instead of writing files")

	_ = viper.BindPFlag("mode", f.Lookup("mode"))
	_ = viper.BindPFlag("jobs", f.Lookup("jobs"))
	_ = viper.BindPFlag("text_backend", f.Lookup("backend"))
	_ = viper.BindPFlag("auto.threshold", f.Lookup("threshold"))
	_ = viper.BindPFlag("render.scale", f.Lookup("scale"))
	_ = viper.BindPFlag("ocr.languages", f.Lookup("lang"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mode, backend, err := strategy(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files := make([]batch.File, 0, len(args))
	var paths []string
	for _, path := range args {
		f, err := reader.LoadFile(path)
		if err != nil {
			display.Warn(cmd.ErrOrStderr(), fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		files = append(files, batch.File{Name: f.Name, Data: f.Data})
		paths = append(paths, f.Path)
	}
	if len(files) == 0 {
		return batch.ErrNoPDFs
	}

	if extractOut != "" {
		if err := os.MkdirAll(extractOut, 0755); err != nil {
			return fmt.Errorf("create output directory %q: %w", extractOut, err)
		}
	}

	ui := cmd.ErrOrStderr()
	if !extractStdout {
		ui = cmd.OutOrStdout()
	}
	display.PrintBanner(ui, display.RunInfo{
		Files:            len(files),
		Jobs:             cfg.Jobs,
		Mode:             mode.String(),
		TextBackend:      string(backend),
		AutoThreshold:    cfg.Auto.Threshold,
		RenderScale:      cfg.Render.Scale,
		Languages:        cfg.OCR.Languages,
		FallbackLanguage: cfg.OCR.FallbackLanguage,
		TessdataPrefix:   cfg.OCR.TessdataPrefix,
		OCRCompiled:      ocr.Enabled,
	})

	if !ocr.Enabled && mode != extract.ModeText {
		display.Info(ui, "built without OCR support; scanned documents will fail (rebuild with -tags ocr)")
	}

	provider := ocr.NewProvider(ocr.TesseractFactory, cfg.OCROptions(), ocr.WithLogger(logger))
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn("close OCR engine", zap.Error(err))
		}
	}()

	ex := extract.New(reader.NewOpener(backend), provider,
		extract.WithLogger(logger),
		extract.WithAutoThreshold(cfg.Auto.Threshold),
		extract.WithRenderScale(cfg.Render.Scale),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := batch.Run(ctx, ex, files, mode, batch.Options{
		Jobs:     cfg.Jobs,
		Observer: display.NewPresenter(ui, len(files)),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
			continue
		}
		if err := writeResult(cmd.OutOrStdout(), ui, res, paths[res.Job.Index]); err != nil {
			display.ErrorMsg(ui, err.Error())
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	if !extractStdout {
		display.Success(ui, fmt.Sprintf("converted %d file(s)", len(results)))
	}
	return nil
}

// strategy resolves the extraction mode and text backend named in cfg.
func strategy(cfg *appconfig.Config) (extract.Mode, reader.TextBackend, error) {
	mode, err := extract.ParseMode(cfg.Mode)
	if err != nil {
		return "", "", fmt.Errorf("mode: %w", err)
	}
	backend, err := reader.ParseTextBackend(cfg.TextBackend)
	if err != nil {
		return "", "", fmt.Errorf("text backend: %w", err)
	}
	return mode, backend, nil
}

func writeResult(stdout, ui io.Writer, res batch.Result, srcPath string) error {
	if extractStdout {
		if len(res.Text) > 0 {
			fmt.Fprintln(stdout, res.Text)
		}
		return nil
	}

	dir := extractOut
	if dir == "" {
		dir = filepath.Dir(srcPath)
	}
	out := filepath.Join(dir, batch.OutputName(res.Job.Name))
	if err := os.WriteFile(out, []byte(res.Text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	display.FileCreated(ui, out)
	return nil
}
