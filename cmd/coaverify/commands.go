package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anime-shed/coa-verifier-go/internal/config"
	"github.com/anime-shed/coa-verifier-go/internal/container"
	"github.com/anime-shed/coa-verifier-go/internal/logger"
	"github.com/anime-shed/coa-verifier-go/internal/recognition/tesseract"
	"github.com/anime-shed/coa-verifier-go/internal/service"
	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

var version = "1.0.0"

type verifyFlags struct {
	format       string
	expectedCert string
	expectedText string
	languages    string
	dataDir      string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coaverify",
		Short: "Verify certificate-of-authenticity images",
		Long: `coaverify runs the certificate verification pipeline in-process:
preprocessing, text recognition, field extraction, paper and ink analysis
and the weighted authenticity score.

Examples:
  coaverify verify cert.jpg
  coaverify verify cert.jpg --expected-cert CERT-2024-123456 --format yaml
  coaverify verify https://example.com/cert.png --lang eng+kor --format summary`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVerifyCmd())
	return root
}

func newVerifyCmd() *cobra.Command {
	flags := &verifyFlags{}
	cmd := &cobra.Command{
		Use:   "verify <image|url>...",
		Short: "Verify one or more certificate images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.format, "format", "f", "summary", "output format: json, yaml or summary")
	f.StringVar(&flags.expectedCert, "expected-cert", "", "certificate number the image should carry")
	f.StringVar(&flags.expectedText, "expected-text", "", "text the image should contain")
	f.StringVar(&flags.languages, "lang", "", "recognition languages, e.g. eng+kor (overrides OCR_LANGUAGES)")
	f.StringVar(&flags.dataDir, "tessdata", "", "directory holding <lang>.traineddata (overrides OCR_DATA_DIR)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log pipeline stages to stderr")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string, flags *verifyFlags) error {
	render, err := rendererFor(flags.format)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.languages != "" {
		cfg.OCR.Languages = config.ParseLanguages(flags.languages)
	}
	if flags.dataDir != "" {
		cfg.OCR.DataDir = flags.dataDir
	}
	cfg.LogLevel = "warn"
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	// stdout carries the report
	logger.Logger.SetOutput(os.Stderr)

	c, err := container.NewContainer(cfg, tesseract.New)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := service.VerifyOptions{
		ExpectedCertNumber: flags.expectedCert,
		ExpectedText:       flags.expectedText,
	}

	failed := 0
	for _, source := range args {
		result, err := verifySource(ctx, c.Service(), source, opts)
		if err != nil {
			colorRed.Fprintf(os.Stderr, "%s: %v\n", source, err)
			failed++
			continue
		}
		if !result.Success {
			failed++
		}
		if err := render(cmd.OutOrStdout(), source, result); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d verifications failed", failed, len(args))
	}
	return nil
}

func verifySource(ctx context.Context, svc service.VerificationService, source string, opts service.VerifyOptions) (*models.VerificationResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return svc.VerifyURL(ctx, source, opts)
	}
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return svc.Verify(ctx, raw, opts), nil
}
