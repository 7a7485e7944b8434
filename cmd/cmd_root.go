package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ec2recon/ec2recon/cmd/report"
	"github.com/ec2recon/ec2recon/cmd/update"
	"github.com/ec2recon/ec2recon/cmd/version"
	"github.com/ec2recon/ec2recon/internal/build_info"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var RootCmd = &cobra.Command{
	Use:   "ec2recon",
	Short: "A CLI tool for discovering EC2 resources in an AWS region",
	Long:  "Discovers AMIs, instance types, VPCs, subnets, security groups and key pairs in a selected AWS region and renders them into a markdown report with a Terraform scaffold.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if build_info.Version == build_info.DefaultDevVersion {
			fmt.Printf("\n%s\n%s\n%s\n\n",
				color.RedString("┌──────────────────────────────────────────────────────────┐"),
				color.RedString("│ ⚠️  WARNING: This is a development build                 │"),
				color.RedString("└──────────────────────────────────────────────────────────┘"))
		}

		fmt.Printf("%s %s %s %s\n",
			color.CyanString("Executing ec2recon with build"),
			color.GreenString("version=%s", build_info.Version),
			color.YellowString("commit=%s", build_info.Commit),
			color.BlueString("date=%s", build_info.Date))

		if err := checkWritePermissions(); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", color.RedString("Error: %v", err))
			os.Exit(1)
		}
	},
}

func init() {
	cobra.EnableTraverseRunHooks = true

	// One log file per run, timestamped alongside the report.
	lumberjackLogger := &lumberjack.Logger{
		Filename: fmt.Sprintf("ec2recon_%s.log", time.Now().Format("2006-01-02_15-04-05")),
		MaxSize:  25,
		Compress: true,
	}
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	handler := NewPrettyHandler(io.MultiWriter(lumberjackLogger, os.Stdout), opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)

	RootCmd.AddCommand(
		report.NewReportCmd(),
		version.NewVersionCmd(),
		update.NewUpdateCmd(),
	)
}

type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

type PrettyHandler struct {
	slog.Handler
	l *log.Logger
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	time := r.Time.Format("2006/01/02 15:04:05")
	level := r.Level.String()
	message := r.Message

	values := []string{}
	r.Attrs(func(a slog.Attr) bool {
		values = append(values, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	})

	h.l.Printf("%s %s %s %s", time, level, message, strings.Join(values, " "))

	return nil
}

func NewPrettyHandler(
	out io.Writer,
	opts PrettyHandlerOptions,
) *PrettyHandler {
	h := &PrettyHandler{
		Handler: slog.NewTextHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
	}

	return h
}

// The report and log files land in the working directory, so refuse to start
// if it isn't writable.
func checkWritePermissions() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	testFile, err := os.CreateTemp(cwd, ".ec2recon-write-test-*")
	if err != nil {
		return fmt.Errorf("current working directory '%s' does not have write permissions for the current user", cwd)
	}

	// Defer works on a LIFO execution order.
	defer os.Remove(testFile.Name())
	defer testFile.Close()

	return nil
}
