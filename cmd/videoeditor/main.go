package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/app"
	"github.com/chandler767/mcp-video-editor-sub000/internal/logger"
	"github.com/chandler767/mcp-video-editor-sub000/internal/server"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "videoeditor",
		Short:        "Script-driven video editing tools over MCP",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.AddCommand(serveCmd(), transcribeCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serveCmd runs the MCP stdio server until the client disconnects or a
// shutdown signal arrives
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve editing tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			zapLogger := logger.NewLogger()
			defer zapLogger.Sync()

			application, err := app.NewApplication()
			if err != nil {
				zapLogger.Error("failed to create application", zap.Error(err))
				return fmt.Errorf("failed to create application: %w", err)
			}

			// Set up signal handling for graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigChan
				zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))
				os.Exit(0)
			}()

			zapLogger.Info("video editor starting up", zap.String("version", version))
			return server.NewServer(application, zapLogger).Serve()
		},
	}
}

// transcribeCmd transcribes a single video and prints the transcript JSON,
// useful for inspecting what the alignment engine will see
func transcribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a video and print the transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zapLogger := logger.NewLogger()
			defer zapLogger.Sync()

			application, err := app.NewApplication()
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			tr, err := application.TranscribeVideo(ctx, args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(tr, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode transcript: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// versionCmd prints version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "videoeditor %s\n", version)
		},
	}
}
