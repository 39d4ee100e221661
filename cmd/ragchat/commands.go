package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragchat/internal/config"
	"ragchat/internal/extract"
	"ragchat/internal/service"
	"ragchat/internal/tui"
	"ragchat/internal/watcher"
)

func chatCMD(cfgPath *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Plain streaming chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			done, err := setupLogging(*debug)
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			m := startMetrics(ctx, cfg)
			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}
			svc := service.NewChatService(provider, options(cfg), m)
			log.Printf("chat session %s with %s/%s", svc.SessionID(), cfg.LLM.Provider, cfg.LLM.Model)
			_, err = tea.NewProgram(tui.NewChat(ctx, svc), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return ignoreKilled(err)
		},
	}
}

func ragCMD(cfgPath *string, debug *bool) *cobra.Command {
	var watchDir string
	rag := &cobra.Command{
		Use:   "rag [file ...]",
		Short: "Chat grounded on uploaded PDF and text documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			m := startMetrics(ctx, cfg)
			svc, closeStore, err := newRAGService(ctx, cfg, m)
			if err != nil {
				return err
			}
			defer closeStore()

			var summaries []string
			for _, path := range expand(args) {
				up, err := svc.IngestFile(ctx, path)
				if err != nil {
					return fmt.Errorf("ingest failed: %w", err)
				}
				summaries = append(summaries, fmt.Sprintf("%s (%d chunks)", up.Name, up.Chunks))
			}
			summary := "No documents yet."
			if len(summaries) > 0 {
				summary = "Loaded " + strings.Join(summaries, ", ")
			} else if n := svc.Documents(); n > 0 {
				summary = fmt.Sprintf("%d chunks already indexed.", n)
			}

			done, err := setupLogging(*debug)
			if err != nil {
				return err
			}
			defer done()
			log.Printf("rag session %s with %s/%s", svc.SessionID(), cfg.LLM.Provider, cfg.LLM.Model)

			p := tea.NewProgram(tui.NewRAG(ctx, svc, summary), tea.WithAltScreen(), tea.WithContext(ctx))
			if watchDir != "" {
				w, err := watcher.New()
				if err != nil {
					return err
				}
				defer w.Stop()
				paths, err := w.Watch(ctx, watchDir)
				if err != nil {
					return err
				}
				go func() {
					for path := range paths {
						p.Send(tui.FileDropped{Path: path})
					}
				}()
			}
			_, err = p.Run()
			return ignoreKilled(err)
		},
	}
	rag.Flags().StringVar(&watchDir, "watch", "", "index files dropped into this directory")
	return rag
}

func ingestCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest file [file ...]",
		Short: "Index documents into the configured vector store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.VectorStore.Type == "memory" || cfg.VectorStore.Type == "" {
				log.Printf("vector_store.type is memory; the index is discarded on exit")
			}
			ctx := cmd.Context()
			svc, closeStore, err := newRAGService(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer closeStore()

			paths := expand(args)
			if len(paths) == 0 {
				return fmt.Errorf("no supported documents found (want one of %s)", strings.Join(extract.Supported, ", "))
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				up, err := svc.IngestFile(ctx, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d chunks\n", path, up.Chunks)
				if up.Summary != "" {
					fmt.Fprintf(out, "  %s\n", strings.Join(strings.Fields(up.Summary), " "))
				}
			}
			return nil
		},
	}
}

func configCMD() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage the configuration file"}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultUserConfigPath()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfg.AddCommand(initCmd)
	return cfg
}

// expand resolves glob patterns and keeps supported documents.
func expand(args []string) []string {
	var out []string
	for _, p := range args {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !extract.IsSupported(m) {
				log.Printf("skipping %s: unsupported file type", m)
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// ignoreKilled treats an interrupt while the UI runs as a normal exit.
func ignoreKilled(err error) error {
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
