package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/services"
	"github.com/spf13/cobra"
)

// orchestratorFactory builds an Orchestrator; full is false when only the
// preference store is needed.
type orchestratorFactory func(ctx context.Context, full bool) (*services.Orchestrator, error)

type app struct {
	newOrchestrator orchestratorFactory
	out             io.Writer

	userID  string
	asJSON  bool
	verbose bool
}

func defaultFactory(ctx context.Context, full bool) (*services.Orchestrator, error) {
	cfg, err := services.LoadConfig()
	if err != nil {
		return nil, err
	}
	if full {
		return services.NewOrchestrator(ctx, cfg, nil)
	}
	store, err := services.NewPreferenceStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return services.New(store, nil, nil), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "translatectl",
		Short: "Run the translator pipeline from the command line",
		Long: `translatectl runs the same entry points as the deployed functions.

Configuration comes from the environment (or a .env file in the working
directory). Use PREFERENCE_BACKEND=memory to run without Firestore.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&a.userID, "user", "cli", "User ID whose preferred language is used")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print the full response as JSON")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Log pipeline progress to stderr")

	root.AddCommand(
		newMessageCmd(a),
		newTextCmd(a),
		newPreferCmd(a),
	)
	return root
}

func newMessageCmd(a *app) *cobra.Command {
	var attach []string

	cmd := &cobra.Command{
		Use:   "message [content]",
		Short: "Translate a message body and its image attachments",
		Long: `Translate a message the way the "Translate" context menu does.

Attachments are local files, gs:// objects or http(s) URLs.

Examples:
  translatectl message "Bonjour tout le monde"
  translatectl message --attach sign.png --attach gs://bucket/menu.jpg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := models.Message{ID: "cli"}
			if len(args) == 1 {
				msg.Content = args[0]
			}
			for _, ref := range attach {
				att, err := loadAttachment(ref)
				if err != nil {
					return err
				}
				msg.Attachments = append(msg.Attachments, att)
			}

			o, err := a.newOrchestrator(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer o.Close()
			return a.print(o.TranslateMessage(cmd.Context(), a.userID, msg))
		},
	}

	cmd.Flags().StringArrayVar(&attach, "attach", nil, "Attachment path or URL (repeatable)")
	return cmd
}

func newTextCmd(a *app) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "text <text...>",
		Short: "Translate free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.newOrchestrator(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer o.Close()
			return a.print(o.TranslateText(cmd.Context(), a.userID, strings.Join(args, " "), to))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target language code (default: the user's preferred language)")
	return cmd
}

func newPreferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prefer <language>",
		Short: "Set the user's preferred language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.newOrchestrator(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer o.Close()
			return a.print(o.SetPreference(cmd.Context(), a.userID, args[0]))
		},
	}
}

// loadAttachment reads local files inline and passes URLs through for the
// attachment loader to fetch.
func loadAttachment(ref string) (models.Attachment, error) {
	if strings.HasPrefix(ref, "gs://") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return models.Attachment{Filename: ref, URL: ref}, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	return models.Attachment{Filename: ref, Data: data}, nil
}

func (a *app) print(res *models.Response) error {
	if a.asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(a.out, res.Content)
	}
	if res.Status == models.StatusFailed {
		return fmt.Errorf("request failed")
	}
	return nil
}

func main() {
	a := &app{newOrchestrator: defaultFactory, out: os.Stdout}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
