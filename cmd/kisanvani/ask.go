package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/kisanvani/internal/message"
	grpctransport "github.com/nadzzz/kisanvani/internal/transport/grpc"
)

type askFlags struct {
	audioFile string
	url       string
	speak     bool
	remote    string
	asJSON    bool
	verbose   bool
}

func newAskCmd() *cobra.Command {
	var f askFlags
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Run a single advisory turn and print the answer",
		Long: `Runs one turn through the advisory pipeline in-process, or against a
running server when --remote is given.

Examples:
  kisanvani ask "paruthi crop vilkanam eppozhanu nallath?"
  kisanvani ask --audio question.mp3 --speak
  kisanvani ask --remote localhost:50051 --url https://example.org/advisory.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &message.TurnRequest{URL: f.url, Speak: f.speak}
			if len(args) == 1 {
				req.Text = args[0]
			}
			if f.audioFile != "" {
				data, err := os.ReadFile(f.audioFile)
				if err != nil {
					return fmt.Errorf("reading audio: %w", err)
				}
				req.Audio = data
				req.ContentType = filepath.Ext(f.audioFile)
			}
			if _, err := req.Source(); err != nil {
				return err
			}

			var (
				result any
				err    error
			)
			if f.remote != "" {
				result, err = askRemote(cmd, f.remote, req)
			} else {
				result, err = askLocal(cmd, req, f.verbose)
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, f.asJSON)
		},
	}
	cmd.Flags().StringVar(&f.audioFile, "audio", "", "recorded query file")
	cmd.Flags().StringVar(&f.url, "url", "", "remote audio or web page holding the query")
	cmd.Flags().BoolVar(&f.speak, "speak", false, "synthesize the answer")
	cmd.Flags().StringVar(&f.remote, "remote", "", "gRPC address of a running server")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log pipeline progress to stderr")
	return cmd
}

func askLocal(cmd *cobra.Command, req *message.TurnRequest, verbose bool) (any, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	p, err := buildPipeline(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	result, err := p.advisor.HandleTurn(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	if result.HasAudio() {
		result.AudioFile = filepath.Join(p.artifacts.Dir(), result.AudioFile)
	}
	return result, nil
}

func askRemote(cmd *cobra.Command, addr string, req *message.TurnRequest) (any, error) {
	client, err := grpctransport.Dial(addr)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Advise(cmd.Context(), &grpctransport.AdviseRequest{
		Query:       req.Text,
		URL:         req.URL,
		Audio:       req.Audio,
		ContentType: req.ContentType,
		Speak:       req.Speak,
	})
}

// printResult writes either the JSON form or a short human summary.
func printResult(w io.Writer, result any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var v struct {
		Response         string `json:"response"`
		Intent           string `json:"intent"`
		AudioFile        string `json:"audio_file"`
		AudioURL         string `json:"audio_url"`
		TranscribedQuery string `json:"transcribed_query"`
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}

	var sb strings.Builder
	if v.TranscribedQuery != "" {
		fmt.Fprintf(&sb, "Heard:  %s\n", v.TranscribedQuery)
	}
	fmt.Fprintf(&sb, "Intent: %s\n\n%s\n", v.Intent, v.Response)
	switch {
	case v.AudioFile != "":
		fmt.Fprintf(&sb, "\nAudio:  %s\n", v.AudioFile)
	case v.AudioURL != "":
		fmt.Fprintf(&sb, "\nAudio:  %s\n", v.AudioURL)
	}
	_, err = io.WriteString(w, sb.String())
	return err
}
