package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/spacesedan/emotisense/config"
	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/logging"
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/processing"
	"github.com/spacesedan/emotisense/internal/prompts"
	"github.com/spacesedan/emotisense/internal/recommendations"
	"github.com/spacesedan/emotisense/internal/render"
)

type promptConfig struct {
	conf.Version
	In        string `conf:"default:-,help:raw inference payload file or - for stdin"`
	Mode      string `conf:"default:single,help:prompt mode single or multi"`
	Recommend bool   `conf:"help:request recommendations from the LLM when configured"`
	Plain     bool   `conf:"help:print recommendations as plain text instead of markdown"`
	LLM       config.LLMConfig
	Log       struct {
		Level string `conf:"default:warn"`
	}
}

func main() {
	config.LoadEnv(config.AppEnv())

	cfg := promptConfig{
		Version: conf.Version{Desc: "EmotiSense prompt builder"},
	}
	help, err := conf.Parse(config.Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.LLM.ApplyDefaults()
	logging.InitLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, cfg); err != nil {
		slog.Error("[Prompt] Failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfg promptConfig) error {
	mode := models.PromptMode(cfg.Mode)
	if mode != models.PromptModeSingle && mode != models.PromptModeMulti {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if cfg.Recommend {
		if err := cfg.LLM.Validate(); err != nil {
			return err
		}
	}

	raw, err := readInput(cfg.In)
	if err != nil {
		return err
	}

	result := processing.Normalize(raw)
	encoded, err := json.MarshalIndent(processing.ViewScores(result), "", "  ")
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	fmt.Fprintf(out, "Scores:\n%s\n\n", encoded)

	top, err := processing.Predominant(result)
	if err != nil {
		fmt.Fprintln(out, "No emotion detected.")
		return nil
	}
	fmt.Fprintf(out, "Predominant: %s\n\n", top.Display())

	prompt := prompts.ForMode(mode, result)
	fmt.Fprintf(out, "Prompt (%s):\n%s\n", prompt.Mode, prompt.RenderedText)

	if !cfg.Recommend {
		return nil
	}

	svc := recommendations.NewService(clients.NewOpenAIClient(cfg.LLM.OpenAIClient()))
	rec := svc.Generate(ctx, models.RecommendationRequest{PredominantEmotionLabel: top.Label})
	if !rec.Success {
		fmt.Fprintf(out, "\nRecommendations unavailable (%s): %s\n", rec.ErrorCategory, rec.Message)
		for _, g := range rec.StaticGuidance {
			fmt.Fprintf(out, "\n%s\n%s\n", g.Title, g.Content)
		}
		return nil
	}

	text := rec.Text
	if cfg.Plain {
		text = render.MarkdownToText(text)
	}
	fmt.Fprintf(out, "\nRecommendations:\n%s\n", text)
	return nil
}

func readInput(in string) ([]byte, error) {
	if in == "" || in == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in, err)
	}
	return raw, nil
}
