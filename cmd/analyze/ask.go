package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/postpulse/internal/adapters/llm"
	"github.com/okian/postpulse/internal/config"
	"github.com/okian/postpulse/internal/domain/prompt"
	"github.com/okian/postpulse/pkg/logger"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var (
		name string
		text string
	)

	cmd := &cobra.Command{
		Use:   "ask [FILE]",
		Short: "Send one prompt built from an export to the LLM",
		Long: `Build the prompt named by --prompt (default: recommendation) from the
export and print the model's answer. --text sends free text instead and
needs no file. Requires POSTPULSE_LLM_API_KEY.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.cfg
			if cfg == nil {
				cfg = config.New()
			}

			client := llm.New(llm.Config{
				APIURL:      cfg.LLMAPIURL,
				APIKey:      cfg.LLMAPIKey,
				Model:       cfg.LLMModel,
				Temperature: &cfg.LLMTemperature,
				Timeout:     cfg.LLMTimeout(),
			})
			if !client.Enabled() {
				return fmt.Errorf("%w: set %sLLM_API_KEY", llm.ErrMissingAPIKey, config.EnvPrefix)
			}

			body := text
			if body == "" {
				if len(args) == 0 {
					return errors.New("a FILE or --text is required")
				}
				a, err := opts.analyze(ctx, args[0])
				if err != nil {
					return err
				}
				if body, err = promptText(a.set, name); err != nil {
					return err
				}
			}

			opts.logr().Info(ctx, "sending prompt",
				logger.String("prompt", name),
				logger.String("model", client.Model()),
				logger.Int("chars", len(body)),
			)
			answer, err := client.Analyze(ctx, body)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "prompt", prompt.NameRecommendation, "prompt name to send")
	cmd.Flags().StringVar(&text, "text", "", "free text to send instead of a built prompt")
	return cmd
}
