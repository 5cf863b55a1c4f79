package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/config"
	"github.com/larkkit/lark-cli/internal/iocontext"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Post through a custom bot webhook",
		Long: `Post through a custom bot's incoming webhook.

Webhooks need no app credentials. The hook URL and signing secret come
from --webhook/--secret, LARK_WEBHOOK_URL/LARK_WEBHOOK_SECRET, or the
current profile, in that order.`,
	}
	cmd.AddCommand(newBotSendCmd())
	return cmd
}

func newBotSendCmd() *cobra.Command {
	var hook, secret, text, card, content, msgType string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a webhook",
		Example: `  lark bot send --text "deploy finished"
  lark bot send --card @card.json
  lark bot send --msg-type post --content @post.json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			msg, err := buildBotMessage(cmd, text, card, content, msgType)
			if err != nil {
				return err
			}
			hookURL, hookSecret, err := config.ResolveWebhook(hook, secret)
			if err != nil {
				return err
			}

			client := newClientFactory().newClient("", "", "")
			if err := client.Webhook(hookURL, hookSecret).Send(cmd.Context(), msg); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"sent": true, "msg_type": msg.MsgType})
			}
			printAction(cmd, "Sent", msg.MsgType+" message via", "webhook")
			return nil
		}),
	}
	cmd.Flags().StringVar(&hook, "webhook", "", "Webhook URL")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret")
	cmd.Flags().StringVar(&text, "text", "", "Plain text (- reads stdin)")
	cmd.Flags().StringVar(&card, "card", "", "Interactive card JSON (@file or - for stdin)")
	cmd.Flags().StringVar(&content, "content", "", "Content JSON for --msg-type")
	cmd.Flags().StringVar(&msgType, "msg-type", "", "Message type for --content: post|image|share_chat")
	cmd.MarkFlagsMutuallyExclusive("text", "card", "content")
	cmd.MarkFlagsOneRequired("text", "card", "content")
	return cmd
}

func buildBotMessage(cmd *cobra.Command, text, card, content, msgType string) (api.BotMessage, error) {
	ctx := cmd.Context()
	switch {
	case text != "":
		body, err := iocontext.ReadValue(ctx, text)
		if err != nil {
			return api.BotMessage{}, err
		}
		body = strings.TrimRight(body, "\n")
		if body == "" {
			return api.BotMessage{}, fmt.Errorf("--text is empty")
		}
		return api.NewTextBotMessage(body), nil
	case card != "":
		obj, err := readJSONObject(cmd, "card", card)
		if err != nil {
			return api.BotMessage{}, err
		}
		return api.BotMessage{MsgType: api.MsgTypeInteractive, Card: obj}, nil
	default:
		if msgType == "" {
			return api.BotMessage{}, fmt.Errorf("--msg-type is required with --content")
		}
		obj, err := readJSONObject(cmd, "content", content)
		if err != nil {
			return api.BotMessage{}, err
		}
		return api.BotMessage{MsgType: msgType, Content: obj}, nil
	}
}

func readJSONObject(cmd *cobra.Command, flag, value string) (map[string]any, error) {
	raw, err := iocontext.ReadValue(cmd.Context(), value)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", flag, err)
	}
	return obj, nil
}
