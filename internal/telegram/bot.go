package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/contexta-ai/contexta/internal/logger"
	"github.com/contexta-ai/contexta/internal/query"
)

// QueryService answers a question scoped to one tenant.
type QueryService interface {
	Answer(ctx context.Context, req query.Request) (*query.Response, error)
}

// Bot is a thin Telegram front end over the query pipeline. Each chat is
// bound to a tenant with /tenant before /ask works.
type Bot struct {
	bot     *bot.Bot
	service QueryService
	tenants *tenantSessions
}

// NewBot creates a bot bound to the query service.
func NewBot(token string, service QueryService) (*Bot, error) {
	b := &Bot{
		service: service,
		tenants: newTenantSessions(),
	}

	botAPI, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	b.bot = botAPI
	return b, nil
}

// Start runs the update loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		b.reply(ctx, chatID, "Commands:\n/tenant <id> - select the tenant to query\n/ask <question> - ask a question against the tenant's documents")
	case strings.HasPrefix(text, "/tenant"):
		b.handleTenant(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/tenant")))
	case strings.HasPrefix(text, "/ask"):
		b.handleAsk(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/ask")))
	default:
		// Bare text in a chat with a bound tenant is treated as a question.
		if _, ok := b.tenants.get(chatID); ok && !strings.HasPrefix(text, "/") {
			b.handleAsk(ctx, chatID, text)
			return
		}
		b.reply(ctx, chatID, "Unknown command. Use /help.")
	}
}

func (b *Bot) handleTenant(ctx context.Context, chatID int64, arg string) {
	tenantID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || tenantID <= 0 {
		b.reply(ctx, chatID, "Usage: /tenant <positive id>")
		return
	}
	b.tenants.set(chatID, tenantID)
	b.reply(ctx, chatID, fmt.Sprintf("Now querying tenant %d.", tenantID))
}

func (b *Bot) handleAsk(ctx context.Context, chatID int64, question string) {
	if question == "" {
		b.reply(ctx, chatID, "Usage: /ask <question>")
		return
	}
	tenantID, ok := b.tenants.get(chatID)
	if !ok {
		b.reply(ctx, chatID, "Select a tenant first with /tenant <id>.")
		return
	}

	resp, err := b.service.Answer(ctx, query.Request{Query: question, TenantID: tenantID})
	if err != nil {
		logger.Error("Chat[%d]: query failed: %v", chatID, err)
		b.reply(ctx, chatID, "Sorry, something went wrong answering that.")
		return
	}

	b.reply(ctx, chatID, formatAnswer(resp))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		logger.Error("Chat[%d]: failed to send message: %v", chatID, err)
	}
}

func formatAnswer(resp *query.Response) string {
	if len(resp.Sources) == 0 {
		return resp.Answer
	}
	var sb strings.Builder
	sb.WriteString(resp.Answer)
	sb.WriteString("\n\nSources:")
	for _, s := range resp.Sources {
		sb.WriteString(fmt.Sprintf("\n- Document %d, Chunk %d (score %.2f)", s.DocumentID, s.ChunkIndex, s.Score))
	}
	return sb.String()
}
