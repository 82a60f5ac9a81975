// Package bot runs the Telegram side of the system: the admin command
// surface, the approve/reject inline-keyboard callbacks, the secret-key
// verification dialog and PDF exam ingestion.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/DictatorXP/ExamWeb/internal/config"
	"github.com/DictatorXP/ExamWeb/internal/guard"
	"github.com/DictatorXP/ExamWeb/internal/pdftext"
	"github.com/DictatorXP/ExamWeb/internal/service"
)

// Bot wires Telegram updates to the session controller, the admin service
// and the verification guard.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	guard    *guard.Guard
	sessions *service.Controller
	admin    *service.AdminService
	log      zerolog.Logger
}

// New creates the bot around an already-authorized API client.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	g *guard.Guard,
	sessions *service.Controller,
	admin *service.AdminService,
	log zerolog.Logger,
) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		guard:    g,
		sessions: sessions,
		admin:    admin,
		log:      log.With().Str("component", "bot").Logger(),
	}
}

// Start runs the long-polling update loop until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("username", b.api.Self.UserName).Msg("Telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("Telegram bot stopped")
			return

		case update := <-updates:
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)

	case update.Message != nil:
		msg := update.Message
		switch {
		case msg.Document != nil:
			b.handleDocument(ctx, msg)
		case msg.IsCommand():
			b.handleCommand(ctx, msg)
		case msg.Text != "":
			b.handleText(ctx, msg)
		}
	}
}

// actor builds the guard identity for a message sender.
func actorOf(from *tgbotapi.User, chatID int64) service.Actor {
	var userID int64
	if from != nil {
		userID = from.ID
	}
	return service.Actor{UserID: userID, ChatID: chatID}
}

// handleText processes plain messages, which only matter inside an open
// secret-key challenge.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.guard.AwaitingSecret(userID) {
		return
	}

	if !b.guard.VerifySecret(userID, msg.Text) {
		b.reply(msg.Chat.ID, "❌ Invalid admin key. Please try again.")
		return
	}

	b.reply(msg.Chat.ID, "✅ Verification successful! You now have admin access.\n\n"+adminHelp)
	b.log.Info().Int64("user_id", userID).Msg("New admin verified")

	// Announce new admins to the trusted chat, unless that is where the
	// verification happened.
	if msg.Chat.ID != b.cfg.AdminChatID {
		username := "N/A"
		if msg.From.UserName != "" {
			username = "@" + msg.From.UserName
		}
		text := fmt.Sprintf(
			"🔐 <b>New Admin Verified</b>\n\nName: %s\nUsername: %s\nUser ID: %d",
			msg.From.FirstName, username, userID,
		)
		announce := tgbotapi.NewMessage(b.cfg.AdminChatID, text)
		announce.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(announce); err != nil {
			b.log.Error().Err(err).Msg("Failed to announce new admin")
		}
	}
}

// handleDocument ingests an uploaded PDF as the new active exam.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	actor := actorOf(msg.From, msg.Chat.ID)
	if !b.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		b.log.Warn().Int64("user_id", actor.UserID).Int64("chat_id", actor.ChatID).
			Msg("Unauthorized document upload attempt")
		b.reply(msg.Chat.ID, "You are not authorized to upload documents.")
		return
	}

	doc := msg.Document
	if doc.MimeType != "application/pdf" {
		b.reply(msg.Chat.ID, "Please upload a PDF file.")
		return
	}

	path, err := b.downloadDocument(doc)
	if err != nil {
		b.log.Error().Err(err).Str("file", doc.FileName).Msg("Document download failed")
		b.reply(msg.Chat.ID, fmt.Sprintf("Error processing document: %v", err))
		return
	}

	text, err := pdftext.Extract(ctx, path)
	if err != nil {
		b.log.Error().Err(err).Str("path", path).Msg("Text extraction failed")
		b.reply(msg.Chat.ID, fmt.Sprintf("Error processing document: %v", err))
		return
	}

	count, err := b.admin.ImportExamText(actor, text)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Error processing document: %v", err))
		return
	}

	b.log.Info().Str("file", doc.FileName).Int("questions", count).Msg("Exam document processed")
	b.reply(msg.Chat.ID, fmt.Sprintf("PDF processed successfully. Found %d questions.", count))
}

// downloadDocument fetches the uploaded file into the upload directory.
func (b *Bot) downloadDocument(doc *tgbotapi.Document) (string, error) {
	if err := os.MkdirAll(b.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: doc.FileID})
	if err != nil {
		return "", fmt.Errorf("resolve file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	name := doc.FileName
	if name == "" {
		name = doc.FileID + ".pdf"
	}
	path := filepath.Join(b.cfg.UploadDir, filepath.Base(name))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}
