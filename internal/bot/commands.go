package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/notify"
	"github.com/DictatorXP/ExamWeb/internal/service"
)

const adminHelp = `Admin commands:
/upload - Upload a new exam PDF
/answer <letters> - Set the answer key, e.g. /answer abcdab
/delete - Delete the active exam and all results
/studentlist - Show submitted exam results
/deletelist - Clear the results list
/help - Show this message`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	actor := actorOf(msg.From, msg.Chat.ID)

	switch msg.Command() {
	case "start":
		b.cmdStart(msg, actor)
	case "help":
		b.cmdHelp(msg, actor)
	case "upload":
		b.cmdUpload(msg, actor)
	case "answer":
		b.cmdAnswer(ctx, msg, actor)
	case "delete":
		b.cmdDelete(msg, actor)
	case "studentlist":
		b.cmdStudentList(msg, actor)
	case "deletelist":
		b.cmdDeleteList(msg, actor)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Use /help to list available commands.")
	}
}

// cmdStart greets verified admins and opens a secret-key challenge for
// everyone else.
func (b *Bot) cmdStart(msg *tgbotapi.Message, actor service.Actor) {
	if b.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		b.reply(msg.Chat.ID, "Welcome back.\n\n"+adminHelp)
		return
	}

	b.guard.BeginChallenge(actor.UserID)
	b.reply(msg.Chat.ID, "🔐 Please enter the admin key to continue.")
}

func (b *Bot) cmdHelp(msg *tgbotapi.Message, actor service.Actor) {
	if !b.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		b.reply(msg.Chat.ID, "Use /start to verify yourself first.")
		return
	}
	b.reply(msg.Chat.ID, adminHelp)
}

func (b *Bot) cmdUpload(msg *tgbotapi.Message, actor service.Actor) {
	if !b.guard.IsAuthorized(actor.UserID, actor.ChatID) {
		b.reply(msg.Chat.ID, "You are not authorized to use this command.")
		return
	}
	b.reply(msg.Chat.ID, "Send the exam PDF as a document attachment.")
}

func (b *Bot) cmdAnswer(ctx context.Context, msg *tgbotapi.Message, actor service.Actor) {
	key := strings.TrimSpace(msg.CommandArguments())
	if key == "" {
		b.reply(msg.Chat.ID, "Usage: /answer <letters>, e.g. /answer abcdab")
		return
	}

	count, err := b.admin.SetAnswerKey(ctx, actor, key)
	if err != nil {
		switch {
		case err == service.ErrAdminRequired:
			b.reply(msg.Chat.ID, "You are not authorized to use this command.")
		case err == catalog.ErrNoExamActive:
			b.reply(msg.Chat.ID, "No active exam. Upload an exam PDF first.")
		case err == catalog.ErrKeyLengthMismatch:
			b.reply(msg.Chat.ID, "Answer key length does not match the number of questions.")
		case err == catalog.ErrKeyInvalidSymbol:
			b.reply(msg.Chat.ID, "Answer key may only contain the letters a-d.")
		default:
			b.reply(msg.Chat.ID, fmt.Sprintf("Failed to set answer key: %v", err))
		}
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Answer key saved for %d questions. The exam is now live.", count))
}

func (b *Bot) cmdDelete(msg *tgbotapi.Message, actor service.Actor) {
	if err := b.admin.DeleteExam(actor); err != nil {
		if err == service.ErrAdminRequired {
			b.reply(msg.Chat.ID, "You are not authorized to use this command.")
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Failed to delete exam: %v", err))
		return
	}
	b.reply(msg.Chat.ID, "🗑 Exam, answer key and all results deleted.")
}

func (b *Bot) cmdStudentList(msg *tgbotapi.Message, actor service.Actor) {
	results, err := b.admin.ListResults(actor)
	if err != nil {
		if err == service.ErrAdminRequired {
			b.reply(msg.Chat.ID, "You are not authorized to use this command.")
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Failed to list results: %v", err))
		return
	}
	if len(results) == 0 {
		b.reply(msg.Chat.ID, "No exam submissions yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Exam Results</b>\n")
	for i, r := range results {
		sb.WriteString(fmt.Sprintf(
			"\n%d. %s %s (%s)\n   Correct: %d / %d",
			i+1, r.Student.Name, r.Student.Surname, r.Student.StudentID,
			r.Result.Correct, r.Result.Total,
		))
	}
	b.replyHTML(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdDeleteList(msg *tgbotapi.Message, actor service.Actor) {
	if err := b.admin.ClearResults(actor); err != nil {
		if err == service.ErrAdminRequired {
			b.reply(msg.Chat.ID, "You are not authorized to use this command.")
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Failed to clear results: %v", err))
		return
	}
	b.reply(msg.Chat.ID, "🗑 Results list cleared.")
}

// handleCallback resolves the inline-keyboard decisions attached to
// registration and retake notifications.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Error().Err(err).Msg("Failed to answer callback query")
	}

	action, studentID, err := notify.ParseToken(cb.Data)
	if err != nil {
		b.log.Warn().Str("data", cb.Data).Msg("Malformed callback token")
		return
	}
	if cb.Message == nil {
		return
	}

	actor := actorOf(cb.From, cb.Message.Chat.ID)

	var outcome string
	switch action {
	case notify.ActionApprove:
		err = b.sessions.Approve(actor, studentID)
		outcome = fmt.Sprintf("✅ Student %s approved.", studentID)
	case notify.ActionReject:
		err = b.sessions.Reject(actor, studentID)
		outcome = fmt.Sprintf("❌ Student %s rejected.", studentID)
	case notify.ActionRetakeApprove:
		err = b.sessions.ApproveRetake(actor, studentID)
		outcome = fmt.Sprintf("🔄 Retake approved for student %s.", studentID)
	case notify.ActionRetakeReject:
		err = b.sessions.RejectRetake(actor, studentID)
		outcome = fmt.Sprintf("🚫 Retake rejected for student %s.", studentID)
	default:
		b.log.Warn().Str("action", action).Msg("Unknown callback action")
		return
	}

	if err != nil {
		switch err {
		case service.ErrAdminRequired:
			outcome = "You are not authorized to decide this request."
		case service.ErrNotFound:
			outcome = fmt.Sprintf("No open request for student %s.", studentID)
		default:
			outcome = fmt.Sprintf("Failed to process decision: %v", err)
		}
	} else {
		b.log.Info().
			Str("action", action).
			Str("student_id", studentID).
			Int64("admin_id", actor.UserID).
			Msg("Admin decision processed")
	}

	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		cb.Message.Text+"\n\n"+outcome)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("Failed to edit decision message")
	}
}
