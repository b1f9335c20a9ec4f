package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"daily-tracker/internal/model"
	"daily-tracker/internal/service"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.log.Debug("command",
			zap.Int64("telegram_id", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()))
		b.takePending(chatID)
		return b.handleCommand(ctx, user, chatID, msg.Command(), msg.CommandArguments())
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelTasks:
		return b.handleCommand(ctx, user, chatID, "tasks", "")
	case menuLabelRoutines:
		return b.handleCommand(ctx, user, chatID, "routines", "")
	case menuLabelCategories:
		return b.handleCommand(ctx, user, chatID, "categories", "")
	case menuLabelHelp:
		return b.handleCommand(ctx, user, chatID, "help", "")
	}

	switch b.takePending(chatID) {
	case inputTask:
		return b.handleCommand(ctx, user, chatID, "add", msg.Text)
	case inputCategory:
		return b.handleCommand(ctx, user, chatID, "category", msg.Text)
	case inputRoutine:
		return b.handleCommand(ctx, user, chatID, "routine", msg.Text)
	}

	return b.sendText(chatID, "I did not get that. Use /add to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, user *model.User, chatID int64, command, args string) error {
	args = strings.TrimSpace(args)
	var err error
	switch command {
	case "start":
		err = b.handleStart(user, chatID)
	case "help":
		err = b.sendText(chatID, helpText)
	case "cancel":
		err = b.sendText(chatID, "⏪ Input cancelled.")
	case "tasks":
		err = b.sendTaskList(ctx, user.ID, chatID)
	case "add":
		err = b.handleAdd(ctx, user.ID, chatID, args)
	case "toggle":
		err = b.withID(args, "/toggle 12", chatID, func(id uint) error {
			if _, err := b.svc.Tasks.ToggleTask(ctx, user.ID, id); err != nil {
				return err
			}
			return b.sendTaskList(ctx, user.ID, chatID)
		})
	case "edit":
		err = b.handleEdit(ctx, user.ID, chatID, args)
	case "today":
		err = b.withID(args, "/today 12", chatID, func(id uint) error {
			return b.handleToday(ctx, user.ID, chatID, id)
		})
	case "delete":
		err = b.withID(args, "/delete 12", chatID, func(id uint) error {
			return b.deleteTask(ctx, user.ID, chatID, id)
		})
	case "categories":
		err = b.sendCategories(ctx, user.ID, chatID)
	case "category":
		err = b.handleAddCategory(ctx, user.ID, chatID, args)
	case "delcategory":
		err = b.withID(args, "/delcategory 3", chatID, func(id uint) error {
			if _, err := b.svc.Categories.DeleteCategory(ctx, user.ID, id); err != nil {
				return err
			}
			return b.sendCategories(ctx, user.ID, chatID)
		})
	case "routines":
		err = b.sendRoutines(ctx, user.ID, chatID)
	case "routine":
		err = b.handleAddRoutine(ctx, user.ID, chatID, args)
	case "done":
		err = b.withID(args, "/done 2", chatID, func(id uint) error {
			if _, err := b.svc.Routines.CompleteRoutine(ctx, user.ID, id, b.now()); err != nil {
				return err
			}
			return b.sendRoutines(ctx, user.ID, chatID)
		})
	case "undo":
		err = b.withID(args, "/undo 2", chatID, func(id uint) error {
			return b.undoRoutineToday(ctx, user.ID, chatID, id)
		})
	case "delroutine":
		err = b.withID(args, "/delroutine 2", chatID, func(id uint) error {
			if err := b.svc.Routines.DeleteRoutine(ctx, user.ID, id); err != nil {
				return err
			}
			return b.sendRoutines(ctx, user.ID, chatID)
		})
	case "week":
		err = b.sendWeek(ctx, user.ID, chatID)
	case "report":
		err = b.sendReport(ctx, user, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
	return b.replyError(chatID, err)
}

// replyError tells the user about failures they can act on and returns the
// rest for logging.
func (b *Bot) replyError(chatID int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrBlankInput):
		return b.sendText(chatID, "Nothing to save: the text is empty.")
	case errors.Is(err, service.ErrNotFound):
		return b.sendText(chatID, "Not found. Check the number with /tasks, /categories or /routines.")
	case errors.Is(err, errBadArgs):
		return b.sendText(chatID, escape(err.Error()))
	default:
		if sendErr := b.sendText(chatID, "⚠️ Something went wrong, try again later."); sendErr != nil {
			b.log.Warn("send error reply", zap.Error(sendErr))
		}
		return err
	}
}

func (b *Bot) withID(args, usage string, chatID int64, fn func(id uint) error) error {
	if args == "" {
		return b.sendText(chatID, fmt.Sprintf("Give me the number: %s", usage))
	}
	id, err := parseID(strings.Fields(args)[0])
	if err != nil {
		return err
	}
	return fn(id)
}

func (b *Bot) handleStart(user *model.User, chatID int64) error {
	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your tasks and daily routines.</b>\n\n%s", escape(name), helpText)
	return b.sendText(chatID, text)
}

func (b *Bot) handleAdd(ctx context.Context, userID uint, chatID int64, args string) error {
	if args == "" {
		b.expect(chatID, inputTask)
		return b.sendText(chatID, "✏️ What is the task? Send the text or /cancel.")
	}
	task, err := b.svc.Tasks.CreateTask(ctx, userID, parseTaskArgs(args))
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Task <b>#%d</b> added: %s", task.ID, escape(normalizeTitle(task.Content))))
}

func (b *Bot) handleEdit(ctx context.Context, userID uint, chatID int64, args string) error {
	if args == "" {
		return b.sendText(chatID, "Give me the number and the new text: /edit 12 buy oat milk")
	}
	id, content, err := splitIDAndText(args)
	if err != nil {
		return err
	}
	if _, err := b.svc.Tasks.UpdateTaskContent(ctx, userID, id, content); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("✏️ Task <b>#%d</b> updated.", id))
}

func (b *Bot) handleToday(ctx context.Context, userID uint, chatID int64, taskID uint) error {
	task, err := b.svc.Tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	forToday := task.ForToday == nil || !*task.ForToday
	if _, err := b.svc.Tasks.SetForToday(ctx, userID, taskID, forToday); err != nil {
		return err
	}
	if forToday {
		return b.sendText(chatID, fmt.Sprintf("⏳ Task <b>#%d</b> is on today's list.", taskID))
	}
	return b.sendText(chatID, fmt.Sprintf("Task <b>#%d</b> is off today's list.", taskID))
}

func (b *Bot) deleteTask(ctx context.Context, userID uint, chatID int64, taskID uint) error {
	if _, err := b.svc.Tasks.DeleteTask(ctx, userID, taskID); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task <b>#%d</b> deleted.", taskID))
}

func (b *Bot) sendTaskList(ctx context.Context, userID uint, chatID int64) error {
	tasks, err := b.svc.Tasks.ListTasks(ctx, userID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks yet. Add one with /add.")
	}
	categories, err := b.svc.Categories.ListCategories(ctx, userID)
	if err != nil {
		return err
	}

	catNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Title
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Tasks</b>\n")
	builder.WriteString("Tap a task to mark it done or undone.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, group := range groupTasks(tasks, categories) {
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", group.label))
		for _, task := range group.tasks {
			builder.WriteString(service.FormatTaskLine(task, nil))
			buttons = append(buttons, taskButtons(task))
		}
		builder.WriteByte('\n')
	}

	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) sendCategories(ctx context.Context, userID uint, chatID int64) error {
	categories, err := b.svc.Categories.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. Add one with /category work")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• <b>#%d</b> %s\n", cat.ID, categoryLabel(cat.Title)))
	}
	builder.WriteString("\nAdd a task to one with /add #id text")
	return b.sendText(chatID, builder.String())
}

func (b *Bot) handleAddCategory(ctx context.Context, userID uint, chatID int64, args string) error {
	if args == "" {
		b.expect(chatID, inputCategory)
		return b.sendText(chatID, "🏷 What should the category be called? Send the title or /cancel.")
	}
	if _, err := b.svc.Categories.CreateCategory(ctx, userID, args, ""); err != nil {
		return err
	}
	return b.sendCategories(ctx, userID, chatID)
}

func (b *Bot) sendRoutines(ctx context.Context, userID uint, chatID int64) error {
	statuses, err := b.svc.Routines.RoutinesForDay(ctx, userID, b.now())
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		return b.sendText(chatID, "No routines yet. Add one with /routine Read")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("♻️ <b>Routines for %s</b>\n", b.svc.Aggregator.Calendar().DayKey(b.now())))
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, status := range statuses {
		mark := "⬜"
		if status.Complete {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", mark, status.ID, escape(status.Name)))
		buttons = append(buttons, routineButton(status))
	}
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleAddRoutine(ctx context.Context, userID uint, chatID int64, args string) error {
	if args == "" {
		b.expect(chatID, inputRoutine)
		return b.sendText(chatID, "♻️ What is the routine? Send its name or /cancel.")
	}
	routine, err := b.svc.Routines.CreateRoutine(ctx, userID, args, "")
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("♻️ Routine <b>#%d</b> added: %s", routine.ID, escape(routine.Name)))
}

// undoRoutineToday reopens routineID for the current day.
func (b *Bot) undoRoutineToday(ctx context.Context, userID uint, chatID int64, routineID uint) error {
	statuses, err := b.svc.Routines.RoutinesForDay(ctx, userID, b.now())
	if err != nil {
		return err
	}
	for _, status := range statuses {
		if status.ID != routineID {
			continue
		}
		if !status.Complete || status.LogID == nil {
			return b.sendText(chatID, "That routine is not done today.")
		}
		if err := b.svc.Routines.UncompleteRoutine(ctx, userID, *status.LogID); err != nil {
			return err
		}
		return b.sendRoutines(ctx, userID, chatID)
	}
	return service.ErrNotFound
}

func (b *Bot) sendWeek(ctx context.Context, userID uint, chatID int64) error {
	calendar := b.svc.Aggregator.Calendar()
	week := calendar.WeekOf(b.now())
	report, err := b.svc.Aggregator.WeeklyCompletion(ctx, userID, week)
	if err != nil {
		return err
	}
	routines, err := b.svc.Routines.ListRoutines(ctx, userID)
	if err != nil {
		return err
	}
	if len(routines) == 0 {
		return b.sendText(chatID, "No routines yet. Add one with /routine Read")
	}
	header := fmt.Sprintf("📊 <b>Week %s to %s</b>\n", calendar.DayKey(week[0]), calendar.DayKey(week[len(week)-1]))
	return b.sendText(chatID, header+weekGrid(report, routines))
}

func (b *Bot) sendReport(ctx context.Context, user *model.User, chatID int64) error {
	text, err := b.svc.Reminders.DailySummary(ctx, *user, b.now())
	if err != nil {
		return err
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	action, id, err := parseCallback(cb.Data)
	if err != nil {
		b.ack(cb, "")
		return nil
	}
	b.log.Debug("callback",
		zap.Int64("telegram_id", cb.From.ID),
		zap.String("action", action),
		zap.Uint("id", id))

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		b.ack(cb, "")
		return err
	}
	chatID := cb.Message.Chat.ID

	switch action {
	case cbToggle:
		b.ack(cb, "")
		_, err = b.svc.Tasks.ToggleTask(ctx, user.ID, id)
		if err == nil {
			err = b.sendTaskList(ctx, user.ID, chatID)
		}
	case cbDelete:
		b.ack(cb, "")
		var task *model.Task
		task, err = b.svc.Tasks.GetTask(ctx, user.ID, id)
		if err == nil {
			text := fmt.Sprintf("Delete task <b>#%d</b> %s?", task.ID, escape(normalizeTitle(task.Content)))
			err = b.sendWithReplyMarkup(chatID, text, confirmDeleteKeyboard(task.ID))
		}
	case cbConfirm:
		b.ack(cb, "Deleted")
		err = b.deleteTask(ctx, user.ID, chatID, id)
	case cbCancel:
		b.ack(cb, "Kept")
	case cbDone:
		b.ack(cb, "")
		_, err = b.svc.Routines.CompleteRoutine(ctx, user.ID, id, b.now())
		if err == nil {
			err = b.sendRoutines(ctx, user.ID, chatID)
		}
	case cbUndo:
		b.ack(cb, "")
		err = b.svc.Routines.UncompleteRoutine(ctx, user.ID, id)
		if err == nil {
			err = b.sendRoutines(ctx, user.ID, chatID)
		}
	default:
		b.ack(cb, "")
	}
	return b.replyError(chatID, err)
}
