package bot

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-tracker/internal/model"
	"daily-tracker/internal/service"
)

const (
	cbToggle  = "toggle"
	cbDelete  = "delete"
	cbConfirm = "confirm"
	cbCancel  = "cancel"
	cbDone    = "done"
	cbUndo    = "undo"
)

const (
	noCategory          = "No category"
	noCategoryKey       = "__no_category__"
	menuLabelTasks      = "📋 Tasks"
	menuLabelRoutines   = "♻️ Routines"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

var errBadArgs = errors.New("bad arguments")

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch strings.ToLower(base) {
	case "study", "school":
		icon = "🎓"
	case "work":
		icon = "💼"
	case "shopping":
		icon = "🛒"
	case "health":
		icon = "🩺"
	case "personal":
		icon = "🧩"
	case strings.ToLower(noCategory):
		icon = "📁"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%w: %q is not an id", errBadArgs, raw)
	}
	return uint(value), nil
}

// parseTaskArgs reads "/add [#category] text".
func parseTaskArgs(args string) service.TaskInput {
	args = strings.TrimSpace(args)
	first, rest, _ := strings.Cut(args, " ")
	if strings.HasPrefix(first, "#") {
		if id, err := parseID(first); err == nil {
			return service.TaskInput{Content: rest, CategoryID: &id}
		}
	}
	return service.TaskInput{Content: args}
}

// splitIDAndText reads "<id> text".
func splitIDAndText(args string) (uint, string, error) {
	first, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := parseID(first)
	if err != nil {
		return 0, "", err
	}
	return id, strings.TrimSpace(rest), nil
}

func callbackData(action string, id uint) string {
	return fmt.Sprintf("%s:%d", action, id)
}

func parseCallback(data string) (string, uint, error) {
	action, raw, ok := strings.Cut(data, ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: callback %q", errBadArgs, data)
	}
	id, err := parseID(raw)
	if err != nil {
		return "", 0, err
	}
	return action, id, nil
}

type taskGroup struct {
	label string
	tasks []model.Task
}

// groupTasks buckets tasks by category, titled groups first and "No category"
// last. Within a group, tasks keep their input order.
func groupTasks(tasks []model.Task, categories []model.Category) []taskGroup {
	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Title
	}

	groups := make(map[string]*taskGroup)
	var order []string
	for _, task := range tasks {
		key, label := noCategoryKey, categoryLabel(noCategory)
		if task.CategoryID != nil {
			if name := strings.TrimSpace(names[*task.CategoryID]); name != "" {
				key, label = strings.ToLower(name), categoryLabel(name)
			}
		}
		group, ok := groups[key]
		if !ok {
			group = &taskGroup{label: label}
			groups[key] = group
			order = append(order, key)
		}
		group.tasks = append(group.tasks, task)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == noCategoryKey {
			return false
		}
		if order[j] == noCategoryKey {
			return true
		}
		return order[i] < order[j]
	})

	out := make([]taskGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

func taskButtons(task model.Task) []tgbotapi.InlineKeyboardButton {
	label := fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Content, 22))
	if task.Completed {
		label = fmt.Sprintf("↩️ #%d · %s", task.ID, shortTitle(task.Content, 22))
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbToggle, task.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(cbDelete, task.ID)),
	)
}

func routineButton(status service.RoutineStatus) []tgbotapi.InlineKeyboardButton {
	if status.Complete && status.LogID != nil {
		return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("↩️ %s", shortTitle(status.Name, 28)), callbackData(cbUndo, *status.LogID)))
	}
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("✅ %s", shortTitle(status.Name, 28)), callbackData(cbDone, status.ID)))
}

func confirmDeleteKeyboard(taskID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", callbackData(cbConfirm, taskID)),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Keep", callbackData(cbCancel, taskID)),
	))
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelRoutines),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// weekGrid renders one row per routine with a mark for each day of the
// report's window and the rounded completion percentage.
func weekGrid(report *service.WeekReport, routines []model.Routine) string {
	var sb strings.Builder
	keys := report.DayKeys()
	sb.WriteString("<code>")
	for _, day := range report.Week {
		sb.WriteString(day.Weekday().String()[:2])
		sb.WriteByte(' ')
	}
	sb.WriteString("</code>\n")
	for _, routine := range routines {
		sb.WriteString("<code>")
		for _, key := range keys {
			if report.Days.Has(key, routine.ID) {
				sb.WriteString("✅ ")
			} else {
				sb.WriteString("▫️ ")
			}
		}
		sb.WriteString("</code>")
		sb.WriteString(fmt.Sprintf(" %s · %s\n", escape(routine.Name), service.FormatPercent(report.Percent(routine.ID))))
	}
	return sb.String()
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"<b>Tasks</b>\n" +
	"• /tasks: list tasks with buttons\n" +
	"• /add [#category] &lt;text&gt;: add a task\n" +
	"• /toggle &lt;id&gt;: mark done or undone\n" +
	"• /edit &lt;id&gt; &lt;text&gt;: change the text\n" +
	"• /today &lt;id&gt;: flag or unflag for today\n" +
	"• /delete &lt;id&gt;: delete a task\n" +
	"<b>Categories</b>\n" +
	"• /categories: list categories\n" +
	"• /category &lt;title&gt;: add a category\n" +
	"• /delcategory &lt;id&gt;: delete a category, its tasks stay\n" +
	"<b>Routines</b>\n" +
	"• /routines: today's routines with buttons\n" +
	"• /routine &lt;name&gt;: add a routine\n" +
	"• /done &lt;id&gt; and /undo &lt;id&gt;: complete or reopen a routine today\n" +
	"• /delroutine &lt;id&gt;: delete a routine and its history\n" +
	"• /week: this week's completion\n" +
	"<b>Other</b>\n" +
	"• /report: today's summary\n" +
	"• /cancel: abort the current input"
