package formatter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/session"
)

const (
	completionBarWidth = 10
	historyPreview     = 6
)

// FormatChatWelcome renders the banner shown when a chat starts.
func FormatChatWelcome(sessionID string) string {
	body := "Tell me about the event you are planning.\n" +
		Dim("/plan saves the plan document, /quit exits.") + "\n" +
		Dim("session "+sessionID)
	return RenderBox("eventwise", body)
}

// FormatUserMessage renders one line typed by the user.
func FormatUserMessage(text string) string {
	return StyleBlue.Render("you") + Dim(" ❯ ") + text
}

// FormatAssistantMessage renders an assistant reply.
func FormatAssistantMessage(text string) string {
	return StylePurple.Render("planner") + Dim(" ❯ ") + StyleFg.Render(text)
}

// FormatTurnStatus renders the stage, completion and what is still missing
// after a turn.
func FormatTurnStatus(res *app.ConverseResult) string {
	turn := res.Turn
	parts := []string{StageBadge(res.Stage())}
	if !res.Stage().PostGeneration() {
		parts = append(parts, RenderCompletion(turn.CompletionPercentage, completionBarWidth))
	}
	line := strings.Join(parts, "  ")

	if len(turn.Missing) > 0 {
		labels := make([]string, len(turn.Missing))
		for i, f := range turn.Missing {
			labels[i] = FieldLabel(f)
		}
		line += "\n" + Dim("still needed: "+strings.Join(labels, ", "))
	}
	if gen := res.Generation; gen != nil {
		line += "\n" + FormatGenerated(gen.Counts, gen.Failed)
	}
	if turn.Fallback {
		line += "\n" + StyleYellow.Render("assistant offline, reply is a fallback")
	}
	return line
}

// FormatGenerated summarizes generated item counts per category.
func FormatGenerated(counts map[domain.Category]int, failed []domain.Category) string {
	var parts []string
	for _, c := range domain.Categories {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c, n))
		}
	}
	out := StyleGreen.Render("generated: ") + strings.Join(parts, " · ")
	if len(parts) == 0 {
		out = StyleRed.Render("nothing generated")
	}
	if len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = string(c)
		}
		out += "  " + StyleRed.Render("failed: "+strings.Join(names, ", "))
	}
	return out
}

// FormatSessionList renders live sessions as a table.
func FormatSessionList(sums []session.Summary, now time.Time) string {
	if len(sums) == 0 {
		return Dim("No sessions.") + "\n"
	}
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			TruncID(s.ID),
			StageBadge(s.Stage),
			strconv.Itoa(s.MessageCount),
			strconv.Itoa(s.FieldCount),
			strconv.Itoa(sumCounts(s.ItemCounts)),
			HumanTimestampFrom(s.UpdatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "STAGE", "MESSAGES", "FIELDS", "ITEMS", "UPDATED"}, rows)
}

// FormatChatList renders archived chats as a table.
func FormatChatList(chats []*domain.Chat, now time.Time) string {
	if len(chats) == 0 {
		return Dim("No archived chats.") + "\n"
	}
	rows := make([][]string, 0, len(chats))
	for _, c := range chats {
		rows = append(rows, []string{
			TruncID(c.ID),
			Truncate(c.Title, 40),
			StageBadge(c.Stage),
			HumanTimestampFrom(c.UpdatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "STAGE", "UPDATED"}, rows)
}

// FormatSessionDetail renders one live session: known fields, generated
// content and the tail of the conversation.
func FormatSessionDetail(sess *domain.Session) string {
	var b strings.Builder
	b.WriteString(Bold(sess.ID) + "  " + StageBadge(sess.State.Stage) + "\n\n")

	b.WriteString(Header("Event details") + "\n")
	if len(sess.Fields) == 0 {
		b.WriteString(Dim("nothing collected yet") + "\n")
	}
	keys := make([]string, 0, len(sess.Fields))
	for k := range sess.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if v := sess.Fields.String(k); v != "" {
			b.WriteString(fmt.Sprintf("%s %s\n", StyleDim.Render(FieldLabel(k)+":"), v))
		}
	}

	if sess.ItemCount() > 0 {
		counts := make(map[domain.Category]int, len(sess.Content))
		for c, items := range sess.Content {
			counts[c] = len(items)
		}
		b.WriteString("\n" + Header("Recommendations") + "\n")
		b.WriteString(FormatGenerated(counts, nil) + "\n")
	}

	if len(sess.History) > 0 {
		b.WriteString("\n" + Header("Conversation") + "\n")
		start := max(len(sess.History)-historyPreview, 0)
		if start > 0 {
			b.WriteString(Dim(fmt.Sprintf("… %d earlier messages", start)) + "\n")
		}
		for _, m := range sess.History[start:] {
			if m.Role == domain.RoleUser {
				b.WriteString(FormatUserMessage(Truncate(m.Content, 100)) + "\n")
			} else {
				b.WriteString(FormatAssistantMessage(Truncate(m.Content, 100)) + "\n")
			}
		}
	}
	return b.String()
}

// FormatPlanSaved confirms a written plan document.
func FormatPlanSaved(path string, size int) string {
	return StyleGreen.Render("✓ plan saved") + " " + path + " " + Dim(fmt.Sprintf("(%d bytes)", size))
}

func sumCounts(counts map[domain.Category]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
