package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// Fixed assistant messages used when the model is unavailable or its claims
// are overruled.
const (
	GreetingMessage = "Hey there! 👋 I'm so excited to help you plan something special! What kind of event are you thinking about? 🎊"

	RetryMessage = "Sorry, I had trouble understanding that. Could you say it again, maybe in a little more detail?"

	NeedDetailsMessage = "I need a few more details to create the perfect event for you! 🎯"

	ConfirmGenerationMessage = "I have your event details! Would you like me to generate your personalized recommendations now? Just say 'yes' or 'go ahead' to start! 🎉"

	ConfirmPDFMessage = "Would you like me to create a detailed plan document for your event? Just say 'yes, create the PDF' and I'll put it together. 📄"

	PDFRepromptMessage = "No problem! Whenever you're ready for your event plan document, just say 'yes, create the PDF'."

	PDFStartedMessage = "Creating your event plan document now! 📄✨"

	GeneratingMessage = "Perfect! Creating your personalized recommendations now... ✨"

	ReviewHintMessage = "Happy to help! Say 'create the PDF' whenever you'd like your event plan document. 📄"

	GenerationFailedMessage = "I couldn't reach my recommendation sources just now. 😕 Say 'yes' whenever you'd like me to try again."
)

// GenerationSummary describes what was generated, category by category.
func GenerationSummary(counts map[domain.Category]int, failed []domain.Category) string {
	var parts []string
	for _, c := range domain.Categories {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, categoryNoun(c, n)))
		}
	}
	var b strings.Builder
	b.WriteString("Your recommendations are ready! 🎉 I found ")
	b.WriteString(joinHuman(parts))
	b.WriteString(".")
	if len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = string(c)
		}
		fmt.Fprintf(&b, " (I couldn't get %s this time.)", joinHuman(names))
	}
	b.WriteString(" How do you like them? I can adjust anything or put it all into a plan document.")
	return b.String()
}

func categoryNoun(c domain.Category, n int) string {
	singular := map[domain.Category]string{
		domain.CategoryImages: "inspiration image",
		domain.CategoryMusic:  "playlist",
		domain.CategoryVenues: "venue",
		domain.CategoryFood:   "food idea",
	}[c]
	if n == 1 {
		return singular
	}
	return singular + "s"
}

func joinHuman(parts []string) string {
	switch len(parts) {
	case 0:
		return "nothing"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
