package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// The codec builds backend-agnostic natural-language prompts and parses the
// backend's free-text reply into a bounded index. Parsing never fails hard:
// an unusable reply resolves to index 0 so rounds always make progress.

var firstInteger = regexp.MustCompile(`-?\d+`)

// BuildAnswerPrompt renders the "choose a card" prompt. The hand is
// enumerated with zero-based indices and the backend is told to answer with
// a single integer and nothing else.
func BuildAnswerPrompt(prompt deck.PromptCard, hand []deck.AnswerCard) string {
	pick := prompt.PickCount()
	plural := ""
	if pick > 1 {
		plural = "s"
	}

	var b strings.Builder
	b.WriteString("You are playing a fill-in-the-blank card game.\n\n")
	fmt.Fprintf(&b, "The PROMPT CARD is: %q\n", prompt.Text)
	fmt.Fprintf(&b, "(This card requires %d answer card%s to complete)\n\n", pick, plural)
	b.WriteString("Your HAND:\n")
	for i, card := range hand {
		fmt.Fprintf(&b, "%d: %q\n", i, card.Text)
	}
	b.WriteString("\nPick the card that would be the FUNNIEST answer based on your personality.\n")
	fmt.Fprintf(&b, "Respond with ONLY the index number (0-%d). No explanation.", len(hand)-1)
	return b.String()
}

// BuildJudgePrompt renders the "judge submissions" prompt. Each submission's
// card texts are joined with " + " and enumerated in table order.
func BuildJudgePrompt(prompt deck.PromptCard, submissions [][]deck.AnswerCard) string {
	var b strings.Builder
	b.WriteString("You are the judge in a fill-in-the-blank card game.\n\n")
	fmt.Fprintf(&b, "The PROMPT CARD is: %q\n\n", prompt.Text)
	b.WriteString("The SUBMISSIONS are:\n")
	for i, cards := range submissions {
		texts := make([]string, len(cards))
		for j, c := range cards {
			texts[j] = c.Text
		}
		fmt.Fprintf(&b, "%d: %s\n", i, strings.Join(texts, " + "))
	}
	b.WriteString("\nPick the FUNNIEST submission based on your personality and sense of humor.\n")
	fmt.Fprintf(&b, "Respond with ONLY the index number (0-%d). No explanation.", len(submissions)-1)
	return b.String()
}

// ParseIndex extracts the first integer token from a raw backend reply and
// validates it against [0, bound). It returns (0, false) when the reply has
// no usable integer, so callers fall back to the first option. The raw text
// is the caller's to log.
func ParseIndex(raw string, bound int) (int, bool) {
	token := firstInteger.FindString(raw)
	if token == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 || idx >= bound {
		return 0, false
	}
	return idx, true
}
