package deck

// PromptCard is a round's fill-in-the-blank statement. Pick is the number of
// answer cards required to complete it.
type PromptCard struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Pick int    `json:"pick,omitempty"`
	Pack int    `json:"pack,omitempty"`
}

// PickCount returns the effective pick count, defaulting to 1 for packs that
// omit it.
func (c PromptCard) PickCount() int {
	if c.Pick < 1 {
		return 1
	}
	return c.Pick
}

// AnswerCard is a single candidate response held in a seat's hand. IDs are
// unique within a pack; the same text may recur across packs.
type AnswerCard struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Pack int    `json:"pack,omitempty"`
}
