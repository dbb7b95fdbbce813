package deck

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pack is a shared content pool of prompt and answer cards. A pack is loaded
// once and treated as immutable; games build their own piles from it.
type Pack struct {
	Name    string       `json:"name"`
	Prompts []PromptCard `json:"prompts"`
	Answers []AnswerCard `json:"answers"`
}

// LoadPack reads a pack from a JSON file. Cards without ids get stable
// generated ones so piles and hands can track them.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}

	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse pack %s: %w", path, err)
	}
	pack.assignIDs()
	return &pack, nil
}

func (p *Pack) assignIDs() {
	for i := range p.Prompts {
		if p.Prompts[i].ID == "" {
			p.Prompts[i].ID = fmt.Sprintf("b%d", i+1)
		}
	}
	for i := range p.Answers {
		if p.Answers[i].ID == "" {
			p.Answers[i].ID = fmt.Sprintf("w%d", i+1)
		}
	}
}

// DefaultPack returns the built-in starter pack used when no pack file is
// configured.
func DefaultPack() *Pack {
	pack := &Pack{
		Name:    "starter",
		Prompts: defaultPrompts(),
		Answers: defaultAnswers(),
	}
	pack.assignIDs()
	return pack
}

func defaultPrompts() []PromptCard {
	texts := []string{
		"Why did ___ cross the road?",
		"The secret ingredient in grandma's recipe is ___.",
		"Next on the news: scientists baffled by ___.",
		"I could not sleep last night because of ___.",
		"My therapist says my problems stem from ___.",
		"The real reason the meeting ran long: ___.",
		"Nothing ruins a first date like ___.",
		"The museum's newest exhibit features ___.",
		"This year's hottest startup pitches ___ as a service.",
		"My autobiography will be titled '___'.",
		"The wifi went down and suddenly everyone discovered ___.",
		"Step one of my five-year plan: ___.",
		"The fortune cookie just said '___'.",
		"Breaking: local man wins award for ___.",
		"What's that smell? ___.",
		"The last thing I googled at 3am was ___.",
		"My superhero origin story begins with ___.",
		"The office party was going fine until ___.",
	}
	prompts := make([]PromptCard, 0, len(texts)+2)
	for _, t := range texts {
		prompts = append(prompts, PromptCard{Text: t, Pick: 1})
	}
	prompts = append(prompts,
		PromptCard{Text: "I never leave home without ___ and ___.", Pick: 2},
		PromptCard{Text: "First ___, then ___: a foolproof plan.", Pick: 2},
	)
	return prompts
}

func defaultAnswers() []AnswerCard {
	texts := []string{
		"a suspiciously confident chicken",
		"an emotional support cactus",
		"forty-seven rubber ducks",
		"my neighbor's interpretive dance phase",
		"a motivational poster that has seen things",
		"the world's loudest keyboard",
		"an unpaid internship at a haunted house",
		"aggressive small talk",
		"a conspiracy of caffeinated pigeons",
		"the fourth spice girl nobody remembers",
		"lukewarm soup",
		"a very polite goose",
		"the concept of Mondays",
		"an expired coupon for happiness",
		"my search history",
		"a lifetime supply of beige",
		"the last slice of pizza, morally compromised",
		"karaoke without a backing track",
		"a weather forecast written by poets",
		"decorative gourds, out of season",
		"an alarm clock with abandonment issues",
		"the printer that smells fear",
		"a committee of raccoons in a trench coat",
		"extreme couponing",
		"a suspicious amount of glitter",
		"the elevator music from my nightmares",
		"my uncle's cryptocurrency advice",
		"one sock, origin unknown",
		"a passive-aggressive sticky note",
		"the lost art of voicemail",
		"unsolicited bagpipe practice",
		"a houseplant with opinions",
		"the group chat at 2am",
		"artisanal tap water",
		"a treadmill used exclusively as a coat rack",
		"the neighbor's wifi password",
		"an oddly specific horoscope",
		"three espresso shots and a dream",
		"a llama with a business degree",
		"the instruction manual nobody read",
		"interpretive whale song",
		"a deeply personal limerick",
		"the office thermostat wars",
		"an invisible dog on a leash",
		"a parallel parking attempt, abandoned",
		"the world's smallest violin",
		"an overdue library book from 1998",
		"a sourdough starter named Kevin",
		"the customer who is always wrong",
		"an air guitar solo, unabridged",
		"a decorative bowl of fake fruit",
		"the sound of dial-up internet",
		"an extremely local celebrity",
		"a haiku about spreadsheets",
		"the wrong kind of mushrooms",
		"a pigeon with a vendetta",
		"microwave fish in the break room",
		"a cursed family recipe",
		"the phrase 'per my last email'",
		"an escalator temporarily serving as stairs",
		"a fog machine at a funeral",
		"the mascot's tragic backstory",
		"a hot take about cereal",
		"an entire season of reality television",
	}
	answers := make([]AnswerCard, 0, len(texts))
	for _, t := range texts {
		answers = append(answers, AnswerCard{Text: t})
	}
	return answers
}
