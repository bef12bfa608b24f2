package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// answerUnavailable is what the detective hears when the automated path
// itself fails; the request is never silently dropped.
const answerUnavailable = "The suspect stares at you in silence and refuses to answer."

// Answerer produces an in-character reply to a question, given the room's
// conversation so far, plus any clues it extracted from that reply.
// Implementations may be slow or fail; the router treats them as a black box.
type Answerer interface {
	Answer(ctx context.Context, character Character, question string, mem *Memory) (string, []Clue, error)
}

// OpenAIAnswerer answers via chat completions: one call for the reply in
// the character's voice, a second best-effort call to pull structured
// clues out of that reply.
type OpenAIAnswerer struct {
	cfg    *Config
	client *openai.Client
}

func newOpenAIAnswerer(cfg *Config) *OpenAIAnswerer {
	return &OpenAIAnswerer{
		cfg:    cfg,
		client: openai.NewClient(cfg.openAiKey),
	}
}

func (a *OpenAIAnswerer) Answer(ctx context.Context, character Character, question string, mem *Memory) (string, []Clue, error) {
	prompt := fmt.Sprintf(
		"%s\n\nPrevious conversation:\n%s\n\nNow reply ONLY as %s to this question: %q\n\nDo not include any detective dialogue or questions in your response.",
		character.Prompt, mem.transcript(), character.Name, question,
	)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.openAiModel,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no completion choices for %s", character.Name)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	answer = stripSpeakerPrefix(character.Name, answer)

	clues := a.extractClues(ctx, character, answer)

	return answer, clues, nil
}

// stripSpeakerPrefix removes a leading "Name:" echo some models prepend.
func stripSpeakerPrefix(name, answer string) string {
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `:\s*`)
	return re.ReplaceAllString(answer, "")
}

type extractedClue struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// extractClues asks the model to label clues in the reply. Any failure here
// is logged and swallowed; clue extraction is garnish, not gameplay.
func (a *OpenAIAnswerer) extractClues(ctx context.Context, character Character, answer string) []Clue {
	prompt := fmt.Sprintf(`Extract all potential clues from the following reply.
Label each clue as either "important", "background", or "gossip" depending on how relevant and actionable it is to a murder investigation.
Reply in JSON format as a list of objects like this:
[
  {"text": "She heard a loud thud around 9am", "type": "important"},
  {"text": "She was watering plants", "type": "background"},
  {"text": "She thinks the victim was grumpy", "type": "gossip"}
]

Reply: %s
`, answer)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.openAiModel,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: 0.4,
	})
	if err != nil {
		logf(a.cfg, "ASK: clue extraction failed for %s: %v", character.Name, err)
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed []extractedClue
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		logf(a.cfg, "ASK: clue parse failed for %s: %v", character.Name, err)
		return nil
	}

	now := time.Now()
	clues := make([]Clue, 0, len(parsed))
	for _, c := range parsed {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		clueType := strings.ToUpper(strings.TrimSpace(c.Type))
		if clueType == "" {
			clueType = "FACT"
		}
		clues = append(clues, Clue{
			Text:      text,
			Type:      clueType,
			Source:    character.Name,
			Timestamp: now,
		})
	}
	return clues
}
