package main

import (
	"context"
	"strings"
)

// handleAsk routes a detective question: authorize the sender, decide
// human-path vs automated-path, await the human reply under a deadline
// with automated fallback, then fold the result into room state.
//
// It runs on its own goroutine per question (see readPump), so questions
// in different rooms, and even in the same room, suspend independently.
func (s *GameServer) handleAsk(c *Client, ev ClientEvent) {
	sess, ok := s.sessions.get(c)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}
	room, ok := s.registry.get(sess.Room)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}

	if room.getDetective() != c {
		c.trySend(errorMsg("Only detective can ask."))
		return
	}

	question := strings.TrimSpace(ev.Question)
	if ev.Character == "" || question == "" {
		c.trySend(errorMsg("Missing character or question."))
		return
	}

	character, found := s.roster.find(ev.Character)
	if !found {
		c.trySend(errorMsg("No character named " + ev.Character + "."))
		return
	}

	room.touch()

	possessed, murderer := room.routing()
	toHuman := murderer != nil && normalizeName(possessed) == normalizeName(character.Name)

	logf(s.cfg, "ASK: %s asks %q about %q (human=%t)", c.id, question, character.Name, toHuman)

	var (
		answer string
		clues  []Clue
	)

	if toHuman {
		answer, ok = s.askHuman(murderer, room, character, question)
		if !ok {
			// Deadline elapsed with no reply; degrade to the automated
			// path. The detective never sees this as an error.
			logf(s.cfg, "ASK: Timeout waiting for human reply in %s, falling back", room.code)
			answer, clues = s.askAutomated(character, question, room)
		}
	} else {
		answer, clues = s.askAutomated(character, question, room)
	}

	s.resolve(room, character, question, answer, clues)
}

// askHuman registers a pending question, notifies the murderer, and waits
// out the reply slot. The pending entry is discarded unconditionally on
// the way out, so a late reply is a no-op.
func (s *GameServer) askHuman(murderer *Client, room *Room, character Character, question string) (string, bool) {
	p := s.pending.register(room.code, character.Name, question, s.cfg.replyTimeout)
	defer s.pending.discard(p.ID)

	murderer.trySend(QuestionForMurdererMessage{
		Type:          "question_for_murderer",
		CorrelationID: p.ID,
		Character:     character.Name,
		Question:      question,
	})

	return p.await()
}

// askAutomated delegates to the answer generator. No extra timeout is
// imposed here; generator latency is the generator's problem. A generator
// failure surfaces as the sentinel answer, never as a dropped request.
func (s *GameServer) askAutomated(character Character, question string, room *Room) (string, []Clue) {
	answer, clues, err := s.answerer.Answer(context.Background(), character, question, room.memory)
	if err != nil {
		logf(s.cfg, "ASK: Answerer failed for %q in %s: %v", character.Name, room.code, err)
		return answerUnavailable, nil
	}
	return answer, clues
}

// resolve appends the exchange to room memory, delivers the answer to the
// detective, and tells the room to re-fetch clues. Peer delivery is
// fire-and-forget; a vanished detective just misses the answer.
func (s *GameServer) resolve(room *Room, character Character, question, answer string, clues []Clue) {
	room.memory.addExchange(
		Entry{Speaker: "Detective", Content: question},
		Entry{Speaker: character.Name, Content: answer},
	)
	room.memory.addClues(clues)
	room.touch()

	persist(s.cfg, "append_transcript", func(ctx context.Context) error {
		if err := s.store.AppendTranscript(ctx, room.code, "Detective", question); err != nil {
			return err
		}
		return s.store.AppendTranscript(ctx, room.code, character.Name, answer)
	})
	for _, clue := range clues {
		persist(s.cfg, "add_clue", func(ctx context.Context) error {
			return s.store.AddClue(ctx, room.code, clue)
		})
	}

	room.getDetective().trySend(AnswerMessage{
		Type:      "answer",
		Character: character.Name,
		Answer:    answer,
	})

	s.broadcast(room, CluesUpdatedMessage{Type: "clues_updated"})
}
