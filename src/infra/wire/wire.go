// Package wire maps JSON bodies of the remote service onto domain records.
//
// Every record arrives wrapped in a single-key envelope named after its kind,
// e.g. {"tournament": {...}}. Bare objects are accepted as well. Fields the
// records do not declare are ignored and missing fields stay at their zero
// value.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandai/challonge/src/domain/tournament"
)

// Envelope keys.
const (
	KindTournament  = "tournament"
	KindParticipant = "participant"
	KindMatch       = "match"
	KindAttachment  = "match_attachment"
)

var ErrEmptyBody = errors.New("wire: empty body")

// nested lists the child batches a parent record may carry. A nil slice means
// the key was absent; an empty slice means the batch was sent and empty.
type nested struct {
	Participants []json.RawMessage `json:"participants"`
	Matches      []json.RawMessage `json:"matches"`
	Attachments  []json.RawMessage `json:"attachments"`
}

// unwrap returns the object stored under kind, or raw itself when it is not
// enveloped.
func unwrap(kind string, raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBody
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if inner, ok := env[kind]; ok && len(env) == 1 {
		return inner, nil
	}
	return raw, nil
}

func decode[T any](kind string, raw json.RawMessage) (T, nested, error) {
	var rec T
	var children nested

	obj, err := unwrap(kind, raw)
	if err != nil {
		return rec, children, err
	}
	if err := json.Unmarshal(obj, &rec); err != nil {
		return rec, children, fmt.Errorf("decode %s: %w", kind, err)
	}
	if err := json.Unmarshal(obj, &children); err != nil {
		return rec, children, fmt.Errorf("decode %s children: %w", kind, err)
	}
	return rec, children, nil
}

func decodeList[T any](raw json.RawMessage, one func(json.RawMessage) (T, error)) ([]T, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBody
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return decodeItems(items, one)
}

func decodeItems[T any](items []json.RawMessage, one func(json.RawMessage) (T, error)) ([]T, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		rec, err := one(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Tournament decodes a tournament with any nested participant and match batches.
func Tournament(raw json.RawMessage) (tournament.Tournament, error) {
	rec, children, err := decode[tournament.Tournament](KindTournament, raw)
	if err != nil {
		return rec, err
	}
	if rec.Participants, err = decodeItems(children.Participants, Participant); err != nil {
		return rec, err
	}
	if rec.Matches, err = decodeItems(children.Matches, Match); err != nil {
		return rec, err
	}
	return rec, nil
}

// Tournaments decodes a tournament listing.
func Tournaments(raw json.RawMessage) ([]tournament.Tournament, error) {
	return decodeList(raw, Tournament)
}

// Participant decodes a single participant.
func Participant(raw json.RawMessage) (tournament.Participant, error) {
	rec, _, err := decode[tournament.Participant](KindParticipant, raw)
	return rec, err
}

// Participants decodes a participant listing.
func Participants(raw json.RawMessage) ([]tournament.Participant, error) {
	return decodeList(raw, Participant)
}

// Match decodes a match with its nested attachments, if sent.
func Match(raw json.RawMessage) (tournament.Match, error) {
	rec, children, err := decode[tournament.Match](KindMatch, raw)
	if err != nil {
		return rec, err
	}
	if rec.Attachments, err = decodeItems(children.Attachments, Attachment); err != nil {
		return rec, err
	}
	return rec, nil
}

// Matches decodes a match listing.
func Matches(raw json.RawMessage) ([]tournament.Match, error) {
	return decodeList(raw, Match)
}

// Attachment decodes a single match attachment.
func Attachment(raw json.RawMessage) (tournament.Attachment, error) {
	rec, _, err := decode[tournament.Attachment](KindAttachment, raw)
	return rec, err
}

// Attachments decodes an attachment listing.
func Attachments(raw json.RawMessage) ([]tournament.Attachment, error) {
	return decodeList(raw, Attachment)
}
