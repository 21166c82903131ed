package shared

import (
	"errors"
	"strconv"
)

// ID types keep remote entities distinct while remaining plain integers on the wire.
type (
	TournamentID  int64
	ParticipantID int64
	MatchID       int64
	AttachmentID  int64
)

// Validate ensures the id was assigned by the remote service.
func (id TournamentID) Validate() error {
	if id <= 0 {
		return errors.New("tournament id is required")
	}
	return nil
}

func (id ParticipantID) Validate() error {
	if id <= 0 {
		return errors.New("participant id is required")
	}
	return nil
}

func (id MatchID) Validate() error {
	if id <= 0 {
		return errors.New("match id is required")
	}
	return nil
}

func (id AttachmentID) Validate() error {
	if id <= 0 {
		return errors.New("attachment id is required")
	}
	return nil
}

func (id TournamentID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id ParticipantID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id MatchID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id AttachmentID) String() string  { return strconv.FormatInt(int64(id), 10) }
