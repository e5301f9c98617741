package models

import (
	"bytes"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// UnknownAuthor marks entries whose author could not be resolved, e.g. the
// account no longer exists. It never matches a real user ID.
const UnknownAuthor = "Unknown"

// EmojiRecord holds who placed one emoji on one message. User sets are kept
// sorted and duplicate free so that snapshots are stable across rebuilds.
type EmojiRecord struct {
	UsersGiven    []string `json:"users_given"`
	CountGiven    int      `json:"count_given"`
	UsersReceived []string `json:"users_received"`
	CountReceived int      `json:"count_received"`
}

func NewEmojiRecord() *EmojiRecord {
	return &EmojiRecord{
		UsersGiven:    []string{},
		UsersReceived: []string{},
	}
}

// Observe records that userID placed the emoji on a message written by
// authorID. Repeated observations of the same user are no-ops.
func (r *EmojiRecord) Observe(userID, authorID string) {
	if insertSorted(&r.UsersGiven, userID) {
		r.CountGiven++
	}
	if userID != authorID && insertSorted(&r.UsersReceived, userID) {
		r.CountReceived++
	}
}

func (r *EmojiRecord) HasGiven(userID string) bool {
	return slices.Contains(r.UsersGiven, userID)
}

// ReceivedExcluding counts received users other than userID.
func (r *EmojiRecord) ReceivedExcluding(userID string) int {
	n := len(r.UsersReceived)
	if slices.Contains(r.UsersReceived, userID) {
		n--
	}
	return n
}

func (r *EmojiRecord) normalize() {
	r.UsersGiven = sortedSet(r.UsersGiven)
	r.UsersReceived = sortedSet(r.UsersReceived)
}

func (r *EmojiRecord) validate(authorID string) error {
	if r.CountGiven != len(r.UsersGiven) {
		return fmt.Errorf("count_given %d does not match %d users", r.CountGiven, len(r.UsersGiven))
	}
	if r.CountReceived != len(r.UsersReceived) {
		return fmt.Errorf("count_received %d does not match %d users", r.CountReceived, len(r.UsersReceived))
	}
	for _, u := range r.UsersReceived {
		if u == authorID {
			return fmt.Errorf("author %s listed as receiver", u)
		}
		if !r.HasGiven(u) {
			return fmt.Errorf("receiver %s missing from users_given", u)
		}
	}
	return nil
}

type LedgerEntry struct {
	AuthorID  string                  `json:"author_id"`
	Reactions map[string]*EmojiRecord `json:"reactions"`
}

// UnmarshalJSON accepts author_id as a string or a bare number. Older
// snapshots stored the raw snowflake.
func (e *LedgerEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		AuthorID  any                     `json:"author_id"`
		Reactions map[string]*EmojiRecord `json:"reactions"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch raw.AuthorID.(type) {
	case nil, string, json.Number:
	default:
		return fmt.Errorf("author_id: unsupported type %T", raw.AuthorID)
	}
	authorID, err := cast.ToStringE(raw.AuthorID)
	if err != nil {
		return fmt.Errorf("author_id: %w", err)
	}

	e.AuthorID = authorID
	e.Reactions = raw.Reactions
	return nil
}

func NewLedgerEntry(authorID string) *LedgerEntry {
	if authorID == "" {
		authorID = UnknownAuthor
	}
	return &LedgerEntry{
		AuthorID:  authorID,
		Reactions: make(map[string]*EmojiRecord),
	}
}

// Record returns the record for an emoji key, creating it on first use.
func (e *LedgerEntry) Record(key string) *EmojiRecord {
	if rec, ok := e.Reactions[key]; ok {
		return rec
	}
	rec := NewEmojiRecord()
	e.Reactions[key] = rec
	return rec
}

// Ledger maps message IDs to their entries.
type Ledger map[string]*LedgerEntry

// Normalize sorts and de-duplicates every user set. Snapshots written by
// other tools may list users in observation order.
func (l Ledger) Normalize() {
	for _, entry := range l {
		if entry == nil {
			continue
		}
		for _, rec := range entry.Reactions {
			if rec != nil {
				rec.normalize()
			}
		}
	}
}

// Validate reports the first structural problem found in the ledger.
func (l Ledger) Validate() error {
	for id, entry := range l {
		if entry == nil {
			return fmt.Errorf("%w: message %s: null entry", ErrInvalidLedger, id)
		}
		if entry.AuthorID == "" {
			return fmt.Errorf("%w: message %s: missing author_id", ErrInvalidLedger, id)
		}
		if entry.Reactions == nil {
			return fmt.Errorf("%w: message %s: missing reactions", ErrInvalidLedger, id)
		}
		for key, rec := range entry.Reactions {
			if rec == nil {
				return fmt.Errorf("%w: message %s: null record for %s", ErrInvalidLedger, id, key)
			}
			if err := rec.validate(entry.AuthorID); err != nil {
				return fmt.Errorf("%w: message %s emoji %s: %s", ErrInvalidLedger, id, key, err)
			}
		}
	}
	return nil
}

// insertSorted adds v to the sorted slice s unless present and reports
// whether it was added.
func insertSorted(s *[]string, v string) bool {
	i, found := slices.BinarySearch(*s, v)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, v)
	return true
}

func sortedSet(s []string) []string {
	if s == nil {
		return []string{}
	}
	s = slices.Clone(s)
	slices.Sort(s)
	return slices.Compact(s)
}
