package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"talkboard/locale"
	"talkboard/log"
	"talkboard/storage"
)

// StateKey is the storage key of the persisted blob.
const StateKey = "talkboard_state_v2"

// Getter reads one value; absent keys yield storage.ErrNotFound.
type Getter interface {
	Get(key string) ([]byte, error)
}

type Setter interface {
	Set(key string, value []byte) error
}

func Encode(s State) ([]byte, error) {
	return json.Marshal(s)
}

var errNotState = errors.New("not a board state object")

// Decode parses a blob and repairs fields that are present but invalid
// using fallback. A blob must be a JSON object carrying the shortcuts map;
// anything else (null, {}, arrays) is rejected so callers fall back to
// defaults. Languages missing from the map get an empty list.
func Decode(data []byte, fallback State) (State, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fallback, fmt.Errorf("decoding board state: %w", err)
	}
	if fields == nil {
		return fallback, fmt.Errorf("decoding board state: %w", errNotState)
	}
	if raw, ok := fields["shortcuts"]; !ok || string(raw) == "null" {
		return fallback, fmt.Errorf("decoding board state: missing shortcuts: %w", errNotState)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fallback, fmt.Errorf("decoding board state: %w", err)
	}
	return s.normalize(fallback), nil
}

// Load reads the persisted state, falling back to defaults when the blob is
// absent or unreadable. The second return names where the state came from.
func Load(kv Getter, tbl *locale.Table, defaultText string) (State, string) {
	defaults := Defaults(tbl, defaultText)
	data, err := kv.Get(StateKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warnf("state read failed: %v", err)
		}
		return defaults, "defaults"
	}
	s, err := Decode(data, defaults)
	if err != nil {
		log.Warnf("state parse failed, using defaults: %v", err)
		return defaults, "defaults"
	}
	return s, "storage"
}

// Persist returns an observer that writes every state to kv. Write failures
// are logged and otherwise ignored; the in-memory state stays authoritative.
func Persist(kv Setter) Observer {
	return func(s State) {
		data, err := Encode(s)
		if err != nil {
			log.Errorf("state_save_failed: %v", err)
			return
		}
		if err := kv.Set(StateKey, data); err != nil {
			log.Errorf("state_save_failed: %v", err)
		}
	}
}
