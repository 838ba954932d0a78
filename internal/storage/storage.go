// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	historyLimit int = 20

	teamsKey = "_teams"

	// LocalTeam keys records for events that carry no team id (CLI, tests).
	LocalTeam = "local"
)

type Storage struct {
	ds *datastore.DataStore
	mu sync.Mutex
}

// HistoryRecord is one routed command.
type HistoryRecord struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Text        string    `json:"text"`
	Failed      bool      `json:"failed"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	History []HistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func teamKey(teamID string) string {
	if teamID == "" {
		return LocalTeam
	}
	return teamID
}

// teamRecord reads a team record without creating it. Must be called with
// s.mu held.
func (s *Storage) teamRecord(teamID string) (*Record, bool, error) {
	data, exists := s.ds.Get(teamKey(teamID))
	if !exists {
		return nil, false, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, false, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}
	if record.History == nil {
		record.History = []HistoryRecord{}
	}
	return &record, true, nil
}

// getOrCreateTeamRecord must be called with s.mu held.
func (s *Storage) getOrCreateTeamRecord(teamID string) (*Record, error) {
	record, exists, err := s.teamRecord(teamID)
	if err != nil {
		return nil, err
	}
	if !exists {
		record = &Record{History: []HistoryRecord{}}
		s.ds.Add(teamKey(teamID), record)
	}
	return record, nil
}

// AppendHistory appends a record for a team, keeping the newest entries only.
func (s *Storage) AppendHistory(teamID string, rec HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateTeamRecord(teamID)
	if err != nil {
		return err
	}

	if err := s.addTeam(teamID); err != nil {
		return err
	}

	record.History = append(record.History, rec)
	if len(record.History) > historyLimit {
		record.History = record.History[len(record.History)-historyLimit:]
	}
	s.ds.Add(teamKey(teamID), record)
	return nil
}

// History returns up to limit most recent records, newest last. limit <= 0
// returns everything kept.
func (s *Storage) History(teamID string, limit int) ([]HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists, err := s.teamRecord(teamID)
	if err != nil || !exists {
		return []HistoryRecord{}, err
	}

	list := record.History
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]HistoryRecord, len(list))
	copy(out, list)
	return out, nil
}

// Teams returns the ids of every team with stored history.
func (s *Storage) Teams() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams()
}

// PruneHistory drops records older than cutoff across all teams and returns
// how many were removed.
func (s *Storage) PruneHistory(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams, err := s.teams()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, teamID := range teams {
		record, exists, err := s.teamRecord(teamID)
		if err != nil {
			return removed, err
		}
		if !exists {
			continue
		}
		kept := make([]HistoryRecord, 0, len(record.History))
		for _, h := range record.History {
			if h.Datetime.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, h)
		}
		if len(kept) != len(record.History) {
			record.History = kept
			s.ds.Add(teamKey(teamID), record)
		}
	}
	return removed, nil
}

// teams must be called with s.mu held.
func (s *Storage) teams() ([]string, error) {
	data, exists := s.ds.Get(teamsKey)
	if !exists {
		return nil, nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling team index: %w", err)
	}
	var teams []string
	if err := json.Unmarshal(jsonData, &teams); err != nil {
		return nil, fmt.Errorf("error unmarshalling team index: %w", err)
	}
	return teams, nil
}

// addTeam must be called with s.mu held.
func (s *Storage) addTeam(teamID string) error {
	teams, err := s.teams()
	if err != nil {
		return err
	}
	key := teamKey(teamID)
	for _, t := range teams {
		if t == key {
			return nil
		}
	}
	s.ds.Add(teamsKey, append(teams, key))
	return nil
}
