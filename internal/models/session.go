package models

import "roombot/internal/schedule"

// UserState is the ephemeral per-user progress through a multi-step flow.
// It is keyed by the user's Telegram ID and holds the fields accumulated
// one per step. State round-trips through JSON in the redis repository, so
// TempData values are accessed through typed getters that tolerate the
// types json.Unmarshal produces.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

func (s *UserState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

// GetDate parses a stored date field; the zero Date when absent or invalid.
func (s *UserState) GetDate(key string) schedule.Date {
	d, err := schedule.ParseDate(s.GetString(key))
	if err != nil {
		return schedule.Date{}
	}
	return d
}

// GetClock parses a stored wall-clock field. The second return is false
// when the field is absent or malformed.
func (s *UserState) GetClock(key string) (schedule.Clock, bool) {
	c, err := schedule.ParseClock(s.GetString(key))
	if err != nil {
		return schedule.Clock{}, false
	}
	return c, true
}
