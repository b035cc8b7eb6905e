package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HistoryType tags the source collection of a history item.
type HistoryType string

const (
	HistoryTypeAdmission  HistoryType = "Admission"
	HistoryTypeAttendance HistoryType = "Attendance"
	HistoryTypeDiary      HistoryType = "Diary"
)

// HistoryFilterAll keeps every history type.
const HistoryFilterAll = "ALL"

// HistoryTypes lists the variants in feed grouping order.
var HistoryTypes = []HistoryType{HistoryTypeAdmission, HistoryTypeAttendance, HistoryTypeDiary}

// ParseHistoryType converts user input into one of the three variants.
func ParseHistoryType(raw string) (HistoryType, error) {
	for _, t := range HistoryTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown history type %q", raw)
}

// HistoryFilter selects history items by type and, when CenterIDs is set, by center.
// The zero value keeps everything.
type HistoryFilter struct {
	Type      HistoryType
	CenterIDs []string
}

// ParseHistoryFilter accepts ALL, an empty string or a history type.
func ParseHistoryFilter(raw string) (HistoryFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, HistoryFilterAll) {
		return HistoryFilter{}, nil
	}
	t, err := ParseHistoryType(raw)
	if err != nil {
		return HistoryFilter{}, err
	}
	return HistoryFilter{Type: t}, nil
}

// Match reports whether the item passes the filter.
func (f HistoryFilter) Match(item HistoryItem) bool {
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if len(f.CenterIDs) == 0 {
		return true
	}
	for _, id := range f.CenterIDs {
		if id == item.CenterID {
			return true
		}
	}
	return false
}

// String renders the filter the way clients send it.
func (f HistoryFilter) String() string {
	if f.Type == "" {
		return HistoryFilterAll
	}
	return string(f.Type)
}

// HistoryRecord is implemented by the three records projected into the feed.
type HistoryRecord interface {
	historyType() HistoryType
}

func (Student) historyType() HistoryType          { return HistoryTypeAdmission }
func (AttendanceRecord) historyType() HistoryType { return HistoryTypeAttendance }
func (DiaryEntry) historyType() HistoryType       { return HistoryTypeDiary }

// HistoryItem is a read-only projection of a stored record.
type HistoryItem struct {
	ID       string
	Type     HistoryType
	CenterID string
	Date     time.Time
	Details  string
	Data     HistoryRecord
}

// MarshalJSON renders the date at day granularity.
func (h HistoryItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string        `json:"id"`
		Type     HistoryType   `json:"type"`
		CenterID string        `json:"centerId"`
		Date     string        `json:"date"`
		Details  string        `json:"details"`
		Data     HistoryRecord `json:"data"`
	}{
		ID:       h.ID,
		Type:     h.Type,
		CenterID: h.CenterID,
		Date:     h.Date.Format(DateLayout),
		Details:  h.Details,
		Data:     h.Data,
	})
}

// Student returns the payload of an Admission item.
func (h HistoryItem) Student() (Student, bool) {
	s, ok := h.Data.(Student)
	return s, ok
}

// Attendance returns the payload of an Attendance item.
func (h HistoryItem) Attendance() (AttendanceRecord, bool) {
	r, ok := h.Data.(AttendanceRecord)
	return r, ok
}

// Diary returns the payload of a Diary item.
func (h HistoryItem) Diary() (DiaryEntry, bool) {
	d, ok := h.Data.(DiaryEntry)
	return d, ok
}
