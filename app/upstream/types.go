package upstream

import (
	"strings"
	"time"
)

// Item type codes used by the wire service.
const (
	TypeText    = "text"
	TypePhoto   = "picture"
	TypeVideo   = "video"
	TypeGraphic = "graphic"
	TypeFile    = "file"
)

// RawItem is a news document exactly as the wire service delivered it. It is
// immutable once fetched; the pipeline receives it by value.
type RawItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Summary      string    `json:"summary"`
	Text         string    `json:"text"`
	Date         time.Time `json:"-"`
	CategoryCode string    `json:"category"`
	PriorityCode string    `json:"priority"`
	TypeCode     string    `json:"type"`
	GroupID      string    `json:"group_id"`
	LanguageCode string    `json:"language"`
	Keywords     []string  `json:"keywords"`
}

// Body coalesces the alternate body fields the upstream uses interchangeably.
func (i RawItem) Body() string {
	if strings.TrimSpace(i.Content) != "" {
		return i.Content
	}
	if strings.TrimSpace(i.Text) != "" {
		return i.Text
	}
	return i.Summary
}

type SearchParams struct {
	Start      time.Time
	End        time.Time
	Categories []string
	Priorities []string
	Types      []string
	Language   string
	Query      string
	Offset     int
	Limit      int
}

type SearchResult struct {
	Items  []RawItem
	Total  int
	Offset int
	Limit  int
}

type FilterOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Taxonomy is the upstream's filter vocabulary for one language.
type Taxonomy struct {
	Categories []FilterOption `json:"category"`
	Priorities []FilterOption `json:"priority"`
	Types      []FilterOption `json:"type"`
	Languages  []FilterOption `json:"language"`
}

type Quota struct {
	DailyLimit  int `json:"daily_limit"`
	UsedToday   int `json:"used_today"`
	Remaining   int `json:"remaining"`
	ArchiveDays int `json:"archive_days"`
}

// Wire-level envelopes. The schema is fixed; a response that does not match it
// is a TransientError, never a reason to go hunting for data elsewhere in the
// payload.

type responseStatus struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	FilterCategory []string `json:"filter_category,omitempty"`
	FilterPriority []string `json:"filter_priority,omitempty"`
	FilterType     []string `json:"filter_type,omitempty"`
	FilterLanguage string   `json:"filter_language,omitempty"`
	SearchString   string   `json:"search_string,omitempty"`
	Offset         int      `json:"offset"`
	Limit          int      `json:"limit"`
}

type searchResponse struct {
	Response responseStatus `json:"response"`
	Data     struct {
		Result []searchResponseItem `json:"result"`
		Total  int                  `json:"total"`
	} `json:"data"`
}

type searchResponseItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary"`
	Text         string   `json:"text"`
	Date         string   `json:"date"`
	CategoryCode string   `json:"category"`
	PriorityCode string   `json:"priority"`
	TypeCode     string   `json:"type"`
	GroupID      string   `json:"group_id"`
	LanguageCode string   `json:"language"`
	Keywords     []string `json:"keywords"`
}

type discoverResponse struct {
	Response responseStatus `json:"response"`
	Data     Taxonomy       `json:"data"`
}

type tokenResponse struct {
	Response responseStatus `json:"response"`
	Data     []string       `json:"data"`
}

type subscriptionResponse struct {
	Response responseStatus `json:"response"`
	Data     Quota          `json:"data"`
}
