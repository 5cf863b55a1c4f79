package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Calendar is a shared or primary calendar.
type Calendar struct {
	CalendarID   string `json:"calendar_id"`
	Summary      string `json:"summary"`
	Description  string `json:"description"`
	Permissions  string `json:"permissions"`
	Color        int    `json:"color"`
	Type         string `json:"type"`
	SummaryAlias string `json:"summary_alias,omitempty"`
	IsDeleted    bool   `json:"is_deleted"`
	IsThirdParty bool   `json:"is_third_party"`
	Role         string `json:"role"`
}

// ListCalendarsRequest pages through the calendars visible to the caller.
type ListCalendarsRequest struct {
	PageSize  int    `query:"page_size" json:"-"`
	PageToken string `query:"page_token" json:"-"`
	SyncToken string `query:"sync_token" json:"-"`
}

// ListCalendarsResponse is one page of calendars.
type ListCalendarsResponse struct {
	HasMore      bool       `json:"has_more"`
	PageToken    string     `json:"page_token"`
	SyncToken    string     `json:"sync_token"`
	CalendarList []Calendar `json:"calendar_list"`
}

// CalendarIDRequest addresses one calendar.
type CalendarIDRequest struct {
	CalendarID string `path:"calendar_id" json:"-"`
}

func (r *CalendarIDRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CalendarID, validation.Required),
	)
}

// CreateCalendarRequest creates a shared calendar.
type CreateCalendarRequest struct {
	Summary      string `json:"summary,omitempty"`
	Description  string `json:"description,omitempty"`
	Permissions  string `json:"permissions,omitempty"`
	Color        int    `json:"color,omitempty"`
	SummaryAlias string `json:"summary_alias,omitempty"`
}

// CreateCalendarResponse wraps the created calendar.
type CreateCalendarResponse struct {
	Calendar Calendar `json:"calendar"`
}

// TimeInfo is an event boundary: either Date (all-day, yyyy-mm-dd) or
// Timestamp (epoch seconds).
type TimeInfo struct {
	Date      string `json:"date,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// CalendarEvent is a calendar entry.
type CalendarEvent struct {
	EventID          string   `json:"event_id,omitempty"`
	OrganizerCalID   string   `json:"organizer_calendar_id,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Description      string   `json:"description,omitempty"`
	NeedNotification *bool    `json:"need_notification,omitempty"`
	StartTime        TimeInfo `json:"start_time"`
	EndTime          TimeInfo `json:"end_time"`
	Visibility       string   `json:"visibility,omitempty"`
	AttendeeAbility  string   `json:"attendee_ability,omitempty"`
	FreeBusyStatus   string   `json:"free_busy_status,omitempty"`
	Color            int      `json:"color,omitempty"`
	Recurrence       string   `json:"recurrence,omitempty"`
	Status           string   `json:"status,omitempty"`
	IsException      bool     `json:"is_exception,omitempty"`
	RecurringEventID string   `json:"recurring_event_id,omitempty"`
	CreateTime       string   `json:"create_time,omitempty"`
}

// CreateCalendarEventRequest adds an event to a calendar. IdempotencyKey
// makes the create safe to repeat.
type CreateCalendarEventRequest struct {
	CalendarID     string `path:"calendar_id" json:"-"`
	IdempotencyKey string `query:"idempotency_key" json:"-"`
	UserIDType     string `query:"user_id_type" json:"-"`
	CalendarEvent
}

func (r *CreateCalendarEventRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CalendarID, validation.Required),
		validation.Field(&r.CalendarEvent.Summary, validation.Required),
		validation.Field(&r.CalendarEvent.StartTime, validation.By(requireTimeInfo)),
		validation.Field(&r.CalendarEvent.EndTime, validation.By(requireTimeInfo)),
	)
}

func requireTimeInfo(value any) error {
	t, _ := value.(TimeInfo)
	if t.Date == "" && t.Timestamp == "" {
		return validation.NewError("validation_time_required", "date or timestamp is required")
	}
	return nil
}

// CreateCalendarEventResponse wraps the created event.
type CreateCalendarEventResponse struct {
	Event CalendarEvent `json:"event"`
}

// ListCalendarEventsRequest pages through a calendar's events. StartTime and
// EndTime are epoch seconds.
type ListCalendarEventsRequest struct {
	CalendarID string `path:"calendar_id" json:"-"`
	PageSize   int    `query:"page_size" json:"-"`
	AnchorTime string `query:"anchor_time" json:"-"`
	PageToken  string `query:"page_token" json:"-"`
	SyncToken  string `query:"sync_token" json:"-"`
	StartTime  string `query:"start_time" json:"-"`
	EndTime    string `query:"end_time" json:"-"`
	UserIDType string `query:"user_id_type" json:"-"`
}

func (r *ListCalendarEventsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CalendarID, validation.Required),
	)
}

// ListCalendarEventsResponse is one page of events.
type ListCalendarEventsResponse struct {
	HasMore   bool            `json:"has_more"`
	PageToken string          `json:"page_token"`
	SyncToken string          `json:"sync_token"`
	Items     []CalendarEvent `json:"items"`
}

// DeleteCalendarEventRequest removes an event.
type DeleteCalendarEventRequest struct {
	CalendarID       string `path:"calendar_id" json:"-"`
	EventID          string `path:"event_id" json:"-"`
	NeedNotification *bool  `query:"need_notification" json:"-"`
}

func (r *DeleteCalendarEventRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CalendarID, validation.Required),
		validation.Field(&r.EventID, validation.Required),
	)
}

// ListFreebusyRequest queries busy intervals of a user or meeting room
// between TimeMin and TimeMax (RFC 3339).
type ListFreebusyRequest struct {
	UserIDType string `query:"user_id_type" json:"-"`
	TimeMin    string `json:"time_min"`
	TimeMax    string `json:"time_max"`
	UserID     string `json:"user_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
}

func (r *ListFreebusyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TimeMin, validation.Required),
		validation.Field(&r.TimeMax, validation.Required),
		validation.Field(&r.UserID, validation.When(r.RoomID == "", validation.Required.Error("user_id or room_id is required"))),
	)
}

// Freebusy is one busy interval.
type Freebusy struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ListFreebusyResponse lists busy intervals.
type ListFreebusyResponse struct {
	FreebusyList []Freebusy `json:"freebusy_list"`
}
