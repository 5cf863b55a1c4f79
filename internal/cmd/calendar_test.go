package cmd

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarList(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/open-apis/calendar/v4/calendars", jsonResponse(200, okData(`{
			"has_more":false,
			"calendar_list":[
				{"calendar_id":"cal_1","summary":"Team","type":"shared","role":"owner"},
				{"calendar_id":"cal_2","summary":"Me","type":"primary","role":"owner"}
			]
		}`)))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "list", "--limit", "10"}))
	})
	assert.Contains(t, out, "cal_1")
	assert.Contains(t, out, "Team")
	assert.Contains(t, out, "primary")

	q, _ := url.ParseQuery(handler.last(t, "GET", "/open-apis/calendar/v4/calendars").Query)
	assert.Equal(t, "50", q.Get("page_size"))
}

func TestCalendarGet(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/open-apis/calendar/v4/calendars/cal_1", jsonResponse(200, okData(`{
			"calendar_id":"cal_1","summary":"Team","description":"Shared team calendar","permissions":"public","role":"owner"
		}`)))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "get", "cal_1"}))
	})
	assert.Contains(t, out, "Team")
	assert.Contains(t, out, "Shared team calendar")
	assert.Contains(t, out, "public")
}

func TestCalendarCreateAndDelete(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/open-apis/calendar/v4/calendars", jsonResponse(200, okData(`{"calendar":{"calendar_id":"cal_9","summary":"Launch"}}`))).
		On("DELETE", "/open-apis/calendar/v4/calendars/cal_9", jsonResponse(200, `{"code":0,"msg":"success","data":{}}`))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "create", "Launch", "--permissions", "private"}))
	})
	assert.Equal(t, "Created calendar cal_9\n", out)
	body := decodeJSONBody(t, handler.last(t, "POST", "/open-apis/calendar/v4/calendars").Body)
	assert.Equal(t, "Launch", body["summary"])
	assert.Equal(t, "private", body["permissions"])
	assert.NotContains(t, body, "description")

	out = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "delete", "cal_9", "-y"}))
	})
	assert.Equal(t, "Deleted calendar cal_9\n", out)
	assert.Equal(t, 1, handler.count("DELETE", "/open-apis/calendar/v4/calendars/cal_9"))
}

func TestCalendarEvents_TimeWindow(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/open-apis/calendar/v4/calendars/cal_1/events", jsonResponse(200, okData(`{
			"has_more":false,
			"items":[
				{"event_id":"ev_1","summary":"Retro","start_time":{"timestamp":"1715353200"},"end_time":{"timestamp":"1715356800"}},
				{"event_id":"ev_2","summary":"Offsite","start_time":{"date":"2024-05-11"},"end_time":{"date":"2024-05-12"}}
			]
		}`)))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "events", "cal_1",
			"--start", "2024-05-10T00:00:00Z", "--end", "1715558400"}))
	})
	assert.Contains(t, out, "ev_1")
	assert.Contains(t, out, "Retro")
	assert.Contains(t, out, "2024-05-11")

	q, _ := url.ParseQuery(handler.last(t, "GET", "/open-apis/calendar/v4/calendars/cal_1/events").Query)
	assert.Equal(t, "1715299200", q.Get("start_time"))
	assert.Equal(t, "1715558400", q.Get("end_time"))
}

func TestCalendarEvents_InvalidTime(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"calendar", "events", "cal_1", "--start", "next tuesday"})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --start")
}

func TestCalendarCreateEvent(t *testing.T) {
	path := "/open-apis/calendar/v4/calendars/cal_1/events"
	handler := newRouteHandler().
		On("POST", path, jsonResponse(200, okData(`{"event":{"event_id":"ev_7","summary":"Retro"}}`)))
	setupTestEnvWithHandler(t, handler)

	t.Run("defaults end to one hour", func(t *testing.T) {
		out := captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"calendar", "create-event", "cal_1",
				"--summary", "Retro", "--start", "2024-05-10T15:00:00Z", "--timezone", "UTC", "--idempotency-key", "k-1"}))
		})
		assert.Equal(t, "Created event ev_7\n", out)

		req := handler.last(t, "POST", path)
		body := decodeJSONBody(t, req.Body)
		assert.Equal(t, "Retro", body["summary"])
		assert.Equal(t, map[string]any{"timestamp": "1715353200", "timezone": "UTC"}, body["start_time"])
		assert.Equal(t, map[string]any{"timestamp": "1715356800", "timezone": "UTC"}, body["end_time"])
		assert.NotContains(t, body, "need_notification")

		q, _ := url.ParseQuery(req.Query)
		assert.Equal(t, "k-1", q.Get("idempotency_key"))
	})

	t.Run("all day uses dates", func(t *testing.T) {
		captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"calendar", "create-event", "cal_1",
				"--summary", "Offsite", "--start", "2024-05-11T00:00:00Z", "--end", "2024-05-12T00:00:00Z", "--all-day", "--notify=false"}))
		})
		body := decodeJSONBody(t, handler.last(t, "POST", path).Body)
		assert.Equal(t, map[string]any{"date": "2024-05-11"}, body["start_time"])
		assert.Equal(t, map[string]any{"date": "2024-05-12"}, body["end_time"])
		assert.Equal(t, false, body["need_notification"])
	})

	t.Run("end before start", func(t *testing.T) {
		var err error
		captureStderr(t, func() {
			err = Execute(context.Background(), []string{"calendar", "create-event", "cal_1",
				"--start", "2024-05-10T15:00:00Z", "--end", "2024-05-10T14:00:00Z"})
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--end must be after --start")
	})

	assert.Equal(t, 2, handler.count("POST", path))
}

func TestCalendarCreateEvent_RequiresStart(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"calendar", "create-event", "cal_1", "--summary", "x"})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}

func TestCalendarDeleteEvent(t *testing.T) {
	path := "/open-apis/calendar/v4/calendars/cal_1/events/ev_7"
	handler := newRouteHandler().
		On("DELETE", path, jsonResponse(200, `{"code":0,"msg":"success","data":{}}`))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "delete-event", "cal_1", "ev_7", "-y", "--notify=false"}))
	})
	assert.Equal(t, "Deleted event ev_7\n", out)

	q, _ := url.ParseQuery(handler.last(t, "DELETE", path).Query)
	assert.Equal(t, "false", q.Get("need_notification"))
}

func TestCalendarFreebusy(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/open-apis/calendar/v4/freebusy/list", jsonResponse(200, okData(`{
			"freebusy_list":[{"start_time":"2024-05-10T09:00:00+08:00","end_time":"2024-05-10T10:00:00+08:00"}]
		}`)))
	setupTestEnvWithHandler(t, handler)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"calendar", "freebusy", "--user", "ou_1",
			"--from", "2024-05-10T00:00:00Z", "--to", "2024-05-11T00:00:00Z"}))
	})
	assert.Contains(t, out, "BUSY FROM")
	assert.Contains(t, out, "2024-05-10T09:00:00+08:00")

	body := decodeJSONBody(t, handler.last(t, "POST", "/open-apis/calendar/v4/freebusy/list").Body)
	assert.Equal(t, "ou_1", body["user_id"])
	assert.Equal(t, "2024-05-10T00:00:00Z", body["time_min"])
	assert.Equal(t, "2024-05-11T00:00:00Z", body["time_max"])
	assert.NotContains(t, body, "room_id")
}

func TestCalendarFreebusy_DefaultWindowAndEmpty(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })

	handler := newRouteHandler().
		On("POST", "/open-apis/calendar/v4/freebusy/list", jsonResponse(200, okData(`{"freebusy_list":[]}`)))
	setupTestEnvWithHandler(t, handler)

	var out string
	errOut := captureStderr(t, func() {
		out = captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"calendar", "freebusy", "--room", "omm_1"}))
		})
	})
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Free for the whole window.")

	body := decodeJSONBody(t, handler.last(t, "POST", "/open-apis/calendar/v4/freebusy/list").Body)
	assert.Equal(t, "omm_1", body["room_id"])
	assert.Equal(t, "2024-05-10T08:00:00Z", body["time_min"])
	assert.Equal(t, "2024-05-11T08:00:00Z", body["time_max"])
}

func TestCalendarFreebusy_FlagRules(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	for _, args := range [][]string{
		{"calendar", "freebusy"},
		{"calendar", "freebusy", "--user", "ou_1", "--room", "omm_1"},
	} {
		var err error
		captureStderr(t, func() {
			err = Execute(context.Background(), args)
		})
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "room")
	}
}
