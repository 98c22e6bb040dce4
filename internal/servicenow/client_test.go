package servicenow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Username: "jdoe", Password: "hunter2"}, telemetry.NoopObserver{})
}

func mustDuration(t *testing.T, s string) domain.Duration {
	t.Helper()
	d, err := domain.ParseDuration(s, 23)
	require.NoError(t, err)
	return d
}

func TestClient_UserGroup(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sys_user", r.URL.Path)
		assert.Equal(t, "jdoe", r.URL.Query().Get("user_name"))
		assert.Equal(t, "u_default_group", r.URL.Query().Get("sysparm_fields"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "jdoe", user)
		assert.Equal(t, "hunter2", pass)
		w.Write([]byte(`{"result":[{"u_default_group":"Linux Team"}]}`))
	})

	group, err := c.UserGroup(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "Linux Team", group)
}

func TestClient_UserGroup_NotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	})

	_, err := c.UserGroup(context.Background(), "ghost")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "get_user_group", be.Op)
}

func TestClient_CreateTicket(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/now/table/sc_req_item", r.URL.Path)

		var body ticketCreation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Linux Team", body.AssignmentGroup)
		assert.Equal(t, "patch web01", body.ShortDescription)
		assert.Equal(t, "patch web01", body.Description)
		assert.Equal(t, "4", body.Priority)
		assert.Equal(t, "server_specific", body.SLAType)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":{"sys_id":"ritm123"}}`))
	})

	id, err := c.CreateTicket(context.Background(), "Linux Team", "patch web01")
	require.NoError(t, err)
	assert.Equal(t, "ritm123", id)
}

func TestClient_AddTimeToTicket(t *testing.T) {
	var got timeWorkedCreation
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/task_time_worked", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":{}}`))
	})

	err := c.AddTimeToTicket(context.Background(), "abc", mustDuration(t, "1h2m"), "patched")
	require.NoError(t, err)
	assert.Equal(t, timeWorkedCreation{TimeWorked: "1970-01-01+01:02:00", Comments: "patched", Task: "abc"}, got)
}

func TestClient_AddTimeToCategory(t *testing.T) {
	var raw map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.AddTimeToCategory(context.Background(), "clerical", mustDuration(t, "30m"), "filing")
	require.NoError(t, err)
	assert.Equal(t, "clerical", raw["u_category"])
	assert.Equal(t, "1970-01-01+00:30:00", raw["time_worked"])
	assert.NotContains(t, raw, "task")
}

func TestClient_BackendErrorCarriesStatusAndBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"ACL denied"}}`))
	})

	err := c.AddTimeToTicket(context.Background(), "abc", mustDuration(t, "1h"), "x")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusForbidden, be.Status)
	assert.Contains(t, be.Body, "ACL denied")
	assert.Contains(t, err.Error(), "add_time_to_ticket")
}

func TestClient_MalformedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.CreateTicket(context.Background(), "bin", "desc")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.ErrorContains(t, err, "decoding response")
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.UserGroup(context.Background(), "jdoe")
	var be *domain.BackendError
	assert.ErrorAs(t, err, &be)
}

func TestClient_TicketsInBin(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/task", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("sysparm_query"), "assignment_group.name=Linux Team^active=true")
		w.Write([]byte(`{"result":[{"sys_id":"a1","number":"RITM001","short_description":"disk full"}]}`))
	})

	tickets, err := c.TicketsInBin(context.Background(), "Linux Team")
	require.NoError(t, err)
	assert.Equal(t, []domain.Ticket{{ID: "a1", Number: "RITM001", ShortDescription: "disk full"}}, tickets)
}

func TestClient_SearchTemplatesAndCreateChange(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/now/table/std_change_record_producer":
			assert.Contains(t, r.URL.Query().Get("sysparm_query"), "nameLIKEpatch")
			w.Write([]byte(`{"result":[{"sys_id":"tpl1","name":"Patch Linux servers"}]}`))
		case "/api/sn_chg_rest/change/standard/tpl1":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Linux Team", body["assignment_group"])
			w.Write([]byte(`{"result":{"sys_id":{"display_value":"chg9","value":"chg9"}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	templates, err := c.SearchTemplates(context.Background(), "patch")
	require.NoError(t, err)
	require.Equal(t, []domain.ChangeTemplate{{ID: "tpl1", Name: "Patch Linux servers"}}, templates)

	id, err := c.CreateChangeFromTemplate(context.Background(), "tpl1", "Linux Team")
	require.NoError(t, err)
	assert.Equal(t, "chg9", id)
}

func TestClient_TimeEntries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("sysparm_query")
		assert.Contains(t, q, "user.user_name=jdoe")
		assert.Contains(t, q, "gs.dateGenerate('2026-01-05','00:00:00')")
		assert.Contains(t, q, "gs.dateGenerate('2026-01-09','23:59:59')")
		w.Write([]byte(`{"result":[
			{"time_in_seconds":"3600","task":"t1","u_category":""},
			{"time_in_seconds":"1800","task":"","u_category":"clerical"},
			{"time_in_seconds":"garbage","task":"t2","u_category":""}
		]}`))
	})

	entries, err := c.TimeEntries(context.Background(), domain.DateRange{Since: "2026-1-5", Until: "2026-01-09"}, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeEntry{
		{Seconds: 3600, TicketID: "t1"},
		{Seconds: 1800, Category: "clerical"},
		{Seconds: 0, TicketID: "t2"},
	}, entries)
}

func TestClient_CostCenters(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "sys_idINt1,t2,t3", r.URL.Query().Get("sysparm_query"))
		assert.Equal(t, "all", r.URL.Query().Get("sysparm_display_value"))
		w.Write([]byte(`{"result":[
			{"sys_id":{"display_value":"t1","value":"t1"},"cost_center":{"display_value":"Infrastructure","value":"cc1"}},
			{"sys_id":{"display_value":"t2","value":"t2"},"cost_center":{"display_value":"","value":""}}
		]}`))
	})

	centers, err := c.CostCenters(context.Background(), []string{"t1", "t2", "t3"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []domain.CostCenter{{TicketID: "t1", Name: "Infrastructure"}}, centers)

	centers, err = c.CostCenters(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, centers)
	assert.Equal(t, 1, calls)
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "https://acme.service-now.com/task.do?sys_id=abc", TaskLink("acme", "abc"))
	assert.Equal(t, "https://acme.service-now.com/sc_req_item.do?sys_id=abc", RequestItemLink("acme", "abc"))
	assert.Equal(t, "https://acme.service-now.com/change_request.do?sys_id=abc", ChangeLink("acme", "abc"))
	assert.Equal(t, "https://acme.service-now.com", Config{Instance: "acme"}.baseURL())
}
