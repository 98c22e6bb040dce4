package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/service"
	"github.com/elasticnow/elasticnow/internal/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app    *App
	store  *testutil.MemoryStore
	work   *testutil.FakeWorkSystem
	index  *testutil.FakeIndex
	auth   *testutil.FakeAuth
	prompt *testutil.FakePrompter
	built  []*config.Config
}

// wednesday is 2024-03-06; its week starts on 2024-03-04.
var wednesday = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

func testApp(t *testing.T, answers ...string) *testEnv {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	env := &testEnv{
		store: &testutil.MemoryStore{Saved: &config.Config{
			ID:         "session",
			Instance:   "https://en.example.edu",
			SNInstance: "example",
			SNUsername: "jdoe",
			SNPassword: "pw",
			Bin:        "Service Desk",
		}},
		work:   &testutil.FakeWorkSystem{},
		index:  &testutil.FakeIndex{},
		auth:   &testutil.FakeAuth{},
		prompt: &testutil.FakePrompter{Answers: answers},
	}
	env.app = &App{
		Store:      env.store,
		ConfigPath: "/tmp/elasticnow/config.toml",
		Log:        log,
		Now:        func() time.Time { return wednesday },
		Build: func(cfg *config.Config) *Services {
			env.built = append(env.built, cfg)
			resolver := service.NewTicketResolver(env.index, env.auth, env.work, env.prompt, log)
			return &Services{
				Timetrack: service.NewTimetrackService(resolver, env.work, cfg.HourCeiling()),
				Report:    service.NewReportService(env.work),
				StdChg:    service.NewStdChgService(env.work, env.prompt),
				Setup:     service.NewSetupService(env.work, env.store),
			}
		},
	}
	return env
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- timetrack ---

func TestTimetrack_SearchTracksAndLinks(t *testing.T) {
	env := testApp(t, "RITM0001: Printer jam")
	hit := testutil.NewTestHit("RITM0001", "Printer jam")
	env.index.Hits = []domain.SearchHit{hit}

	out, err := executeCmd(t, env.app, "timetrack", "-s", "printer", "-c", "cleared", "-t", "1h30m")
	require.NoError(t, err)

	assert.Contains(t, out, "Tracking 1h30m of time")
	assert.Contains(t, out, "https://example.service-now.com/task.do?sys_id="+hit.ID)
	search := env.index.CallsTo("Search")
	require.Len(t, search, 1)
	assert.Equal(t, []any{"printer", "Service Desk"}, search[0].Args)
}

func TestTimetrack_BinOverride(t *testing.T) {
	env := testApp(t, service.OptionCancel)

	_, err := executeCmd(t, env.app, "timetrack", "-a", "-b", "Networks", "-c", "x", "-t", "1h")
	require.NoError(t, err)
	listed := env.work.CallsTo("TicketsInBin")
	require.Len(t, listed, 1)
	assert.Equal(t, []any{"Networks"}, listed[0].Args)
}

func TestTimetrack_NoTicketOmitsLink(t *testing.T) {
	env := testApp(t, "Training")

	out, err := executeCmd(t, env.app, "timetrack", "--no-tkt", "-c", "course", "-t", "2h")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracking 2h of time")
	assert.NotContains(t, out, "Link to ticket")

	added := env.work.CallsTo("AddTimeToCategory")
	require.Len(t, added, 1)
	assert.Equal(t, []any{"certs_prodev_training", int64(7200), "course"}, added[0].Args)
}

func TestTimetrack_NewPrintsCreatedLink(t *testing.T) {
	env := testApp(t, "Laptop refresh")
	env.work.CreatedID = "sys-9"

	out, err := executeCmd(t, env.app, "timetrack", "-n", "-c", "imaging", "-t", "30m")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ticket: https://example.service-now.com/sc_req_item.do?sys_id=sys-9")
	assert.Contains(t, out, "task.do?sys_id=sys-9")
}

func TestTimetrack_CancelExitsCleanly(t *testing.T) {
	env := testApp(t, service.OptionCancel)
	env.work.Tickets = []domain.Ticket{testutil.NewTestTicket("a")}

	out, err := executeCmd(t, env.app, "timetrack", "-a", "-c", "x", "-t", "1h")
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))
	assert.Contains(t, out, "Cancelled")
	assert.Empty(t, env.work.Mutations())
}

func TestTimetrack_ModeFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", []string{"-c", "x", "-t", "1h"}},
		{"two", []string{"-n", "--no-tkt", "-c", "x", "-t", "1h"}},
		{"missing comment", []string{"-n", "-t", "1h"}},
		{"missing time", []string{"-n", "-c", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testApp(t, "unused")
			_, err := executeCmd(t, env.app, append([]string{"timetrack"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Empty(t, env.work.Calls())
		})
	}
}

func TestTimetrack_InvalidDurationIsUsageError(t *testing.T) {
	for _, worked := range []string{"90", "24h", "1h60m", "0m", "1.5h"} {
		t.Run(worked, func(t *testing.T) {
			env := testApp(t, "unused")
			_, err := executeCmd(t, env.app, "timetrack", "-s", "x", "-c", "x", "-t", worked)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Empty(t, env.index.Calls())
			assert.Empty(t, env.auth.Calls())
		})
	}
}

func TestTimetrack_ConfiguredCeiling(t *testing.T) {
	env := testApp(t, "Clerical")
	env.store.Saved.MaxHours = 19

	_, err := executeCmd(t, env.app, "timetrack", "--no-tkt", "-c", "x", "-t", "20h")
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestTimetrack_BackendFailureIsRuntimeError(t *testing.T) {
	env := testApp(t, "Clerical")
	env.work.FailOn("AddTimeToCategory", &domain.BackendError{Service: "servicenow", Op: "add time", Status: 500})

	_, err := executeCmd(t, env.app, "timetrack", "--no-tkt", "-c", "x", "-t", "1h")
	assert.Equal(t, ExitRuntime, ExitCode(err))
}

func TestTimetrack_MissingConfig(t *testing.T) {
	env := testApp(t)
	env.store.Saved = nil

	_, err := executeCmd(t, env.app, "timetrack", "--no-tkt", "-c", "x", "-t", "1h")
	require.Error(t, err)
	assert.Equal(t, ExitRuntime, ExitCode(err))
	assert.ErrorIs(t, err, config.ErrNotFound)
	assert.Contains(t, err.Error(), "elasticnow setup")
}

// --- report ---

func TestReport_DefaultsToCurrentWeek(t *testing.T) {
	env := testApp(t)
	env.work.Entries = []domain.TimeEntry{testutil.CategoryEntry("clerical", 3600)}

	out, err := executeCmd(t, env.app, "report")
	require.NoError(t, err)

	fetched := env.work.CallsTo("TimeEntries")
	require.Len(t, fetched, 1)
	assert.Equal(t, []any{domain.DateRange{Since: "2024-03-04", Until: "2024-03-06"}, "jdoe"}, fetched[0].Args)
	assert.Contains(t, out, "Clerical")
	assert.Contains(t, out, "01:00:00")
}

func TestReport_TodayAndUser(t *testing.T) {
	env := testApp(t)

	_, err := executeCmd(t, env.app, "report", "--today", "-u", "asmith")
	require.NoError(t, err)
	fetched := env.work.CallsTo("TimeEntries")
	require.Len(t, fetched, 1)
	assert.Equal(t, []any{domain.DateRange{Since: "2024-03-06", Until: "2024-03-06"}, "asmith"}, fetched[0].Args)
}

func TestReport_TopFoldsIntoOther(t *testing.T) {
	env := testApp(t)
	env.work.Entries = []domain.TimeEntry{
		testutil.CategoryEntry("clerical", 3600),
		testutil.CategoryEntry("certs_prodev_training", 1800),
		testutil.CategoryEntry("univ_events", 600),
	}

	out, err := executeCmd(t, env.app, "report", "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Other")
	assert.Contains(t, out, "00:40:00")
	assert.NotContains(t, out, "Training")
}

func TestReport_InvalidDate(t *testing.T) {
	env := testApp(t)

	_, err := executeCmd(t, env.app, "report", "--since", "2024-13-01")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Empty(t, env.work.Calls())
}

func TestReport_TopMustBePositive(t *testing.T) {
	env := testApp(t)

	_, err := executeCmd(t, env.app, "report", "--top", "0")
	assert.Equal(t, ExitUsage, ExitCode(err))
}

// --- stdchg ---

func TestStdChg_CreatesFromChosenTemplate(t *testing.T) {
	env := testApp(t, "Reboot server")
	tpl := testutil.NewTestTemplate("Reboot server")
	env.work.Templates = []domain.ChangeTemplate{tpl}
	env.work.ChangeID = "chg-7"

	out, err := executeCmd(t, env.app, "stdchg", "-s", "reboot")
	require.NoError(t, err)
	assert.Contains(t, out, "Created std chg: chg-7")
	assert.Contains(t, out, "https://example.service-now.com/change_request.do?sys_id=chg-7")

	created := env.work.CallsTo("CreateChangeFromTemplate")
	require.Len(t, created, 1)
	assert.Equal(t, []any{tpl.ID, "Service Desk"}, created[0].Args)
}

func TestStdChg_NoTemplatesIsUsageError(t *testing.T) {
	env := testApp(t)

	_, err := executeCmd(t, env.app, "stdchg", "-s", "nothing")
	require.ErrorIs(t, err, service.ErrNoTemplates)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

// --- setup ---

func TestSetup_WritesConfigWithDefaultGroup(t *testing.T) {
	env := testApp(t)
	env.store.Saved = nil
	env.work.Group = "Networks"

	out, err := executeCmd(t, env.app, "setup",
		"--id", "abc", "--instance", "https://en.example.edu",
		"--sn-instance", "example", "--sn-username", "jdoe", "--sn-password", "pw")
	require.NoError(t, err)

	require.NotNil(t, env.store.Saved)
	assert.Equal(t, "Networks", env.store.Saved.Bin)
	assert.Equal(t, "abc", env.store.Saved.ID)
	assert.Contains(t, out, "/tmp/elasticnow/config.toml")
}

func TestSetup_KeepsOptionalKeysOfExistingConfig(t *testing.T) {
	env := testApp(t)
	env.store.Saved.SNBaseURL = "http://127.0.0.1:8080"
	env.store.Saved.MaxHours = 19
	env.store.Saved.WarnHours = 40

	_, err := executeCmd(t, env.app, "setup",
		"--id", "new", "--instance", "https://en.example.edu",
		"--sn-instance", "example", "--sn-username", "jdoe", "--sn-password", "pw", "-b", "Ops")
	require.NoError(t, err)

	saved := env.store.Saved
	assert.Equal(t, "new", saved.ID)
	assert.Equal(t, "Ops", saved.Bin)
	assert.Equal(t, "http://127.0.0.1:8080", saved.SNBaseURL)
	assert.Equal(t, 19, saved.MaxHours)
	assert.Equal(t, 40, saved.WarnHours)
	require.Len(t, env.built, 1)
	assert.Equal(t, "http://127.0.0.1:8080", env.built[0].SNBaseURL)
}

func TestSetup_EnvFallbacks(t *testing.T) {
	env := testApp(t)
	env.store.Saved = nil
	t.Setenv("ELASTICNOW_ID", "from-env")
	t.Setenv("ELASTICNOW_INSTANCE", "https://en.example.edu")
	t.Setenv("SN_INSTANCE", "example")
	t.Setenv("SN_USERNAME", "jdoe")
	t.Setenv("SN_PASSWORD", "secret")

	_, err := executeCmd(t, env.app, "setup", "-b", "Ops")
	require.NoError(t, err)
	assert.Equal(t, "from-env", env.store.Saved.ID)
	assert.Equal(t, "secret", env.store.Saved.SNPassword)
	assert.Equal(t, "Ops", env.store.Saved.Bin)
	assert.Empty(t, env.work.CallsTo("UserGroup"))
}

func TestSetup_ReadsPasswordOnTerminal(t *testing.T) {
	env := testApp(t)
	env.app.IsInteractive = func() bool { return true }
	env.app.ReadPassword = func() (string, error) { return "typed", nil }
	t.Setenv("SN_PASSWORD", "")

	_, err := executeCmd(t, env.app, "setup", "--id", "a", "--instance", "i", "--sn-instance", "s", "--sn-username", "u", "-b", "Ops")
	require.NoError(t, err)
	assert.Equal(t, "typed", env.store.Saved.SNPassword)
}

func TestSetup_MissingValuesIsUsageError(t *testing.T) {
	env := testApp(t)
	env.store.Saved = nil
	t.Setenv("SN_PASSWORD", "")

	_, err := executeCmd(t, env.app, "setup", "--id", "a", "--instance", "i", "--sn-instance", "s", "--sn-username", "u")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Contains(t, err.Error(), "--sn-password")
	assert.Nil(t, env.store.Saved)
}

func TestSetup_GroupLookupFailureSavesNothing(t *testing.T) {
	env := testApp(t)
	env.store.Saved = nil
	env.work.FailOn("UserGroup", &domain.BackendError{Service: "servicenow", Op: "user group", Status: 401})

	_, err := executeCmd(t, env.app, "setup", "--id", "a", "--instance", "i", "--sn-instance", "s", "--sn-username", "u", "--sn-password", "p")
	assert.Equal(t, ExitRuntime, ExitCode(err))
	assert.Nil(t, env.store.Saved)
}

// --- exit codes ---

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"cobra", errors.New(`unknown flag: --bogus`), ExitUsage},
		{"format", classify(&domain.FormatError{Input: "x"}), ExitUsage},
		{"not interactive", classify(ErrNotInteractive), ExitUsage},
		{"auth", classify(&domain.AuthError{Err: errors.New("x")}), ExitRuntime},
		{"backend", classify(&domain.BackendError{Service: "servicenow"}), ExitRuntime},
		{"missing config", runtimeErr(config.ErrNotFound), ExitRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHuhPrompter_RefusesWithoutTerminal(t *testing.T) {
	p := NewHuhPrompter(func() bool { return false })

	_, err := p.Select("pick", []string{"a"})
	assert.ErrorIs(t, err, ErrNotInteractive)
	_, err = p.Input("text")
	assert.ErrorIs(t, err, ErrNotInteractive)
}
