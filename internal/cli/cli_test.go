package cli

import (
	"bufio"
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesnow/internal/devstub"
)

// runCmd executes one CLI invocation against the stub with scripted stdin.
func runCmd(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOVIESNOW_API_URL", srv.URL)

	var out bytes.Buffer
	app := &App{out: &out, in: bufio.NewReader(strings.NewReader(stdin))}
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	out, err := runCmd(t, srv, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "moviesnow")
}

func TestSignupAndLoginFlow(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	// signup prompts for the password on stdin.
	out, err := runCmd(t, srv, "Str0ng!password\n", "signup", "--email", "cli@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created.")
	assert.Contains(t, out, "MOVIESNOW_ACCESS_TOKEN=")

	out, err = runCmd(t, srv, "Str0ng!password\n", "login", "--email", "cli@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")
}

func TestLogin_BadPasswordSurfacesError(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	_, err := runCmd(t, srv, "Str0ng!password\n", "signup", "--email", "cli@example.com")
	require.NoError(t, err)

	_, err = runCmd(t, srv, "Wr0ng!password\n", "login", "--email", "cli@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestSessionsList_WithExportedToken(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	out, err := runCmd(t, srv, "Str0ng!password\n", "signup", "--email", "cli@example.com")
	require.NoError(t, err)

	// Pull the exported token out of the signup output.
	var access string
	for _, line := range strings.Split(out, "\n") {
		if _, rest, ok := strings.Cut(line, "MOVIESNOW_ACCESS_TOKEN="); ok {
			access = strings.TrimSpace(rest)
		}
	}
	require.NotEmpty(t, access)
	t.Setenv("MOVIESNOW_ACCESS_TOKEN", access)

	out, err = runCmd(t, srv, "", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* marks this session")
}

func TestAlertsSet_RejectsMalformedArgs(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	_, err := runCmd(t, srv, "", "alerts", "set", "email_login=maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected <flag>=<on|off>")
}

func TestTOTPCmd(t *testing.T) {
	srv := httptest.NewServer(devstub.New().Router())
	t.Cleanup(srv.Close)

	out, err := runCmd(t, srv, "", "totp", "--secret", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Regexp(t, `\d{6}`, out)
}

func TestDescribeUA(t *testing.T) {
	chrome := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	desc := describeUA(chrome)
	assert.Contains(t, desc, "Chrome")

	assert.Equal(t, "unknown client", describeUA(""))
}
