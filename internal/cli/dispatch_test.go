package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/testutil"
)

// run drives the dispatcher against a fake backend and a temp config dir.
// --config is appended so no real user state is touched.
func run(t *testing.T, svc service.Service, dir string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvURL, "http://backend.test")
	t.Setenv(config.EnvAnonKey, "anon-key")

	factory := func(ctx context.Context, cfg *config.Config, sess *service.Session, persist func(service.Session)) (service.Service, error) {
		return svc, nil
	}
	d := NewDispatcher(commands.DefaultRegistry, factory, nil)

	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		rest := append([]string{"--config", dir}, args[1:]...)
		args = append(args[:1:1], rest...)
	}
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return code, out.String(), errOut.String()
}

// seedSession writes a signed-in session into dir.
func seedSession(t *testing.T, dir, email string) {
	t.Helper()
	holder := session.NewHolder(filepath.Join(dir, config.SessionFile), nil)
	if err := holder.Set(testutil.NewSession(email)); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := run(t, testutil.NewFakeService(), t.TempDir(), "frobnicate")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
	if got, want := errOut, "error: unknown command: frobnicate\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestFlagBeforeCommand(t *testing.T) {
	code, _, errOut := run(t, testutil.NewFakeService(), t.TempDir(), "--quiet")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
	if got, want := errOut, "error: unknown command: --quiet\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestUnknownFlag(t *testing.T) {
	code, _, errOut := run(t, testutil.NewFakeService(), t.TempDir(), "list", "--bogus")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
	if got, want := errOut, "error: unknown flag: -bogus\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestFlagNeedsValue(t *testing.T) {
	code, _, errOut := run(t, testutil.NewFakeService(), t.TempDir(), "add", "--desc")
	if code != exitcode.UserError {
		t.Fatalf("code = %d, want %d", code, exitcode.UserError)
	}
	if !strings.Contains(errOut, "needs an argument") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestAuthCommandWhileSignedOut(t *testing.T) {
	code, _, errOut := run(t, testutil.NewFakeService(), t.TempDir(), "list")
	if code != exitcode.AuthError {
		t.Fatalf("code = %d, want %d", code, exitcode.AuthError)
	}
	if got, want := errOut, "error: not logged in (run: taskdeck login)\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestAuthCommandDispatches(t *testing.T) {
	dir := t.TempDir()
	seedSession(t, dir, "a@x.com")

	svc := testutil.NewFakeService()
	svc.AddTask("a@x.com", "only task", "d")

	code, out, errOut := run(t, svc, dir, "list")
	if code != exitcode.Success {
		t.Fatalf("code = %d; stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "only task") {
		t.Errorf("stdout = %q", out)
	}
}

func TestAliasDispatch(t *testing.T) {
	dir := t.TempDir()
	seedSession(t, dir, "a@x.com")

	code, out, errOut := run(t, testutil.NewFakeService(), dir, "ls")
	if code != exitcode.Success {
		t.Fatalf("code = %d; stderr: %s", code, errOut)
	}
	if got, want := out, "no tasks found\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestHelp(t *testing.T) {
	code, out, _ := run(t, testutil.NewFakeService(), t.TempDir(), "help")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	for _, cmd := range []string{"login", "list", "add", "edit", "rm", "watch", "logout"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help output missing %q", cmd)
		}
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, testutil.NewFakeService(), t.TempDir(), "version")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.HasPrefix(out, "taskdeck ") {
		t.Errorf("stdout = %q", out)
	}
}

func TestQuietSuppressesChatter(t *testing.T) {
	dir := t.TempDir()
	seedSession(t, dir, "a@x.com")

	code, out, errOut := run(t, testutil.NewFakeService(), dir, "list", "--quiet")
	if code != exitcode.Success {
		t.Fatalf("code = %d; stderr: %s", code, errOut)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
}
