package components

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/retry"
	"github.com/chenjicheng/upmc/internal/runtime"
)

var fastPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

// fakeRunner records commands and replies with scripted outputs in order.
type fakeRunner struct {
	cmds    []runtime.Cmd
	outputs []*runtime.Output
	err     error
}

func (f *fakeRunner) Run(_ context.Context, c runtime.Cmd) (*runtime.Output, error) {
	f.cmds = append(f.cmds, c)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.outputs) == 0 {
		return &runtime.Output{}, nil
	}
	out := f.outputs[0]
	if len(f.outputs) > 1 {
		f.outputs = f.outputs[1:]
	}
	return out, nil
}

func (f *fakeRunner) Start(c runtime.Cmd) error {
	f.cmds = append(f.cmds, c)
	return nil
}

func newInstaller(t *testing.T, runner runtime.Runner, opts ...Option) (*Installer, layout.Layout) {
	t.Helper()
	l := layout.New(t.TempDir())
	require.NoError(t, os.MkdirAll(l.Updater(), 0o755))
	require.NoError(t, os.WriteFile(l.Installer(), []byte("jar"), 0o644))
	require.NoError(t, os.WriteFile(l.ContentTool(), []byte("jar"), 0o644))

	opts = append([]Option{
		WithPolicy(fastPolicy),
		WithJavaLocator(func() (string, error) { return "/opt/java/bin/java", nil }),
	}, opts...)
	return New(l, runner, download.New(), "", opts...), l
}

func TestInstallLoader(t *testing.T) {
	runner := &fakeRunner{}
	inst, l := newInstaller(t, runner)

	require.NoError(t, inst.InstallLoader(context.Background(), "1.21.11", "0.18.4"))

	require.Len(t, runner.cmds, 1)
	cmd := runner.cmds[0]
	assert.Equal(t, "/opt/java/bin/java", cmd.Path)
	assert.Equal(t, []string{
		"-jar", l.Installer(), "client",
		"-dir", l.Game(),
		"-mcversion", "1.21.11",
		"-loader", "0.18.4",
		"-noprofile",
	}, cmd.Args)

	data, err := os.ReadFile(filepath.Join(l.Game(), "launcher_profiles.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"profiles":{}}`, string(data))
}

func TestInstallLoader_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{outputs: []*runtime.Output{{
		ExitCode: 1,
		Stderr:   "javax.net.ssl.SSLHandshakeException: PKIX path building failed",
	}}}
	inst, _ := newInstaller(t, runner)

	err := inst.InstallLoader(context.Background(), "1.21.11", "0.18.4")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ExternalProcessFailed))
	assert.Contains(t, err.Error(), "SSLHandshakeException")
	assert.Contains(t, err.Error(), "hint: TLS")
}

func TestInstallLoader_JavaMissing(t *testing.T) {
	runner := &fakeRunner{}
	inst, _ := newInstaller(t, runner, WithJavaLocator(func() (string, error) {
		return "", failure.New(failure.ComponentRuntimeMissing, "locating java")
	}))

	err := inst.InstallLoader(context.Background(), "1.21.11", "0.18.4")
	assert.True(t, failure.Is(err, failure.ComponentRuntimeMissing))
	assert.Empty(t, runner.cmds)
}

func TestSyncContent_RetriesThenSucceeds(t *testing.T) {
	runner := &fakeRunner{outputs: []*runtime.Output{
		{ExitCode: 1, Stderr: "java.net.SocketTimeoutException"},
		{ExitCode: 0},
	}}
	inst, l := newInstaller(t, runner)

	require.NoError(t, inst.SyncContent(context.Background(), "https://example.com/pack.toml"))
	require.Len(t, runner.cmds, 2)
	assert.Equal(t, l.Game(), runner.cmds[0].Dir)
	assert.Equal(t, []string{"-jar", l.ContentTool(), "-g", "-s", "client", "https://example.com/pack.toml"}, runner.cmds[0].Args)
}

func TestSyncContent_GivesUp(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exec failed")}
	inst, _ := newInstaller(t, runner)

	err := inst.SyncContent(context.Background(), "https://example.com/pack.toml")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ExternalProcessFailed))
	assert.Len(t, runner.cmds, 3)
}

func TestPurgeVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fabric-loader-0.16.9-1.21.4", "1.21.4", "fabric-loader-0.18.4-1.21.11", "1.21.11"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))

	require.NoError(t, PurgeVersions(dir, "fabric-loader-0.18.4-1.21.11"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"fabric-loader-0.18.4-1.21.11", "stray.txt"}, names)
}

func TestPurgeVersions_MissingDir(t *testing.T) {
	assert.NoError(t, PurgeVersions(filepath.Join(t.TempDir(), "absent"), "x"))
}

func TestClearMods(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"sodium.jar", "lithium.JAR", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.jar"), 0o755))

	require.NoError(t, ClearMods(dir))

	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"notes.txt", "sub.jar"}, names)
}

func TestFixIsolation(t *testing.T) {
	const tag = "fabric-loader-0.18.4-1.21.11"
	tests := []struct {
		name     string
		existing *string
		want     string
	}{
		{"create", nil, "VersionArgumentIndieV2:False\n"},
		{"replace", strp("VersionArgumentIndieV2:True\nRamType:1\n"), "VersionArgumentIndieV2:False\nRamType:1\n"},
		{"append", strp("RamType:1"), "RamType:1\nVersionArgumentIndieV2:False\n"},
		{"already off", strp("VersionArgumentIndieV2:False\n"), "VersionArgumentIndieV2:False\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, l := newInstaller(t, &fakeRunner{})
			path := filepath.Join(l.VersionDir(tag), "PCL", "Setup.ini")
			if tt.existing != nil {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(*tt.existing), 0o644))
			}

			require.NoError(t, inst.FixIsolation(tag))
			require.NoError(t, inst.FixIsolation(tag))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func strp(s string) *string { return &s }

func TestEnsureVanilla(t *testing.T) {
	var jarCalls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manifest.json":
			fmt.Fprintf(w, `{"versions":[{"id":"1.21.10","url":"%[1]s/old.json"},{"id":"1.21.11","url":"%[1]s/1.21.11.json"}]}`, srv.URL)
		case "/1.21.11.json":
			fmt.Fprintf(w, `{"id":"1.21.11","downloads":{"client":{"url":"%s/client.jar"}}}`, srv.URL)
		case "/client.jar":
			if jarCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("PK client"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := layout.New(t.TempDir())
	inst := New(l, &fakeRunner{}, download.New(download.WithHTTPClient(srv.Client())), "",
		WithPolicy(fastPolicy), WithVanillaManifestURL(srv.URL+"/manifest.json"))

	require.NoError(t, inst.EnsureVanilla(context.Background(), "1.21.11"))

	jar, err := os.ReadFile(filepath.Join(l.VersionDir("1.21.11"), "1.21.11.jar"))
	require.NoError(t, err)
	assert.Equal(t, "PK client", string(jar))
	assert.FileExists(t, filepath.Join(l.VersionDir("1.21.11"), "1.21.11.json"))
	assert.Equal(t, int32(2), jarCalls.Load())

	// Present files mean no network at all.
	srv.Close()
	require.NoError(t, inst.EnsureVanilla(context.Background(), "1.21.11"))
}

func TestEnsureVanilla_UnknownVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions":[]}`))
	}))
	defer srv.Close()

	inst := New(layout.New(t.TempDir()), &fakeRunner{}, download.New(download.WithHTTPClient(srv.Client())), "",
		WithPolicy(fastPolicy), WithVanillaManifestURL(srv.URL))

	err := inst.EnsureVanilla(context.Background(), "9.9.9")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.RemoteDataMalformed))
}
