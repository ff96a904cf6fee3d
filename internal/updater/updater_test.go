package updater

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/platform"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/retry"
	"github.com/chenjicheng/upmc/internal/runtime"
)

var fastPolicy = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}

type fakeSource struct {
	url   string
	info  *manifest.UpdaterInfo
	err   error
	calls int
}

func (f *fakeSource) UpdaterURL(resolver.Channel) string { return f.url }

func (f *fakeSource) FetchUpdaterInfo(context.Context, resolver.Channel) (*manifest.UpdaterInfo, error) {
	f.calls++
	return f.info, f.err
}

type startRecorder struct {
	cmds []runtime.Cmd
	err  error
}

func (s *startRecorder) Run(context.Context, runtime.Cmd) (*runtime.Output, error) {
	return &runtime.Output{}, nil
}

func (s *startRecorder) Start(c runtime.Cmd) error {
	s.cmds = append(s.cmds, c)
	return s.err
}

// nativeBinary returns bytes that pass the executable check on this OS.
func nativeBinary() []byte {
	magics := platform.ExecutableMagic(goruntime.GOOS)
	if len(magics) == 0 {
		return []byte("binary")
	}
	return append(append([]byte{}, magics[0]...), []byte("new build")...)
}

type fixture struct {
	layout layout.Layout
	exe    string
	runner *startRecorder
	hits   *atomic.Int32
	srv    *httptest.Server
}

func newFixture(t *testing.T, body []byte) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		layout: layout.New(root),
		exe:    filepath.Join(root, "upmc.exe"),
		runner: &startRecorder{},
		hits:   &atomic.Int32{},
	}
	require.NoError(t, os.MkdirAll(f.layout.Updater(), 0o755))
	require.NoError(t, os.WriteFile(f.exe, []byte("current build"), 0o755))

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		w.Write(body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) agent(version string, src InfoSource) *Agent {
	return New(version, f.layout, src, download.New(download.WithHTTPClient(f.srv.Client())),
		WithExecutable(f.exe), WithRunner(f.runner), WithPolicy(fastPolicy))
}

func TestCheck_StableUpdate(t *testing.T) {
	f := newFixture(t, nativeBinary())
	src := &fakeSource{url: "http://x", info: &manifest.UpdaterInfo{Version: "1.2.0", DownloadURL: f.srv.URL + "/upmc.exe"}}

	var events []progress.Event
	res, err := f.agent("1.1.9", src).Check(context.Background(), func(p int, m string) {
		events = append(events, progress.Event{Percent: p, Message: m})
	})
	require.NoError(t, err)
	assert.Equal(t, Restarting, res)

	staged, err := os.ReadFile(StagedPath(f.exe))
	require.NoError(t, err)
	assert.Equal(t, nativeBinary(), staged)

	helper, err := os.ReadFile(HelperPath(f.exe))
	require.NoError(t, err)
	assert.Equal(t, "current build", string(helper))

	require.Len(t, f.runner.cmds, 1)
	cmd := f.runner.cmds[0]
	assert.Equal(t, HelperPath(f.exe), cmd.Path)
	assert.Equal(t, HelperArgs(os.Getpid(), StagedPath(f.exe), f.exe), cmd.Args)

	for _, e := range events {
		assert.GreaterOrEqual(t, e.Percent, 1)
		assert.LessOrEqual(t, e.Percent, 11)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	tests := []struct {
		name    string
		current string
		remote  string
	}{
		{"equal", "1.2.0", "1.2.0"},
		{"older remote", "1.3.0", "1.2.0"},
		{"unparseable current", "dev", "1.2.0"},
		{"prerelease remote", "1.2.0", "1.3.0-rc1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nativeBinary())
			src := &fakeSource{url: "http://x", info: &manifest.UpdaterInfo{Version: tt.remote, DownloadURL: f.srv.URL}}

			res, err := f.agent(tt.current, src).Check(context.Background(), progress.Nop)
			require.NoError(t, err)
			assert.Equal(t, UpToDate, res)
			assert.Zero(t, f.hits.Load())
			assert.Empty(t, f.runner.cmds)
		})
	}
}

func TestCheck_NoURLSkips(t *testing.T) {
	f := newFixture(t, nativeBinary())
	src := &fakeSource{}

	res, err := f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.NoError(t, err)
	assert.Equal(t, UpToDate, res)
	assert.Zero(t, src.calls)
}

func TestCheck_FetchFailure(t *testing.T) {
	f := newFixture(t, nativeBinary())
	src := &fakeSource{url: "http://x", err: failure.New(failure.NetworkUnavailable, "dial")}

	_, err := f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.SelfUpdateFailed))
}

func TestCheck_VerificationFailure(t *testing.T) {
	if len(platform.ExecutableMagic(goruntime.GOOS)) == 0 {
		t.Skip("no executable header check on this OS")
	}
	f := newFixture(t, []byte("<html>not found</html>"))
	src := &fakeSource{url: "http://x", info: &manifest.UpdaterInfo{Version: "9.0.0", DownloadURL: f.srv.URL}}

	res, err := f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.Error(t, err)
	assert.Equal(t, UpToDate, res)
	assert.True(t, failure.Is(err, failure.DownloadVerificationFailed))
	assert.EqualValues(t, fastPolicy.MaxAttempts, f.hits.Load(), "download and verify are retried together")
	assert.NoFileExists(t, StagedPath(f.exe))
	assert.Empty(t, f.runner.cmds)
}

func TestCheck_HelperStartFailure(t *testing.T) {
	f := newFixture(t, nativeBinary())
	f.runner.err = errors.New("access denied")
	src := &fakeSource{url: "http://x", info: &manifest.UpdaterInfo{Version: "2.0.0", DownloadURL: f.srv.URL}}

	res, err := f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.Error(t, err)
	assert.Equal(t, UpToDate, res)
	assert.True(t, failure.Is(err, failure.SelfUpdateFailed))
	assert.NoFileExists(t, StagedPath(f.exe))
	assert.NoFileExists(t, HelperPath(f.exe))
}

func TestCheck_DevBuildID(t *testing.T) {
	f := newFixture(t, nativeBinary())
	cfg := resolver.ChannelConfig{}
	cfg.Select(resolver.Dev)
	require.NoError(t, resolver.SaveChannelConfig(f.layout, cfg))

	build := "abc1234def"
	src := &fakeSource{url: "http://x", info: &manifest.UpdaterInfo{Version: "0.0.0", DownloadURL: f.srv.URL, BuildID: &build}}

	res, err := f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.NoError(t, err)
	assert.Equal(t, Restarting, res)

	saved := resolver.ReadChannelConfig(f.layout)
	require.NotNil(t, saved.DevBuildID)
	assert.Equal(t, build, *saved.DevBuildID)

	// The recorded build is now current.
	f.runner.cmds = nil
	res, err = f.agent("1.0.0", src).Check(context.Background(), progress.Nop)
	require.NoError(t, err)
	assert.Equal(t, UpToDate, res)
	assert.Empty(t, f.runner.cmds)
}

func TestIsUpdateAvailable(t *testing.T) {
	id := func(s string) *string { return &s }
	dev := resolver.ChannelConfig{Channel: resolver.Dev, DevBuildID: id("aaa")}
	stable := resolver.ChannelConfig{Channel: resolver.Stable}

	tests := []struct {
		name string
		cfg  resolver.ChannelConfig
		info *manifest.UpdaterInfo
		want bool
	}{
		{"nil info", stable, nil, false},
		{"stable newer", stable, &manifest.UpdaterInfo{Version: "1.0.1"}, true},
		{"stable ignores build id", stable, &manifest.UpdaterInfo{Version: "1.0.0", BuildID: id("zzz")}, false},
		{"dev same build", dev, &manifest.UpdaterInfo{Version: "9.9.9", BuildID: id("aaa")}, false},
		{"dev new build", dev, &manifest.UpdaterInfo{Version: "0.0.1", BuildID: id("bbb")}, true},
		{"dev remote without build", dev, &manifest.UpdaterInfo{Version: "9.9.9"}, false},
		{"dev never installed", resolver.ChannelConfig{Channel: resolver.Dev}, &manifest.UpdaterInfo{BuildID: id("aaa")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUpdateAvailable(tt.cfg, "1.0.0", tt.info))
		})
	}
}

func TestHelperArgs(t *testing.T) {
	args := HelperArgs(42, "a.new", "a")
	assert.Equal(t, []string{HelperCommand, "--pid", strconv.Itoa(42), "--source", "a.new", "--target", "a"}, args)
}
