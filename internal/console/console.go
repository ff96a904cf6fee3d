// Package console presents an update run in the terminal and acts on its
// outcome: it launches the launcher, guides the player to install Java, or
// shows the failure with the location of the log file.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skratchdot/open-golang/open"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/orchestrator"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/runtime"
)

// Presenter renders a Stream and performs the follow-up action.
type Presenter struct {
	out     io.Writer
	tty     bool
	layout  layout.Layout
	runner  runtime.Runner
	javaURL string
	launch  bool
	logPath func() string
	open    func(url string) error

	lastLen int
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithoutLaunch disables starting the launcher after a successful run.
func WithoutLaunch() Option {
	return func(p *Presenter) {
		p.launch = false
	}
}

// WithLogPath sets where the failure screen says the log is.
func WithLogPath(f func() string) Option {
	return func(p *Presenter) {
		p.logPath = f
	}
}

// WithOpener replaces the function that opens a URL in the browser.
func WithOpener(f func(url string) error) Option {
	return func(p *Presenter) {
		p.open = f
	}
}

// New creates a Presenter writing to out. Progress is redrawn in place when
// out is a terminal.
func New(out io.Writer, l layout.Layout, runner runtime.Runner, javaURL string, opts ...Option) *Presenter {
	p := &Presenter{
		out:     out,
		tty:     isTerminal(out),
		layout:  l,
		runner:  runner,
		javaURL: javaURL,
		launch:  true,
		logPath: func() string { return "" },
		open:    open.Run,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Wait renders progress until the run finishes, then acts on the Result
// exactly once. The returned error is non-nil when the player has to do
// something.
func (p *Presenter) Wait(s *orchestrator.Stream) (orchestrator.Result, error) {
	for {
		select {
		case ev := <-s.Events():
			p.render(ev)
		case <-s.Done():
			p.drain(s)
			res, ok := s.TakeResult()
			if !ok {
				return res, failure.New(failure.Internal, "update result was already handled")
			}
			p.endLine()
			return res, p.act(res)
		}
	}
}

func (p *Presenter) drain(s *orchestrator.Stream) {
	for {
		select {
		case ev := <-s.Events():
			p.render(ev)
		default:
			return
		}
	}
}

func (p *Presenter) render(ev progress.Event) {
	line := ev.String()
	if !p.tty {
		fmt.Fprintln(p.out, line)
		return
	}
	pad := ""
	if n := p.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
	p.lastLen = len(line)
}

func (p *Presenter) endLine() {
	if p.tty && p.lastLen > 0 {
		fmt.Fprintln(p.out)
		p.lastLen = 0
	}
}

func (p *Presenter) act(res orchestrator.Result) error {
	if res.ShouldLaunch() {
		if res.Outcome == orchestrator.Offline {
			fmt.Fprintln(p.out, "Could not reach the server. Starting with the files already installed.")
		}
		return p.startLauncher()
	}
	switch res.Outcome {
	case orchestrator.SelfUpdateRestarting:
		fmt.Fprintf(p.out, "%s was updated and is restarting.\n", branding.DisplayName())
		return nil
	case orchestrator.ComponentRuntimeMissing:
		return p.javaMissing(res.Err)
	default:
		return p.failed(res.Err)
	}
}

func (p *Presenter) startLauncher() error {
	if !p.launch {
		fmt.Fprintln(p.out, "Up to date.")
		return nil
	}
	exe := p.layout.Launcher()
	if err := p.runner.Start(runtime.Cmd{Path: exe, Dir: p.layout.Root}); err != nil {
		return p.failed(failure.WrapPath(err, failure.ExternalProcessFailed, "starting launcher", exe))
	}
	fmt.Fprintln(p.out, "Starting the launcher...")
	return nil
}

func (p *Presenter) javaMissing(err error) error {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Java was not found on this computer.")
	fmt.Fprintln(p.out, "Minecraft needs Java 21 or newer. Install it, then run "+branding.CLIName()+" again.")
	if p.javaURL != "" {
		fmt.Fprintf(p.out, "Download page: %s\n", p.javaURL)
		if openErr := p.open(p.javaURL); openErr != nil {
			log.WithError(openErr).Warn("could not open the Java download page")
		}
	}
	return err
}

func (p *Presenter) failed(err error) error {
	if err == nil {
		err = failure.New(failure.Internal, "update failed without an error")
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Update failed:")
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(p.out, "  %s\n", line)
	}
	if path := p.logPath(); path != "" {
		fmt.Fprintf(p.out, "\nThe full log is at %s\n", path)
		fmt.Fprintf(p.out, "Run `%s logs` to print it and send it to the server admins.\n", branding.CLIName())
	}
	return err
}
