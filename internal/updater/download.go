package updater

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/platform"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/retry"
)

// downloadVerified stages the new build at StagedPath(exe). Download and
// verification are retried together; a file that fails verification is
// deleted before the next attempt.
func (a *Agent) downloadVerified(ctx context.Context, url string, report progress.Func) (string, error) {
	staged := StagedPath(a.exe)
	cb := progress.Bytes(report, "Downloading updater...", 2, 10)

	_, err := retry.Do(ctx, a.policy, "downloading updater", func() (int64, error) {
		n, err := a.client.ToFile(ctx, url, staged, cb)
		if err != nil {
			return 0, err
		}
		if err := platform.CheckExecutable(staged); err != nil {
			os.Remove(staged)
			return 0, failure.WrapPath(err, failure.DownloadVerificationFailed, "verifying", staged)
		}
		return n, nil
	})
	if err != nil {
		os.Remove(staged)
		return "", err
	}
	log.WithField("path", staged).Info("new updater staged")
	return staged, nil
}
