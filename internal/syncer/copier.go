package syncer

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Copier pulls one remote file to a local destination.
type Copier interface {
	Copy(ctx context.Context, source, dest string) error
}

// SCPCopier copies over scp, the transfer mechanism the rover host
// already serves. The context deadline bounds the whole transfer; the
// connect timeout additionally bounds the handshake on scp's side.
type SCPCopier struct {
	ConnectTimeout time.Duration
}

func (c SCPCopier) args(source, dest string) []string {
	connect := c.ConnectTimeout
	if connect <= 0 {
		connect = 5 * time.Second
	}
	secs := int(connect / time.Second)
	if secs < 1 {
		secs = 1
	}
	return []string{
		"-q",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=" + strconv.Itoa(secs),
		source,
		dest,
	}
}

// Copy runs scp and returns its error, if any.
func (c SCPCopier) Copy(ctx context.Context, source, dest string) error {
	cmd := exec.CommandContext(ctx, "scp", c.args(source, dest)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("scp: %w: %s", err, out)
		}
		return fmt.Errorf("scp: %w", err)
	}
	return nil
}
