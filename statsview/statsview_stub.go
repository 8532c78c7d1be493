//go:build !statsview

package statsview

import (
	"io"

	"github.com/golang/glog"
)

// Launch only logs, the binary was built without the statsview tag.
func Launch(output io.Writer) {
	glog.Warning("statsview is not available, rebuild with -tags statsview")
}

// Available reports whether this build can launch the stats server.
func Available() bool {
	return false
}
