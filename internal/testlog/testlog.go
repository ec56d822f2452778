package testlog

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	klog "k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Setup configures controller-runtime and klog to share one logr sink.
// Quiet by default; DEBUG switches to a dev-mode zap logger on stderr so
// grid scheduling and measurement traces become visible.
func Setup() logr.Logger {
	logger := zap.New(zap.UseDevMode(true))
	if os.Getenv("DEBUG") == "" {
		logger = zap.New(zap.WriteTo(io.Discard))
	}
	ctrl.SetLogger(logger)
	// Point klog to controller-runtime's logr so both stacks share output
	klog.SetLogger(ctrl.Log)
	return logger
}
