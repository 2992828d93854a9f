package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Tests run with trace logging enabled so every log statement is evaluated,
// but output is only kept for verbose runs or when HYBRID_DEX_TEST_LOGS is
// set.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if os.Getenv("HYBRID_DEX_TEST_LOGS") != "" {
		return
	}
	for _, arg := range os.Args {
		if arg == "-test.v=true" {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}
