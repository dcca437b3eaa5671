package mailer

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// no goroutine may outlive a send
	goleak.VerifyTestMain(m)
}
