package rcm_test

import (
	"testing"

	"github.com/flashbots/fee-manager/storage/sqlstore/storetest"
	"go.uber.org/goleak"
)

var testLog = storetest.TestLog()

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
