package metrics

import (
	"testing"
	"time"
)

func TestRecordRun(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordRun panic'd")
		}
	}()

	RecordRun("pass", 3*time.Second)
	RecordRun("fail", 0)
}

func TestRecordSuite(t *testing.T) {
	RecordSuite("wallet", "storage", "pass")
	RecordSuite("wallet", "", "fail")
}

func TestRecordSubtest(t *testing.T) {
	RecordSubtest("wallet", "pass")
	RecordSubtest("wallet", "skip")
}

func TestRecordCheck(t *testing.T) {
	RecordCheck("pass")
	RecordCheck("fail")
}

func TestRecordWithDebug(t *testing.T) {
	Debug = true
	defer func() { Debug = false }()

	RecordRun("pass", time.Second)
	RecordSuite("wallet", "storage", "pass")
	RecordSubtest("wallet", "pass")
}
