package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

func TestTimeLogsRequestIDAndError(t *testing.T) {
	buf := captureLog(t)
	ctx := WithRequestID(context.Background(), "abc")

	err := errors.New("boom")
	Time(ctx, "op.test")(&err)

	line := buf.String()
	for _, want := range []string{"req_id=abc", "op=op.test", "err=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestTimeWithoutError(t *testing.T) {
	buf := captureLog(t)

	var err error
	Time(context.Background(), "op.ok")(&err)

	if line := buf.String(); strings.Contains(line, "err=") || !strings.Contains(line, "op=op.ok") {
		t.Fatalf("unexpected log line %q", line)
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("empty context should have no request id")
	}
}
