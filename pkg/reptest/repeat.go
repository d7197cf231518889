package reptest

import (
	"context"
	"time"
)

// Block is a code block driven by Repeat. Only Body is timed; the other
// hooks are optional.
type Block struct {
	Name    string
	Bytes   uint64
	Timeout time.Duration
	// Setup runs before every trial, outside the timed region.
	Setup func()
	Body  func()
	// Check validates the trial. Returning false fails the benchmark.
	Check func() bool
	// After runs once per trial after printing.
	After func()
}

// Repeat runs b until the tester stops it, prints the outcome and clears the
// tester for the next block. ctx is only consulted between trials.
func (t *Tester) Repeat(ctx context.Context, b Block) Result {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t.Init(b.Name, b.Bytes, timeout.Seconds())
	for t.ShouldContinue() {
		if err := ctx.Err(); err != nil {
			t.Error(msgCancelled + ": " + err.Error())
			break
		}
		if b.Setup != nil {
			b.Setup()
		}

		t.StartRun()
		b.Body()
		t.EndRun()

		if b.Check != nil && !b.Check() {
			t.Error(msgCheck)
		}
		t.Print()

		if b.After != nil {
			b.After()
		}
	}

	t.Print()
	res := t.Result()
	t.Clear()
	return res
}
