package feed

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestFeed_SendAndRun(t *testing.T) {
	f := New(4)
	f.Send(CategoryQuestion, "안녕")
	f.Send(CategoryAnswer, "안녕하세요")
	f.Close()

	var got []Message
	f.Run(context.Background(), func(m Message) { got = append(got, m) })

	if len(got) != 2 {
		t.Fatalf("Run delivered %d messages, want 2", len(got))
	}
	if got[0].Category != CategoryQuestion || got[1].Content != "안녕하세요" {
		t.Errorf("messages = %+v", got)
	}
	if got[0].At.IsZero() {
		t.Error("message timestamp not set")
	}
}

func TestFeed_DropsWhenFull(t *testing.T) {
	f := New(2)
	for i := 0; i < 5; i++ {
		f.Send(CategoryStatus, "s")
	}
	if f.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", f.Dropped())
	}
	if len(f.Messages()) != 2 {
		t.Errorf("buffered = %d, want 2", len(f.Messages()))
	}
}

func TestFeed_SendAfterClose(t *testing.T) {
	f := New(2)
	f.Close()
	f.Close()
	f.Send(CategoryStatus, "late")
	if f.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", f.Dropped())
	}
}

func TestFeed_RunStopsOnContext(t *testing.T) {
	f := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.Run(ctx, func(Message) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFeed_ConcurrentSenders(t *testing.T) {
	f := New(1000)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.Send(CategorySearch, "x")
			}
		}()
	}
	wg.Wait()
	f.Close()

	count := 0
	f.Run(context.Background(), func(Message) { count++ })
	if count+int(f.Dropped()) != 500 {
		t.Errorf("delivered %d + dropped %d, want 500", count, f.Dropped())
	}
}

func TestNew_DefaultBuffer(t *testing.T) {
	if cap(New(0).ch) != 64 {
		t.Error("default buffer should be 64")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Send(CategoryStatus, "a")
	r.Send(CategoryAnswer, "b")
	r.Send(CategoryStatus, "c")

	got := r.Of(CategoryStatus)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Of(status) = %v", got)
	}

	var s Sender = Discard{}
	s.Send(CategoryStatus, "ignored")
}
