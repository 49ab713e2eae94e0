package metrics

import (
	"sync"
	"testing"
)

func TestIncrementAPICall(t *testing.T) {
	m := NewMetrics()
	m.IncrementAPICall(true)
	m.IncrementAPICall(false)
	m.IncrementAPICall(true)

	snap := m.GetSnapshot()
	if snap.APICallsTotal != 3 {
		t.Fatalf("expected 3 calls, got %d", snap.APICallsTotal)
	}
	if snap.APICallsSuccessful != 2 {
		t.Fatalf("expected 2 successful calls, got %d", snap.APICallsSuccessful)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementAnswersSubmitted()
			m.IncrementStaleResponsesDropped()
		}()
	}
	wg.Wait()

	snap := m.GetSnapshot()
	if snap.AnswersSubmitted != 50 || snap.StaleResponsesDropped != 50 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLogValuesPairs(t *testing.T) {
	m := NewMetrics()
	m.IncrementQuestionsAdded()

	kv := m.GetSnapshot().LogValues()
	if len(kv)%2 != 0 {
		t.Fatalf("expected key/value pairs, got %d items", len(kv))
	}
	found := false
	for i := 0; i < len(kv); i += 2 {
		if kv[i] == "questions_added" && kv[i+1] == int64(1) {
			found = true
		}
	}
	if !found {
		t.Fatalf("questions_added missing from %v", kv)
	}
}
