package tasks

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypePollNews, "CURRENCY")

	if task.ID == "" {
		t.Error("Task should get a unique ID")
	}
	if task.Type != TaskTypePollNews {
		t.Errorf("Expected type poll_news, got %s", task.Type)
	}
	if task.Category != "CURRENCY" {
		t.Errorf("Expected category CURRENCY, got %s", task.Category)
	}
	if task.RetryCount != 0 {
		t.Errorf("Expected zero retry count, got %d", task.RetryCount)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}

	other := NewTask(TaskTypePollNews, "CURRENCY")
	if other.ID == task.ID {
		t.Error("Two tasks should not share an ID")
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypePollNews, "CURRENCY")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Task should be retryable at retry count %d", task.RetryCount)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Task should not be retryable after max retries")
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypePollNews, "CURRENCY")

	if task.GetDuration() != 0 {
		t.Error("Unstarted task should report zero duration")
	}

	task.Start()
	time.Sleep(5 * time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Started task should report elapsed duration")
	}
}
