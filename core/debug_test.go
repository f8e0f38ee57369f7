package core

import (
	"strings"
	"testing"
)

func TestDebugPrintlnDisabled(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	if len(lines) != 0 {
		t.Errorf("Expected no output while disabled, got %v", lines)
	}

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	DebugPrintln("shown")
	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected [shown], got %v", lines)
	}
}

func TestEventRingOrder(t *testing.T) {
	ClearEventRing()
	SetTime(1000)

	RecordEvent(EvtGoal, 2, 100)
	RecordEvent(EvtRun, 2, 0)
	RecordEvent(EvtArrive, 2, 100)

	events := Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].EventType != EvtGoal || events[2].EventType != EvtArrive {
		t.Errorf("Events out of order: %+v", events)
	}
	if events[0].Clock != 1000 {
		t.Errorf("Expected clock 1000, got %d", events[0].Clock)
	}
}

func TestEventRingWraps(t *testing.T) {
	ClearEventRing()

	for i := 0; i < EventRingSize+5; i++ {
		RecordEvent(EvtGoal, 1, int64(i))
	}

	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Value != 5 {
		t.Errorf("Expected oldest value 5, got %d", events[0].Value)
	}
	if events[len(events)-1].Value != EventRingSize+4 {
		t.Errorf("Expected newest value %d, got %d", EventRingSize+4, events[len(events)-1].Value)
	}
}

func TestDumpEventRing(t *testing.T) {
	ClearEventRing()
	RecordEvent(EvtZero, 3, 0)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})

	DumpEventRing()

	if len(lines) != 4 {
		t.Fatalf("Expected 4 dump lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[2], "ZERO motor=3") {
		t.Errorf("Unexpected event line: %q", lines[2])
	}
}
