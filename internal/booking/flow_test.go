package booking_test

import (
	"testing"
	"time"

	"github.com/yuemei/linebot/internal/booking"
	"github.com/yuemei/linebot/internal/session"
)

// fixedFlow pins the clock to 2026-03-01 so date validation is deterministic.
func fixedFlow() *booking.Flow {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return booking.NewFlowAt(func() time.Time { return now })
}

// advanceAll feeds inputs in order, failing the test if any input is
// rejected before the last one.
func advanceAll(t *testing.T, f *booking.Flow, s *session.Session, inputs []string) booking.Result {
	t.Helper()
	var res booking.Result
	for i, in := range inputs {
		res = f.Advance(s, in)
		if i < len(inputs)-1 && (res.Done || res.Cancelled) {
			t.Fatalf("dialogue ended early at input %d (%q)", i, in)
		}
	}
	return res
}

var happyInputs = []string{"Laser", "皮秒雷射", "王小明", "0912345678", "2026-03-10", "14:00-15:00", "過敏體質"}

func TestAdvance_HappyPath(t *testing.T) {
	f := fixedFlow()
	s := session.New("U1")

	res := advanceAll(t, f, s, happyInputs)
	if !res.Done {
		t.Fatal("expected dialogue to finish")
	}

	b := booking.Assemble(s)
	if b.TreatmentCategory != "雷射光療 Laser" {
		t.Errorf("category = %q", b.TreatmentCategory)
	}
	if b.TreatmentName != "皮秒雷射" {
		t.Errorf("treatment = %q", b.TreatmentName)
	}
	if b.CustomerName != "王小明" {
		t.Errorf("name = %q", b.CustomerName)
	}
	if b.CustomerPhone != "0912345678" {
		t.Errorf("phone = %q", b.CustomerPhone)
	}
	if b.PreferredDate != "2026-03-10" {
		t.Errorf("date = %q", b.PreferredDate)
	}
	if b.PreferredTime != "14:00-15:00" {
		t.Errorf("time = %q", b.PreferredTime)
	}
	if b.Notes != "過敏體質" {
		t.Errorf("notes = %q", b.Notes)
	}
	if b.Status != booking.StatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
}

func TestAdvance_SkipMarkerLeavesNotesAbsent(t *testing.T) {
	for _, marker := range []string{"none", "done", "無"} {
		f := fixedFlow()
		s := session.New("U1")
		inputs := append(append([]string{}, happyInputs[:6]...), marker)
		res := advanceAll(t, f, s, inputs)
		if !res.Done {
			t.Fatalf("marker %q: expected dialogue to finish", marker)
		}
		if _, ok := s.Fields[session.StepNotes]; ok {
			t.Errorf("marker %q: notes must be left absent, got %q", marker, s.Fields[session.StepNotes])
		}
	}
}

func TestAdvance_SkipMarkerIsLiteral(t *testing.T) {
	f := fixedFlow()
	s := session.New("U1")
	inputs := append(append([]string{}, happyInputs[:6]...), "NONE")
	res := advanceAll(t, f, s, inputs)
	if !res.Done {
		t.Fatal("expected dialogue to finish")
	}
	// Only the exact lowercase literal skips; a cased variant is a note.
	if s.Fields[session.StepNotes] != "NONE" {
		t.Fatalf("expected %q stored as notes, got %q", "NONE", s.Fields[session.StepNotes])
	}
}

func TestAdvance_InvalidInputLeavesSessionUnchanged(t *testing.T) {
	cases := []struct {
		name    string
		upTo    int // how many happy inputs to apply first
		invalid string
	}{
		{"category", 0, "隆鼻手術"},
		{"name", 2, "王"},
		{"phone short", 3, "091234567"},
		{"phone intl prefix", 3, "+886912345678"},
		{"phone landline", 3, "0212345678"},
		{"date yesterday", 4, "2026-02-28"},
		{"date bad month", 4, "2025-13-01"},
		{"date wrong order", 4, "01-12-2025"},
		{"time unknown slot", 5, "12:00-13:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := fixedFlow()
			s := session.New("U1")
			if tc.upTo > 0 {
				advanceAll(t, f, s, happyInputs[:tc.upTo])
			}
			stepBefore := s.Step
			fieldsBefore := len(s.Fields)

			res := f.Advance(s, tc.invalid)
			if res.Done || res.Cancelled {
				t.Fatal("invalid input must not end the dialogue")
			}
			if len(res.Replies) == 0 {
				t.Fatal("invalid input must produce a corrective reply")
			}
			if s.Step != stepBefore {
				t.Errorf("step advanced from %q to %q on invalid input", stepBefore, s.Step)
			}
			if len(s.Fields) != fieldsBefore {
				t.Errorf("fields mutated on invalid input: %v", s.Fields)
			}
		})
	}
}

func TestAdvance_PhoneSeparatorsStripped(t *testing.T) {
	f := fixedFlow()
	s := session.New("U1")
	advanceAll(t, f, s, happyInputs[:3])

	res := f.Advance(s, "0912-345 678")
	if res.Done || res.Cancelled || s.Step != session.StepDate {
		t.Fatal("expected separated phone number to be accepted")
	}
	if s.Fields[session.StepPhone] != "0912345678" {
		t.Fatalf("expected normalized phone, got %q", s.Fields[session.StepPhone])
	}
}

func TestAdvance_DateBoundaries(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2026-03-01", true},  // today
		{"2099-01-01", true},  // far future
		{"2026-02-28", false}, // yesterday
		{"2025-13-01", false}, // impossible month
		{"01-12-2025", false}, // wrong field order
		{"2026-3-10", false},  // non-padded
	}
	for _, tc := range cases {
		f := fixedFlow()
		s := session.New("U1")
		advanceAll(t, f, s, happyInputs[:4])
		f.Advance(s, tc.date)
		accepted := s.Step == session.StepTime
		if accepted != tc.ok {
			t.Errorf("date %q: accepted=%v, want %v", tc.date, accepted, tc.ok)
		}
	}
}

func TestAdvance_CancelCommandAtAnyStep(t *testing.T) {
	for upTo := 0; upTo < len(happyInputs); upTo++ {
		for _, cmd := range []string{"cancel", "restart", "取消"} {
			f := fixedFlow()
			s := session.New("U1")
			if upTo > 0 {
				advanceAll(t, f, s, happyInputs[:upTo])
			}
			res := f.Advance(s, cmd)
			if !res.Cancelled {
				t.Fatalf("step %d: %q must cancel the dialogue", upTo, cmd)
			}
			if len(res.Replies) == 0 {
				t.Fatalf("step %d: cancellation must be acknowledged", upTo)
			}
		}
	}
}

func TestAdvance_CancelWordInsideNotesIsKept(t *testing.T) {
	f := fixedFlow()
	s := session.New("U1")
	advanceAll(t, f, s, happyInputs[:6])

	// Only the exact command cancels; a note mentioning the word does not.
	res := f.Advance(s, "請勿 cancel 我的其他預約")
	if res.Cancelled {
		t.Fatal("note containing the cancel word must not cancel")
	}
	if !res.Done {
		t.Fatal("expected notes input to finish the dialogue")
	}
}

func TestIsTrigger(t *testing.T) {
	for _, text := range []string{"我要預約", "I want to book", "appointment please"} {
		if !booking.IsTrigger(text) {
			t.Errorf("expected %q to trigger the dialogue", text)
		}
	}
	for _, text := range []string{"hello", "價格多少"} {
		if booking.IsTrigger(text) {
			t.Errorf("expected %q not to trigger the dialogue", text)
		}
	}
}

func TestCanCancel(t *testing.T) {
	cases := []struct {
		status booking.Status
		ok     bool
	}{
		{booking.StatusPending, true},
		{booking.StatusConfirmed, true},
		{booking.StatusCompleted, false},
		{booking.StatusCancelled, false},
	}
	for _, tc := range cases {
		b := booking.Booking{Status: tc.status}
		if b.CanCancel() != tc.ok {
			t.Errorf("CanCancel(%s) = %v, want %v", tc.status, b.CanCancel(), tc.ok)
		}
	}
}
