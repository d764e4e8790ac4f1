package booking

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuemei/linebot/internal/line"
	"github.com/yuemei/linebot/internal/session"
)

// Category is one bookable treatment category. Name is the bilingual display
// form stored on the booking; Aliases are matched by substring against
// inbound text, so both a menu tap (which injects Name) and typed text in
// either language select the category.
type Category struct {
	Name    string
	Aliases []string
}

// Categories is the fixed menu of treatment categories.
var Categories = []Category{
	{Name: "雷射光療 Laser", Aliases: []string{"雷射", "光療", "Laser"}},
	{Name: "微整注射 Injectables", Aliases: []string{"微整", "注射", "Injectables", "Botox", "Filler"}},
	{Name: "美容護膚 Facial", Aliases: []string{"護膚", "美容", "Facial"}},
	{Name: "身體雕塑 Body Sculpting", Aliases: []string{"雕塑", "身體", "Body"}},
}

// TimeSlots is the fixed menu of bookable slots.
var TimeSlots = []string{
	"10:00-11:00",
	"11:00-12:00",
	"13:00-14:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
	"17:00-18:00",
}

// TriggerKeywords start the booking dialogue when found as a substring of an
// out-of-session message.
var TriggerKeywords = []string{"預約", "book", "appointment"}

// CancelCommands abort an active dialogue. Matched by exact equality (after
// trimming) so a phone number or note containing these words is unaffected.
var CancelCommands = []string{"cancel", "restart", "取消"}

// NotesSkipMarkers mean "no notes". The literal words are kept verbatim for
// compatibility with existing users; the field is left absent, not stored.
var NotesSkipMarkers = []string{"none", "done", "無"}

var (
	phoneRe = regexp.MustCompile(`^09\d{8}$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Result is the outcome of feeding one inbound message to the step machine.
type Result struct {
	// Replies to send back for this message. Empty when Done is set; the
	// caller composes the confirmation after persistence succeeds.
	Replies []line.Message
	// Done means all fields are collected and the session should be finalized.
	Done bool
	// Cancelled means the user aborted; the caller deletes the session.
	Cancelled bool
}

// Flow is the booking dialogue step machine. It is pure: it mutates only the
// session passed to Advance and performs no I/O.
type Flow struct {
	now func() time.Time
}

func NewFlow() *Flow {
	return &Flow{now: time.Now}
}

// NewFlowAt pins the clock, for date-validation tests.
func NewFlowAt(now func() time.Time) *Flow {
	return &Flow{now: now}
}

// IsTrigger reports whether text contains a booking-intent keyword.
func IsTrigger(text string) bool {
	for _, kw := range TriggerKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Begin returns the opening prompt for a fresh session.
func (f *Flow) Begin() []line.Message {
	return []line.Message{PromptCategory()}
}

// Advance feeds one inbound message to the session's current step. A failed
// validation leaves the session untouched and re-prompts; a passed one stores
// the value and moves to the next step. The cancel-command check runs before
// any step validator.
func (f *Flow) Advance(s *session.Session, text string) Result {
	trimmed := strings.TrimSpace(text)

	for _, cmd := range CancelCommands {
		if trimmed == cmd {
			return Result{Cancelled: true, Replies: []line.Message{CancelAck()}}
		}
	}

	switch s.Step {
	case session.StepCategory:
		cat, ok := matchCategory(trimmed)
		if !ok {
			return Result{Replies: []line.Message{ErrCategory()}}
		}
		s.Fields[session.StepCategory] = cat
		s.Step = session.StepTreatment
		return Result{Replies: []line.Message{PromptTreatment(cat)}}

	case session.StepTreatment:
		if trimmed == "" {
			return Result{Replies: []line.Message{PromptTreatment(s.Fields[session.StepCategory])}}
		}
		s.Fields[session.StepTreatment] = trimmed
		s.Step = session.StepName
		return Result{Replies: []line.Message{PromptName()}}

	case session.StepName:
		if utf8.RuneCountInString(trimmed) < 2 {
			return Result{Replies: []line.Message{ErrName()}}
		}
		s.Fields[session.StepName] = trimmed
		s.Step = session.StepPhone
		return Result{Replies: []line.Message{PromptPhone()}}

	case session.StepPhone:
		phone, ok := normalizePhone(trimmed)
		if !ok {
			return Result{Replies: []line.Message{ErrPhone()}}
		}
		s.Fields[session.StepPhone] = phone
		s.Step = session.StepDate
		return Result{Replies: []line.Message{PromptDate()}}

	case session.StepDate:
		if !f.validDate(trimmed) {
			return Result{Replies: []line.Message{ErrDate()}}
		}
		s.Fields[session.StepDate] = trimmed
		s.Step = session.StepTime
		return Result{Replies: []line.Message{PromptTime()}}

	case session.StepTime:
		slot, ok := matchSlot(trimmed)
		if !ok {
			return Result{Replies: []line.Message{ErrTime()}}
		}
		s.Fields[session.StepTime] = slot
		s.Step = session.StepNotes
		return Result{Replies: []line.Message{PromptNotes()}}

	case session.StepNotes:
		if !isSkipMarker(trimmed) && trimmed != "" {
			s.Fields[session.StepNotes] = trimmed
		}
		return Result{Done: true}
	}

	// Unknown step means a corrupted session; abort it rather than loop.
	return Result{Cancelled: true, Replies: []line.Message{CancelAck()}}
}

// Assemble maps a completed session's fields onto a Booking ready for insert.
func Assemble(s *session.Session) Booking {
	return Booking{
		UserID:            s.UserID,
		CustomerName:      s.Fields[session.StepName],
		CustomerPhone:     s.Fields[session.StepPhone],
		TreatmentCategory: s.Fields[session.StepCategory],
		TreatmentName:     s.Fields[session.StepTreatment],
		PreferredDate:     s.Fields[session.StepDate],
		PreferredTime:     s.Fields[session.StepTime],
		Notes:             s.Fields[session.StepNotes],
		Status:            StatusPending,
	}
}

func matchCategory(text string) (string, bool) {
	for _, c := range Categories {
		for _, alias := range c.Aliases {
			if strings.Contains(text, alias) {
				return c.Name, true
			}
		}
	}
	return "", false
}

func matchSlot(text string) (string, bool) {
	for _, slot := range TimeSlots {
		if strings.Contains(text, slot) {
			return slot, true
		}
	}
	return "", false
}

func normalizePhone(text string) (string, bool) {
	stripped := strings.NewReplacer("-", "", " ", "").Replace(text)
	if !phoneRe.MatchString(stripped) {
		return "", false
	}
	return stripped, true
}

// validDate accepts strict YYYY-MM-DD dates that are not in the past. The
// fixed format makes the not-before-today check a lexical comparison.
func (f *Flow) validDate(text string) bool {
	if !dateRe.MatchString(text) {
		return false
	}
	if _, err := time.Parse("2006-01-02", text); err != nil {
		return false
	}
	return text >= f.now().Format("2006-01-02")
}

// isSkipMarker matches the literal marker strings only; "NONE" is a note.
func isSkipMarker(text string) bool {
	for _, m := range NotesSkipMarkers {
		if text == m {
			return true
		}
	}
	return false
}
