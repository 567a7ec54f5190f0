package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/config"
	"github.com/voicedesk/voicedesk/internal/convlog"
	"github.com/voicedesk/voicedesk/internal/dialog"
)

// fixed clock: Monday 2026-01-26 noon
var testNow = time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)

type env struct {
	router *dialog.Router
	repo   *booking.Repo
	logs   *convlog.Repo
	queue  *capturingQueue
}

type capturingQueue struct {
	published []string
	err       error
}

func (q *capturingQueue) PublishLog(ctx context.Context, logID string) error {
	_ = ctx
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, logID)
	return nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&booking.Appointment{}, &booking.SlotClaim{}, &convlog.Record{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	e := &env{
		repo:  booking.NewRepo(db),
		logs:  convlog.NewRepo(db),
		queue: &capturingQueue{},
	}
	e.router = dialog.NewRouter(dialog.NewMachine(config.ReentryIdentified))
	RegisterAll(e.router, Deps{
		Store: e.repo,
		Logs:  e.logs,
		Queue: e.queue,
		Grid:  booking.NewGrid(9, 17, 14),
		Now:   func() time.Time { return testNow },
	})
	return e
}

func (e *env) dispatch(t *testing.T, sess *dialog.Session, action string, args dialog.Args) *dialog.Result {
	t.Helper()
	res, err := e.router.Dispatch(context.Background(), sess, dialog.Intent{Action: action, Args: args})
	if err != nil {
		t.Fatalf("dispatch %s: %v", action, err)
	}
	return res
}

func payload(t *testing.T, res *dialog.Result) map[string]any {
	t.Helper()
	p, ok := res.Payload.(map[string]any)
	if !ok {
		t.Fatalf("result payload is not a map: %+v", res.Payload)
	}
	return p
}

func (e *env) identifiedSession(t *testing.T, phone string) *dialog.Session {
	t.Helper()
	sess := dialog.NewSession()
	res := e.dispatch(t, sess, "identify_user", dialog.Args{"phone": phone})
	if !res.Success {
		t.Fatalf("identify failed: %+v", res)
	}
	return sess
}

// Walks the happy path of a booking call end to end, including the rejection
// of a booking attempt before identification and a competing caller losing
// the race for the same slot.
func TestConversation_BookingScenario(t *testing.T) {
	e := newEnv(t)
	sess := dialog.NewSession()

	// booking before identification is a state violation
	res := e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if res.Success || res.Kind != dialog.KindInvalidStateTransition {
		t.Fatalf("expected invalid_state_transition, got %+v", res)
	}

	res = e.dispatch(t, sess, "identify_user", dialog.Args{"phone": "555-010-0100", "name": "Ann"})
	if !res.Success {
		t.Fatalf("identify: %+v", res)
	}
	if sess.Phone != "5550100100" || sess.State != dialog.StateIdentified {
		t.Fatalf("identify did not normalize and commit (phone=%s state=%s)", sess.Phone, sess.State)
	}

	// seed a competing booking, then verify fetch_slots hides it
	seeded := &booking.Appointment{Phone: "5550109999", Date: "2026-01-28", Time: "10:00"}
	if err := e.repo.Book(context.Background(), seeded); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	res = e.dispatch(t, sess, "fetch_slots", dialog.Args{"date": "2026-01-28"})
	if !res.Success {
		t.Fatalf("fetch_slots: %+v", res)
	}
	slots := payload(t, res)["slots"].([]booking.Slot)
	for _, s := range slots {
		if s.Time == "10:00" {
			t.Fatalf("fetch_slots offered a claimed slot: %+v", s)
		}
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 free slots on 2026-01-28, got %d", len(slots))
	}
	if sess.State != dialog.StateBrowsingSlots {
		t.Fatalf("expected browsing_slots, got %s", sess.State)
	}

	res = e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if !res.Success {
		t.Fatalf("book: %+v", res)
	}
	if payload(t, res)["confirmation_id"] == "" {
		t.Fatalf("no confirmation id in payload")
	}
	if sess.State != dialog.StateCompleted || sess.PendingAppointment == nil {
		t.Fatalf("book did not settle the session (state=%s)", sess.State)
	}

	// a second caller loses the race for the now-claimed slot
	other := e.identifiedSession(t, "5550100200")
	res = e.dispatch(t, other, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if res.Success || res.Kind != dialog.KindSlotTaken {
		t.Fatalf("expected slot_taken for competing booking, got %+v", res)
	}
	if other.State != dialog.StateIdentified {
		t.Fatalf("failed booking moved the session to %s", other.State)
	}
}

func TestIdentify_RejectsMalformedPhone(t *testing.T) {
	e := newEnv(t)

	for _, phone := range []string{"", "555-0100", "abc", "123456789"} {
		sess := dialog.NewSession()
		res := e.dispatch(t, sess, "identify_user", dialog.Args{"phone": phone})
		if res.Success || res.Kind != dialog.KindArgumentValidation {
			t.Errorf("phone %q: expected argument_validation, got %+v", phone, res)
		}
		if sess.State != dialog.StateUnidentified {
			t.Errorf("phone %q: failed identify changed state to %s", phone, sess.State)
		}
	}
}

func TestBook_RejectsInvalidSlots(t *testing.T) {
	e := newEnv(t)
	sess := e.identifiedSession(t, "5550100100")

	cases := []struct {
		name string
		args dialog.Args
	}{
		{"bad date format", dialog.Args{"date": "28/01/2026", "time": "09:00"}},
		{"bad time format", dialog.Args{"date": "2026-01-28", "time": "9am"}},
		{"past date", dialog.Args{"date": "2025-12-01", "time": "09:00"}},
		{"weekend", dialog.Args{"date": "2026-01-31", "time": "09:00"}},
		{"before opening", dialog.Args{"date": "2026-01-28", "time": "08:00"}},
		{"at closing", dialog.Args{"date": "2026-01-28", "time": "17:00"}},
		{"off the hour", dialog.Args{"date": "2026-01-28", "time": "09:30"}},
	}
	for _, tc := range cases {
		res := e.dispatch(t, sess, "book_appointment", tc.args)
		if res.Success || res.Kind != dialog.KindArgumentValidation {
			t.Errorf("%s: expected argument_validation, got %+v", tc.name, res)
		}
	}
	if sess.State != dialog.StateIdentified {
		t.Fatalf("rejected bookings changed state to %s", sess.State)
	}
}

func TestCancel_OwnershipAndLifecycleKinds(t *testing.T) {
	e := newEnv(t)
	owner := e.identifiedSession(t, "5550100100")
	stranger := e.identifiedSession(t, "5550100200")

	res := e.dispatch(t, owner, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if !res.Success {
		t.Fatalf("book: %+v", res)
	}
	id := payload(t, res)["confirmation_id"].(string)

	res = e.dispatch(t, stranger, "cancel_appointment", dialog.Args{"appointment_id": id})
	if res.Success || res.Kind != dialog.KindOwnershipError {
		t.Fatalf("expected ownership_error, got %+v", res)
	}

	res = e.dispatch(t, owner, "cancel_appointment", dialog.Args{"appointment_id": id})
	if !res.Success {
		t.Fatalf("cancel: %+v", res)
	}

	res = e.dispatch(t, owner, "cancel_appointment", dialog.Args{"appointment_id": id})
	if res.Success || res.Kind != dialog.KindAlreadyCancelled {
		t.Fatalf("expected already_cancelled, got %+v", res)
	}

	res = e.dispatch(t, owner, "cancel_appointment", dialog.Args{"appointment_id": "01MISSING0000000000000000X"})
	if res.Success || res.Kind != dialog.KindNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
}

func TestModify_ConflictKeepsOriginal(t *testing.T) {
	e := newEnv(t)
	sess := e.identifiedSession(t, "5550100100")

	res := e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if !res.Success {
		t.Fatalf("book: %+v", res)
	}
	id := payload(t, res)["confirmation_id"].(string)

	blocker := &booking.Appointment{Phone: "5550109999", Date: "2026-01-28", Time: "10:00"}
	if err := e.repo.Book(context.Background(), blocker); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	res = e.dispatch(t, sess, "modify_appointment", dialog.Args{"appointment_id": id, "new_time": "10:00"})
	if res.Success || res.Kind != dialog.KindSlotTaken {
		t.Fatalf("expected slot_taken, got %+v", res)
	}

	got, err := e.repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "2026-01-28" || got.Time != "09:00" || got.Status != booking.StatusBooked {
		t.Fatalf("original booking disturbed by failed modify: %+v", got)
	}
}

func TestModify_PartialArguments(t *testing.T) {
	e := newEnv(t)
	sess := e.identifiedSession(t, "5550100100")

	res := e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if !res.Success {
		t.Fatalf("book: %+v", res)
	}
	id := payload(t, res)["confirmation_id"].(string)

	// neither new_date nor new_time
	res = e.dispatch(t, sess, "modify_appointment", dialog.Args{"appointment_id": id})
	if res.Success || res.Kind != dialog.KindArgumentValidation {
		t.Fatalf("expected argument_validation, got %+v", res)
	}

	// time only keeps the current date
	res = e.dispatch(t, sess, "modify_appointment", dialog.Args{"appointment_id": id, "new_time": "11:00"})
	if !res.Success {
		t.Fatalf("modify: %+v", res)
	}
	got := payload(t, res)["appointment"].(*booking.Appointment)
	if got.Date != "2026-01-28" || got.Time != "11:00" {
		t.Fatalf("partial modify mismatch: %+v", got)
	}
}

func TestRetrieve_ListsOwnBookingsOnly(t *testing.T) {
	e := newEnv(t)
	sess := e.identifiedSession(t, "5550100100")

	e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-29", "time": "10:00"})
	e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})

	other := &booking.Appointment{Phone: "5550109999", Date: "2026-01-28", Time: "11:00"}
	if err := e.repo.Book(context.Background(), other); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res := e.dispatch(t, sess, "retrieve_appointments", nil)
	if !res.Success {
		t.Fatalf("retrieve: %+v", res)
	}
	appts := payload(t, res)["appointments"].([]booking.Appointment)
	if len(appts) != 2 {
		t.Fatalf("expected 2 owned bookings, got %d", len(appts))
	}
	if appts[0].Date != "2026-01-28" || appts[1].Date != "2026-01-29" {
		t.Fatalf("bookings out of order: %+v", appts)
	}
}

func TestEnd_WritesLogAndEnqueues(t *testing.T) {
	e := newEnv(t)
	sess := e.identifiedSession(t, "5550100100")

	e.dispatch(t, sess, "fetch_slots", nil)
	booked := e.dispatch(t, sess, "book_appointment", dialog.Args{"date": "2026-01-28", "time": "09:00"})
	if !booked.Success {
		t.Fatalf("book: %+v", booked)
	}
	res := e.dispatch(t, sess, "end_conversation", nil)
	if !res.Success {
		t.Fatalf("end: %+v", res)
	}
	if !sess.Ended || sess.State != dialog.StateCompleted {
		t.Fatalf("end did not finalize session")
	}

	logID := payload(t, res)["log_id"].(string)
	rec, err := e.logs.GetByID(context.Background(), logID)
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	if rec.SessionID != sess.ID || rec.Phone != "5550100100" {
		t.Fatalf("log record mismatch: %+v", rec)
	}
	if rec.Status != convlog.SummaryPending {
		t.Fatalf("fresh log must be pending, got %s", rec.Status)
	}
	if rec.PendingAppointmentID != payload(t, booked)["confirmation_id"].(string) {
		t.Fatalf("pending appointment not recorded: %q", rec.PendingAppointmentID)
	}
	calls, err := rec.Calls()
	if err != nil {
		t.Fatalf("decode calls: %v", err)
	}
	// identify + fetch + book committed before end_conversation itself ran
	if len(calls) != 3 || calls[0].Action != "identify_user" || calls[2].Action != "book_appointment" {
		t.Fatalf("tool call trace mismatch: %+v", calls)
	}

	if len(e.queue.published) != 1 || e.queue.published[0] != logID {
		t.Fatalf("log not enqueued for summarization: %+v", e.queue.published)
	}
}

func TestEnd_QueueFailureLeavesRecordPending(t *testing.T) {
	e := newEnv(t)
	e.queue.err = fmt.Errorf("broker down")
	sess := e.identifiedSession(t, "5550100100")

	res := e.dispatch(t, sess, "end_conversation", nil)
	if !res.Success {
		t.Fatalf("end must succeed despite queue failure: %+v", res)
	}
	rec, err := e.logs.GetBySessionID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	if rec.Status != convlog.SummaryPending {
		t.Fatalf("expected pending record, got %s", rec.Status)
	}
}
