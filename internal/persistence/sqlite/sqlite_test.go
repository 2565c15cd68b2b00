package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	pool, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return pool
}

func testStamp() time.Time {
	return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func seedVenue(t *testing.T, pool *ConnectionPool, id, code string) {
	t.Helper()
	directory := NewDirectoryRepository(pool)
	_, err := directory.CreateVenue(context.Background(), application.Venue{
		ID: id, Code: code, Name: "Room " + code, Capacity: 30,
		CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}
}

func seedExaminer(t *testing.T, pool *ConnectionPool, id, code string) {
	t.Helper()
	directory := NewDirectoryRepository(pool)
	_, err := directory.CreateExaminer(context.Background(), application.Examiner{
		ID: id, Code: code, Name: "Examiner " + code, Email: code + "@example.edu", Department: "Computing",
		CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("failed to seed examiner: %v", err)
	}
}

func seedStudent(t *testing.T, pool *ConnectionPool, id, code string) {
	t.Helper()
	directory := NewDirectoryRepository(pool)
	_, err := directory.CreateStudent(context.Background(), application.Student{
		ID: id, Code: code, Name: "Student " + code, Email: code + "@example.edu", Department: "Computing",
		CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := openTestPool(t)

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("second migrate must be a no-op, got %v", err)
	}
}

func TestSequenceRepository_Next_Monotonic(t *testing.T) {
	pool := openTestPool(t)
	sequences := NewSequenceRepository(pool)

	for want := int64(1); want <= 3; want++ {
		got, err := sequences.Next(context.Background(), "student")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	// Independent counters do not share values.
	got, err := sequences.Next(context.Background(), "venue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh counter to start at 1, got %d", got)
	}
}

func TestDirectoryRepository_CodeLookupsAndDuplicates(t *testing.T) {
	pool := openTestPool(t)
	directory := NewDirectoryRepository(pool)
	seedStudent(t, pool, "student-1", "STSET2025001")

	student, err := directory.GetStudentByCode(context.Background(), "STSET2025001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if student.ID != "student-1" {
		t.Fatalf("unexpected student: %+v", student)
	}

	if _, err := directory.GetStudentByCode(context.Background(), "STSET2099999"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = directory.CreateStudent(context.Background(), application.Student{
		ID: "student-2", Code: "STSET2025001", Name: "Dup", Email: "dup@example.edu", Department: "Computing",
		CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if !errors.Is(err, application.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for reused code, got %v", err)
	}
}

func TestPresentationRepository_RoundTripWithParticipants(t *testing.T) {
	pool := openTestPool(t)
	presentations := NewPresentationRepository(pool)
	seedVenue(t, pool, "venue-1", "VN101")
	seedExaminer(t, pool, "examiner-1", "EXSET2025001")
	seedExaminer(t, pool, "examiner-2", "EXSET2025002")
	seedStudent(t, pool, "student-1", "STSET2025001")

	created, err := presentations.CreatePresentation(context.Background(), application.Presentation{
		ID: "presentation-1", Title: "Final defense", Department: "Computing",
		Date: "2025-03-12", Start: 600, End: 660, DurationMin: 60,
		VenueID: "venue-1", ExaminerIDs: []string{"examiner-1", "examiner-2"}, StudentIDs: []string{"student-1"},
		NumExaminers: 2, CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "presentation-1" {
		t.Fatalf("unexpected presentation: %+v", created)
	}

	loaded, err := presentations.GetPresentation(context.Background(), "presentation-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.ExaminerIDs) != 2 || len(loaded.StudentIDs) != 1 {
		t.Fatalf("expected participants loaded, got %+v", loaded)
	}

	byDate, err := presentations.ListPresentationsByDate(context.Background(), "2025-03-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byDate) != 1 {
		t.Fatalf("expected one presentation on the date, got %d", len(byDate))
	}

	between, err := presentations.ListPresentationsBetween(context.Background(), "2025-03-10", "2025-03-23")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(between) != 1 {
		t.Fatalf("expected one presentation in the range, got %d", len(between))
	}
}

func TestPresentationRepository_UpdateSlot(t *testing.T) {
	pool := openTestPool(t)
	presentations := NewPresentationRepository(pool)
	seedVenue(t, pool, "venue-1", "VN101")
	seedVenue(t, pool, "venue-2", "VN102")
	seedExaminer(t, pool, "examiner-1", "EXSET2025001")
	seedStudent(t, pool, "student-1", "STSET2025001")

	_, err := presentations.CreatePresentation(context.Background(), application.Presentation{
		ID: "presentation-1", Title: "Final defense", Department: "Computing",
		Date: "2025-03-12", Start: 600, End: 660, DurationMin: 60,
		VenueID: "venue-1", ExaminerIDs: []string{"examiner-1"}, StudentIDs: []string{"student-1"},
		NumExaminers: 1, CreatedAt: testStamp(), UpdatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved, err := presentations.UpdatePresentationSlot(context.Background(), "presentation-1", "2025-03-14", 480, 570, "venue-2", testStamp().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Date != "2025-03-14" || moved.Start != 480 || moved.End != 570 || moved.VenueID != "venue-2" {
		t.Fatalf("slot not moved: %+v", moved)
	}
	if moved.DurationMin != 90 {
		t.Fatalf("expected duration recomputed to 90, got %d", moved.DurationMin)
	}

	_, err = presentations.UpdatePresentationSlot(context.Background(), "presentation-missing", "2025-03-14", 480, 570, "venue-2", testStamp())
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimetableRepository_EntriesAndLoadCounts(t *testing.T) {
	pool := openTestPool(t)
	timetables := NewTimetableRepository(pool)
	groups := NewGroupRepository(pool)
	directory := NewDirectoryRepository(pool)
	seedVenue(t, pool, "venue-1", "VN101")
	seedExaminer(t, pool, "examiner-1", "EXSET2025001")

	if _, err := directory.CreateModule(context.Background(), application.Module{
		ID: "module-1", Code: "CS101", Title: "Algorithms", CreatedAt: testStamp(), UpdatedAt: testStamp(),
	}); err != nil {
		t.Fatalf("failed to seed module: %v", err)
	}
	if _, err := groups.CreateGroup(context.Background(), application.StudentGroup{
		ID: "group-1", Code: "GR1001", Department: "Computing", CreatedAt: testStamp(), UpdatedAt: testStamp(),
	}); err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}

	week := []application.TimetableDay{{
		Day: "Mon",
		Lectures: []application.TimetableLecture{
			{Start: 540, End: 600, ModuleID: "module-1", LecturerID: "examiner-1", VenueID: "venue-1"},
			{Start: 600, End: 660, ModuleID: "module-1", LecturerID: "examiner-1", VenueID: "venue-1"},
		},
	}}
	if _, err := timetables.CreateTimetable(context.Background(), application.Timetable{
		ID: "timetable-1", GroupID: "group-1", Week: week, CreatedAt: testStamp(), UpdatedAt: testStamp(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := timetables.ListTimetableEntries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two flattened entries, got %d", len(entries))
	}
	if entries[0].GroupID != "group-1" || entries[0].Day != "Mon" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	counts, err := timetables.CountLecturesForLecturers(context.Background(), []string{"examiner-1", "examiner-x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["examiner-1"] != 2 {
		t.Fatalf("expected lecture count 2, got %d", counts["examiner-1"])
	}
	if _, ok := counts["examiner-x"]; ok {
		t.Fatal("expected absent lecturer to have no entry")
	}

	loaded, err := timetables.GetTimetableByGroup(context.Background(), "group-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Week) != 1 || len(loaded.Week[0].Lectures) != 2 {
		t.Fatalf("unexpected loaded week: %+v", loaded.Week)
	}
}

func TestGroupRepository_AssignStudentsIsAllOrNothing(t *testing.T) {
	pool := openTestPool(t)
	groups := NewGroupRepository(pool)
	seedStudent(t, pool, "student-1", "STSET2025001")
	seedStudent(t, pool, "student-2", "STSET2025002")

	for _, group := range []application.StudentGroup{
		{ID: "group-1", Code: "GR1001", Department: "Computing", CreatedAt: testStamp(), UpdatedAt: testStamp()},
		{ID: "group-2", Code: "GR1002", Department: "Computing", CreatedAt: testStamp(), UpdatedAt: testStamp()},
	} {
		if _, err := groups.CreateGroup(context.Background(), group); err != nil {
			t.Fatalf("failed to seed group: %v", err)
		}
	}

	if err := groups.AssignStudents(context.Background(), "group-1", []string{"student-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// student-1 already belongs to group-1, so the whole assignment fails
	// and student-2 stays ungrouped.
	err := groups.AssignStudents(context.Background(), "group-2", []string{"student-2", "student-1"})
	if !errors.Is(err, application.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	group2, err := groups.GetGroup(context.Background(), "group-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(group2.StudentIDs) != 0 {
		t.Fatalf("expected rollback to leave group-2 empty, got %v", group2.StudentIDs)
	}
}

func TestRescheduleRepository_LifecycleAndPurge(t *testing.T) {
	pool := openTestPool(t)
	requests := NewRescheduleRepository(pool)
	presentations := NewPresentationRepository(pool)
	seedVenue(t, pool, "venue-1", "VN101")
	seedExaminer(t, pool, "examiner-1", "EXSET2025001")
	seedStudent(t, pool, "student-1", "STSET2025001")

	if _, err := presentations.CreatePresentation(context.Background(), application.Presentation{
		ID: "presentation-1", Title: "Final defense", Department: "Computing",
		Date: "2025-03-12", Start: 600, End: 660, DurationMin: 60,
		VenueID: "venue-1", ExaminerIDs: []string{"examiner-1"}, StudentIDs: []string{"student-1"},
		NumExaminers: 1, CreatedAt: testStamp(), UpdatedAt: testStamp(),
	}); err != nil {
		t.Fatalf("failed to seed presentation: %v", err)
	}

	created, err := requests.CreateRequest(context.Background(), application.RescheduleRequest{
		ID: "request-1", PresentationID: "presentation-1",
		RequestedByID: "user-1", RequestedRole: application.RoleStudent, RequestorEmail: "asha@example.edu",
		Date: "2025-03-14", Start: 480, End: 540, VenueID: "venue-1",
		Reason: "clash with exam", Status: application.ReschedulePending, CreatedAt: testStamp(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.DecidedAt != nil {
		t.Fatal("expected new request to have no decision time")
	}

	pending, err := requests.ListRequestsByStatus(context.Background(), application.ReschedulePending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending request, got %d", len(pending))
	}

	decidedAt := testStamp().Add(time.Hour)
	decided, err := requests.UpdateRequestStatus(context.Background(), "request-1", application.RescheduleRejected, decidedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != application.RescheduleRejected || decided.DecidedAt == nil {
		t.Fatalf("unexpected decided request: %+v", decided)
	}

	deleted, err := requests.DeleteRejectedBefore(context.Background(), decidedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one purged request, got %d", deleted)
	}
}

func TestUserAndSessionRepositories_RoundTrip(t *testing.T) {
	pool := openTestPool(t)
	users := NewUserRepository(pool)
	sessions := NewSessionRepository(pool)

	if _, err := users.CreateUser(context.Background(), application.UserCredentials{
		User: application.User{
			ID: "user-1", Email: "Coordinator@Example.edu", DisplayName: "Coordinator",
			Role: application.RoleAdmin, IsAdmin: true,
			CreatedAt: testStamp(), UpdatedAt: testStamp(),
		},
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Email lookups are case-insensitive by normalization.
	creds, err := users.GetUserCredentialsByEmail(context.Background(), "coordinator@example.edu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !creds.User.IsAdmin || creds.User.Role != application.RoleAdmin {
		t.Fatalf("unexpected user: %+v", creds.User)
	}

	session := application.Session{
		ID: "session-1", UserID: "user-1", Token: "token-1",
		ExpiresAt: testStamp().Add(time.Hour), CreatedAt: testStamp(),
	}
	if _, err := sessions.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	revoked, err := sessions.RevokeSession(context.Background(), "token-1", testStamp().Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("expected RevokedAt to be set")
	}

	if err := sessions.DeleteExpiredSessions(context.Background(), testStamp().Add(2*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sessions.GetSession(context.Background(), "token-1"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected session to be pruned, got %v", err)
	}
}
