package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/pravah-api/internal/models"
)

// arena is an insertion ordered collection with an id index. Reads copy out under the read lock.
type arena[T any] struct {
	mu    sync.RWMutex
	items []T
	index map[string]int
	key   func(T) string
	clone func(T) T
}

func newArena[T any](key func(T) string, clone func(T) T) *arena[T] {
	return &arena[T]{index: make(map[string]int), key: key, clone: clone}
}

func (a *arena[T]) insert(item T) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.key(item)
	if _, ok := a.index[id]; ok {
		return ErrDuplicate
	}
	a.index[id] = len(a.items)
	a.items = append(a.items, a.clone(item))
	return nil
}

// upsert replaces an existing item in place, keeping its position, or appends a new one.
func (a *arena[T]) upsert(item T, onReplace func(prev T, next *T)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.key(item)
	next := a.clone(item)
	if pos, ok := a.index[id]; ok {
		if onReplace != nil {
			onReplace(a.items[pos], &next)
		}
		a.items[pos] = next
		return
	}
	a.index[id] = len(a.items)
	a.items = append(a.items, next)
}

func (a *arena[T]) update(id string, mutate func(*T)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos, ok := a.index[id]
	if !ok {
		return false
	}
	mutate(&a.items[pos])
	return true
}

func (a *arena[T]) get(id string) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pos, ok := a.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return a.clone(a.items[pos]), true
}

func (a *arena[T]) filter(match func(T) bool) []T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]T, 0, len(a.items))
	for _, item := range a.items {
		if match == nil || match(item) {
			result = append(result, a.clone(item))
		}
	}
	return result
}

func (a *arena[T]) remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos, ok := a.index[id]
	if !ok {
		return false
	}
	a.items = append(a.items[:pos], a.items[pos+1:]...)
	delete(a.index, id)
	for i := pos; i < len(a.items); i++ {
		a.index[a.key(a.items[i])] = i
	}
	return true
}

func matchCenter(centerID, candidate string) bool {
	return centerID == "" || centerID == candidate
}

// MemoryStore bundles the in-process record collections.
type MemoryStore struct {
	Students   *MemoryStudentRepository
	Attendance *MemoryAttendanceRepository
	Diary      *MemoryDiaryRepository
	Feedback   *MemoryFeedbackRepository
	Volunteers *MemoryVolunteerRepository
}

// NewMemoryStore constructs empty collections.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Students:   NewMemoryStudentRepository(),
		Attendance: NewMemoryAttendanceRepository(),
		Diary:      NewMemoryDiaryRepository(),
		Feedback:   NewMemoryFeedbackRepository(),
		Volunteers: NewMemoryVolunteerRepository(),
	}
}

// MemoryStudentRepository keeps students in admission order.
type MemoryStudentRepository struct {
	students *arena[models.Student]
}

// NewMemoryStudentRepository constructs an empty student collection.
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{students: newArena(
		func(s models.Student) string { return s.ID },
		func(s models.Student) models.Student {
			if s.DOB != nil {
				dob := *s.DOB
				s.DOB = &dob
			}
			return s
		},
	)}
}

// Upsert overwrites the student with the same id or appends a new one.
func (r *MemoryStudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.students.upsert(*student, func(prev models.Student, next *models.Student) {
		next.CreatedAt = prev.CreatedAt
		next.CreatedBy = prev.CreatedBy
		if next.AdmissionFormFile == "" {
			next.AdmissionFormFile = prev.AdmissionFormFile
		}
	})
	return nil
}

// FindByID returns a student by id.
func (r *MemoryStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	student, ok := r.students.get(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &student, nil
}

// FindByCenter lists students of a center, or of every center when centerID is empty.
func (r *MemoryStudentRepository) FindByCenter(ctx context.Context, centerID string) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.students.filter(func(s models.Student) bool { return matchCenter(centerID, s.CenterID) }), nil
}

// Delete removes a student and reports whether it existed.
func (r *MemoryStudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.students.remove(id), nil
}

// MemoryAttendanceRepository keeps attendance records in submission order.
type MemoryAttendanceRepository struct {
	records *arena[models.AttendanceRecord]
}

// NewMemoryAttendanceRepository constructs an empty attendance collection.
func NewMemoryAttendanceRepository() *MemoryAttendanceRepository {
	return &MemoryAttendanceRepository{records: newArena(
		func(r models.AttendanceRecord) string { return r.ID },
		func(r models.AttendanceRecord) models.AttendanceRecord {
			r.PresentStudentIDs = append([]string(nil), r.PresentStudentIDs...)
			return r
		},
	)}
}

// Insert appends an attendance record.
func (r *MemoryAttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.records.insert(*record)
}

// FindByID returns an attendance record by id.
func (r *MemoryAttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, ok := r.records.get(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

// FindByCenter lists attendance records of a center, or all when centerID is empty.
func (r *MemoryAttendanceRepository) FindByCenter(ctx context.Context, centerID string) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.records.filter(func(rec models.AttendanceRecord) bool { return matchCenter(centerID, rec.CenterID) }), nil
}

// Delete removes an attendance record and reports whether it existed.
func (r *MemoryAttendanceRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.records.remove(id), nil
}

// MemoryDiaryRepository keeps diary entries in submission order.
type MemoryDiaryRepository struct {
	entries *arena[models.DiaryEntry]
}

// NewMemoryDiaryRepository constructs an empty diary collection.
func NewMemoryDiaryRepository() *MemoryDiaryRepository {
	return &MemoryDiaryRepository{entries: newArena(
		func(e models.DiaryEntry) string { return e.ID },
		func(e models.DiaryEntry) models.DiaryEntry {
			e.Volunteers = append([]models.DiaryVolunteerEntry(nil), e.Volunteers...)
			return e
		},
	)}
}

// Insert appends a diary entry.
func (r *MemoryDiaryRepository) Insert(ctx context.Context, entry *models.DiaryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.entries.insert(*entry)
}

// FindByID returns a diary entry by id.
func (r *MemoryDiaryRepository) FindByID(ctx context.Context, id string) (*models.DiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := r.entries.get(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &entry, nil
}

// FindByCenter lists diary entries of a center, or all when centerID is empty.
func (r *MemoryDiaryRepository) FindByCenter(ctx context.Context, centerID string) ([]models.DiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.entries.filter(func(e models.DiaryEntry) bool { return matchCenter(centerID, e.CenterID) }), nil
}

// Delete removes a diary entry and reports whether it existed.
func (r *MemoryDiaryRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.entries.remove(id), nil
}

// MemoryFeedbackRepository is an append-only feedback log.
type MemoryFeedbackRepository struct {
	entries *arena[models.FeedbackEntry]
}

// NewMemoryFeedbackRepository constructs an empty feedback log.
func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{entries: newArena(
		func(e models.FeedbackEntry) string { return e.ID },
		func(e models.FeedbackEntry) models.FeedbackEntry { return e },
	)}
}

// Insert appends a feedback entry.
func (r *MemoryFeedbackRepository) Insert(ctx context.Context, entry *models.FeedbackEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.entries.insert(*entry)
}

// FindByCenter lists feedback of a center, or all when centerID is empty.
func (r *MemoryFeedbackRepository) FindByCenter(ctx context.Context, centerID string) ([]models.FeedbackEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.entries.filter(func(e models.FeedbackEntry) bool { return matchCenter(centerID, e.CenterID) }), nil
}

// MemoryVolunteerRepository stores volunteer accounts.
type MemoryVolunteerRepository struct {
	volunteers *arena[models.Volunteer]
}

// NewMemoryVolunteerRepository constructs an empty account collection.
func NewMemoryVolunteerRepository() *MemoryVolunteerRepository {
	return &MemoryVolunteerRepository{volunteers: newArena(
		func(v models.Volunteer) string { return v.VolunteerID },
		func(v models.Volunteer) models.Volunteer { return v },
	)}
}

// Create registers a volunteer; an existing id yields ErrDuplicate.
func (r *MemoryVolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if volunteer.CreatedAt.IsZero() {
		volunteer.CreatedAt = now
	}
	volunteer.UpdatedAt = now
	return r.volunteers.insert(*volunteer)
}

// FindByID returns a volunteer account.
func (r *MemoryVolunteerRepository) FindByID(ctx context.Context, id string) (*models.Volunteer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	volunteer, ok := r.volunteers.get(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &volunteer, nil
}

// Update stores the mutable name and password hash.
func (r *MemoryVolunteerRepository) Update(ctx context.Context, volunteer *models.Volunteer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	volunteer.UpdatedAt = time.Now().UTC()
	updated := r.volunteers.update(volunteer.VolunteerID, func(v *models.Volunteer) {
		v.Name = volunteer.Name
		v.PasswordHash = volunteer.PasswordHash
		v.UpdatedAt = volunteer.UpdatedAt
	})
	if !updated {
		return ErrRecordNotFound
	}
	return nil
}
