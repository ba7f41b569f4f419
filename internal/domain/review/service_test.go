package review

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	rows []*Review
}

func (m *mockRepo) Create(_ context.Context, rv *Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	rv.CreatedAt = time.Now()
	cp := *rv
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	var all []*Review
	for _, rv := range m.rows {
		if rv.DoctorID == doctorID {
			all = append(all, rv)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

type mockDirectory struct {
	known map[uuid.UUID]bool
	err   error
}

func (m *mockDirectory) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.known[id], nil
}

func newTestService(doctorIDs ...uuid.UUID) (*Service, *mockRepo) {
	repo := &mockRepo{}
	known := make(map[uuid.UUID]bool)
	for _, id := range doctorIDs {
		known[id] = true
	}
	svc := NewService(repo, &mockDirectory{known: known}, zerolog.Nop())
	return svc, repo
}

func TestCreateReview(t *testing.T) {
	doctorID := uuid.New()
	svc, repo := newTestService(doctorID)

	rv, err := svc.CreateReview(context.Background(), CreateInput{
		DoctorID: doctorID,
		UserID:   uuid.New(),
		Rating:   4,
		Comment:  "  very thorough  ",
	})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rv.ID == uuid.Nil {
		t.Error("expected review id to be assigned")
	}
	if rv.Comment != "very thorough" {
		t.Errorf("expected trimmed comment, got %q", rv.Comment)
	}
	if len(repo.rows) != 1 {
		t.Errorf("expected 1 stored review, got %d", len(repo.rows))
	}
}

func TestCreateReviewRatingBounds(t *testing.T) {
	doctorID := uuid.New()
	svc, _ := newTestService(doctorID)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.CreateReview(context.Background(), CreateInput{
			DoctorID: doctorID,
			UserID:   uuid.New(),
			Rating:   rating,
		})
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
	for _, rating := range []int{1, 5} {
		if _, err := svc.CreateReview(context.Background(), CreateInput{
			DoctorID: doctorID,
			UserID:   uuid.New(),
			Rating:   rating,
		}); err != nil {
			t.Errorf("rating %d: unexpected error %v", rating, err)
		}
	}
}

func TestCreateReviewUnknownDoctor(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), CreateInput{
		DoctorID: uuid.New(),
		UserID:   uuid.New(),
		Rating:   3,
	})
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestListDoctorReviewsNewestFirst(t *testing.T) {
	doctorID := uuid.New()
	svc, repo := newTestService(doctorID)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		repo.rows = append(repo.rows, &Review{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			UserID:    uuid.New(),
			Rating:    i + 3,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	items, total, err := svc.ListDoctorReviews(context.Background(), doctorID, 20, 0)
	if err != nil {
		t.Fatalf("ListDoctorReviews: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 reviews, got total=%d len=%d", total, len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Error("expected reviews ordered newest first")
		}
	}
}

func TestListDoctorReviewsUnknownDoctor(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.ListDoctorReviews(context.Background(), uuid.New(), 20, 0)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}
