package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type mockClinicRepo struct {
	mu      sync.Mutex
	clinics map[uuid.UUID]*VetClinic
}

func newMockClinicRepo() *mockClinicRepo {
	return &mockClinicRepo{clinics: make(map[uuid.UUID]*VetClinic)}
}

func (m *mockClinicRepo) Create(_ context.Context, c *VetClinic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *mockClinicRepo) GetByID(_ context.Context, id uuid.UUID) (*VetClinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clinics[id]
	if !ok {
		return nil, ErrClinicNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClinicRepo) List(_ context.Context, limit, offset int) ([]*VetClinic, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*VetClinic
	for _, c := range m.clinics {
		cp := *c
		all = append(all, &cp)
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type mockDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDoctorRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.doctors[id]
	return ok, nil
}

func (m *mockDoctorRepo) matches(d *Doctor, f DoctorFilter) bool {
	if f.ClinicID != uuid.Nil && d.ClinicID != f.ClinicID {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Specialty), q) {
			return false
		}
	}
	return true
}

func (m *mockDoctorRepo) List(_ context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Doctor
	for _, d := range m.doctors {
		if m.matches(d, f) {
			cp := *d
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockDoctorRepo) ListByClinic(_ context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Doctor
	for _, d := range m.doctors {
		if d.ClinicID == clinicID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService() (*Service, *mockClinicRepo, *mockDoctorRepo) {
	clinics := newMockClinicRepo()
	doctors := newMockDoctorRepo()
	return NewService(clinics, doctors), clinics, doctors
}

func seedClinic(t *testing.T, repo *mockClinicRepo) *VetClinic {
	t.Helper()
	c := &VetClinic{Name: "Happy Paws", Address: "1 Main St", City: "Springfield", Phone: "+15550001111"}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestCreateClinic_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateClinic(context.Background(), &VetClinic{Address: "1 Main St"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for missing name, got %v", err)
	}

	err = svc.CreateClinic(context.Background(), &VetClinic{Name: "Happy Paws"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for missing address, got %v", err)
	}
}

func TestCreateDoctor_DefaultsWorkingHours(t *testing.T) {
	svc, clinics, _ := newTestService()
	clinic := seedClinic(t, clinics)

	d := &Doctor{ClinicID: clinic.ID, Name: "Dr. Ivanova", Specialty: "surgery"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.WorkStart != DefaultWorkStart || d.WorkEnd != DefaultWorkEnd || d.SlotMinutes != DefaultSlotMinutes {
		t.Errorf("expected default template, got %s-%s/%d", d.WorkStart, d.WorkEnd, d.SlotMinutes)
	}
}

func TestCreateDoctor_RejectsBadTemplate(t *testing.T) {
	svc, clinics, _ := newTestService()
	clinic := seedClinic(t, clinics)
	ctx := context.Background()

	cases := []struct {
		name string
		d    Doctor
	}{
		{"bad start", Doctor{ClinicID: clinic.ID, Name: "D", WorkStart: "9am", WorkEnd: "18:00", SlotMinutes: 60}},
		{"zero step", Doctor{ClinicID: clinic.ID, Name: "D", WorkStart: "09:00", WorkEnd: "18:00", SlotMinutes: 0}},
		{"end before start", Doctor{ClinicID: clinic.ID, Name: "D", WorkStart: "18:00", WorkEnd: "09:00", SlotMinutes: 60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.d
			if err := svc.CreateDoctor(ctx, &d); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateDoctor_UnknownClinic(t *testing.T) {
	svc, _, _ := newTestService()

	d := &Doctor{ClinicID: uuid.New(), Name: "Dr. Ivanova"}
	if err := svc.CreateDoctor(context.Background(), d); !errors.Is(err, ErrClinicNotFound) {
		t.Errorf("expected ErrClinicNotFound, got %v", err)
	}
}

func TestGetClinic_AttachesDoctors(t *testing.T) {
	svc, clinics, doctors := newTestService()
	clinic := seedClinic(t, clinics)
	_ = doctors.Create(context.Background(), &Doctor{ClinicID: clinic.ID, Name: "Dr. A"})
	_ = doctors.Create(context.Background(), &Doctor{ClinicID: clinic.ID, Name: "Dr. B"})

	got, err := svc.GetClinic(context.Background(), clinic.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Doctors) != 2 {
		t.Errorf("expected 2 attached doctors, got %d", len(got.Doctors))
	}
}

func TestListDoctors_Filter(t *testing.T) {
	svc, clinics, doctors := newTestService()
	clinic := seedClinic(t, clinics)
	_ = doctors.Create(context.Background(), &Doctor{ClinicID: clinic.ID, Name: "Dr. Ivanova", Specialty: "surgery"})
	_ = doctors.Create(context.Background(), &Doctor{ClinicID: clinic.ID, Name: "Dr. Petrov", Specialty: "dermatology"})

	items, total, err := svc.ListDoctors(context.Background(), DoctorFilter{Query: "surg"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "Dr. Ivanova" {
		t.Errorf("unexpected search result: total=%d items=%+v", total, items)
	}
}
