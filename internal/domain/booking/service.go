package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetbook/vetbook/internal/domain/directory"
	"github.com/vetbook/vetbook/internal/domain/identity"
	"github.com/vetbook/vetbook/internal/platform/cache"
	"github.com/vetbook/vetbook/internal/platform/notification"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrPastDate         = errors.New("cannot book a past date")
	ErrInvalidSlot      = errors.New("time slot is not in the doctor's schedule")
	ErrDuplicateBooking = errors.New("you already have this slot booked")
	ErrNotOwner         = errors.New("appointment belongs to another user")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
)

// scheduleCacheTTL bounds staleness for anonymous viewers; writes invalidate
// eagerly so the TTL only matters across instances without shared Redis.
const scheduleCacheTTL = time.Minute

type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

type Service struct {
	repo      Repository
	users     UserDirectory
	doctors   DoctorDirectory
	cache     cache.Cache
	email     notification.EmailSender
	templates *notification.TemplateEngine
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, users UserDirectory, doctors DoctorDirectory,
	c cache.Cache, email notification.EmailSender, templates *notification.TemplateEngine,
	logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		doctors:   doctors,
		cache:     c,
		email:     email,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateInput struct {
	UserID   uuid.UUID
	DoctorID uuid.UUID
	Date     string
	TimeSlot string
}

// CreateAppointment books a slot. The availability pre-checks give friendly
// errors; the unique index behind Repository.Create decides races.
func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (*Appointment, error) {
	user, err := s.users.GetUser(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	doctor, err := s.doctors.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	now := s.now()
	day, err := time.ParseInLocation(dateLayout, in.Date, now.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return nil, ErrPastDate
	}

	if !slotInTemplate(doctor, in.TimeSlot) {
		return nil, ErrInvalidSlot
	}

	if dup, err := s.repo.ExistsConfirmedForUser(ctx, in.UserID, in.DoctorID, in.Date, in.TimeSlot); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrDuplicateBooking
	}
	if taken, err := s.repo.ExistsConfirmed(ctx, in.DoctorID, in.Date, in.TimeSlot); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrSlotTaken
	}

	appt := &Appointment{
		UserID:   in.UserID,
		DoctorID: in.DoctorID,
		Date:     in.Date,
		TimeSlot: in.TimeSlot,
		Status:   StatusConfirmed,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	appt.Doctor = doctor

	s.invalidateSchedule(ctx, in.DoctorID)
	s.notify(ctx, user, doctor, appt, "appointment-confirmed")

	s.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", in.DoctorID.String()).
		Str("date", in.Date).
		Str("time_slot", in.TimeSlot).
		Msg("appointment booked")
	return appt, nil
}

// CancelAppointment flips the appointment to CANCELLED, freeing the slot.
func (s *Service) CancelAppointment(ctx context.Context, userID, apptID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, ErrNotOwner
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	appt.Status = StatusCancelled
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.invalidateSchedule(ctx, appt.DoctorID)

	if user, err := s.users.GetUser(ctx, userID); err == nil {
		if doctor, err := s.doctors.GetDoctor(ctx, appt.DoctorID); err == nil {
			appt.Doctor = doctor
			s.notify(ctx, user, doctor, appt, "appointment-cancelled")
		}
	}

	s.logger.Info().
		Str("appointment_id", apptID.String()).
		Str("doctor_id", appt.DoctorID.String()).
		Msg("appointment cancelled")
	return appt, nil
}

func (s *Service) GetUserAppointments(ctx context.Context, userID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetDoctorAppointments lists confirmed appointments between from and to,
// both inclusive. Empty bounds default to the schedule horizon starting this
// week.
func (s *Service) GetDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*Appointment, error) {
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	start := mondayOf(s.now())
	if from == "" {
		from = start.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, from); err != nil {
		return nil, ErrInvalidDate
	}
	if to == "" {
		to = start.AddDate(0, 0, MaxScheduleWeeks*7).Format(dateLayout)
	} else {
		end, err := time.Parse(dateLayout, to)
		if err != nil {
			return nil, ErrInvalidDate
		}
		// repo bound is exclusive; shift the caller's inclusive end date
		to = end.AddDate(0, 0, 1).Format(dateLayout)
	}
	return s.repo.ListByDoctorRange(ctx, doctorID, from, to)
}

// GetDoctorSchedule builds the booking grid for a doctor. viewerID may be
// uuid.Nil for anonymous callers.
func (s *Service) GetDoctorSchedule(ctx context.Context, doctorID, viewerID uuid.UUID, weeks int) (*Schedule, error) {
	doctor, err := s.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	appts, err := s.horizonAppointments(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return BuildSchedule(doctor, appts, viewerID, s.now(), weeks), nil
}

// horizonAppointments loads the doctor's confirmed appointments for the full
// schedule horizon, serving from cache when possible. The cache holds raw
// appointments rather than a rendered grid so per-viewer flags stay correct.
func (s *Service) horizonAppointments(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	key := scheduleKey(doctorID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var appts []*Appointment
		if err := json.Unmarshal(raw, &appts); err == nil {
			return appts, nil
		}
	}

	start := mondayOf(s.now())
	from := start.Format(dateLayout)
	to := start.AddDate(0, 0, MaxScheduleWeeks*7).Format(dateLayout)
	appts, err := s.repo.ListByDoctorRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(appts); err == nil {
		if err := s.cache.Set(ctx, key, raw, scheduleCacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("schedule cache write failed")
		}
	}
	return appts, nil
}

func (s *Service) invalidateSchedule(ctx context.Context, doctorID uuid.UUID) {
	if err := s.cache.Delete(ctx, scheduleKey(doctorID)); err != nil {
		s.logger.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("schedule cache invalidation failed")
	}
}

func scheduleKey(doctorID uuid.UUID) string {
	return "schedule:" + doctorID.String()
}

// notify sends a booking email on a best-effort basis. Users without an email
// address are skipped, failures logged and swallowed.
func (s *Service) notify(ctx context.Context, user *identity.User, doctor *directory.Doctor, appt *Appointment, templateID string) {
	if user.Email == nil || *user.Email == "" {
		return
	}
	clinicName := ""
	if doctor.Clinic != nil {
		clinicName = doctor.Clinic.Name
	}
	subject, body, err := s.templates.Render(templateID, map[string]string{
		"doctor_name": doctor.Name,
		"clinic_name": clinicName,
		"date":        appt.Date,
		"time_slot":   appt.TimeSlot,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("template", templateID).Msg("notification template render failed")
		return
	}
	if err := s.email.SendEmail(ctx, *user.Email, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("template", templateID).Msg("booking email failed")
	}
}

func slotInTemplate(doctor *directory.Doctor, slot string) bool {
	if !directory.ValidTimeSlot(slot) {
		return false
	}
	for _, t := range doctor.SlotTimes() {
		if t == slot {
			return true
		}
	}
	return false
}
