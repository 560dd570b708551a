package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/overview/models"
)

const (
	dateLayout      = "2006-01-02"
	statusScheduled = "Scheduled"
	statusCompleted = "Completed"
	revenueWindow   = 30
	upcomingWindow  = 7
)

type OverviewService struct {
	DB *sql.DB
	// DemoFallback serves DemoStats when the store fails instead of an error.
	DemoFallback bool

	now func() time.Time
}

func NewOverviewService(db *sql.DB, demoFallback bool) *OverviewService {
	return &OverviewService{DB: db, DemoFallback: demoFallback, now: time.Now}
}

// SetClock replaces the time source.
func (s *OverviewService) SetClock(now func() time.Time) { s.now = now }

// Overview assembles the dashboard statistics.
func (s *OverviewService) Overview(ctx context.Context) (*models.Overview, error) {
	now := s.now()
	stats, err := s.collect(ctx, now)
	if err != nil {
		if s.DemoFallback {
			log.Warn().Err(err).Msg("overview: store unavailable, serving demo data")
			return &models.Overview{Stats: DemoStats(), Demo: true, GeneratedAt: now}, nil
		}
		return nil, apperror.Store("Service unavailable", err)
	}
	return &models.Overview{Stats: stats, GeneratedAt: now}, nil
}

// window holds the calendar dates the date-scoped counts use.
type window struct {
	today, weekStart, weekEnd, upcomingEnd, monthStart, revenueStart string
}

func windowFor(now time.Time) window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// ISO week, Monday first
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	return window{
		today:        today.Format(dateLayout),
		weekStart:    monday.Format(dateLayout),
		weekEnd:      monday.AddDate(0, 0, 6).Format(dateLayout),
		upcomingEnd:  today.AddDate(0, 0, upcomingWindow).Format(dateLayout),
		monthStart:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(dateLayout),
		revenueStart: today.AddDate(0, 0, -revenueWindow).Format(dateLayout),
	}
}

func (s *OverviewService) collect(ctx context.Context, now time.Time) (models.Stats, error) {
	var (
		st  models.Stats
		avg sql.NullFloat64
		err error
	)
	w := windowFor(now)

	err = s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM departments),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COUNT(*) FROM medical_records),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = ?),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN ? AND ?),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN ? AND ? AND status = ?),
			(SELECT COUNT(*) FROM patients WHERE registered_at >= ?),
			(SELECT AVG(consultation_fee) FROM doctors WHERE consultation_fee IS NOT NULL)`,
		w.today,
		w.weekStart, w.weekEnd,
		w.today, w.upcomingEnd, statusScheduled,
		w.monthStart,
	).Scan(
		&st.TotalPatients, &st.TotalDoctors, &st.TotalDepartments, &st.TotalAppointments, &st.TotalMedicalRecords,
		&st.TodayAppointments, &st.WeekAppointments, &st.UpcomingAppointments, &st.NewPatientsMonth,
		&avg,
	)
	if err != nil {
		return st, err
	}
	st.AvgConsultationFee = avg.Float64

	if st.AppointmentStatus, err = s.countBy(ctx,
		"SELECT status, COUNT(*) FROM appointments GROUP BY status"); err != nil {
		return st, err
	}
	if st.BloodGroup, err = s.countBy(ctx,
		"SELECT blood_group, COUNT(*) FROM patients WHERE blood_group IS NOT NULL GROUP BY blood_group"); err != nil {
		return st, err
	}
	if st.DoctorsPerDepartment, err = s.countBy(ctx, `
		SELECT dep.name, COUNT(d.id)
		FROM departments dep
		JOIN doctors d ON d.department_id = dep.id
		GROUP BY dep.id, dep.name`); err != nil {
		return st, err
	}
	if st.Gender, err = s.countBy(ctx,
		"SELECT gender, COUNT(*) FROM patients GROUP BY gender"); err != nil {
		return st, err
	}
	if st.AgeGroups, err = s.ageGroups(ctx, now); err != nil {
		return st, err
	}
	if st.DepartmentRevenue, err = s.sumBy(ctx, `
		SELECT dep.name, COALESCE(SUM(a.consultation_fee), 0)
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN departments dep ON dep.id = d.department_id
		WHERE a.status = ? AND a.appointment_date BETWEEN ? AND ?
		GROUP BY dep.id, dep.name`,
		statusCompleted, w.revenueStart, w.today); err != nil {
		return st, err
	}
	return st, nil
}

func (s *OverviewService) countBy(ctx context.Context, q string, args ...interface{}) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			label sql.NullString
			n     int64
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		if label.Valid && n > 0 {
			out[label.String] += n
		}
	}
	return out, rows.Err()
}

func (s *OverviewService) sumBy(ctx context.Context, q string, args ...interface{}) (map[string]float64, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var (
			label sql.NullString
			sum   float64
		)
		if err := rows.Scan(&label, &sum); err != nil {
			return nil, err
		}
		if label.Valid {
			out[label.String] += sum
		}
	}
	return out, rows.Err()
}

// ageGroups buckets every patient by age on now's date.
func (s *OverviewService) ageGroups(ctx context.Context, now time.Time) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT date_of_birth FROM patients")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var dob sql.NullTime
		if err := rows.Scan(&dob); err != nil {
			return nil, err
		}
		var p *time.Time
		if dob.Valid {
			p = &dob.Time
		}
		out[AgeBucket(p, now)]++
	}
	return out, rows.Err()
}
