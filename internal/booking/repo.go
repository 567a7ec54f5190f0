package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Book claims (date, time) and inserts the appointment row in one
// transaction. A concurrent claim for the same slot surfaces as ErrSlotTaken;
// there is no check-then-insert window.
func (r *Repo) Book(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = NewAppointmentID()
	}
	appt.Status = StatusBooked

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := &SlotClaim{
			Date:          appt.Date,
			Time:          appt.Time,
			AppointmentID: appt.ID,
		}
		if err := tx.Create(claim).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return err
		}
		return tx.Create(appt).Error
	})
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Appointment, error) {
	var appt Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

// Cancel flips booked -> cancelled and releases the slot claim. The ownership
// check runs inside the transaction so the row cannot change underneath it.
func (r *Repo) Cancel(ctx context.Context, id, phone string) (*Appointment, error) {
	var appt Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if appt.Phone != phone {
			return ErrOwnership
		}
		switch appt.Status {
		case StatusBooked:
		case StatusCancelled:
			return ErrAlreadyCancelled
		default:
			return ErrNotFound
		}

		if err := tx.Model(&appt).Update("status", StatusCancelled).Error; err != nil {
			return err
		}
		appt.Status = StatusCancelled
		return tx.Where("date = ? AND time = ? AND appointment_id = ?",
			appt.Date, appt.Time, appt.ID).Delete(&SlotClaim{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Transfer moves an active booking to a new slot, all-or-nothing: the new
// claim is taken before the old one is released, so a conflict on the new
// slot rolls the whole transaction back and the original booking stays booked.
func (r *Repo) Transfer(ctx context.Context, id, phone, newDate, newTime string) (*Appointment, error) {
	var appt Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if appt.Phone != phone {
			return ErrOwnership
		}
		switch appt.Status {
		case StatusBooked:
		case StatusCancelled:
			return ErrAlreadyCancelled
		default:
			return ErrNotFound
		}

		if newDate == appt.Date && newTime == appt.Time {
			return nil // nothing to move
		}

		newClaim := &SlotClaim{
			Date:          newDate,
			Time:          newTime,
			AppointmentID: appt.ID,
		}
		if err := tx.Create(newClaim).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return err
		}
		if err := tx.Where("date = ? AND time = ? AND appointment_id = ?",
			appt.Date, appt.Time, appt.ID).Delete(&SlotClaim{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&appt).Updates(map[string]any{
			"date": newDate,
			"time": newTime,
		}).Error; err != nil {
			return err
		}
		appt.Date = newDate
		appt.Time = newTime
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListOwned returns the caller's active bookings ordered by date then time.
func (r *Repo) ListOwned(ctx context.Context, phone string) ([]Appointment, error) {
	var appts []Appointment
	if err := r.db.WithContext(ctx).
		Where("phone = ? AND status = ?", phone, StatusBooked).
		Order("date ASC, time ASC").
		Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// ClaimedBetween returns every actively claimed slot with date in
// [fromDate, toDate], for the availability computation.
func (r *Repo) ClaimedBetween(ctx context.Context, fromDate, toDate string) ([]SlotClaim, error) {
	var claims []SlotClaim
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", fromDate, toDate).
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}
