package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

// ReminderJob handles scheduled rental reminders
type ReminderJob struct {
	store     storage.Store
	sender    services.SMSSender
	isRunning bool
}

// NewReminderJob creates a new reminder job scheduler
func NewReminderJob(store storage.Store, sender services.SMSSender) *ReminderJob {
	return &ReminderJob{
		store:     store,
		sender:    sender,
		isRunning: false,
	}
}

// Start begins all scheduled reminder jobs
func (r *ReminderJob) Start() {
	if r.isRunning {
		log.Println("Reminder jobs already running")
		return
	}

	r.isRunning = true
	log.Println("Starting scheduled reminder jobs...")

	go r.scheduleDueSoonReminders()
	go r.scheduleOverdueNotices()

	log.Println("All reminder jobs started successfully")
}

// Stop halts all scheduled jobs
func (r *ReminderJob) Stop() {
	r.isRunning = false
	log.Println("Stopping scheduled reminder jobs...")
}

// DUE SOON REMINDER - Runs daily at 10 AM
func (r *ReminderJob) scheduleDueSoonReminders() {
	for r.isRunning {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		duration := nextRun.Sub(now)
		log.Printf("Next due-soon reminder check scheduled in %v", duration)
		time.Sleep(duration)

		if !r.isRunning {
			break
		}

		r.sendDueSoonReminders()
	}
}

// sendDueSoonReminders texts readers whose books are due tomorrow
func (r *ReminderJob) sendDueSoonReminders() {
	log.Println("Checking for rentals due soon...")

	rentals, err := r.store.GetRentalsByStatus(models.RentalStatusDelivered)
	if err != nil {
		log.Printf("Error getting delivered rentals: %v", err)
		return
	}

	sentCount := 0
	for _, rental := range rentals {
		if rental.DueAt == nil {
			continue
		}

		daysUntilDue := int(time.Until(*rental.DueAt).Hours() / 24)
		if daysUntilDue != 1 {
			continue
		}

		user, err := r.store.GetUser(rental.UserID)
		if err != nil {
			log.Printf("Error getting user %s: %v", rental.UserID, err)
			continue
		}

		msg := fmt.Sprintf("Your rental %s is due tomorrow (%s). Renew online or keep the return ready!",
			rental.RentalID, rental.DueAt.Format("02 Jan 2006"))
		if err := r.sender.SendSMS(user.Phone, msg); err != nil {
			log.Printf("Failed to send due reminder to %s: %v", user.Phone, err)
			continue
		}

		sentCount++
	}

	log.Printf("Due-soon reminders sent: %d", sentCount)
}

// OVERDUE NOTICE - Runs daily at 8 AM
func (r *ReminderJob) scheduleOverdueNotices() {
	for r.isRunning {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		duration := nextRun.Sub(now)
		log.Printf("Next overdue notice check scheduled in %v", duration)
		time.Sleep(duration)

		if !r.isRunning {
			break
		}

		r.sendOverdueNotices()
	}
}

// sendOverdueNotices texts readers holding books past their due date
func (r *ReminderJob) sendOverdueNotices() {
	log.Println("Checking for overdue rentals...")

	rentals, err := r.store.GetOverdueRentals(time.Now())
	if err != nil {
		log.Printf("Error getting overdue rentals: %v", err)
		return
	}

	sentCount := 0
	for _, rental := range rentals {
		daysOverdue := int(time.Since(*rental.DueAt).Hours() / 24)

		// Notice on day 1, then every 3 days so readers aren't spammed daily
		if daysOverdue < 1 || (daysOverdue != 1 && daysOverdue%3 != 0) {
			continue
		}

		user, err := r.store.GetUser(rental.UserID)
		if err != nil {
			log.Printf("Error getting user %s: %v", rental.UserID, err)
			continue
		}

		msg := fmt.Sprintf("Your rental %s is %d day(s) overdue. Please return the books or renew to keep reading.",
			rental.RentalID, daysOverdue)
		if err := r.sender.SendSMS(user.Phone, msg); err != nil {
			log.Printf("Failed to send overdue notice to %s: %v", user.Phone, err)
			continue
		}

		sentCount++
	}

	log.Printf("Overdue notices sent: %d", sentCount)
}
