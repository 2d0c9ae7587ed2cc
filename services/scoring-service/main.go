package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"mangrove-watch/pkg/database"
	"mangrove-watch/pkg/queue"
	"mangrove-watch/services/auth-service/models"

	"gorm.io/gorm"
)

// pointsPerReport is the community reward for a submitted report.
const pointsPerReport = 10

type reportCreated struct {
	Type       string    `json:"type"`
	ReportID   string    `json:"report_id"`
	Title      string    `json:"title"`
	ReporterID string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func main() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_PORT"),
	)
	if os.Getenv("POSTGRES_HOST") == "" {
		dsn = "host=localhost user=admin password=password dbname=auth_db port=5434 sslmode=disable TimeZone=UTC"
	}

	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to database: %v", err)
	}

	conn, ch, err := queue.ConnectRabbitMQ(queue.URIFromEnv())
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	defer ch.Close()
	log.Println("[OK] Connected to RabbitMQ")

	q, err := queue.DeclareAndBind(ch, queue.ReportsExchange, "scoring", "report.created")
	if err != nil {
		log.Fatalf("[ERROR] Failed to bind scoring queue: %v", err)
	}

	msgs, err := queue.ConsumeMessages(ch, q.Name)
	if err != nil {
		log.Fatalf("[ERROR] Failed to consume queue: %v", err)
	}

	log.Printf("[INFO] Scoring Service waiting for report events on %q", q.Name)

	for d := range msgs {
		var ev reportCreated
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("[WARN] Failed to parse event: %v", err)
			continue
		}
		if ev.ReporterID == "" {
			continue
		}

		if err := awardPoints(db, ev.ReporterID); err != nil {
			log.Printf("[WARN] Failed to award points for report %s: %v", ev.ReportID, err)
			continue
		}
		log.Printf("[OK] Awarded %d points - User: %s, Report: %s", pointsPerReport, ev.ReporterID, ev.ReportID)
	}
}

func awardPoints(db *gorm.DB, userID string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"points":       gorm.Expr("points + ?", pointsPerReport),
			"report_count": gorm.Expr("report_count + ?", 1),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}
