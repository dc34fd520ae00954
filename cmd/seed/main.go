package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"roamly/internal/shared/config"
	"roamly/internal/shared/database"
	"roamly/internal/tours"
	"roamly/internal/users"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Roamly database seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Database is ready.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"webhook_events",
		"payments",
		"bookings",
		"tours",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds the admin account and the sample tour catalog
func (s *Seeder) SeedAll(cfg *config.Config) error {
	ctx := context.Background()

	if err := s.seedAdmin(ctx, cfg); err != nil {
		return err
	}
	if err := s.seedCustomer(ctx); err != nil {
		return err
	}
	return s.seedTours(ctx)
}

// seedAdmin creates the administrator account. The email should also be on
// the ADMIN_EMAILS allow-list or refunds will still be rejected.
func (s *Seeder) seedAdmin(ctx context.Context, cfg *config.Config) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "ops@roamly.in"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123!"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &users.User{
		FirstName: "Roamly",
		LastName:  "Operations",
		Email:     email,
		Phone:     "+919000000001",
		Password:  string(hashed),
		Role:      users.RoleAdmin,
	}

	if err := s.db.PostgreSQL.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if !cfg.IsAdminEmail(email) {
		fmt.Printf("  WARNING: %s is not on ADMIN_EMAILS; refund endpoints will reject it\n", email)
	}

	fmt.Printf("  Admin user created: %s\n", email)
	return nil
}

func (s *Seeder) seedCustomer(ctx context.Context) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("customer123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash customer password: %w", err)
	}

	customer := &users.User{
		FirstName: "Asha",
		LastName:  "Iyer",
		Email:     "asha.iyer@example.com",
		Phone:     "+919876543210",
		Password:  string(hashed),
		Role:      users.RoleUser,
	}

	if err := s.db.PostgreSQL.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer user: %w", err)
	}

	fmt.Printf("  Customer user created: %s\n", customer.Email)
	return nil
}

func (s *Seeder) seedTours(ctx context.Context) error {
	catalog := []tours.Tour{
		{
			Title:        "Spiti Valley Expedition",
			Destination:  "Spiti Valley, Himachal Pradesh",
			DurationDays: 7,
			PricePerHead: 2499900, // INR 24,999.00
			Currency:     "INR",
			MeetingPoint: "ISBT Delhi, Gate 4, 9:00 PM",
			Active:       true,
		},
		{
			Title:        "Andaman Island Escape",
			Destination:  "Port Blair and Havelock, Andaman",
			DurationDays: 5,
			PricePerHead: 3299900,
			Currency:     "INR",
			MeetingPoint: "Veer Savarkar Airport Arrivals",
			Active:       true,
		},
		{
			Title:        "Meghalaya Caves and Waterfalls",
			Destination:  "Shillong and Cherrapunji, Meghalaya",
			DurationDays: 6,
			PricePerHead: 2199900,
			Currency:     "INR",
			MeetingPoint: "Guwahati Railway Station, 7:00 AM",
			Active:       true,
		},
		{
			Title:        "Rann of Kutch Winter Trail",
			Destination:  "Kutch, Gujarat",
			DurationDays: 4,
			PricePerHead: 1599900,
			Currency:     "INR",
			MeetingPoint: "Bhuj Station Main Exit",
			Active:       false, // off season
		},
	}

	for _, tour := range catalog {
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&tour).Error; err != nil {
			return fmt.Errorf("failed to create tour %q: %w", tour.Title, err)
		}
		fmt.Printf("  Tour created: %s\n", tour.Title)
	}

	return nil
}
