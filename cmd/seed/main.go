package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/pkg/config"
	"github.com/sfms-app/sfms-api/pkg/database"
	"github.com/sfms-app/sfms-api/pkg/logger"
)

// Seeds the bootstrap admin account and, with -demo, a small staff/student
// data set for local development. Generated passwords are printed once.
func main() {
	adminEmail := flag.String("admin-email", "admin@sfms.local", "bootstrap admin email")
	adminPassword := flag.String("admin-password", "", "bootstrap admin password (generated when empty)")
	demo := flag.Bool("demo", false, "also create demo staff, students and an assignment")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedUser(ctx, db, "Administrator", *adminEmail, *adminPassword, models.RoleAdmin); err != nil {
		log.Fatal("failed to seed admin", zap.Error(err))
	}

	if *demo {
		if err := seedDemo(ctx, db); err != nil {
			log.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	log.Info("seed complete")
}

func seedUser(ctx context.Context, db *sqlx.DB, name, email, password string, role models.UserRole) error {
	var exists bool
	if err := db.GetContext(ctx, &exists,
		`SELECT COUNT(*) > 0 FROM users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		fmt.Printf("%-8s %s already exists, skipping\n", role, email)
		return nil
	}

	generated := false
	if password == "" {
		buf := uuid.New()
		password = buf.String()[:12]
		generated = true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6)`,
		uuid.New().String(), name, email, string(hash), role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if generated {
		fmt.Printf("%-8s %s password: %s\n", role, email, password)
	} else {
		fmt.Printf("%-8s %s created\n", role, email)
	}
	return nil
}

func seedDemo(ctx context.Context, db *sqlx.DB) error {
	users := []struct {
		name  string
		email string
		role  models.UserRole
	}{
		{"Sam Carter", "sam.carter@sfms.local", models.RoleStaff},
		{"Riley Morgan", "riley.morgan@sfms.local", models.RoleStudent},
		{"Casey Nguyen", "casey.nguyen@sfms.local", models.RoleStudent},
	}
	for _, u := range users {
		if err := seedUser(ctx, db, u.name, u.email, "", u.role); err != nil {
			return err
		}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO staff_student_assignments (id, staff_id, student_id, assigned_at)
		 SELECT $1, s.id, st.id, $2
		 FROM users s, users st
		 WHERE s.email = $3 AND st.email = $4
		 ON CONFLICT (staff_id, student_id) DO NOTHING`,
		uuid.New().String(), time.Now().UTC(),
		"sam.carter@sfms.local", "riley.morgan@sfms.local")
	if err != nil {
		return fmt.Errorf("insert demo assignment: %w", err)
	}
	return nil
}
