package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			clearTables(db)
		}

		userIDs := seedUsers(db)
		seedCategories(db)
		groupID := seedGroup(db, userIDs)
		seedBudget(db, userIDs[0])

		fmt.Printf("Seeding complete: %d users, demo group %d\n", len(userIDs), groupID)
	},
}

func clearTables(db *sqlx.DB) {
	tables := []string{
		"debt_payments", "debts", "shared_expense_splits", "shared_expenses",
		"budget_alerts", "budgets", "expenses",
		"expense_group_members", "expense_groups", "categories", "users",
	}
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedUsers(db *sqlx.DB) []int64 {
	users := []struct {
		Email string
		Name  string
	}{
		{"alice@mail.com", "Alice"},
		{"bob@mail.com", "Bob"},
		{"carol@mail.com", "Carol"},
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		var id int64
		err := db.QueryRow("SELECT id FROM users WHERE email = $1", u.Email).Scan(&id)
		if err == nil {
			ids = append(ids, id)
			continue
		}

		err = db.QueryRow(
			"INSERT INTO users (email, name, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now()) RETURNING id",
			u.Email, u.Name).Scan(&id)
		if err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Email, err)
		}
		fmt.Println("Seeded user:", u.Email)
		ids = append(ids, id)
	}
	return ids
}

func seedCategories(db *sqlx.DB) {
	categories := []struct {
		Name string
		Desc string
	}{
		{"groceries", "Food and household supplies"},
		{"rent", "Housing"},
		{"transport", "Public transport and fuel"},
		{"entertainment", "Movies, eating out, subscriptions"},
		{"utilities", "Electricity, water, internet"},
	}

	for _, c := range categories {
		var exists int
		if err := db.QueryRow("SELECT 1 FROM categories WHERE name = $1", c.Name).Scan(&exists); err == nil {
			continue
		}
		if _, err := db.Exec(
			"INSERT INTO categories (name, description, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now())",
			c.Name, c.Desc); err != nil {
			log.Fatalf("failed to insert category %s: %v", c.Name, err)
		}
	}
	fmt.Println("Seeded categories")
}

func seedGroup(db *sqlx.DB, userIDs []int64) int64 {
	var id int64
	err := db.QueryRow("SELECT id FROM expense_groups WHERE name = $1 AND is_deleted = false", "Flat 4B").Scan(&id)
	if err == nil {
		return id
	}

	err = db.QueryRow(
		"INSERT INTO expense_groups (name, description, admin_id, is_active, is_deleted, created_at, updated_at) VALUES ($1, $2, $3, true, false, now(), now()) RETURNING id",
		"Flat 4B", "Shared flat expenses", userIDs[0]).Scan(&id)
	if err != nil {
		log.Fatalf("failed to insert demo group: %v", err)
	}

	for _, userID := range userIDs {
		if _, err := db.Exec(
			"INSERT INTO expense_group_members (group_id, user_id, created_at) VALUES ($1, $2, now())",
			id, userID); err != nil {
			log.Fatalf("failed to add member %d: %v", userID, err)
		}
	}
	fmt.Println("Seeded demo group: Flat 4B")
	return id
}

func seedBudget(db *sqlx.DB, userID int64) {
	var exists int
	if err := db.QueryRow("SELECT 1 FROM budgets WHERE user_id = $1 AND category = $2", userID, "groceries").Scan(&exists); err == nil {
		return
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	if _, err := db.Exec(
		`INSERT INTO budgets (user_id, category, name, amount_cents, period, start_date, end_date, status,
			alert_threshold_80, alert_threshold_100, alerted_at_80, alerted_at_100, rollover_unused, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'MONTHLY', $5, $6, 'ACTIVE', true, true, false, false, false, false, now(), now())`,
		userID, "groceries", fmt.Sprintf("groceries - %s", start.Format("January 2006")), int64(50000), start, end); err != nil {
		log.Fatalf("failed to insert demo budget: %v", err)
	}
	fmt.Println("Seeded demo budget for groceries")
}
