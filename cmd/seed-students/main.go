package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smuct-dev/studentbase-backend/internal/config"
	"github.com/smuct-dev/studentbase-backend/internal/database"
	"github.com/smuct-dev/studentbase-backend/internal/logger"
	"github.com/smuct-dev/studentbase-backend/internal/model"
	"github.com/smuct-dev/studentbase-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// seed-students inserts a batch of demo student accounts for local
// development. Existing IDs are skipped, so the command is re-runnable.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	accountRepo := repository.NewAccountRepository(pool)

	seeds := []struct {
		name       string
		department string
	}{
		{"Abdul Karim", "CSE"}, {"Bithi Akter", "CSE"}, {"Chandan Roy", "EEE"},
		{"Dilruba Yasmin", "BBA"}, {"Emon Hossain", "CSE"}, {"Farzana Rahman", "EEE"},
		{"Golam Mostafa", "BBA"}, {"Habiba Sultana", "CSE"}, {"Imran Kabir", "EEE"},
		{"Jannatul Ferdous", "BBA"}, {"Kamrul Hasan", "CSE"}, {"Lamia Chowdhury", "EEE"},
		{"Mahmudul Islam", "CSE"}, {"Nusrat Jahan", "BBA"}, {"Omar Faruk", "EEE"},
		{"Priya Das", "CSE"}, {"Quazi Nafis", "BBA"}, {"Rakib Uddin", "CSE"},
		{"Sadia Afrin", "EEE"}, {"Tanvir Ahmed", "CSE"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	fmt.Printf("=== Seeding %d Students ===\n", len(seeds))

	created := 0
	for i, seed := range seeds {
		id := fmt.Sprintf("S%03d", i+1)
		email := strings.ToLower(strings.ReplaceAll(seed.name, " ", ".")) + "@example.edu"

		account := &model.Account{
			ID:           id,
			Name:         seed.name,
			Department:   seed.department,
			Email:        email,
			PasswordHash: string(hash),
			Status:       model.StatusActive,
			Role:         model.RoleStudent,
		}

		if err := accountRepo.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateID) || errors.Is(err, repository.ErrDuplicateEmail) {
				fmt.Printf("  skip %s (%s): already exists\n", id, seed.name)
				continue
			}
			log.Fatal().Err(err).Str("id", id).Msg("Failed to seed student")
		}
		created++
		fmt.Printf("  created %s (%s, %s)\n", id, seed.name, seed.department)
	}

	fmt.Printf("Done. %d created, %d skipped.\n", created, len(seeds)-created)
}
