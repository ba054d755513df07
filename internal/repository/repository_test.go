package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atifjaved999/mini-coaching/internal/database"
	"github.com/atifjaved999/mini-coaching/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.SeedSync(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, roleName string) *domain.User {
	t.Helper()
	users := NewUserRepository(db)
	user := &domain.User{Name: "Test " + email, Email: email, PasswordHash: "x"}
	if err := users.Create(user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	role, err := users.FindRoleByName(roleName)
	if err != nil {
		t.Fatalf("find role %s: %v", roleName, err)
	}
	if err := users.AddRole(user.ID, role.ID); err != nil {
		t.Fatalf("add role: %v", err)
	}
	user.Roles = append(user.Roles, *role)
	return user
}

func mustCreateSession(t *testing.T, repo SessionRepository, creatorID uint, date string, start, end int, participants ...uint) *domain.Session {
	t.Helper()
	s := &domain.Session{
		Title:       "Session",
		ScheduledOn: date,
		StartMinute: start,
		EndMinute:   end,
		CreatedByID: creatorID,
	}
	if err := repo.Create(s, participants); err != nil {
		t.Fatalf("create session %s %d-%d: %v", date, start, end, err)
	}
	return s
}
