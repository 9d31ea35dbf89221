package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wordapi/pkg/models"
)

func setup(t *testing.T) context.Context {
	t.Helper()
	if err := ConnectTest(); err != nil {
		t.Fatalf("ConnectTest: %v", err)
	}
	t.Cleanup(func() { Close() })
	return context.Background()
}

func mustCreateWord(t *testing.T, ctx context.Context, name string) *models.Word {
	t.Helper()
	word := &models.Word{Name: name, Translation: name + "-pt"}
	if err := NewWordRepository().Create(ctx, word, nil); err != nil {
		t.Fatalf("create word %q: %v", name, err)
	}
	return word
}

func mustCreateUser(t *testing.T, ctx context.Context, email string, admin bool) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, Password: "hash", IsAdmin: admin, Active: true}
	if err := NewUserRepository().Create(ctx, user, nil); err != nil {
		t.Fatalf("create user %q: %v", email, err)
	}
	return user
}

func TestCreateBatchCommitsAllRows(t *testing.T) {
	ctx := setup(t)
	user := mustCreateUser(t, ctx, "a@example.com", false)
	house := mustCreateWord(t, ctx, "house")
	dog := mustCreateWord(t, ctx, "dog")

	repo := NewHistoricRepository()
	events := []models.Historic{
		{WordID: house.ID, Hit: true},
		{WordID: dog.ID, Hit: false, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	created, err := repo.CreateBatch(ctx, events, user.ID)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d rows, want 2", len(created))
	}
	for i, event := range created {
		if event.ID == 0 {
			t.Errorf("row %d has no id", i)
		}
		if event.UserID != user.ID {
			t.Errorf("row %d user = %d, want %d", i, event.UserID, user.ID)
		}
		if event.Date.IsZero() {
			t.Errorf("row %d has zero date", i)
		}
	}

	count, err := repo.CountByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 2 {
		t.Errorf("stored %d rows, want 2", count)
	}
}

func TestCreateBatchRollsBackOnUnknownWord(t *testing.T) {
	ctx := setup(t)
	user := mustCreateUser(t, ctx, "a@example.com", false)
	house := mustCreateWord(t, ctx, "house")

	repo := NewHistoricRepository()
	events := []models.Historic{
		{WordID: house.ID, Hit: true},
		{WordID: house.ID + 999, Hit: false},
	}
	_, err := repo.CreateBatch(ctx, events, user.ID)
	if !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("err = %v, want ErrUnknownWord", err)
	}

	count, err := repo.CountByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 0 {
		t.Errorf("stored %d rows after failed batch, want 0", count)
	}
}

func TestEventsByUserAndRange(t *testing.T) {
	ctx := setup(t)
	alice := mustCreateUser(t, ctx, "alice@example.com", false)
	bob := mustCreateUser(t, ctx, "bob@example.com", false)
	house := mustCreateWord(t, ctx, "house")

	day := func(d int) time.Time {
		return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
	}
	repo := NewHistoricRepository()
	batch := []models.Historic{
		{WordID: house.ID, Hit: true, Date: day(1)},
		{WordID: house.ID, Hit: false, Date: day(10)},
		{WordID: house.ID, Hit: true, Date: day(20)},
	}
	if _, err := repo.CreateBatch(ctx, batch, alice.ID); err != nil {
		t.Fatalf("CreateBatch alice: %v", err)
	}
	if _, err := repo.CreateBatch(ctx, []models.Historic{{WordID: house.ID, Hit: true, Date: day(10)}}, bob.ID); err != nil {
		t.Fatalf("CreateBatch bob: %v", err)
	}

	events, err := repo.EventsByUserAndRange(ctx, alice.ID, day(5), day(15))
	if err != nil {
		t.Fatalf("EventsByUserAndRange: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].WordName != "house" {
		t.Errorf("word name = %q, want %q", events[0].WordName, "house")
	}
	if !models.DateOnly(events[0].Date).Equal(day(10)) {
		t.Errorf("date = %v, want %v", events[0].Date, day(10))
	}

	// Zero start means unbounded below.
	events, err = repo.EventsByUserAndRange(ctx, alice.ID, time.Time{}, day(15))
	if err != nil {
		t.Fatalf("EventsByUserAndRange open start: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events with open start, want 2", len(events))
	}
}

func TestWordCreateLinksTags(t *testing.T) {
	ctx := setup(t)
	tagRepo := NewTagRepository()
	animals := &models.Tag{Name: "animals"}
	if err := tagRepo.Create(ctx, animals); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	wordRepo := NewWordRepository()
	word := &models.Word{Name: "dog", Translation: "cachorro", Annotation: "common noun"}
	if err := wordRepo.Create(ctx, word, []int64{animals.ID}); err != nil {
		t.Fatalf("create word: %v", err)
	}

	got, err := wordRepo.GetByID(ctx, word.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "animals" {
		t.Errorf("tags = %+v, want [animals]", got.Tags)
	}

	// Replacing with an empty selection clears the links.
	got.Translation = "cao"
	if err := wordRepo.Update(ctx, got, []int64{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = wordRepo.GetByID(ctx, word.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Translation != "cao" {
		t.Errorf("translation = %q, want %q", got.Translation, "cao")
	}
	if len(got.Tags) != 0 {
		t.Errorf("tags after clearing = %+v, want none", got.Tags)
	}
}

func TestWordGetByIDNotFound(t *testing.T) {
	ctx := setup(t)
	if _, err := NewWordRepository().GetByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetLifecycle(t *testing.T) {
	ctx := setup(t)
	house := mustCreateWord(t, ctx, "house")
	dog := mustCreateWord(t, ctx, "dog")

	repo := NewSetRepository()
	set := &models.Set{Name: "basics"}
	if err := repo.Create(ctx, set, []int64{house.ID, dog.ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, set.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Words) != 2 {
		t.Fatalf("set has %d words, want 2", len(got.Words))
	}

	got.Name = "beginner"
	if err := repo.Update(ctx, got, []int64{dog.ID}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByName(ctx, "beginner")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	words, err := repo.WordsBySetID(ctx, got.ID)
	if err != nil {
		t.Fatalf("WordsBySetID: %v", err)
	}
	if len(words) != 1 || words[0].Name != "dog" {
		t.Errorf("words after update = %+v, want [dog]", words)
	}

	if err := repo.Delete(ctx, got.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, got.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
}

func TestUserCreateAssignsRoles(t *testing.T) {
	ctx := setup(t)
	roleRepo := NewRoleRepository()
	if err := roleRepo.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	roles, err := roleRepo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll roles: %v", err)
	}
	if len(roles) != 6 {
		t.Fatalf("seeded %d roles, want 6", len(roles))
	}

	userRepo := NewUserRepository()
	user := &models.User{Name: "Ada Lovelace", Email: "ada@example.com", Password: "hash", Active: true}
	if err := userRepo.Create(ctx, user, []int64{roles[0].ID, roles[1].ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := userRepo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if len(got.Roles) != 2 {
		t.Errorf("user has %d roles, want 2", len(got.Roles))
	}

	taken, err := userRepo.EmailTaken(ctx, "ada@example.com", 0)
	if err != nil {
		t.Fatalf("EmailTaken: %v", err)
	}
	if !taken {
		t.Error("EmailTaken = false for existing email")
	}
	taken, err = userRepo.EmailTaken(ctx, "ada@example.com", got.ID)
	if err != nil {
		t.Fatalf("EmailTaken exclude: %v", err)
	}
	if taken {
		t.Error("EmailTaken = true when excluding the owner")
	}
}

func TestRoleSeedIsIdempotent(t *testing.T) {
	ctx := setup(t)
	repo := NewRoleRepository()
	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	ids, err := repo.AllIDs(ctx)
	if err != nil {
		t.Fatalf("AllIDs: %v", err)
	}
	if len(ids) != 6 {
		t.Errorf("got %d roles after reseeding, want 6", len(ids))
	}
}

func TestCountAdmins(t *testing.T) {
	ctx := setup(t)
	admin := mustCreateUser(t, ctx, "root@example.com", true)
	mustCreateUser(t, ctx, "plain@example.com", false)

	repo := NewUserRepository()
	count, err := repo.CountAdmins(ctx, 0)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if count != 1 {
		t.Errorf("admins = %d, want 1", count)
	}
	count, err = repo.CountAdmins(ctx, admin.ID)
	if err != nil {
		t.Fatalf("CountAdmins exclude: %v", err)
	}
	if count != 0 {
		t.Errorf("admins excluding self = %d, want 0", count)
	}
}
