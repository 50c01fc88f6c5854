package store

import (
	"context"
	"testing"

	"github.com/jlcaburian/bodega/internal/db"
	"github.com/jlcaburian/bodega/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Alice Smith", "alice", "hash123", model.RoleManager)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Name != "Alice Smith" || user.Username != "alice" || user.Role != model.RoleManager {
		t.Errorf("unexpected user: %+v", user)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Errorf("expected to fetch alice, got %+v", got)
	}
}

func TestGetUserByUsernameSkipsDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Bob", "bob", "hash", model.RoleUser)
	DeleteUser(ctx, database, user.ID)

	got, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for deleted user, got %+v", got)
	}
}

func TestDeletedUsernameCanBeReused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "First", "shared", "hash", model.RoleUser)
	DeleteUser(ctx, database, user.ID)

	if _, err := CreateUser(ctx, database, "Second", "shared", "hash", model.RoleUser); err != nil {
		t.Fatalf("expected reusing a deleted username to work, got %v", err)
	}
}

func TestDuplicateActiveUsernameFails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "One", "dup", "hash", model.RoleUser)
	if _, err := CreateUser(ctx, database, "Two", "dup", "hash", model.RoleUser); err == nil {
		t.Error("expected duplicate username to fail")
	}
}

func TestListUsersExcludesDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "Keep", "keep", "hash", model.RoleUser)
	user, _ := CreateUser(ctx, database, "Drop", "drop", "hash", model.RoleUser)
	DeleteUser(ctx, database, user.ID)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "keep" {
		t.Errorf("expected only active users, got %+v", users)
	}
}

func TestUpdateUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Climber", "climber", "hash", model.RoleUser)
	if err := UpdateUserRole(ctx, database, user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RoleAdmin {
		t.Errorf("expected role admin, got %q", got.Role)
	}
}

func TestUpdateUserProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Old Name", "oldname", "hash", model.RoleUser)
	if err := UpdateUserProfile(ctx, database, user.ID, "New Name", "newname"); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Name != "New Name" || got.Username != "newname" {
		t.Errorf("unexpected profile: %+v", got)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Pw", "pw", "oldhash", model.RoleUser)
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}

func TestUserPicture(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Pic", "pic", "hash", model.RoleUser)
	if err := SetUserPicture(ctx, database, user.ID, []byte("fake image data"), "image/jpeg"); err != nil {
		t.Fatalf("SetUserPicture: %v", err)
	}

	data, mime, err := GetUserPicture(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUserPicture: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("unexpected picture data: %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
