package application

import (
	"context"
	"testing"

	"github.com/automator-io/admin-service/internal/domain/entity"
)

// ES and GCS stay nil here, which turns indexing into a no-op and makes
// avatar uploads report storage as unconfigured.
func newUserAdminService(users *fakeUserRepo, orgs *fakeOrgRepo) *UserAdminService {
	return NewUserAdminService(users, orgs, testHasher(), quietLogger())
}

func TestAdminCreateUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := newUserAdminService(users, newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	req := &RegisterRequest{
		User:     entity.User{Email: "Bob@Example.com", Username: "bob", OrgID: "org-9"},
		Password: "hunter2hunter2",
	}
	created, rerr := svc.CreateUser(context.Background(), callerOrg, req)
	if rerr != nil {
		t.Fatalf("CreateUser: %v", rerr)
	}
	if created.Email != "bob@example.com" {
		t.Errorf("email = %q, want lowercased", created.Email)
	}
	if created.Security != nil && created.Security.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	stored := users.get(created.UserID)
	if stored == nil || stored.Security == nil || stored.Security.PasswordHash == "" {
		t.Fatal("stored user has no password hash")
	}
	if !testHasher().Verify("hunter2hunter2", stored.Security.PasswordHash) {
		t.Error("stored hash does not verify against the plaintext password")
	}

	if _, rerr := svc.CreateUser(context.Background(), callerOrg, req); rerr == nil || rerr.Code != "EMAIL_ALREADY_EXISTS" {
		t.Errorf("got %+v, want EMAIL_ALREADY_EXISTS", rerr)
	}

	dupName := &RegisterRequest{User: entity.User{Email: "other@example.com", Username: "bob"}, Password: "hunter2hunter2"}
	if _, rerr := svc.CreateUser(context.Background(), callerOrg, dupName); rerr == nil || rerr.Code != "USERNAME_ALREADY_EXISTS" {
		t.Errorf("got %+v, want USERNAME_ALREADY_EXISTS", rerr)
	}

	if _, rerr := svc.CreateUser(context.Background(), callerOrg, &RegisterRequest{User: entity.User{Email: "x@example.com"}}); rerr == nil || rerr.Code != "MISSING_REQUIRED_FIELDS" {
		t.Errorf("got %+v, want MISSING_REQUIRED_FIELDS", rerr)
	}
}

func TestAdminUserGate(t *testing.T) {
	suspended := activeOrg(callerOrg, "Caller")
	suspended.Status = "suspended"
	h := testHasher()
	svc := newUserAdminService(newFakeUserRepo(loginReadyUser(t, h, "pw")), newFakeOrgRepo(suspended))

	if _, rerr := svc.GetUser(context.Background(), callerOrg, "u-1"); rerr == nil || rerr.Code != "INVALID_ORGANIZATION" {
		t.Errorf("get: got %+v", rerr)
	}
	if _, rerr := svc.ListUsers(context.Background(), callerOrg, 100, 0); rerr == nil || rerr.Code != "INVALID_ORGANIZATION" {
		t.Errorf("list: got %+v", rerr)
	}
	if _, rerr := svc.DeleteUser(context.Background(), callerOrg, "u-1"); rerr == nil || rerr.Code != "INVALID_ORGANIZATION" {
		t.Errorf("delete: got %+v", rerr)
	}
}

func TestAdminGetAndListRedact(t *testing.T) {
	h := testHasher()
	svc := newUserAdminService(newFakeUserRepo(loginReadyUser(t, h, "pw")), newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	got, rerr := svc.GetUser(context.Background(), callerOrg, "u-1")
	if rerr != nil {
		t.Fatalf("GetUser: %v", rerr)
	}
	if got.Security != nil && got.Security.PasswordHash != "" {
		t.Error("get leaked password hash")
	}

	list, rerr := svc.ListUsers(context.Background(), callerOrg, 100, 0)
	if rerr != nil {
		t.Fatalf("ListUsers: %v", rerr)
	}
	if list.Pagination.TotalCount != 1 || len(list.Users) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if sec := list.Users[0].Security; sec != nil && sec.PasswordHash != "" {
		t.Error("list leaked password hash")
	}

	if _, rerr := svc.GetUser(context.Background(), callerOrg, "ghost"); rerr == nil || rerr.Status != 404 || rerr.Code != "USER_NOT_FOUND" {
		t.Errorf("got %+v, want 404 USER_NOT_FOUND", rerr)
	}
}

func TestAdminUpdateUser(t *testing.T) {
	h := testHasher()
	alice := loginReadyUser(t, h, "old password")
	carol := loginReadyUser(t, h, "pw")
	carol.UserID = "u-2"
	carol.Email = "carol@example.com"
	carol.Username = "carol"
	users := newFakeUserRepo(alice, carol)
	svc := newUserAdminService(users, newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	t.Run("unknown key rejected", func(t *testing.T) {
		_, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"email":"a@b.c","shoe_size":44}`))
		if rerr == nil || rerr.Code != "INVALID_FIELD" {
			t.Fatalf("got %+v, want INVALID_FIELD", rerr)
		}
		if len(rerr.Details) != 1 || rerr.Details[0].Field != "shoe_size" {
			t.Errorf("details = %+v", rerr.Details)
		}
	})

	t.Run("recognized but unapplied keys give no fields", func(t *testing.T) {
		_, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"user_id":"hijack","created_at":"2020-01-01T00:00:00Z"}`))
		if rerr == nil || rerr.Code != "NO_FIELDS_TO_UPDATE" {
			t.Errorf("got %+v, want NO_FIELDS_TO_UPDATE", rerr)
		}
	})

	t.Run("duplicate email excludes self", func(t *testing.T) {
		if _, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"email":"carol@example.com"}`)); rerr == nil || rerr.Code != "EMAIL_ALREADY_EXISTS" {
			t.Errorf("got %+v, want EMAIL_ALREADY_EXISTS", rerr)
		}
		if _, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"email":"alice@example.com"}`)); rerr != nil {
			t.Errorf("own email: %v", rerr)
		}
	})

	t.Run("security patch rehashes plaintext password", func(t *testing.T) {
		updated, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"security":{"password_hash":"new password"}}`))
		if rerr != nil {
			t.Fatalf("UpdateUser: %v", rerr)
		}
		if updated.Security != nil && updated.Security.PasswordHash != "" {
			t.Error("response leaked password hash")
		}
		stored := users.get("u-1")
		if !h.Verify("new password", stored.Security.PasswordHash) {
			t.Error("stored hash does not verify against the new password")
		}
		if stored.Security.PasswordHash == "new password" {
			t.Error("password stored as plaintext")
		}
	})

	t.Run("security patch without password keeps the stored hash", func(t *testing.T) {
		if _, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"security":{"is_email_verified":false}}`)); rerr != nil {
			t.Fatalf("UpdateUser: %v", rerr)
		}
		stored := users.get("u-1")
		if stored.Security.IsEmailVerified {
			t.Error("is_email_verified not applied")
		}
		if !h.Verify("new password", stored.Security.PasswordHash) {
			t.Error("stored hash lost by a security patch without a password")
		}
	})

	t.Run("roles and flags", func(t *testing.T) {
		updated, rerr := svc.UpdateUser(context.Background(), callerOrg, "u-1", []byte(`{"roles":["viewer"],"is_suspended":true}`))
		if rerr != nil {
			t.Fatalf("UpdateUser: %v", rerr)
		}
		if len(updated.Roles) != 1 || updated.Roles[0] != "viewer" || !updated.IsSuspended {
			t.Errorf("updated = %+v", updated)
		}
	})
}

func TestAdminDeleteUser(t *testing.T) {
	h := testHasher()
	users := newFakeUserRepo(loginReadyUser(t, h, "pw"))
	svc := newUserAdminService(users, newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	data, rerr := svc.DeleteUser(context.Background(), callerOrg, "u-1")
	if rerr != nil {
		t.Fatalf("DeleteUser: %v", rerr)
	}
	if data["user_id"] != "u-1" {
		t.Errorf("data = %+v", data)
	}
	if users.get("u-1") != nil {
		t.Error("user still stored after delete")
	}

	if _, rerr := svc.DeleteUser(context.Background(), callerOrg, "u-1"); rerr == nil || rerr.Status != 404 {
		t.Errorf("got %+v, want 404", rerr)
	}
}

func TestAvatarUploadWithoutStorage(t *testing.T) {
	h := testHasher()
	svc := newUserAdminService(newFakeUserRepo(loginReadyUser(t, h, "pw")), newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	_, rerr := svc.UploadAvatar(context.Background(), callerOrg, "u-1", nil, "me.png", "image/png")
	if rerr == nil || rerr.Code != "STORAGE_NOT_CONFIGURED" {
		t.Errorf("got %+v, want STORAGE_NOT_CONFIGURED", rerr)
	}
}

func TestSearchUsersWithoutIndex(t *testing.T) {
	svc := newUserAdminService(newFakeUserRepo(), newFakeOrgRepo(activeOrg(callerOrg, "Caller")))

	hits, rerr := svc.SearchUsers(context.Background(), "alice", 10)
	if rerr != nil {
		t.Fatalf("SearchUsers: %v", rerr)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}
