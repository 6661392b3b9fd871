package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

func TestUserService_AdminRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.notifier, env.logger, env.validator)

	admin := env.addUser(t, &models.User{Email: "admin@school.org", Role: models.RoleAdmin})
	pending := env.addUser(t, &models.User{Email: "new@mail.com", Status: models.UserStatusPending})
	class := env.addClass(t, "2B")
	self := ActorFromUser(admin)

	var rule *BusinessRuleError
	if _, err := svc.UpdateStatus(ctx, self, admin.ID, &UpdateUserStatusRequest{Status: models.UserStatusRejected}); !errors.As(err, &rule) {
		t.Errorf("self reject = %v, want BusinessRuleError", err)
	}
	if _, err := svc.UpdateRole(ctx, self, admin.ID, &UpdateUserRoleRequest{Role: models.RoleTeacher}); !errors.As(err, &rule) {
		t.Errorf("self demote = %v, want BusinessRuleError", err)
	}
	if err := svc.Delete(ctx, self, admin.ID); !errors.As(err, &rule) {
		t.Errorf("self delete = %v, want BusinessRuleError", err)
	}

	approved, err := svc.UpdateStatus(ctx, self, pending.ID, &UpdateUserStatusRequest{Status: models.UserStatusApproved})
	if err != nil || approved.Status != models.UserStatusApproved {
		t.Fatalf("UpdateStatus() = %+v, %v", approved, err)
	}

	if _, err := svc.AssignClass(ctx, pending.ID, &AssignClassRequest{ClassID: "ghost"}); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("AssignClass(ghost) = %v, want ErrClassNotFound", err)
	}
	if _, err := svc.UpdateRole(ctx, self, pending.ID, &UpdateUserRoleRequest{Role: models.RoleStudent}); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}
	if _, err := svc.AssignClass(ctx, pending.ID, &AssignClassRequest{ClassID: class.ID}); err != nil {
		t.Fatalf("AssignClass() error = %v", err)
	}
	promoted, err := svc.UpdateRole(ctx, self, pending.ID, &UpdateUserRoleRequest{Role: models.RoleTeacher})
	if err != nil || promoted.StudentClass != "" {
		t.Errorf("teacher should lose class, got %+v, %v", promoted, err)
	}

	status := models.UserStatusApproved
	list, err := svc.List(ctx, repositories.UserFilters{Status: &status}, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Total != 2 {
		t.Errorf("List(approved) total = %d, want 2", list.Total)
	}
}

func TestUserService_CreateStudent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.notifier, env.logger, env.validator)
	class := env.addClass(t, "3C")

	student, err := svc.CreateStudent(ctx, &CreateStudentRequest{LoginID: "kid.one", Password: "secret1", ClassID: class.ID})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	if student.Role != models.RoleStudent || student.Status != models.UserStatusApproved || student.PasswordHash == "" {
		t.Errorf("unexpected student %+v", student)
	}

	tests := []struct {
		name string
		req  CreateStudentRequest
		want error
	}{
		{name: "taken", req: CreateStudentRequest{LoginID: "kid.one", Password: "secret1"}, want: ErrLoginIDTaken},
		{name: "bad login id", req: CreateStudentRequest{LoginID: "a b", Password: "secret1"}, want: ErrValidationFailed},
		{name: "short password", req: CreateStudentRequest{LoginID: "kid.two", Password: "123"}, want: ErrValidationFailed},
		{name: "unknown class", req: CreateStudentRequest{LoginID: "kid.three", Password: "secret1", ClassID: "ghost"}, want: ErrClassNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateStudent(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreateStudent() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUserService_ImportPreRegistered(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.notifier, env.logger, env.validator)

	if _, err := svc.AddPreRegistered(ctx, &PreRegisterRequest{Email: "Old@School.org"}); err != nil {
		t.Fatalf("AddPreRegistered() error = %v", err)
	}
	if _, err := svc.AddPreRegistered(ctx, &PreRegisterRequest{Email: "old@school.org"}); !errors.Is(err, ErrPreRegisteredExists) {
		t.Errorf("duplicate AddPreRegistered() = %v, want ErrPreRegisteredExists", err)
	}

	f := excelize.NewFile()
	rows := []string{"Email", "a@school.org", "OLD@school.org", "", "not-an-email", "b@school.org"}
	for i, v := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("SetCellValue() error = %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	result, err := svc.ImportPreRegistered(ctx, &buf)
	if err != nil {
		t.Fatalf("ImportPreRegistered() error = %v", err)
	}
	if result.Imported != 2 || result.Skipped != 2 || len(result.Errors) != 1 {
		t.Errorf("result = %+v, want 2 imported, 2 skipped, 1 error", result)
	}

	entries, _ := svc.ListPreRegistered(ctx)
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}

	if _, err := svc.ImportPreRegistered(ctx, bytes.NewReader([]byte("plain text"))); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("non-xlsx import = %v, want ErrValidationFailed", err)
	}
}

func TestUserService_Preferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.repo, env.notifier, env.logger, env.validator)
	u := env.addUser(t, &models.User{Email: "p@mail.com"})

	prefs, err := svc.GetPreferences(ctx, u.ID)
	if err != nil || prefs.Language != "en" {
		t.Fatalf("GetPreferences() = %+v, %v", prefs, err)
	}
	if prefs, err = svc.UpdatePreferences(ctx, u.ID, &Preferences{Language: " HE "}); err != nil || prefs.Language != "he" {
		t.Fatalf("UpdatePreferences() = %+v, %v", prefs, err)
	}
	if _, err := svc.UpdatePreferences(ctx, u.ID, &Preferences{Language: "xx"}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("unsupported language = %v, want ErrValidationFailed", err)
	}
}
