package bootstrap

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/purbarunBC13/team-tracker/memstore"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/security"
)

func TestSeedAdminOnlyOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	logger := log.New(io.Discard, "", 0)

	created, err := SeedAdmin(ctx, mem, "Admin@Example.com", "Adm1n!pass", logger)
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got %v %v", created, err)
	}
	admin, err := mem.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if admin.Role != models.RoleAdmin || !admin.IsActive || !security.CheckPassword(admin.Password, "Adm1n!pass") {
		t.Fatalf("unexpected admin %+v", admin)
	}

	created, err = SeedAdmin(ctx, mem, "other@example.com", "Adm1n!pass", logger)
	if err != nil || created {
		t.Fatalf("second seed must be a no-op, got %v %v", created, err)
	}
}

func TestSeedAdminRejectsWeakPassword(t *testing.T) {
	if _, err := SeedAdmin(context.Background(), memstore.New(), "a@example.com", "weak", log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected weak password to be rejected")
	}
}
