package auth

import (
	"context"
	"testing"

	"github.com/astromusic/astromusic/internal/model"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if AuthFromContext(ctx) != nil {
		t.Error("empty context should have no auth")
	}
	if UserIDFromContext(ctx) != "" {
		t.Error("empty context should have no user id")
	}

	ctx = ContextWithAuth(ctx, &model.AuthContext{UserID: "01HQUSER", IsSuperuser: true})
	if got := UserIDFromContext(ctx); got != "01HQUSER" {
		t.Errorf("UserIDFromContext = %q, want 01HQUSER", got)
	}
	if !AuthFromContext(ctx).IsSuperuser {
		t.Error("superuser flag lost")
	}
}
