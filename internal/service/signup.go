package service

import (
	"context"
	"strings"

	"github.com/target/residence-console/internal/domain/resource"
	apperrors "github.com/target/residence-console/internal/errors"
)

// SignUp creates a user account through the users collection.
// It is reachable without a session, so the password is required here even though
// the account form treats it as optional on update.
func (s *ResourceService) SignUp(ctx context.Context, users resource.Definition, buf resource.EditBuffer) error {
	if strings.TrimSpace(buf.ID) != "" {
		return apperrors.ValidationField("id", "Sign up cannot update an existing account.")
	}
	if strings.TrimSpace(buf.Get("password")) == "" {
		return apperrors.ValidationField("password", "Password is required.")
	}
	_, err := s.Save(ctx, nil, users, buf)
	return err
}
