package auth

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/auth"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// Owner is the single account allowed to use the private API.
type Owner struct {
	Email        string
	PasswordHash string
}

type LoginUseCase struct {
	owner  Owner
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLoginUseCase(owner Owner, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		owner:  owner,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	_, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if uc.owner.Email == "" || uc.owner.PasswordHash == "" {
		err := apperror.NewUnauthorized("no owner account is configured", nil)
		span.RecordError(err)
		return nil, err
	}

	// Hash even for an unknown email so both failures take the same time.
	emailOK := strings.EqualFold(strings.TrimSpace(input.Email), uc.owner.Email)
	passwordOK := auth.CheckPasswordHash(input.Password, uc.owner.PasswordHash)
	if !emailOK || !passwordOK {
		err := apperror.NewUnauthorized("email or password is incorrect", nil)
		span.RecordError(err)
		uc.logger.Warn("Login rejected", zap.Bool("email_match", emailOK))
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(uc.owner.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("owner_email", uc.owner.Email))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("owner_email", uc.owner.Email))
	return &LoginOutput{AccessToken: token}, nil
}
