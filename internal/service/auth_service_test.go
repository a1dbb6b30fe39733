package service_test

import (
	"os"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/Belkadi-Amine23/mystore/pkg/validator"
)

func (s *IntegrationTestSuite) setJwtSecrets() {
	s.Require().NoError(os.Setenv("ACCESS_SECRET", "test-access-secret"))
	s.Require().NoError(os.Setenv("REFRESH_SECRET", "test-refresh-secret"))
}

func (s *IntegrationTestSuite) TestRegister_Success() {
	s.setJwtSecrets()

	user, tokens, err := s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "sup3rsecret",
	})
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)
	s.Require().Equal(domain.RoleUser, user.Role)
	s.Require().NotEmpty(tokens.AccessToken)
	s.Require().NotEmpty(tokens.RefreshToken)
}

func (s *IntegrationTestSuite) TestRegister_WeakPassword() {
	s.setJwtSecrets()

	_, _, err := s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "short1",
	})
	s.Require().ErrorIs(err, validator.ErrPasswordTooShort)

	_, _, err = s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "onlyletters",
	})
	s.Require().ErrorIs(err, validator.ErrPasswordTooWeak)
}

func (s *IntegrationTestSuite) TestRegister_EmailTaken() {
	s.setJwtSecrets()

	_, _, err := s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "sup3rsecret",
	})
	s.Require().NoError(err)

	_, _, err = s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Other",
		Email:    "amine@example.com",
		Password: "an0thersecret",
	})
	s.Require().ErrorIs(err, repository.ErrEmailTaken)
}

func (s *IntegrationTestSuite) TestLogin_Success() {
	s.setJwtSecrets()

	_, _, err := s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "sup3rsecret",
	})
	s.Require().NoError(err)

	user, tokens, err := s.AuthService.Login(s.Ctx, &service.LoginInput{
		Email:    "amine@example.com",
		Password: "sup3rsecret",
	})
	s.Require().NoError(err)
	s.Require().Equal("amine@example.com", user.Email)
	s.Require().NotEmpty(tokens.AccessToken)
}

func (s *IntegrationTestSuite) TestLogin_WrongPassword() {
	s.setJwtSecrets()

	_, _, err := s.AuthService.Register(s.Ctx, &service.RegisterInput{
		Name:     "Amine",
		Email:    "amine@example.com",
		Password: "sup3rsecret",
	})
	s.Require().NoError(err)

	_, _, err = s.AuthService.Login(s.Ctx, &service.LoginInput{
		Email:    "amine@example.com",
		Password: "wr0ngpassword",
	})
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *IntegrationTestSuite) TestLogin_UnknownEmail() {
	s.setJwtSecrets()

	_, _, err := s.AuthService.Login(s.Ctx, &service.LoginInput{
		Email:    "nobody@example.com",
		Password: "sup3rsecret",
	})
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}
