package service

import (
	"context"
	"errors"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims is the JWT payload. Business-scoped permissions are resolved from the
// employee binding per request, so only identity travels in the token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo     repository.UserRepository
	secret       []byte
	expiration   time.Duration
	refreshAfter time.Duration
}

func NewAuthService(userRepo repository.UserRepository, secret string, expirationHours, refreshHours int) AuthService {
	return &authService{
		userRepo:     userRepo,
		secret:       []byte(secret),
		expiration:   time.Duration(expirationHours) * time.Hour,
		refreshAfter: time.Duration(refreshHours) * time.Hour,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apierror.E(apierror.KindConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UserResponse{ID: user.ID.String(), Email: user.Email, Name: user.Name}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apierror.E(apierror.KindNotAuthorized, "invalid credentials")
	}
	if !user.Active {
		return nil, apierror.E(apierror.KindNotAuthorized, "account is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.E(apierror.KindNotAuthorized, "invalid credentials")
	}
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims, err := s.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, apierror.E(apierror.KindNotAuthorized, "invalid refresh token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apierror.E(apierror.KindNotAuthorized, "invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || !user.Active {
		return nil, apierror.E(apierror.KindNotAuthorized, "account not found or disabled")
	}
	return s.issueTokens(user)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *authService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	access, err := s.sign(user, s.expiration)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, s.refreshAfter)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.expiration.Seconds()),
		User:         dto.UserResponse{ID: user.ID.String(), Email: user.Email, Name: user.Name},
	}, nil
}

func (s *authService) sign(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
