package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/pbkdf2"

	"vaxsched/cmd/internal/domain/entity"
	"vaxsched/cmd/internal/utils"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

const (
	saltLength      = 16
	pbkdf2Iters     = 210_000
	pbkdf2KeyLength = 32
)

type AccountRepository interface {
	FindByUsername(username string) (*entity.Account, error)
	Create(account *entity.Account) (bool, error)
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=80,nospaces"`
	Password string `json:"password" validate:"required,min=8,max=64,hasupper,haslower,hasdigit,hasspecial"`
	Role     string `json:"role" validate:"required,oneof=patient caregiver"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type DefaultAccountService struct {
	AccountRepo AccountRepository
	Validate    *validator.Validate
	Secret      string
}

func NewAccountService(accountRepo AccountRepository, validate *validator.Validate, secret string) *DefaultAccountService {
	return &DefaultAccountService{AccountRepo: accountRepo, Validate: validate, Secret: secret}
}

func (a *DefaultAccountService) Register(req *RegisterRequest) (*AccountResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		log.Errorf("failed to generate salt: %v", err)
		return nil, apierror.InternalServerError
	}

	account := &entity.Account{
		Username:  req.Username,
		Salt:      salt,
		Hash:      hashPassword(req.Password, salt),
		Role:      req.Role,
		CreatedAt: utils.NowUTC(),
	}

	created, err := a.AccountRepo.Create(account)
	if err != nil {
		log.Errorf("failed to create account %s: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}
	if !created {
		return nil, apierror.UsernameTakenError
	}
	return toAccountResponse(account), nil
}

func (a *DefaultAccountService) Login(req *LoginRequest) (*LoginResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	account, err := a.AccountRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch account %s: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}
	if account == nil {
		return nil, apierror.LoginFailedError
	}

	hash := hashPassword(req.Password, account.Salt)
	if subtle.ConstantTimeCompare(hash, account.Hash) != 1 {
		return nil, apierror.LoginFailedError
	}

	tok, err := token.Make(account.Username, account.Role, a.Secret)
	if err != nil {
		log.Errorf("failed to sign session token for %s: %v", account.Username, err)
		return nil, apierror.InternalServerError
	}
	return &LoginResponse{AccessToken: tok}, nil
}

func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iters, pbkdf2KeyLength, sha256.New)
}

func toAccountResponse(account *entity.Account) *AccountResponse {
	return &AccountResponse{
		Username:  account.Username,
		Role:      account.Role,
		CreatedAt: utils.FormatEpoch(account.CreatedAt),
	}
}
