package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// maxPasswordBytes はbcryptが受け付ける入力の最大バイト数です（文字数ではない）。
	maxPasswordBytes = 72

	// dummyPasswordHash はユーザーが存在しない場合の比較に使用するbcryptハッシュです。
	dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenIssuer は署名済みトークンの発行・再発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// GenerateToken は指定されたユーザーの署名済みトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
	// RefreshToken は既存トークンのorig_iatを引き継いだ新しいトークンを生成します。
	RefreshToken(current *entity.Token) (string, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users   UserRepository
	tokens  TokenIssuer
	revoked RevocationStore
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// revokedがnilの場合、ログアウトとリフレッシュは旧トークンを失効させません（ステートレス運用）。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, revoked RevocationStore) *authUsecase {
	return &authUsecase{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: must not exceed %d bytes", ErrPasswordTooLong, maxPasswordBytes)
	}
	return nil
}

// normalizeEmail はメールアドレスの前後の空白を除去し小文字化します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスが既に使われている場合はErrEmailAlreadyExistsを返します。
// 事前チェックをすり抜けた同時登録はストレージのユニーク制約で検出されます。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Name: name, Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時に署名済みトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		return "", ErrInvalidCredentials
	}

	token, tokenErr := u.tokens.GenerateToken(user.ID, user.Email)
	if tokenErr != nil {
		return "", fmt.Errorf("failed to generate token: %w", tokenErr)
	}

	return token, nil
}

// Profile は認証済みユーザーのレコードを返します。
func (u *authUsecase) Profile(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// Refresh は現在のトークンを新しいトークンに交換します。
// 失効リストが有効な場合、旧トークンは失効させます。
func (u *authUsecase) Refresh(ctx context.Context, current *entity.Token) (string, error) {
	if !current.CanRefresh() {
		return "", ErrTokenNotRefreshable
	}

	token, err := u.tokens.RefreshToken(current)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := u.revoke(ctx, current); err != nil {
		return "", err
	}
	return token, nil
}

// Logout は現在のセッションを無効化します。
// 失効リストがない場合はクライアント側でトークンを破棄するだけのno-opです。
func (u *authUsecase) Logout(ctx context.Context, current *entity.Token) error {
	return u.revoke(ctx, current)
}

// revoke はトークンをリフレッシュ期限まで失効リストに登録します。
func (u *authUsecase) revoke(ctx context.Context, t *entity.Token) error {
	if u.revoked == nil {
		return nil
	}
	if err := u.revoked.Revoke(ctx, t.ID, t.UserID, t.RefreshableUntil); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
