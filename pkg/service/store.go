package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"go.uber.org/zap"
)

type BulkAction string

const (
	BulkActivate BulkAction = "activate"
	BulkPause    BulkAction = "pause"
)

// AdminAccount is the single configured platform operator.
type AdminAccount struct {
	Username     string
	PasswordHash string
}

// Session is a successful login.
type Session struct {
	Token string        `json:"token"`
	Role  auth.Role     `json:"role"`
	Store *models.Store `json:"store,omitempty"`
}

// NewStore is an admin's store creation request. An empty passcode is
// generated.
type NewStore struct {
	StoreID      string
	Name         string
	Status       models.StoreStatus
	Authorized   bool
	WhatsApp     string
	ProfileEmail string
	LogoURL      string
	Parish       string
	Passcode     string
}

// Credentials carries a plaintext passcode. It is returned once and never
// stored.
type Credentials struct {
	Store    *models.Store `json:"store"`
	Passcode string        `json:"passcode"`
}

type BulkFailure struct {
	StoreID string `json:"store_id"`
	Error   string `json:"error"`
}

// BulkResult reports each store of a bulk call. Succeeded rows stay applied
// when others fail.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
	Passcodes []Credentials `json:"passcodes,omitempty"`
}

func (r *BulkResult) failedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.StoreID)
	}
	return ids
}

type StoreService interface {
	Login(ctx context.Context, login, passcode string) (*Session, error)
	AdminLogin(ctx context.Context, username, password string) (*Session, error)

	CreateStore(ctx context.Context, scope Scope, in NewStore) (*Credentials, error)
	GetStore(ctx context.Context, scope Scope, storeID string) (*models.Store, error)
	// PublicStore returns the store only when it is active and authorized.
	PublicStore(ctx context.Context, storeID string) (*models.Store, error)
	UpdateStore(ctx context.Context, scope Scope, storeID string, patch models.StorePatch) (*models.Store, error)
	// UpdateProfile applies the merchant-editable subset of patch.
	UpdateProfile(ctx context.Context, scope Scope, patch models.StorePatch) (*models.Store, error)
	ListStores(ctx context.Context, scope Scope, filter models.StoreFilter) (*Page[models.Store], error)

	ResetPasscode(ctx context.Context, scope Scope, storeID string) (*Credentials, error)
	BulkUpdateStatus(ctx context.Context, scope Scope, storeIDs []string, action BulkAction) (*BulkResult, error)
	BulkResetPasscodes(ctx context.Context, scope Scope, storeIDs []string) (*BulkResult, error)
}

func NewStoreService(
	stores models.StoreRepository,
	passcodes auth.PasscodeManager,
	tokens *auth.TokenIssuer,
	admin AdminAccount,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) StoreService {
	return &storeService{
		stores:     stores,
		passcodes:  passcodes,
		tokens:     tokens,
		admin:      admin,
		dispatcher: dispatcher,
		logger:     logger.Named("store-service"),
		opts:       buildOptions(opts),
		generate:   auth.GeneratePasscode,
	}
}

type storeService struct {
	stores     models.StoreRepository
	passcodes  auth.PasscodeManager
	tokens     *auth.TokenIssuer
	admin      AdminAccount
	dispatcher events.Dispatcher
	logger     *zap.Logger
	opts       options
	generate   func() (string, error)
}

func (s *storeService) Login(ctx context.Context, login, passcode string) (*Session, error) {
	if strings.TrimSpace(login) == "" || passcode == "" {
		return nil, ErrInvalidCredentials
	}
	store, err := s.stores.FindByLogin(ctx, login)
	if errors.Is(err, models.ErrStoreNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if store.PasscodeHash == "" {
		return nil, ErrInvalidCredentials
	}
	ok, err := s.passcodes.Check(store.PasscodeHash, passcode)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("Merchant login rejected", zap.String("store_id", store.StoreID))
		return nil, ErrInvalidCredentials
	}
	if store.Status != models.StoreActive {
		return nil, ErrStoreInactive
	}

	token, err := s.tokens.IssueMerchant(store.StoreID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Merchant logged in", zap.String("store_id", store.StoreID))
	return &Session{Token: token, Role: auth.RoleMerchant, Store: store}, nil
}

func (s *storeService) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	if s.admin.Username == "" || s.admin.PasswordHash == "" || username != s.admin.Username {
		return nil, ErrInvalidCredentials
	}
	ok, err := s.passcodes.Check(s.admin.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("Admin login rejected", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.IssueAdmin(username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: auth.RoleAdmin}, nil
}

func validateStore(st *models.Store) error {
	var v validator
	v.check(st.StoreID != "", "store_id", "is required")
	v.check(!strings.ContainsAny(st.StoreID, " /?#"), "store_id", "must not contain spaces or URL separators")
	v.check(strings.TrimSpace(st.Name) != "", "name", "is required")
	v.check(st.Status.Valid(), "status", "must be active, paused, onboarding or flagged")
	return v.err()
}

func (s *storeService) CreateStore(ctx context.Context, scope Scope, in NewStore) (*Credentials, error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	st := &models.Store{
		StoreID:      strings.TrimSpace(in.StoreID),
		Name:         strings.TrimSpace(in.Name),
		Status:       in.Status,
		Authorized:   in.Authorized,
		WhatsApp:     in.WhatsApp,
		ProfileEmail: strings.TrimSpace(in.ProfileEmail),
		LogoURL:      in.LogoURL,
		Parish:       in.Parish,
	}
	if st.Status == "" {
		st.Status = models.StoreOnboarding
	}
	if err := validateStore(st); err != nil {
		return nil, err
	}

	passcode := in.Passcode
	if passcode == "" {
		var err error
		if passcode, err = s.generate(); err != nil {
			return nil, err
		}
	}
	hash, err := s.passcodes.Hash(passcode)
	if err != nil {
		return nil, err
	}
	st.PasscodeHash = hash
	st.CreatedAt = s.opts.now()
	st.UpdatedAt = st.CreatedAt

	if err := s.stores.Create(ctx, st); err != nil {
		return nil, err
	}
	s.changed(ctx, scope, st)
	return &Credentials{Store: st, Passcode: passcode}, nil
}

func (s *storeService) GetStore(ctx context.Context, scope Scope, storeID string) (*models.Store, error) {
	storeID, err := scope.storeFor(storeID)
	if err != nil {
		return nil, err
	}
	return s.stores.Find(ctx, storeID)
}

func (s *storeService) PublicStore(ctx context.Context, storeID string) (*models.Store, error) {
	st, err := s.stores.Find(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !st.Public() {
		return nil, models.ErrStoreNotFound
	}
	return st, nil
}

func (s *storeService) UpdateStore(ctx context.Context, scope Scope, storeID string, patch models.StorePatch) (*models.Store, error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	return s.update(ctx, scope, storeID, patch)
}

func (s *storeService) UpdateProfile(ctx context.Context, scope Scope, patch models.StorePatch) (*models.Store, error) {
	storeID, err := scope.storeFor("")
	if err != nil {
		return nil, err
	}
	if scope.Admin {
		return nil, ErrScope
	}
	// status and authorization belong to the platform
	patch.Status = nil
	patch.Authorized = nil
	return s.update(ctx, scope, storeID, patch)
}

func (s *storeService) update(ctx context.Context, scope Scope, storeID string, patch models.StorePatch) (*models.Store, error) {
	st, err := s.stores.Find(ctx, storeID)
	if err != nil {
		return nil, err
	}
	patch.Apply(st)
	if err := validateStore(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.opts.now()
	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	s.changed(ctx, scope, st)
	return st, nil
}

func (s *storeService) ListStores(ctx context.Context, scope Scope, filter models.StoreFilter) (*Page[models.Store], error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	filter.Page = models.NewPage(filter.Limit, filter.Offset)
	stores, total, err := s.stores.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(stores, total, filter.Page), nil
}

func (s *storeService) ResetPasscode(ctx context.Context, scope Scope, storeID string) (*Credentials, error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	return s.resetPasscode(ctx, scope, storeID)
}

func (s *storeService) resetPasscode(ctx context.Context, scope Scope, storeID string) (*Credentials, error) {
	st, err := s.stores.Find(ctx, storeID)
	if err != nil {
		return nil, err
	}
	passcode, err := s.generate()
	if err != nil {
		return nil, err
	}
	if st.PasscodeHash, err = s.passcodes.Hash(passcode); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.opts.now()
	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("Passcode reset", zap.String("store_id", storeID), zap.String("actor", scope.Actor))
	s.dispatch(ctx, events.PasscodeReset{StoreID: storeID, Actor: scope.Actor, At: st.UpdatedAt})
	return &Credentials{Store: st, Passcode: passcode}, nil
}

func bulkIDs(storeIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(storeIDs))
	ids := make([]string, 0, len(storeIDs))
	for _, id := range storeIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, invalid("store_ids", "at least one store id is required")
	}
	return ids, nil
}

func (s *storeService) BulkUpdateStatus(ctx context.Context, scope Scope, storeIDs []string, action BulkAction) (*BulkResult, error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	var status models.StoreStatus
	switch action {
	case BulkActivate:
		status = models.StoreActive
	case BulkPause:
		status = models.StorePaused
	default:
		return nil, invalid("action", "must be activate or pause")
	}
	ids, err := bulkIDs(storeIDs)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		if _, err := s.update(ctx, scope, id, models.StorePatch{Status: &status}); err != nil {
			res.Failed = append(res.Failed, BulkFailure{StoreID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	s.bulkDone(ctx, scope, string(action), res)
	return res, nil
}

func (s *storeService) BulkResetPasscodes(ctx context.Context, scope Scope, storeIDs []string) (*BulkResult, error) {
	if !scope.Admin {
		return nil, ErrScope
	}
	ids, err := bulkIDs(storeIDs)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}, Passcodes: []Credentials{}}
	for _, id := range ids {
		creds, err := s.resetPasscode(ctx, scope, id)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{StoreID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
		res.Passcodes = append(res.Passcodes, *creds)
	}
	s.bulkDone(ctx, scope, "reset_passcodes", res)
	return res, nil
}

func (s *storeService) bulkDone(ctx context.Context, scope Scope, action string, res *BulkResult) {
	s.logger.Info("Bulk store update",
		zap.String("action", action),
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)),
		zap.String("actor", scope.Actor))
	s.dispatch(ctx, events.StoresBulkUpdated{
		Action:    action,
		Succeeded: res.Succeeded,
		Failed:    res.failedIDs(),
		Actor:     scope.Actor,
		At:        s.opts.now(),
	})
}

func (s *storeService) changed(ctx context.Context, scope Scope, st *models.Store) {
	s.logger.Info("Store saved",
		zap.String("store_id", st.StoreID),
		zap.String("status", string(st.Status)),
		zap.String("actor", scope.Actor))
	s.dispatch(ctx, events.StoreChanged{
		StoreID: st.StoreID,
		Status:  string(st.Status),
		Actor:   scope.Actor,
		At:      st.UpdatedAt,
	})
}

func (s *storeService) dispatch(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger.Warn("Event dispatch failed", zap.String("type", e.Type()), zap.Error(err))
	}
}
