package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/clock"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/goroutine"
	"github.com/hireline/hireline/internal/pkg/hash"
	"github.com/hireline/hireline/internal/pkg/idempotency"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/storage"
	"github.com/hireline/hireline/internal/pkg/validator"
)

type fakeDB struct {
	accounts map[int64]*entity.Account
	byEmail  map[string]*entity.Account
	logins   map[string]*entity.AccountLoginInfo
	creds    map[int64]*entity.AccountCredential

	created     []entity.NewAccount
	createdHash map[int64]string
	createErr   error

	passwords        map[int64]string
	profiles         map[int64][2]string
	resumeURLs       map[int64]string
	updateProfileErr error

	listAccounts []entity.Account
	listTotal    int64
	lastFilter   entity.AccountListFilter
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		accounts:    map[int64]*entity.Account{},
		byEmail:     map[string]*entity.Account{},
		logins:      map[string]*entity.AccountLoginInfo{},
		creds:       map[int64]*entity.AccountCredential{},
		createdHash: map[int64]string{},
		passwords:   map[int64]string{},
		profiles:    map[int64][2]string{},
		resumeURLs:  map[int64]string{},
	}
}

func (f *fakeDB) GetAccountByID(_ context.Context, id int64) (*entity.Account, error) {
	acc, ok := f.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeDB) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	acc, ok := f.byEmail[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeDB) GetAccountLoginInfo(_ context.Context, email, phone string) (*entity.AccountLoginInfo, error) {
	key := email
	if key == "" {
		key = phone
	}
	info, ok := f.logins[key]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (f *fakeDB) GetAccountCredential(_ context.Context, accountID int64) (*entity.AccountCredential, error) {
	cred, ok := f.creds[accountID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *cred
	return &cp, nil
}

func (f *fakeDB) ListAccounts(_ context.Context, filter entity.AccountListFilter) ([]entity.Account, int64, error) {
	f.lastFilter = filter
	return f.listAccounts, f.listTotal, nil
}

func (f *fakeDB) CreateAccount(_ context.Context, acc entity.NewAccount, hashed string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, acc)
	f.createdHash[acc.ID] = hashed
	return nil
}

func (f *fakeDB) UpdatePassword(_ context.Context, accountID int64, hashed string) error {
	f.passwords[accountID] = hashed
	return nil
}

func (f *fakeDB) UpdateProfile(_ context.Context, accountID int64, fullName, phone string) error {
	if f.updateProfileErr != nil {
		return f.updateProfileErr
	}
	if _, ok := f.accounts[accountID]; !ok {
		return goerror.ErrNotFound
	}
	f.profiles[accountID] = [2]string{fullName, phone}
	return nil
}

func (f *fakeDB) UpdateResumeURL(_ context.Context, accountID int64, resumeURL string) error {
	if _, ok := f.accounts[accountID]; !ok {
		return goerror.ErrNotFound
	}
	f.resumeURLs[accountID] = resumeURL
	return nil
}

// memOtpStore is an in-memory stand-in for the redis-backed challenge store.
type memOtpStore struct {
	m map[string]entity.OtpChallenge

	upsertErr error
	findErr   error
}

func newMemOtpStore() *memOtpStore {
	return &memOtpStore{m: map[string]entity.OtpChallenge{}}
}

func (s *memOtpStore) Upsert(_ context.Context, ch entity.OtpChallenge) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.m[ch.Email] = ch
	return nil
}

func (s *memOtpStore) Find(_ context.Context, email string) (*entity.OtpChallenge, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	ch, ok := s.m[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := ch
	return &cp, nil
}

func (s *memOtpStore) IncrementAttempts(_ context.Context, email string) (int64, error) {
	ch, ok := s.m[email]
	if !ok {
		return 0, goerror.ErrNotFound
	}
	ch.Attempts++
	s.m[email] = ch
	return ch.Attempts, nil
}

func (s *memOtpStore) MarkVerified(_ context.Context, email string) error {
	ch, ok := s.m[email]
	if !ok {
		return goerror.ErrNotFound
	}
	ch.Verified = true
	s.m[email] = ch
	return nil
}

func (s *memOtpStore) Delete(_ context.Context, email string) error {
	delete(s.m, email)
	return nil
}

type sentOtp struct {
	to        string
	code      string
	expiresIn string
}

type fakeNotifier struct {
	sent []sentOtp
	err  error
}

func (f *fakeNotifier) SendOtp(_ context.Context, to, code, expiresIn string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOtp{to: to, code: code, expiresIn: expiresIn})
	return nil
}

// fakeMessaging is safe for the async publish path; assertions must run
// after goroutine.Manager.Wait.
type fakeMessaging struct {
	registered      []UserRegisteredEvent
	passwordChanged []PasswordChangedEvent
	err             error
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, msg)
	return nil
}

func (f *fakeMessaging) PublishPasswordChanged(_ context.Context, msg PasswordChangedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.passwordChanged = append(f.passwordChanged, msg)
	return nil
}

type fakeIdemp struct {
	done map[string]bool
}

func (f *fakeIdemp) Acquire(_ context.Context, _ string, _ time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdemp) MarkCompleted(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *fakeIdemp) MarkFailed(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *fakeIdemp) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if f.done[key] {
		return idempotency.ErrAlreadyCompleted
	}
	if err := fn(ctx); err != nil {
		return err
	}
	f.done[key] = true
	return nil
}

type fakeCoder struct {
	codes    []string
	i        int
	lifetime time.Duration
	err      error
}

func (f *fakeCoder) Generate() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	code := f.codes[f.i]
	if f.i < len(f.codes)-1 {
		f.i++
	}
	return code, nil
}

func (f *fakeCoder) Lifetime() time.Duration {
	return f.lifetime
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

type fakeHash struct{}

func (fakeHash) Hash(plaintext string) ([]byte, error) {
	return []byte("h!" + plaintext), nil
}

func (fakeHash) Verify(hashed, plaintext string) bool {
	return hashed == "h!"+plaintext
}

type fakeJWT struct {
	prefix string
	tokens map[string]jwt.Claims
	errs   map[string]error
	genErr error
}

func (f *fakeJWT) Generate(uid int64, email, role string) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return fmt.Sprintf("%s:%d:%s:%s", f.prefix, uid, email, role), nil
}

func (f *fakeJWT) Verify(tokenStr string) (jwt.Claims, error) {
	if err, ok := f.errs[tokenStr]; ok {
		return jwt.Claims{}, err
	}
	clm, ok := f.tokens[tokenStr]
	if !ok {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return clm, nil
}

type fakeStorage struct {
	storage.Storage

	bucket string
	key    string
	data   []byte
	err    error
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, _ storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if f.err != nil {
		return storage.ObjectInfo{}, f.err
	}
	f.bucket, f.key, f.data = bucket, key, data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

type fakeNumberID struct {
	next int64
}

func (f *fakeNumberID) Generate() int64 {
	f.next++
	return f.next
}

type fakeStringID struct {
	v string
}

func (f *fakeStringID) Generate() string {
	return f.v
}

type fakeConfig struct {
	config.Config

	bools   map[string]bool
	ints    map[string]int
	int64s  map[string]int64
	strs    map[string]string
	minutes map[string]time.Duration
	days    map[string]time.Duration
}

func (f *fakeConfig) GetBool(key string) bool            { return f.bools[key] }
func (f *fakeConfig) GetInt(key string) int              { return f.ints[key] }
func (f *fakeConfig) GetInt64(key string) int64          { return f.int64s[key] }
func (f *fakeConfig) GetString(key string) string        { return f.strs[key] }
func (f *fakeConfig) GetMinute(key string) time.Duration { return f.minutes[key] }
func (f *fakeConfig) GetDay(key string) time.Duration    { return f.days[key] }

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("casbin model: %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("casbin enforcer: %v", err)
	}
	if _, err := e.AddPolicy("admin", "identity:users", "read"); err != nil {
		t.Fatalf("casbin policy: %v", err)
	}
	if _, err := e.AddGroupingPolicy("superAdmin", "admin"); err != nil {
		t.Fatalf("casbin grouping: %v", err)
	}
	return e
}

type testEnv struct {
	uc         *Usecase
	db         *fakeDB
	otp        *memOtpStore
	notif      *fakeNotifier
	mq         *fakeMessaging
	idemp      *fakeIdemp
	coder      *fakeCoder
	clock      *fakeClock
	cfg        *fakeConfig
	store      *fakeStorage
	accessJWT  *fakeJWT
	refreshJWT *fakeJWT
	routine    *goroutine.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	env := &testEnv{
		db:    newFakeDB(),
		otp:   newMemOtpStore(),
		notif: &fakeNotifier{},
		mq:    &fakeMessaging{},
		idemp: &fakeIdemp{done: map[string]bool{}},
		coder: &fakeCoder{codes: []string{"482913"}, lifetime: 5 * time.Minute},
		clock: &fakeClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)},
		cfg: &fakeConfig{
			bools: map[string]bool{
				"modules.identity.require_verified_email": true,
			},
			ints: map[string]int{
				"modules.identity.otp_max_attempts": 3,
			},
			int64s: map[string]int64{
				"modules.identity.resume_max_size_bytes": 64,
			},
			strs: map[string]string{
				"modules.identity.resume_bucket":   "resumes",
				"modules.identity.resume_base_url": "https://cdn.example.com/resumes",
			},
			minutes: map[string]time.Duration{
				"jwt.access.ttl_minutes": 15 * time.Minute,
			},
			days: map[string]time.Duration{
				"jwt.refresh.ttl_days": 7 * 24 * time.Hour,
			},
		},
		store:      &fakeStorage{},
		accessJWT:  &fakeJWT{prefix: "access", tokens: map[string]jwt.Claims{}},
		refreshJWT: &fakeJWT{prefix: "refresh", tokens: map[string]jwt.Claims{}},
		routine:    goroutine.NewManager(4),
	}

	env.uc = New(Dependency{
		RepoDB:        env.db,
		OtpStore:      env.otp,
		RepoMessaging: env.mq,
		Notifier:      env.notif,
		Idempotency:   env.idemp,
		Validator:     v,
		Config:        env.cfg,
		Storage:       env.store,
		Password:      fakeHash{},
		HMAC:          hash.NewHMACSHA256("test-otp-secret"),
		UID:           &fakeNumberID{},
		ObjectID:      &fakeStringID{v: "6f1e8a7e-resume"},
		OtpCoder:      env.coder,
		Clock:         env.clock,
		AccessJWT:     env.accessJWT,
		RefreshJWT:    env.refreshJWT,
		Instrument:    instrument.NewNoop(),
		Enforcer:      newTestEnforcer(t),
		Goroutine:     env.routine,
	})

	return env
}

// waitEvents drains the async publish path before event assertions.
func (e *testEnv) waitEvents(t *testing.T) {
	t.Helper()
	if err := e.routine.Wait(); err != nil {
		t.Logf("background tasks: %v", err)
	}
}

func authCtx(clm jwt.Claims) context.Context {
	return jwt.SetAuth(context.Background(), clm)
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with code %v, got nil", want)
	}
	var ge *goerror.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	if ge.Code() != want {
		t.Fatalf("expected code %v, got %v (%v)", want, ge.Code(), err)
	}
}

var _ clock.Clocker = (*fakeClock)(nil)
