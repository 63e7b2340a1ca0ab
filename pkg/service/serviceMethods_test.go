package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IPampurin/LinkKeeper/pkg/configuration"
	"github.com/IPampurin/LinkKeeper/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

// конфигурация жизненного цикла для тестов (значения из env-default)
func testLifecycleConfig() configuration.ConfLifecycle {
	return configuration.ConfLifecycle{
		PopularThreshold:    10,
		AnonDefaultLifetime: 168 * time.Hour,
		AnonMaxLifetime:     720 * time.Hour,
		CodeLength:          10,
		GenerateAttempts:    20,
	}
}

// testLogger возвращает логгер для тестов
func testLogger(t *testing.T) logger.Logger {
	log, err := logger.InitLogger(logger.ZapEngine, "LinkKeeperTest", "", logger.WithLevel(logger.InfoLevel))
	require.NoError(t, err)
	return log
}

// fakeLinkStore — хранилище ссылок в памяти, реализует db.LinkMethods
type fakeLinkStore struct {
	mu              sync.Mutex
	links           map[string]*db.Link
	insertConflicts int  // сколько ближайших вставок вернут ErrShortCodeTaken
	hidePrecheck    bool // прячем записи от предварительного SELECT, оставляя конфликт на вставке
	getCalls        int
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*db.Link)}
}

func (f *fakeLinkStore) CreateLink(ctx context.Context, link *db.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertConflicts > 0 {
		f.insertConflicts--
		return db.ErrShortCodeTaken
	}
	if _, ok := f.links[link.ShortCode]; ok {
		return db.ErrShortCodeTaken
	}
	link.CreatedAt = time.Now()
	f.links[link.ShortCode] = link
	return nil
}

func (f *fakeLinkStore) GetLinkByShortCode(ctx context.Context, shortCode string) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.hidePrecheck {
		return nil, nil
	}
	link, ok := f.links[shortCode]
	if !ok {
		return nil, nil
	}
	return link, nil
}

func (f *fakeLinkStore) GetLinkByOriginalURL(ctx context.Context, originalURL string) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.OriginalURL == originalURL {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStore) UpdateOriginalURL(ctx context.Context, linkID uuid.UUID, originalURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.ID == linkID {
			link.OriginalURL = originalURL
			return nil
		}
	}
	return nil
}

func (f *fakeLinkStore) UpdateExpiration(ctx context.Context, linkID uuid.UUID, expiresAt sql.NullTime) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.ID == linkID {
			link.ExpiresAt = expiresAt
			return nil
		}
	}
	return nil
}

func (f *fakeLinkStore) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, link := range f.links {
		if link.ID == linkID {
			delete(f.links, code)
			return nil
		}
	}
	return nil
}

func (f *fakeLinkStore) DeleteUnusedLinks(ctx context.Context, cutoff, now time.Time) (int64, error) {
	return 0, nil
}

// fakeStatsStore — статистика в памяти, реализует db.StatsMethods
type fakeStatsStore struct {
	stats map[uuid.UUID]*db.VisitStats
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{stats: make(map[uuid.UUID]*db.VisitStats)}
}

func (f *fakeStatsStore) RegisterVisit(ctx context.Context, linkID uuid.UUID, visitedAt time.Time) (int, error) {
	entry, ok := f.stats[linkID]
	if !ok {
		entry = &db.VisitStats{LinkID: linkID}
		f.stats[linkID] = entry
	}
	entry.VisitCount++
	entry.LastVisitedAt = sql.NullTime{Time: visitedAt, Valid: true}
	return entry.VisitCount, nil
}

func (f *fakeStatsStore) GetStatsByLinkID(ctx context.Context, linkID uuid.UUID) (*db.VisitStats, error) {
	entry, ok := f.stats[linkID]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// fakeCache — кэш в памяти, реализует cache.CacheMethods
type fakeCache struct {
	data     map[string]string
	failGet  bool
	failSet  bool
	failDel  bool
	setCalls int
	delCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) GetDestination(ctx context.Context, shortCode string) (string, error) {
	if f.failGet {
		return "", errors.New("кэш недоступен")
	}
	return f.data[shortCode], nil
}

func (f *fakeCache) SetDestination(ctx context.Context, shortCode, originalURL string) error {
	f.setCalls++
	if f.failSet {
		return errors.New("кэш недоступен")
	}
	f.data[shortCode] = originalURL
	return nil
}

func (f *fakeCache) DeleteDestination(ctx context.Context, shortCode string) error {
	f.delCalls++
	if f.failDel {
		return errors.New("кэш недоступен")
	}
	delete(f.data, shortCode)
	return nil
}

// newTestService собирает сервис на фейковых зависимостях
func newTestService(links *fakeLinkStore, stats *fakeStatsStore, cacheStore *fakeCache) *Service {
	svc := &Service{
		link:  links,
		stats: stats,
		cfg:   testLifecycleConfig(),
	}
	if cacheStore != nil {
		svc.cache = cacheStore
	}
	return svc
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestCreateAnonymousDefaultExpiration(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)

	// анонимная ссылка без срока получает срок "сейчас + 7 дней"
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), *link.ExpiresAt, time.Minute)
	assert.Len(t, link.ShortCode, 10)
}

func TestCreateAnonymousExpirationTooFar(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	tooFar := time.Now().Add(45 * 24 * time.Hour)
	_, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", timePtr(tooFar), nil)
	assert.ErrorIs(t, err, ErrExpirationTooFar)
}

func TestCreateAnonymousExpirationWithinLimit(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	requested := time.Now().Add(10 * 24 * time.Hour)
	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", timePtr(requested), nil)
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)
	assert.WithinDuration(t, requested, *link.ExpiresAt, time.Second)
}

func TestCreateOwnedWithoutExpiration(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	// владельческая ссылка без срока остаётся бессрочной
	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)
	assert.Nil(t, link.ExpiresAt)
}

func TestCreateCustomAliasTaken(t *testing.T) {

	links := newFakeLinkStore()
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	_, err := svc.CreateShortLink(context.Background(), log, "https://example.com/first", "promo", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	_, err = svc.CreateShortLink(context.Background(), log, "https://example.com/second", "promo", nil, strPtr("other@example.com"))
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestCreateCustomAliasInsertRace(t *testing.T) {

	// предварительная проверка промахивается, конфликт ловится на вставке:
	// гонка за один alias не должна ни падать, ни ретраиться
	links := newFakeLinkStore()
	links.hidePrecheck = true
	links.insertConflicts = 1
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	_, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "promo", nil, strPtr("user@example.com"))
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestCreateGeneratedRetriesOnInsertConflict(t *testing.T) {

	// две проигранные гонки на вставке, третья попытка проходит
	links := newFakeLinkStore()
	links.insertConflicts = 2
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)
	assert.Len(t, link.ShortCode, 10)
	assert.Len(t, links.links, 1)
}

func TestCreateGeneratedExhausted(t *testing.T) {

	links := newFakeLinkStore()
	links.insertConflicts = 1000 // конфликтов больше, чем лимит попыток
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	_, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestResolveNotFound(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	_, err := svc.Resolve(context.Background(), log, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveIncrementsStats(t *testing.T) {

	links := newFakeLinkStore()
	stats := newFakeStatsStore()
	cacheStore := newFakeCache()
	svc := newTestService(links, stats, cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		destination, err := svc.Resolve(context.Background(), log, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", destination)
	}

	entry := stats.stats[link.ID]
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.VisitCount)
	assert.True(t, entry.LastVisitedAt.Valid)

	// до порога популярности кэш не пополняется
	assert.Zero(t, cacheStore.setCalls)
}

func TestResolveThresholdPopulatesCache(t *testing.T) {

	links := newFakeLinkStore()
	stats := newFakeStatsStore()
	cacheStore := newFakeCache()
	svc := newTestService(links, stats, cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	// одиннадцатый переход пересекает порог (>10) и кладёт ссылку в кэш
	for i := 0; i < 11; i++ {
		_, err := svc.Resolve(context.Background(), log, link.ShortCode)
		require.NoError(t, err)
	}
	assert.Equal(t, "https://example.com/page", cacheStore.data[link.ShortCode])

	// следующий переход обслуживается кэшем: счётчик не растёт
	getCallsBefore := links.getCalls
	destination, err := svc.Resolve(context.Background(), log, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", destination)
	assert.Equal(t, 11, stats.stats[link.ID].VisitCount)
	assert.Equal(t, getCallsBefore, links.getCalls)
}

func TestResolveCacheHitSkipsStats(t *testing.T) {

	links := newFakeLinkStore()
	stats := newFakeStatsStore()
	cacheStore := newFakeCache()
	cacheStore.data["hotlink"] = "https://example.com/hot"
	svc := newTestService(links, stats, cacheStore)
	log := testLogger(t)

	destination, err := svc.Resolve(context.Background(), log, "hotlink")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hot", destination)
	assert.Empty(t, stats.stats)
}

func TestResolveCacheFailureTreatedAsMiss(t *testing.T) {

	links := newFakeLinkStore()
	stats := newFakeStatsStore()
	cacheStore := newFakeCache()
	cacheStore.failGet = true
	svc := newTestService(links, stats, cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	destination, err := svc.Resolve(context.Background(), log, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", destination)
	assert.Equal(t, 1, stats.stats[link.ID].VisitCount)
}

func TestUpdateForbidden(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	err = svc.UpdateShortLink(context.Background(), log, link.ShortCode, "https://example.com/new", strPtr("other@example.com"))
	assert.ErrorIs(t, err, ErrForbidden)

	// анонимный вызов тоже не проходит для владельческой ссылки
	err = svc.UpdateShortLink(context.Background(), log, link.ShortCode, "https://example.com/new", nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateInvalidatesCache(t *testing.T) {

	links := newFakeLinkStore()
	cacheStore := newFakeCache()
	svc := newTestService(links, newFakeStatsStore(), cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/old", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)
	cacheStore.data[link.ShortCode] = "https://example.com/old"

	err = svc.UpdateShortLink(context.Background(), log, link.ShortCode, "https://example.com/new", strPtr("user@example.com"))
	require.NoError(t, err)

	// запись кэша удалена, следующий резолв отдаёт свежий URL из БД
	assert.Equal(t, 1, cacheStore.delCalls)
	assert.NotContains(t, cacheStore.data, link.ShortCode)

	destination, err := svc.Resolve(context.Background(), log, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new", destination)
}

func TestUpdateSucceedsWhenInvalidationFails(t *testing.T) {

	links := newFakeLinkStore()
	cacheStore := newFakeCache()
	cacheStore.failDel = true
	svc := newTestService(links, newFakeStatsStore(), cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/old", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	// сбой инвалидации после успешной записи в БД не отменяет операцию
	err = svc.UpdateShortLink(context.Background(), log, link.ShortCode, "https://example.com/new", strPtr("user@example.com"))
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/new", links.links[link.ShortCode].OriginalURL)
}

func TestDeleteRemovesLinkAndInvalidatesCache(t *testing.T) {

	links := newFakeLinkStore()
	cacheStore := newFakeCache()
	svc := newTestService(links, newFakeStatsStore(), cacheStore)
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)
	cacheStore.data[link.ShortCode] = "https://example.com/page"

	err = svc.DeleteShortLink(context.Background(), log, link.ShortCode, strPtr("user@example.com"))
	require.NoError(t, err)
	assert.Empty(t, links.links)
	assert.NotContains(t, cacheStore.data, link.ShortCode)

	_, err = svc.Resolve(context.Background(), log, link.ShortCode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteForbidden(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	err = svc.DeleteShortLink(context.Background(), log, link.ShortCode, strPtr("other@example.com"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateExpiration(t *testing.T) {

	links := newFakeLinkStore()
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	err = svc.UpdateExpiration(context.Background(), log, link.ShortCode, nil, strPtr("other@example.com"))
	assert.ErrorIs(t, err, ErrForbidden)

	newExpiration := time.Now().Add(24 * time.Hour)
	err = svc.UpdateExpiration(context.Background(), log, link.ShortCode, timePtr(newExpiration), strPtr("user@example.com"))
	require.NoError(t, err)

	stored := links.links[link.ShortCode]
	require.True(t, stored.ExpiresAt.Valid)
	assert.WithinDuration(t, newExpiration, stored.ExpiresAt.Time, time.Second)

	// сброс срока делает ссылку бессрочной
	err = svc.UpdateExpiration(context.Background(), log, link.ShortCode, nil, strPtr("user@example.com"))
	require.NoError(t, err)
	assert.False(t, links.links[link.ShortCode].ExpiresAt.Valid)
}

func TestLinkStatsZeroWithoutVisits(t *testing.T) {

	stats := newFakeStatsStore()
	svc := newTestService(newFakeLinkStore(), stats, newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	response, err := svc.LinkStats(context.Background(), log, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, 0, response.VisitCount)
	assert.Nil(t, response.LastVisitedAt)

	// чтение статистики не создаёт запись
	assert.Empty(t, stats.stats)
}

func TestLinkStatsNotFound(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	_, err := svc.LinkStats(context.Background(), log, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnonymousOwnerMutatesAnonymousLink(t *testing.T) {

	links := newFakeLinkStore()
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	link, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, nil)
	require.NoError(t, err)

	// отсутствие владельца с обеих сторон считается совпадением
	err = svc.UpdateShortLink(context.Background(), log, link.ShortCode, "https://example.com/new", nil)
	assert.NoError(t, err)
}

func TestFindByOriginalURL(t *testing.T) {

	svc := newTestService(newFakeLinkStore(), newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	created, err := svc.CreateShortLink(context.Background(), log, "https://example.com/page", "", nil, strPtr("user@example.com"))
	require.NoError(t, err)

	found, err := svc.FindByOriginalURL(context.Background(), log, "https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, created.ShortCode, found.ShortCode)

	_, err = svc.FindByOriginalURL(context.Background(), log, "https://example.com/unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCustomAliasSingleWinner(t *testing.T) {

	// много горутин претендуют на один alias: успешной должна быть ровно одна
	links := newFakeLinkStore()
	svc := newTestService(links, newFakeStatsStore(), newFakeCache())
	log := testLogger(t)

	const racers = 10
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func(n int) {
			_, err := svc.CreateShortLink(context.Background(), log,
				fmt.Sprintf("https://example.com/page-%d", n), "promo", nil, strPtr("user@example.com"))
			results <- err
		}(i)
	}

	var succeeded int
	for i := 0; i < racers; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAliasTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}
