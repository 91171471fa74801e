package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/trendscouthq/trendscout/app/models"
	"github.com/trendscouthq/trendscout/internal/pkg/cache"
	"github.com/trendscouthq/trendscout/internal/pkg/database"
)

const (
	CacheKeySearchesTotal = "statistics:searches:total"
	CacheKeySearchesDaily = "statistics:searches:daily:%s" // date formatted YYYY-MM-DD
	CacheKeyUsersTotal    = "statistics:users:total"
	CacheKeyPaidUsers     = "statistics:users:paid"
	CacheExpiration       = 30 * time.Minute
)

// Data is the public counter set shown on the landing page.
type Data struct {
	TodaySearches int
	TotalSearches int
	TotalUsers    int
	PaidUsers     int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the cached counters when they are older
// than the update interval.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateStatisticsCache(); err != nil {
		log.Printf("failed to update statistics cache: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recounts everything from the database and writes the
// results to the cache.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalSearches int64
	if err := db.Model(&models.TrendSearch{}).Count(&totalSearches).Error; err != nil {
		return fmt.Errorf("count searches: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	var todaySearches int64
	if err := db.Model(&models.TrendSearch{}).
		Where("created_at >= ?", today).
		Count(&todaySearches).Error; err != nil {
		return fmt.Errorf("count today's searches: %w", err)
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	var paidUsers int64
	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusSucceeded).
		Distinct("user_id").
		Count(&paidUsers).Error; err != nil {
		return fmt.Errorf("count paid users: %w", err)
	}

	cache.Set(CacheKeySearchesTotal, strconv.FormatInt(totalSearches, 10), CacheExpiration)
	cache.Set(fmt.Sprintf(CacheKeySearchesDaily, today), strconv.FormatInt(todaySearches, 10), CacheExpiration)
	cache.Set(CacheKeyUsersTotal, strconv.FormatInt(totalUsers, 10), CacheExpiration)
	cache.Set(CacheKeyPaidUsers, strconv.FormatInt(paidUsers, 10), CacheExpiration)
	return nil
}

// GetStatistics returns the cached counters, refreshing them first when
// stale. Missing cache entries read as zero.
func GetStatistics() Data {
	UpdateCacheIfNeeded()

	today := time.Now().Format("2006-01-02")
	return Data{
		TodaySearches: readCachedInt(fmt.Sprintf(CacheKeySearchesDaily, today)),
		TotalSearches: readCachedInt(CacheKeySearchesTotal),
		TotalUsers:    readCachedInt(CacheKeyUsersTotal),
		PaidUsers:     readCachedInt(CacheKeyPaidUsers),
	}
}

func readCachedInt(key string) int {
	raw, err := cache.Get(key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
