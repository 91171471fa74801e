package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trendscouthq/trendscout/internal/pkg/statistics"
)

// HandleStats serves the public product counters for the landing page.
func HandleStats(c *fiber.Ctx) error {
	stats := statistics.GetStatistics()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"todaySearches": stats.TodaySearches,
		"totalSearches": stats.TotalSearches,
		"totalUsers":    stats.TotalUsers,
		"paidUsers":     stats.PaidUsers,
	})
}
