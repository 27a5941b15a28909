package stats

import "github.com/labstack/echo/v4"

type Handler interface {
	GetDailyStatistics() echo.HandlerFunc
	GetEncoderPerformance() echo.HandlerFunc
}
