package jobs

import "github.com/labstack/echo/v4"

type Handler interface {
	// Aid fallback protocol handlers.
	ListAvailableJobs() echo.HandlerFunc
	ClaimJob() echo.HandlerFunc
	ReportProgress() echo.HandlerFunc
	CompleteJob() echo.HandlerFunc

	// Dashboard handlers.
	GetJobByID() echo.HandlerFunc
	GetActiveJobs() echo.HandlerFunc
	GetAvailableJobs() echo.HandlerFunc
	GetRecentJobs() echo.HandlerFunc
	GetJobsCompletedToday() echo.HandlerFunc
	GetLastCompletedJobs() echo.HandlerFunc
	GetCompletedJobs() echo.HandlerFunc
	GetJobsByEncoder() echo.HandlerFunc
	GetActiveEncodersCount() echo.HandlerFunc
	GetEncoderLastActivity() echo.HandlerFunc
}
